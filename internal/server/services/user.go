// Package services contains server-side business logic. This file implements
// UserService, which keeps the local user record in step with the identity
// provider: users are created on first contact and their organization
// memberships follow the token's claims.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/orgdrive/internal/common"
	"github.com/dmitrijs2005/orgdrive/internal/dbx"
	"github.com/dmitrijs2005/orgdrive/internal/logging"
	"github.com/dmitrijs2005/orgdrive/internal/server/auth"
	"github.com/dmitrijs2005/orgdrive/internal/server/models"
	"github.com/dmitrijs2005/orgdrive/internal/server/repositories/repomanager"
)

type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		logger:      logger.With("module", "users"),
	}
}

// EnsureUser returns the caller's user, creating it on first contact and
// replacing its memberships when the token reports a different set.
func (s *UserService) EnsureUser(ctx context.Context, id auth.Identity) (*models.User, error) {
	if !id.Authenticated {
		return nil, common.ErrAuthenticationRequired
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByTokenIdentifier(ctx, id.TokenIdentifier)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	if user != nil && user.SameOrgs(id.OrgIDs) {
		return user, nil
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repomanager.Users(tx)
		if user == nil {
			created, err := repoTx.Create(ctx, id.TokenIdentifier)
			if err != nil {
				return fmt.Errorf("error creating user: %w", err)
			}
			user = created
			s.logger.Info(ctx, "user provisioned", "user_id", user.ID)
		}
		if err := repoTx.ReplaceOrgs(ctx, user.ID, id.OrgIDs); err != nil {
			return fmt.Errorf("error syncing organizations: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	user.OrgIDs = append([]string{}, id.OrgIDs...)
	return user, nil
}
