// Package access decides whether an identity may act on an organization or
// on a file. Every check fails closed.
package access

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/orgdrive/internal/common"
	"github.com/dmitrijs2005/orgdrive/internal/logging"
	"github.com/dmitrijs2005/orgdrive/internal/server/auth"
	"github.com/dmitrijs2005/orgdrive/internal/server/models"
	"github.com/dmitrijs2005/orgdrive/internal/server/repositories/files"
	"github.com/dmitrijs2005/orgdrive/internal/server/repositories/users"
)

// HasAccessToOrg reports whether user may act on orgID: either a listed
// membership or the user's personal workspace, whose id is embedded in the
// token identifier.
func HasAccessToOrg(user *models.User, orgID string) bool {
	if user == nil {
		return false
	}
	return user.HasOrg(orgID) || strings.Contains(user.TokenIdentifier, orgID)
}

// FileAccess is the result of a successful file check.
type FileAccess struct {
	File *models.File
	User *models.User
}

// Checker resolves identities against the users and files stores.
type Checker struct {
	users  users.Repository
	files  files.Repository
	logger logging.Logger
}

func NewChecker(u users.Repository, f files.Repository, logger logging.Logger) *Checker {
	return &Checker{users: u, files: f, logger: logger.With("module", "access")}
}

// HasAccessToOrg resolves the caller's user and applies HasAccessToOrg.
// Anonymous callers, unknown users and lookup failures all yield false.
func (c *Checker) HasAccessToOrg(ctx context.Context, id auth.Identity, orgID string) bool {
	if !id.Authenticated {
		return false
	}

	user, err := c.users.GetByTokenIdentifier(ctx, id.TokenIdentifier)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			c.logger.Warn(ctx, "user lookup failed", "error", err)
		}
		return false
	}

	return HasAccessToOrg(user, orgID)
}

// HasAccessToFile returns the file and the caller's user when the caller
// may act on fileID, and nil otherwise. Only store failures other than
// not-found are returned as errors.
func (c *Checker) HasAccessToFile(ctx context.Context, id auth.Identity, fileID string) (*FileAccess, error) {
	if !id.Authenticated {
		return nil, nil
	}

	file, err := c.files.GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, err
	}

	user, err := c.users.GetByTokenIdentifier(ctx, id.TokenIdentifier)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if !HasAccessToOrg(user, file.OrgID) {
		return nil, nil
	}

	return &FileAccess{File: file, User: user}, nil
}
