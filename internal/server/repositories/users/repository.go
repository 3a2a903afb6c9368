package users

import (
	"context"

	"github.com/dmitrijs2005/orgdrive/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, tokenIdentifier string) (*models.User, error)
	GetByTokenIdentifier(ctx context.Context, tokenIdentifier string) (*models.User, error)
	ReplaceOrgs(ctx context.Context, userID string, orgIDs []string) error
}
