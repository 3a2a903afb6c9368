package favorites

import (
	"context"

	"github.com/dmitrijs2005/orgdrive/internal/server/models"
)

type Repository interface {
	Find(ctx context.Context, userID, orgID, fileID string) (*models.Favorite, error)
	Create(ctx context.Context, fav *models.Favorite) error
	Delete(ctx context.Context, id string) error
	ListByUserOrg(ctx context.Context, userID, orgID string) ([]*models.Favorite, error)
	DeleteByFile(ctx context.Context, fileID string) (int64, error)
}
