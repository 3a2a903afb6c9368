package files

import (
	"context"

	"github.com/dmitrijs2005/orgdrive/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, file *models.File) error
	GetByID(ctx context.Context, id string) (*models.File, error)
	ListByOrg(ctx context.Context, orgID string) ([]*models.File, error)
	Delete(ctx context.Context, id string) error
}
