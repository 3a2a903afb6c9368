package favorites

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/orgdrive/internal/common"
	"github.com/dmitrijs2005/orgdrive/internal/dbx"
	"github.com/dmitrijs2005/orgdrive/internal/server/models"
)

// PostgresRepository implements favorites storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Find returns the favorite for the (user, org, file) triple or
// common.ErrorNotFound.
func (r *PostgresRepository) Find(ctx context.Context, userID, orgID, fileID string) (*models.Favorite, error) {
	query := `
		SELECT id, user_id, org_id, file_id, created_at FROM favorites
		WHERE user_id = $1 AND org_id = $2 AND file_id = $3
	`

	f := &models.Favorite{}
	err := r.db.QueryRowContext(ctx, query, userID, orgID, fileID).
		Scan(&f.ID, &f.UserID, &f.OrgID, &f.FileID, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to select favorite: %w", err)
	}

	return f, nil
}

// Create inserts fav. A row for the same triple that appeared concurrently
// is reported as common.ErrAlreadyExists.
func (r *PostgresRepository) Create(ctx context.Context, fav *models.Favorite) error {
	query := `
		INSERT INTO favorites (user_id, org_id, file_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query, fav.UserID, fav.OrgID, fav.FileID).Scan(&fav.ID, &fav.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM favorites WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete favorite: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}

// ListByUserOrg returns the favorites a user holds within one organization.
func (r *PostgresRepository) ListByUserOrg(ctx context.Context, userID, orgID string) ([]*models.Favorite, error) {
	query := `
		SELECT id, user_id, org_id, file_id, created_at FROM favorites
		WHERE user_id = $1 AND org_id = $2
	`

	rows, err := r.db.QueryContext(ctx, query, userID, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to select favorites: %w", err)
	}
	defer rows.Close()

	result := []*models.Favorite{}
	for rows.Next() {
		var item models.Favorite
		if err := rows.Scan(&item.ID, &item.UserID, &item.OrgID, &item.FileID, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// DeleteByFile removes every favorite pointing at fileID and returns how
// many were removed.
func (r *PostgresRepository) DeleteByFile(ctx context.Context, fileID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM favorites WHERE file_id = $1`, fileID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete favorites: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return n, nil
}
