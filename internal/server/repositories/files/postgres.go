package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/orgdrive/internal/common"
	"github.com/dmitrijs2005/orgdrive/internal/dbx"
	"github.com/dmitrijs2005/orgdrive/internal/server/models"
	"github.com/google/uuid"
)

// PostgresRepository implements file metadata storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts file and fills in its server-assigned ID and CreatedAt.
func (r *PostgresRepository) Create(ctx context.Context, file *models.File) error {
	query := `
		INSERT INTO files (name, org_id, file_id, type)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query, file.Name, file.OrgID, file.FileID, string(file.Type)).
		Scan(&file.ID, &file.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

// GetByID returns the file with the given id or common.ErrorNotFound.
// Ids that are not UUIDs cannot exist and are reported as not found
// without a round trip.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}

	query := `SELECT id, name, org_id, file_id, type, created_at FROM files WHERE id = $1`

	f := &models.File{}
	var fileType string
	err := r.db.QueryRowContext(ctx, query, id).Scan(&f.ID, &f.Name, &f.OrgID, &f.FileID, &fileType, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to select file: %w", err)
	}
	f.Type = models.FileType(fileType)

	return f, nil
}

// ListByOrg returns every file of orgID in insertion order.
func (r *PostgresRepository) ListByOrg(ctx context.Context, orgID string) ([]*models.File, error) {
	query := `
		SELECT id, name, org_id, file_id, type, created_at FROM files
		WHERE org_id = $1
		ORDER BY seq
	`

	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to select files: %w", err)
	}
	defer rows.Close()

	result := []*models.File{}
	for rows.Next() {
		var (
			item     models.File
			fileType string
		)
		if err := rows.Scan(&item.ID, &item.Name, &item.OrgID, &item.FileID, &fileType, &item.CreatedAt); err != nil {
			return nil, err
		}
		item.Type = models.FileType(fileType)
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// Delete removes the file row. Exactly one row must be affected, otherwise
// common.ErrorNotFound is returned.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
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
