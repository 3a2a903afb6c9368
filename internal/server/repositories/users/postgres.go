package users

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/orgdrive/internal/common"
	"github.com/dmitrijs2005/orgdrive/internal/dbx"
	"github.com/dmitrijs2005/orgdrive/internal/server/models"
)

// PostgresRepository implements user storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a user for tokenIdentifier. If the user already exists
// (e.g. a concurrent first contact) the existing row is returned.
func (r *PostgresRepository) Create(ctx context.Context, tokenIdentifier string) (*models.User, error) {
	query := `
		INSERT INTO users (token_identifier)
		VALUES ($1)
		ON CONFLICT (token_identifier)
		DO UPDATE SET token_identifier = EXCLUDED.token_identifier
		RETURNING id, created_at
	`

	user := &models.User{TokenIdentifier: tokenIdentifier, OrgIDs: []string{}}
	if err := r.db.QueryRowContext(ctx, query, tokenIdentifier).Scan(&user.ID, &user.CreatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

// GetByTokenIdentifier loads a user together with its organization ids.
func (r *PostgresRepository) GetByTokenIdentifier(ctx context.Context, tokenIdentifier string) (*models.User, error) {
	query := `
		SELECT u.id, u.token_identifier, u.created_at, m.org_id
		FROM users u
		LEFT JOIN user_organizations m ON m.user_id = u.id
		WHERE u.token_identifier = $1
		ORDER BY m.org_id
	`

	rows, err := r.db.QueryContext(ctx, query, tokenIdentifier)
	if err != nil {
		return nil, fmt.Errorf("failed to select user: %w", err)
	}
	defer rows.Close()

	var user *models.User
	for rows.Next() {
		var (
			u     models.User
			orgID sql.NullString
		)
		if err := rows.Scan(&u.ID, &u.TokenIdentifier, &u.CreatedAt, &orgID); err != nil {
			return nil, err
		}
		if user == nil {
			user = &u
			user.OrgIDs = []string{}
		}
		if orgID.Valid {
			user.OrgIDs = append(user.OrgIDs, orgID.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if user == nil {
		return nil, common.ErrorNotFound
	}
	return user, nil
}

// ReplaceOrgs overwrites the membership set of userID. Run it inside a
// transaction; it issues one delete and one insert per organization.
func (r *PostgresRepository) ReplaceOrgs(ctx context.Context, userID string, orgIDs []string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM user_organizations WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear organizations: %w", err)
	}

	for _, orgID := range orgIDs {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO user_organizations (user_id, org_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			userID, orgID)
		if err != nil {
			return fmt.Errorf("failed to add organization %s: %w", orgID, err)
		}
	}

	return nil
}
