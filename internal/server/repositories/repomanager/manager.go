package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/orgdrive/internal/dbx"
	"github.com/dmitrijs2005/orgdrive/internal/server/repositories/favorites"
	"github.com/dmitrijs2005/orgdrive/internal/server/repositories/files"
	"github.com/dmitrijs2005/orgdrive/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Files(db dbx.DBTX) files.Repository
	Favorites(db dbx.DBTX) favorites.Repository
}
