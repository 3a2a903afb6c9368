package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/orgdrive/internal/server/repositories/favorites"
	"github.com/dmitrijs2005/orgdrive/internal/server/repositories/files"
	"github.com/dmitrijs2005/orgdrive/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
)

func newDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db := newDB(t)

	var m RepositoryManager = NewPostgresRepositoryManager()

	if _, ok := m.Users(db).(*users.PostgresRepository); !ok {
		t.Fatal("Users() is not a postgres repository")
	}
	if _, ok := m.Files(db).(*files.PostgresRepository); !ok {
		t.Fatal("Files() is not a postgres repository")
	}
	if _, ok := m.Favorites(db).(*favorites.PostgresRepository); !ok {
		t.Fatal("Favorites() is not a postgres repository")
	}
}

func TestRunMigrations_Success(t *testing.T) {
	db := newDB(t)

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." {
			return errors.New("unexpected dir")
		}
		if len(opts) != 0 {
			return errors.New("unexpected opts")
		}
		return nil
	}
	defer func() { gooseUpContext = orig }()

	if err := NewPostgresRepositoryManager().RunMigrations(context.Background(), db); err != nil {
		t.Fatalf("RunMigrations error: %v", err)
	}
}

func TestRunMigrations_Error(t *testing.T) {
	db := newDB(t)

	orig := gooseUpContext
	boom := errors.New("boom")
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return boom
	}
	defer func() { gooseUpContext = orig }()

	err := NewPostgresRepositoryManager().RunMigrations(context.Background(), db)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
}
