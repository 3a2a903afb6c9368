package services

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/orgdrive/internal/server/auth"
	"github.com/dmitrijs2005/orgdrive/internal/server/repositories/repotest"
)

const (
	aliceToken = "https://idp.example|user_alice"
	bobToken   = "https://idp.example|user_bob"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func identity(tokenIdentifier string, orgIDs ...string) auth.Identity {
	return auth.Identity{TokenIdentifier: tokenIdentifier, OrgIDs: orgIDs, Authenticated: true}
}

func newStore() (*repotest.Store, *repotest.Manager) {
	s := repotest.New()
	return s, &repotest.Manager{Store: s}
}
