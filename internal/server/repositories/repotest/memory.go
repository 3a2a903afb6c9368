// Package repotest provides in-memory repositories for service and handler
// tests. They honor the same error contract as the PostgreSQL
// implementations: common.ErrorNotFound for missing rows and
// common.ErrAlreadyExists for duplicate favorites.
package repotest

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/orgdrive/internal/common"
	"github.com/dmitrijs2005/orgdrive/internal/dbx"
	"github.com/dmitrijs2005/orgdrive/internal/server/models"
	"github.com/dmitrijs2005/orgdrive/internal/server/repositories/favorites"
	"github.com/dmitrijs2005/orgdrive/internal/server/repositories/files"
	"github.com/dmitrijs2005/orgdrive/internal/server/repositories/users"
)

// Store holds every table. Err, when set, is returned by every call so
// tests can simulate an unavailable database.
type Store struct {
	mu        sync.Mutex
	seq       int
	users     []*models.User
	files     []*models.File
	favorites []*models.Favorite

	Err error
}

func New() *Store {
	return &Store{}
}

func (s *Store) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

// AddUser seeds a user and returns it.
func (s *Store) AddUser(tokenIdentifier string, orgIDs ...string) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &models.User{
		ID:              s.nextID("user"),
		TokenIdentifier: tokenIdentifier,
		OrgIDs:          slices.Clone(orgIDs),
		CreatedAt:       time.Now(),
	}
	s.users = append(s.users, u)
	return u
}

// AddFile seeds a file and returns it.
func (s *Store) AddFile(name, orgID string, fileType models.FileType) *models.File {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := &models.File{
		ID:        s.nextID("file"),
		Name:      name,
		OrgID:     orgID,
		FileID:    s.nextID("obj"),
		Type:      fileType,
		CreatedAt: time.Now(),
	}
	s.files = append(s.files, f)
	return f
}

// Favorites returns a snapshot of all favorites.
func (s *Store) Favorites() []models.Favorite {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Favorite, 0, len(s.favorites))
	for _, f := range s.favorites {
		out = append(out, *f)
	}
	return out
}

// Files returns a snapshot of all files.
func (s *Store) Files() []models.File {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.File, 0, len(s.files))
	for _, f := range s.files {
		out = append(out, *f)
	}
	return out
}

// User returns a copy of the user with tokenIdentifier, or nil.
func (s *Store) User(tokenIdentifier string) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.TokenIdentifier == tokenIdentifier {
			c := *u
			c.OrgIDs = slices.Clone(u.OrgIDs)
			return &c
		}
	}
	return nil
}

// Manager implements repomanager.RepositoryManager over the store. The DBTX
// argument is ignored.
type Manager struct {
	Store *Store
}

func (m *Manager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *Manager) Users(dbx.DBTX) users.Repository              { return (*userRepo)(m.Store) }
func (m *Manager) Files(dbx.DBTX) files.Repository              { return (*fileRepo)(m.Store) }
func (m *Manager) Favorites(dbx.DBTX) favorites.Repository      { return (*favoriteRepo)(m.Store) }

// UsersRepo, FilesRepo and FavoritesRepo expose the typed repositories.
func (s *Store) UsersRepo() users.Repository         { return (*userRepo)(s) }
func (s *Store) FilesRepo() files.Repository         { return (*fileRepo)(s) }
func (s *Store) FavoritesRepo() favorites.Repository { return (*favoriteRepo)(s) }

type userRepo Store

func (r *userRepo) Create(ctx context.Context, tokenIdentifier string) (*models.User, error) {
	s := (*Store)(r)
	if s.Err != nil {
		return nil, s.Err
	}
	if u := s.User(tokenIdentifier); u != nil {
		return u, nil
	}
	return s.AddUser(tokenIdentifier), nil
}

func (r *userRepo) GetByTokenIdentifier(ctx context.Context, tokenIdentifier string) (*models.User, error) {
	s := (*Store)(r)
	if s.Err != nil {
		return nil, s.Err
	}
	if u := s.User(tokenIdentifier); u != nil {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (r *userRepo) ReplaceOrgs(ctx context.Context, userID string, orgIDs []string) error {
	s := (*Store)(r)
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == userID {
			u.OrgIDs = slices.Clone(orgIDs)
			return nil
		}
	}
	return common.ErrorNotFound
}

type fileRepo Store

func (r *fileRepo) Create(ctx context.Context, file *models.File) error {
	s := (*Store)(r)
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	file.ID = s.nextID("file")
	file.CreatedAt = time.Now()
	c := *file
	s.files = append(s.files, &c)
	return nil
}

func (r *fileRepo) GetByID(ctx context.Context, id string) (*models.File, error) {
	s := (*Store)(r)
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.files {
		if f.ID == id {
			c := *f
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *fileRepo) ListByOrg(ctx context.Context, orgID string) ([]*models.File, error) {
	s := (*Store)(r)
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.File{}
	for _, f := range s.files {
		if f.OrgID == orgID {
			c := *f
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *fileRepo) Delete(ctx context.Context, id string) error {
	s := (*Store)(r)
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, f := range s.files {
		if f.ID == id {
			s.files = slices.Delete(s.files, i, i+1)
			return nil
		}
	}
	return common.ErrorNotFound
}

type favoriteRepo Store

func (r *favoriteRepo) Find(ctx context.Context, userID, orgID, fileID string) (*models.Favorite, error) {
	s := (*Store)(r)
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.favorites {
		if f.UserID == userID && f.OrgID == orgID && f.FileID == fileID {
			c := *f
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *favoriteRepo) Create(ctx context.Context, fav *models.Favorite) error {
	s := (*Store)(r)
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.favorites {
		if f.UserID == fav.UserID && f.OrgID == fav.OrgID && f.FileID == fav.FileID {
			return common.ErrAlreadyExists
		}
	}
	fav.ID = s.nextID("fav")
	fav.CreatedAt = time.Now()
	c := *fav
	s.favorites = append(s.favorites, &c)
	return nil
}

func (r *favoriteRepo) Delete(ctx context.Context, id string) error {
	s := (*Store)(r)
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, f := range s.favorites {
		if f.ID == id {
			s.favorites = slices.Delete(s.favorites, i, i+1)
			return nil
		}
	}
	return common.ErrorNotFound
}

func (r *favoriteRepo) ListByUserOrg(ctx context.Context, userID, orgID string) ([]*models.Favorite, error) {
	s := (*Store)(r)
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.Favorite{}
	for _, f := range s.favorites {
		if f.UserID == userID && f.OrgID == orgID {
			c := *f
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *favoriteRepo) DeleteByFile(ctx context.Context, fileID string) (int64, error) {
	s := (*Store)(r)
	if s.Err != nil {
		return 0, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.favorites)
	s.favorites = slices.DeleteFunc(s.favorites, func(f *models.Favorite) bool {
		return f.FileID == fileID
	})
	return int64(before - len(s.favorites)), nil
}

