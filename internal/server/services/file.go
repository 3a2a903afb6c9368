package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/orgdrive/internal/common"
	"github.com/dmitrijs2005/orgdrive/internal/dbx"
	"github.com/dmitrijs2005/orgdrive/internal/logging"
	"github.com/dmitrijs2005/orgdrive/internal/server/access"
	"github.com/dmitrijs2005/orgdrive/internal/server/auth"
	"github.com/dmitrijs2005/orgdrive/internal/server/metrics"
	"github.com/dmitrijs2005/orgdrive/internal/server/models"
	"github.com/dmitrijs2005/orgdrive/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/orgdrive/internal/server/storage"
)

// CreateFileInput registers an object that the client has already uploaded.
type CreateFileInput struct {
	Name   string          `json:"name" validate:"required,max=200"`
	FileID string          `json:"fileId" validate:"required"`
	OrgID  string          `json:"orgId" validate:"required"`
	Type   models.FileType `json:"type" validate:"required,filetype"`
}

// GetFilesInput selects the files of one organization. Query filters by a
// case-insensitive name substring; Favorites keeps only the caller's
// favorites.
type GetFilesInput struct {
	OrgID     string
	Query     *string
	Favorites bool
}

// FileService implements file registration, listing, deletion and
// favorites. Reads degrade to empty results for callers without access;
// writes fail with an authorization error.
type FileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       storage.ObjectStore
	checker     *access.Checker
	logger      logging.Logger
	metrics     *metrics.Metrics
}

func NewFileService(db *sql.DB, m repomanager.RepositoryManager, store storage.ObjectStore, logger logging.Logger, mt *metrics.Metrics) *FileService {
	return &FileService{
		db:          db,
		repomanager: m,
		store:       store,
		checker:     access.NewChecker(m.Users(db), m.Files(db), logger),
		logger:      logger.With("module", "files"),
		metrics:     mt,
	}
}

func (s *FileService) CreateFile(ctx context.Context, id auth.Identity, in CreateFileInput) (*models.File, error) {
	if !id.Authenticated {
		return nil, common.ErrAuthenticationRequired
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if !s.checker.HasAccessToOrg(ctx, id, in.OrgID) {
		return nil, common.ErrAuthorizationDenied
	}

	file := &models.File{
		Name:   in.Name,
		OrgID:  in.OrgID,
		FileID: in.FileID,
		Type:   in.Type,
	}
	if err := s.repomanager.Files(s.db).Create(ctx, file); err != nil {
		return nil, fmt.Errorf("error creating file: %w", err)
	}

	s.metrics.FileCreated()
	s.logger.Info(ctx, "file created", "file_id", file.ID, "org_id", file.OrgID, "type", file.Type)

	return file, nil
}

// GetFiles lists the organization's files in insertion order. Callers
// without access get an empty list and no error.
func (s *FileService) GetFiles(ctx context.Context, id auth.Identity, in GetFilesInput) ([]*models.File, error) {
	if !s.checker.HasAccessToOrg(ctx, id, in.OrgID) {
		return []*models.File{}, nil
	}

	files, err := s.repomanager.Files(s.db).ListByOrg(ctx, in.OrgID)
	if err != nil {
		return nil, err
	}

	if in.Query != nil && *in.Query != "" {
		q := strings.ToLower(*in.Query)
		files = filter(files, func(f *models.File) bool {
			return strings.Contains(strings.ToLower(f.Name), q)
		})
	}

	if !in.Favorites {
		return files, nil
	}

	user, err := s.repomanager.Users(s.db).GetByTokenIdentifier(ctx, id.TokenIdentifier)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return files, nil
		}
		return nil, err
	}

	favs, err := s.repomanager.Favorites(s.db).ListByUserOrg(ctx, user.ID, in.OrgID)
	if err != nil {
		return nil, err
	}

	favorite := make(map[string]struct{}, len(favs))
	for _, f := range favs {
		favorite[f.FileID] = struct{}{}
	}

	return filter(files, func(f *models.File) bool {
		_, ok := favorite[f.ID]
		return ok
	}), nil
}

// GetFilesWithURLs is GetFiles for an organization with every file
// enriched with a retrieval URL. URLs are resolved per file: a missing
// object or a failed lookup yields a nil URL for that file only.
func (s *FileService) GetFilesWithURLs(ctx context.Context, id auth.Identity, orgID string) ([]*models.FileWithURL, error) {
	files, err := s.GetFiles(ctx, id, GetFilesInput{OrgID: orgID})
	if err != nil {
		return nil, err
	}

	result := make([]*models.FileWithURL, 0, len(files))
	for _, f := range files {
		url, err := s.store.GetURL(ctx, f.FileID)
		if err != nil {
			s.logger.Warn(ctx, "url lookup failed", "file_id", f.ID, "object_id", f.FileID, "error", err)
			url = nil
		}
		result = append(result, &models.FileWithURL{File: *f, URL: url})
	}

	return result, nil
}

// DeleteFile removes the file and its favorites in one transaction, then
// removes the stored object. Object removal failures are logged only.
func (s *FileService) DeleteFile(ctx context.Context, id auth.Identity, fileID string) error {
	fa, err := s.checker.HasAccessToFile(ctx, id, fileID)
	if err != nil {
		return err
	}
	if fa == nil {
		return common.ErrAuthorizationDenied
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Favorites(tx).DeleteByFile(ctx, fa.File.ID); err != nil {
			return err
		}
		return s.repomanager.Files(tx).Delete(ctx, fa.File.ID)
	})
	if err != nil {
		return fmt.Errorf("error deleting file: %w", err)
	}

	s.metrics.FileDeleted()
	s.logger.Info(ctx, "file deleted", "file_id", fa.File.ID, "org_id", fa.File.OrgID)

	if err := s.store.Delete(ctx, fa.File.FileID); err != nil {
		s.logger.Warn(ctx, "object cleanup failed", "object_id", fa.File.FileID, "error", err)
	}

	return nil
}

// ToggleFavorite flips the caller's favorite on the file and reports the
// resulting state.
func (s *FileService) ToggleFavorite(ctx context.Context, id auth.Identity, fileID string) (bool, error) {
	fa, err := s.checker.HasAccessToFile(ctx, id, fileID)
	if err != nil {
		return false, err
	}
	if fa == nil {
		return false, common.ErrAuthorizationDenied
	}

	repo := s.repomanager.Favorites(s.db)

	existing, err := repo.Find(ctx, fa.User.ID, fa.File.OrgID, fa.File.ID)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return false, err
	}

	if existing != nil {
		if err := repo.Delete(ctx, existing.ID); err != nil {
			return false, err
		}
		s.metrics.FavoriteToggled(false)
		return false, nil
	}

	if err := repo.Create(ctx, &models.Favorite{UserID: fa.User.ID, OrgID: fa.File.OrgID, FileID: fa.File.ID}); err != nil {
		return false, err
	}
	s.metrics.FavoriteToggled(true)
	return true, nil
}

func filter(files []*models.File, keep func(*models.File) bool) []*models.File {
	out := make([]*models.File, 0, len(files))
	for _, f := range files {
		if keep(f) {
			out = append(out, f)
		}
	}
	return out
}
