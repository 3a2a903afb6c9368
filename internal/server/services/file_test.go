package services

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/orgdrive/internal/common"
	"github.com/dmitrijs2005/orgdrive/internal/dbx"
	"github.com/dmitrijs2005/orgdrive/internal/logging"
	"github.com/dmitrijs2005/orgdrive/internal/server/auth"
	"github.com/dmitrijs2005/orgdrive/internal/server/models"
	"github.com/dmitrijs2005/orgdrive/internal/server/repositories/files"
	"github.com/dmitrijs2005/orgdrive/internal/server/repositories/repotest"
	"github.com/dmitrijs2005/orgdrive/internal/server/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fileFixture struct {
	svc   *FileService
	store *repotest.Store
	blobs *storage.MemoryStore
	mock  sqlmock.Sqlmock
}

func newFileFixture(t *testing.T) *fileFixture {
	t.Helper()
	db, mock := newSQLMockDB(t)
	store, rm := newStore()
	blobs := storage.NewMemoryStore()
	return &fileFixture{
		svc:   NewFileService(db, rm, blobs, logging.Nop{}, nil),
		store: store,
		blobs: blobs,
		mock:  mock,
	}
}

func names(list []*models.File) []string {
	out := make([]string, 0, len(list))
	for _, f := range list {
		out = append(out, f.Name)
	}
	return out
}

func strPtr(s string) *string { return &s }

type failingFiles struct {
	files.Repository
	err error
}

func (f *failingFiles) ListByOrg(context.Context, string) ([]*models.File, error) {
	return nil, f.err
}

type swapFiles struct {
	*repotest.Manager
	files files.Repository
}

func (m *swapFiles) Files(dbx.DBTX) files.Repository { return m.files }

func TestCreateFile(t *testing.T) {
	ctx := context.Background()
	valid := CreateFileInput{Name: "Report.csv", FileID: "obj-1", OrgID: "org_1", Type: models.FileTypeCSV}

	t.Run("success", func(t *testing.T) {
		fx := newFileFixture(t)
		fx.store.AddUser(aliceToken, "org_1")

		f, err := fx.svc.CreateFile(ctx, identity(aliceToken), valid)
		require.NoError(t, err)
		assert.NotEmpty(t, f.ID)
		assert.Equal(t, "org_1", f.OrgID)
		assert.Len(t, fx.store.Files(), 1)
	})

	t.Run("duplicate names allowed", func(t *testing.T) {
		fx := newFileFixture(t)
		fx.store.AddUser(aliceToken, "org_1")

		_, err := fx.svc.CreateFile(ctx, identity(aliceToken), valid)
		require.NoError(t, err)
		_, err = fx.svc.CreateFile(ctx, identity(aliceToken), valid)
		require.NoError(t, err)
		assert.Len(t, fx.store.Files(), 2)
	})

	t.Run("anonymous", func(t *testing.T) {
		fx := newFileFixture(t)
		_, err := fx.svc.CreateFile(ctx, auth.Anonymous(), valid)
		assert.ErrorIs(t, err, common.ErrAuthenticationRequired)
		assert.Empty(t, fx.store.Files())
	})

	t.Run("no org access inserts nothing", func(t *testing.T) {
		fx := newFileFixture(t)
		fx.store.AddUser(aliceToken, "org_2")

		_, err := fx.svc.CreateFile(ctx, identity(aliceToken), valid)
		assert.ErrorIs(t, err, common.ErrAuthorizationDenied)
		assert.Empty(t, fx.store.Files())
	})

	t.Run("personal workspace", func(t *testing.T) {
		fx := newFileFixture(t)
		fx.store.AddUser(aliceToken)

		in := valid
		in.OrgID = "user_alice"
		_, err := fx.svc.CreateFile(ctx, identity(aliceToken), in)
		require.NoError(t, err)
	})

	t.Run("validation", func(t *testing.T) {
		fx := newFileFixture(t)
		fx.store.AddUser(aliceToken, "org_1")

		long := make([]byte, 201)
		for i := range long {
			long[i] = 'a'
		}

		cases := map[string]CreateFileInput{
			"empty name":   {Name: "", FileID: "obj", OrgID: "org_1", Type: models.FileTypeCSV},
			"long name":    {Name: string(long), FileID: "obj", OrgID: "org_1", Type: models.FileTypeCSV},
			"no object id": {Name: "a", OrgID: "org_1", Type: models.FileTypeCSV},
			"no org":       {Name: "a", FileID: "obj", Type: models.FileTypeCSV},
			"bad type":     {Name: "a", FileID: "obj", OrgID: "org_1", Type: models.FileType("docx")},
		}
		for name, in := range cases {
			t.Run(name, func(t *testing.T) {
				_, err := fx.svc.CreateFile(ctx, identity(aliceToken), in)
				assert.ErrorIs(t, err, common.ErrValidation)
			})
		}
		assert.Empty(t, fx.store.Files())
	})
}

func TestGetFiles_SilentEmptyForOutsiders(t *testing.T) {
	ctx := context.Background()
	fx := newFileFixture(t)
	fx.store.AddUser(aliceToken, "org_1")
	fx.store.AddUser(bobToken, "org_2")
	fx.store.AddFile("Report.csv", "org_1", models.FileTypeCSV)

	for name, id := range map[string]auth.Identity{
		"anonymous":    auth.Anonymous(),
		"unauthorized": identity(bobToken),
		"unknown user": identity("https://idp.example|ghost"),
	} {
		t.Run(name, func(t *testing.T) {
			got, err := fx.svc.GetFiles(ctx, id, GetFilesInput{OrgID: "org_1"})
			require.NoError(t, err)
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestGetFiles_InsertionOrderAndSearch(t *testing.T) {
	ctx := context.Background()
	fx := newFileFixture(t)
	fx.store.AddUser(aliceToken, "org_1")
	fx.store.AddFile("Report.csv", "org_1", models.FileTypeCSV)
	fx.store.AddFile("summary.txt", "org_1", models.FileTypePDF)
	fx.store.AddFile("other-org.csv", "org_2", models.FileTypeCSV)

	all, err := fx.svc.GetFiles(ctx, identity(aliceToken), GetFilesInput{OrgID: "org_1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Report.csv", "summary.txt"}, names(all))

	got, err := fx.svc.GetFiles(ctx, identity(aliceToken), GetFilesInput{OrgID: "org_1", Query: strPtr("report")})
	require.NoError(t, err)
	assert.Equal(t, []string{"Report.csv"}, names(got))

	got, err = fx.svc.GetFiles(ctx, identity(aliceToken), GetFilesInput{OrgID: "org_1", Query: strPtr("")})
	require.NoError(t, err)
	assert.Len(t, got, 2, "empty query does not filter")
}

func TestGetFiles_FavoritesFilter(t *testing.T) {
	ctx := context.Background()
	fx := newFileFixture(t)
	fx.store.AddUser(aliceToken, "org_1")
	fav := fx.store.AddFile("Report.csv", "org_1", models.FileTypeCSV)
	fx.store.AddFile("summary.txt", "org_1", models.FileTypePDF)

	favorited, err := fx.svc.ToggleFavorite(ctx, identity(aliceToken), fav.ID)
	require.NoError(t, err)
	require.True(t, favorited)

	got, err := fx.svc.GetFiles(ctx, identity(aliceToken), GetFilesInput{OrgID: "org_1", Favorites: true})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, fav.ID, got[0].ID)

	got, err = fx.svc.GetFiles(ctx, identity(aliceToken), GetFilesInput{OrgID: "org_1", Favorites: true, Query: strPtr("summary")})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGetFiles_FavoritesArePerUser(t *testing.T) {
	ctx := context.Background()
	fx := newFileFixture(t)
	fx.store.AddUser(aliceToken, "org_1")
	fx.store.AddUser(bobToken, "org_1")
	f := fx.store.AddFile("Report.csv", "org_1", models.FileTypeCSV)

	_, err := fx.svc.ToggleFavorite(ctx, identity(aliceToken), f.ID)
	require.NoError(t, err)

	got, err := fx.svc.GetFiles(ctx, identity(bobToken), GetFilesInput{OrgID: "org_1", Favorites: true})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGetFiles_StoreErrorPropagates(t *testing.T) {
	fx := newFileFixture(t)
	fx.store.AddUser(aliceToken, "org_1")
	boom := errors.New("db down")

	// The checker keeps its own repositories; only the listing fails.
	fx.svc.repomanager = &swapFiles{
		Manager: &repotest.Manager{Store: fx.store},
		files:   &failingFiles{Repository: fx.store.FilesRepo(), err: boom},
	}

	_, err := fx.svc.GetFiles(context.Background(), identity(aliceToken), GetFilesInput{OrgID: "org_1"})
	assert.ErrorIs(t, err, boom)
}

func TestToggleFavorite_TwiceRestoresState(t *testing.T) {
	ctx := context.Background()
	fx := newFileFixture(t)
	fx.store.AddUser(aliceToken, "org_1")
	f := fx.store.AddFile("Report.csv", "org_1", models.FileTypeCSV)

	on, err := fx.svc.ToggleFavorite(ctx, identity(aliceToken), f.ID)
	require.NoError(t, err)
	assert.True(t, on)
	assert.Len(t, fx.store.Favorites(), 1)

	on, err = fx.svc.ToggleFavorite(ctx, identity(aliceToken), f.ID)
	require.NoError(t, err)
	assert.False(t, on)
	assert.Empty(t, fx.store.Favorites())
}

func TestToggleFavorite_Denied(t *testing.T) {
	ctx := context.Background()
	fx := newFileFixture(t)
	fx.store.AddUser(bobToken, "org_2")
	f := fx.store.AddFile("Report.csv", "org_1", models.FileTypeCSV)

	_, err := fx.svc.ToggleFavorite(ctx, identity(bobToken), f.ID)
	assert.ErrorIs(t, err, common.ErrAuthorizationDenied)

	_, err = fx.svc.ToggleFavorite(ctx, auth.Anonymous(), f.ID)
	assert.ErrorIs(t, err, common.ErrAuthorizationDenied)

	_, err = fx.svc.ToggleFavorite(ctx, identity(bobToken), "missing")
	assert.ErrorIs(t, err, common.ErrAuthorizationDenied)

	assert.Empty(t, fx.store.Favorites())
}

func TestDeleteFile(t *testing.T) {
	ctx := context.Background()

	t.Run("removes row favorites and object", func(t *testing.T) {
		fx := newFileFixture(t)
		fx.mock.ExpectBegin()
		fx.mock.ExpectCommit()
		fx.store.AddUser(aliceToken, "org_1")
		f := fx.store.AddFile("Report.csv", "org_1", models.FileTypeCSV)
		other := fx.store.AddFile("keep.csv", "org_1", models.FileTypeCSV)
		fx.blobs.Put(f.FileID)

		_, err := fx.svc.ToggleFavorite(ctx, identity(aliceToken), f.ID)
		require.NoError(t, err)
		_, err = fx.svc.ToggleFavorite(ctx, identity(aliceToken), other.ID)
		require.NoError(t, err)

		require.NoError(t, fx.svc.DeleteFile(ctx, identity(aliceToken), f.ID))

		require.Len(t, fx.store.Files(), 1)
		assert.Equal(t, other.ID, fx.store.Files()[0].ID)
		require.Len(t, fx.store.Favorites(), 1)
		assert.Equal(t, other.ID, fx.store.Favorites()[0].FileID)
		assert.False(t, fx.blobs.Has(f.FileID))
		require.NoError(t, fx.mock.ExpectationsWereMet())
	})

	t.Run("denied keeps record", func(t *testing.T) {
		fx := newFileFixture(t)
		fx.store.AddUser(bobToken, "org_2")
		f := fx.store.AddFile("Report.csv", "org_1", models.FileTypeCSV)

		err := fx.svc.DeleteFile(ctx, identity(bobToken), f.ID)
		assert.ErrorIs(t, err, common.ErrAuthorizationDenied)
		assert.Len(t, fx.store.Files(), 1)
	})

	t.Run("anonymous denied", func(t *testing.T) {
		fx := newFileFixture(t)
		f := fx.store.AddFile("Report.csv", "org_1", models.FileTypeCSV)

		err := fx.svc.DeleteFile(ctx, auth.Anonymous(), f.ID)
		assert.ErrorIs(t, err, common.ErrAuthorizationDenied)
		assert.Len(t, fx.store.Files(), 1)
	})

	t.Run("object cleanup failure is not fatal", func(t *testing.T) {
		fx := newFileFixture(t)
		fx.mock.ExpectBegin()
		fx.mock.ExpectCommit()
		fx.store.AddUser(aliceToken, "org_1")
		f := fx.store.AddFile("Report.csv", "org_1", models.FileTypeCSV)
		fx.blobs.Err = errors.New("s3 down")

		require.NoError(t, fx.svc.DeleteFile(ctx, identity(aliceToken), f.ID))
		assert.Empty(t, fx.store.Files())
	})

	t.Run("transaction failure", func(t *testing.T) {
		fx := newFileFixture(t)
		fx.mock.ExpectBegin().WillReturnError(errors.New("begin-fail"))
		fx.store.AddUser(aliceToken, "org_1")
		f := fx.store.AddFile("Report.csv", "org_1", models.FileTypeCSV)

		err := fx.svc.DeleteFile(ctx, identity(aliceToken), f.ID)
		assert.ErrorContains(t, err, "begin-fail")
		assert.Len(t, fx.store.Files(), 1)
	})
}

func TestGetFilesWithURLs(t *testing.T) {
	ctx := context.Background()
	fx := newFileFixture(t)
	fx.store.AddUser(aliceToken, "org_1")
	fx.store.AddUser(bobToken, "org_2")
	uploaded := fx.store.AddFile("Report.csv", "org_1", models.FileTypeCSV)
	fx.store.AddFile("lost.pdf", "org_1", models.FileTypePDF)
	fx.store.AddFile("elsewhere.csv", "org_2", models.FileTypeCSV)
	fx.blobs.Put(uploaded.FileID)

	got, err := fx.svc.GetFilesWithURLs(ctx, identity(aliceToken), "org_1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.NotNil(t, got[0].URL)
	assert.Equal(t, "memory://"+uploaded.FileID, *got[0].URL)
	assert.Nil(t, got[1].URL)

	got, err = fx.svc.GetFilesWithURLs(ctx, identity(bobToken), "org_1")
	require.NoError(t, err)
	assert.Empty(t, got)

	fx.blobs.Err = errors.New("s3 down")
	got, err = fx.svc.GetFilesWithURLs(ctx, identity(aliceToken), "org_1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Nil(t, got[0].URL)
	assert.Nil(t, got[1].URL)
}

type flakyURLStore struct {
	*storage.MemoryStore
	failFor string
}

func (s *flakyURLStore) GetURL(ctx context.Context, objectID string) (*string, error) {
	if objectID == s.failFor {
		return nil, errors.New("circuit breaker is open")
	}
	return s.MemoryStore.GetURL(ctx, objectID)
}

func TestGetFilesWithURLs_LookupFailureAffectsOneFile(t *testing.T) {
	ctx := context.Background()
	fx := newFileFixture(t)
	fx.store.AddUser(aliceToken, "org_1")
	broken := fx.store.AddFile("broken.pdf", "org_1", models.FileTypePDF)
	ok := fx.store.AddFile("ok.csv", "org_1", models.FileTypeCSV)
	fx.blobs.Put(broken.FileID)
	fx.blobs.Put(ok.FileID)
	fx.svc.store = &flakyURLStore{MemoryStore: fx.blobs, failFor: broken.FileID}

	got, err := fx.svc.GetFilesWithURLs(ctx, identity(aliceToken), "org_1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Nil(t, got[0].URL)
	require.NotNil(t, got[1].URL)
	assert.Equal(t, "memory://"+ok.FileID, *got[1].URL)
}
