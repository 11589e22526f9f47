package ingest

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"dersdefteri/internal/objectstore"
	"dersdefteri/internal/storage"
)

type testEnv struct {
	db      *sql.DB
	docs    *storage.DocumentRepo
	cards   *storage.FlashcardRepo
	objects *objectstore.Store
	userID  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	db, err := storage.New(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	require.NoError(t, storage.Migrate(db))

	objects, err := objectstore.New(filepath.Join(dir, "objects"), "pdf-uploads", "test-key", "http://localhost:9000")
	require.NoError(t, err)

	user := &storage.User{Email: "ogrenci@example.com", PasswordHash: "hash"}
	require.NoError(t, storage.NewUserRepo(db).Create(context.Background(), user))

	return &testEnv{
		db:      db,
		docs:    storage.NewDocumentRepo(db),
		cards:   storage.NewFlashcardRepo(db),
		objects: objects,
		userID:  user.ID,
	}
}

func pdfFile(name, content string) File {
	return File{
		Name:        name,
		ContentType: "application/pdf",
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}

// failingObjects fails the Put call with the given 0-based index.
type failingObjects struct {
	ObjectStore
	failAt int
	calls  int
}

func (f *failingObjects) Put(ctx context.Context, path string, r io.Reader) (int64, error) {
	defer func() { f.calls++ }()
	if f.calls == f.failAt {
		return 0, errors.New("disk full")
	}
	return f.ObjectStore.Put(ctx, path, r)
}

// failingCreate rejects every document insert.
type failingCreate struct {
	storage.DocumentStore
}

func (failingCreate) Create(context.Context, *storage.Document) error {
	return errors.New("database is locked")
}
