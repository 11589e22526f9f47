package ingest

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"dersdefteri/internal/contextutil"
	"dersdefteri/internal/service"
	"dersdefteri/internal/storage"
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// ObjectStore writes and removes document objects.
type ObjectStore interface {
	Put(ctx context.Context, path string, r io.Reader) (int64, error)
	Remove(ctx context.Context, path string) error
}

// File is one document handed to Upload.
type File struct {
	Name        string
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// Progress is reported before each file of a batch is written.
type Progress struct {
	Current  int
	Total    int
	Filename string
}

// ProgressFunc receives upload progress.
type ProgressFunc func(Progress)

// BatchError reports the file that stopped a batch upload.
// Documents uploaded before it stay committed.
type BatchError struct {
	Index    int
	Filename string
	Err      error
	Uploaded []storage.Document
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Filename, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// Uploader stores source documents and registers them as pending.
type Uploader struct {
	objects ObjectStore
	docs    storage.DocumentStore
	now     func() time.Time

	mu        sync.Mutex
	lastStamp int64
}

// NewUploader creates an Uploader.
func NewUploader(objects ObjectStore, docs storage.DocumentStore) *Uploader {
	return &Uploader{
		objects: objects,
		docs:    docs,
		now:     time.Now,
	}
}

// Upload writes files one after another. The whole list is validated before
// anything is written; the first failing file stops the batch.
func (u *Uploader) Upload(ctx context.Context, userID string, files []File, progress ProgressFunc) ([]storage.Document, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if len(files) == 0 {
		return nil, &service.ValidationError{Field: "files", Message: "Keine Dateien ausgewählt."}
	}
	for _, f := range files {
		if !IsPDF(f.Name, f.ContentType) {
			return nil, &service.ValidationError{Field: "files", Message: fmt.Sprintf("%s: %s", f.Name, service.MsgPDFOnly)}
		}
	}

	uploaded := make([]storage.Document, 0, len(files))
	for i, f := range files {
		if progress != nil {
			progress(Progress{Current: i + 1, Total: len(files), Filename: f.Name})
		}

		doc, err := u.uploadOne(ctx, userID, f)
		if err != nil {
			logger.ErrorContext(ctx, "upload failed", "filename", f.Name, "index", i, "error", err)
			return uploaded, &BatchError{Index: i, Filename: f.Name, Err: err, Uploaded: uploaded}
		}
		logger.InfoContext(ctx, "document uploaded", "document_id", doc.ID, "storage_path", doc.StoragePath)
		uploaded = append(uploaded, *doc)
	}
	return uploaded, nil
}

func (u *Uploader) uploadOne(ctx context.Context, userID string, f File) (*storage.Document, error) {
	path := fmt.Sprintf("%s/%d-%s", userID, u.stamp(), SanitizeName(f.Name))

	body, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer func() {
		_ = body.Close()
	}()

	if _, err := u.objects.Put(ctx, path, body); err != nil {
		return nil, err
	}

	doc := &storage.Document{
		ID:          uuid.New().String(),
		UserID:      userID,
		Filename:    f.Name,
		StoragePath: path,
		Status:      storage.StatusPending,
	}
	if err := u.docs.Create(ctx, doc); err != nil {
		if rmErr := u.objects.Remove(context.WithoutCancel(ctx), path); rmErr != nil {
			contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to remove orphaned object", "storage_path", path, "error", rmErr)
		}
		return nil, service.Classify(service.ErrPersistence, err)
	}
	return doc, nil
}

// stamp returns a millisecond timestamp that never repeats for this Uploader.
func (u *Uploader) stamp() int64 {
	u.mu.Lock()
	defer u.mu.Unlock()

	ms := u.now().UnixMilli()
	if ms <= u.lastStamp {
		ms = u.lastStamp + 1
	}
	u.lastStamp = ms
	return ms
}

// SanitizeName replaces every character outside [A-Za-z0-9._-] with '_'.
func SanitizeName(name string) string {
	return unsafeChars.ReplaceAllString(name, "_")
}

// IsPDF reports whether a file looks like a PDF by extension or media type.
func IsPDF(name, contentType string) bool {
	if strings.EqualFold(filepath.Ext(name), ".pdf") {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "application/pdf"
}

// UploadSummary is the German success text for a finished batch.
func UploadSummary(count int) string {
	if count == 1 {
		return "PDF erfolgreich hochgeladen."
	}
	return fmt.Sprintf("%d PDFs erfolgreich hochgeladen.", count)
}
