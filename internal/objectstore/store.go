package objectstore

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"dersdefteri/internal/service"
)

var (
	errStorageAPI = errors.New(service.MsgStorageFailure)
	errSignedURL  = errors.New(service.MsgSignedURLUnavailable)
)

var (
	// ErrExists is returned when writing to a path that already holds an object.
	ErrExists = fmt.Errorf("%w: object already exists: %w", errStorageAPI, service.ErrConflict)
	// ErrNotFound is returned when no object is stored at the path.
	ErrNotFound = fmt.Errorf("object %w", service.ErrNotFound)
	// ErrInvalidPath is returned for empty, absolute or escaping object paths.
	ErrInvalidPath = fmt.Errorf("invalid object path: %w", service.ErrInvalidInput)
	// ErrSign is returned when no signed URL can be produced for a path.
	ErrSign = fmt.Errorf("%w: %w", errSignedURL, service.ErrTransport)
	// ErrBadSignature is returned when a signed URL does not verify or has expired.
	ErrBadSignature = errors.New("invalid or expired signature")
)

// Store keeps objects of one bucket on the local filesystem and hands out
// HMAC-signed, time-limited download URLs for them.
type Store struct {
	root    string
	bucket  string
	key     []byte
	baseURL string
	now     func() time.Time
}

// New creates a Store rooted at root/bucket.
func New(root, bucket, signingKey, publicBaseURL string) (*Store, error) {
	if bucket == "" || strings.ContainsAny(bucket, `/\`) {
		return nil, fmt.Errorf("invalid bucket name %q", bucket)
	}
	if signingKey == "" {
		return nil, errors.New("signing key is required")
	}
	dir := filepath.Join(root, bucket)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create bucket directory: %w", err)
	}
	return &Store{
		root:    dir,
		bucket:  bucket,
		key:     []byte(signingKey),
		baseURL: strings.TrimRight(publicBaseURL, "/"),
		now:     time.Now,
	}, nil
}

// Bucket returns the bucket name.
func (s *Store) Bucket() string {
	return s.bucket
}

// Put writes the object at objectPath. Existing objects are never overwritten.
func (s *Store) Put(ctx context.Context, objectPath string, r io.Reader) (int64, error) {
	abs, err := s.resolve(objectPath)
	if err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return 0, storageFailure("failed to create object directory", err)
	}

	f, err := os.OpenFile(abs, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return 0, fmt.Errorf("%s: %w", objectPath, ErrExists)
	}
	if err != nil {
		return 0, storageFailure("failed to create object", err)
	}

	n, copyErr := io.Copy(f, &ctxReader{ctx: ctx, r: r})
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(abs)
		if copyErr == nil {
			copyErr = closeErr
		}
		return 0, storageFailure("failed to write object", copyErr)
	}
	return n, nil
}

// Open opens the object for reading.
func (s *Store) Open(objectPath string) (*os.File, error) {
	abs, err := s.resolve(objectPath)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", objectPath, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open object: %w", err)
	}
	return f, nil
}

// Remove deletes the object. Removing a missing object is not an error.
func (s *Store) Remove(ctx context.Context, objectPath string) error {
	abs, err := s.resolve(objectPath)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove object: %w", err)
	}
	return nil
}

// SignedURL returns a download URL for the object that stays valid for ttl.
func (s *Store) SignedURL(ctx context.Context, objectPath string, ttl time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if ttl <= 0 {
		return "", fmt.Errorf("non-positive ttl %s: %w", ttl, ErrSign)
	}
	abs, err := s.resolve(objectPath)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSign, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return "", fmt.Errorf("%s: %w: %w", objectPath, ErrSign, err)
	}

	expires := s.now().Add(ttl).Unix()
	q := url.Values{}
	q.Set("expires", strconv.FormatInt(expires, 10))
	q.Set("signature", s.sign(objectPath, expires))

	return fmt.Sprintf("%s/storage/v1/object/sign/%s/%s?%s",
		s.baseURL, url.PathEscape(s.bucket), escapePath(objectPath), q.Encode()), nil
}

// Verify checks a signature produced by SignedURL.
func (s *Store) Verify(objectPath, expires, signature string) error {
	exp, err := strconv.ParseInt(expires, 10, 64)
	if err != nil {
		return ErrBadSignature
	}
	if s.now().Unix() > exp {
		return ErrBadSignature
	}
	want := s.sign(objectPath, exp)
	if !hmac.Equal([]byte(want), []byte(signature)) {
		return ErrBadSignature
	}
	return nil
}

func (s *Store) sign(objectPath string, expires int64) string {
	mac := hmac.New(sha256.New, s.key)
	fmt.Fprintf(mac, "%s\n%s\n%d", s.bucket, objectPath, expires)
	return hex.EncodeToString(mac.Sum(nil))
}

// resolve maps an object path onto the bucket directory.
func (s *Store) resolve(objectPath string) (string, error) {
	if objectPath == "" || strings.HasPrefix(objectPath, "/") || strings.Contains(objectPath, `\`) {
		return "", ErrInvalidPath
	}
	cleaned := path.Clean(objectPath)
	if cleaned != objectPath {
		return "", ErrInvalidPath
	}
	for _, segment := range strings.Split(cleaned, "/") {
		if segment == ".." || segment == "." {
			return "", ErrInvalidPath
		}
	}
	return filepath.Join(s.root, filepath.FromSlash(cleaned)), nil
}

func storageFailure(op string, err error) error {
	return fmt.Errorf("%w: %s: %w: %w", errStorageAPI, op, service.ErrTransport, err)
}

func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}

// ctxReader stops a copy once the context is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
