package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dersdefteri/internal/objectstore"
)

func TestDownloadHandler(t *testing.T) {
	store, err := objectstore.New(t.TempDir(), "pdf-uploads", "test-key", "http://localhost:8080")
	require.NoError(t, err)

	objectPath := testUserID + "/1700000000000_kitap.pdf"
	_, err = store.Put(context.Background(), objectPath, strings.NewReader("%PDF-1.4 test"))
	require.NoError(t, err)

	signed, err := store.SignedURL(context.Background(), objectPath, time.Hour)
	require.NoError(t, err)
	u, err := url.Parse(signed)
	require.NoError(t, err)

	router := chi.NewRouter()
	router.Method(http.MethodGet, "/storage/v1/object/sign/{bucket}/*", NewDownloadHandler(store))

	get := func(target string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		return w
	}

	t.Run("valid signature", func(t *testing.T) {
		w := get(u.RequestURI())
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Equal(t, "%PDF-1.4 test", w.Body.String())
	})

	t.Run("tampered signature", func(t *testing.T) {
		q := u.Query()
		q.Set("signature", strings.Repeat("0", 64))
		w := get(u.Path + "?" + q.Encode())
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("missing signature", func(t *testing.T) {
		w := get(u.Path)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("other bucket", func(t *testing.T) {
		w := get(strings.Replace(u.RequestURI(), "/pdf-uploads/", "/avatars/", 1))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("deleted object", func(t *testing.T) {
		gone := testUserID + "/1700000000001_weg.pdf"
		_, err := store.Put(context.Background(), gone, strings.NewReader("%PDF"))
		require.NoError(t, err)
		link, err := store.SignedURL(context.Background(), gone, time.Hour)
		require.NoError(t, err)
		require.NoError(t, store.Remove(context.Background(), gone))

		lu, err := url.Parse(link)
		require.NoError(t, err)
		w := get(lu.RequestURI())
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
