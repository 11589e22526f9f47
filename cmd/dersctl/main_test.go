package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"dersdefteri/internal/app"
	"dersdefteri/internal/config"
	"dersdefteri/internal/storage"
)

const testEmail = "ogrenci@example.com"

// setupApp points the CLI at a fresh database and object store.
func setupApp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	cfg := &config.Config{
		DBPath:            filepath.Join(dir, "test.db"),
		StorageRoot:       filepath.Join(dir, "objects"),
		StorageBucket:     "pdf-uploads",
		StorageSigningKey: "test-key",
		PublicBaseURL:     "http://localhost:9000",
		SignedURLTTL:      time.Hour,
		JWTSecret:         "test-secret",
		SessionTTL:        time.Hour,
		AnthropicBaseURL:  "http://127.0.0.1:1",
		ExtractMaxTokens:  1024,
		WritingMaxTokens:  1024,
	}

	a, err := app.New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = a.Close()
		application = nil
	})

	user := &storage.User{Email: testEmail, PasswordHash: "hash"}
	require.NoError(t, a.Users.Create(context.Background(), user))

	application = a
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writePDF(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 test"), 0o644))
	return path
}

func TestUploadAndList(t *testing.T) {
	dir := setupApp(t)
	first := writePDF(t, dir, "ünite 1.pdf")
	second := writePDF(t, dir, "ünite 2.pdf")

	out, err := execute(t, "upload", "--user", testEmail, first, second)
	require.NoError(t, err)
	assert.Contains(t, out, "[1/2] ünite 1.pdf")
	assert.Contains(t, out, "[2/2] ünite 2.pdf")
	assert.Contains(t, out, "2 PDFs erfolgreich hochgeladen.")

	out, err = execute(t, "documents", "--user", testEmail)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "STATUS")
	assert.Contains(t, out, "pending")
}

func TestUploadRejectsNonPDF(t *testing.T) {
	dir := setupApp(t)
	notes := filepath.Join(dir, "notlar.txt")
	require.NoError(t, os.WriteFile(notes, []byte("merhaba"), 0o644))

	_, err := execute(t, "upload", "--user", testEmail, notes)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notlar.txt")
}

func TestUnknownUser(t *testing.T) {
	setupApp(t)

	_, err := execute(t, "documents", "--user", "kimse@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kimse@example.com")
}

func TestProcessUnknownDocument(t *testing.T) {
	setupApp(t)

	_, err := execute(t, "process", "--user", testEmail, "00000000-0000-4000-8000-000000000000")
	require.Error(t, err)
}

func TestExportEmptyDeck(t *testing.T) {
	dir := setupApp(t)
	target := filepath.Join(dir, "deck.xlsx")

	out, err := execute(t, "export", "--user", testEmail, "--out", target)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+target)

	f, err := excelize.OpenFile(target)
	require.NoError(t, err)
	defer func() {
		_ = f.Close()
	}()
	assert.NotEmpty(t, f.GetSheetList())
}

func TestUploadDirectory(t *testing.T) {
	dir := setupApp(t)
	books := filepath.Join(dir, "kitaplar")
	require.NoError(t, os.MkdirAll(filepath.Join(books, "a1"), 0o755))
	writePDF(t, books, "ünite 1.pdf")
	writePDF(t, filepath.Join(books, "a1"), "ünite 2.pdf")
	t.Cleanup(func() { uploadDir = "" })

	out, err := execute(t, "upload", "--user", testEmail, "--dir", books)
	require.NoError(t, err)
	assert.Contains(t, out, "[2/2]")
	assert.Contains(t, out, "2 PDFs erfolgreich hochgeladen.")
}

func TestUploadNothing(t *testing.T) {
	setupApp(t)

	_, err := execute(t, "upload", "--user", testEmail)
	require.Error(t, err)
}

func TestUploadStorageFailureNamesFile(t *testing.T) {
	dir := setupApp(t)
	userID, err := application.ResolveUser(context.Background(), testEmail)
	require.NoError(t, err)
	// a plain file where the user's object directory belongs
	require.NoError(t, os.WriteFile(filepath.Join(dir, "objects", "pdf-uploads", userID), nil, 0o644))
	lesson := writePDF(t, dir, "ders-iki.pdf")

	out, err := execute(t, "upload", "--user", testEmail, lesson)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upload stopped: ders-iki.pdf: ")
	assert.NotContains(t, out, "Error:", "the error is printed once, by main")
}
