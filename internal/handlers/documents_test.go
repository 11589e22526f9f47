package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"dersdefteri/internal/extract"
	"dersdefteri/internal/handlers/mocks"
	"dersdefteri/internal/ingest"
	"dersdefteri/internal/service"
	"dersdefteri/internal/storage"
)

func multipartBody(t *testing.T, files map[string]string, order ...string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for _, name := range order {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename="%s"`, name))
		h.Set("Content-Type", "application/pdf")
		part, err := mw.CreatePart(h)
		if err != nil {
			t.Fatalf("CreatePart() error = %v", err)
		}
		_, _ = part.Write([]byte(files[name]))
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return body, mw.FormDataContentType()
}

func TestDocumentsHandler_Upload(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockUploader := mocks.NewMockUploader(ctrl)

	mockUploader.EXPECT().Upload(gomock.Any(), testUserID, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, files []ingest.File, progress ingest.ProgressFunc) ([]storage.Document, error) {
			if len(files) != 2 {
				t.Fatalf("Upload() got %d files, want 2", len(files))
			}
			docs := make([]storage.Document, len(files))
			for i, f := range files {
				progress(ingest.Progress{Current: i + 1, Total: len(files), Filename: f.Name})
				rc, err := f.Open()
				if err != nil {
					t.Fatalf("Open() error = %v", err)
				}
				data, _ := io.ReadAll(rc)
				_ = rc.Close()
				if f.ContentType != "application/pdf" {
					t.Errorf("file %s content type = %q", f.Name, f.ContentType)
				}
				docs[i] = storage.Document{ID: fmt.Sprintf("doc-%d", i), Filename: f.Name, Status: storage.StatusPending, TotalCardsExtracted: len(data)}
			}
			return docs, nil
		})

	body, contentType := multipartBody(t, map[string]string{"a.pdf": "%PDF-a", "b.pdf": "%PDF-b"}, "a.pdf", "b.pdf")
	req := authed(httptest.NewRequest(http.MethodPost, "/api/documents", body))
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	NewDocumentsHandler(nil, mockUploader, nil, 1<<20).Upload(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Upload() status = %v, want %v: %s", w.Code, http.StatusCreated, w.Body.String())
	}
	var resp UploadResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Message != "2 PDFs erfolgreich hochgeladen." {
		t.Errorf("Upload() message = %q", resp.Message)
	}
	if len(resp.Documents) != 2 || resp.Documents[1].Filename != "b.pdf" {
		t.Errorf("Upload() documents = %+v", resp.Documents)
	}
}

func TestDocumentsHandler_Upload_Failures(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name: "batch stopped at second file",
			err: &ingest.BatchError{
				Index:    1,
				Filename: "b.pdf",
				Err:      fmt.Errorf("%w: %w", errors.New(service.MsgStorageFailure), service.ErrTransport),
				Uploaded: []storage.Document{{ID: "doc-0", Filename: "a.pdf"}},
			},
			wantStatus: http.StatusBadGateway,
			wantError:  "b.pdf: Fehler beim Hochladen. Überprüfe die Storage-Konfiguration.",
		},
		{
			name:       "not a pdf",
			err:        &service.ValidationError{Field: "files", Message: "notes.txt: " + service.MsgPDFOnly},
			wantStatus: http.StatusBadRequest,
			wantError:  "notes.txt: " + service.MsgPDFOnly,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockUploader := mocks.NewMockUploader(ctrl)
			mockUploader.EXPECT().Upload(gomock.Any(), testUserID, gomock.Any(), gomock.Any()).Return(nil, tt.err)

			body, contentType := multipartBody(t, map[string]string{"a.pdf": "x"}, "a.pdf")
			req := authed(httptest.NewRequest(http.MethodPost, "/api/documents", body))
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()

			NewDocumentsHandler(nil, mockUploader, nil, 1<<20).Upload(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Upload() status = %v, want %v", w.Code, tt.wantStatus)
			}
			if got := decodeError(t, w).Error; got != tt.wantError {
				t.Errorf("Upload() error = %q, want %q", got, tt.wantError)
			}
		})
	}
}

func TestDocumentsHandler_Upload_BadBody(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		limit      int64
		wantStatus int
	}{
		{name: "not multipart", body: "plain", limit: 1 << 20, wantStatus: http.StatusBadRequest},
		{name: "too large", body: "", limit: 16, wantStatus: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if tt.body == "" {
				body, contentType := multipartBody(t, map[string]string{"a.pdf": "%PDF-1.7 with more than sixteen bytes"}, "a.pdf")
				req = httptest.NewRequest(http.MethodPost, "/api/documents", body)
				req.Header.Set("Content-Type", contentType)
			} else {
				req = httptest.NewRequest(http.MethodPost, "/api/documents", bytes.NewBufferString(tt.body))
				req.Header.Set("Content-Type", "text/plain")
			}
			w := httptest.NewRecorder()

			NewDocumentsHandler(nil, nil, nil, tt.limit).Upload(w, authed(req))

			if w.Code != tt.wantStatus {
				t.Errorf("Upload() status = %v, want %v", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestDocumentsHandler_ListAndDelete(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockDocs := mocks.NewMockDocumentService(ctrl)
	mockDocs.EXPECT().List(gomock.Any(), testUserID).Return([]storage.Document{{ID: "doc-1", Filename: "kitap.pdf"}}, nil)
	mockDocs.EXPECT().Delete(gomock.Any(), testUserID, "doc-1").Return(nil)
	mockDocs.EXPECT().Delete(gomock.Any(), testUserID, "doc-2").Return(fmt.Errorf("record %w", service.ErrNotFound))

	h := NewDocumentsHandler(mockDocs, nil, nil, 1<<20)

	w := httptest.NewRecorder()
	h.List(w, authed(httptest.NewRequest(http.MethodGet, "/api/documents", nil)))
	if w.Code != http.StatusOK {
		t.Errorf("List() status = %v, want %v", w.Code, http.StatusOK)
	}
	var docs []storage.Document
	_ = json.NewDecoder(w.Body).Decode(&docs)
	if len(docs) != 1 || docs[0].Filename != "kitap.pdf" {
		t.Errorf("List() = %+v", docs)
	}

	w = httptest.NewRecorder()
	h.Delete(w, withParams(authed(httptest.NewRequest(http.MethodDelete, "/api/documents/doc-1", nil)), "id", "doc-1"))
	if w.Code != http.StatusNoContent {
		t.Errorf("Delete() status = %v, want %v", w.Code, http.StatusNoContent)
	}

	w = httptest.NewRecorder()
	h.Delete(w, withParams(authed(httptest.NewRequest(http.MethodDelete, "/api/documents/doc-2", nil)), "id", "doc-2"))
	if w.Code != http.StatusNotFound {
		t.Errorf("Delete() missing status = %v, want %v", w.Code, http.StatusNotFound)
	}
}

func TestDocumentsHandler_Process(t *testing.T) {
	tests := []struct {
		name       string
		result     *ingest.Result
		err        error
		wantStatus int
		wantBody   func(t *testing.T, body []byte)
	}{
		{
			name: "processed",
			result: &ingest.Result{
				Document: storage.Document{ID: "doc-1", Filename: "kitap.pdf", Status: storage.StatusReady, TotalCardsExtracted: 2},
				Cards:    []storage.Flashcard{{ID: "c1"}, {ID: "c2"}},
				Report:   extract.Report{Chapters: 1, Grammar: 1, Vocabulary: 1},
			},
			wantStatus: http.StatusOK,
			wantBody: func(t *testing.T, body []byte) {
				var resp map[string]any
				if err := json.Unmarshal(body, &resp); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				if resp["message"] != "kitap.pdf: 2 Karten extrahiert und gespeichert." {
					t.Errorf("Process() message = %v", resp["message"])
				}
				if _, ok := resp["document"]; !ok {
					t.Error("Process() response should include the document")
				}
			},
		},
		{
			name:       "already processing",
			err:        &service.StageError{Stage: service.StageTransition, Filename: "kitap.pdf", Err: service.ErrConflict},
			wantStatus: http.StatusConflict,
			wantBody: func(t *testing.T, body []byte) {
				var resp ErrorResponse
				_ = json.Unmarshal(body, &resp)
				if !strings.HasPrefix(resp.Error, "kitap.pdf: ") {
					t.Errorf("Process() error = %q, want filename prefix", resp.Error)
				}
			},
		},
		{
			name:       "model returned prose",
			err:        &service.StageError{Stage: service.StageNormalize, Filename: "kitap.pdf", Err: &extract.ParseError{Raw: "Entschuldigung", Err: errors.New("no object")}},
			wantStatus: http.StatusBadGateway,
			wantBody: func(t *testing.T, body []byte) {
				var resp ErrorResponse
				_ = json.Unmarshal(body, &resp)
				if resp.Error != "kitap.pdf: Fehler bei der Verarbeitung" || resp.Raw != "Entschuldigung" {
					t.Errorf("Process() error response = %+v", resp)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockProcessor := mocks.NewMockProcessor(ctrl)
			mockProcessor.EXPECT().Process(gomock.Any(), testUserID, "doc-1").Return(tt.result, tt.err)

			w := httptest.NewRecorder()
			req := withParams(authed(httptest.NewRequest(http.MethodPost, "/api/documents/doc-1/process", nil)), "id", "doc-1")
			NewDocumentsHandler(nil, nil, mockProcessor, 1<<20).Process(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Process() status = %v, want %v", w.Code, tt.wantStatus)
			}
			if tt.wantBody != nil {
				tt.wantBody(t, w.Body.Bytes())
			}
		})
	}
}
