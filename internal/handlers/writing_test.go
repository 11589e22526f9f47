package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/mock/gomock"

	"dersdefteri/internal/handlers/mocks"
	"dersdefteri/internal/service"
	"dersdefteri/internal/storage"
	"dersdefteri/internal/writing"
)

func TestWritingHandler_Prompt(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockWriting := mocks.NewMockWritingService(ctrl)
	mockWriting.EXPECT().Prompt().Return(writing.Prompts[0])

	w := httptest.NewRecorder()
	NewWritingHandler(mockWriting).Prompt(w, httptest.NewRequest(http.MethodGet, "/api/writing/prompt", nil))

	var resp PromptResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Prompt != writing.Prompts[0] {
		t.Errorf("Prompt() = %q, want %q", resp.Prompt, writing.Prompts[0])
	}
}

func TestWritingHandler_Submit(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		mockSetup   func(*mocks.MockWritingService)
		wantStatus  int
		wantError   string
		wantDetails bool
	}{
		{
			name: "analyzed",
			body: `{"prompt": "Thema", "custom_topic": true, "text": "Bugün hava çok güzel."}`,
			mockSetup: func(m *mocks.MockWritingService) {
				m.EXPECT().Submit(gomock.Any(), testUserID, writing.Submission{Prompt: "Thema", CustomTopic: true, Text: "Bugün hava çok güzel."}).
					Return(&writing.Result{Exercise: storage.WritingExercise{ID: "ex-1"}, Analysis: &writing.Analysis{}}, nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "invalid body",
			body:       "[",
			mockSetup:  func(m *mocks.MockWritingService) {},
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid request body",
		},
		{
			name: "text too short",
			body: `{"text": "kısa"}`,
			mockSetup: func(m *mocks.MockWritingService) {
				m.EXPECT().Submit(gomock.Any(), testUserID, gomock.Any()).
					Return(nil, &service.ValidationError{Field: "text", Message: writing.MsgTextTooShort})
			},
			wantStatus: http.StatusBadRequest,
			wantError:  writing.MsgTextTooShort,
		},
		{
			name: "analysis failed",
			body: `{"text": "uzun metin"}`,
			mockSetup: func(m *mocks.MockWritingService) {
				m.EXPECT().Submit(gomock.Any(), testUserID, gomock.Any()).
					Return(nil, fmt.Errorf("%w: %w", writing.ErrParse, errors.New("unexpected end of JSON input")))
			},
			wantStatus:  http.StatusBadGateway,
			wantError:   "Fehler bei der Analyse",
			wantDetails: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockWriting := mocks.NewMockWritingService(ctrl)
			tt.mockSetup(mockWriting)

			w := httptest.NewRecorder()
			NewWritingHandler(mockWriting).Submit(w, authed(httptest.NewRequest(http.MethodPost, "/api/writing", bytes.NewBufferString(tt.body))))

			if w.Code != tt.wantStatus {
				t.Errorf("Submit() status = %v, want %v", w.Code, tt.wantStatus)
			}
			if tt.wantError != "" {
				resp := decodeError(t, w)
				if resp.Error != tt.wantError {
					t.Errorf("Submit() error = %q, want %q", resp.Error, tt.wantError)
				}
				if (resp.Details != "") != tt.wantDetails {
					t.Errorf("Submit() details = %q, wantDetails %v", resp.Details, tt.wantDetails)
				}
			}
		})
	}
}

func TestWritingHandler_HistoryAndIdioms(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockWriting := mocks.NewMockWritingService(ctrl)
	mockWriting.EXPECT().History(gomock.Any(), testUserID).Return([]storage.ExerciseWithCorrection{
		{WritingExercise: storage.WritingExercise{ID: "ex-1", PromptDE: "Thema"}},
	}, nil)
	mockWriting.EXPECT().Idioms(gomock.Any(), testUserID, "göz").Return([]writing.Idiom{{Deyim: "göz atmak", LearnedCount: 2}}, nil)

	h := NewWritingHandler(mockWriting)

	w := httptest.NewRecorder()
	h.History(w, authed(httptest.NewRequest(http.MethodGet, "/api/writing", nil)))
	var history []map[string]any
	_ = json.NewDecoder(w.Body).Decode(&history)
	if len(history) != 1 || history[0]["id"] != "ex-1" || history[0]["correction"] != nil {
		t.Errorf("History() = %v", history)
	}

	w = httptest.NewRecorder()
	h.Idioms(w, authed(httptest.NewRequest(http.MethodGet, "/api/idioms?q=g%C3%B6z", nil)))
	var idioms []writing.Idiom
	_ = json.NewDecoder(w.Body).Decode(&idioms)
	if len(idioms) != 1 || idioms[0].LearnedCount != 2 {
		t.Errorf("Idioms() = %+v", idioms)
	}
}
