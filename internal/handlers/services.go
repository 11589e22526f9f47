package handlers

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_services.go -package=mocks dersdefteri/internal/handlers AuthService,DocumentService,Uploader,Processor,Extractor,DeckService,WritingService,MistakeService,DashboardService

import (
	"context"

	"dersdefteri/internal/auth"
	"dersdefteri/internal/dashboard"
	"dersdefteri/internal/deck"
	"dersdefteri/internal/extract"
	"dersdefteri/internal/ingest"
	"dersdefteri/internal/storage"
	"dersdefteri/internal/writing"
)

// AuthService registers and signs in users.
type AuthService interface {
	Register(ctx context.Context, email, password string) (*storage.User, error)
	Login(ctx context.Context, email, password string) (*auth.Session, error)
	Me(ctx context.Context, userID string) (*storage.User, error)
}

// DocumentService lists and deletes source documents.
type DocumentService interface {
	List(ctx context.Context, userID string) ([]storage.Document, error)
	Delete(ctx context.Context, userID, documentID string) error
}

// Uploader stores a batch of documents.
type Uploader interface {
	Upload(ctx context.Context, userID string, files []ingest.File, progress ingest.ProgressFunc) ([]storage.Document, error)
}

// Processor runs the flashcard pipeline for one document.
type Processor interface {
	Process(ctx context.Context, userID, documentID string) (*ingest.Result, error)
}

// Extractor returns the raw model response for a document URL.
type Extractor interface {
	Extract(ctx context.Context, req extract.Request) (string, error)
}

// DeckService serves the flashcard views.
type DeckService interface {
	Grouped(ctx context.Context, userID string) ([]deck.Group, error)
	ExportXLSX(ctx context.Context, userID string) ([]byte, error)
	StudySheet(ctx context.Context, userID string) ([]byte, error)
	Search(ctx context.Context, userID, query string, limit int) ([]deck.SearchResult, error)
}

// WritingService runs the daily writing workflow and the idiom library.
type WritingService interface {
	Prompt() string
	Submit(ctx context.Context, userID string, sub writing.Submission) (*writing.Result, error)
	History(ctx context.Context, userID string) ([]storage.ExerciseWithCorrection, error)
	Idioms(ctx context.Context, userID, q string) ([]writing.Idiom, error)
}

// MistakeService serves the mistake tracker.
type MistakeService interface {
	Top(ctx context.Context, userID string) ([]storage.Mistake, error)
	SetMastery(ctx context.Context, userID, id string, level int) (*storage.Mistake, error)
}

// DashboardService gathers progress counters.
type DashboardService interface {
	Stats(ctx context.Context, userID string) (*dashboard.Stats, error)
}
