// Package app wires configuration into the services shared by the API
// server and the operator CLI.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"dersdefteri/internal/auth"
	"dersdefteri/internal/config"
	"dersdefteri/internal/contextutil"
	"dersdefteri/internal/dashboard"
	"dersdefteri/internal/deck"
	"dersdefteri/internal/extract"
	"dersdefteri/internal/ingest"
	"dersdefteri/internal/llm"
	"dersdefteri/internal/objectstore"
	"dersdefteri/internal/service"
	"dersdefteri/internal/storage"
	"dersdefteri/internal/vectorstore"
	"dersdefteri/internal/writing"
)

// App holds the constructed services.
type App struct {
	Config *config.Config
	DB     *sql.DB

	Users   *storage.UserRepo
	Objects *objectstore.Store
	LLM     *llm.Client

	// VectorStore is nil when flashcard search is disabled.
	VectorStore *vectorstore.QdrantStore

	Auth      *auth.Service
	Uploader  *ingest.Uploader
	Pipeline  *ingest.Pipeline
	Documents *ingest.Documents
	// Invoker calls the model directly and backs POST /functions/process-pdf.
	Invoker *extract.Invoker
	// Extractor is what the pipeline uses: the Invoker, or a remote
	// process-pdf endpoint when EXTRACT_FUNCTION_URL is set.
	Extractor extract.Extractor
	Deck      *deck.Service
	Writing   *writing.Service
	Mistakes  *writing.Mistakes
	Dashboard *dashboard.Service
}

// NewLogger builds the process logger from cfg, writing to w.
func NewLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// New opens the database and object store and constructs every service.
// The caller must Close the returned App.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := contextutil.LoggerFromContext(ctx)

	db, err := storage.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := storage.Migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.InfoContext(ctx, "database initialized", "path", cfg.DBPath)

	a := &App{Config: cfg, DB: db}
	if err := a.build(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx context.Context) error {
	cfg := a.Config
	logger := contextutil.LoggerFromContext(ctx)

	a.Users = storage.NewUserRepo(a.DB)
	docs := storage.NewDocumentRepo(a.DB)
	cards := storage.NewFlashcardRepo(a.DB)
	writingRepo := storage.NewWritingRepo(a.DB)
	mistakeRepo := storage.NewMistakeRepo(a.DB)

	objects, err := objectstore.New(cfg.StorageRoot, cfg.StorageBucket, cfg.StorageSigningKey, cfg.PublicBaseURL)
	if err != nil {
		return fmt.Errorf("failed to open object store: %w", err)
	}
	a.Objects = objects

	a.Auth = auth.NewService(a.Users, auth.NewTokens(cfg.JWTSecret, cfg.SessionTTL))

	a.LLM = llm.NewClient(cfg.AnthropicBaseURL, cfg.AnthropicAPIKey, cfg.AnthropicModel)
	if cfg.AnthropicAPIKey == "" {
		logger.WarnContext(ctx, "ANTHROPIC_API_KEY is not set; extraction and writing analysis will fail")
	}

	a.Invoker = extract.NewInvoker(a.LLM, cfg.ExtractMaxTokens)
	a.Extractor = a.Invoker
	if cfg.ExtractFunctionURL != "" {
		a.Extractor = extract.NewFunctionClient(cfg.ExtractFunctionURL, a.sessionToken)
		logger.InfoContext(ctx, "delegating extraction", "url", cfg.ExtractFunctionURL)
	}

	// Both stay nil interfaces when search is disabled.
	var index ingest.CardIndex
	var searcher deck.Searcher
	if cfg.SearchEnabled() {
		ix, err := a.openIndex(ctx)
		if err != nil {
			return err
		}
		index, searcher = ix, ix
	}

	a.Uploader = ingest.NewUploader(objects, docs)
	a.Pipeline = ingest.NewPipeline(docs, objects, a.Extractor, index, cfg.SignedURLTTL)
	a.Documents = ingest.NewDocuments(docs, objects, index)
	a.Deck = deck.NewService(cards, searcher)

	a.Writing = writing.NewService(writingRepo, writing.NewAnalyzer(a.LLM, cfg.WritingMaxTokens))
	a.Mistakes = writing.NewMistakes(mistakeRepo)
	a.Dashboard = dashboard.NewService(docs, cards, writingRepo, mistakeRepo)
	return nil
}

// openIndex connects to Qdrant and checks the embeddings model output size.
func (a *App) openIndex(ctx context.Context) (*deck.Index, error) {
	cfg := a.Config
	logger := contextutil.LoggerFromContext(ctx)

	store, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}
	a.VectorStore = store

	if err := store.EnsureCollection(ctx, cfg.QdrantCollection, cfg.QdrantVectorSize); err != nil {
		return nil, fmt.Errorf("failed to ensure Qdrant collection: %w", err)
	}
	logger.InfoContext(ctx, "qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.QdrantVectorSize)

	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModelName, cfg.QdrantVectorSize)
	probe, err := embedder.EmbedTexts(ctx, []string{"test"})
	if err != nil {
		return nil, fmt.Errorf("failed to validate embedding client: %w", err)
	}
	if len(probe) == 0 || len(probe[0]) != cfg.QdrantVectorSize {
		return nil, fmt.Errorf("embedding vector size mismatch: expected %d", cfg.QdrantVectorSize)
	}
	logger.InfoContext(ctx, "embedding client validated", "vector_size", cfg.QdrantVectorSize)

	return deck.NewIndex(embedder, store, cfg.QdrantCollection), nil
}

// sessionToken issues a token for the user the call is made for.
func (a *App) sessionToken(ctx context.Context) (string, error) {
	userID, ok := contextutil.UserIDFromContext(ctx)
	if !ok {
		return "", auth.ErrNotSignedIn
	}
	return a.Auth.Token(userID)
}

// ResolveUser accepts a user id or an email address and returns the user id.
func (a *App) ResolveUser(ctx context.Context, ref string) (string, error) {
	if auth.ValidUserID(ref) {
		u, err := a.Users.GetByID(ctx, ref)
		if err != nil {
			return "", err
		}
		return u.ID, nil
	}
	u, err := a.Users.GetByEmail(ctx, ref)
	if errors.Is(err, service.ErrNotFound) {
		return "", fmt.Errorf("no user %q: %w", ref, err)
	}
	if err != nil {
		return "", err
	}
	return u.ID, nil
}

// Close releases the database and the vector store connection.
func (a *App) Close() error {
	var errs []error
	if a.VectorStore != nil {
		errs = append(errs, a.VectorStore.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}
