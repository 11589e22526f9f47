package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"dersdefteri/internal/handlers"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Auth          handlers.AuthService
	Authenticator Authenticator
	Documents     handlers.DocumentService
	Uploader      handlers.Uploader
	Processor     handlers.Processor
	Extractor     handlers.Extractor
	Deck          handlers.DeckService
	Writing       handlers.WritingService
	Mistakes      handlers.MistakeService
	Dashboard     handlers.DashboardService
	Objects       handlers.ObjectReader
	Health        http.Handler

	AllowedOrigin  string
	MaxUploadBytes int64
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)

	requireAuth := Authenticate(deps.Authenticator)

	authHandler := handlers.NewAuthHandler(deps.Auth)
	documentsHandler := handlers.NewDocumentsHandler(deps.Documents, deps.Uploader, deps.Processor, deps.MaxUploadBytes)
	flashcardsHandler := handlers.NewFlashcardsHandler(deps.Deck)
	writingHandler := handlers.NewWritingHandler(deps.Writing)
	mistakesHandler := handlers.NewMistakesHandler(deps.Mistakes)

	r.Route("/api", func(r chi.Router) {
		r.Use(CORS(CORSConfig{
			AllowedOrigin: deps.AllowedOrigin,
			Methods:       []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			Headers:       []string{"Content-Type", "Authorization"},
		}))

		r.Method(http.MethodGet, "/health", deps.Health)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/auth/me", authHandler.Me)

			r.Get("/documents", documentsHandler.List)
			r.Post("/documents", documentsHandler.Upload)
			r.Delete("/documents/{id}", documentsHandler.Delete)
			r.Post("/documents/{id}/process", documentsHandler.Process)

			r.Get("/flashcards", flashcardsHandler.List)
			r.Get("/flashcards/export.xlsx", flashcardsHandler.Export)
			r.Get("/flashcards/sheet", flashcardsHandler.Sheet)
			r.Get("/flashcards/search", flashcardsHandler.Search)

			r.Get("/writing/prompt", writingHandler.Prompt)
			r.Get("/writing", writingHandler.History)
			r.Post("/writing", writingHandler.Submit)
			r.Get("/idioms", writingHandler.Idioms)

			r.Get("/mistakes", mistakesHandler.List)
			r.Patch("/mistakes/{id}", mistakesHandler.Update)

			r.Method(http.MethodGet, "/dashboard", handlers.NewDashboardHandler(deps.Dashboard))
		})
	})

	r.Route("/functions", func(r chi.Router) {
		r.Use(CORS(CORSConfig{
			AllowedOrigin: deps.AllowedOrigin,
			Methods:       []string{"POST", "OPTIONS"},
			Headers:       []string{"authorization", "x-client-info", "apikey", "content-type"},
		}))
		r.With(requireAuth).Handle("/process-pdf", handlers.NewProcessPDFHandler(deps.Extractor))
	})

	download := handlers.NewDownloadHandler(deps.Objects)
	r.Method(http.MethodGet, "/storage/v1/object/sign/{bucket}/*", download)
	r.Method(http.MethodHead, "/storage/v1/object/sign/{bucket}/*", download)

	return r
}
