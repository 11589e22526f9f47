package ingest

import (
	"context"
	"fmt"
	"time"

	"dersdefteri/internal/contextutil"
	"dersdefteri/internal/extract"
	"dersdefteri/internal/service"
	"dersdefteri/internal/storage"
)

// Signer produces time-limited download URLs for stored objects.
type Signer interface {
	SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)
}

// CardIndex keeps a search index of flashcards.
type CardIndex interface {
	IndexCards(ctx context.Context, cards []storage.Flashcard) error
	RemoveDocument(ctx context.Context, userID, documentID string) error
}

// Result is the outcome of processing one document.
type Result struct {
	Document storage.Document   `json:"document"`
	Cards    []storage.Flashcard `json:"cards"`
	Report   extract.Report      `json:"report"`
}

// Pipeline turns an uploaded document into flashcards.
type Pipeline struct {
	docs      storage.DocumentStore
	signer    Signer
	extractor extract.Extractor
	index     CardIndex
	urlTTL    time.Duration
}

// NewPipeline creates a Pipeline. index may be nil.
func NewPipeline(docs storage.DocumentStore, signer Signer, extractor extract.Extractor, index CardIndex, urlTTL time.Duration) *Pipeline {
	return &Pipeline{
		docs:      docs,
		signer:    signer,
		extractor: extractor,
		index:     index,
		urlTTL:    urlTTL,
	}
}

// Process runs extraction for one document owned by userID.
// Only pending or failed documents are accepted. Any failure after the
// document entered processing leaves it in error with its card count untouched.
func (p *Pipeline) Process(ctx context.Context, userID, documentID string) (*Result, error) {
	logger := contextutil.LoggerFromContext(ctx).With("document_id", documentID)

	doc, err := p.docs.GetByID(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}

	if err := p.docs.BeginProcessing(ctx, userID, documentID); err != nil {
		return nil, &service.StageError{Stage: service.StageTransition, Filename: doc.Filename, Err: err}
	}
	logger.InfoContext(ctx, "processing document", "filename", doc.Filename)
	start := time.Now()

	url, err := p.signer.SignedURL(ctx, doc.StoragePath, p.urlTTL)
	if err != nil {
		return nil, p.fail(ctx, doc, service.StageSign, err)
	}

	raw, err := p.extractor.Extract(ctx, extract.Request{PDFURL: url, Filename: doc.Filename, DocumentID: doc.ID})
	if err != nil {
		return nil, p.fail(ctx, doc, service.StageExtract, err)
	}

	payload, err := extract.Parse(raw)
	if err != nil {
		return nil, p.fail(ctx, doc, service.StageNormalize, err)
	}
	records, report := extract.Normalize(payload)
	if report.Skipped() > 0 {
		logger.WarnContext(ctx, "skipped malformed entries",
			"chapters", report.SkippedChapters,
			"grammar", report.SkippedGrammar,
			"vocabulary", report.SkippedVocabulary)
	}

	cards := make([]storage.Flashcard, len(records))
	for i, rec := range records {
		cards[i] = rec.Flashcard(userID)
	}

	if err := p.docs.CompleteExtraction(ctx, doc.ID, cards); err != nil {
		return nil, p.fail(ctx, doc, service.StagePersist, service.Classify(service.ErrPersistence, err))
	}

	doc.Status = storage.StatusReady
	doc.TotalCardsExtracted = len(cards)
	logger.InfoContext(ctx, "document processed",
		"cards", len(cards),
		"grammar", report.Grammar,
		"vocabulary", report.Vocabulary,
		"duration_s", time.Since(start).Seconds())

	if p.index != nil && len(cards) > 0 {
		if err := p.index.IndexCards(ctx, cards); err != nil {
			logger.WarnContext(ctx, "failed to index flashcards", "error", err)
		}
	}

	return &Result{Document: *doc, Cards: cards, Report: report}, nil
}

func (p *Pipeline) fail(ctx context.Context, doc *storage.Document, stage string, err error) error {
	logger := contextutil.LoggerFromContext(ctx)
	logger.ErrorContext(ctx, "document processing failed", "document_id", doc.ID, "stage", stage, "error", err)

	if markErr := p.docs.MarkError(context.WithoutCancel(ctx), doc.ID); markErr != nil {
		logger.ErrorContext(ctx, "failed to mark document as failed", "document_id", doc.ID, "error", markErr)
	}
	return &service.StageError{Stage: stage, Filename: doc.Filename, Err: err}
}

// SuccessMessage is the German summary shown after a document was processed.
func SuccessMessage(filename string, cards int) string {
	return fmt.Sprintf("%s: %d Karten extrahiert und gespeichert.", filename, cards)
}
