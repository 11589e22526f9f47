package deck

import (
	"context"
	"fmt"
	"strings"

	"dersdefteri/internal/contextutil"
	"dersdefteri/internal/storage"
	"dersdefteri/internal/vectorstore"
)

const embedBatchSize = 32

// Embedder turns texts into vectors.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Hit is one semantic search match.
type Hit struct {
	CardID string
	Score  float32
}

// Index keeps flashcard embeddings in a vector collection.
type Index struct {
	embedder   Embedder
	store      vectorstore.VectorStore
	collection string
}

// NewIndex creates an Index over collection.
func NewIndex(embedder Embedder, store vectorstore.VectorStore, collection string) *Index {
	return &Index{
		embedder:   embedder,
		store:      store,
		collection: collection,
	}
}

// IndexCards embeds and stores the cards, keyed by card ID.
func (ix *Index) IndexCards(ctx context.Context, cards []storage.Flashcard) error {
	logger := contextutil.LoggerFromContext(ctx)

	for start := 0; start < len(cards); start += embedBatchSize {
		end := min(start+embedBatchSize, len(cards))
		batch := cards[start:end]

		texts := make([]string, len(batch))
		for i, card := range batch {
			texts[i] = cardText(card)
		}

		vectors, err := ix.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to embed flashcards: %w", err)
		}

		points := make([]vectorstore.Point, len(batch))
		for i, card := range batch {
			meta := map[string]any{
				"card_id":       card.ID,
				"user_id":       card.UserID,
				"source_pdf_id": card.SourcePDFID,
				"card_type":     string(card.CardType),
			}
			if card.ChapterNumber != nil {
				meta["chapter_number"] = *card.ChapterNumber
			}
			points[i] = vectorstore.Point{ID: card.ID, Vec: vectors[i], Meta: meta}
		}

		if err := ix.store.Upsert(ctx, ix.collection, points); err != nil {
			return fmt.Errorf("failed to store flashcard vectors: %w", err)
		}
	}

	logger.InfoContext(ctx, "flashcards indexed", "count", len(cards))
	return nil
}

// RemoveDocument deletes the vectors of every card of one document.
func (ix *Index) RemoveDocument(ctx context.Context, userID, documentID string) error {
	return ix.store.DeleteByFilter(ctx, ix.collection, vectorstore.Filter{UserID: userID, DocumentID: documentID})
}

// Search returns the user's cards closest to query.
func (ix *Index) Search(ctx context.Context, userID, query string, k int) ([]Hit, error) {
	vectors, err := ix.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := ix.store.Search(ctx, ix.collection, vectors[0], k, vectorstore.Filter{UserID: userID})
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		id, _ := r.Meta["card_id"].(string)
		if id == "" {
			id = r.PointID
		}
		hits = append(hits, Hit{CardID: id, Score: r.Score})
	}
	return hits, nil
}

func cardText(card storage.Flashcard) string {
	parts := []string{card.QuestionDE, card.AnswerTR}
	if card.ExplanationDE != nil {
		parts = append(parts, *card.ExplanationDE)
	}
	return strings.Join(parts, "\n")
}
