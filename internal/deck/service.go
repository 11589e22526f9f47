package deck

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"dersdefteri/internal/service"
	"dersdefteri/internal/storage"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

// ErrSearchDisabled is returned by Search when no index is configured.
var ErrSearchDisabled = fmt.Errorf("flashcard search is not configured: %w", service.ErrUnavailable)

// Searcher finds cards similar to a query.
type Searcher interface {
	Search(ctx context.Context, userID, query string, k int) ([]Hit, error)
}

// SearchResult is a card matched by Search. Score is the vector similarity;
// Rank adds the lexical match of the query against the card and its chapter.
type SearchResult struct {
	Card  storage.Flashcard `json:"card"`
	Score float32           `json:"score"`
	Rank  float32           `json:"rank"`
}

// Service serves the flashcard views.
type Service struct {
	cards    storage.FlashcardStore
	searcher Searcher
}

// NewService creates a Service. searcher may be nil.
func NewService(cards storage.FlashcardStore, searcher Searcher) *Service {
	return &Service{cards: cards, searcher: searcher}
}

// Grouped returns the user's cards grouped for display.
func (s *Service) Grouped(ctx context.Context, userID string) ([]Group, error) {
	cards, err := s.cards.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return GroupCards(cards), nil
}

// ExportXLSX returns the user's cards as an XLSX workbook.
func (s *Service) ExportXLSX(ctx context.Context, userID string) ([]byte, error) {
	groups, err := s.Grouped(ctx, userID)
	if err != nil {
		return nil, err
	}
	return WriteXLSX(groups)
}

// StudySheet returns the user's cards as an HTML page.
func (s *Service) StudySheet(ctx context.Context, userID string) ([]byte, error) {
	groups, err := s.Grouped(ctx, userID)
	if err != nil {
		return nil, err
	}
	return RenderStudySheet(groups)
}

// Search returns up to limit of the user's cards closest to query.
func (s *Service) Search(ctx context.Context, userID, query string, limit int) ([]SearchResult, error) {
	if s.searcher == nil {
		return nil, ErrSearchDisabled
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &service.ValidationError{Field: "q", Message: "Suchbegriff fehlt."}
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	limit = min(limit, maxSearchLimit)

	hits, err := s.searcher.Search(ctx, userID, query, limit)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(hits))
	scores := make(map[string]float32, len(hits))
	for i, h := range hits {
		ids[i] = h.CardID
		scores[h.CardID] = h.Score
	}

	cards, err := s.cards.GetByIDs(ctx, userID, ids)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, len(cards))
	for i, card := range cards {
		score := scores[card.ID]
		results[i] = SearchResult{Card: card, Score: score, Rank: score + lexicalScore(query, card)}
	}
	slices.SortStableFunc(results, func(a, b SearchResult) int {
		return cmp.Compare(b.Rank, a.Rank)
	})
	return results, nil
}
