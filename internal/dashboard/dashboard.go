package dashboard

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"dersdefteri/internal/contextutil"
	"dersdefteri/internal/storage"
	"dersdefteri/internal/writing"
)

// Stats are the progress counters shown on the dashboard.
type Stats struct {
	Documents        map[storage.DocumentStatus]int `json:"documents"`
	DocumentsTotal   int                            `json:"documents_total"`
	Cards            map[storage.CardType]int       `json:"cards"`
	CardsTotal       int                            `json:"cards_total"`
	Exercises        int                            `json:"exercises"`
	WordsWritten     int                            `json:"words_written"`
	TrackedMistakes  int                            `json:"tracked_mistakes"`
	MasteredMistakes int                            `json:"mastered_mistakes"`
	Idioms           int                            `json:"idioms"`
}

// Service gathers dashboard counters.
type Service struct {
	docs     storage.DocumentStore
	cards    storage.FlashcardStore
	writing  storage.WritingStore
	mistakes storage.MistakeStore
}

// NewService creates a dashboard Service.
func NewService(docs storage.DocumentStore, cards storage.FlashcardStore, writing storage.WritingStore, mistakes storage.MistakeStore) *Service {
	return &Service{docs: docs, cards: cards, writing: writing, mistakes: mistakes}
}

// Stats runs the counter queries concurrently. The first failure cancels the rest.
func (s *Service) Stats(ctx context.Context, userID string) (*Stats, error) {
	start := time.Now()
	stats := &Stats{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		counts, err := s.docs.CountByStatus(gctx, userID)
		if err != nil {
			return fmt.Errorf("documents: %w", err)
		}
		stats.Documents = counts
		for _, n := range counts {
			stats.DocumentsTotal += n
		}
		return nil
	})
	g.Go(func() error {
		counts, err := s.cards.CountByType(gctx, userID)
		if err != nil {
			return fmt.Errorf("cards: %w", err)
		}
		stats.Cards = counts
		for _, n := range counts {
			stats.CardsTotal += n
		}
		return nil
	})
	g.Go(func() error {
		exercises, words, err := s.writing.ExerciseStats(gctx, userID)
		if err != nil {
			return fmt.Errorf("exercises: %w", err)
		}
		stats.Exercises, stats.WordsWritten = exercises, words
		return nil
	})
	g.Go(func() error {
		tracked, mastered, err := s.mistakes.Counts(gctx, userID)
		if err != nil {
			return fmt.Errorf("mistakes: %w", err)
		}
		stats.TrackedMistakes, stats.MasteredMistakes = tracked, mastered
		return nil
	})
	g.Go(func() error {
		corrections, err := s.writing.ListCorrections(gctx, userID)
		if err != nil {
			return fmt.Errorf("idioms: %w", err)
		}
		idioms, _ := writing.AggregateIdioms(corrections)
		stats.Idioms = len(idioms)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to gather dashboard stats: %w", err)
	}

	contextutil.LoggerFromContext(ctx).DebugContext(ctx, "dashboard stats gathered",
		"user_id", userID, "duration_s", time.Since(start).Seconds())
	return stats, nil
}
