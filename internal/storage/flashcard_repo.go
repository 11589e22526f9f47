package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_flashcard_store.go -package=mocks dersdefteri/internal/storage FlashcardStore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// FlashcardStore defines the interface for flashcard read operations.
// Cards are written only by DocumentStore.CompleteExtraction.
type FlashcardStore interface {
	// ListByUser lists the user's cards in insertion order.
	ListByUser(ctx context.Context, userID string) ([]Flashcard, error)
	// ListByDocument lists the cards extracted from one document.
	ListByDocument(ctx context.Context, userID, documentID string) ([]Flashcard, error)
	// GetByIDs returns the user's cards with the given IDs, in the order given.
	// Unknown IDs are skipped.
	GetByIDs(ctx context.Context, userID string, ids []string) ([]Flashcard, error)
	// CountByType counts the user's cards per type.
	CountByType(ctx context.Context, userID string) (map[CardType]int, error)
}

// FlashcardRepo provides methods for flashcard operations.
// It implements the FlashcardStore interface.
type FlashcardRepo struct {
	db *sql.DB
}

// NewFlashcardRepo creates a new FlashcardRepo.
func NewFlashcardRepo(db *sql.DB) *FlashcardRepo {
	return &FlashcardRepo{db: db}
}

const flashcardColumns = `id, user_id, source_pdf_id, card_type, question_de, answer_tr,
	explanation_de, chapter_number, chapter_title, created_at`

// ListByUser lists the user's cards in insertion order.
func (r *FlashcardRepo) ListByUser(ctx context.Context, userID string) ([]Flashcard, error) {
	return r.query(ctx,
		"SELECT "+flashcardColumns+" FROM flashcards WHERE user_id = ? ORDER BY rowid",
		userID,
	)
}

// ListByDocument lists the cards extracted from one document.
func (r *FlashcardRepo) ListByDocument(ctx context.Context, userID, documentID string) ([]Flashcard, error) {
	return r.query(ctx,
		"SELECT "+flashcardColumns+" FROM flashcards WHERE user_id = ? AND source_pdf_id = ? ORDER BY rowid",
		userID, documentID,
	)
}

// GetByIDs returns the user's cards with the given IDs, in the order given.
func (r *FlashcardRepo) GetByIDs(ctx context.Context, userID string, ids []string) ([]Flashcard, error) {
	if len(ids) == 0 {
		return []Flashcard{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids)+1)
	args = append(args, userID)
	for _, id := range ids {
		args = append(args, id)
	}

	cards, err := r.query(ctx,
		"SELECT "+flashcardColumns+" FROM flashcards WHERE user_id = ? AND id IN ("+placeholders+")",
		args...,
	)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]Flashcard, len(cards))
	for _, c := range cards {
		byID[c.ID] = c
	}
	ordered := make([]Flashcard, 0, len(cards))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			ordered = append(ordered, c)
		}
	}
	return ordered, nil
}

// CountByType counts the user's cards per type.
func (r *FlashcardRepo) CountByType(ctx context.Context, userID string) (map[CardType]int, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT card_type, COUNT(*) FROM flashcards WHERE user_id = ? GROUP BY card_type",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count flashcards: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	counts := make(map[CardType]int)
	for rows.Next() {
		var cardType CardType
		var n int
		if err := rows.Scan(&cardType, &n); err != nil {
			return nil, fmt.Errorf("failed to scan flashcard count: %w", err)
		}
		counts[cardType] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating flashcard counts: %w", err)
	}
	return counts, nil
}

func (r *FlashcardRepo) query(ctx context.Context, query string, args ...any) ([]Flashcard, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query flashcards: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	cards := []Flashcard{}
	for rows.Next() {
		var (
			card          Flashcard
			explanation   sql.NullString
			chapterNumber sql.NullInt64
			chapterTitle  sql.NullString
		)
		if err := rows.Scan(&card.ID, &card.UserID, &card.SourcePDFID, &card.CardType, &card.QuestionDE,
			&card.AnswerTR, &explanation, &chapterNumber, &chapterTitle, &card.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan flashcard: %w", err)
		}
		if explanation.Valid {
			card.ExplanationDE = &explanation.String
		}
		if chapterNumber.Valid {
			n := int(chapterNumber.Int64)
			card.ChapterNumber = &n
		}
		if chapterTitle.Valid {
			card.ChapterTitle = &chapterTitle.String
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating flashcards: %w", err)
	}
	return cards, nil
}
