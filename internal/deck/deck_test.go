package deck

import (
	"context"

	"dersdefteri/internal/storage"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func card(id string, cardType storage.CardType, chapter *int, title *string) storage.Flashcard {
	return storage.Flashcard{
		ID:            id,
		UserID:        "user-1",
		SourcePDFID:   "doc-1",
		CardType:      cardType,
		QuestionDE:    "Frage " + id,
		AnswerTR:      "Cevap " + id,
		ChapterNumber: chapter,
		ChapterTitle:  title,
	}
}

// fakeCards serves a fixed slice of cards.
type fakeCards struct {
	cards []storage.Flashcard
	err   error
}

func (f *fakeCards) ListByUser(_ context.Context, userID string) ([]storage.Flashcard, error) {
	var out []storage.Flashcard
	for _, c := range f.cards {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, f.err
}

func (f *fakeCards) ListByDocument(_ context.Context, userID, documentID string) ([]storage.Flashcard, error) {
	var out []storage.Flashcard
	for _, c := range f.cards {
		if c.UserID == userID && c.SourcePDFID == documentID {
			out = append(out, c)
		}
	}
	return out, f.err
}

func (f *fakeCards) GetByIDs(_ context.Context, userID string, ids []string) ([]storage.Flashcard, error) {
	var out []storage.Flashcard
	for _, id := range ids {
		for _, c := range f.cards {
			if c.ID == id && c.UserID == userID {
				out = append(out, c)
			}
		}
	}
	return out, f.err
}

func (f *fakeCards) CountByType(context.Context, string) (map[storage.CardType]int, error) {
	return nil, f.err
}
