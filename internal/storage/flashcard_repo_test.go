package storage

import (
	"context"
	"testing"
)

func seedCards(t *testing.T, db *DocumentRepo, userID string, cards []Flashcard) []Flashcard {
	t.Helper()
	ctx := context.Background()
	doc := createTestDocument(t, db, userID, "seed.pdf")
	if err := db.BeginProcessing(ctx, userID, doc.ID); err != nil {
		t.Fatalf("BeginProcessing() error = %v", err)
	}
	for i := range cards {
		cards[i].UserID = userID
	}
	if err := db.CompleteExtraction(ctx, doc.ID, cards); err != nil {
		t.Fatalf("CompleteExtraction() error = %v", err)
	}
	return cards
}

func TestFlashcardRepo_ListByUser(t *testing.T) {
	db := newTestDB(t)
	userID := createTestUser(t, db, "a@example.com")
	otherID := createTestUser(t, db, "b@example.com")
	docs := NewDocumentRepo(db)
	repo := NewFlashcardRepo(db)

	seedCards(t, docs, userID, []Flashcard{
		{CardType: CardVocabulary, QuestionDE: "ev", AnswerTR: "Haus"},
		{CardType: CardGrammar, QuestionDE: "Passiv", AnswerTR: ""},
	})
	seedCards(t, docs, otherID, []Flashcard{
		{CardType: CardVocabulary, QuestionDE: "su", AnswerTR: "Wasser"},
	})

	cards, err := repo.ListByUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("ListByUser() len = %d, want 2", len(cards))
	}
	if cards[0].QuestionDE != "ev" || cards[1].QuestionDE != "Passiv" {
		t.Errorf("ListByUser() order = [%s %s], want insertion order", cards[0].QuestionDE, cards[1].QuestionDE)
	}
	if cards[1].AnswerTR != "" {
		t.Errorf("grammar card answer = %q, want empty", cards[1].AnswerTR)
	}
}

func TestFlashcardRepo_GetByIDs(t *testing.T) {
	db := newTestDB(t)
	userID := createTestUser(t, db, "a@example.com")
	otherID := createTestUser(t, db, "b@example.com")
	docs := NewDocumentRepo(db)
	repo := NewFlashcardRepo(db)

	mine := seedCards(t, docs, userID, []Flashcard{
		{CardType: CardVocabulary, QuestionDE: "ev", AnswerTR: "Haus"},
		{CardType: CardVocabulary, QuestionDE: "araba", AnswerTR: "Auto"},
	})
	theirs := seedCards(t, docs, otherID, []Flashcard{
		{CardType: CardVocabulary, QuestionDE: "su", AnswerTR: "Wasser"},
	})

	tests := []struct {
		name string
		ids  []string
		want []string
	}{
		{name: "empty", ids: nil, want: []string{}},
		{name: "keeps requested order", ids: []string{mine[1].ID, mine[0].ID}, want: []string{"araba", "ev"}},
		{name: "skips unknown and foreign", ids: []string{"nope", theirs[0].ID, mine[0].ID}, want: []string{"ev"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.GetByIDs(context.Background(), userID, tt.ids)
			if err != nil {
				t.Fatalf("GetByIDs() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("GetByIDs() len = %d, want %d", len(got), len(tt.want))
			}
			for i, c := range got {
				if c.QuestionDE != tt.want[i] {
					t.Errorf("GetByIDs()[%d] = %q, want %q", i, c.QuestionDE, tt.want[i])
				}
			}
		})
	}
}

func TestFlashcardRepo_CountByType(t *testing.T) {
	db := newTestDB(t)
	userID := createTestUser(t, db, "a@example.com")
	docs := NewDocumentRepo(db)
	repo := NewFlashcardRepo(db)

	seedCards(t, docs, userID, []Flashcard{
		{CardType: CardVocabulary, QuestionDE: "ev", AnswerTR: "Haus"},
		{CardType: CardVocabulary, QuestionDE: "su", AnswerTR: "Wasser"},
		{CardType: CardGrammar, QuestionDE: "Passiv"},
	})

	counts, err := repo.CountByType(context.Background(), userID)
	if err != nil {
		t.Fatalf("CountByType() error = %v", err)
	}
	if counts[CardVocabulary] != 2 || counts[CardGrammar] != 1 {
		t.Errorf("CountByType() = %v, want vocabulary=2 grammar=1", counts)
	}
}
