package storage

import (
	"context"
	"errors"
	"testing"
	"time"
)

func recordMistakes(t *testing.T, db *MistakeRepo, mistakes ...Mistake) {
	t.Helper()
	for i := range mistakes {
		if err := upsertMistake(context.Background(), db.db, &mistakes[i], time.Now().UTC()); err != nil {
			t.Fatalf("upsertMistake() error = %v", err)
		}
	}
}

func TestMistakeRepo_UpsertCountsOccurrences(t *testing.T) {
	db := newTestDB(t)
	userID := createTestUser(t, db, "a@example.com")
	repo := NewMistakeRepo(db)

	recordMistakes(t, repo,
		Mistake{UserID: userID, MistakeType: "grammar", MistakePattern: "gidiyorum", ExampleWrong: "gidiyorum", ExampleCorrect: "gideceğim"},
		Mistake{UserID: userID, MistakeType: "grammar", MistakePattern: "gidiyorum", ExampleWrong: "Gidiyorum", ExampleCorrect: "Gideceğim"},
		Mistake{UserID: userID, MistakeType: "vocabulary", MistakePattern: "gidiyorum", ExampleWrong: "gidiyorum", ExampleCorrect: "yürüyorum"},
	)

	top, err := repo.Top(context.Background(), userID, 10)
	if err != nil {
		t.Fatalf("Top() error = %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("Top() len = %d, want 2", len(top))
	}
	if top[0].MistakeType != "grammar" || top[0].Occurrences != 2 {
		t.Errorf("Top()[0] = %+v, want grammar with 2 occurrences", top[0])
	}
	if top[0].ExampleWrong != "Gidiyorum" {
		t.Errorf("Top()[0].ExampleWrong = %q, want latest example", top[0].ExampleWrong)
	}
}

func TestMistakeRepo_TopLimit(t *testing.T) {
	db := newTestDB(t)
	userID := createTestUser(t, db, "a@example.com")
	repo := NewMistakeRepo(db)

	for i := 0; i < 12; i++ {
		recordMistakes(t, repo, Mistake{
			UserID:         userID,
			MistakeType:    "spelling",
			MistakePattern: string(rune('a' + i)),
		})
	}

	top, err := repo.Top(context.Background(), userID, 10)
	if err != nil {
		t.Fatalf("Top() error = %v", err)
	}
	if len(top) != 10 {
		t.Errorf("Top() len = %d, want 10", len(top))
	}
}

func TestMistakeRepo_SetMastery(t *testing.T) {
	db := newTestDB(t)
	userID := createTestUser(t, db, "a@example.com")
	otherID := createTestUser(t, db, "b@example.com")
	repo := NewMistakeRepo(db)
	ctx := context.Background()

	recordMistakes(t, repo, Mistake{UserID: userID, MistakeType: "grammar", MistakePattern: "x"})
	top, _ := repo.Top(ctx, userID, 1)
	id := top[0].ID

	tests := []struct {
		name     string
		userID   string
		level    int
		wantErr  bool
		notFound bool
	}{
		{name: "valid level", userID: userID, level: 3},
		{name: "mastered", userID: userID, level: 5},
		{name: "too high", userID: userID, level: 6, wantErr: true},
		{name: "negative", userID: userID, level: -1, wantErr: true},
		{name: "other user", userID: otherID, level: 2, wantErr: true, notFound: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.SetMastery(ctx, tt.userID, id, tt.level)
			if tt.wantErr {
				if err == nil {
					t.Fatal("SetMastery() expected error, got nil")
				}
				if tt.notFound && !errors.Is(err, ErrNotFound) {
					t.Errorf("SetMastery() error = %v, want ErrNotFound", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("SetMastery() error = %v", err)
			}
			if got.MasteryLevel != tt.level {
				t.Errorf("SetMastery() level = %d, want %d", got.MasteryLevel, tt.level)
			}
		})
	}

	tracked, mastered, err := repo.Counts(ctx, userID)
	if err != nil {
		t.Fatalf("Counts() error = %v", err)
	}
	if tracked != 1 || mastered != 1 {
		t.Errorf("Counts() = (%d, %d), want (1, 1)", tracked, mastered)
	}
}
