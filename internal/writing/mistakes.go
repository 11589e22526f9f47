package writing

import (
	"context"
	"fmt"
	"strings"

	"dersdefteri/internal/service"
	"dersdefteri/internal/storage"
)

// TopMistakes is the number of mistakes shown in the tracker.
const TopMistakes = 10

// MsgMasteryRange is returned for a mastery level outside 0-5.
const MsgMasteryRange = "Das Level muss zwischen 0 und 5 liegen."

const unknownMistakeType = "sonstiges"

// mistakesFrom turns corrections into tracker entries keyed by type and the
// lowercased original. Corrections without an original are skipped.
func mistakesFrom(userID string, corrections []Correction) []storage.Mistake {
	mistakes := make([]storage.Mistake, 0, len(corrections))
	for _, c := range corrections {
		original := strings.TrimSpace(c.Original)
		if original == "" {
			continue
		}
		kind := strings.ToLower(strings.TrimSpace(c.Type))
		if kind == "" {
			kind = unknownMistakeType
		}
		mistakes = append(mistakes, storage.Mistake{
			UserID:         userID,
			MistakeType:    kind,
			MistakePattern: strings.ToLower(original),
			ExampleWrong:   original,
			ExampleCorrect: strings.TrimSpace(c.Corrected),
		})
	}
	return mistakes
}

// Mistakes serves the mistake tracker.
type Mistakes struct {
	store storage.MistakeStore
}

// NewMistakes creates a Mistakes tracker.
func NewMistakes(store storage.MistakeStore) *Mistakes {
	return &Mistakes{store: store}
}

// Top lists the user's most frequent mistakes.
func (m *Mistakes) Top(ctx context.Context, userID string) ([]storage.Mistake, error) {
	mistakes, err := m.store.Top(ctx, userID, TopMistakes)
	if err != nil {
		return nil, fmt.Errorf("failed to list mistakes: %w", err)
	}
	return mistakes, nil
}

// SetMastery updates the mastery level of one of the user's mistakes.
func (m *Mistakes) SetMastery(ctx context.Context, userID, id string, level int) (*storage.Mistake, error) {
	if level < 0 || level > storage.MaxMasteryLevel {
		return nil, &service.ValidationError{Field: "mastery_level", Message: MsgMasteryRange}
	}
	mistake, err := m.store.SetMastery(ctx, userID, id, level)
	if err != nil {
		return nil, err
	}
	return mistake, nil
}
