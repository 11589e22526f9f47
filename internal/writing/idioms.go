package writing

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"dersdefteri/internal/contextutil"
	"dersdefteri/internal/storage"
)

// Idiom is a deyim collected from the learner's corrections.
type Idiom struct {
	Deyim            string    `json:"deyim"`
	MeaningDE        string    `json:"meaning_de"`
	Usage            string    `json:"usage"`
	ExampleInContext string    `json:"example_in_context"`
	LearnedCount     int       `json:"learned_count"`
	LastSeen         time.Time `json:"last_seen"`
}

// AggregateIdioms merges the suggested deyimler of all corrections, most
// frequent first. The newest sighting supplies the example. The second
// return value counts corrections whose deyimler could not be decoded.
func AggregateIdioms(corrections []storage.WritingCorrection) ([]Idiom, int) {
	byDeyim := map[string]*Idiom{}
	var order []string
	skipped := 0

	for _, c := range corrections {
		if len(c.SuggestedDeyimler) == 0 {
			continue
		}
		var suggested []Deyim
		if err := json.Unmarshal(c.SuggestedDeyimler, &suggested); err != nil {
			skipped++
			continue
		}
		for _, d := range suggested {
			key := strings.TrimSpace(d.Deyim)
			if key == "" {
				continue
			}
			idiom, ok := byDeyim[key]
			if !ok {
				byDeyim[key] = &Idiom{
					Deyim:            key,
					MeaningDE:        d.MeaningDE,
					Usage:            d.Usage,
					ExampleInContext: d.ExampleInContext,
					LearnedCount:     1,
					LastSeen:         c.CreatedAt,
				}
				order = append(order, key)
				continue
			}
			idiom.LearnedCount++
			if c.CreatedAt.After(idiom.LastSeen) {
				idiom.LastSeen = c.CreatedAt
				idiom.ExampleInContext = d.ExampleInContext
			}
		}
	}

	idioms := make([]Idiom, 0, len(order))
	for _, key := range order {
		idioms = append(idioms, *byDeyim[key])
	}
	slices.SortStableFunc(idioms, func(a, b Idiom) int {
		return b.LearnedCount - a.LearnedCount
	})
	return idioms, skipped
}

// FilterIdioms keeps the idioms whose deyim or meaning contains q, ignoring case.
func FilterIdioms(idioms []Idiom, q string) []Idiom {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return idioms
	}
	filtered := []Idiom{}
	for _, idiom := range idioms {
		if strings.Contains(strings.ToLower(idiom.Deyim), q) ||
			strings.Contains(strings.ToLower(idiom.MeaningDE), q) {
			filtered = append(filtered, idiom)
		}
	}
	return filtered
}

// Idioms returns the user's idiom library, optionally filtered by q.
func (s *Service) Idioms(ctx context.Context, userID, q string) ([]Idiom, error) {
	corrections, err := s.store.ListCorrections(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list corrections: %w", err)
	}
	idioms, skipped := AggregateIdioms(corrections)
	if skipped > 0 {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "skipped undecodable deyimler", "corrections", skipped)
	}
	return FilterIdioms(idioms, q), nil
}
