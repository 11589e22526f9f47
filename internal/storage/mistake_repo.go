package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_mistake_store.go -package=mocks dersdefteri/internal/storage MistakeStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MaxMasteryLevel is the highest mastery level; a mistake at this level counts as mastered.
const MaxMasteryLevel = 5

// MistakeStore defines the interface for mistake tracker operations.
type MistakeStore interface {
	// Top lists the user's most frequent mistakes.
	Top(ctx context.Context, userID string, limit int) ([]Mistake, error)
	// SetMastery updates the mastery level of one of the user's mistakes.
	// Returns nil and ErrNotFound if the mistake does not belong to the user.
	SetMastery(ctx context.Context, userID, id string, level int) (*Mistake, error)
	// Counts returns the number of tracked and mastered mistakes.
	Counts(ctx context.Context, userID string) (tracked, mastered int, err error)
}

// MistakeRepo provides methods for mistake tracker operations.
// It implements the MistakeStore interface.
type MistakeRepo struct {
	db *sql.DB
}

// NewMistakeRepo creates a new MistakeRepo.
func NewMistakeRepo(db *sql.DB) *MistakeRepo {
	return &MistakeRepo{db: db}
}

const mistakeColumns = `id, user_id, mistake_type, mistake_pattern, example_wrong, example_correct,
	occurrences, mastery_level, last_seen`

// Top lists the user's most frequent mistakes, most recent first on ties.
func (r *MistakeRepo) Top(ctx context.Context, userID string, limit int) ([]Mistake, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+mistakeColumns+" FROM mistake_tracker WHERE user_id = ? ORDER BY occurrences DESC, last_seen DESC LIMIT ?",
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query mistakes: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	mistakes := []Mistake{}
	for rows.Next() {
		m, err := scanMistake(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mistake: %w", err)
		}
		mistakes = append(mistakes, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating mistakes: %w", err)
	}
	return mistakes, nil
}

// SetMastery updates the mastery level of one of the user's mistakes.
func (r *MistakeRepo) SetMastery(ctx context.Context, userID, id string, level int) (*Mistake, error) {
	if level < 0 || level > MaxMasteryLevel {
		return nil, fmt.Errorf("mastery level %d out of range 0-%d", level, MaxMasteryLevel)
	}

	result, err := r.db.ExecContext(ctx,
		"UPDATE mistake_tracker SET mastery_level = ? WHERE id = ? AND user_id = ?",
		level, id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update mastery level: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	m, err := scanMistake(r.db.QueryRowContext(ctx,
		"SELECT "+mistakeColumns+" FROM mistake_tracker WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query mistake: %w", err)
	}
	return m, nil
}

// Counts returns the number of tracked and mastered mistakes.
func (r *MistakeRepo) Counts(ctx context.Context, userID string) (int, int, error) {
	var tracked, mastered int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN mastery_level >= ? THEN 1 ELSE 0 END), 0)
		 FROM mistake_tracker WHERE user_id = ?`,
		MaxMasteryLevel, userID,
	).Scan(&tracked, &mastered)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count mistakes: %w", err)
	}
	return tracked, mastered, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// upsertMistake records one occurrence of a mistake. Existing rows keyed by
// user, type and pattern get their counter bumped and their examples replaced.
func upsertMistake(ctx context.Context, db execer, m *Mistake, seen time.Time) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	m.LastSeen = seen

	_, err := db.ExecContext(ctx,
		`INSERT INTO mistake_tracker (id, user_id, mistake_type, mistake_pattern, example_wrong,
		 example_correct, occurrences, mastery_level, last_seen)
		 VALUES (?, ?, ?, ?, ?, ?, 1, 0, ?)
		 ON CONFLICT (user_id, mistake_type, mistake_pattern) DO UPDATE SET
		 occurrences = occurrences + 1, example_wrong = excluded.example_wrong,
		 example_correct = excluded.example_correct, last_seen = excluded.last_seen`,
		m.ID, m.UserID, m.MistakeType, m.MistakePattern, m.ExampleWrong, m.ExampleCorrect, m.LastSeen,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert mistake: %w", err)
	}
	return nil
}

func scanMistake(row rowScanner) (*Mistake, error) {
	var m Mistake
	if err := row.Scan(&m.ID, &m.UserID, &m.MistakeType, &m.MistakePattern, &m.ExampleWrong,
		&m.ExampleCorrect, &m.Occurrences, &m.MasteryLevel, &m.LastSeen); err != nil {
		return nil, err
	}
	return &m, nil
}
