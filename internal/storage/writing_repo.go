package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_writing_store.go -package=mocks dersdefteri/internal/storage WritingStore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// WritingStore defines the interface for writing exercise storage operations.
type WritingStore interface {
	// CreateExercise stores a submitted text.
	CreateExercise(ctx context.Context, ex *WritingExercise) error
	// SaveAnalysis stores the correction of an exercise and records every
	// mistake in the tracker, in one transaction.
	SaveAnalysis(ctx context.Context, correction *WritingCorrection, mistakes []Mistake) error
	// ListExercises lists the user's exercises newest first, each with its correction.
	ListExercises(ctx context.Context, userID string) ([]ExerciseWithCorrection, error)
	// ListCorrections lists the user's corrections newest first.
	ListCorrections(ctx context.Context, userID string) ([]WritingCorrection, error)
	// ExerciseStats returns the number of exercises and the total word count.
	ExerciseStats(ctx context.Context, userID string) (exercises, words int, err error)
}

// WritingRepo provides methods for writing exercise operations.
// It implements the WritingStore interface.
type WritingRepo struct {
	db *sql.DB
}

// NewWritingRepo creates a new WritingRepo.
func NewWritingRepo(db *sql.DB) *WritingRepo {
	return &WritingRepo{db: db}
}

// CreateExercise stores a submitted text. ID and CreatedAt are filled in.
func (r *WritingRepo) CreateExercise(ctx context.Context, ex *WritingExercise) error {
	if ex.ID == "" {
		ex.ID = uuid.New().String()
	}
	ex.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO writing_exercises (id, user_id, prompt_de, user_text_tr, word_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ex.ID, ex.UserID, ex.PromptDE, ex.UserTextTR, ex.WordCount, ex.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert writing exercise: %w", err)
	}
	return nil
}

// SaveAnalysis stores the correction and upserts the mistakes in one transaction.
func (r *WritingRepo) SaveAnalysis(ctx context.Context, correction *WritingCorrection, mistakes []Mistake) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if correction.ID == "" {
		correction.ID = uuid.New().String()
	}
	correction.CreatedAt = time.Now().UTC()
	if len(correction.Corrections) == 0 {
		correction.Corrections = []byte("[]")
	}
	if len(correction.SuggestedDeyimler) == 0 {
		correction.SuggestedDeyimler = []byte("[]")
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO writing_corrections (id, exercise_id, user_id, corrections, variant_business,
		 variant_colloquial, variant_c1, suggested_deyimler, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		correction.ID, correction.ExerciseID, correction.UserID, string(correction.Corrections),
		correction.VariantBusiness, correction.VariantColloquial, correction.VariantC1,
		string(correction.SuggestedDeyimler), correction.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("correction for exercise %s: %w", correction.ExerciseID, ErrDuplicate)
		}
		return fmt.Errorf("failed to insert writing correction: %w", err)
	}

	for i := range mistakes {
		if err = upsertMistake(ctx, tx, &mistakes[i], correction.CreatedAt); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit writing analysis: %w", err)
	}
	return nil
}

// ListExercises lists the user's exercises newest first, each with its correction.
func (r *WritingRepo) ListExercises(ctx context.Context, userID string) ([]ExerciseWithCorrection, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT e.id, e.user_id, e.prompt_de, e.user_text_tr, e.word_count, e.created_at,
		        c.id, c.corrections, c.variant_business, c.variant_colloquial, c.variant_c1,
		        c.suggested_deyimler, c.created_at
		 FROM writing_exercises e
		 LEFT JOIN writing_corrections c ON c.exercise_id = e.id
		 WHERE e.user_id = ?
		 ORDER BY e.created_at DESC, e.rowid DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query writing exercises: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	exercises := []ExerciseWithCorrection{}
	for rows.Next() {
		var (
			ex                       ExerciseWithCorrection
			corrID, corrections      sql.NullString
			business, colloquial, c1 sql.NullString
			deyimler                 sql.NullString
			corrCreatedAt            sql.NullTime
		)
		if err := rows.Scan(&ex.ID, &ex.UserID, &ex.PromptDE, &ex.UserTextTR, &ex.WordCount, &ex.CreatedAt,
			&corrID, &corrections, &business, &colloquial, &c1, &deyimler, &corrCreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan writing exercise: %w", err)
		}
		if corrID.Valid {
			ex.Correction = &WritingCorrection{
				ID:                corrID.String,
				ExerciseID:        ex.ID,
				UserID:            ex.UserID,
				Corrections:       []byte(corrections.String),
				VariantBusiness:   business.String,
				VariantColloquial: colloquial.String,
				VariantC1:         c1.String,
				SuggestedDeyimler: []byte(deyimler.String),
				CreatedAt:         corrCreatedAt.Time,
			}
		}
		exercises = append(exercises, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating writing exercises: %w", err)
	}
	return exercises, nil
}

// ListCorrections lists the user's corrections newest first.
func (r *WritingRepo) ListCorrections(ctx context.Context, userID string) ([]WritingCorrection, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, exercise_id, user_id, corrections, variant_business, variant_colloquial,
		        variant_c1, suggested_deyimler, created_at
		 FROM writing_corrections WHERE user_id = ?
		 ORDER BY created_at DESC, rowid DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query writing corrections: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	corrections := []WritingCorrection{}
	for rows.Next() {
		var c WritingCorrection
		var raw, deyimler string
		if err := rows.Scan(&c.ID, &c.ExerciseID, &c.UserID, &raw, &c.VariantBusiness,
			&c.VariantColloquial, &c.VariantC1, &deyimler, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan writing correction: %w", err)
		}
		c.Corrections = []byte(raw)
		c.SuggestedDeyimler = []byte(deyimler)
		corrections = append(corrections, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating writing corrections: %w", err)
	}
	return corrections, nil
}

// ExerciseStats returns the number of exercises and the total word count.
func (r *WritingRepo) ExerciseStats(ctx context.Context, userID string) (int, int, error) {
	var exercises, words int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(word_count), 0) FROM writing_exercises WHERE user_id = ?",
		userID,
	).Scan(&exercises, &words)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to query writing stats: %w", err)
	}
	return exercises, words, nil
}
