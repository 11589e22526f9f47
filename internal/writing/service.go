package writing

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"dersdefteri/internal/contextutil"
	"dersdefteri/internal/service"
	"dersdefteri/internal/storage"
)

// MinTextLength is the minimum number of characters of a submitted text.
const MinTextLength = 50

// Validation messages shown to the learner.
const (
	MsgTopicRequired = "Bitte gib ein Thema ein!"
	MsgTextTooShort  = "Bitte schreibe mindestens 50 Zeichen!"
)

// TextAnalyzer produces feedback on a Turkish text.
type TextAnalyzer interface {
	Analyze(ctx context.Context, text string) (*Analysis, error)
}

// Submission is a text handed in for correction.
// When CustomTopic is set Prompt holds the learner's own topic; otherwise an
// empty Prompt is replaced by a random one from Prompts.
type Submission struct {
	Prompt      string `json:"prompt"`
	CustomTopic bool   `json:"custom_topic"`
	Text        string `json:"text"`
}

// Result is a stored exercise together with its analysis.
type Result struct {
	Exercise   storage.WritingExercise   `json:"exercise"`
	Correction storage.WritingCorrection `json:"correction"`
	Analysis   *Analysis                 `json:"analysis"`
}

// Service runs the daily writing workflow.
type Service struct {
	store    storage.WritingStore
	analyzer TextAnalyzer
	prompt   func() string
}

// NewService creates a writing Service.
func NewService(store storage.WritingStore, analyzer TextAnalyzer) *Service {
	return &Service{store: store, analyzer: analyzer, prompt: RandomPrompt}
}

// Prompt returns a random writing prompt.
func (s *Service) Prompt() string {
	return s.prompt()
}

// Submit stores the text, has it analyzed and records the correction and
// every corrected mistake. The exercise is kept when the analysis fails.
func (s *Service) Submit(ctx context.Context, userID string, sub Submission) (*Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	prompt := strings.TrimSpace(sub.Prompt)
	if sub.CustomTopic && prompt == "" {
		return nil, &service.ValidationError{Field: "prompt", Message: MsgTopicRequired}
	}
	if prompt == "" {
		prompt = s.prompt()
	}
	text := strings.TrimSpace(sub.Text)
	if utf8.RuneCountInString(text) < MinTextLength {
		return nil, &service.ValidationError{Field: "text", Message: MsgTextTooShort}
	}

	exercise := &storage.WritingExercise{
		UserID:     userID,
		PromptDE:   prompt,
		UserTextTR: text,
		WordCount:  len(strings.Fields(text)),
	}
	if err := s.store.CreateExercise(ctx, exercise); err != nil {
		return nil, service.Classify(service.ErrPersistence, err)
	}
	logger.InfoContext(ctx, "writing exercise stored", "exercise_id", exercise.ID, "word_count", exercise.WordCount)

	analysis, err := s.analyzer.Analyze(ctx, text)
	if err != nil {
		logger.ErrorContext(ctx, "writing analysis failed", "exercise_id", exercise.ID, "error", err)
		return nil, err
	}

	correction, err := newCorrection(exercise, analysis)
	if err != nil {
		return nil, err
	}
	mistakes := mistakesFrom(userID, analysis.Corrections)
	if err := s.store.SaveAnalysis(ctx, correction, mistakes); err != nil {
		return nil, service.Classify(service.ErrPersistence, err)
	}
	logger.InfoContext(ctx, "writing analysis stored",
		"exercise_id", exercise.ID,
		"corrections", len(analysis.Corrections),
		"mistakes", len(mistakes))

	return &Result{Exercise: *exercise, Correction: *correction, Analysis: analysis}, nil
}

// History lists the user's exercises newest first, each with its correction.
func (s *Service) History(ctx context.Context, userID string) ([]storage.ExerciseWithCorrection, error) {
	exercises, err := s.store.ListExercises(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list exercises: %w", err)
	}
	return exercises, nil
}

func newCorrection(ex *storage.WritingExercise, a *Analysis) (*storage.WritingCorrection, error) {
	corrections, err := json.Marshal(a.Corrections)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal corrections: %w", err)
	}
	deyimler, err := json.Marshal(a.SuggestedDeyimler)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal deyimler: %w", err)
	}
	return &storage.WritingCorrection{
		ExerciseID:        ex.ID,
		UserID:            ex.UserID,
		Corrections:       corrections,
		VariantBusiness:   a.Variants.BusinessFormal,
		VariantColloquial: a.Variants.ColloquialSmart,
		VariantC1:         a.Variants.C1Sophisticated,
		SuggestedDeyimler: deyimler,
	}, nil
}
