package writing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dersdefteri/internal/service"
	"dersdefteri/internal/storage"
)

func TestService_Submit(t *testing.T) {
	env := newTestEnv(t)
	s := env.service(&fakeCompleter{response: sampleResponse})
	ctx := context.Background()

	res, err := s.Submit(ctx, env.userID, Submission{Prompt: Prompts[0], Text: "  " + sampleText + "\n"})
	require.NoError(t, err)

	assert.Equal(t, Prompts[0], res.Exercise.PromptDE)
	assert.Equal(t, sampleText, res.Exercise.UserTextTR)
	assert.Equal(t, 12, res.Exercise.WordCount)
	assert.Equal(t, res.Exercise.ID, res.Correction.ExerciseID)
	assert.Len(t, res.Analysis.Corrections, 2)

	history, err := s.History(ctx, env.userID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.NotNil(t, history[0].Correction)
	assert.Contains(t, history[0].Correction.VariantC1, "enine boyuna")
	assert.JSONEq(t, `[{"deyim": "enine boyuna", "meaning_de": "ausführlich", "usage": "für gründliche Diskussionen", "example_in_context": "Fiyatları enine boyuna konuştuk."}]`,
		string(history[0].Correction.SuggestedDeyimler))

	mistakes, err := NewMistakes(env.mistakes).Top(ctx, env.userID)
	require.NoError(t, err)
	require.Len(t, mistakes, 2)
	for _, m := range mistakes {
		assert.Equal(t, 1, m.Occurrences)
		assert.Equal(t, 0, m.MasteryLevel)
	}
}

func TestService_Submit_RepeatedMistakeIsCounted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first := `{"corrections": [{"original": "Konuştuk", "corrected": "görüştük", "type": "Stil"}]}`
	second := `{"corrections": [{"original": "konuştuk", "corrected": "müzakere ettik", "type": "stil"}]}`

	_, err := env.service(&fakeCompleter{response: first}).Submit(ctx, env.userID, Submission{Text: sampleText})
	require.NoError(t, err)
	_, err = env.service(&fakeCompleter{response: second}).Submit(ctx, env.userID, Submission{Text: sampleText})
	require.NoError(t, err)

	mistakes, err := NewMistakes(env.mistakes).Top(ctx, env.userID)
	require.NoError(t, err)
	require.Len(t, mistakes, 1)
	assert.Equal(t, 2, mistakes[0].Occurrences)
	assert.Equal(t, "stil", mistakes[0].MistakeType)
	assert.Equal(t, "konuştuk", mistakes[0].MistakePattern)
	assert.Equal(t, "müzakere ettik", mistakes[0].ExampleCorrect)
}

func TestService_Submit_Validation(t *testing.T) {
	tests := []struct {
		name    string
		sub     Submission
		wantMsg string
	}{
		{name: "blank custom topic", sub: Submission{CustomTopic: true, Prompt: "  ", Text: sampleText}, wantMsg: MsgTopicRequired},
		{name: "short text", sub: Submission{Prompt: Prompts[1], Text: "Merhaba dünya"}, wantMsg: MsgTextTooShort},
		{name: "padding does not count", sub: Submission{Text: "   kısa metin   " + "                                              "}, wantMsg: MsgTextTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			completer := &fakeCompleter{response: sampleResponse}
			_, err := env.service(completer).Submit(context.Background(), env.userID, tt.sub)

			require.Error(t, err)
			assert.ErrorIs(t, err, service.ErrInvalidInput)
			assert.Equal(t, tt.wantMsg, service.GermanMessage(err))
			assert.Empty(t, completer.prompt, "analysis must not run")

			exercises, _, err := env.writing.ExerciseStats(context.Background(), env.userID)
			require.NoError(t, err)
			assert.Zero(t, exercises)
		})
	}
}

func TestService_Submit_RandomPrompt(t *testing.T) {
	env := newTestEnv(t)
	s := env.service(&fakeCompleter{response: sampleResponse})
	s.prompt = func() string { return Prompts[2] }

	res, err := s.Submit(context.Background(), env.userID, Submission{Text: sampleText})
	require.NoError(t, err)
	assert.Equal(t, Prompts[2], res.Exercise.PromptDE)
}

func TestService_Submit_AnalysisFailureKeepsExercise(t *testing.T) {
	env := newTestEnv(t)
	upstream := errors.New("anthropic down")
	ctx := context.Background()

	_, err := env.service(&fakeCompleter{err: upstream}).Submit(ctx, env.userID, Submission{Text: sampleText})
	require.ErrorIs(t, err, upstream)

	history, err := env.service(nil).History(ctx, env.userID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Nil(t, history[0].Correction)

	tracked, _, err := env.mistakes.Counts(ctx, env.userID)
	require.NoError(t, err)
	assert.Zero(t, tracked)
}

func TestRandomPrompt(t *testing.T) {
	for range 20 {
		assert.Contains(t, Prompts, RandomPrompt())
	}
}

func TestMistakes_SetMastery(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.service(&fakeCompleter{response: sampleResponse}).Submit(ctx, env.userID, Submission{Text: sampleText})
	require.NoError(t, err)

	m := NewMistakes(env.mistakes)
	top, err := m.Top(ctx, env.userID)
	require.NoError(t, err)
	require.NotEmpty(t, top)

	updated, err := m.SetMastery(ctx, env.userID, top[0].ID, storage.MaxMasteryLevel)
	require.NoError(t, err)
	assert.Equal(t, storage.MaxMasteryLevel, updated.MasteryLevel)

	for _, level := range []int{-1, storage.MaxMasteryLevel + 1} {
		_, err := m.SetMastery(ctx, env.userID, top[0].ID, level)
		assert.ErrorIs(t, err, service.ErrInvalidInput)
		assert.Equal(t, MsgMasteryRange, service.GermanMessage(err))
	}

	_, err = m.SetMastery(ctx, "someone-else", top[0].ID, 1)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestMistakesFrom(t *testing.T) {
	got := mistakesFrom("u1", []Correction{
		{Original: " Ben gittim okula ", Corrected: "Okula gittim", Type: " Grammatik "},
		{Original: "", Corrected: "x", Type: "stil"},
		{Original: "evde", Corrected: "evden"},
	})

	require.Len(t, got, 2)
	assert.Equal(t, storage.Mistake{
		UserID:         "u1",
		MistakeType:    "grammatik",
		MistakePattern: "ben gittim okula",
		ExampleWrong:   "Ben gittim okula",
		ExampleCorrect: "Okula gittim",
	}, got[0])
	assert.Equal(t, "sonstiges", got[1].MistakeType)
}
