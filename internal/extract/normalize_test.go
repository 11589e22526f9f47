package extract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dersdefteri/internal/service"
	"dersdefteri/internal/storage"
)

func TestParseAndNormalize_ProseWrappedResponse(t *testing.T) {
	raw := `Sure, here is the data: {"chapters":[{"title":"Ch1","grammar":[{"point":"Dative case","german_explanation":"Erklärung","examples":["Örnek."]}],"vocabulary":[{"word":"ev","translation_german":"Haus"}]}]} done.`

	payload, err := Parse(raw)
	require.NoError(t, err)

	records, report := Normalize(payload)
	require.Len(t, records, 2)

	g := records[0]
	assert.Equal(t, storage.CardGrammar, g.CardType)
	assert.Equal(t, 1, g.ChapterNumber)
	assert.Equal(t, "Dative case", g.Prompt)
	assert.Equal(t, "Örnek.", g.Answer)
	require.NotNil(t, g.Explanation)
	assert.Equal(t, "Erklärung", *g.Explanation)
	require.NotNil(t, g.ChapterTitle)
	assert.Equal(t, "Ch1", *g.ChapterTitle)

	v := records[1]
	assert.Equal(t, storage.CardVocabulary, v.CardType)
	assert.Equal(t, 1, v.ChapterNumber)
	assert.Equal(t, "ev", v.Prompt)
	assert.Equal(t, "Haus", v.Answer)
	assert.Nil(t, v.Explanation)

	assert.Equal(t, Report{Chapters: 1, Grammar: 1, Vocabulary: 1}, report)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "prose without braces", raw: "Leider konnte ich das Dokument nicht lesen."},
		{name: "broken json", raw: `{"chapters": [}`},
		{name: "top-level string", raw: `"nur Text"`},
		{name: "chapters not a list", raw: `{"chapters": {"title": "x"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrParse))
			assert.True(t, errors.Is(err, service.ErrParse))

			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.raw, pe.Raw)
		})
	}
}

func TestParse_MissingChaptersIsEmpty(t *testing.T) {
	for _, raw := range []string{`{}`, `{"chapters": null}`, `{"chapters": []}`} {
		payload, err := Parse(raw)
		require.NoError(t, err, raw)

		records, report := Normalize(payload)
		assert.Empty(t, records, raw)
		assert.Zero(t, report.Skipped(), raw)
	}
}

func TestParse_KeepsLocatedJSON(t *testing.T) {
	payload, err := Parse("```json\n{\"chapters\":[]}\n```")
	require.NoError(t, err)
	assert.Equal(t, `{"chapters":[]}`, payload.JSON)
}

func TestNormalize_ChapterNumbersArePositional(t *testing.T) {
	raw := `{"chapters":[
		{"title":"Bir","vocabulary":[{"word":"bir","translation_german":"eins"}]},
		"kein Kapitel",
		{"vocabulary":[{"word":"üç","translation_german":"drei"}]}
	]}`

	payload, err := Parse(raw)
	require.NoError(t, err)

	records, report := Normalize(payload)
	require.Len(t, records, 2)
	assert.Equal(t, 1, records[0].ChapterNumber)
	assert.Equal(t, 3, records[1].ChapterNumber)
	assert.Nil(t, records[1].ChapterTitle)
	assert.Equal(t, 1, report.SkippedChapters)
	assert.Equal(t, 2, report.Chapters)
}

func TestNormalize_SkipsIncompleteEntries(t *testing.T) {
	raw := `{"chapters":[{
		"title": "  Kapitel mit Leerzeichen  ",
		"grammar": [
			{"point": "   ", "examples": ["x"]},
			{"point": " Possessivsuffixe ", "german_explanation": "  ", "examples": []},
			{"point": "Zahl", "examples": [1, 2]},
			"nur Text"
		],
		"vocabulary": [
			{"word": "kedi", "translation_german": " "},
			{"word": " ", "translation_german": "Hund"},
			{"word": " köpek ", "translation_german": " Hund ", "example": " Köpek havlıyor. "},
			{"word": 7, "translation_german": "sieben"}
		]
	}]}`

	payload, err := Parse(raw)
	require.NoError(t, err)

	records, report := Normalize(payload)
	require.Len(t, records, 2)

	g := records[0]
	assert.Equal(t, "Possessivsuffixe", g.Prompt)
	assert.Equal(t, "", g.Answer)
	assert.Nil(t, g.Explanation)
	require.NotNil(t, g.ChapterTitle)
	assert.Equal(t, "  Kapitel mit Leerzeichen  ", *g.ChapterTitle)

	v := records[1]
	assert.Equal(t, "köpek", v.Prompt)
	assert.Equal(t, "Hund", v.Answer)
	require.NotNil(t, v.Explanation)
	assert.Equal(t, "Köpek havlıyor.", *v.Explanation)

	assert.Equal(t, Report{
		Chapters:          1,
		Grammar:           1,
		Vocabulary:        1,
		SkippedGrammar:    3,
		SkippedVocabulary: 3,
	}, report)
	assert.Equal(t, 6, report.Skipped())
}

func TestRecord_Flashcard(t *testing.T) {
	title := "Ch1"
	rec := Record{CardType: storage.CardVocabulary, Prompt: "ev", Answer: "Haus", ChapterNumber: 2, ChapterTitle: &title}

	card := rec.Flashcard("user-1")
	assert.Equal(t, "user-1", card.UserID)
	assert.Equal(t, storage.CardVocabulary, card.CardType)
	assert.Equal(t, "ev", card.QuestionDE)
	assert.Equal(t, "Haus", card.AnswerTR)
	require.NotNil(t, card.ChapterNumber)
	assert.Equal(t, 2, *card.ChapterNumber)
	assert.Equal(t, &title, card.ChapterTitle)
}
