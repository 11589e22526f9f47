package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"dersdefteri/internal/llm"
	"dersdefteri/internal/service"
	"dersdefteri/internal/storage"
)

// ErrParse is returned when the model response holds no usable JSON object.
var ErrParse = fmt.Errorf("failed to parse JSON from Anthropic response: %w", service.ErrParse)

// ParseError carries the raw response text that could not be parsed.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v: %v", ErrParse, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}

// Payload is the located JSON object of a model response.
type Payload struct {
	// JSON is the located object text, as returned by the model.
	JSON     string
	Chapters []any
}

// Record is one normalized flashcard candidate.
type Record struct {
	CardType      storage.CardType
	Prompt        string
	Answer        string
	Explanation   *string
	ChapterNumber int
	ChapterTitle  *string
}

// Flashcard converts the record into a storage row owned by userID.
func (r Record) Flashcard(userID string) storage.Flashcard {
	number := r.ChapterNumber
	return storage.Flashcard{
		UserID:        userID,
		CardType:      r.CardType,
		QuestionDE:    r.Prompt,
		AnswerTR:      r.Answer,
		ExplanationDE: r.Explanation,
		ChapterNumber: &number,
		ChapterTitle:  r.ChapterTitle,
	}
}

// Report counts accepted and quarantined entries of one payload.
type Report struct {
	Chapters          int `json:"chapters"`
	Grammar           int `json:"grammar"`
	Vocabulary        int `json:"vocabulary"`
	SkippedChapters   int `json:"skipped_chapters"`
	SkippedGrammar    int `json:"skipped_grammar"`
	SkippedVocabulary int `json:"skipped_vocabulary"`
}

// Skipped returns the total number of quarantined entries.
func (r Report) Skipped() int {
	return r.SkippedChapters + r.SkippedGrammar + r.SkippedVocabulary
}

// Parse locates and decodes the JSON object in a model response.
func Parse(raw string) (*Payload, error) {
	located := llm.FindJSONObject(raw)

	var top any
	if err := json.Unmarshal([]byte(located), &top); err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}
	obj, ok := top.(map[string]any)
	if !ok {
		return nil, &ParseError{Raw: raw, Err: errors.New("top-level JSON is not an object")}
	}

	p := &Payload{JSON: located}
	chapters, ok := obj["chapters"]
	if !ok || chapters == nil {
		return p, nil
	}
	list, ok := chapters.([]any)
	if !ok {
		return nil, &ParseError{Raw: raw, Err: fmt.Errorf("chapters is %T, not an array", chapters)}
	}
	p.Chapters = list
	return p, nil
}

// Normalize flattens the payload's chapters into flashcard records.
// Entries that do not match the expected shape, or lack required text, are
// skipped and counted in the report.
func Normalize(p *Payload) ([]Record, Report) {
	var (
		records []Record
		report  Report
	)
	if p == nil {
		return records, report
	}

	for i, raw := range p.Chapters {
		number := i + 1
		if err := chapterValidator.Validate(raw); err != nil {
			report.SkippedChapters++
			continue
		}
		ch := raw.(map[string]any)
		report.Chapters++

		var title *string
		if s, ok := ch["title"].(string); ok {
			title = &s
		}

		for _, g := range asList(ch["grammar"]) {
			rec, ok := grammarRecord(g)
			if !ok {
				report.SkippedGrammar++
				continue
			}
			rec.ChapterNumber = number
			rec.ChapterTitle = title
			records = append(records, rec)
			report.Grammar++
		}

		for _, v := range asList(ch["vocabulary"]) {
			rec, ok := vocabularyRecord(v)
			if !ok {
				report.SkippedVocabulary++
				continue
			}
			rec.ChapterNumber = number
			rec.ChapterTitle = title
			records = append(records, rec)
			report.Vocabulary++
		}
	}
	return records, report
}

func grammarRecord(v any) (Record, bool) {
	if grammarValidator.Validate(v) != nil {
		return Record{}, false
	}
	m := v.(map[string]any)

	prompt := trimmed(m["point"])
	if prompt == "" {
		return Record{}, false
	}

	answer := ""
	if examples := asList(m["examples"]); len(examples) > 0 {
		answer, _ = examples[0].(string)
	}

	return Record{
		CardType:    storage.CardGrammar,
		Prompt:      prompt,
		Answer:      answer,
		Explanation: optional(trimmed(m["german_explanation"])),
	}, true
}

func vocabularyRecord(v any) (Record, bool) {
	if vocabularyValidator.Validate(v) != nil {
		return Record{}, false
	}
	m := v.(map[string]any)

	prompt := trimmed(m["word"])
	answer := trimmed(m["translation_german"])
	if prompt == "" || answer == "" {
		return Record{}, false
	}

	return Record{
		CardType:    storage.CardVocabulary,
		Prompt:      prompt,
		Answer:      answer,
		Explanation: optional(trimmed(m["example"])),
	}, true
}

func asList(v any) []any {
	list, _ := v.([]any)
	return list
}

func trimmed(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
