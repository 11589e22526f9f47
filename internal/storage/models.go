package storage

import (
	"encoding/json"
	"time"
)

// DocumentStatus is the lifecycle state of a source document.
type DocumentStatus string

const (
	StatusPending    DocumentStatus = "pending"
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusError      DocumentStatus = "error"
)

// CardType is the category of a flashcard.
type CardType string

const (
	CardGrammar    CardType = "grammar"
	CardVocabulary CardType = "vocabulary"
)

// User is a registered learner.
type User struct {
	ID           string    `json:"id"` // UUID
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Document is an uploaded source PDF.
type Document struct {
	ID                  string         `json:"id"`
	UserID              string         `json:"user_id"`
	Filename            string         `json:"filename"`
	StoragePath         string         `json:"storage_path"` // unique within the bucket
	Status              DocumentStatus `json:"status"`
	TotalCardsExtracted int            `json:"total_cards_extracted"`
	CreatedAt           time.Time      `json:"created_at"`
}

// Flashcard is one extracted study item. Rows are never updated.
type Flashcard struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	SourcePDFID   string    `json:"source_pdf_id"`
	CardType      CardType  `json:"card_type"`
	QuestionDE    string    `json:"question_de"`
	AnswerTR      string    `json:"answer_tr"`
	ExplanationDE *string   `json:"explanation_de"`
	ChapterNumber *int      `json:"chapter_number"`
	ChapterTitle  *string   `json:"chapter_title"`
	CreatedAt     time.Time `json:"created_at"`
}

// WritingExercise is a text submitted for correction.
type WritingExercise struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	PromptDE   string    `json:"prompt_de"`
	UserTextTR string    `json:"user_text_tr"`
	WordCount  int       `json:"word_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// WritingCorrection is the stored analysis of an exercise.
// Corrections and SuggestedDeyimler hold the JSON arrays returned by the model.
type WritingCorrection struct {
	ID                string          `json:"id"`
	ExerciseID        string          `json:"exercise_id"`
	UserID            string          `json:"user_id"`
	Corrections       json.RawMessage `json:"corrections"`
	VariantBusiness   string          `json:"variant_business"`
	VariantColloquial string          `json:"variant_colloquial"`
	VariantC1         string          `json:"variant_c1"`
	SuggestedDeyimler json.RawMessage `json:"suggested_deyimler"`
	CreatedAt         time.Time       `json:"created_at"`
}

// ExerciseWithCorrection pairs an exercise with its correction, if any.
type ExerciseWithCorrection struct {
	WritingExercise
	Correction *WritingCorrection `json:"correction"`
}

// Mistake is a recurring error pattern tracked per learner.
type Mistake struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	MistakeType    string    `json:"mistake_type"`
	MistakePattern string    `json:"mistake_pattern"`
	ExampleWrong   string    `json:"example_wrong"`
	ExampleCorrect string    `json:"example_correct"`
	Occurrences    int       `json:"occurrences"`
	MasteryLevel   int       `json:"mastery_level"` // 0-5
	LastSeen       time.Time `json:"last_seen"`
}
