package writing

import (
	"context"
	"encoding/json"
	"fmt"

	"dersdefteri/internal/contextutil"
	"dersdefteri/internal/llm"
	"dersdefteri/internal/service"
)

const systemPrompt = `Du bist ein erfahrener Türkischlehrer für deutschsprachige Lernende auf B2-Niveau.
Du korrigierst türkische Texte, erklärst jeden Fehler auf Deutsch und schlägst passende Deyimler vor.
Antworte ausschließlich mit reinem JSON.`

const analysisTemplate = `Analysiere den folgenden türkischen Text.

1. Finde alle Fehler (Grammatik, Wortwahl, Rechtschreibung, Stil). Gib für jeden Fehler den falschen Ausschnitt, die Korrektur, den Fehlertyp und eine kurze deutsche Erklärung an.
2. Schreibe den Text in drei Varianten neu: geschäftlich-formell, umgangssprachlich-gewandt und auf C1-Niveau.
3. Schlage bis zu drei türkische Deyimler vor, die in diesen Text passen, mit deutscher Bedeutung, Verwendungshinweis und einem Beispiel im Kontext des Textes.

Output muss reines JSON sein mit der Struktur:
{
  "corrections": [ { "original": "...", "corrected": "...", "type": "...", "explanation_de": "..." } ],
  "variants": { "business_formal": "...", "colloquial_smart": "...", "c1_sophisticated": "..." },
  "suggested_deyimler": [ { "deyim": "...", "meaning_de": "...", "usage": "...", "example_in_context": "..." } ]
}

Text:
%s`

// ErrParse is returned when the model's analysis is not the expected JSON.
var ErrParse = fmt.Errorf("failed to parse writing analysis: %w", service.ErrParse)

// Correction is one corrected mistake in a text.
type Correction struct {
	Original      string `json:"original"`
	Corrected     string `json:"corrected"`
	Type          string `json:"type"`
	ExplanationDE string `json:"explanation_de"`
}

// Variants are rewrites of the text in three registers.
type Variants struct {
	BusinessFormal  string `json:"business_formal"`
	ColloquialSmart string `json:"colloquial_smart"`
	C1Sophisticated string `json:"c1_sophisticated"`
}

// Deyim is a suggested Turkish idiom.
type Deyim struct {
	Deyim            string `json:"deyim"`
	MeaningDE        string `json:"meaning_de"`
	Usage            string `json:"usage"`
	ExampleInContext string `json:"example_in_context"`
}

// Analysis is the model's feedback on one text.
type Analysis struct {
	Corrections       []Correction `json:"corrections"`
	Variants          Variants     `json:"variants"`
	SuggestedDeyimler []Deyim      `json:"suggested_deyimler"`
}

// Completer sends a prompt to a language model.
type Completer interface {
	Complete(ctx context.Context, system, prompt string, maxTokens int) (string, error)
}

// Analyzer asks a language model to correct a text.
type Analyzer struct {
	llm       Completer
	maxTokens int
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(llm Completer, maxTokens int) *Analyzer {
	return &Analyzer{llm: llm, maxTokens: maxTokens}
}

// Analyze returns corrections, rewrites and idiom suggestions for text.
func (a *Analyzer) Analyze(ctx context.Context, text string) (*Analysis, error) {
	logger := contextutil.LoggerFromContext(ctx)

	raw, err := a.llm.Complete(ctx, systemPrompt, fmt.Sprintf(analysisTemplate, text), a.maxTokens)
	if err != nil {
		return nil, err
	}

	var analysis Analysis
	if err := json.Unmarshal([]byte(llm.FindJSONObject(raw)), &analysis); err != nil {
		logger.ErrorContext(ctx, "failed to parse writing analysis", "error", err, "response_len", len(raw))
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if analysis.Corrections == nil {
		analysis.Corrections = []Correction{}
	}
	if analysis.SuggestedDeyimler == nil {
		analysis.SuggestedDeyimler = []Deyim{}
	}

	logger.InfoContext(ctx, "writing analyzed",
		"corrections", len(analysis.Corrections),
		"deyimler", len(analysis.SuggestedDeyimler))
	return &analysis, nil
}
