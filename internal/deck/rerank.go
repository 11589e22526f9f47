package deck

import (
	"strings"
	"unicode"

	"dersdefteri/internal/storage"
)

const (
	lexicalLengthScale = float32(10.0)
	maxLexicalScore    = float32(0.4)
	chapterMatchBonus  = float32(0.1)
)

// Queries are German prompts or Turkish answers.
var lexicalStopwords = map[string]struct{}{
	"der": {}, "die": {}, "das": {}, "den": {}, "dem": {}, "ein": {}, "eine": {}, "und": {},
	"oder": {}, "ist": {}, "im": {}, "in": {}, "zu": {}, "mit": {}, "von": {}, "auf": {},
	"was": {}, "wie": {}, "man": {},
	"ve": {}, "bir": {}, "bu": {}, "şu": {}, "da": {}, "de": {}, "ile": {}, "için": {},
	"mi": {}, "mı": {}, "mu": {}, "mü": {}, "ne": {},
}

// lexicalScore computes a lightweight lexical relevance score for a card relative to a query.
// The score is normalized to remain in a predictable range so it can be blended with vector scores.
func lexicalScore(query string, card storage.Flashcard) float32 {
	queryTokens := filterStopwords(tokenize(query))
	if len(queryTokens) == 0 {
		return 0
	}

	cardTokens := tokenize(cardText(card))
	if len(cardTokens) == 0 {
		return 0
	}

	cardFreq := make(map[string]int, len(cardTokens))
	for _, token := range cardTokens {
		cardFreq[token]++
	}

	var rawMatches int
	for _, token := range queryTokens {
		rawMatches += cardFreq[token]
	}

	score := (float32(rawMatches) / (1 + float32(len(cardTokens)))) * lexicalLengthScale

	if card.ChapterTitle != nil {
		titleSet := make(map[string]struct{})
		for _, token := range tokenize(*card.ChapterTitle) {
			titleSet[token] = struct{}{}
		}
		var titleMatches int
		for _, token := range queryTokens {
			if _, ok := titleSet[token]; ok {
				titleMatches++
			}
		}
		score += float32(titleMatches) * chapterMatchBonus
	}

	if score > maxLexicalScore {
		return maxLexicalScore
	}
	return score
}

// tokenize lowercases with Turkish casing so that "İ" and "I" fold to "i" and "ı".
func tokenize(text string) []string {
	if text == "" {
		return nil
	}

	var builder strings.Builder
	builder.Grow(len(text))
	for _, r := range strings.ToLowerSpecial(unicode.TurkishCase, text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			builder.WriteRune(r)
		} else {
			builder.WriteRune(' ')
		}
	}
	tokens := strings.Fields(builder.String())
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}

func filterStopwords(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}

	result := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, isStop := lexicalStopwords[token]; isStop {
			continue
		}
		result = append(result, token)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
