package deck

import (
	"fmt"
	"sort"

	"dersdefteri/internal/storage"
)

// Group is the set of cards sharing a category and chapter.
type Group struct {
	CardType      storage.CardType    `json:"card_type"`
	ChapterNumber int                 `json:"chapter_number"`
	ChapterTitle  string              `json:"chapter_title"`
	Cards         []storage.Flashcard `json:"cards"`
}

type groupKey struct {
	cardType storage.CardType
	chapter  int
	title    string
}

// GroupCards groups cards by (category, chapter number, chapter title).
// Grammar groups come before vocabulary groups, then chapters ascend; groups
// that tie keep the order in which they first appear.
func GroupCards(cards []storage.Flashcard) []Group {
	index := make(map[groupKey]int)
	var groups []Group

	for _, card := range cards {
		key := groupKey{cardType: card.CardType}
		if card.ChapterNumber != nil {
			key.chapter = *card.ChapterNumber
		}
		if card.ChapterTitle != nil {
			key.title = *card.ChapterTitle
		}

		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{
				CardType:      key.cardType,
				ChapterNumber: key.chapter,
				ChapterTitle:  key.title,
			})
		}
		groups[i].Cards = append(groups[i].Cards, card)
	}

	sort.SliceStable(groups, func(a, b int) bool {
		ga, gb := groups[a], groups[b]
		if ga.CardType != gb.CardType {
			return ga.CardType == storage.CardGrammar
		}
		return ga.ChapterNumber < gb.ChapterNumber
	})
	return groups
}

// Label is the German category name.
func (g Group) Label() string {
	if g.CardType == storage.CardGrammar {
		return "Grammatik"
	}
	return "Vokabular"
}

// ChapterInfo describes the chapter, or returns "" when there is none.
func (g Group) ChapterInfo() string {
	switch {
	case g.ChapterTitle != "" && g.ChapterNumber > 0:
		return fmt.Sprintf("Kapitel %d: %s", g.ChapterNumber, g.ChapterTitle)
	case g.ChapterTitle != "":
		return "Kapitel ?: " + g.ChapterTitle
	case g.ChapterNumber > 0:
		return fmt.Sprintf("Kapitel %d", g.ChapterNumber)
	}
	return ""
}
