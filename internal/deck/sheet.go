package deck

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var sheetRenderer = goldmark.New(
	goldmark.WithExtensions(extension.Table),
)

// StudySheetMarkdown renders the groups as a markdown document with one
// table per group.
func StudySheetMarkdown(groups []Group) string {
	var b strings.Builder
	b.WriteString("# Meine Karteikarten\n\n")
	if len(groups) == 0 {
		b.WriteString("Noch keine Karteikarten.\n")
		return b.String()
	}

	for _, g := range groups {
		heading := g.Label()
		if info := g.ChapterInfo(); info != "" {
			heading += " · " + info
		}
		fmt.Fprintf(&b, "## %s\n\n", escapeMarkdown(heading))
		b.WriteString("| Frage | Antwort | Erklärung |\n")
		b.WriteString("| --- | --- | --- |\n")
		for _, card := range g.Cards {
			explanation := ""
			if card.ExplanationDE != nil {
				explanation = *card.ExplanationDE
			}
			fmt.Fprintf(&b, "| %s | %s | %s |\n",
				escapeMarkdown(card.QuestionDE),
				escapeMarkdown(card.AnswerTR),
				escapeMarkdown(explanation))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderStudySheet renders the groups as a standalone HTML page.
func RenderStudySheet(groups []Group) ([]byte, error) {
	var body bytes.Buffer
	if err := sheetRenderer.Convert([]byte(StudySheetMarkdown(groups)), &body); err != nil {
		return nil, fmt.Errorf("failed to render study sheet: %w", err)
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html lang=\"de\">\n<head>\n<meta charset=\"utf-8\">\n")
	page.WriteString("<title>Meine Karteikarten</title>\n")
	page.WriteString("<style>body{font-family:sans-serif;max-width:60rem;margin:2rem auto}table{border-collapse:collapse;width:100%}td,th{border:1px solid #ddd;padding:.4rem;text-align:left;vertical-align:top}</style>\n")
	page.WriteString("</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}

// escapeMarkdown backslash-escapes markdown punctuation and folds line breaks
// so text stays inside its table cell.
func escapeMarkdown(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\r':
			continue
		case '\n':
			b.WriteByte(' ')
		case '\\', '`', '*', '_', '[', ']', '<', '>', '|', '#', '!', '~', '&':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
