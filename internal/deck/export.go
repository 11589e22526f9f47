package deck

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Karteikarten"

var exportHeaders = []string{
	"Typ",
	"Kapitel",
	"Kapiteltitel",
	"Frage (DE)",
	"Antwort (TR)",
	"Erklärung",
}

// WriteXLSX renders the groups, in order, as a one-sheet workbook.
func WriteXLSX(groups []Group) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	// rename the default sheet instead of adding a second one
	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(exportSheet, cell, h)
	}

	row := 2
	for _, g := range groups {
		for _, card := range g.Cards {
			write := func(col int, v any) {
				cell, _ := excelize.CoordinatesToCellName(col, row)
				_ = f.SetCellValue(exportSheet, cell, v)
			}

			write(1, g.Label())
			if g.ChapterNumber > 0 {
				write(2, g.ChapterNumber)
			}
			write(3, g.ChapterTitle)
			write(4, card.QuestionDE)
			write(5, card.AnswerTR)
			if card.ExplanationDE != nil {
				write(6, *card.ExplanationDE)
			}
			row++
		}
	}

	_ = f.SetColWidth(exportSheet, "A", "B", 12)
	_ = f.SetColWidth(exportSheet, "C", "C", 28)
	_ = f.SetColWidth(exportSheet, "D", "E", 40)
	_ = f.SetColWidth(exportSheet, "F", "F", 60)
	_ = f.SetPanes(exportSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
