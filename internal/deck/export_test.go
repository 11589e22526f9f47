package deck

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"dersdefteri/internal/storage"
)

func TestWriteXLSX(t *testing.T) {
	withExplanation := card("g1", storage.CardGrammar, intPtr(1), strPtr("Familie"))
	withExplanation.ExplanationDE = strPtr("Dativ mit -e/-a")

	groups := GroupCards([]storage.Flashcard{
		card("v1", storage.CardVocabulary, intPtr(1), strPtr("Familie")),
		withExplanation,
		card("gx", storage.CardGrammar, nil, nil),
	})

	data, err := WriteXLSX(groups)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() {
		_ = f.Close()
	}()

	assert.Equal(t, []string{exportSheet}, f.GetSheetList())

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, exportHeaders, rows[0])
	assert.Equal(t, []string{"Grammatik", "", "", "Frage gx", "Cevap gx"}, rows[1])
	assert.Equal(t, []string{"Grammatik", "1", "Familie", "Frage g1", "Cevap g1", "Dativ mit -e/-a"}, rows[2])
	assert.Equal(t, []string{"Vokabular", "1", "Familie", "Frage v1", "Cevap v1"}, rows[3])
}

func TestWriteXLSX_Empty(t *testing.T) {
	data, err := WriteXLSX(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() {
		_ = f.Close()
	}()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
