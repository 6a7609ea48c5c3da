package spreadsheet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/xenking/provision-api/internal/domain/ingredient"
)

func buildWorkbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return buf
}

func TestParseWorkbook(t *testing.T) {
	buf := buildWorkbook(t, [][]any{
		{"Nombre", "Unidad", "Cantidad"},
		{"Lettuce", "kg", 2},
		{"Tomato", "kg", "3"},
	})

	rows, err := Parse(buf)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Lettuce", rows[0]["Nombre"])
	assert.Equal(t, "2", rows[0]["Cantidad"])
	assert.Equal(t, "3", rows[1]["Cantidad"])
}

func TestParseSkipsBlankRowsAndPadsShortOnes(t *testing.T) {
	buf := buildWorkbook(t, [][]any{
		{"Nombre", "Unidad", "Cantidad"},
		{"Lettuce"},
		{"", "", ""},
		{"Tomato", "kg"},
	})

	rows, err := Parse(buf)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "", rows[0]["Unidad"])
	assert.Equal(t, "", rows[0]["Cantidad"])
	assert.Equal(t, "kg", rows[1]["Unidad"])
}

func TestParseHeaderOnly(t *testing.T) {
	buf := buildWorkbook(t, [][]any{{"Nombre", "Unidad", "Cantidad"}})

	rows, err := Parse(buf)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestParseNotAWorkbook(t *testing.T) {
	_, err := Parse(bytes.NewReader([]byte("definitely not xlsx")))
	require.Error(t, err)
}

func TestExportTemplateRoundTrip(t *testing.T) {
	catalog := []ingredient.Ingredient{
		{ID: 1, Name: "Lettuce", Unit: "kg", Price: dec("10")},
		{ID: 2, Name: "Tomato", Unit: "kg", Price: dec("5")},
	}

	buf, err := ExportTemplate(catalog)
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	require.Equal(t, []string{TemplateSheet}, f.GetSheetList())

	cells, err := f.GetRows(TemplateSheet)
	require.NoError(t, err)
	require.Len(t, cells, 3)

	assert.Equal(t, []string{"Nombre", "Unidad", "Cantidad"}, cells[0])
	assert.Equal(t, []string{"Lettuce", "kg", "0"}, cells[1])
	assert.Equal(t, []string{"Tomato", "kg", "0"}, cells[2])
}

func TestExportTemplateParsesBack(t *testing.T) {
	catalog := []ingredient.Ingredient{
		{ID: 1, Name: "Lettuce", Unit: "kg", Price: dec("10")},
	}

	buf, err := ExportTemplate(catalog)
	require.NoError(t, err)

	rows, err := Parse(buf)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Lettuce", rows[0]["Nombre"])
}
