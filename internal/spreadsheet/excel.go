package spreadsheet

import (
	"bytes"
	"io"

	"github.com/go-faster/errors"
	"github.com/xuri/excelize/v2"

	"github.com/xenking/provision-api/internal/domain/ingredient"
)

// TemplateSheet is the worksheet name used by the export template.
const TemplateSheet = "Pedido"

// Template headers match the supplier's original sheet; the import side
// tolerates the full synonym set, so exported files always round-trip.
var templateHeaders = []string{"Nombre", "Unidad", "Cantidad"}

// Parse reads the first worksheet of an xlsx binary. The first row is taken
// as headers; every following row becomes a Row keyed by header cell. Rows
// shorter than the header are padded with empty cells, blank rows are
// skipped.
func Parse(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "open workbook")
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrapf(err, "read sheet %q", sheets[0])
	}
	if len(cells) < 2 {
		return nil, nil
	}

	headers := cells[0]
	rows := make([]Row, 0, len(cells)-1)
	for _, line := range cells[1:] {
		if blankLine(line) {
			continue
		}
		row := make(Row, len(headers))
		for i, header := range headers {
			if header == "" {
				continue
			}
			if i < len(line) {
				row[header] = line[i]
			} else {
				row[header] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func blankLine(line []string) bool {
	for _, cell := range line {
		if cell != "" {
			return false
		}
	}
	return true
}

// ExportTemplate builds an xlsx workbook pre-populated with the current
// catalog, one row per ingredient with quantity zero, for the user to fill in
// and re-import.
func ExportTemplate(ingredients []ingredient.Ingredient) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	index, err := f.NewSheet(TemplateSheet)
	if err != nil {
		return nil, errors.Wrap(err, "create sheet")
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, errors.Wrap(err, "drop default sheet")
	}

	if err := f.SetSheetRow(TemplateSheet, "A1", &templateHeaders); err != nil {
		return nil, errors.Wrap(err, "write headers")
	}
	for i, ing := range ingredients {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, errors.Wrap(err, "row coordinates")
		}
		row := []any{ing.Name, ing.Unit, 0}
		if err := f.SetSheetRow(TemplateSheet, cell, &row); err != nil {
			return nil, errors.Wrapf(err, "write row %d", i+2)
		}
	}

	if err := f.SetColWidth(TemplateSheet, "A", "A", 30); err != nil {
		return nil, errors.Wrap(err, "set column width")
	}
	if err := f.SetColWidth(TemplateSheet, "B", "C", 12); err != nil {
		return nil, errors.Wrap(err, "set column width")
	}

	return f.WriteToBuffer()
}
