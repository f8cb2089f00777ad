package export

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sapelo-labs/fishstock/internal/model"
)

// XLSX writes the view as a single-sheet workbook with the same columns as
// the CSV rendition.
func XLSX(stocks []model.MergedStock, w io.Writer) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Species Stocks")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range csvColumns {
		header.AddCell().SetString(col)
	}

	for i := range stocks {
		row := sheet.AddRow()
		for _, field := range buildRow(&stocks[i]) {
			row.AddCell().SetString(field)
		}
	}

	if err := file.Write(w); err != nil {
		return eris.Wrap(err, "export: write workbook")
	}
	return nil
}
