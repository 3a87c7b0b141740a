package reports

import (
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const excelSheetName = "Sheet1"

// ExcelExporter is one report row as spreadsheet cells, in heading order.
type ExcelExporter interface {
	GetCellValues() []interface{}
}

func buildExcel(headings []string, rows []ExcelExporter) (*excelize.File, error) {
	f := excelize.NewFile()
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	for i, h := range headings {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		if err := f.SetCellValue(excelSheetName, cell, h); err != nil {
			_ = f.Close()
			return nil, err
		}
		if err := f.SetCellStyle(excelSheetName, cell, cell, bold); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	for r, row := range rows {
		for i, value := range row.GetCellValues() {
			cell, err := excelize.CoordinatesToCellName(i+1, r+2)
			if err != nil {
				_ = f.Close()
				return nil, err
			}
			if err := f.SetCellValue(excelSheetName, cell, cellValue(value)); err != nil {
				_ = f.Close()
				return nil, err
			}
		}
	}
	return f, nil
}

// WriteExcel renders the rows into a single sheet workbook.
func WriteExcel(w io.Writer, headings []string, rows []ExcelExporter) error {
	f, err := buildExcel(headings, rows)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

func SaveExcel(filename string, headings []string, rows []ExcelExporter) error {
	f, err := buildExcel(headings, rows)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(filename)
}

// decimals are written as numbers so the sheet can sum them
func cellValue(v interface{}) interface{} {
	switch d := v.(type) {
	case decimal.Decimal:
		return d.InexactFloat64()
	case *decimal.Decimal:
		if d == nil {
			return ""
		}
		return d.InexactFloat64()
	}
	return v
}
