package models

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mmdatafocus/factory_backend/utils"
	"github.com/xuri/excelize/v2"
)

// Item import sheet columns: Name, Packing Type, Weight Per Unit, Sale Price, Next Serial.
// The first row is a heading and is skipped.
const itemImportColumns = 5

type ItemImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type ItemImportResult struct {
	Created []*Item              `json:"created"`
	Errors  []ItemImportRowError `json:"errors"`
}

// ParseItemSheet reads the first sheet of an xlsx workbook into item inputs.
// Blank rows are skipped; malformed rows are reported by spreadsheet row number.
func ParseItemSheet(r io.Reader) ([]NewItem, []ItemImportRowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("unable to read sheet: %w", err)
	}

	var items []NewItem
	var rowErrors []ItemImportRowError
	for i, row := range rows {
		if i == 0 {
			continue
		}
		rowNo := i + 1
		cells := make([]string, itemImportColumns)
		for c := 0; c < itemImportColumns && c < len(row); c++ {
			cells[c] = strings.TrimSpace(row[c])
		}
		if strings.Join(cells, "") == "" {
			continue
		}
		input := NewItem{Name: cells[0], PackingType: cells[1]}
		if cells[2] != "" {
			if input.WeightPerUnit, err = utils.ParseDecimal(cells[2]); err != nil {
				rowErrors = append(rowErrors, ItemImportRowError{Row: rowNo, Message: "invalid weight per unit"})
				continue
			}
		}
		if cells[3] != "" {
			if input.SalePrice, err = utils.ParseDecimal(cells[3]); err != nil {
				rowErrors = append(rowErrors, ItemImportRowError{Row: rowNo, Message: "invalid sale price"})
				continue
			}
		}
		if cells[4] != "" {
			serial, err := strconv.ParseInt(cells[4], 10, 64)
			if err != nil || serial < 1 {
				rowErrors = append(rowErrors, ItemImportRowError{Row: rowNo, Message: "invalid next serial"})
				continue
			}
			input.NextSerial = &serial
		}
		if fields := utils.ValidateStruct(&input); len(fields) > 0 {
			for field, tag := range fields {
				rowErrors = append(rowErrors, ItemImportRowError{Row: rowNo, Message: field + " " + tag})
				break
			}
			continue
		}
		items = append(items, input)
	}
	return items, rowErrors, nil
}

// ImportItemsFromXlsx creates every valid row; rows that fail are reported and skipped.
func ImportItemsFromXlsx(ctx context.Context, r io.Reader) (*ItemImportResult, error) {
	if _, err := businessIdFromContext(ctx); err != nil {
		return nil, err
	}
	inputs, rowErrors, err := ParseItemSheet(r)
	if err != nil {
		return nil, err
	}
	result := &ItemImportResult{Errors: rowErrors}
	for i := range inputs {
		item, err := CreateItem(ctx, &inputs[i])
		if err != nil {
			result.Errors = append(result.Errors, ItemImportRowError{Message: inputs[i].Name + ": " + err.Error()})
			continue
		}
		result.Created = append(result.Created, item)
	}
	return result, nil
}
