package models

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

func itemWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			if err := f.SetCellValue("Sheet1", cell, v); err != nil {
				t.Fatalf("SetCellValue: %v", err)
			}
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return &buf
}

func TestParseItemSheet(t *testing.T) {
	buf := itemWorkbook(t, [][]interface{}{
		{"Name", "Packing Type", "Weight Per Unit", "Sale Price", "Next Serial"},
		{"Bulk fibre", "Kg", "", "1.5", ""},
		{"Bale 45", "Bale", "45", "90", "501"},
		{},
		{"Bad weight", "Bale", "abc", "", ""},
		{"", "Bale", "2", "", ""},
		{"Bad serial", "Bale", "2", "", "0"},
	})

	items, rowErrors, err := ParseItemSheet(buf)
	if err != nil {
		t.Fatalf("ParseItemSheet: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Name != "Bulk fibre" || !items[0].SalePrice.Equal(dec("1.5")) || items[0].NextSerial != nil {
		t.Fatalf("unexpected first item: %+v", items[0])
	}
	if !items[1].WeightPerUnit.Equal(dec("45")) || items[1].NextSerial == nil || *items[1].NextSerial != 501 {
		t.Fatalf("unexpected second item: %+v", items[1])
	}
	if len(rowErrors) != 3 {
		t.Fatalf("expected 3 row errors, got %v", rowErrors)
	}
	if rowErrors[0].Row != 5 || rowErrors[1].Row != 6 || rowErrors[2].Row != 7 {
		t.Fatalf("unexpected error rows: %v", rowErrors)
	}
}

func TestParseItemSheetRejectsNonWorkbook(t *testing.T) {
	if _, _, err := ParseItemSheet(bytes.NewBufferString("not a workbook")); err == nil {
		t.Fatalf("expected error for non-xlsx input")
	}
}
