package models

import (
	"testing"
)

func TestBatchSequence(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"11001", 11001},
		{" 11002 ", 11002},
		{"B-11003", 0},
		{"", 0},
		{"-5", 0},
	}
	for _, tt := range tests {
		if got := BatchSequence(tt.in); got != tt.want {
			t.Fatalf("BatchSequence(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestEffectiveLinesPrefersItems(t *testing.T) {
	p := Purchase{
		ID:             1,
		OriginalTypeId: 3,
		Weight:         dec("1000"),
		Items: []PurchaseOriginalItem{
			{OriginalTypeId: 3, Weight: dec("600")},
			{OriginalTypeId: 4, Weight: dec("400")},
		},
	}
	lines := p.EffectiveLines()
	if len(lines) != 2 || !lines[1].Weight.Equal(dec("400")) {
		t.Fatalf("lines = %+v", lines)
	}
}

func TestEffectiveLinesFallsBackToSingleItemFields(t *testing.T) {
	p := Purchase{
		ID:              2,
		OriginalTypeId:  3,
		Weight:          dec("500"),
		Qty:             dec("10"),
		CostPerKg:       dec("1.5"),
		MaterialCostFCY: dec("750"),
		MaterialCostUSD: dec("750"),
	}
	lines := p.EffectiveLines()
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	l := lines[0]
	if l.PurchaseId != 2 || l.OriginalTypeId != 3 || !l.Weight.Equal(dec("500")) || !l.TotalCostUSD.Equal(dec("750")) {
		t.Fatalf("line = %+v", l)
	}

	if got := (Purchase{}).EffectiveLines(); got != nil {
		t.Fatalf("purchase without type should have no lines, got %+v", got)
	}
}
