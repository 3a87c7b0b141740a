package inventory

import (
	"testing"

	"github.com/mmdatafocus/factory_backend/models"
)

func TestToBase(t *testing.T) {
	tests := []struct {
		amount, rate, want string
	}{
		{"2000", "1", "2000"},
		{"100", "0.8", "125"},
		{"20000", "2000", "10"},
		{"50", "0", "50"},
		{"50", "-2", "50"},
	}
	for _, tt := range tests {
		if got := ToBase(d(tt.amount), d(tt.rate)); !got.Equal(d(tt.want)) {
			t.Fatalf("ToBase(%s, %s) = %s, want %s", tt.amount, tt.rate, got, tt.want)
		}
	}
}

func TestConvert(t *testing.T) {
	// 100 EUR -> 125 USD -> 250000 MMK
	if got := Convert(d("100"), d("0.8"), d("2000")); !got.Equal(d("250000")) {
		t.Fatalf("Convert = %s, want 250000", got)
	}
	if got := Convert(d("42"), d("2000"), d("2000")); !got.Equal(d("42")) {
		t.Fatalf("same currency Convert = %s, want 42", got)
	}
}

func TestRateTableLookup(t *testing.T) {
	table := NewRateTable([]models.Currency{
		{Code: "eur", ExchangeRate: d("0.8")},
		{Code: "USD", ExchangeRate: d("3")},
		{Code: "BAD", ExchangeRate: d("0")},
	})
	if got := table.Lookup("EUR"); !got.Equal(d("0.8")) {
		t.Fatalf("EUR = %s", got)
	}
	if got := table.Lookup(" eur "); !got.Equal(d("0.8")) {
		t.Fatalf("lower case lookup = %s", got)
	}
	if got := table.Lookup("USD"); !got.Equal(d("1")) {
		t.Fatalf("USD must stay 1, got %s", got)
	}
	// unknown and unusable rates default to 1
	for _, code := range []string{"THB", "BAD", ""} {
		if got := table.Lookup(code); !got.Equal(d("1")) {
			t.Fatalf("Lookup(%q) = %s, want 1", code, got)
		}
	}
}

func TestResolveRate(t *testing.T) {
	table := NewRateTable([]models.Currency{{Code: "EUR", ExchangeRate: d("0.8")}})
	if got, err := resolveRate(table, "EUR", nil, "rate"); err != nil || !got.Equal(d("0.8")) {
		t.Fatalf("lookup = %s, %v", got, err)
	}
	if got, err := resolveRate(table, "EUR", dp("0.9"), "rate"); err != nil || !got.Equal(d("0.9")) {
		t.Fatalf("override = %s, %v", got, err)
	}
	if _, err := resolveRate(table, "EUR", dp("-1"), "rate"); !IsValidationError(err) {
		t.Fatalf("negative override should be rejected, got %v", err)
	}
}
