package inventory

import (
	"strings"

	"github.com/mmdatafocus/factory_backend/models"
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// ToBase converts a foreign currency amount to USD. The rate is units of the
// currency per 1 USD; a non-positive rate is treated as 1.
func ToBase(amountFCY decimal.Decimal, exchangeRate decimal.Decimal) decimal.Decimal {
	if !exchangeRate.IsPositive() {
		return amountFCY
	}
	return amountFCY.Div(exchangeRate)
}

func FromBase(amountUSD decimal.Decimal, exchangeRate decimal.Decimal) decimal.Decimal {
	if !exchangeRate.IsPositive() {
		return amountUSD
	}
	return amountUSD.Mul(exchangeRate)
}

// Convert moves an amount between two currencies through USD.
func Convert(amount decimal.Decimal, fromRate decimal.Decimal, toRate decimal.Decimal) decimal.Decimal {
	if fromRate.Equal(toRate) {
		return amount
	}
	return FromBase(ToBase(amount, fromRate), toRate)
}

// RateTable maps currency codes to their rate against USD.
type RateTable map[string]decimal.Decimal

func NewRateTable(currencies []models.Currency) RateTable {
	t := RateTable{models.BaseCurrencyCode: one}
	for _, c := range currencies {
		code := strings.ToUpper(strings.TrimSpace(c.Code))
		if code == "" || code == models.BaseCurrencyCode || !c.ExchangeRate.IsPositive() {
			continue
		}
		t[code] = c.ExchangeRate
	}
	return t
}

// Lookup returns 1 for codes missing from the table, so unknown currencies are
// valued as if they were USD.
func (t RateTable) Lookup(code string) decimal.Decimal {
	if rate, ok := t[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return rate
	}
	return one
}

// resolveRate uses the explicit rate when given, else the table rate.
func resolveRate(t RateTable, code string, explicit *decimal.Decimal, field string) (decimal.Decimal, error) {
	if explicit == nil || explicit.IsZero() {
		return t.Lookup(code), nil
	}
	if !explicit.IsPositive() {
		return decimal.Zero, invalid(field, "exchange rate must be positive")
	}
	return *explicit, nil
}
