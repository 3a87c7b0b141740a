package inventory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mmdatafocus/factory_backend/models"
)

func TestPurchaseCartLandedCostScenario(t *testing.T) {
	ctx := context.Background()
	s := baseSnapshot()
	ids := &seqIds{}
	dc := &fakeDataContext{}

	cart := NewPurchaseCart("11001")
	if err := cart.SetHeader(s, CartHeader{SupplierId: 1, PurchaseDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}, ""); err != nil {
		t.Fatalf("SetHeader: %v", err)
	}
	if cart.State != CartStateEmpty {
		t.Fatalf("state = %s, want Empty", cart.State)
	}
	line, err := cart.AddLine(ids, s, NewCartLine{OriginalTypeId: 10, Weight: d("1000"), GrossPrice: d("2.00")})
	if err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	if !line.TotalCostFCY.Equal(d("2000")) || !line.TotalCostUSD.Equal(d("2000")) || !line.Qty.Equal(d("1000")) {
		t.Fatalf("line = %+v", line)
	}
	if cart.State != CartStateAccumulating {
		t.Fatalf("state = %s, want Accumulating", cart.State)
	}
	if _, err := cart.AddAdditionalCost(ids, s, NewAdditionalCost{CostType: models.CostTypeFreight, ProviderId: 3, CurrencyCode: "USD", AmountFCY: d("50")}); err != nil {
		t.Fatalf("AddAdditionalCost: %v", err)
	}
	if err := cart.Review(s); err != nil {
		t.Fatalf("Review: %v", err)
	}

	purchase, err := cart.Finalize(ctx, dc)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if purchase.BatchNumber != "11001" {
		t.Fatalf("batch = %s, want 11001", purchase.BatchNumber)
	}
	if !purchase.MaterialCostUSD.Equal(d("2000")) || !purchase.TotalLandedCostUSD.Equal(d("2050")) || !purchase.LandedCostPerKg.Equal(d("2.05")) {
		t.Fatalf("material=%s landed=%s perKg=%s", purchase.MaterialCostUSD, purchase.TotalLandedCostUSD, purchase.LandedCostPerKg)
	}
	if len(dc.purchases) != 1 || len(dc.purchases[0].AdditionalCosts) != 1 {
		t.Fatalf("saved purchases = %+v", dc.purchases)
	}
	if cart.State != CartStateEmpty || len(cart.Lines) != 0 || len(cart.Costs) != 0 {
		t.Fatalf("cart not cleared: %+v", cart)
	}
	if cart.NextBatchNumber != "11002" {
		t.Fatalf("next batch = %s, want 11002", cart.NextBatchNumber)
	}
	if cart.Header.SupplierId != 1 {
		t.Fatalf("supplier should be kept for the next entry")
	}
}

func TestPurchaseCartLineArithmetic(t *testing.T) {
	s := baseSnapshot()
	ids := &seqIds{}
	cart := NewPurchaseCart("11001")
	if err := cart.SetHeader(s, CartHeader{SupplierId: 1, CurrencyCode: "EUR"}, "B-7"); err != nil {
		t.Fatalf("SetHeader: %v", err)
	}
	line, err := cart.AddLine(ids, s, NewCartLine{OriginalTypeId: 11, OriginalProductId: func() *int { v := 21; return &v }(), Weight: d("500"), GrossPrice: d("3"), Discount: d("0.5"), Surcharge: d("0.1")})
	if err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	// net 2.6, fcy 1300, usd 1300/0.8, qty 500/50
	if !line.NetPrice.Equal(d("2.6")) || !line.TotalCostFCY.Equal(d("1300")) || !line.TotalCostUSD.Equal(d("1625")) || !line.Qty.Equal(d("10")) {
		t.Fatalf("line = %+v", line)
	}

	// type without packing size gives qty 0
	loose, err := cart.AddLine(ids, s, NewCartLine{OriginalTypeId: 12, Weight: d("100"), GrossPrice: d("1")})
	if err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	if !loose.Qty.IsZero() {
		t.Fatalf("qty = %s, want 0", loose.Qty)
	}

	p := cart.Build()
	if p.BatchNumber != "B-7" || p.CurrencyCode != "EUR" {
		t.Fatalf("header = %s %s", p.BatchNumber, p.CurrencyCode)
	}
	if !p.TotalWeight.Equal(d("600")) || !p.TotalQty.Equal(d("10")) || !p.MaterialCostFCY.Equal(d("1400")) || !p.MaterialCostUSD.Equal(d("1750")) {
		t.Fatalf("totals = %+v", p)
	}
	// single-item fields come from the first line
	if p.OriginalTypeId != 11 || !p.Weight.Equal(d("500")) || !p.CostPerKg.Equal(d("2.6")) || p.OriginalProductId == nil || *p.OriginalProductId != 21 {
		t.Fatalf("legacy fields = %d %s %s", p.OriginalTypeId, p.Weight, p.CostPerKg)
	}

	// changing the currency reprices the lines
	if err := cart.SetHeader(s, CartHeader{SupplierId: 1, CurrencyCode: "USD"}, "B-7"); err != nil {
		t.Fatalf("SetHeader: %v", err)
	}
	if !cart.Lines[0].TotalCostUSD.Equal(d("1300")) {
		t.Fatalf("repriced usd = %s, want 1300", cart.Lines[0].TotalCostUSD)
	}
}

func TestPurchaseCartRejectsBadInput(t *testing.T) {
	s := baseSnapshot()
	ids := &seqIds{}
	cart := NewPurchaseCart("11001")

	tests := []struct {
		name string
		line NewCartLine
	}{
		{"zero weight", NewCartLine{OriginalTypeId: 10, Weight: d("0"), GrossPrice: d("1")}},
		{"negative weight", NewCartLine{OriginalTypeId: 10, Weight: d("-1"), GrossPrice: d("1")}},
		{"zero price", NewCartLine{OriginalTypeId: 10, Weight: d("1"), GrossPrice: d("0")}},
		{"unknown type", NewCartLine{OriginalTypeId: 99, Weight: d("1"), GrossPrice: d("1")}},
		{"product of other type", NewCartLine{OriginalTypeId: 10, OriginalProductId: func() *int { v := 21; return &v }(), Weight: d("1"), GrossPrice: d("1")}},
	}
	for _, tt := range tests {
		if _, err := cart.AddLine(ids, s, tt.line); !IsValidationError(err) {
			t.Fatalf("%s: err = %v, want validation error", tt.name, err)
		}
	}
	if len(cart.Lines) != 0 || cart.State != CartStateEmpty {
		t.Fatalf("rejected lines must not change the cart")
	}

	costs := []NewAdditionalCost{
		{CostType: models.CostTypeFreight, AmountFCY: d("10")},
		{CostType: models.CostTypeFreight, ProviderId: 3, AmountFCY: d("0")},
		{CostType: models.CostTypeFreight, ProviderId: 3, AmountFCY: d("10"), ExchangeRate: dp("-2")},
		{CostType: "Bribe", ProviderId: 3, AmountFCY: d("10")},
		{CostType: models.CostTypeClearing, ProviderId: 77, AmountFCY: d("10")},
	}
	for i, c := range costs {
		if _, err := cart.AddAdditionalCost(ids, s, c); !IsValidationError(err) {
			t.Fatalf("cost %d: err = %v, want validation error", i, err)
		}
	}

	if err := cart.RemoveLine("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("RemoveLine unknown: %v", err)
	}
	if err := cart.RemoveAdditionalCost("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("RemoveAdditionalCost unknown: %v", err)
	}
}

func TestPurchaseCartAdditionalCostConversion(t *testing.T) {
	s := baseSnapshot()
	cart := NewPurchaseCart("11001")
	cost, err := cart.AddAdditionalCost(&seqIds{}, s, NewAdditionalCost{CostType: models.CostTypeClearing, ProviderId: 3, CurrencyCode: "mmk", AmountFCY: d("100000")})
	if err != nil {
		t.Fatalf("AddAdditionalCost: %v", err)
	}
	if cost.CurrencyCode != "MMK" || !cost.ExchangeRate.Equal(d("2000")) || !cost.AmountUSD.Equal(d("50")) {
		t.Fatalf("cost = %+v", cost)
	}
	if err := cart.RemoveAdditionalCost(cost.LineId); err != nil {
		t.Fatalf("RemoveAdditionalCost: %v", err)
	}
	if cart.State != CartStateEmpty {
		t.Fatalf("state = %s, want Empty", cart.State)
	}
}

func TestPurchaseCartReview(t *testing.T) {
	s := baseSnapshot()
	s.BundlePurchases = []models.BundlePurchase{{ID: 1, ContainerNumber: strp("MSCU1234567")}}
	ids := &seqIds{}

	cart := NewPurchaseCart("11001")
	if err := cart.Review(s); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("empty cart review: %v", err)
	}
	if _, err := cart.AddLine(ids, s, NewCartLine{OriginalTypeId: 10, Weight: d("10"), GrossPrice: d("1")}); err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	if err := cart.Review(s); !IsValidationError(err) {
		t.Fatalf("review without supplier: %v", err)
	}

	if err := cart.SetHeader(s, CartHeader{SupplierId: 1, ContainerNumber: strp(" MSCU1234567 ")}, ""); err != nil {
		t.Fatalf("SetHeader: %v", err)
	}
	if err := cart.Review(s); !errors.Is(err, ErrContainerInUse) {
		t.Fatalf("duplicate container: %v", err)
	}
	if cart.State == CartStateReviewing {
		t.Fatalf("failed review must not move to Reviewing")
	}

	if err := cart.SetHeader(s, CartHeader{SupplierId: 2}, ""); !IsValidationError(err) {
		t.Fatalf("customer as supplier: %v", err)
	}
	if err := cart.SetHeader(s, CartHeader{SupplierId: 1, ContainerNumber: strp("NEW1")}, ""); err != nil {
		t.Fatalf("SetHeader: %v", err)
	}
	if err := cart.Review(s); err != nil {
		t.Fatalf("Review: %v", err)
	}
	cart.MarkPrinted()
	if !cart.Build().Printed {
		t.Fatalf("printed flag not carried")
	}

	// editing after review requires another review
	if _, err := cart.AddLine(ids, s, NewCartLine{OriginalTypeId: 10, Weight: d("5"), GrossPrice: d("1")}); err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	if cart.State != CartStateAccumulating || cart.Printed {
		t.Fatalf("state = %s printed = %v after edit", cart.State, cart.Printed)
	}
	if _, err := cart.Finalize(context.Background(), &fakeDataContext{}); !errors.Is(err, ErrNotReviewed) {
		t.Fatalf("finalize without review: %v", err)
	}
}

func TestPurchaseCartKeepsDraftWhenSaveFails(t *testing.T) {
	s := baseSnapshot()
	ids := &seqIds{}
	cart := NewPurchaseCart("11001")
	_ = cart.SetHeader(s, CartHeader{SupplierId: 1}, "")
	if _, err := cart.AddLine(ids, s, NewCartLine{OriginalTypeId: 10, Weight: d("10"), GrossPrice: d("1")}); err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	if err := cart.Review(s); err != nil {
		t.Fatalf("Review: %v", err)
	}

	dc := &fakeDataContext{fail: true}
	if _, err := cart.Finalize(context.Background(), dc); !errors.Is(err, errStoreDown) {
		t.Fatalf("Finalize err = %v", err)
	}
	if len(cart.Lines) != 1 || cart.State != CartStateReviewing || cart.NextBatchNumber != "11001" {
		t.Fatalf("cart changed after failed save: %+v", cart)
	}

	dc.fail = false
	if _, err := cart.Finalize(context.Background(), dc); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if len(dc.purchases) != 1 || cart.NextBatchNumber != "11002" {
		t.Fatalf("retry did not save once: %d %s", len(dc.purchases), cart.NextBatchNumber)
	}
}

func TestLandedCostPerKgZeroWeight(t *testing.T) {
	if got := LandedCostPerKg(d("100"), d("0")); !got.IsZero() {
		t.Fatalf("LandedCostPerKg with no weight = %s, want 0", got)
	}
}

func TestNextBatchAfter(t *testing.T) {
	tests := []struct{ saved, suggested, want string }{
		{"11001", "11001", "11002"},
		{"11005", "11002", "11006"},
		{"10000", "11003", "11003"},
		{"B-7", "11003", "11004"},
		{"B-7", "", "11001"},
	}
	for _, tt := range tests {
		if got := nextBatchAfter(tt.saved, tt.suggested); got != tt.want {
			t.Fatalf("nextBatchAfter(%q, %q) = %q, want %q", tt.saved, tt.suggested, got, tt.want)
		}
	}
}

func TestBundleCart(t *testing.T) {
	s := baseSnapshot()
	ids := &seqIds{}
	dc := &fakeDataContext{}
	cart := NewBundleCart()
	if err := cart.SetHeader(s, CartHeader{SupplierId: 4, CurrencyCode: "EUR"}); err != nil {
		t.Fatalf("SetHeader: %v", err)
	}
	line, err := cart.AddLine(ids, s, NewBundleLine{ItemId: 32, Qty: d("10"), RateFCY: d("80")})
	if err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	if !line.RateUSD.Equal(d("100")) || !line.TotalFCY.Equal(d("800")) || !line.TotalUSD.Equal(d("1000")) {
		t.Fatalf("line = %+v", line)
	}
	if _, err := cart.AddLine(ids, s, NewBundleLine{ItemId: 99, Qty: d("1"), RateFCY: d("1")}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown item: %v", err)
	}
	if _, err := cart.AddAdditionalCost(ids, s, NewAdditionalCost{CostType: models.CostTypeCommission, ProviderId: 3, AmountFCY: d("25")}); err != nil {
		t.Fatalf("AddAdditionalCost: %v", err)
	}
	if err := cart.Review(s); err != nil {
		t.Fatalf("Review: %v", err)
	}
	bundle, err := cart.Finalize(context.Background(), dc)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if !bundle.TotalQty.Equal(d("10")) || !bundle.MaterialCostUSD.Equal(d("1000")) || !bundle.AdditionalCostUSD.Equal(d("25")) || !bundle.TotalLandedCostUSD.Equal(d("1025")) {
		t.Fatalf("bundle = %+v", bundle)
	}
	if len(dc.bundles) != 1 || cart.State != CartStateEmpty || len(cart.Lines) != 0 {
		t.Fatalf("bundle not saved or cart not cleared")
	}
}

func TestPurchaseCartHeaderExchangeRate(t *testing.T) {
	s := baseSnapshot()
	ids := &seqIds{}

	tests := []struct {
		name   string
		header CartHeader
		want   string
	}{
		{"table rate", CartHeader{SupplierId: 1, CurrencyCode: "EUR"}, "0.8"},
		{"given rate for a currency missing from the table", CartHeader{SupplierId: 1, CurrencyCode: "GBP", ExchangeRate: d("3.5")}, "3.5"},
		{"given rate replaces the table rate", CartHeader{SupplierId: 1, CurrencyCode: "EUR", ExchangeRate: d("0.9")}, "0.9"},
		{"override wins over the given rate", CartHeader{SupplierId: 1, CurrencyCode: "EUR", ExchangeRate: d("0.9"), RateOverride: dp("0.75")}, "0.75"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cart := NewPurchaseCart("11001")
			if err := cart.SetHeader(s, tt.header, ""); err != nil {
				t.Fatalf("SetHeader: %v", err)
			}
			if !cart.Header.ExchangeRate.Equal(d(tt.want)) {
				t.Fatalf("rate = %s, want %s", cart.Header.ExchangeRate, tt.want)
			}
			line, err := cart.AddLine(ids, s, NewCartLine{OriginalTypeId: 10, Weight: d("100"), GrossPrice: d("7")})
			if err != nil {
				t.Fatalf("AddLine: %v", err)
			}
			if want := d("700").Div(d(tt.want)); !line.TotalCostUSD.Equal(want) {
				t.Fatalf("line USD = %s, want %s", line.TotalCostUSD, want)
			}
		})
	}
}

func TestPurchaseCartReviewRefreshesBatchNumber(t *testing.T) {
	s := baseSnapshot()
	ids := &seqIds{}

	cart := NewPurchaseCart("11003")
	if err := cart.SetHeader(s, CartHeader{SupplierId: 1}, ""); err != nil {
		t.Fatalf("SetHeader: %v", err)
	}
	if _, err := cart.AddLine(ids, s, NewCartLine{OriginalTypeId: 10, Weight: d("10"), GrossPrice: d("1")}); err != nil {
		t.Fatalf("AddLine: %v", err)
	}

	// another user saved 11003 and 11004 after this draft was started
	s.Purchases = append(s.Purchases,
		models.Purchase{ID: 1, SupplierId: 1, BatchNumber: "11003", SequenceNo: 11003},
		models.Purchase{ID: 2, SupplierId: 1, BatchNumber: "11004", SequenceNo: 11004},
	)
	if err := cart.Review(s); err != nil {
		t.Fatalf("Review: %v", err)
	}
	if cart.NextBatchNumber != "11005" {
		t.Fatalf("next batch = %s, want 11005", cart.NextBatchNumber)
	}
	if got := cart.Build().BatchNumber; got != "11005" {
		t.Fatalf("built batch = %s, want 11005", got)
	}

	// a suggestion already ahead of saved purchases is kept
	if got := suggestBatchNumber(s, "11009"); got != "11009" {
		t.Fatalf("suggestBatchNumber = %s, want 11009", got)
	}
}
