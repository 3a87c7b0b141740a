package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/mmdatafocus/factory_backend/models"
	"github.com/shopspring/decimal"
)

// sellableEpsilon hides batches whose remaining weight is only rounding noise.
var sellableEpsilon = decimal.RequireFromString("0.01")

type SellableBatch struct {
	PurchaseId      int             `json:"purchase_id"`
	SupplierId      int             `json:"supplier_id"`
	BatchNumber     string          `json:"batch_number"`
	PurchaseDate    time.Time       `json:"purchase_date"`
	PurchasedWeight decimal.Decimal `json:"purchased_weight"`
	OpenedWeight    decimal.Decimal `json:"opened_weight"`
	SoldWeight      decimal.Decimal `json:"sold_weight"`
	Remaining       decimal.Decimal `json:"remaining"`
	LandedCostPerKg decimal.Decimal `json:"landed_cost_per_kg"`
}

// BatchBalance computes purchased minus opened minus sold weight for one purchase.
// Sold weight counts posted invoice lines linked to the purchase.
func BatchBalance(s *models.Snapshot, p models.Purchase) SellableBatch {
	b := SellableBatch{
		PurchaseId:      p.ID,
		SupplierId:      p.SupplierId,
		BatchNumber:     p.BatchNumber,
		PurchaseDate:    p.PurchaseDate,
		PurchasedWeight: p.TotalWeight,
		LandedCostPerKg: p.LandedCostPerKg,
	}
	if b.PurchasedWeight.IsZero() {
		for _, l := range p.EffectiveLines() {
			b.PurchasedWeight = b.PurchasedWeight.Add(l.Weight)
		}
	}
	for _, o := range s.OriginalOpenings {
		if o.SupplierId == p.SupplierId && o.BatchNumber != nil && *o.BatchNumber == p.BatchNumber {
			b.OpenedWeight = b.OpenedWeight.Add(o.Weight)
		}
	}
	for _, inv := range s.SalesInvoices {
		if inv.Status != models.SalesInvoiceStatusPosted {
			continue
		}
		for _, item := range inv.Items {
			if item.OriginalPurchaseId != nil && *item.OriginalPurchaseId == p.ID {
				b.SoldWeight = b.SoldWeight.Add(item.TotalKg)
			}
		}
	}
	b.Remaining = b.PurchasedWeight.Sub(b.OpenedWeight).Sub(b.SoldWeight)
	return b
}

// SellableBatches lists batches of the supplier (all suppliers when 0) with
// stock left, oldest first.
func SellableBatches(s *models.Snapshot, supplierId int) []SellableBatch {
	var result []SellableBatch
	for _, p := range s.Purchases {
		if supplierId > 0 && p.SupplierId != supplierId {
			continue
		}
		b := BatchBalance(s, p)
		if b.Remaining.GreaterThan(sellableEpsilon) {
			result = append(result, b)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].PurchaseDate.Equal(result[j].PurchaseDate) {
			return result[i].PurchaseDate.Before(result[j].PurchaseDate)
		}
		return result[i].PurchaseId < result[j].PurchaseId
	})
	return result
}

type DirectSaleRequest struct {
	CustomerId   int              `json:"customer_id"`
	PurchaseId   int              `json:"purchase_id"`
	InvoiceDate  time.Time        `json:"invoice_date"`
	Qty          decimal.Decimal  `json:"qty"`
	Rate         decimal.Decimal  `json:"rate"`
	CurrencyCode string           `json:"currency_code"`
	ExchangeRate *decimal.Decimal `json:"exchange_rate"`
}

// RecordDirectSale sells raw material straight from a batch as a posted invoice.
// Qty is in kg.
func RecordDirectSale(ctx context.Context, s *models.Snapshot, dc DataContext, ids IdIssuer, req DirectSaleRequest) (*models.SalesInvoice, error) {
	customer := s.Partner(req.CustomerId)
	if customer == nil {
		return nil, notFound("customer", req.CustomerId)
	}
	if !customer.IsCustomer() {
		return nil, invalidf("customer_id", "%s is not a customer", customer.Name)
	}
	purchase := s.Purchase(req.PurchaseId)
	if purchase == nil {
		return nil, notFound("purchase", req.PurchaseId)
	}
	if !req.Qty.IsPositive() {
		return nil, invalid("qty", "quantity must be greater than 0")
	}
	if !req.Rate.IsPositive() {
		return nil, invalid("rate", "rate must be greater than 0")
	}
	balance := BatchBalance(s, *purchase)
	if req.Qty.GreaterThan(balance.Remaining) {
		return nil, &ValidationError{
			Field:   "qty",
			Message: "only " + balance.Remaining.StringFixed(2) + " kg left in batch " + purchase.BatchNumber,
			Err:     ErrInsufficientStock,
		}
	}

	code := req.CurrencyCode
	if code == "" {
		code = customer.CurrencyCode
	}
	if code == "" {
		code = models.BaseCurrencyCode
	}
	rate, err := resolveRate(NewRateTable(s.Currencies), code, req.ExchangeRate, "exchange_rate")
	if err != nil {
		return nil, err
	}

	purchaseId := purchase.ID
	total := req.Qty.Mul(req.Rate)
	invoice := models.SalesInvoice{
		InvoiceNumber: ids.NewDirectSaleNumber(),
		InvoiceDate:   req.InvoiceDate,
		CustomerId:    customer.ID,
		Status:        models.SalesInvoiceStatusPosted,
		CurrencyCode:  code,
		ExchangeRate:  rate,
		IsDirectSale:  true,
		Items: []models.SalesInvoiceItem{{
			Description:        "Batch " + purchase.BatchNumber,
			Qty:                req.Qty,
			Rate:               req.Rate,
			Total:              total,
			TotalKg:            req.Qty,
			OriginalPurchaseId: &purchaseId,
		}},
		GrossTotal: total,
		NetTotal:   total,
	}
	if err := dc.AddDirectSale(ctx, &invoice, purchase.LandedCostPerKg); err != nil {
		return nil, err
	}
	return &invoice, nil
}
