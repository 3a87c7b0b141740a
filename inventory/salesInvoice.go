package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/mmdatafocus/factory_backend/models"
	"github.com/shopspring/decimal"
)

type NewSalesInvoiceLine struct {
	ItemId int             `json:"item_id"`
	Qty    decimal.Decimal `json:"qty"`
	// Rate defaults to the item's sale price when omitted.
	Rate *decimal.Decimal `json:"rate"`
}

type NewInvoiceCost struct {
	Description  string           `json:"description"`
	CurrencyCode string           `json:"currency_code"`
	ExchangeRate *decimal.Decimal `json:"exchange_rate"`
	Amount       decimal.Decimal  `json:"amount"`
}

type NewSalesInvoice struct {
	CustomerId      int                   `json:"customer_id"`
	InvoiceDate     time.Time             `json:"invoice_date"`
	CurrencyCode    string                `json:"currency_code"`
	ExchangeRate    *decimal.Decimal      `json:"exchange_rate"`
	Discount        decimal.Decimal       `json:"discount"`
	Surcharge       decimal.Decimal       `json:"surcharge"`
	Items           []NewSalesInvoiceLine `json:"items"`
	AdditionalCosts []NewInvoiceCost      `json:"additional_costs"`
}

// PrepareSalesInvoice prices the lines and computes
// net = gross - discount + surcharge + costs converted into the invoice currency.
func PrepareSalesInvoice(s *models.Snapshot, in NewSalesInvoice) (*models.SalesInvoice, error) {
	customer := s.Partner(in.CustomerId)
	if customer == nil {
		return nil, notFound("customer", in.CustomerId)
	}
	if !customer.IsCustomer() {
		return nil, invalidf("customer_id", "%s is not a customer", customer.Name)
	}
	if len(in.Items) == 0 {
		return nil, invalid("items", "at least one line is required")
	}
	if in.Discount.IsNegative() || in.Surcharge.IsNegative() {
		return nil, invalid("discount", "discount and surcharge cannot be negative")
	}
	rates := NewRateTable(s.Currencies)
	code := strings.ToUpper(strings.TrimSpace(in.CurrencyCode))
	if code == "" {
		code = customer.CurrencyCode
	}
	if code == "" {
		code = models.BaseCurrencyCode
	}
	invoiceRate, err := resolveRate(rates, code, in.ExchangeRate, "exchange_rate")
	if err != nil {
		return nil, err
	}

	invoice := &models.SalesInvoice{
		InvoiceDate:  in.InvoiceDate,
		CustomerId:   customer.ID,
		Status:       models.SalesInvoiceStatusUnposted,
		CurrencyCode: code,
		ExchangeRate: invoiceRate,
		Discount:     in.Discount,
		Surcharge:    in.Surcharge,
	}
	for _, l := range in.Items {
		item := s.Item(l.ItemId)
		if item == nil {
			return nil, notFound("item", l.ItemId)
		}
		if !l.Qty.IsPositive() {
			return nil, invalid("qty", "quantity must be greater than 0")
		}
		rate := item.SalePrice
		if l.Rate != nil {
			if l.Rate.IsNegative() {
				return nil, invalid("rate", "rate cannot be negative")
			}
			rate = *l.Rate
		}
		line := models.SalesInvoiceItem{
			ItemId:      item.ID,
			Description: item.Name,
			Qty:         l.Qty,
			Rate:        rate,
			Total:       l.Qty.Mul(rate),
			TotalKg:     item.KgFor(l.Qty),
		}
		invoice.Items = append(invoice.Items, line)
		invoice.GrossTotal = invoice.GrossTotal.Add(line.Total)
	}

	invoice.NetTotal = invoice.GrossTotal.Sub(in.Discount).Add(in.Surcharge)
	for _, c := range in.AdditionalCosts {
		if !c.Amount.IsPositive() {
			return nil, invalid("additional_costs", "amount must be positive")
		}
		costCode := strings.ToUpper(strings.TrimSpace(c.CurrencyCode))
		if costCode == "" {
			costCode = code
		}
		costRate := invoiceRate
		if costCode != code || c.ExchangeRate != nil {
			costRate, err = resolveRate(rates, costCode, c.ExchangeRate, "additional_costs")
			if err != nil {
				return nil, err
			}
		}
		cost := models.InvoiceAdditionalCost{
			Description:   c.Description,
			CurrencyCode:  costCode,
			ExchangeRate:  costRate,
			Amount:        c.Amount,
			InvoiceAmount: Convert(c.Amount, costRate, invoiceRate),
		}
		invoice.AdditionalCosts = append(invoice.AdditionalCosts, cost)
		invoice.NetTotal = invoice.NetTotal.Add(cost.InvoiceAmount)
	}
	return invoice, nil
}

func CreateSalesInvoice(ctx context.Context, s *models.Snapshot, dc DataContext, in NewSalesInvoice) (*models.SalesInvoice, error) {
	invoice, err := PrepareSalesInvoice(s, in)
	if err != nil {
		return nil, err
	}
	if err := dc.AddSalesInvoice(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

// UpdateSalesInvoice replaces every line and cost of an Unposted invoice.
func UpdateSalesInvoice(ctx context.Context, s *models.Snapshot, dc DataContext, id int, in NewSalesInvoice) (*models.SalesInvoice, error) {
	existing := s.SalesInvoice(id)
	if existing == nil {
		return nil, notFound("sales_invoice", id)
	}
	if existing.Status == models.SalesInvoiceStatusPosted || existing.IsDirectSale {
		return nil, invalidErr("status", ErrInvoicePosted)
	}
	invoice, err := PrepareSalesInvoice(s, in)
	if err != nil {
		return nil, err
	}
	invoice.ID = existing.ID
	invoice.InvoiceNumber = existing.InvoiceNumber
	if err := dc.UpdateSalesInvoice(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

type NewOngoingOrderLine struct {
	ItemId   int             `json:"item_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

type NewOngoingOrder struct {
	CustomerId int                   `json:"customer_id"`
	OrderDate  time.Time             `json:"order_date"`
	Items      []NewOngoingOrderLine `json:"items"`
}

// CreateOngoingOrder merges repeated items into one line per item.
func CreateOngoingOrder(ctx context.Context, s *models.Snapshot, dc DataContext, in NewOngoingOrder) (*models.OngoingOrder, error) {
	customer := s.Partner(in.CustomerId)
	if customer == nil {
		return nil, notFound("customer", in.CustomerId)
	}
	if !customer.IsCustomer() {
		return nil, invalidf("customer_id", "%s is not a customer", customer.Name)
	}
	if len(in.Items) == 0 {
		return nil, invalid("items", "at least one line is required")
	}
	order := &models.OngoingOrder{
		OrderDate:  in.OrderDate,
		CustomerId: customer.ID,
		Status:     models.OngoingOrderStatusActive,
	}
	index := make(map[int]int)
	for _, l := range in.Items {
		if s.Item(l.ItemId) == nil {
			return nil, notFound("item", l.ItemId)
		}
		if !l.Quantity.IsPositive() {
			return nil, invalid("quantity", "quantity must be greater than 0")
		}
		if i, ok := index[l.ItemId]; ok {
			order.Items[i].Quantity = order.Items[i].Quantity.Add(l.Quantity)
			continue
		}
		index[l.ItemId] = len(order.Items)
		order.Items = append(order.Items, models.OngoingOrderItem{ItemId: l.ItemId, Quantity: l.Quantity})
	}
	if err := dc.AddOngoingOrder(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}
