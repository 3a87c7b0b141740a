package models

import (
	"errors"
	"testing"
	"time"

	"github.com/mmdatafocus/factory_backend/utils"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testOrder() OngoingOrder {
	return OngoingOrder{
		ID:          7,
		OrderNumber: "ORD-7",
		Items: []OngoingOrderItem{
			{ID: 1, ItemId: 10, Quantity: dec("100")},
			{ID: 2, ItemId: 20, Quantity: dec("50")},
		},
	}
}

func TestOngoingOrderRecomputeStatus(t *testing.T) {
	order := testOrder()
	if got := order.RecomputeStatus(); got != OngoingOrderStatusActive {
		t.Fatalf("new order status = %s, want Active", got)
	}

	order.ApplyShipment([]ShipmentItem{{ItemId: 10, Qty: dec("40")}})
	if order.Status != OngoingOrderStatusPartiallyShipped {
		t.Fatalf("after partial shipment status = %s, want PartiallyShipped", order.Status)
	}
	if !order.Items[0].ShippedQuantity.Equal(dec("40")) {
		t.Fatalf("shipped qty = %s, want 40", order.Items[0].ShippedQuantity)
	}
	if !order.Items[0].RemainingQuantity().Equal(dec("60")) {
		t.Fatalf("remaining = %s, want 60", order.Items[0].RemainingQuantity())
	}

	// one line fully shipped is still partial
	order.ApplyShipment([]ShipmentItem{{ItemId: 10, Qty: dec("60")}})
	if order.Status != OngoingOrderStatusPartiallyShipped {
		t.Fatalf("status = %s, want PartiallyShipped", order.Status)
	}

	order.ApplyShipment([]ShipmentItem{{ItemId: 20, Qty: dec("50")}, {ItemId: 99, Qty: dec("5")}})
	if order.Status != OngoingOrderStatusCompleted {
		t.Fatalf("status = %s, want Completed", order.Status)
	}
	if !order.Items[1].RemainingQuantity().IsZero() {
		t.Fatalf("remaining = %s, want 0", order.Items[1].RemainingQuantity())
	}
}

func TestOngoingOrderWithoutLinesIsActive(t *testing.T) {
	order := OngoingOrder{}
	if got := order.RecomputeStatus(); got != OngoingOrderStatusActive {
		t.Fatalf("status = %s, want Active", got)
	}
}

func TestShipmentInvoiceItems(t *testing.T) {
	items := map[int]*Item{
		10: {ID: 10, Name: "Bale 45kg", SalePrice: dec("90"), WeightPerUnit: dec("45")},
	}
	lines := ShipmentInvoiceItems([]ShipmentItem{
		{ItemId: 10, Qty: dec("3")},
		{ItemId: 11, Qty: dec("0")},
		{ItemId: 12, Qty: dec("2")},
	}, func(id int) *Item { return items[id] })

	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0].Description != "Bale 45kg" || !lines[0].Rate.Equal(dec("90")) {
		t.Fatalf("line 0 = %+v", lines[0])
	}
	if !lines[0].Total.Equal(dec("270")) || !lines[0].TotalKg.Equal(dec("135")) {
		t.Fatalf("line 0 total=%s kg=%s, want 270 and 135", lines[0].Total, lines[0].TotalKg)
	}
	// unknown item keeps the qty with a zero rate
	if !lines[1].Total.IsZero() || lines[1].ItemId != 12 {
		t.Fatalf("line 1 = %+v", lines[1])
	}
}

func TestNewShipmentInvoiceIsDatedAtShipment(t *testing.T) {
	order := testOrder()
	order.BusinessId = "biz"
	order.CustomerId = 4
	order.OrderDate = time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	shippedAt := time.Date(2024, 2, 20, 9, 30, 0, 0, time.UTC)
	items := map[int]*Item{10: {ID: 10, Name: "Bale 45kg", SalePrice: dec("90"), WeightPerUnit: dec("45")}}

	invoice := NewShipmentInvoice(order, []ShipmentItem{{ItemId: 10, Qty: dec("2")}}, func(id int) *Item { return items[id] }, shippedAt)

	if !invoice.InvoiceDate.Equal(shippedAt) {
		t.Fatalf("invoice date = %s, want shipment date %s", invoice.InvoiceDate, shippedAt)
	}
	if invoice.InvoiceDate.Equal(order.OrderDate) {
		t.Fatalf("invoice dated at the order date")
	}
	if invoice.Status != SalesInvoiceStatusUnposted || invoice.CustomerId != 4 {
		t.Fatalf("status=%s customer=%d", invoice.Status, invoice.CustomerId)
	}
	if invoice.OngoingOrderId == nil || *invoice.OngoingOrderId != order.ID {
		t.Fatalf("ongoing order id = %v, want %d", invoice.OngoingOrderId, order.ID)
	}
	if !invoice.GrossTotal.Equal(dec("180")) || !invoice.NetTotal.Equal(dec("180")) {
		t.Fatalf("gross=%s net=%s, want 180", invoice.GrossTotal, invoice.NetTotal)
	}
}

func TestCheckShipmentAgainstOrder(t *testing.T) {
	order := testOrder()
	order.Items[0].ShippedQuantity = dec("90")

	tests := []struct {
		name    string
		items   []ShipmentItem
		wantErr error
	}{
		{"within remaining", []ShipmentItem{{ItemId: 10, Qty: dec("10")}, {ItemId: 20, Qty: dec("50")}}, nil},
		{"over remaining", []ShipmentItem{{ItemId: 10, Qty: dec("11")}}, ErrOverShipment},
		{"split lines summed", []ShipmentItem{{ItemId: 10, Qty: dec("6")}, {ItemId: 10, Qty: dec("6")}}, ErrOverShipment},
		{"not on order", []ShipmentItem{{ItemId: 30, Qty: dec("1")}}, utils.ErrorRecordNotFound},
	}
	for _, tt := range tests {
		err := checkShipmentAgainstOrder(order, tt.items)
		if tt.wantErr == nil && err != nil {
			t.Fatalf("%s: unexpected error %v", tt.name, err)
		}
		if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
			t.Fatalf("%s: err = %v, want %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestFormatDocumentNumbers(t *testing.T) {
	if got := FormatSalesInvoiceNumber(1); got != "SINV-1001" {
		t.Fatalf("invoice number = %s", got)
	}
	if got := FormatOngoingOrderNumber(12); got != "ORD-12" {
		t.Fatalf("order number = %s", got)
	}
}
