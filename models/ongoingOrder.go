package models

import (
	"context"
	"fmt"
	"time"

	"github.com/mmdatafocus/factory_backend/config"
	"github.com/mmdatafocus/factory_backend/utils"
	"github.com/shopspring/decimal"
)

const OngoingOrderPrefix = "ORD-"

type OngoingOrder struct {
	ID          int                `gorm:"primary_key" json:"id"`
	BusinessId  string             `gorm:"index;not null" json:"business_id"`
	OrderNumber string             `gorm:"size:50;index;not null" json:"order_number"`
	SequenceNo  int64              `gorm:"index;not null;default:0" json:"sequence_no"`
	OrderDate   time.Time          `gorm:"not null" json:"order_date"`
	CustomerId  int                `gorm:"index;not null" json:"customer_id"`
	Status      OngoingOrderStatus `gorm:"type:enum('Active','PartiallyShipped','Completed');not null;default:'Active'" json:"status"`
	Items       []OngoingOrderItem `gorm:"foreignKey:OngoingOrderId" json:"items"`
	CreatedAt   time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

type OngoingOrderItem struct {
	ID              int             `gorm:"primary_key" json:"id"`
	OngoingOrderId  int             `gorm:"index;not null" json:"ongoing_order_id"`
	ItemId          int             `gorm:"index;not null" json:"item_id"`
	Quantity        decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity"`
	ShippedQuantity decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"shipped_quantity"`
}

// ShipmentItem is one line of a shipment against an ongoing order.
type ShipmentItem struct {
	ItemId int             `json:"item_id"`
	Qty    decimal.Decimal `json:"qty"`
}

func (i OngoingOrderItem) RemainingQuantity() decimal.Decimal {
	remaining := i.Quantity.Sub(i.ShippedQuantity)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// RecomputeStatus derives the status from the lines:
// Completed when every line is fully shipped, PartiallyShipped when anything shipped, else Active.
func (o *OngoingOrder) RecomputeStatus() OngoingOrderStatus {
	var shipped decimal.Decimal
	allShipped := len(o.Items) > 0
	for _, item := range o.Items {
		shipped = shipped.Add(item.ShippedQuantity)
		if item.ShippedQuantity.LessThan(item.Quantity) {
			allShipped = false
		}
	}
	switch {
	case allShipped:
		o.Status = OngoingOrderStatusCompleted
	case shipped.IsPositive():
		o.Status = OngoingOrderStatusPartiallyShipped
	default:
		o.Status = OngoingOrderStatusActive
	}
	return o.Status
}

// ApplyShipment adds shipped quantities to the matching lines and recomputes the status.
// Quantities for items not on the order are ignored.
func (o *OngoingOrder) ApplyShipment(items []ShipmentItem) {
	for _, s := range items {
		for i := range o.Items {
			if o.Items[i].ItemId == s.ItemId {
				o.Items[i].ShippedQuantity = o.Items[i].ShippedQuantity.Add(s.Qty)
				break
			}
		}
	}
	o.RecomputeStatus()
}

// ShipmentInvoiceItems turns shipped quantities into invoice lines priced at the item's sale price.
func ShipmentInvoiceItems(items []ShipmentItem, lookup func(itemId int) *Item) []SalesInvoiceItem {
	var result []SalesInvoiceItem
	for _, s := range items {
		if !s.Qty.IsPositive() {
			continue
		}
		line := SalesInvoiceItem{
			ItemId: s.ItemId,
			Qty:    s.Qty,
		}
		if item := lookup(s.ItemId); item != nil {
			line.Description = item.Name
			line.Rate = item.SalePrice
			line.TotalKg = item.KgFor(s.Qty)
		}
		line.Total = line.Qty.Mul(line.Rate)
		result = append(result, line)
	}
	return result
}

// NewShipmentInvoice builds the Unposted base currency invoice for one shipment,
// dated at shippedAt.
func NewShipmentInvoice(order OngoingOrder, items []ShipmentItem, lookup func(itemId int) *Item, shippedAt time.Time) SalesInvoice {
	orderId := order.ID
	invoice := SalesInvoice{
		BusinessId:     order.BusinessId,
		InvoiceDate:    shippedAt,
		CustomerId:     order.CustomerId,
		Status:         SalesInvoiceStatusUnposted,
		CurrencyCode:   BaseCurrencyCode,
		ExchangeRate:   decimal.NewFromInt(1),
		OngoingOrderId: &orderId,
		Items:          ShipmentInvoiceItems(items, lookup),
	}
	for _, line := range invoice.Items {
		invoice.GrossTotal = invoice.GrossTotal.Add(line.Total)
	}
	invoice.NetTotal = invoice.GrossTotal
	return invoice
}

func FormatOngoingOrderNumber(seqNo int64) string {
	return OngoingOrderPrefix + fmt.Sprint(seqNo)
}

func GetOngoingOrder(ctx context.Context, id int) (*OngoingOrder, error) {
	businessId, err := businessIdFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return utils.FetchModel[OngoingOrder](ctx, businessId, id, "Items")
}

func GetOngoingOrders(ctx context.Context, status *OngoingOrderStatus) ([]*OngoingOrder, error) {
	businessId, err := businessIdFromContext(ctx)
	if err != nil {
		return nil, err
	}
	dbCtx := config.GetDB().WithContext(ctx).Where("business_id = ?", businessId)
	if status != nil && *status != "" {
		dbCtx = dbCtx.Where("status = ?", *status)
	}
	var results []*OngoingOrder
	if err := dbCtx.Preload("Items").Order("order_date DESC, id DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
