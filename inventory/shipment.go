package inventory

import (
	"context"

	"github.com/mmdatafocus/factory_backend/models"
	"github.com/shopspring/decimal"
)

type ShipmentLine struct {
	ItemId    int             `json:"item_id"`
	Ordered   decimal.Decimal `json:"ordered"`
	Shipped   decimal.Decimal `json:"shipped"`
	Remaining decimal.Decimal `json:"remaining"`
	// ShipQty is the suggested quantity for this shipment.
	ShipQty decimal.Decimal `json:"ship_qty"`
}

// OpenShipment proposes shipping everything still outstanding.
func OpenShipment(order models.OngoingOrder) []ShipmentLine {
	lines := make([]ShipmentLine, 0, len(order.Items))
	for _, item := range order.Items {
		remaining := item.RemainingQuantity()
		lines = append(lines, ShipmentLine{
			ItemId:    item.ItemId,
			Ordered:   item.Quantity,
			Shipped:   item.ShippedQuantity,
			Remaining: remaining,
			ShipQty:   remaining,
		})
	}
	return lines
}

// ConfirmShipment validates the quantities against the order and hands them to
// the data context, which updates the order and invoices the shipment.
func ConfirmShipment(ctx context.Context, dc DataContext, order models.OngoingOrder, items []models.ShipmentItem) ([]models.ShipmentItem, error) {
	if order.Status == models.OngoingOrderStatusCompleted {
		return nil, invalid("order", "order "+order.OrderNumber+" is already completed")
	}
	requested := make(map[int]decimal.Decimal)
	var shipped []models.ShipmentItem
	for _, s := range items {
		if s.Qty.IsNegative() {
			return nil, invalid("qty", "quantity cannot be negative")
		}
		if !s.Qty.IsPositive() {
			continue
		}
		shipped = append(shipped, s)
		requested[s.ItemId] = requested[s.ItemId].Add(s.Qty)
	}
	if len(shipped) == 0 {
		return nil, invalidErr("items", ErrNothingToShip)
	}
	for itemId, qty := range requested {
		var line *models.OngoingOrderItem
		for i := range order.Items {
			if order.Items[i].ItemId == itemId {
				line = &order.Items[i]
				break
			}
		}
		if line == nil {
			return nil, notFound("order_item", itemId)
		}
		if qty.GreaterThan(line.RemainingQuantity()) {
			return nil, invalidf("qty", "item %d: %s exceeds remaining %s", itemId, qty.String(), line.RemainingQuantity().String())
		}
	}
	if err := dc.ProcessOrderShipment(ctx, order.ID, shipped); err != nil {
		return nil, err
	}
	return shipped, nil
}

// OpenShipmentItems turns the suggested lines into shipment quantities.
func OpenShipmentItems(order models.OngoingOrder) []models.ShipmentItem {
	var items []models.ShipmentItem
	for _, l := range OpenShipment(order) {
		if l.ShipQty.IsPositive() {
			items = append(items, models.ShipmentItem{ItemId: l.ItemId, Qty: l.ShipQty})
		}
	}
	return items
}
