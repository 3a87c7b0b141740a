package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/mmdatafocus/factory_backend/models"
)

func shipmentOrder() models.OngoingOrder {
	return models.OngoingOrder{
		ID:          5,
		OrderNumber: "ORD-5",
		Status:      models.OngoingOrderStatusPartiallyShipped,
		Items: []models.OngoingOrderItem{
			{ItemId: 31, Quantity: d("100"), ShippedQuantity: d("30")},
			{ItemId: 32, Quantity: d("10")},
		},
	}
}

func TestOpenShipmentDefaultsToRemaining(t *testing.T) {
	lines := OpenShipment(shipmentOrder())
	if len(lines) != 2 {
		t.Fatalf("got %d lines", len(lines))
	}
	if !lines[0].ShipQty.Equal(d("70")) || !lines[1].ShipQty.Equal(d("10")) {
		t.Fatalf("lines = %+v", lines)
	}
}

func TestConfirmShipment(t *testing.T) {
	dc := &fakeDataContext{}
	shipped, err := ConfirmShipment(context.Background(), dc, shipmentOrder(), []models.ShipmentItem{
		{ItemId: 31, Qty: d("20")},
		{ItemId: 32, Qty: d("0")},
	})
	if err != nil {
		t.Fatalf("ConfirmShipment: %v", err)
	}
	if len(shipped) != 1 || len(dc.shipments[5]) != 1 || !dc.shipments[5][0].Qty.Equal(d("20")) {
		t.Fatalf("shipments = %+v", dc.shipments)
	}

	// applying the same shipment to the order gives the expected state
	order := shipmentOrder()
	order.ApplyShipment(shipped)
	if !order.Items[0].ShippedQuantity.Equal(d("50")) || order.Status != models.OngoingOrderStatusPartiallyShipped {
		t.Fatalf("order = %+v", order)
	}
	order.ApplyShipment(OpenShipmentItems(order))
	if order.Status != models.OngoingOrderStatusCompleted {
		t.Fatalf("status = %s, want Completed", order.Status)
	}
}

func TestConfirmShipmentRejects(t *testing.T) {
	tests := []struct {
		name  string
		items []models.ShipmentItem
		want  error
	}{
		{"nothing", []models.ShipmentItem{{ItemId: 31, Qty: d("0")}}, ErrNothingToShip},
		{"unknown line", []models.ShipmentItem{{ItemId: 99, Qty: d("1")}}, ErrNotFound},
		{"over remaining", []models.ShipmentItem{{ItemId: 31, Qty: d("71")}}, nil},
		{"negative", []models.ShipmentItem{{ItemId: 31, Qty: d("-1")}}, nil},
	}
	for _, tt := range tests {
		dc := &fakeDataContext{}
		_, err := ConfirmShipment(context.Background(), dc, shipmentOrder(), tt.items)
		if !IsValidationError(err) {
			t.Fatalf("%s: err = %v, want validation error", tt.name, err)
		}
		if tt.want != nil && !errors.Is(err, tt.want) {
			t.Fatalf("%s: err = %v, want %v", tt.name, err, tt.want)
		}
		if len(dc.shipments) != 0 {
			t.Fatalf("%s: nothing may be shipped", tt.name)
		}
	}

	completed := shipmentOrder()
	completed.Status = models.OngoingOrderStatusCompleted
	if _, err := ConfirmShipment(context.Background(), &fakeDataContext{}, completed, []models.ShipmentItem{{ItemId: 31, Qty: d("1")}}); !IsValidationError(err) {
		t.Fatalf("completed order: %v", err)
	}
}

func TestConfirmShipmentPropagatesStoreFailure(t *testing.T) {
	_, err := ConfirmShipment(context.Background(), &fakeDataContext{fail: true}, shipmentOrder(), []models.ShipmentItem{{ItemId: 31, Qty: d("1")}})
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("err = %v", err)
	}
}
