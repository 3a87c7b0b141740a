package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/mmdatafocus/factory_backend/models"
)

func TestSerialAllocatorContiguous(t *testing.T) {
	a := NewSerialAllocator()
	item := models.Item{ID: 32, NextSerial: int64p(501)}

	var prevEnd int64
	for i, qty := range []int64{10, 1, 25} {
		start, end := a.Allocate(item, qty)
		if end-start+1 != qty {
			t.Fatalf("call %d: range %d-%d has wrong size", i, start, end)
		}
		if i == 0 && start != 501 {
			t.Fatalf("first start = %d, want 501", start)
		}
		if i > 0 && start != prevEnd+1 {
			t.Fatalf("call %d: start %d does not follow %d", i, start, prevEnd)
		}
		prevEnd = end
	}

	// items without a counter start at 1
	if start, end := a.Allocate(models.Item{ID: 1}, 3); start != 1 || end != 3 {
		t.Fatalf("fresh item range = %d-%d", start, end)
	}

	a.Reset()
	if start, _ := a.Allocate(item, 1); start != 501 {
		t.Fatalf("after reset start = %d, want 501", start)
	}
}

func TestRebalingScenario(t *testing.T) {
	s := baseSnapshot()
	ps := NewProductionSession()
	summary, err := ps.AddRebaling(&seqIds{}, s, RebalingRequest{
		ConsumeItemId: 30,
		ConsumeQty:    d("100"),
		Outputs:       []RebalingOutput{{ItemId: 31, Qty: d("45")}},
	})
	if err != nil {
		t.Fatalf("AddRebaling: %v", err)
	}
	if len(ps.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(ps.Entries))
	}
	consume, out := ps.Entries[0], ps.Entries[1]
	if !consume.QtyProduced.Equal(d("-100")) || consume.SerialStart != nil || consume.EntryType != models.ProductionEntryTypeRebalingConsumption {
		t.Fatalf("consumption = %+v", consume)
	}
	if !out.QtyProduced.Equal(d("45")) || !out.WeightProduced.Equal(d("90")) || *out.SerialStart != 1 || *out.SerialEnd != 45 {
		t.Fatalf("output = %+v", out)
	}
	if consume.TransactionId == nil || out.TransactionId == nil || *consume.TransactionId != *out.TransactionId {
		t.Fatalf("entries must share a transaction id")
	}
	if !summary.Loss.Equal(d("10")) || !summary.ConsumedWeight.Equal(d("100")) || !summary.ProducedWeight.Equal(d("90")) {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestRebalingUnitConsumption(t *testing.T) {
	s := baseSnapshot()
	ps := NewProductionSession()
	summary, err := ps.AddRebaling(&seqIds{}, s, RebalingRequest{
		ConsumeItemId: 31,
		ConsumeQty:    d("50"),
		Outputs:       []RebalingOutput{{ItemId: 32, Qty: d("2")}},
	})
	if err != nil {
		t.Fatalf("AddRebaling: %v", err)
	}
	// 50 bales of 2 kg into 2 bales of 45 kg
	if !ps.Entries[0].QtyProduced.Equal(d("-50")) || !summary.Loss.Equal(d("10")) {
		t.Fatalf("entries = %+v summary = %+v", ps.Entries, summary)
	}
}

func TestProductionSessionSerialsContinueAcrossLines(t *testing.T) {
	s := baseSnapshot()
	ps := NewProductionSession()
	first, err := ps.AddProduction(s, ProductionLine{ItemId: 32, Qty: d("10")})
	if err != nil {
		t.Fatalf("AddProduction: %v", err)
	}
	second, err := ps.AddProduction(s, ProductionLine{ItemId: 32, Qty: d("5")})
	if err != nil {
		t.Fatalf("AddProduction: %v", err)
	}
	if *first.SerialStart != 501 || *first.SerialEnd != 510 || *second.SerialStart != 511 || *second.SerialEnd != 515 {
		t.Fatalf("serials %d-%d then %d-%d", *first.SerialStart, *first.SerialEnd, *second.SerialStart, *second.SerialEnd)
	}

	kg, err := ps.AddProduction(s, ProductionLine{ItemId: 30, Qty: d("12.5")})
	if err != nil {
		t.Fatalf("AddProduction kg: %v", err)
	}
	if kg.SerialStart != nil || !kg.WeightProduced.Equal(d("12.5")) {
		t.Fatalf("kg entry = %+v", kg)
	}

	if _, err := ps.AddProduction(s, ProductionLine{ItemId: 32, Qty: d("1.5")}); !IsValidationError(err) {
		t.Fatalf("fractional bales: %v", err)
	}
	if _, err := ps.AddProduction(s, ProductionLine{ItemId: 99, Qty: d("1")}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown item: %v", err)
	}
}

func TestRebalingFailureKeepsSerials(t *testing.T) {
	s := baseSnapshot()
	ps := NewProductionSession()
	_, err := ps.AddRebaling(&seqIds{}, s, RebalingRequest{
		ConsumeItemId: 30,
		ConsumeQty:    d("100"),
		Outputs:       []RebalingOutput{{ItemId: 31, Qty: d("10")}, {ItemId: 32, Qty: d("0.5")}},
	})
	if !IsValidationError(err) {
		t.Fatalf("err = %v", err)
	}
	if len(ps.Entries) != 0 {
		t.Fatalf("failed re-baling staged entries")
	}
	entry, err := ps.AddProduction(s, ProductionLine{ItemId: 31, Qty: d("1")})
	if err != nil {
		t.Fatalf("AddProduction: %v", err)
	}
	if *entry.SerialStart != 1 {
		t.Fatalf("serial = %d, want 1", *entry.SerialStart)
	}
}

func TestProductionSessionFinalize(t *testing.T) {
	s := baseSnapshot()
	ps := NewProductionSession()
	if _, err := ps.Finalize(context.Background(), &fakeDataContext{}); !IsValidationError(err) {
		t.Fatalf("empty session: %v", err)
	}
	if _, err := ps.AddProduction(s, ProductionLine{ItemId: 31, Qty: d("3")}); err != nil {
		t.Fatalf("AddProduction: %v", err)
	}

	failing := &fakeDataContext{fail: true}
	if _, err := ps.Finalize(context.Background(), failing); !errors.Is(err, errStoreDown) {
		t.Fatalf("err = %v", err)
	}
	if len(ps.Entries) != 1 {
		t.Fatalf("session must survive a failed save")
	}

	dc := &fakeDataContext{}
	saved, err := ps.Finalize(context.Background(), dc)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if len(saved) != 1 || len(dc.production) != 1 {
		t.Fatalf("saved = %+v", saved)
	}
	if len(ps.Entries) != 0 || len(ps.Serials.Next) != 0 {
		t.Fatalf("session not reset")
	}
}

func TestProductionSessionCancel(t *testing.T) {
	s := baseSnapshot()
	ps := NewProductionSession()
	if _, err := ps.AddProduction(s, ProductionLine{ItemId: 31, Qty: d("3")}); err != nil {
		t.Fatalf("AddProduction: %v", err)
	}
	ps.Cancel()
	entry, err := ps.AddProduction(s, ProductionLine{ItemId: 31, Qty: d("1")})
	if err != nil {
		t.Fatalf("AddProduction: %v", err)
	}
	if *entry.SerialStart != 1 || len(ps.Entries) != 1 {
		t.Fatalf("cancel should restart serials from the item master")
	}
}
