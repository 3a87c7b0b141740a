package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/mmdatafocus/factory_backend/models"
)

func openingSnapshot() *models.Snapshot {
	s := baseSnapshot()
	s.Purchases = []models.Purchase{{
		ID: 1, SupplierId: 1, BatchNumber: "11001",
		TotalWeight: d("1000"), AdditionalCostUSD: d("50"),
		Items: []models.PurchaseOriginalItem{
			{OriginalTypeId: 10, Weight: d("1000"), Qty: d("1000"), TotalCostUSD: d("2000")},
		},
	}}
	return s
}

func TestPostOpeningWithinAvailable(t *testing.T) {
	s := openingSnapshot()
	dc := &fakeDataContext{}
	opening, err := PostOpening(context.Background(), s, dc, OpeningRequest{
		SupplierId: 1, OriginalTypeId: 10, BatchNumber: strp("11001"), Qty: d("600"),
	})
	if err != nil {
		t.Fatalf("PostOpening: %v", err)
	}
	if !opening.Weight.Equal(d("600")) || !opening.CostPerKg.Equal(d("2.05")) || !opening.TotalValue.Equal(d("1230")) {
		t.Fatalf("opening = %+v", opening)
	}
	if len(dc.openings) != 1 || *dc.openings[0].BatchNumber != "11001" {
		t.Fatalf("saved openings = %+v", dc.openings)
	}
}

func TestPostOpeningNeedsConfirmationAboveAvailable(t *testing.T) {
	s := openingSnapshot()
	s.OriginalOpenings = []models.OriginalOpening{{SupplierId: 1, OriginalTypeId: 10, BatchNumber: strp("11001"), Qty: d("600"), Weight: d("600")}}
	dc := &fakeDataContext{}
	req := OpeningRequest{SupplierId: 1, OriginalTypeId: 10, BatchNumber: strp("11001"), Qty: d("500")}

	_, err := PostOpening(context.Background(), s, dc, req)
	var confirm *ConfirmationRequiredError
	if !errors.As(err, &confirm) {
		t.Fatalf("err = %v, want confirmation request", err)
	}
	if !confirm.Plan.Position.Available.Qty.Equal(d("400")) || !confirm.Plan.Weight.Equal(d("500")) {
		t.Fatalf("plan = %+v", confirm.Plan)
	}
	if len(dc.openings) != 0 {
		t.Fatalf("nothing should be saved before confirmation")
	}

	req.Strict = true
	if _, err := PostOpening(context.Background(), s, dc, req); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("strict mode err = %v", err)
	}

	req.Strict = false
	req.Confirmed = true
	if _, err := PostOpening(context.Background(), s, dc, req); err != nil {
		t.Fatalf("confirmed PostOpening: %v", err)
	}
	if len(dc.openings) != 1 {
		t.Fatalf("confirmed opening not saved")
	}
}

func TestPlanOpeningWeightFallback(t *testing.T) {
	s := baseSnapshot()
	// weight-only legacy stock: quantity 0, 400 kg
	s.Purchases = []models.Purchase{{ID: 1, SupplierId: 1, BatchNumber: "9001", OriginalTypeId: 10, Weight: d("400"), MaterialCostUSD: d("800")}}

	plan, err := PlanOpening(s, OpeningRequest{SupplierId: 1, OriginalTypeId: 10, Qty: d("150")})
	if err != nil {
		t.Fatalf("PlanOpening: %v", err)
	}
	if plan.RequiresConfirmation {
		t.Fatalf("no confirmation when nothing is available by quantity")
	}
	if !plan.Weight.Equal(d("150")) || !plan.CostPerKg.Equal(d("2")) || !plan.TotalValue.Equal(d("300")) {
		t.Fatalf("plan = %+v", plan)
	}
	if !plan.Position.IsKgOnly() {
		t.Fatalf("position should be kg-only")
	}
}

func TestPlanOpeningUsesAverageKgPerUnit(t *testing.T) {
	s := baseSnapshot()
	s.Purchases = []models.Purchase{{
		ID: 1, SupplierId: 1, BatchNumber: "11002",
		Items: []models.PurchaseOriginalItem{{OriginalTypeId: 11, Weight: d("500"), Qty: d("10"), TotalCostUSD: d("1000")}},
	}}
	plan, err := PlanOpening(s, OpeningRequest{SupplierId: 1, OriginalTypeId: 11, BatchNumber: strp(" "), Qty: d("3")})
	if err != nil {
		t.Fatalf("PlanOpening: %v", err)
	}
	if plan.Position.Key.BatchNumber != nil {
		t.Fatalf("blank batch should select all batches")
	}
	if !plan.Weight.Equal(d("150")) || !plan.TotalValue.Equal(d("300")) {
		t.Fatalf("plan = %+v", plan)
	}
}

func TestPlanOpeningValidation(t *testing.T) {
	s := openingSnapshot()
	bad := []OpeningRequest{
		{OriginalTypeId: 10, Qty: d("1")},
		{SupplierId: 77, OriginalTypeId: 10, Qty: d("1")},
		{SupplierId: 1, OriginalTypeId: 99, Qty: d("1")},
		{SupplierId: 1, OriginalTypeId: 10, Qty: d("0")},
	}
	for i, req := range bad {
		if _, err := PlanOpening(s, req); !IsValidationError(err) {
			t.Fatalf("request %d: err = %v, want validation error", i, err)
		}
	}
}

func TestDeleteOpening(t *testing.T) {
	dc := &fakeDataContext{}
	if err := DeleteOpening(context.Background(), dc, 5); err != nil {
		t.Fatalf("DeleteOpening: %v", err)
	}
	if len(dc.deletedOpenings) != 1 || dc.deletedOpenings[0] != 5 {
		t.Fatalf("deleted = %v", dc.deletedOpenings)
	}
	if err := DeleteOpening(context.Background(), dc, 0); !IsValidationError(err) {
		t.Fatalf("id 0: %v", err)
	}
}
