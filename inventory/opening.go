package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmdatafocus/factory_backend/models"
	"github.com/shopspring/decimal"
)

type OpeningRequest struct {
	SupplierId     int             `json:"supplier_id"`
	OriginalTypeId int             `json:"original_type_id"`
	BatchNumber    *string         `json:"batch_number"`
	OpeningDate    time.Time       `json:"opening_date"`
	Qty            decimal.Decimal `json:"qty"`
	Confirmed      bool            `json:"confirmed"`
	// Strict rejects requests above the available quantity instead of asking.
	Strict bool `json:"-"`
}

type OpeningPlan struct {
	Position             StockPosition   `json:"position"`
	RequiresConfirmation bool            `json:"requires_confirmation"`
	Qty                  decimal.Decimal `json:"qty"`
	Weight               decimal.Decimal `json:"weight"`
	CostPerKg            decimal.Decimal `json:"cost_per_kg"`
	TotalValue           decimal.Decimal `json:"total_value"`
}

// PlanOpening values a release of stock at the weighted average cost of the key.
// The weight follows the average kg per unit, or the quantity itself for stock
// kept by weight only.
func PlanOpening(s *models.Snapshot, req OpeningRequest) (*OpeningPlan, error) {
	if req.SupplierId <= 0 {
		return nil, invalid("supplier_id", "supplier is required")
	}
	if s.Partner(req.SupplierId) == nil {
		return nil, notFound("supplier", req.SupplierId)
	}
	if s.OriginalType(req.OriginalTypeId) == nil {
		return nil, notFound("original_type", req.OriginalTypeId)
	}
	if !req.Qty.IsPositive() {
		return nil, invalid("qty", "quantity must be greater than 0")
	}
	if req.BatchNumber != nil && strings.TrimSpace(*req.BatchNumber) == "" {
		req.BatchNumber = nil
	}

	pos := Aggregate(s, StockKey{SupplierId: req.SupplierId, OriginalTypeId: req.OriginalTypeId, BatchNumber: req.BatchNumber})
	avail := pos.Available

	var weight decimal.Decimal
	if avail.Qty.IsPositive() {
		weight = avail.Weight.Div(avail.Qty).Mul(req.Qty)
	}
	if weight.IsZero() {
		weight = req.Qty
	}
	return &OpeningPlan{
		Position:             pos,
		RequiresConfirmation: req.Qty.GreaterThan(avail.Qty) && avail.Qty.IsPositive(),
		Qty:                  req.Qty,
		Weight:               weight,
		CostPerKg:            pos.AvgCostPerKg,
		TotalValue:           weight.Mul(pos.AvgCostPerKg),
	}, nil
}

// PostOpening saves the planned opening. Requests above the available quantity
// return a ConfirmationRequiredError until repeated with Confirmed set.
func PostOpening(ctx context.Context, s *models.Snapshot, dc DataContext, req OpeningRequest) (*models.OriginalOpening, error) {
	plan, err := PlanOpening(s, req)
	if err != nil {
		return nil, err
	}
	if plan.RequiresConfirmation {
		msg := fmt.Sprintf("requested %s exceeds available %s", req.Qty.String(), plan.Position.Available.Qty.String())
		if req.Strict {
			return nil, &ValidationError{Field: "qty", Message: msg, Err: ErrInsufficientStock}
		}
		if !req.Confirmed {
			return nil, &ConfirmationRequiredError{Message: msg, Plan: plan}
		}
	}
	opening := models.OriginalOpening{
		SupplierId:     req.SupplierId,
		OriginalTypeId: req.OriginalTypeId,
		BatchNumber:    plan.Position.Key.BatchNumber,
		OpeningDate:    req.OpeningDate,
		Qty:            plan.Qty,
		Weight:         plan.Weight,
		CostPerKg:      plan.CostPerKg,
		TotalValue:     plan.TotalValue,
	}
	if err := dc.AddOriginalOpening(ctx, &opening); err != nil {
		return nil, err
	}
	return &opening, nil
}

// DeleteOpening removes an opening; the ledger posting is reversed by the data context.
func DeleteOpening(ctx context.Context, dc DataContext, id int) error {
	if id <= 0 {
		return invalid("id", "opening id is required")
	}
	return dc.DeleteOriginalOpening(ctx, id)
}
