package reports

import (
	"context"
	"sort"
	"time"

	"github.com/mmdatafocus/factory_backend/inventory"
	"github.com/mmdatafocus/factory_backend/models"
	"github.com/shopspring/decimal"
)

type DirectSaleBatchRow struct {
	inventory.SellableBatch
	SupplierName   string          `json:"supplier_name"`
	RemainingValue decimal.Decimal `json:"remaining_value"`
}

type DirectSaleBatchReport struct {
	GeneratedAt    time.Time             `json:"generated_at"`
	Rows           []*DirectSaleBatchRow `json:"rows"`
	TotalRemaining decimal.Decimal       `json:"total_remaining"`
	TotalValue     decimal.Decimal       `json:"total_value"`
}

var DirectSaleBatchHeadings = []string{
	"Batch", "Supplier", "Purchase Date",
	"Purchased Kg", "Opened Kg", "Sold Kg", "Remaining Kg",
	"Landed Cost/Kg (USD)", "Remaining Value (USD)",
}

func (r DirectSaleBatchRow) GetCellValues() []interface{} {
	return []interface{}{
		r.BatchNumber, r.SupplierName, r.PurchaseDate.Format("2006-01-02"),
		r.PurchasedWeight, r.OpenedWeight, r.SoldWeight, r.Remaining,
		r.LandedCostPerKg, r.RemainingValue,
	}
}

func (r *DirectSaleBatchReport) ExcelRows() []ExcelExporter {
	rows := make([]ExcelExporter, 0, len(r.Rows))
	for _, row := range r.Rows {
		rows = append(rows, *row)
	}
	return rows
}

// BuildDirectSaleBatchReport lists batch balances, oldest first. Exhausted batches
// are included only when includeExhausted is set.
func BuildDirectSaleBatchReport(s *models.Snapshot, supplierId int, includeExhausted bool) *DirectSaleBatchReport {
	var batches []inventory.SellableBatch
	if includeExhausted {
		for _, p := range s.Purchases {
			if supplierId > 0 && p.SupplierId != supplierId {
				continue
			}
			batches = append(batches, inventory.BatchBalance(s, p))
		}
		sort.SliceStable(batches, func(i, j int) bool {
			if !batches[i].PurchaseDate.Equal(batches[j].PurchaseDate) {
				return batches[i].PurchaseDate.Before(batches[j].PurchaseDate)
			}
			return batches[i].PurchaseId < batches[j].PurchaseId
		})
	} else {
		batches = inventory.SellableBatches(s, supplierId)
	}

	report := &DirectSaleBatchReport{
		GeneratedAt: time.Now().UTC(),
		Rows:        []*DirectSaleBatchRow{},
	}
	for _, b := range batches {
		row := &DirectSaleBatchRow{
			SellableBatch:  b,
			RemainingValue: b.Remaining.Mul(b.LandedCostPerKg),
		}
		if p := s.Partner(b.SupplierId); p != nil {
			row.SupplierName = p.Name
		}
		report.TotalRemaining = report.TotalRemaining.Add(b.Remaining)
		report.TotalValue = report.TotalValue.Add(row.RemainingValue)
		report.Rows = append(report.Rows, row)
	}
	return report
}

func GetDirectSaleBatchReport(ctx context.Context, supplierId int, includeExhausted bool) (*DirectSaleBatchReport, error) {
	snapshot, err := models.LoadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return BuildDirectSaleBatchReport(snapshot, supplierId, includeExhausted), nil
}
