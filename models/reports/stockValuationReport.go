package reports

import (
	"context"
	"time"

	"github.com/mmdatafocus/factory_backend/inventory"
	"github.com/mmdatafocus/factory_backend/models"
	"github.com/shopspring/decimal"
)

type StockValuationRow struct {
	SupplierId       int             `json:"supplier_id"`
	SupplierName     string          `json:"supplier_name"`
	OriginalTypeId   int             `json:"original_type_id"`
	OriginalTypeName string          `json:"original_type_name"`
	BatchNumber      *string         `json:"batch_number"`
	PurchasedQty     decimal.Decimal `json:"purchased_qty"`
	PurchasedWeight  decimal.Decimal `json:"purchased_weight"`
	PurchasedCost    decimal.Decimal `json:"purchased_cost"`
	OpenedQty        decimal.Decimal `json:"opened_qty"`
	OpenedWeight     decimal.Decimal `json:"opened_weight"`
	OpenedCost       decimal.Decimal `json:"opened_cost"`
	AvailableQty     decimal.Decimal `json:"available_qty"`
	AvailableWeight  decimal.Decimal `json:"available_weight"`
	AvgCostPerKg     decimal.Decimal `json:"avg_cost_per_kg"`
	AvailableValue   decimal.Decimal `json:"available_value"`
}

type StockValuationReport struct {
	GeneratedAt     time.Time            `json:"generated_at"`
	ByBatch         bool                 `json:"by_batch"`
	Rows            []*StockValuationRow `json:"rows"`
	TotalWeight     decimal.Decimal      `json:"total_weight"`
	TotalValue      decimal.Decimal      `json:"total_value"`
	AvgCostPerKg    decimal.Decimal      `json:"avg_cost_per_kg"`
	OverOpenedCount int                  `json:"over_opened_count"`
}

var StockValuationHeadings = []string{
	"Supplier", "Material Type", "Batch",
	"Purchased Qty", "Purchased Kg", "Purchased Cost (USD)",
	"Opened Qty", "Opened Kg", "Opened Cost (USD)",
	"Available Qty", "Available Kg", "Avg Cost/Kg (USD)", "Available Value (USD)",
}

func (r StockValuationRow) GetCellValues() []interface{} {
	batch := ""
	if r.BatchNumber != nil {
		batch = *r.BatchNumber
	}
	return []interface{}{
		r.SupplierName, r.OriginalTypeName, batch,
		r.PurchasedQty, r.PurchasedWeight, r.PurchasedCost,
		r.OpenedQty, r.OpenedWeight, r.OpenedCost,
		r.AvailableQty, r.AvailableWeight, r.AvgCostPerKg, r.AvailableValue,
	}
}

func (r *StockValuationReport) ExcelRows() []ExcelExporter {
	rows := make([]ExcelExporter, 0, len(r.Rows))
	for _, row := range r.Rows {
		rows = append(rows, *row)
	}
	return rows
}

// BuildStockValuationReport values raw material stock per supplier and type, or per
// batch when byBatch is set. supplierId 0 covers every supplier.
// Positions opened beyond what was purchased are kept and counted in OverOpenedCount.
func BuildStockValuationReport(s *models.Snapshot, byBatch bool, supplierId int) *StockValuationReport {
	idx := inventory.BuildStockIndex(s)
	positions := idx.Types()
	if byBatch {
		positions = idx.Batches()
	}
	report := &StockValuationReport{
		GeneratedAt: time.Now().UTC(),
		ByBatch:     byBatch,
		Rows:        []*StockValuationRow{},
	}
	for _, pos := range positions {
		if supplierId > 0 && pos.Key.SupplierId != supplierId {
			continue
		}
		row := &StockValuationRow{
			SupplierId:      pos.Key.SupplierId,
			OriginalTypeId:  pos.Key.OriginalTypeId,
			BatchNumber:     pos.Key.BatchNumber,
			PurchasedQty:    pos.Purchased.Qty,
			PurchasedWeight: pos.Purchased.Weight,
			PurchasedCost:   pos.Purchased.Cost,
			OpenedQty:       pos.Opened.Qty,
			OpenedWeight:    pos.Opened.Weight,
			OpenedCost:      pos.Opened.Cost,
			AvailableQty:    pos.Available.Qty,
			AvailableWeight: pos.Available.Weight,
			AvgCostPerKg:    pos.AvgCostPerKg,
			AvailableValue:  pos.Available.Cost,
		}
		if p := s.Partner(pos.Key.SupplierId); p != nil {
			row.SupplierName = p.Name
		}
		if t := s.OriginalType(pos.Key.OriginalTypeId); t != nil {
			row.OriginalTypeName = t.Name
		}
		if pos.Available.Weight.IsNegative() {
			report.OverOpenedCount++
		}
		report.TotalWeight = report.TotalWeight.Add(row.AvailableWeight)
		report.TotalValue = report.TotalValue.Add(row.AvailableValue)
		report.Rows = append(report.Rows, row)
	}
	if !report.TotalWeight.IsZero() {
		report.AvgCostPerKg = report.TotalValue.Div(report.TotalWeight)
	}
	return report
}

func GetStockValuationReport(ctx context.Context, byBatch bool, supplierId int) (*StockValuationReport, error) {
	snapshot, err := models.LoadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return BuildStockValuationReport(snapshot, byBatch, supplierId), nil
}
