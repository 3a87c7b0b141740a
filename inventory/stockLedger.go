package inventory

import (
	"sort"

	"github.com/mmdatafocus/factory_backend/models"
	"github.com/shopspring/decimal"
)

// StockKey selects raw material stock. A nil BatchNumber covers every batch of
// the supplier and type, including openings posted without a batch.
type StockKey struct {
	SupplierId     int     `json:"supplier_id"`
	OriginalTypeId int     `json:"original_type_id"`
	BatchNumber    *string `json:"batch_number"`
}

// StockTotals holds quantity, weight in kg and USD value.
type StockTotals struct {
	Qty    decimal.Decimal `json:"qty"`
	Weight decimal.Decimal `json:"weight"`
	Cost   decimal.Decimal `json:"cost"`
}

func (t StockTotals) add(qty, weight, cost decimal.Decimal) StockTotals {
	return StockTotals{
		Qty:    t.Qty.Add(qty),
		Weight: t.Weight.Add(weight),
		Cost:   t.Cost.Add(cost),
	}
}

type StockPosition struct {
	Key          StockKey        `json:"key"`
	Purchased    StockTotals     `json:"purchased"`
	Opened       StockTotals     `json:"opened"`
	Available    StockTotals     `json:"available"`
	AvgCostPerKg decimal.Decimal `json:"avg_cost_per_kg"`
}

// IsKgOnly reports stock recorded by weight alone, where a quantity has no meaning.
func (p StockPosition) IsKgOnly() bool {
	return p.Available.Qty.IsZero() && p.Available.Weight.IsPositive()
}

func (p *StockPosition) settle() {
	p.Available = StockTotals{
		Qty:    p.Purchased.Qty.Sub(p.Opened.Qty),
		Weight: p.Purchased.Weight.Sub(p.Opened.Weight),
	}
	p.AvgCostPerKg = safeDiv(p.Purchased.Cost, p.Purchased.Weight)
	p.Available.Cost = p.Available.Weight.Mul(p.AvgCostPerKg)
}

func safeDiv(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.Div(b)
}

// purchaseLineCosts returns the landed USD cost of each material line: its own
// material cost plus the purchase's additional costs shared by weight.
func purchaseLineCosts(p models.Purchase) ([]models.PurchaseOriginalItem, []decimal.Decimal) {
	lines := p.EffectiveLines()
	costs := make([]decimal.Decimal, len(lines))
	var totalWeight decimal.Decimal
	for _, l := range lines {
		totalWeight = totalWeight.Add(l.Weight)
	}
	for i, l := range lines {
		var share decimal.Decimal
		switch {
		case totalWeight.IsPositive():
			share = p.AdditionalCostUSD.Mul(l.Weight).Div(totalWeight)
		case len(lines) > 0:
			share = p.AdditionalCostUSD.Div(decimal.NewFromInt(int64(len(lines))))
		}
		costs[i] = l.TotalCostUSD.Add(share)
	}
	return lines, costs
}

func batchMatches(key *string, batch string) bool {
	return key == nil || *key == batch
}

func openingMatches(key *string, batch *string) bool {
	if key == nil {
		return true
	}
	return batch != nil && *batch == *key
}

// Aggregate scans the snapshot for one key.
func Aggregate(s *models.Snapshot, key StockKey) StockPosition {
	pos := StockPosition{Key: key}
	for _, p := range s.Purchases {
		if p.SupplierId != key.SupplierId || !batchMatches(key.BatchNumber, p.BatchNumber) {
			continue
		}
		lines, costs := purchaseLineCosts(p)
		for i, l := range lines {
			if l.OriginalTypeId != key.OriginalTypeId {
				continue
			}
			pos.Purchased = pos.Purchased.add(l.Qty, l.Weight, costs[i])
		}
	}
	for _, o := range s.OriginalOpenings {
		if o.SupplierId != key.SupplierId || o.OriginalTypeId != key.OriginalTypeId || !openingMatches(key.BatchNumber, o.BatchNumber) {
			continue
		}
		pos.Opened = pos.Opened.add(o.Qty, o.Weight, o.TotalValue)
	}
	pos.settle()
	return pos
}

type indexKey struct {
	supplierId     int
	originalTypeId int
	batch          string
	hasBatch       bool
}

// StockIndex holds every position of a snapshot, built in one pass.
type StockIndex struct {
	batches map[indexKey]*StockPosition
	types   map[indexKey]*StockPosition
}

func BuildStockIndex(s *models.Snapshot) *StockIndex {
	idx := &StockIndex{
		batches: make(map[indexKey]*StockPosition),
		types:   make(map[indexKey]*StockPosition),
	}
	get := func(m map[indexKey]*StockPosition, k indexKey) *StockPosition {
		pos, ok := m[k]
		if !ok {
			pos = &StockPosition{Key: StockKey{SupplierId: k.supplierId, OriginalTypeId: k.originalTypeId}}
			if k.hasBatch {
				batch := k.batch
				pos.Key.BatchNumber = &batch
			}
			m[k] = pos
		}
		return pos
	}
	for _, p := range s.Purchases {
		lines, costs := purchaseLineCosts(p)
		for i, l := range lines {
			bk := indexKey{p.SupplierId, l.OriginalTypeId, p.BatchNumber, true}
			tk := indexKey{supplierId: p.SupplierId, originalTypeId: l.OriginalTypeId}
			b, t := get(idx.batches, bk), get(idx.types, tk)
			b.Purchased = b.Purchased.add(l.Qty, l.Weight, costs[i])
			t.Purchased = t.Purchased.add(l.Qty, l.Weight, costs[i])
		}
	}
	for _, o := range s.OriginalOpenings {
		tk := indexKey{supplierId: o.SupplierId, originalTypeId: o.OriginalTypeId}
		t := get(idx.types, tk)
		t.Opened = t.Opened.add(o.Qty, o.Weight, o.TotalValue)
		if o.BatchNumber != nil {
			b := get(idx.batches, indexKey{o.SupplierId, o.OriginalTypeId, *o.BatchNumber, true})
			b.Opened = b.Opened.add(o.Qty, o.Weight, o.TotalValue)
		}
	}
	for _, pos := range idx.batches {
		pos.settle()
	}
	for _, pos := range idx.types {
		pos.settle()
	}
	return idx
}

// Position returns the indexed position for key, zero when nothing matches.
func (idx *StockIndex) Position(key StockKey) StockPosition {
	k := indexKey{supplierId: key.SupplierId, originalTypeId: key.OriginalTypeId}
	m := idx.types
	if key.BatchNumber != nil {
		k.batch, k.hasBatch = *key.BatchNumber, true
		m = idx.batches
	}
	if pos, ok := m[k]; ok {
		return *pos
	}
	return StockPosition{Key: key}
}

// Batches lists positions per supplier, type and batch.
func (idx *StockIndex) Batches() []StockPosition {
	return sortedPositions(idx.batches)
}

// Types lists positions per supplier and type across all batches.
func (idx *StockIndex) Types() []StockPosition {
	return sortedPositions(idx.types)
}

func sortedPositions(m map[indexKey]*StockPosition) []StockPosition {
	result := make([]StockPosition, 0, len(m))
	for _, pos := range m {
		result = append(result, *pos)
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i].Key, result[j].Key
		if a.SupplierId != b.SupplierId {
			return a.SupplierId < b.SupplierId
		}
		if a.OriginalTypeId != b.OriginalTypeId {
			return a.OriginalTypeId < b.OriginalTypeId
		}
		return batchOf(a) < batchOf(b)
	})
	return result
}

func batchOf(k StockKey) string {
	if k.BatchNumber == nil {
		return ""
	}
	return *k.BatchNumber
}
