package inventory

import (
	"context"
	"time"

	"github.com/mmdatafocus/factory_backend/models"
	"github.com/shopspring/decimal"
)

type ProductionLine struct {
	ProductionDate time.Time       `json:"production_date"`
	ItemId         int             `json:"item_id"`
	Qty            decimal.Decimal `json:"qty"`
}

type RebalingOutput struct {
	ItemId int             `json:"item_id"`
	Qty    decimal.Decimal `json:"qty"`
}

// RebalingRequest converts Qty of ConsumeItemId into the outputs.
type RebalingRequest struct {
	ProductionDate time.Time        `json:"production_date"`
	ConsumeItemId  int              `json:"consume_item_id"`
	ConsumeQty     decimal.Decimal  `json:"consume_qty"`
	Outputs        []RebalingOutput `json:"outputs"`
}

type RebalingSummary struct {
	TransactionId  string          `json:"transaction_id"`
	ConsumedWeight decimal.Decimal `json:"consumed_weight"`
	ProducedWeight decimal.Decimal `json:"produced_weight"`
	// Loss is negative when the outputs weigh more than the input.
	Loss decimal.Decimal `json:"loss"`
}

// ProductionSession stages production and re-baling entries until they are saved
// together. Serials continue across lines of the same item.
type ProductionSession struct {
	Entries   []models.ProductionEntry `json:"entries"`
	Rebalings []RebalingSummary        `json:"rebalings"`
	Serials   SerialAllocator          `json:"serials"`
}

func NewProductionSession() *ProductionSession {
	return &ProductionSession{Serials: *NewSerialAllocator()}
}

// outputEntry builds a positive entry with serials for unit items.
func (ps *ProductionSession) outputEntry(item models.Item, qty decimal.Decimal, date time.Time, entryType models.ProductionEntryType) (models.ProductionEntry, error) {
	if !qty.IsPositive() {
		return models.ProductionEntry{}, invalid("qty", "quantity must be greater than 0")
	}
	entry := models.ProductionEntry{
		ProductionDate: date,
		ItemId:         item.ID,
		PackingType:    item.PackingType,
		QtyProduced:    qty,
		WeightProduced: item.KgFor(qty),
		EntryType:      entryType,
	}
	if !item.IsKg() {
		if !qty.IsInteger() {
			return models.ProductionEntry{}, invalidf("qty", "%s is counted in whole units", item.Name)
		}
		start, end := ps.Serials.Allocate(item, qty.IntPart())
		entry.SerialStart, entry.SerialEnd = &start, &end
	}
	return entry, nil
}

func (ps *ProductionSession) AddProduction(s *models.Snapshot, line ProductionLine) (*models.ProductionEntry, error) {
	item := s.Item(line.ItemId)
	if item == nil {
		return nil, notFound("item", line.ItemId)
	}
	entry, err := ps.outputEntry(*item, line.Qty, line.ProductionDate, models.ProductionEntryTypeProduction)
	if err != nil {
		return nil, err
	}
	ps.Entries = append(ps.Entries, entry)
	return &ps.Entries[len(ps.Entries)-1], nil
}

// AddRebaling stages a consumption entry with negated quantity and no serials,
// plus one output entry per produced item, all sharing a transaction id.
func (ps *ProductionSession) AddRebaling(ids IdIssuer, s *models.Snapshot, req RebalingRequest) (*RebalingSummary, error) {
	consumed := s.Item(req.ConsumeItemId)
	if consumed == nil {
		return nil, notFound("item", req.ConsumeItemId)
	}
	if !req.ConsumeQty.IsPositive() {
		return nil, invalid("consume_qty", "quantity must be greater than 0")
	}
	if len(req.Outputs) == 0 {
		return nil, invalid("outputs", "at least one output is required")
	}
	for _, out := range req.Outputs {
		if s.Item(out.ItemId) == nil {
			return nil, notFound("item", out.ItemId)
		}
		if !out.Qty.IsPositive() {
			return nil, invalid("outputs", "output quantity must be greater than 0")
		}
	}

	txId := ids.NewId()
	consumedKg := consumed.KgFor(req.ConsumeQty)
	entries := []models.ProductionEntry{{
		ProductionDate: req.ProductionDate,
		ItemId:         consumed.ID,
		PackingType:    consumed.PackingType,
		QtyProduced:    req.ConsumeQty.Neg(),
		WeightProduced: consumedKg.Neg(),
		TransactionId:  &txId,
		EntryType:      models.ProductionEntryTypeRebalingConsumption,
	}}

	// serials are only taken once every output is valid
	saved := make(map[int]int64, len(ps.Serials.Next))
	for k, v := range ps.Serials.Next {
		saved[k] = v
	}
	var producedKg decimal.Decimal
	for _, out := range req.Outputs {
		entry, err := ps.outputEntry(*s.Item(out.ItemId), out.Qty, req.ProductionDate, models.ProductionEntryTypeRebalingOutput)
		if err != nil {
			ps.Serials.Next = saved
			return nil, err
		}
		entry.TransactionId = &txId
		producedKg = producedKg.Add(entry.WeightProduced)
		entries = append(entries, entry)
	}

	summary := RebalingSummary{
		TransactionId:  txId,
		ConsumedWeight: consumedKg,
		ProducedWeight: producedKg,
		Loss:           consumedKg.Sub(producedKg),
	}
	ps.Entries = append(ps.Entries, entries...)
	ps.Rebalings = append(ps.Rebalings, summary)
	return &summary, nil
}

// Finalize saves every staged entry and clears the session on success.
func (ps *ProductionSession) Finalize(ctx context.Context, dc DataContext) ([]models.ProductionEntry, error) {
	if len(ps.Entries) == 0 {
		return nil, invalid("entries", "nothing to save")
	}
	entries := make([]models.ProductionEntry, len(ps.Entries))
	copy(entries, ps.Entries)
	if err := dc.AddProduction(ctx, entries); err != nil {
		return nil, err
	}
	ps.Cancel()
	return entries, nil
}

func (ps *ProductionSession) Cancel() {
	ps.Entries = nil
	ps.Rebalings = nil
	ps.Serials.Reset()
}
