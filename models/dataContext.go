package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mmdatafocus/factory_backend/config"
	"github.com/mmdatafocus/factory_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNothingToShip      = errors.New("nothing to ship")
	ErrOverShipment       = errors.New("shipment quantity exceeds the remaining order quantity")
	ErrOrderCompleted     = errors.New("order is already completed")
	ErrUnknownCollection  = errors.New("unknown collection")
	ErrEntityInUse        = errors.New("record is referenced by other records")
	ErrOrderHasShipments  = errors.New("orders with shipments cannot be deleted")
	ErrPostedNotDeletable = errors.New("posted invoices cannot be deleted")
)

// GormDataContext persists engine output in MySQL. Every write runs in one
// transaction together with its ledger outbox record.
type GormDataContext struct{}

func NewGormDataContext() *GormDataContext { return &GormDataContext{} }

func (GormDataContext) AddPurchase(ctx context.Context, purchase *Purchase) error {
	businessId, err := businessIdFromContext(ctx)
	if err != nil {
		return err
	}
	purchase.BusinessId = businessId
	purchase.SequenceNo = BatchSequence(purchase.BatchNumber)

	return config.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if purchase.ContainerNumber != nil {
			inUse, err := containerNumberInUse(tx, businessId, *purchase.ContainerNumber)
			if err != nil {
				return err
			}
			if inUse {
				return ErrContainerNumberInUse
			}
		}
		if err := tx.Create(purchase).Error; err != nil {
			return err
		}
		return PublishToLedger(ctx, tx, businessId, purchase.PurchaseDate, purchase.ID, LedgerReferenceTypePurchase, purchase, nil, LedgerActionCreate)
	})
}

// AddBundlePurchase also puts the bought units on the items' stock.
func (GormDataContext) AddBundlePurchase(ctx context.Context, bundle *BundlePurchase) error {
	businessId, err := businessIdFromContext(ctx)
	if err != nil {
		return err
	}
	bundle.BusinessId = businessId

	return config.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if bundle.ContainerNumber != nil {
			inUse, err := containerNumberInUse(tx, businessId, *bundle.ContainerNumber)
			if err != nil {
				return err
			}
			if inUse {
				return ErrContainerNumberInUse
			}
		}
		if err := tx.Create(bundle).Error; err != nil {
			return err
		}
		for _, line := range bundle.Items {
			if err := adjustItemStock(tx, businessId, line.ItemId, line.Qty); err != nil {
				return err
			}
		}
		return PublishToLedger(ctx, tx, businessId, bundle.PurchaseDate, bundle.ID, LedgerReferenceTypeBundlePurchase, bundle, nil, LedgerActionCreate)
	})
}

func (GormDataContext) AddOriginalOpening(ctx context.Context, opening *OriginalOpening) error {
	businessId, err := businessIdFromContext(ctx)
	if err != nil {
		return err
	}
	opening.BusinessId = businessId

	return config.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(opening).Error; err != nil {
			return err
		}
		return PublishToLedger(ctx, tx, businessId, opening.OpeningDate, opening.ID, LedgerReferenceTypeOriginalOpening, opening, nil, LedgerActionCreate)
	})
}

// DeleteOriginalOpening removes the opening and queues the reversal of its journal.
func (GormDataContext) DeleteOriginalOpening(ctx context.Context, id int) error {
	businessId, err := businessIdFromContext(ctx)
	if err != nil {
		return err
	}
	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	defer rollbackOnPanic(tx)

	var opening OriginalOpening
	if err := tx.Where("business_id = ?", businessId).First(&opening, id).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorRecordNotFound
		}
		return err
	}
	if err := tx.Delete(&opening).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := PublishToLedger(ctx, tx, businessId, opening.OpeningDate, opening.ID, LedgerReferenceTypeOriginalOpening, nil, opening, LedgerActionDelete); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

// AddProduction stores the entries, moves item stock by QtyProduced and advances
// NextSerial past the highest serial issued for each item.
func (GormDataContext) AddProduction(ctx context.Context, entries []ProductionEntry) error {
	if len(entries) == 0 {
		return nil
	}
	businessId, err := businessIdFromContext(ctx)
	if err != nil {
		return err
	}
	for i := range entries {
		entries[i].BusinessId = businessId
	}

	return config.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&entries).Error; err != nil {
			return err
		}
		stock := make(map[int]decimal.Decimal)
		nextSerial := make(map[int]int64)
		var itemIds []int
		for _, e := range entries {
			if _, ok := stock[e.ItemId]; !ok {
				itemIds = append(itemIds, e.ItemId)
			}
			stock[e.ItemId] = stock[e.ItemId].Add(e.QtyProduced)
			if e.SerialEnd != nil && *e.SerialEnd+1 > nextSerial[e.ItemId] {
				nextSerial[e.ItemId] = *e.SerialEnd + 1
			}
		}
		for _, itemId := range itemIds {
			var item Item
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("business_id = ?", businessId).First(&item, itemId).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("item %d: %w", itemId, utils.ErrorRecordNotFound)
				}
				return err
			}
			updates := map[string]interface{}{
				"StockQty": item.StockQty.Add(stock[itemId]),
			}
			if next, ok := nextSerial[itemId]; ok && (item.NextSerial == nil || next > *item.NextSerial) {
				updates["NextSerial"] = next
			}
			if err := tx.Model(&item).Updates(updates).Error; err != nil {
				return err
			}
		}
		first := entries[0]
		return PublishToLedger(ctx, tx, businessId, first.ProductionDate, first.ID, LedgerReferenceTypeProduction, entries, nil, LedgerActionCreate)
	})
}

// AddSalesInvoice numbers the invoice from the business sequence and stores it Unposted.
func (GormDataContext) AddSalesInvoice(ctx context.Context, invoice *SalesInvoice) error {
	businessId, err := businessIdFromContext(ctx)
	if err != nil {
		return err
	}
	seqNo, err := utils.GetSequence[SalesInvoice](ctx, businessId)
	if err != nil {
		return err
	}
	invoice.BusinessId = businessId
	invoice.SequenceNo = seqNo
	invoice.InvoiceNumber = FormatSalesInvoiceNumber(seqNo)
	invoice.Status = SalesInvoiceStatusUnposted
	invoice.IsDirectSale = false

	return config.GetDB().WithContext(ctx).Create(invoice).Error
}

// UpdateSalesInvoice replaces header, lines and costs of an Unposted invoice.
func (GormDataContext) UpdateSalesInvoice(ctx context.Context, invoice *SalesInvoice) error {
	businessId, err := businessIdFromContext(ctx)
	if err != nil {
		return err
	}
	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	defer rollbackOnPanic(tx)

	var existing SalesInvoice
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("business_id = ?", businessId).First(&existing, invoice.ID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorRecordNotFound
		}
		return err
	}
	if existing.Status == SalesInvoiceStatusPosted {
		tx.Rollback()
		return ErrInvoicePosted
	}
	if err := tx.Where("sales_invoice_id = ?", existing.ID).Delete(&SalesInvoiceItem{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Where("sales_invoice_id = ?", existing.ID).Delete(&InvoiceAdditionalCost{}).Error; err != nil {
		tx.Rollback()
		return err
	}

	invoice.BusinessId = businessId
	invoice.InvoiceNumber = existing.InvoiceNumber
	invoice.SequenceNo = existing.SequenceNo
	invoice.Status = existing.Status
	invoice.IsDirectSale = existing.IsDirectSale
	invoice.OngoingOrderId = existing.OngoingOrderId
	invoice.CreatedAt = existing.CreatedAt
	for i := range invoice.Items {
		invoice.Items[i].ID = 0
		invoice.Items[i].SalesInvoiceId = existing.ID
	}
	for i := range invoice.AdditionalCosts {
		invoice.AdditionalCosts[i].ID = 0
		invoice.AdditionalCosts[i].SalesInvoiceId = existing.ID
	}
	if err := tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(invoice).Error; err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

// AddDirectSale stores an already Posted invoice and hands the cost of the sold
// weight to the ledger together with the sale.
func (GormDataContext) AddDirectSale(ctx context.Context, invoice *SalesInvoice, landedCostPerKg decimal.Decimal) error {
	businessId, err := businessIdFromContext(ctx)
	if err != nil {
		return err
	}
	invoice.BusinessId = businessId
	invoice.Status = SalesInvoiceStatusPosted
	invoice.IsDirectSale = true
	invoice.CostPerKg = landedCostPerKg

	return config.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var clash int64
		if err := tx.Model(&SalesInvoice{}).
			Where("business_id = ? AND invoice_number = ?", businessId, invoice.InvoiceNumber).
			Count(&clash).Error; err != nil {
			return err
		}
		if clash > 0 {
			return ErrInvoiceNumberInUse
		}
		if err := tx.Create(invoice).Error; err != nil {
			return err
		}
		return PublishToLedger(ctx, tx, businessId, invoice.InvoiceDate, invoice.ID, LedgerReferenceTypeDirectSale, invoice, nil, LedgerActionCreate)
	})
}

func (GormDataContext) AddOngoingOrder(ctx context.Context, order *OngoingOrder) error {
	businessId, err := businessIdFromContext(ctx)
	if err != nil {
		return err
	}
	seqNo, err := utils.GetSequence[OngoingOrder](ctx, businessId)
	if err != nil {
		return err
	}
	order.BusinessId = businessId
	order.SequenceNo = seqNo
	order.OrderNumber = FormatOngoingOrderNumber(seqNo)
	for i := range order.Items {
		order.Items[i].ShippedQuantity = decimal.Zero
	}
	order.RecomputeStatus()

	return config.GetDB().WithContext(ctx).Create(order).Error
}

// ProcessOrderShipment increments shipped quantities, recomputes the order status
// and creates the Unposted invoice for the shipment, all in one transaction.
func (GormDataContext) ProcessOrderShipment(ctx context.Context, orderId int, items []ShipmentItem) error {
	businessId, err := businessIdFromContext(ctx)
	if err != nil {
		return err
	}
	var shipped []ShipmentItem
	for _, s := range items {
		if s.Qty.IsPositive() {
			shipped = append(shipped, s)
		}
	}
	if len(shipped) == 0 {
		return ErrNothingToShip
	}
	seqNo, err := utils.GetSequence[SalesInvoice](ctx, businessId)
	if err != nil {
		return err
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	defer rollbackOnPanic(tx)

	var order OngoingOrder
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("business_id = ?", businessId).
		Preload("Items").First(&order, orderId).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorRecordNotFound
		}
		return err
	}
	if order.Status == OngoingOrderStatusCompleted {
		tx.Rollback()
		return ErrOrderCompleted
	}
	if err := checkShipmentAgainstOrder(order, shipped); err != nil {
		tx.Rollback()
		return err
	}

	order.ApplyShipment(shipped)
	for _, line := range order.Items {
		if err := tx.Model(&OngoingOrderItem{}).Where("id = ?", line.ID).
			Update("shipped_quantity", line.ShippedQuantity).Error; err != nil {
			tx.Rollback()
			return err
		}
	}
	if err := tx.Model(&order).Update("status", order.Status).Error; err != nil {
		tx.Rollback()
		return err
	}

	var itemIds []int
	for _, s := range shipped {
		itemIds = append(itemIds, s.ItemId)
	}
	var masters []Item
	if err := tx.Where("business_id = ? AND id IN ?", businessId, utils.UniqueSlice(itemIds)).Find(&masters).Error; err != nil {
		tx.Rollback()
		return err
	}
	lookup := func(id int) *Item {
		for i := range masters {
			if masters[i].ID == id {
				return &masters[i]
			}
		}
		return nil
	}

	invoice := NewShipmentInvoice(order, shipped, lookup, time.Now().UTC())
	invoice.BusinessId = businessId
	invoice.SequenceNo = seqNo
	invoice.InvoiceNumber = FormatSalesInvoiceNumber(seqNo)
	var customer Partner
	if err := tx.Where("business_id = ?", businessId).First(&customer, order.CustomerId).Error; err == nil && customer.CurrencyCode != "" {
		invoice.CurrencyCode = customer.CurrencyCode
		var currency Currency
		if err := tx.Where("business_id = ? AND code = ?", businessId, customer.CurrencyCode).First(&currency).Error; err == nil && currency.ExchangeRate.IsPositive() {
			invoice.ExchangeRate = currency.ExchangeRate
		}
	}
	if err := tx.Create(&invoice).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := PublishToLedger(ctx, tx, businessId, invoice.InvoiceDate, order.ID, LedgerReferenceTypeShipment, invoice, nil, LedgerActionCreate); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

// checkShipmentAgainstOrder rejects lines not on the order and quantities above what remains.
func checkShipmentAgainstOrder(order OngoingOrder, items []ShipmentItem) error {
	requested := make(map[int]decimal.Decimal)
	for _, s := range items {
		requested[s.ItemId] = requested[s.ItemId].Add(s.Qty)
	}
	for itemId, qty := range requested {
		var line *OngoingOrderItem
		for i := range order.Items {
			if order.Items[i].ItemId == itemId {
				line = &order.Items[i]
				break
			}
		}
		if line == nil {
			return fmt.Errorf("item %d is not on order %s: %w", itemId, order.OrderNumber, utils.ErrorRecordNotFound)
		}
		if qty.GreaterThan(line.RemainingQuantity()) {
			return ErrOverShipment
		}
	}
	return nil
}

func adjustItemStock(tx *gorm.DB, businessId string, itemId int, delta decimal.Decimal) error {
	res := tx.Model(&Item{}).
		Where("business_id = ? AND id = ?", businessId, itemId).
		Update("stock_qty", gorm.Expr("stock_qty + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("item %d: %w", itemId, utils.ErrorRecordNotFound)
	}
	return nil
}

// DeleteEntity deletes a record by collection name. Documents that already
// reached the ledger queue a delete message for reversal.
func (dc GormDataContext) DeleteEntity(ctx context.Context, collection string, id int) error {
	businessId, err := businessIdFromContext(ctx)
	if err != nil {
		return err
	}
	switch collection {
	case "original_openings":
		return dc.DeleteOriginalOpening(ctx, id)
	case "purchases":
		return deletePurchase(ctx, businessId, id)
	case "bundle_purchases":
		return deleteBundlePurchase(ctx, businessId, id)
	case "production_entries":
		return deleteProductionEntry(ctx, businessId, id)
	case "sales_invoices":
		return deleteSalesInvoice(ctx, businessId, id)
	case "ongoing_orders":
		return deleteOngoingOrder(ctx, businessId, id)
	case "partners":
		return deleteMaster[Partner](ctx, businessId, id, func(tx *gorm.DB) (int64, error) {
			return countWhere(tx, businessId, []interface{}{&Purchase{}, &BundlePurchase{}, &OriginalOpening{}}, "supplier_id = ?", id,
				[]interface{}{&SalesInvoice{}, &OngoingOrder{}}, "customer_id = ?", id)
		})
	case "items":
		return deleteMaster[Item](ctx, businessId, id, func(tx *gorm.DB) (int64, error) {
			return countWhere(tx, businessId, []interface{}{&ProductionEntry{}}, "item_id = ?", id, nil, "", nil)
		})
	case "original_types":
		return deleteMaster[OriginalType](ctx, businessId, id, func(tx *gorm.DB) (int64, error) {
			return countWhere(tx, businessId, []interface{}{&Purchase{}, &OriginalOpening{}, &OriginalProduct{}}, "original_type_id = ?", id, nil, "", nil)
		})
	case "original_products":
		return deleteMaster[OriginalProduct](ctx, businessId, id, func(tx *gorm.DB) (int64, error) {
			return countWhere(tx, businessId, []interface{}{&Purchase{}}, "original_product_id = ?", id, nil, "", nil)
		})
	case "currencies":
		return deleteMaster[Currency](ctx, businessId, id, nil)
	case "divisions":
		return deleteMaster[Division](ctx, businessId, id, func(tx *gorm.DB) (int64, error) {
			return countWhere(tx, businessId, []interface{}{&SubDivision{}, &Purchase{}, &BundlePurchase{}}, "division_id = ?", id, nil, "", nil)
		})
	case "sub_divisions":
		return deleteMaster[SubDivision](ctx, businessId, id, func(tx *gorm.DB) (int64, error) {
			return countWhere(tx, businessId, []interface{}{&Purchase{}, &BundlePurchase{}}, "sub_division_id = ?", id, nil, "", nil)
		})
	case "accounts":
		return deleteMaster[Account](ctx, businessId, id, nil)
	}
	return fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
}

// countWhere sums row counts of the business over two groups of models with their own condition.
func countWhere(tx *gorm.DB, businessId string, first []interface{}, firstCond string, firstArg interface{}, second []interface{}, secondCond string, secondArg interface{}) (int64, error) {
	var total int64
	count := func(models []interface{}, cond string, arg interface{}) error {
		for _, m := range models {
			var n int64
			if err := tx.Model(m).Where("business_id = ?", businessId).Where(cond, arg).Count(&n).Error; err != nil {
				return err
			}
			total += n
		}
		return nil
	}
	if err := count(first, firstCond, firstArg); err != nil {
		return 0, err
	}
	if err := count(second, secondCond, secondArg); err != nil {
		return 0, err
	}
	return total, nil
}

func deleteMaster[T any](ctx context.Context, businessId string, id int, references func(tx *gorm.DB) (int64, error)) error {
	return config.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model T
		if err := tx.Where("business_id = ?", businessId).First(&model, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.ErrorRecordNotFound
			}
			return err
		}
		if references != nil {
			n, err := references(tx)
			if err != nil {
				return err
			}
			if n > 0 {
				return ErrEntityInUse
			}
		}
		return tx.Delete(&model).Error
	})
}

func deletePurchase(ctx context.Context, businessId string, id int) error {
	return config.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var purchase Purchase
		if err := tx.Where("business_id = ?", businessId).
			Preload("Items").Preload("AdditionalCosts").Preload("Documents").
			First(&purchase, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.ErrorRecordNotFound
			}
			return err
		}
		var sold int64
		if err := tx.Model(&SalesInvoiceItem{}).Where("original_purchase_id = ?", id).Count(&sold).Error; err != nil {
			return err
		}
		if sold > 0 {
			return ErrEntityInUse
		}
		// openings of the batch would be left without stock behind them
		var opened int64
		if err := tx.Model(&OriginalOpening{}).
			Where("business_id = ? AND supplier_id = ? AND batch_number = ?", businessId, purchase.SupplierId, purchase.BatchNumber).
			Count(&opened).Error; err != nil {
			return err
		}
		if opened > 0 {
			return ErrEntityInUse
		}
		if err := tx.Where("purchase_id = ?", id).Delete(&PurchaseOriginalItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("reference_type = ? AND reference_id = ?", "purchases", id).Delete(&AdditionalCost{}).Error; err != nil {
			return err
		}
		if err := deleteDocuments(ctx, tx, purchase.Documents); err != nil {
			return err
		}
		if err := tx.Delete(&purchase).Error; err != nil {
			return err
		}
		return PublishToLedger(ctx, tx, businessId, purchase.PurchaseDate, purchase.ID, LedgerReferenceTypePurchase, nil, purchase, LedgerActionDelete)
	})
}

// deleteBundlePurchase takes the bought units back off the items' stock.
func deleteBundlePurchase(ctx context.Context, businessId string, id int) error {
	return config.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var bundle BundlePurchase
		if err := tx.Where("business_id = ?", businessId).
			Preload("Items").Preload("AdditionalCosts").
			First(&bundle, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.ErrorRecordNotFound
			}
			return err
		}
		for _, line := range bundle.Items {
			if err := adjustItemStock(tx, businessId, line.ItemId, line.Qty.Neg()); err != nil {
				return err
			}
		}
		if err := tx.Where("bundle_purchase_id = ?", id).Delete(&BundlePurchaseItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("reference_type = ? AND reference_id = ?", "bundle_purchases", id).Delete(&AdditionalCost{}).Error; err != nil {
			return err
		}
		var documents []*Document
		if err := tx.Where("reference_type = ? AND reference_id = ?", "bundle_purchases", id).Find(&documents).Error; err != nil {
			return err
		}
		if err := deleteDocuments(ctx, tx, documents); err != nil {
			return err
		}
		if err := tx.Delete(&bundle).Error; err != nil {
			return err
		}
		return PublishToLedger(ctx, tx, businessId, bundle.PurchaseDate, bundle.ID, LedgerReferenceTypeBundlePurchase, nil, bundle, LedgerActionDelete)
	})
}

// deleteProductionEntry removes the entry together with its re-baling partner and
// reverses their stock movement. Serial counters are not rewound.
func deleteProductionEntry(ctx context.Context, businessId string, id int) error {
	return config.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entry ProductionEntry
		if err := tx.Where("business_id = ?", businessId).First(&entry, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.ErrorRecordNotFound
			}
			return err
		}
		entries := []ProductionEntry{entry}
		if entry.TransactionId != nil && *entry.TransactionId != "" {
			entries = nil
			if err := tx.Where("business_id = ? AND transaction_id = ?", businessId, *entry.TransactionId).
				Order("id").Find(&entries).Error; err != nil {
				return err
			}
		}
		for _, e := range entries {
			if err := adjustItemStock(tx, businessId, e.ItemId, e.QtyProduced.Neg()); err != nil {
				return err
			}
			if err := tx.Delete(&e).Error; err != nil {
				return err
			}
		}
		return PublishToLedger(ctx, tx, businessId, entry.ProductionDate, entry.ID, LedgerReferenceTypeProduction, nil, entries, LedgerActionDelete)
	})
}

func deleteSalesInvoice(ctx context.Context, businessId string, id int) error {
	return config.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invoice SalesInvoice
		if err := tx.Where("business_id = ?", businessId).First(&invoice, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.ErrorRecordNotFound
			}
			return err
		}
		if invoice.Status == SalesInvoiceStatusPosted {
			return ErrPostedNotDeletable
		}
		if invoice.OngoingOrderId != nil {
			return ErrEntityInUse
		}
		if err := tx.Where("sales_invoice_id = ?", id).Delete(&SalesInvoiceItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("sales_invoice_id = ?", id).Delete(&InvoiceAdditionalCost{}).Error; err != nil {
			return err
		}
		return tx.Delete(&invoice).Error
	})
}

func deleteOngoingOrder(ctx context.Context, businessId string, id int) error {
	return config.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order OngoingOrder
		if err := tx.Where("business_id = ?", businessId).Preload("Items").First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.ErrorRecordNotFound
			}
			return err
		}
		if order.Status != OngoingOrderStatusActive {
			return ErrOrderHasShipments
		}
		if err := tx.Where("ongoing_order_id = ?", id).Delete(&OngoingOrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&order).Error
	})
}
