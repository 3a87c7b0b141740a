package inventory

import (
	"context"

	"github.com/mmdatafocus/factory_backend/models"
	"github.com/shopspring/decimal"
)

// DataContext persists what the engine produces. Implementations fill in ids and
// document numbers on the records passed to them. A returned error means nothing
// was saved, so callers keep their drafts.
type DataContext interface {
	AddPurchase(ctx context.Context, purchase *models.Purchase) error
	AddBundlePurchase(ctx context.Context, bundle *models.BundlePurchase) error
	AddOriginalOpening(ctx context.Context, opening *models.OriginalOpening) error
	// DeleteOriginalOpening also reverses the ledger posting of the opening.
	DeleteOriginalOpening(ctx context.Context, id int) error
	// AddProduction also moves item stock and advances item serial counters.
	AddProduction(ctx context.Context, entries []models.ProductionEntry) error
	AddSalesInvoice(ctx context.Context, invoice *models.SalesInvoice) error
	UpdateSalesInvoice(ctx context.Context, invoice *models.SalesInvoice) error
	AddDirectSale(ctx context.Context, invoice *models.SalesInvoice, landedCostPerKg decimal.Decimal) error
	AddOngoingOrder(ctx context.Context, order *models.OngoingOrder) error
	// ProcessOrderShipment updates shipped quantities, order status and creates
	// the shipment invoice atomically.
	ProcessOrderShipment(ctx context.Context, orderId int, items []models.ShipmentItem) error
	DeleteEntity(ctx context.Context, collection string, id int) error
}

var _ DataContext = models.GormDataContext{}
