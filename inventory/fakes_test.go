package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/mmdatafocus/factory_backend/models"
	"github.com/shopspring/decimal"
)

var errStoreDown = errors.New("store unavailable")

// fakeDataContext records calls; fail makes every call return errStoreDown.
type fakeDataContext struct {
	fail bool

	purchases       []models.Purchase
	bundles         []models.BundlePurchase
	openings        []models.OriginalOpening
	deletedOpenings []int
	production      [][]models.ProductionEntry
	invoices        []models.SalesInvoice
	updatedInvoices []models.SalesInvoice
	directSales     []models.SalesInvoice
	directSaleCosts []decimal.Decimal
	orders          []models.OngoingOrder
	shipments       map[int][]models.ShipmentItem
	deleted         []string
}

func (f *fakeDataContext) err() error {
	if f.fail {
		return errStoreDown
	}
	return nil
}

func (f *fakeDataContext) AddPurchase(ctx context.Context, p *models.Purchase) error {
	if err := f.err(); err != nil {
		return err
	}
	p.ID = len(f.purchases) + 1
	f.purchases = append(f.purchases, *p)
	return nil
}

func (f *fakeDataContext) AddBundlePurchase(ctx context.Context, b *models.BundlePurchase) error {
	if err := f.err(); err != nil {
		return err
	}
	b.ID = len(f.bundles) + 1
	f.bundles = append(f.bundles, *b)
	return nil
}

func (f *fakeDataContext) AddOriginalOpening(ctx context.Context, o *models.OriginalOpening) error {
	if err := f.err(); err != nil {
		return err
	}
	o.ID = len(f.openings) + 1
	f.openings = append(f.openings, *o)
	return nil
}

func (f *fakeDataContext) DeleteOriginalOpening(ctx context.Context, id int) error {
	if err := f.err(); err != nil {
		return err
	}
	f.deletedOpenings = append(f.deletedOpenings, id)
	return nil
}

func (f *fakeDataContext) AddProduction(ctx context.Context, entries []models.ProductionEntry) error {
	if err := f.err(); err != nil {
		return err
	}
	f.production = append(f.production, entries)
	return nil
}

func (f *fakeDataContext) AddSalesInvoice(ctx context.Context, inv *models.SalesInvoice) error {
	if err := f.err(); err != nil {
		return err
	}
	inv.ID = len(f.invoices) + 1
	inv.InvoiceNumber = models.FormatSalesInvoiceNumber(int64(inv.ID))
	f.invoices = append(f.invoices, *inv)
	return nil
}

func (f *fakeDataContext) UpdateSalesInvoice(ctx context.Context, inv *models.SalesInvoice) error {
	if err := f.err(); err != nil {
		return err
	}
	f.updatedInvoices = append(f.updatedInvoices, *inv)
	return nil
}

func (f *fakeDataContext) AddDirectSale(ctx context.Context, inv *models.SalesInvoice, landedCostPerKg decimal.Decimal) error {
	if err := f.err(); err != nil {
		return err
	}
	inv.ID = 100 + len(f.directSales)
	f.directSales = append(f.directSales, *inv)
	f.directSaleCosts = append(f.directSaleCosts, landedCostPerKg)
	return nil
}

func (f *fakeDataContext) AddOngoingOrder(ctx context.Context, o *models.OngoingOrder) error {
	if err := f.err(); err != nil {
		return err
	}
	o.ID = len(f.orders) + 1
	o.OrderNumber = models.FormatOngoingOrderNumber(int64(o.ID))
	f.orders = append(f.orders, *o)
	return nil
}

func (f *fakeDataContext) ProcessOrderShipment(ctx context.Context, orderId int, items []models.ShipmentItem) error {
	if err := f.err(); err != nil {
		return err
	}
	if f.shipments == nil {
		f.shipments = make(map[int][]models.ShipmentItem)
	}
	f.shipments[orderId] = append(f.shipments[orderId], items...)
	return nil
}

func (f *fakeDataContext) DeleteEntity(ctx context.Context, collection string, id int) error {
	if err := f.err(); err != nil {
		return err
	}
	f.deleted = append(f.deleted, fmt.Sprintf("%s/%d", collection, id))
	return nil
}

// seqIds issues predictable ids.
type seqIds struct {
	n int
}

func (s *seqIds) NewId() string {
	s.n++
	return fmt.Sprintf("id-%d", s.n)
}

func (s *seqIds) NewDirectSaleNumber() string {
	s.n++
	return fmt.Sprintf("%s%04d", models.DirectSalePrefix, s.n)
}

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func dp(v string) *decimal.Decimal {
	x := d(v)
	return &x
}

func strp(s string) *string {
	return &s
}

func int64p(v int64) *int64 {
	return &v
}

// baseSnapshot has a supplier (1), a customer (2), a freight provider (3),
// cotton packed in 1 kg units (type 10) and a few items.
func baseSnapshot() *models.Snapshot {
	return &models.Snapshot{
		Partners: []models.Partner{
			{ID: 1, Name: "Supplier A", PartnerType: models.PartnerTypeSupplier},
			{ID: 2, Name: "Customer B", PartnerType: models.PartnerTypeCustomer},
			{ID: 3, Name: "Freight Co", PartnerType: models.PartnerTypeProvider},
			{ID: 4, Name: "Trader", PartnerType: models.PartnerTypeBoth, CurrencyCode: "EUR"},
		},
		OriginalTypes: []models.OriginalType{
			{ID: 10, Name: "Cotton", PackingSize: d("1")},
			{ID: 11, Name: "Wool", PackingSize: d("50")},
			{ID: 12, Name: "Loose", PackingSize: d("0")},
		},
		OriginalProducts: []models.OriginalProduct{
			{ID: 20, OriginalTypeId: 10, Name: "Cotton A"},
			{ID: 21, OriginalTypeId: 11, Name: "Wool A"},
		},
		Items: []models.Item{
			{ID: 30, Name: "Loose Kg", PackingType: models.PackingTypeKg, WeightPerUnit: d("1"), SalePrice: d("1.5")},
			{ID: 31, Name: "Bale 2kg", PackingType: "Bale", WeightPerUnit: d("2"), NextSerial: int64p(1), SalePrice: d("10")},
			{ID: 32, Name: "Bale 45kg", PackingType: "Bale", WeightPerUnit: d("45"), NextSerial: int64p(501), SalePrice: d("90")},
		},
		Currencies: []models.Currency{
			{Code: "USD", ExchangeRate: d("1")},
			{Code: "EUR", ExchangeRate: d("0.8")},
			{Code: "MMK", ExchangeRate: d("2000")},
		},
		Divisions:    []models.Division{{ID: 40, Name: "North"}},
		SubDivisions: []models.SubDivision{{ID: 41, DivisionId: 40, Name: "Yard 1"}},
	}
}
