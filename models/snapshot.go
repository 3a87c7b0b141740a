package models

import (
	"context"

	"github.com/mmdatafocus/factory_backend/config"
	"github.com/mmdatafocus/factory_backend/utils"
	"gorm.io/gorm"
)

// Snapshot is the read-only state the costing engine works on. It is loaded per
// request and never cached, so aggregates are always derived from current rows.
type Snapshot struct {
	BusinessId       string
	Partners         []Partner
	Items            []Item
	Purchases        []Purchase
	BundlePurchases  []BundlePurchase
	OriginalOpenings []OriginalOpening
	SalesInvoices    []SalesInvoice
	OngoingOrders    []OngoingOrder
	OriginalTypes    []OriginalType
	OriginalProducts []OriginalProduct
	Currencies       []Currency
	Divisions        []Division
	SubDivisions     []SubDivision
}

// LoadSnapshot reads every collection of the business inside one read transaction.
func LoadSnapshot(ctx context.Context) (*Snapshot, error) {
	businessId, err := businessIdFromContext(ctx)
	if err != nil {
		return nil, err
	}
	s := &Snapshot{BusinessId: businessId}
	err = config.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := utils.FetchAllInto(tx, businessId, &s.Partners); err != nil {
			return err
		}
		if err := utils.FetchAllInto(tx, businessId, &s.Items); err != nil {
			return err
		}
		if err := utils.FetchAllInto(tx, businessId, &s.Purchases, "Items", "AdditionalCosts"); err != nil {
			return err
		}
		if err := utils.FetchAllInto(tx, businessId, &s.BundlePurchases, "Items", "AdditionalCosts"); err != nil {
			return err
		}
		if err := utils.FetchAllInto(tx, businessId, &s.OriginalOpenings); err != nil {
			return err
		}
		if err := utils.FetchAllInto(tx, businessId, &s.SalesInvoices, "Items", "AdditionalCosts"); err != nil {
			return err
		}
		if err := utils.FetchAllInto(tx, businessId, &s.OngoingOrders, "Items"); err != nil {
			return err
		}
		if err := utils.FetchAllInto(tx, businessId, &s.OriginalTypes); err != nil {
			return err
		}
		if err := utils.FetchAllInto(tx, businessId, &s.OriginalProducts); err != nil {
			return err
		}
		if err := utils.FetchAllInto(tx, businessId, &s.Currencies); err != nil {
			return err
		}
		if err := utils.FetchAllInto(tx, businessId, &s.Divisions); err != nil {
			return err
		}
		return utils.FetchAllInto(tx, businessId, &s.SubDivisions)
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Snapshot) Item(id int) *Item {
	for i := range s.Items {
		if s.Items[i].ID == id {
			return &s.Items[i]
		}
	}
	return nil
}

func (s *Snapshot) Partner(id int) *Partner {
	for i := range s.Partners {
		if s.Partners[i].ID == id {
			return &s.Partners[i]
		}
	}
	return nil
}

func (s *Snapshot) OriginalType(id int) *OriginalType {
	for i := range s.OriginalTypes {
		if s.OriginalTypes[i].ID == id {
			return &s.OriginalTypes[i]
		}
	}
	return nil
}

func (s *Snapshot) OriginalProduct(id int) *OriginalProduct {
	for i := range s.OriginalProducts {
		if s.OriginalProducts[i].ID == id {
			return &s.OriginalProducts[i]
		}
	}
	return nil
}

func (s *Snapshot) Purchase(id int) *Purchase {
	for i := range s.Purchases {
		if s.Purchases[i].ID == id {
			return &s.Purchases[i]
		}
	}
	return nil
}

func (s *Snapshot) OngoingOrder(id int) *OngoingOrder {
	for i := range s.OngoingOrders {
		if s.OngoingOrders[i].ID == id {
			return &s.OngoingOrders[i]
		}
	}
	return nil
}

func (s *Snapshot) SalesInvoice(id int) *SalesInvoice {
	for i := range s.SalesInvoices {
		if s.SalesInvoices[i].ID == id {
			return &s.SalesInvoices[i]
		}
	}
	return nil
}

func (s *Snapshot) Division(id int) *Division {
	for i := range s.Divisions {
		if s.Divisions[i].ID == id {
			return &s.Divisions[i]
		}
	}
	return nil
}

func (s *Snapshot) SubDivision(id int) *SubDivision {
	for i := range s.SubDivisions {
		if s.SubDivisions[i].ID == id {
			return &s.SubDivisions[i]
		}
	}
	return nil
}
