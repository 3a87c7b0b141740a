package models

import (
	"encoding/json"
	"errors"
)

// PackingTypeKg marks bulk items sold and stocked by weight; they carry no serials.
const PackingTypeKg = "Kg"

type CostType string

const (
	CostTypeFreight    CostType = "Freight"
	CostTypeClearing   CostType = "Clearing"
	CostTypeCommission CostType = "Commission"
	CostTypeOther      CostType = "Other"
)

func (t CostType) IsValid() bool {
	switch t {
	case CostTypeFreight, CostTypeClearing, CostTypeCommission, CostTypeOther:
		return true
	}
	return false
}

// convert input to enum type
func (t *CostType) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return errors.New("cost type must be string")
	}
	v := CostType(str)
	if !v.IsValid() {
		return errors.New("invalid cost type")
	}
	*t = v
	return nil
}

type SalesInvoiceStatus string

const (
	SalesInvoiceStatusUnposted SalesInvoiceStatus = "Unposted"
	SalesInvoiceStatusPosted   SalesInvoiceStatus = "Posted"
)

type OngoingOrderStatus string

const (
	OngoingOrderStatusActive           OngoingOrderStatus = "Active"
	OngoingOrderStatusPartiallyShipped OngoingOrderStatus = "PartiallyShipped"
	OngoingOrderStatusCompleted        OngoingOrderStatus = "Completed"
)

type ProductionEntryType string

const (
	ProductionEntryTypeProduction          ProductionEntryType = "Production"
	ProductionEntryTypeRebalingConsumption ProductionEntryType = "RebalingConsumption"
	ProductionEntryTypeRebalingOutput      ProductionEntryType = "RebalingOutput"
)

type PartnerType string

const (
	PartnerTypeSupplier PartnerType = "Supplier"
	PartnerTypeCustomer PartnerType = "Customer"
	PartnerTypeProvider PartnerType = "Provider"
	PartnerTypeBoth     PartnerType = "Both"
)

func (t PartnerType) IsValid() bool {
	switch t {
	case PartnerTypeSupplier, PartnerTypeCustomer, PartnerTypeProvider, PartnerTypeBoth:
		return true
	}
	return false
}

func (t *PartnerType) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return errors.New("partner type must be string")
	}
	v := PartnerType(str)
	if !v.IsValid() {
		return errors.New("invalid partner type")
	}
	*t = v
	return nil
}

type AccountType string

const (
	AccountTypeAsset     AccountType = "Asset"
	AccountTypeLiability AccountType = "Liability"
	AccountTypeEquity    AccountType = "Equity"
	AccountTypeIncome    AccountType = "Income"
	AccountTypeExpense   AccountType = "Expense"
)

func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeIncome, AccountTypeExpense:
		return true
	}
	return false
}

type UserRole string

const (
	UserRoleAdmin UserRole = "Admin"
	UserRoleUser  UserRole = "User"
)

// LedgerReferenceType tags outbox rows with the document that produced them.
type LedgerReferenceType string

const (
	LedgerReferenceTypePurchase        LedgerReferenceType = "PU"
	LedgerReferenceTypeBundlePurchase  LedgerReferenceType = "BP"
	LedgerReferenceTypeOriginalOpening LedgerReferenceType = "OO"
	LedgerReferenceTypeProduction      LedgerReferenceType = "PR"
	LedgerReferenceTypeSalesInvoice    LedgerReferenceType = "SI"
	LedgerReferenceTypeDirectSale      LedgerReferenceType = "DS"
	LedgerReferenceTypeShipment        LedgerReferenceType = "SH"
)

type LedgerAction string

const (
	LedgerActionCreate LedgerAction = "C"
	LedgerActionUpdate LedgerAction = "U"
	LedgerActionDelete LedgerAction = "D"
)
