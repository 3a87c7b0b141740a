package models

import (
	"log"

	"github.com/mmdatafocus/factory_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Business{}, &User{}, &Account{}, &Currency{},
		&Partner{}, &Item{}, &OriginalType{}, &OriginalProduct{}, &Division{}, &SubDivision{},
		&Purchase{}, &PurchaseOriginalItem{}, &AdditionalCost{}, &Document{},
		&BundlePurchase{}, &BundlePurchaseItem{},
		&OriginalOpening{}, &ProductionEntry{},
		&SalesInvoice{}, &SalesInvoiceItem{}, &InvoiceAdditionalCost{},
		&OngoingOrder{}, &OngoingOrderItem{},
		&LedgerOutboxRecord{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
