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

const (
	SalesInvoicePrefix = "SINV-"
	DirectSalePrefix   = "DS-"
)

type SalesInvoice struct {
	ID              int                     `gorm:"primary_key" json:"id"`
	BusinessId      string                  `gorm:"index;uniqueIndex:idx_sales_invoice_number,priority:1;not null" json:"business_id"`
	InvoiceNumber   string                  `gorm:"size:50;uniqueIndex:idx_sales_invoice_number,priority:2;not null" json:"invoice_number"`
	SequenceNo      int64                   `gorm:"index;not null;default:0" json:"sequence_no"`
	InvoiceDate     time.Time               `gorm:"not null" json:"invoice_date"`
	CustomerId      int                     `gorm:"index;not null" json:"customer_id"`
	Status          SalesInvoiceStatus      `gorm:"type:enum('Unposted','Posted');not null;default:'Unposted'" json:"status"`
	CurrencyCode    string                  `gorm:"size:3;not null" json:"currency_code"`
	ExchangeRate    decimal.Decimal         `gorm:"type:decimal(20,6);not null" json:"exchange_rate"`
	Discount        decimal.Decimal         `gorm:"type:decimal(20,4);default:0" json:"discount"`
	Surcharge       decimal.Decimal         `gorm:"type:decimal(20,4);default:0" json:"surcharge"`
	GrossTotal      decimal.Decimal         `gorm:"type:decimal(20,4);default:0" json:"gross_total"`
	NetTotal        decimal.Decimal         `gorm:"type:decimal(20,4);default:0" json:"net_total"`
	IsDirectSale    bool                    `gorm:"not null;default:false" json:"is_direct_sale"`
	CostPerKg       decimal.Decimal         `gorm:"type:decimal(20,6);default:0" json:"cost_per_kg"`
	OngoingOrderId  *int                    `gorm:"index" json:"ongoing_order_id"`
	Items           []SalesInvoiceItem      `gorm:"foreignKey:SalesInvoiceId" json:"items"`
	AdditionalCosts []InvoiceAdditionalCost `gorm:"foreignKey:SalesInvoiceId" json:"additional_costs"`
	CreatedAt       time.Time               `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time               `gorm:"autoUpdateTime" json:"updated_at"`
}

// SalesInvoiceItem lines of a direct sale have no ItemId; they point at the
// consumed batch through OriginalPurchaseId and Qty is in kg.
type SalesInvoiceItem struct {
	ID                 int             `gorm:"primary_key" json:"id"`
	SalesInvoiceId     int             `gorm:"index;not null" json:"sales_invoice_id"`
	ItemId             int             `gorm:"index" json:"item_id"`
	Description        string          `gorm:"size:255" json:"description"`
	Qty                decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"qty"`
	Rate               decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"rate"`
	Total              decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total"`
	TotalKg            decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_kg"`
	OriginalPurchaseId *int            `gorm:"index" json:"original_purchase_id"`
}

type InvoiceAdditionalCost struct {
	ID             int             `gorm:"primary_key" json:"id"`
	SalesInvoiceId int             `gorm:"index;not null" json:"sales_invoice_id"`
	Description    string          `gorm:"size:255" json:"description"`
	CurrencyCode   string          `gorm:"size:3;not null" json:"currency_code"`
	ExchangeRate   decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"exchange_rate"`
	Amount         decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	// Amount expressed in the invoice currency
	InvoiceAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"invoice_amount"`
}

var (
	ErrInvoicePosted        = errors.New("posted invoices cannot be edited")
	ErrInvoiceAlreadyPosted = errors.New("invoice is already posted")
	ErrInvoiceNumberInUse   = errors.New("invoice number is already used")
)

func FormatSalesInvoiceNumber(seqNo int64) string {
	return SalesInvoicePrefix + fmt.Sprint(1000+seqNo)
}

func GetSalesInvoice(ctx context.Context, id int) (*SalesInvoice, error) {
	businessId, err := businessIdFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return utils.FetchModel[SalesInvoice](ctx, businessId, id, "Items", "AdditionalCosts")
}

func GetSalesInvoices(ctx context.Context, customerId *int, status *SalesInvoiceStatus) ([]*SalesInvoice, error) {
	businessId, err := businessIdFromContext(ctx)
	if err != nil {
		return nil, err
	}
	dbCtx := config.GetDB().WithContext(ctx).Where("business_id = ?", businessId)
	if customerId != nil && *customerId > 0 {
		dbCtx = dbCtx.Where("customer_id = ?", *customerId)
	}
	if status != nil && *status != "" {
		dbCtx = dbCtx.Where("status = ?", *status)
	}
	var results []*SalesInvoice
	if err := dbCtx.Preload("Items").Preload("AdditionalCosts").
		Order("invoice_date DESC, id DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// PostSalesInvoice moves an Unposted invoice to Posted and hands it to the ledger.
func PostSalesInvoice(ctx context.Context, id int) (*SalesInvoice, error) {
	businessId, err := businessIdFromContext(ctx)
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	defer rollbackOnPanic(tx)

	var invoice SalesInvoice
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("business_id = ?", businessId).
		Preload("Items").Preload("AdditionalCosts").
		First(&invoice, id).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	if invoice.Status == SalesInvoiceStatusPosted {
		tx.Rollback()
		return nil, ErrInvoiceAlreadyPosted
	}
	if err := tx.Model(&invoice).Update("status", SalesInvoiceStatusPosted).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	invoice.Status = SalesInvoiceStatusPosted
	if err := PublishToLedger(ctx, tx, businessId, invoice.InvoiceDate, invoice.ID, LedgerReferenceTypeSalesInvoice, invoice, nil, LedgerActionCreate); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}
