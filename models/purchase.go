package models

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/mmdatafocus/factory_backend/config"
	"github.com/mmdatafocus/factory_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultFirstBatchNumber seeds the batch counter of a business with no purchases.
const DefaultFirstBatchNumber int64 = 11001

type Purchase struct {
	ID              int             `gorm:"primary_key" json:"id"`
	BusinessId      string          `gorm:"index;not null" json:"business_id"`
	SupplierId      int             `gorm:"index;not null" json:"supplier_id"`
	BatchNumber     string          `gorm:"size:50;index;not null" json:"batch_number"`
	SequenceNo      int64           `gorm:"index;not null;default:0" json:"sequence_no"`
	PurchaseDate    time.Time       `gorm:"not null" json:"purchase_date"`
	CurrencyCode    string          `gorm:"size:3;not null" json:"currency_code"`
	ExchangeRate    decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"exchange_rate"`
	ContainerNumber *string         `gorm:"size:50;index" json:"container_number"`
	DivisionId      *int            `json:"division_id"`
	SubDivisionId   *int            `json:"sub_division_id"`
	// single-item fields kept for older consumers, copied from the first line
	OriginalTypeId     int                    `gorm:"index" json:"original_type_id"`
	OriginalProductId  *int                   `json:"original_product_id"`
	Weight             decimal.Decimal        `gorm:"type:decimal(20,4);default:0" json:"weight"`
	Qty                decimal.Decimal        `gorm:"type:decimal(20,4);default:0" json:"qty"`
	CostPerKg          decimal.Decimal        `gorm:"type:decimal(20,6);default:0" json:"cost_per_kg"`
	TotalWeight        decimal.Decimal        `gorm:"type:decimal(20,4);default:0" json:"total_weight"`
	TotalQty           decimal.Decimal        `gorm:"type:decimal(20,4);default:0" json:"total_qty"`
	MaterialCostFCY    decimal.Decimal        `gorm:"type:decimal(20,4);default:0" json:"material_cost_fcy"`
	MaterialCostUSD    decimal.Decimal        `gorm:"type:decimal(20,6);default:0" json:"material_cost_usd"`
	AdditionalCostUSD  decimal.Decimal        `gorm:"type:decimal(20,6);default:0" json:"additional_cost_usd"`
	TotalLandedCostUSD decimal.Decimal        `gorm:"type:decimal(20,6);default:0" json:"total_landed_cost_usd"`
	LandedCostPerKg    decimal.Decimal        `gorm:"type:decimal(20,6);default:0" json:"landed_cost_per_kg"`
	Printed            bool                   `gorm:"not null;default:false" json:"printed"`
	Items              []PurchaseOriginalItem `gorm:"foreignKey:PurchaseId" json:"items"`
	AdditionalCosts    []AdditionalCost       `gorm:"polymorphic:Reference" json:"additional_costs"`
	Documents          []*Document            `gorm:"polymorphic:Reference" json:"documents"`
	CreatedAt          time.Time              `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time              `gorm:"autoUpdateTime" json:"updated_at"`
}

type PurchaseOriginalItem struct {
	ID                int             `gorm:"primary_key" json:"id"`
	PurchaseId        int             `gorm:"index;not null" json:"purchase_id"`
	LineId            string          `gorm:"size:64" json:"line_id"`
	OriginalTypeId    int             `gorm:"index;not null" json:"original_type_id"`
	OriginalProductId *int            `json:"original_product_id"`
	Weight            decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"weight"`
	Qty               decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"qty"`
	GrossPrice        decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"gross_price"`
	Discount          decimal.Decimal `gorm:"type:decimal(20,6);default:0" json:"discount"`
	Surcharge         decimal.Decimal `gorm:"type:decimal(20,6);default:0" json:"surcharge"`
	NetPrice          decimal.Decimal `gorm:"type:decimal(20,6);default:0" json:"net_price"`
	TotalCostFCY      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_cost_fcy"`
	TotalCostUSD      decimal.Decimal `gorm:"type:decimal(20,6);default:0" json:"total_cost_usd"`
}

// AdditionalCost belongs to a purchase or a bundle purchase (polymorphic reference).
type AdditionalCost struct {
	ID            int             `gorm:"primary_key" json:"id"`
	ReferenceType string          `gorm:"size:50;index:idx_additional_cost_ref,priority:1" json:"reference_type"`
	ReferenceID   int             `gorm:"index:idx_additional_cost_ref,priority:2" json:"reference_id"`
	LineId        string          `gorm:"size:64" json:"line_id"`
	CostType      CostType        `gorm:"type:enum('Freight','Clearing','Commission','Other');not null" json:"cost_type"`
	ProviderId    int             `gorm:"not null" json:"provider_id"`
	CurrencyCode  string          `gorm:"size:3;not null" json:"currency_code"`
	ExchangeRate  decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"exchange_rate"`
	AmountFCY     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount_fcy"`
	AmountUSD     decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"amount_usd"`
}

// EffectiveLines returns the material lines, falling back to the single-item
// fields for purchases recorded before multi-line carts.
func (p Purchase) EffectiveLines() []PurchaseOriginalItem {
	if len(p.Items) > 0 {
		return p.Items
	}
	if p.OriginalTypeId == 0 {
		return nil
	}
	return []PurchaseOriginalItem{{
		PurchaseId:        p.ID,
		OriginalTypeId:    p.OriginalTypeId,
		OriginalProductId: p.OriginalProductId,
		Weight:            p.Weight,
		Qty:               p.Qty,
		GrossPrice:        p.CostPerKg,
		NetPrice:          p.CostPerKg,
		TotalCostFCY:      p.MaterialCostFCY,
		TotalCostUSD:      p.MaterialCostUSD,
	}}
}

// BatchSequence reads the numeric part of a batch number, 0 when it has none.
func BatchSequence(batchNumber string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(batchNumber), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// NextBatchNumber suggests the batch number for the next purchase of the business.
func NextBatchNumber(ctx context.Context) (string, error) {
	businessId, err := businessIdFromContext(ctx)
	if err != nil {
		return "", err
	}
	var maxSeq *int64
	if err := config.GetDB().WithContext(ctx).Model(&Purchase{}).
		Select("max(sequence_no)").
		Where("business_id = ?", businessId).
		Scan(&maxSeq).Error; err != nil {
		return "", err
	}
	if maxSeq == nil || *maxSeq <= 0 {
		return strconv.FormatInt(DefaultFirstBatchNumber, 10), nil
	}
	return strconv.FormatInt(*maxSeq+1, 10), nil
}

// containerNumberInUse checks purchases and bundle purchases of the business.
func containerNumberInUse(tx *gorm.DB, businessId string, containerNumber string) (bool, error) {
	containerNumber = strings.TrimSpace(containerNumber)
	if containerNumber == "" {
		return false, nil
	}
	var count int64
	if err := tx.Model(&Purchase{}).
		Where("business_id = ? AND container_number = ?", businessId, containerNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}
	if err := tx.Model(&BundlePurchase{}).
		Where("business_id = ? AND container_number = ?", businessId, containerNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

var ErrContainerNumberInUse = errors.New("container number is already used by another purchase")

func GetPurchase(ctx context.Context, id int) (*Purchase, error) {
	businessId, err := businessIdFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return utils.FetchModel[Purchase](ctx, businessId, id, "Items", "AdditionalCosts", "Documents")
}

func GetPurchases(ctx context.Context, supplierId *int, batchNumber *string) ([]*Purchase, error) {
	businessId, err := businessIdFromContext(ctx)
	if err != nil {
		return nil, err
	}
	dbCtx := config.GetDB().WithContext(ctx).Where("business_id = ?", businessId)
	if supplierId != nil && *supplierId > 0 {
		dbCtx = dbCtx.Where("supplier_id = ?", *supplierId)
	}
	if batchNumber != nil && *batchNumber != "" {
		dbCtx = dbCtx.Where("batch_number LIKE ?", "%"+*batchNumber+"%")
	}
	var results []*Purchase
	if err := dbCtx.Preload("Items").Preload("AdditionalCosts").
		Order("purchase_date DESC, id DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
