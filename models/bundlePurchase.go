package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/factory_backend/config"
	"github.com/mmdatafocus/factory_backend/utils"
	"github.com/shopspring/decimal"
)

// BundlePurchase is a purchase of already sorted finished goods at a fixed per-unit rate.
type BundlePurchase struct {
	ID                 int                  `gorm:"primary_key" json:"id"`
	BusinessId         string               `gorm:"index;not null" json:"business_id"`
	SupplierId         int                  `gorm:"index;not null" json:"supplier_id"`
	PurchaseDate       time.Time            `gorm:"not null" json:"purchase_date"`
	CurrencyCode       string               `gorm:"size:3;not null" json:"currency_code"`
	ExchangeRate       decimal.Decimal      `gorm:"type:decimal(20,6);not null" json:"exchange_rate"`
	ContainerNumber    *string              `gorm:"size:50;index" json:"container_number"`
	DivisionId         *int                 `json:"division_id"`
	SubDivisionId      *int                 `json:"sub_division_id"`
	TotalQty           decimal.Decimal      `gorm:"type:decimal(20,4);default:0" json:"total_qty"`
	MaterialCostFCY    decimal.Decimal      `gorm:"type:decimal(20,4);default:0" json:"material_cost_fcy"`
	MaterialCostUSD    decimal.Decimal      `gorm:"type:decimal(20,6);default:0" json:"material_cost_usd"`
	AdditionalCostUSD  decimal.Decimal      `gorm:"type:decimal(20,6);default:0" json:"additional_cost_usd"`
	TotalLandedCostUSD decimal.Decimal      `gorm:"type:decimal(20,6);default:0" json:"total_landed_cost_usd"`
	Printed            bool                 `gorm:"not null;default:false" json:"printed"`
	Items              []BundlePurchaseItem `gorm:"foreignKey:BundlePurchaseId" json:"items"`
	AdditionalCosts    []AdditionalCost     `gorm:"polymorphic:Reference" json:"additional_costs"`
	CreatedAt          time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time            `gorm:"autoUpdateTime" json:"updated_at"`
}

type BundlePurchaseItem struct {
	ID               int             `gorm:"primary_key" json:"id"`
	BundlePurchaseId int             `gorm:"index;not null" json:"bundle_purchase_id"`
	LineId           string          `gorm:"size:64" json:"line_id"`
	ItemId           int             `gorm:"index;not null" json:"item_id"`
	Qty              decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"qty"`
	RateFCY          decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"rate_fcy"`
	RateUSD          decimal.Decimal `gorm:"type:decimal(20,6);default:0" json:"rate_usd"`
	TotalFCY         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_fcy"`
	TotalUSD         decimal.Decimal `gorm:"type:decimal(20,6);default:0" json:"total_usd"`
}

func GetBundlePurchases(ctx context.Context) ([]*BundlePurchase, error) {
	businessId, err := businessIdFromContext(ctx)
	if err != nil {
		return nil, err
	}
	var results []*BundlePurchase
	if err := config.GetDB().WithContext(ctx).
		Where("business_id = ?", businessId).
		Preload("Items").Preload("AdditionalCosts").
		Order("purchase_date DESC, id DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func GetBundlePurchase(ctx context.Context, id int) (*BundlePurchase, error) {
	businessId, err := businessIdFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return utils.FetchModel[BundlePurchase](ctx, businessId, id, "Items", "AdditionalCosts")
}
