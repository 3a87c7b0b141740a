package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/factory_backend/config"
	"github.com/shopspring/decimal"
)

// OriginalOpening releases purchased raw material into production.
// Rows are never updated; corrections are delete then recreate.
type OriginalOpening struct {
	ID             int             `gorm:"primary_key" json:"id"`
	BusinessId     string          `gorm:"index;not null" json:"business_id"`
	SupplierId     int             `gorm:"index;not null" json:"supplier_id"`
	OriginalTypeId int             `gorm:"index;not null" json:"original_type_id"`
	BatchNumber    *string         `gorm:"size:50;index" json:"batch_number"`
	OpeningDate    time.Time       `gorm:"not null" json:"opening_date"`
	Qty            decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"qty"`
	Weight         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"weight"`
	CostPerKg      decimal.Decimal `gorm:"type:decimal(20,6);default:0" json:"cost_per_kg"`
	TotalValue     decimal.Decimal `gorm:"type:decimal(20,6);default:0" json:"total_value"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func GetOriginalOpenings(ctx context.Context, supplierId *int) ([]*OriginalOpening, error) {
	businessId, err := businessIdFromContext(ctx)
	if err != nil {
		return nil, err
	}
	dbCtx := config.GetDB().WithContext(ctx).Where("business_id = ?", businessId)
	if supplierId != nil && *supplierId > 0 {
		dbCtx = dbCtx.Where("supplier_id = ?", *supplierId)
	}
	var results []*OriginalOpening
	if err := dbCtx.Order("opening_date DESC, id DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
