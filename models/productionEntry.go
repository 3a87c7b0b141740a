package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/factory_backend/config"
	"github.com/shopspring/decimal"
)

// ProductionEntry is one stock movement of a finished item. QtyProduced is negative
// for re-baling consumption; the paired output shares TransactionId.
type ProductionEntry struct {
	ID             int                 `gorm:"primary_key" json:"id"`
	BusinessId     string              `gorm:"index;not null" json:"business_id"`
	ProductionDate time.Time           `gorm:"not null" json:"production_date"`
	ItemId         int                 `gorm:"index;not null" json:"item_id"`
	PackingType    string              `gorm:"size:50" json:"packing_type"`
	QtyProduced    decimal.Decimal     `gorm:"type:decimal(20,4);not null" json:"qty_produced"`
	WeightProduced decimal.Decimal     `gorm:"type:decimal(20,4);default:0" json:"weight_produced"`
	SerialStart    *int64              `json:"serial_start"`
	SerialEnd      *int64              `json:"serial_end"`
	TransactionId  *string             `gorm:"size:64;index" json:"transaction_id"`
	EntryType      ProductionEntryType `gorm:"type:enum('Production','RebalingConsumption','RebalingOutput');not null" json:"entry_type"`
	CreatedAt      time.Time           `gorm:"autoCreateTime" json:"created_at"`
}

func GetProductionEntries(ctx context.Context, itemId *int) ([]*ProductionEntry, error) {
	businessId, err := businessIdFromContext(ctx)
	if err != nil {
		return nil, err
	}
	dbCtx := config.GetDB().WithContext(ctx).Where("business_id = ?", businessId)
	if itemId != nil && *itemId > 0 {
		dbCtx = dbCtx.Where("item_id = ?", *itemId)
	}
	var results []*ProductionEntry
	if err := dbCtx.Order("production_date DESC, id DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
