package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/factory_backend/config"
	"github.com/mmdatafocus/factory_backend/utils"
	"github.com/shopspring/decimal"
)

// Item is a finished good. StockQty and NextSerial are maintained by production posting.
type Item struct {
	ID            int             `gorm:"primary_key" json:"id"`
	BusinessId    string          `gorm:"index;not null" json:"business_id"`
	Name          string          `gorm:"size:100;not null" json:"name"`
	PackingType   string          `gorm:"size:50;not null" json:"packing_type"`
	WeightPerUnit decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"weight_per_unit"`
	StockQty      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"stock_qty"`
	NextSerial    *int64          `json:"next_serial"`
	SalePrice     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"sale_price"`
	IsActive      *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewItem struct {
	Name          string          `json:"name" validate:"required,max=100"`
	PackingType   string          `json:"packing_type" validate:"required,max=50"`
	WeightPerUnit decimal.Decimal `json:"weight_per_unit"`
	NextSerial    *int64          `json:"next_serial" validate:"omitempty,gte=1"`
	SalePrice     decimal.Decimal `json:"sale_price"`
}

// IsKg reports whether the item is stocked by weight rather than by unit.
func (i Item) IsKg() bool {
	return i.PackingType == PackingTypeKg
}

// KgFor converts a quantity of the item into kilograms.
func (i Item) KgFor(qty decimal.Decimal) decimal.Decimal {
	if i.IsKg() {
		return qty
	}
	return qty.Mul(i.WeightPerUnit)
}

func (input *NewItem) validate(ctx context.Context, businessId string, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[Item](ctx, businessId, id); err != nil {
			return err
		}
	}
	return utils.ValidateUnique[Item](ctx, businessId, "name", input.Name, id)
}

func CreateItem(ctx context.Context, input *NewItem) (*Item, error) {
	businessId, err := businessIdFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, businessId, 0); err != nil {
		return nil, err
	}
	item := Item{
		BusinessId:    businessId,
		Name:          input.Name,
		PackingType:   input.PackingType,
		WeightPerUnit: input.WeightPerUnit,
		NextSerial:    input.NextSerial,
		SalePrice:     input.SalePrice,
		IsActive:      utils.NewTrue(),
	}
	if err := config.GetDB().WithContext(ctx).Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItem edits master fields; stock and serial counters only move through production.
func UpdateItem(ctx context.Context, id int, input *NewItem) (*Item, error) {
	businessId, err := businessIdFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, businessId, id); err != nil {
		return nil, err
	}
	item, err := utils.FetchModel[Item](ctx, businessId, id)
	if err != nil {
		return nil, err
	}
	err = config.GetDB().WithContext(ctx).Model(item).Updates(map[string]interface{}{
		"Name":          input.Name,
		"PackingType":   input.PackingType,
		"WeightPerUnit": input.WeightPerUnit,
		"SalePrice":     input.SalePrice,
	}).Error
	if err != nil {
		return nil, err
	}
	return item, nil
}
