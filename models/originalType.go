package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/factory_backend/config"
	"github.com/mmdatafocus/factory_backend/utils"
	"github.com/shopspring/decimal"
)

// OriginalType is a raw material type; PackingSize is kg per purchased unit.
type OriginalType struct {
	ID          int             `gorm:"primary_key" json:"id"`
	BusinessId  string          `gorm:"index;not null" json:"business_id"`
	Name        string          `gorm:"size:100;not null" json:"name"`
	PackingSize decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"packing_size"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type OriginalProduct struct {
	ID             int       `gorm:"primary_key" json:"id"`
	BusinessId     string    `gorm:"index;not null" json:"business_id"`
	OriginalTypeId int       `gorm:"index;not null" json:"original_type_id"`
	Name           string    `gorm:"size:100;not null" json:"name"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewOriginalType struct {
	Name        string          `json:"name" validate:"required,max=100"`
	PackingSize decimal.Decimal `json:"packing_size"`
}

type NewOriginalProduct struct {
	OriginalTypeId int    `json:"original_type_id" validate:"required"`
	Name           string `json:"name" validate:"required,max=100"`
}

func CreateOriginalType(ctx context.Context, input *NewOriginalType) (*OriginalType, error) {
	businessId, err := businessIdFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateUnique[OriginalType](ctx, businessId, "name", input.Name, 0); err != nil {
		return nil, err
	}
	result := OriginalType{
		BusinessId:  businessId,
		Name:        input.Name,
		PackingSize: input.PackingSize,
	}
	if err := config.GetDB().WithContext(ctx).Create(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func UpdateOriginalType(ctx context.Context, id int, input *NewOriginalType) (*OriginalType, error) {
	businessId, err := businessIdFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateUnique[OriginalType](ctx, businessId, "name", input.Name, id); err != nil {
		return nil, err
	}
	result, err := utils.FetchModel[OriginalType](ctx, businessId, id)
	if err != nil {
		return nil, err
	}
	err = config.GetDB().WithContext(ctx).Model(result).Updates(map[string]interface{}{
		"Name":        input.Name,
		"PackingSize": input.PackingSize,
	}).Error
	if err != nil {
		return nil, err
	}
	return result, nil
}

func CreateOriginalProduct(ctx context.Context, input *NewOriginalProduct) (*OriginalProduct, error) {
	businessId, err := businessIdFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateResourceId[OriginalType](ctx, businessId, input.OriginalTypeId); err != nil {
		return nil, err
	}
	result := OriginalProduct{
		BusinessId:     businessId,
		OriginalTypeId: input.OriginalTypeId,
		Name:           input.Name,
	}
	if err := config.GetDB().WithContext(ctx).Create(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func UpdateOriginalProduct(ctx context.Context, id int, input *NewOriginalProduct) (*OriginalProduct, error) {
	businessId, err := businessIdFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateResourceId[OriginalType](ctx, businessId, input.OriginalTypeId); err != nil {
		return nil, err
	}
	result, err := utils.FetchModel[OriginalProduct](ctx, businessId, id)
	if err != nil {
		return nil, err
	}
	err = config.GetDB().WithContext(ctx).Model(result).Updates(map[string]interface{}{
		"OriginalTypeId": input.OriginalTypeId,
		"Name":           input.Name,
	}).Error
	if err != nil {
		return nil, err
	}
	return result, nil
}
