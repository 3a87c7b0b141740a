package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/factory_backend/config"
	"github.com/mmdatafocus/factory_backend/utils"
)

type Division struct {
	ID         int       `gorm:"primary_key" json:"id"`
	BusinessId string    `gorm:"index;not null" json:"business_id"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type SubDivision struct {
	ID         int       `gorm:"primary_key" json:"id"`
	BusinessId string    `gorm:"index;not null" json:"business_id"`
	DivisionId int       `gorm:"index;not null" json:"division_id"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewDivision struct {
	Name string `json:"name" validate:"required,max=100"`
}

type NewSubDivision struct {
	DivisionId int    `json:"division_id" validate:"required"`
	Name       string `json:"name" validate:"required,max=100"`
}

func CreateDivision(ctx context.Context, input *NewDivision) (*Division, error) {
	businessId, err := businessIdFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateUnique[Division](ctx, businessId, "name", input.Name, 0); err != nil {
		return nil, err
	}
	result := Division{BusinessId: businessId, Name: input.Name}
	if err := config.GetDB().WithContext(ctx).Create(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func UpdateDivision(ctx context.Context, id int, input *NewDivision) (*Division, error) {
	businessId, err := businessIdFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateUnique[Division](ctx, businessId, "name", input.Name, id); err != nil {
		return nil, err
	}
	result, err := utils.FetchModel[Division](ctx, businessId, id)
	if err != nil {
		return nil, err
	}
	if err := config.GetDB().WithContext(ctx).Model(result).Update("name", input.Name).Error; err != nil {
		return nil, err
	}
	return result, nil
}

func CreateSubDivision(ctx context.Context, input *NewSubDivision) (*SubDivision, error) {
	businessId, err := businessIdFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateResourceId[Division](ctx, businessId, input.DivisionId); err != nil {
		return nil, err
	}
	result := SubDivision{BusinessId: businessId, DivisionId: input.DivisionId, Name: input.Name}
	if err := config.GetDB().WithContext(ctx).Create(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func UpdateSubDivision(ctx context.Context, id int, input *NewSubDivision) (*SubDivision, error) {
	businessId, err := businessIdFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateResourceId[Division](ctx, businessId, input.DivisionId); err != nil {
		return nil, err
	}
	result, err := utils.FetchModel[SubDivision](ctx, businessId, id)
	if err != nil {
		return nil, err
	}
	err = config.GetDB().WithContext(ctx).Model(result).Updates(map[string]interface{}{
		"DivisionId": input.DivisionId,
		"Name":       input.Name,
	}).Error
	if err != nil {
		return nil, err
	}
	return result, nil
}
