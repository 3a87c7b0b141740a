package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mmdatafocus/factory_backend/config"
	"github.com/mmdatafocus/factory_backend/utils"
	"github.com/shopspring/decimal"
)

// BaseCurrencyCode is the valuation currency; every landed cost is stored in it.
const BaseCurrencyCode = "USD"

// Currency.ExchangeRate is units of the currency per 1 USD.
type Currency struct {
	ID           int             `gorm:"primary_key" json:"id"`
	BusinessId   string          `gorm:"index;not null" json:"business_id"`
	Code         string          `gorm:"index;size:3;not null" json:"code"`
	Name         string          `gorm:"size:100;not null" json:"name"`
	ExchangeRate decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"exchange_rate"`
	IsActive     *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCurrency struct {
	Code         string          `json:"code" validate:"required,len=3"`
	Name         string          `json:"name" validate:"required,max=100"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
}

// validate input for both create & update. (id = 0 for create)
func (input *NewCurrency) validate(ctx context.Context, businessId string, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[Currency](ctx, businessId, id); err != nil {
			return err
		}
	}
	input.Code = strings.ToUpper(strings.TrimSpace(input.Code))
	if !input.ExchangeRate.IsPositive() {
		return errors.New("exchange rate must be greater than zero")
	}
	if input.Code == BaseCurrencyCode && !input.ExchangeRate.Equal(decimal.NewFromInt(1)) {
		return errors.New("base currency rate must be 1")
	}
	if err := utils.ValidateUnique[Currency](ctx, businessId, "code", input.Code, id); err != nil {
		return err
	}
	return utils.ValidateUnique[Currency](ctx, businessId, "name", input.Name, id)
}

func CreateCurrency(ctx context.Context, input *NewCurrency) (*Currency, error) {
	businessId, err := businessIdFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, businessId, 0); err != nil {
		return nil, err
	}
	currency := Currency{
		BusinessId:   businessId,
		Code:         input.Code,
		Name:         input.Name,
		ExchangeRate: input.ExchangeRate,
		IsActive:     utils.NewTrue(),
	}
	if err := config.GetDB().WithContext(ctx).Create(&currency).Error; err != nil {
		return nil, err
	}
	return &currency, nil
}

func UpdateCurrency(ctx context.Context, id int, input *NewCurrency) (*Currency, error) {
	businessId, err := businessIdFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, businessId, id); err != nil {
		return nil, err
	}
	currency, err := utils.FetchModel[Currency](ctx, businessId, id)
	if err != nil {
		return nil, err
	}
	err = config.GetDB().WithContext(ctx).Model(currency).Updates(map[string]interface{}{
		"Code":         input.Code,
		"Name":         input.Name,
		"ExchangeRate": input.ExchangeRate,
	}).Error
	if err != nil {
		return nil, err
	}
	return currency, nil
}
