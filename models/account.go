package models

import (
	"context"
	"errors"
	"time"

	"github.com/mmdatafocus/factory_backend/config"
	"github.com/mmdatafocus/factory_backend/utils"
)

// Account is the chart of accounts used by the ledger service when posting outbox messages.
type Account struct {
	ID          int         `gorm:"primary_key" json:"id"`
	BusinessId  string      `gorm:"index;not null" json:"business_id"`
	Code        string      `gorm:"size:20;not null" json:"code"`
	Name        string      `gorm:"size:100;not null" json:"name"`
	AccountType AccountType `gorm:"type:enum('Asset','Liability','Equity','Income','Expense');not null" json:"account_type"`
	IsActive    *bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewAccount struct {
	Code        string      `json:"code" validate:"required,max=20"`
	Name        string      `json:"name" validate:"required,max=100"`
	AccountType AccountType `json:"account_type" validate:"required"`
}

func (input *NewAccount) validate(ctx context.Context, businessId string, id int) error {
	if !input.AccountType.IsValid() {
		return errors.New("invalid account type")
	}
	if id > 0 {
		if err := utils.ValidateResourceId[Account](ctx, businessId, id); err != nil {
			return err
		}
	}
	return utils.ValidateUnique[Account](ctx, businessId, "code", input.Code, id)
}

func CreateAccount(ctx context.Context, input *NewAccount) (*Account, error) {
	businessId, err := businessIdFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, businessId, 0); err != nil {
		return nil, err
	}
	account := Account{
		BusinessId:  businessId,
		Code:        input.Code,
		Name:        input.Name,
		AccountType: input.AccountType,
		IsActive:    utils.NewTrue(),
	}
	if err := config.GetDB().WithContext(ctx).Create(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func UpdateAccount(ctx context.Context, id int, input *NewAccount) (*Account, error) {
	businessId, err := businessIdFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, businessId, id); err != nil {
		return nil, err
	}
	account, err := utils.FetchModel[Account](ctx, businessId, id)
	if err != nil {
		return nil, err
	}
	err = config.GetDB().WithContext(ctx).Model(account).Updates(map[string]interface{}{
		"Code":        input.Code,
		"Name":        input.Name,
		"AccountType": input.AccountType,
	}).Error
	if err != nil {
		return nil, err
	}
	return account, nil
}
