package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmdatafocus/factory_backend/config"
	"github.com/mmdatafocus/factory_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Business struct {
	ID        string    `gorm:"primary_key;size:36" json:"id"`
	Name      string    `gorm:"index;size:100;not null" json:"name"`
	Email     string    `gorm:"size:255" json:"email"`
	Phone     string    `gorm:"size:20" json:"phone"`
	Address   string    `gorm:"type:text" json:"address"`
	Timezone  string    `gorm:"size:50" json:"timezone"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewBusiness struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Timezone string `json:"timezone"`
}

// default chart of accounts the ledger service posts purchases, openings and sales to
var defaultAccounts = []NewAccount{
	{Code: "1100", Name: "Cash", AccountType: AccountTypeAsset},
	{Code: "1200", Name: "Accounts Receivable", AccountType: AccountTypeAsset},
	{Code: "1300", Name: "Raw Material Inventory", AccountType: AccountTypeAsset},
	{Code: "1310", Name: "Work In Progress", AccountType: AccountTypeAsset},
	{Code: "1320", Name: "Finished Goods Inventory", AccountType: AccountTypeAsset},
	{Code: "2100", Name: "Accounts Payable", AccountType: AccountTypeLiability},
	{Code: "3100", Name: "Owner's Equity", AccountType: AccountTypeEquity},
	{Code: "4100", Name: "Sales", AccountType: AccountTypeIncome},
	{Code: "5100", Name: "Cost Of Goods Sold", AccountType: AccountTypeExpense},
	{Code: "5200", Name: "Freight And Clearing", AccountType: AccountTypeExpense},
	{Code: "5300", Name: "Re-baling Loss", AccountType: AccountTypeExpense},
}

// CreateBusiness creates the tenant with its base currency and default accounts.
func CreateBusiness(ctx context.Context, input *NewBusiness) (*Business, error) {
	if errs := utils.ValidateStruct(input); errs != nil {
		return nil, errors.New("invalid business input")
	}
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return nil, err
		}
	}
	timezone := strings.TrimSpace(input.Timezone)
	if timezone == "" {
		timezone = "Asia/Yangon"
	}
	business := Business{
		ID:       uuid.NewString(),
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
		Address:  input.Address,
		Timezone: timezone,
		IsActive: utils.NewTrue(),
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&business).Error; err != nil {
			return err
		}
		return createBusinessDefaults(tx, business.ID)
	})
	if err != nil {
		return nil, err
	}
	return &business, nil
}

func createBusinessDefaults(tx *gorm.DB, businessId string) error {
	usd := Currency{
		BusinessId:   businessId,
		Code:         BaseCurrencyCode,
		Name:         "US Dollar",
		ExchangeRate: decimal.NewFromInt(1),
		IsActive:     utils.NewTrue(),
	}
	if err := tx.Create(&usd).Error; err != nil {
		return err
	}
	for _, a := range defaultAccounts {
		account := Account{
			BusinessId:  businessId,
			Code:        a.Code,
			Name:        a.Name,
			AccountType: a.AccountType,
			IsActive:    utils.NewTrue(),
		}
		if err := tx.Create(&account).Error; err != nil {
			return err
		}
	}
	return nil
}

func GetBusiness(ctx context.Context) (*Business, error) {
	businessId, err := businessIdFromContext(ctx)
	if err != nil {
		return nil, err
	}
	var business Business
	if err := config.GetDB().WithContext(ctx).Where("id = ?", businessId).First(&business).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &business, nil
}
