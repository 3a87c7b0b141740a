package models

import (
	"context"
	"strings"
	"time"

	"github.com/mmdatafocus/factory_backend/config"
	"github.com/mmdatafocus/factory_backend/utils"
)

// Partner is a supplier, customer or cost provider (freight, clearing, commission).
type Partner struct {
	ID           int         `gorm:"primary_key" json:"id"`
	BusinessId   string      `gorm:"index;not null" json:"business_id"`
	Name         string      `gorm:"size:100;not null" json:"name"`
	PartnerType  PartnerType `gorm:"type:enum('Supplier','Customer','Provider','Both');not null" json:"partner_type"`
	Phone        string      `gorm:"size:20" json:"phone"`
	Address      string      `gorm:"type:text" json:"address"`
	CurrencyCode string      `gorm:"size:3" json:"currency_code"`
	IsActive     *bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewPartner struct {
	Name         string      `json:"name" validate:"required,max=100"`
	PartnerType  PartnerType `json:"partner_type" validate:"required"`
	Phone        string      `json:"phone"`
	Address      string      `json:"address"`
	CurrencyCode string      `json:"currency_code" validate:"omitempty,len=3"`
}

func (p Partner) IsSupplier() bool {
	return p.PartnerType == PartnerTypeSupplier || p.PartnerType == PartnerTypeBoth
}

func (p Partner) IsCustomer() bool {
	return p.PartnerType == PartnerTypeCustomer || p.PartnerType == PartnerTypeBoth
}

// validate input for both create & update. (id = 0 for create)
func (input *NewPartner) validate(ctx context.Context, businessId string, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[Partner](ctx, businessId, id); err != nil {
			return err
		}
	}
	if input.Phone != "" {
		phone, err := utils.FormatPhoneNumber(input.Phone, utils.CountryCode)
		if err != nil {
			return err
		}
		input.Phone = phone
	}
	input.CurrencyCode = strings.ToUpper(input.CurrencyCode)
	return utils.ValidateUnique[Partner](ctx, businessId, "name", input.Name, id)
}

func CreatePartner(ctx context.Context, input *NewPartner) (*Partner, error) {
	businessId, err := businessIdFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, businessId, 0); err != nil {
		return nil, err
	}
	partner := Partner{
		BusinessId:   businessId,
		Name:         input.Name,
		PartnerType:  input.PartnerType,
		Phone:        input.Phone,
		Address:      input.Address,
		CurrencyCode: input.CurrencyCode,
		IsActive:     utils.NewTrue(),
	}
	if err := config.GetDB().WithContext(ctx).Create(&partner).Error; err != nil {
		return nil, err
	}
	return &partner, nil
}

func UpdatePartner(ctx context.Context, id int, input *NewPartner) (*Partner, error) {
	businessId, err := businessIdFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, businessId, id); err != nil {
		return nil, err
	}
	partner, err := utils.FetchModel[Partner](ctx, businessId, id)
	if err != nil {
		return nil, err
	}
	err = config.GetDB().WithContext(ctx).Model(partner).Updates(map[string]interface{}{
		"Name":         input.Name,
		"PartnerType":  input.PartnerType,
		"Phone":        input.Phone,
		"Address":      input.Address,
		"CurrencyCode": input.CurrencyCode,
	}).Error
	if err != nil {
		return nil, err
	}
	return partner, nil
}
