package inventory

import (
	"strings"
	"time"

	"github.com/mmdatafocus/factory_backend/models"
	"github.com/shopspring/decimal"
)

type CartState string

const (
	CartStateEmpty        CartState = "Empty"
	CartStateAccumulating CartState = "Accumulating"
	CartStateReviewing    CartState = "Reviewing"
)

// CartHeader is shared by purchase and bundle carts. A positive ExchangeRate
// (or RateOverride, which wins) replaces the rate table's value.
type CartHeader struct {
	SupplierId      int              `json:"supplier_id"`
	PurchaseDate    time.Time        `json:"purchase_date"`
	CurrencyCode    string           `json:"currency_code"`
	ExchangeRate    decimal.Decimal  `json:"exchange_rate"`
	ContainerNumber *string          `json:"container_number"`
	DivisionId      *int             `json:"division_id"`
	SubDivisionId   *int             `json:"sub_division_id"`
	RateOverride    *decimal.Decimal `json:"rate_override,omitempty"`
}

type NewAdditionalCost struct {
	CostType     models.CostType  `json:"cost_type" validate:"required"`
	ProviderId   int              `json:"provider_id"`
	CurrencyCode string           `json:"currency_code"`
	ExchangeRate *decimal.Decimal `json:"exchange_rate"`
	AmountFCY    decimal.Decimal  `json:"amount_fcy"`
}

// CartBase carries the header, additional costs and state machine common to both carts.
type CartBase struct {
	Header  CartHeader              `json:"header"`
	Costs   []models.AdditionalCost `json:"costs"`
	State   CartState               `json:"state"`
	Printed bool                    `json:"printed"`
}

func (c *CartBase) rate() decimal.Decimal {
	if c.Header.ExchangeRate.IsPositive() {
		return c.Header.ExchangeRate
	}
	return one
}

// touch moves a reviewed cart back to Accumulating after any edit.
func (c *CartBase) touch(lineCount int) {
	if lineCount == 0 && len(c.Costs) == 0 {
		c.State = CartStateEmpty
	} else {
		c.State = CartStateAccumulating
	}
	c.Printed = false
}

// setHeader validates the header and resolves its exchange rate.
func (c *CartBase) setHeader(s *models.Snapshot, header CartHeader) error {
	if header.SupplierId > 0 {
		p := s.Partner(header.SupplierId)
		if p == nil {
			return notFound("supplier", header.SupplierId)
		}
		if !p.IsSupplier() {
			return invalidf("supplier_id", "%s is not a supplier", p.Name)
		}
	}
	if header.DivisionId != nil && s.Division(*header.DivisionId) == nil {
		return notFound("division", *header.DivisionId)
	}
	if header.SubDivisionId != nil {
		sub := s.SubDivision(*header.SubDivisionId)
		if sub == nil {
			return notFound("sub_division", *header.SubDivisionId)
		}
		if header.DivisionId != nil && sub.DivisionId != *header.DivisionId {
			return invalid("sub_division_id", "sub division belongs to another division")
		}
	}
	header.CurrencyCode = strings.ToUpper(strings.TrimSpace(header.CurrencyCode))
	if header.CurrencyCode == "" {
		header.CurrencyCode = models.BaseCurrencyCode
	}
	explicit := header.RateOverride
	if explicit == nil && header.ExchangeRate.IsPositive() {
		given := header.ExchangeRate
		explicit = &given
	}
	rate, err := resolveRate(NewRateTable(s.Currencies), header.CurrencyCode, explicit, "exchange_rate")
	if err != nil {
		return err
	}
	header.ExchangeRate = rate
	if header.ContainerNumber != nil {
		cn := strings.TrimSpace(*header.ContainerNumber)
		if cn == "" {
			header.ContainerNumber = nil
		} else {
			header.ContainerNumber = &cn
		}
	}
	c.Header = header
	return nil
}

func (c *CartBase) addCost(ids IdIssuer, s *models.Snapshot, in NewAdditionalCost) (*models.AdditionalCost, error) {
	if !in.CostType.IsValid() {
		return nil, invalid("cost_type", "invalid cost type")
	}
	if in.ProviderId <= 0 {
		return nil, invalid("provider_id", "provider is required")
	}
	if s.Partner(in.ProviderId) == nil {
		return nil, notFound("provider", in.ProviderId)
	}
	if !in.AmountFCY.IsPositive() {
		return nil, invalid("amount_fcy", "amount must be positive")
	}
	code := strings.ToUpper(strings.TrimSpace(in.CurrencyCode))
	if code == "" {
		code = models.BaseCurrencyCode
	}
	rate, err := resolveRate(NewRateTable(s.Currencies), code, in.ExchangeRate, "exchange_rate")
	if err != nil {
		return nil, err
	}
	cost := models.AdditionalCost{
		LineId:       ids.NewId(),
		CostType:     in.CostType,
		ProviderId:   in.ProviderId,
		CurrencyCode: code,
		ExchangeRate: rate,
		AmountFCY:    in.AmountFCY,
		AmountUSD:    ToBase(in.AmountFCY, rate),
	}
	c.Costs = append(c.Costs, cost)
	return &c.Costs[len(c.Costs)-1], nil
}

func (c *CartBase) removeCost(lineId string) error {
	for i, cost := range c.Costs {
		if cost.LineId == lineId {
			c.Costs = append(c.Costs[:i], c.Costs[i+1:]...)
			return nil
		}
	}
	return &ValidationError{Field: "cost", Message: "additional cost not found", Err: ErrNotFound}
}

func (c *CartBase) costsUSD() decimal.Decimal {
	var total decimal.Decimal
	for _, cost := range c.Costs {
		total = total.Add(cost.AmountUSD)
	}
	return total
}

// review runs the checks shared by both carts.
func (c *CartBase) review(s *models.Snapshot, lineCount int) error {
	if lineCount == 0 {
		return invalidErr("lines", ErrEmptyCart)
	}
	if c.Header.SupplierId <= 0 {
		return invalid("supplier_id", "supplier is required")
	}
	if s.Partner(c.Header.SupplierId) == nil {
		return notFound("supplier", c.Header.SupplierId)
	}
	if c.Header.ContainerNumber != nil && ContainerNumberInUse(s, *c.Header.ContainerNumber) {
		return &ValidationError{Field: "container_number", Message: "container number " + *c.Header.ContainerNumber + " is already used", Err: ErrContainerInUse}
	}
	c.State = CartStateReviewing
	return nil
}

func (c *CartBase) reset() {
	c.Costs = nil
	c.State = CartStateEmpty
	c.Printed = false
	c.Header.ContainerNumber = nil
}

// ContainerNumberInUse checks purchases and bundle purchases.
func ContainerNumberInUse(s *models.Snapshot, containerNumber string) bool {
	cn := strings.TrimSpace(containerNumber)
	if cn == "" {
		return false
	}
	for _, p := range s.Purchases {
		if p.ContainerNumber != nil && strings.EqualFold(strings.TrimSpace(*p.ContainerNumber), cn) {
			return true
		}
	}
	for _, b := range s.BundlePurchases {
		if b.ContainerNumber != nil && strings.EqualFold(strings.TrimSpace(*b.ContainerNumber), cn) {
			return true
		}
	}
	return false
}

// LandedCostPerKg is 0 when there is no weight.
func LandedCostPerKg(totalLandedCostUSD decimal.Decimal, totalWeight decimal.Decimal) decimal.Decimal {
	return safeDiv(totalLandedCostUSD, totalWeight)
}
