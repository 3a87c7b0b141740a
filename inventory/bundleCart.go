package inventory

import (
	"context"

	"github.com/mmdatafocus/factory_backend/models"
	"github.com/shopspring/decimal"
)

type NewBundleLine struct {
	ItemId  int             `json:"item_id"`
	Qty     decimal.Decimal `json:"qty"`
	RateFCY decimal.Decimal `json:"rate_fcy"`
}

// BundleCart builds a purchase of finished items at a fixed per-unit rate.
type BundleCart struct {
	CartBase
	Lines []models.BundlePurchaseItem `json:"lines"`
}

func NewBundleCart() *BundleCart {
	return &BundleCart{CartBase: CartBase{State: CartStateEmpty}}
}

func (c *BundleCart) SetHeader(s *models.Snapshot, header CartHeader) error {
	if err := c.setHeader(s, header); err != nil {
		return err
	}
	for i := range c.Lines {
		c.Lines[i].RateUSD = ToBase(c.Lines[i].RateFCY, c.rate())
		c.Lines[i].TotalUSD = ToBase(c.Lines[i].TotalFCY, c.rate())
	}
	c.touch(len(c.Lines))
	return nil
}

func (c *BundleCart) AddLine(ids IdIssuer, s *models.Snapshot, in NewBundleLine) (*models.BundlePurchaseItem, error) {
	if !in.Qty.IsPositive() {
		return nil, invalid("qty", "quantity must be greater than 0")
	}
	if !in.RateFCY.IsPositive() {
		return nil, invalid("rate_fcy", "rate must be greater than 0")
	}
	if s.Item(in.ItemId) == nil {
		return nil, notFound("item", in.ItemId)
	}
	totalFCY := in.Qty.Mul(in.RateFCY)
	line := models.BundlePurchaseItem{
		LineId:   ids.NewId(),
		ItemId:   in.ItemId,
		Qty:      in.Qty,
		RateFCY:  in.RateFCY,
		RateUSD:  ToBase(in.RateFCY, c.rate()),
		TotalFCY: totalFCY,
		TotalUSD: ToBase(totalFCY, c.rate()),
	}
	c.Lines = append(c.Lines, line)
	c.touch(len(c.Lines))
	return &c.Lines[len(c.Lines)-1], nil
}

func (c *BundleCart) RemoveLine(lineId string) error {
	for i, l := range c.Lines {
		if l.LineId == lineId {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			c.touch(len(c.Lines))
			return nil
		}
	}
	return &ValidationError{Field: "line", Message: "line not found", Err: ErrNotFound}
}

func (c *BundleCart) AddAdditionalCost(ids IdIssuer, s *models.Snapshot, in NewAdditionalCost) (*models.AdditionalCost, error) {
	cost, err := c.addCost(ids, s, in)
	if err != nil {
		return nil, err
	}
	c.touch(len(c.Lines))
	return cost, nil
}

func (c *BundleCart) RemoveAdditionalCost(lineId string) error {
	if err := c.removeCost(lineId); err != nil {
		return err
	}
	c.touch(len(c.Lines))
	return nil
}

func (c *BundleCart) Review(s *models.Snapshot) error {
	return c.review(s, len(c.Lines))
}

func (c *BundleCart) MarkPrinted() {
	c.Printed = true
}

func (c *BundleCart) Build() models.BundlePurchase {
	b := models.BundlePurchase{
		SupplierId:      c.Header.SupplierId,
		PurchaseDate:    c.Header.PurchaseDate,
		CurrencyCode:    c.Header.CurrencyCode,
		ExchangeRate:    c.rate(),
		ContainerNumber: c.Header.ContainerNumber,
		DivisionId:      c.Header.DivisionId,
		SubDivisionId:   c.Header.SubDivisionId,
		Printed:         c.Printed,
	}
	if b.CurrencyCode == "" {
		b.CurrencyCode = models.BaseCurrencyCode
	}
	for _, l := range c.Lines {
		line := l
		line.ID = 0
		b.Items = append(b.Items, line)
		b.TotalQty = b.TotalQty.Add(l.Qty)
		b.MaterialCostFCY = b.MaterialCostFCY.Add(l.TotalFCY)
		b.MaterialCostUSD = b.MaterialCostUSD.Add(l.TotalUSD)
	}
	b.AdditionalCosts = append(b.AdditionalCosts, c.Costs...)
	b.AdditionalCostUSD = c.costsUSD()
	b.TotalLandedCostUSD = b.MaterialCostUSD.Add(b.AdditionalCostUSD)
	return b
}

func (c *BundleCart) Finalize(ctx context.Context, dc DataContext) (*models.BundlePurchase, error) {
	if c.State != CartStateReviewing {
		return nil, invalidErr("state", ErrNotReviewed)
	}
	bundle := c.Build()
	if err := dc.AddBundlePurchase(ctx, &bundle); err != nil {
		return nil, err
	}
	c.Lines = nil
	c.reset()
	return &bundle, nil
}
