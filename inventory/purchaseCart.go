package inventory

import (
	"context"
	"strconv"
	"strings"

	"github.com/mmdatafocus/factory_backend/models"
	"github.com/shopspring/decimal"
)

type NewCartLine struct {
	OriginalTypeId    int             `json:"original_type_id"`
	OriginalProductId *int            `json:"original_product_id"`
	Weight            decimal.Decimal `json:"weight"`
	GrossPrice        decimal.Decimal `json:"gross_price"`
	Discount          decimal.Decimal `json:"discount"`
	Surcharge         decimal.Decimal `json:"surcharge"`
}

// PurchaseCart builds one raw material purchase:
// Empty -> Accumulating -> Reviewing -> (saved) -> Empty.
type PurchaseCart struct {
	CartBase
	BatchNumber     string                        `json:"batch_number"`
	NextBatchNumber string                        `json:"next_batch_number"`
	Lines           []models.PurchaseOriginalItem `json:"lines"`
}

func NewPurchaseCart(nextBatchNumber string) *PurchaseCart {
	return &PurchaseCart{
		CartBase:        CartBase{State: CartStateEmpty},
		NextBatchNumber: nextBatchNumber,
	}
}

// SetHeader replaces the header and reprices existing lines at the new rate.
func (c *PurchaseCart) SetHeader(s *models.Snapshot, header CartHeader, batchNumber string) error {
	if err := c.setHeader(s, header); err != nil {
		return err
	}
	c.BatchNumber = strings.TrimSpace(batchNumber)
	for i := range c.Lines {
		c.Lines[i].TotalCostUSD = ToBase(c.Lines[i].TotalCostFCY, c.rate())
	}
	c.touch(len(c.Lines))
	return nil
}

func (c *PurchaseCart) AddLine(ids IdIssuer, s *models.Snapshot, in NewCartLine) (*models.PurchaseOriginalItem, error) {
	if !in.Weight.IsPositive() {
		return nil, invalid("weight", "weight must be greater than 0")
	}
	if !in.GrossPrice.IsPositive() {
		return nil, invalid("gross_price", "gross price must be greater than 0")
	}
	if in.Discount.IsNegative() || in.Surcharge.IsNegative() {
		return nil, invalid("discount", "discount and surcharge cannot be negative")
	}
	originalType := s.OriginalType(in.OriginalTypeId)
	if originalType == nil {
		return nil, notFound("original_type", in.OriginalTypeId)
	}
	if in.OriginalProductId != nil {
		product := s.OriginalProduct(*in.OriginalProductId)
		if product == nil {
			return nil, notFound("original_product", *in.OriginalProductId)
		}
		if product.OriginalTypeId != originalType.ID {
			return nil, invalid("original_product_id", "product belongs to another material type")
		}
	}

	netPrice := in.GrossPrice.Sub(in.Discount).Add(in.Surcharge)
	totalFCY := in.Weight.Mul(netPrice)
	line := models.PurchaseOriginalItem{
		LineId:            ids.NewId(),
		OriginalTypeId:    in.OriginalTypeId,
		OriginalProductId: in.OriginalProductId,
		Weight:            in.Weight,
		Qty:               safeDiv(in.Weight, originalType.PackingSize),
		GrossPrice:        in.GrossPrice,
		Discount:          in.Discount,
		Surcharge:         in.Surcharge,
		NetPrice:          netPrice,
		TotalCostFCY:      totalFCY,
		TotalCostUSD:      ToBase(totalFCY, c.rate()),
	}
	c.Lines = append(c.Lines, line)
	c.touch(len(c.Lines))
	return &c.Lines[len(c.Lines)-1], nil
}

func (c *PurchaseCart) RemoveLine(lineId string) error {
	for i, l := range c.Lines {
		if l.LineId == lineId {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			c.touch(len(c.Lines))
			return nil
		}
	}
	return &ValidationError{Field: "line", Message: "line not found", Err: ErrNotFound}
}

func (c *PurchaseCart) AddAdditionalCost(ids IdIssuer, s *models.Snapshot, in NewAdditionalCost) (*models.AdditionalCost, error) {
	cost, err := c.addCost(ids, s, in)
	if err != nil {
		return nil, err
	}
	c.touch(len(c.Lines))
	return cost, nil
}

func (c *PurchaseCart) RemoveAdditionalCost(lineId string) error {
	if err := c.removeCost(lineId); err != nil {
		return err
	}
	c.touch(len(c.Lines))
	return nil
}

// Review validates the cart and moves the suggested batch number past any
// purchase saved since the draft was started.
func (c *PurchaseCart) Review(s *models.Snapshot) error {
	if err := c.review(s, len(c.Lines)); err != nil {
		return err
	}
	c.NextBatchNumber = suggestBatchNumber(s, c.NextBatchNumber)
	return nil
}

// suggestBatchNumber returns current unless a saved purchase already uses it or a later number.
func suggestBatchNumber(s *models.Snapshot, current string) string {
	var highest int64
	for _, p := range s.Purchases {
		n := p.SequenceNo
		if n == 0 {
			n = models.BatchSequence(p.BatchNumber)
		}
		if n > highest {
			highest = n
		}
	}
	if highest == 0 || models.BatchSequence(current) > highest {
		return current
	}
	return strconv.FormatInt(highest+1, 10)
}

// MarkPrinted records that the review sheet was printed; saving does not depend on it.
func (c *PurchaseCart) MarkPrinted() {
	c.Printed = true
}

func (c *PurchaseCart) batchNumber() string {
	if c.BatchNumber != "" {
		return c.BatchNumber
	}
	return c.NextBatchNumber
}

// Build aggregates the cart into a purchase record without persisting it.
func (c *PurchaseCart) Build() models.Purchase {
	p := models.Purchase{
		SupplierId:      c.Header.SupplierId,
		BatchNumber:     c.batchNumber(),
		PurchaseDate:    c.Header.PurchaseDate,
		CurrencyCode:    c.Header.CurrencyCode,
		ExchangeRate:    c.rate(),
		ContainerNumber: c.Header.ContainerNumber,
		DivisionId:      c.Header.DivisionId,
		SubDivisionId:   c.Header.SubDivisionId,
		Printed:         c.Printed,
	}
	if p.CurrencyCode == "" {
		p.CurrencyCode = models.BaseCurrencyCode
	}
	for _, l := range c.Lines {
		line := l
		line.ID = 0
		p.Items = append(p.Items, line)
		p.TotalWeight = p.TotalWeight.Add(l.Weight)
		p.TotalQty = p.TotalQty.Add(l.Qty)
		p.MaterialCostFCY = p.MaterialCostFCY.Add(l.TotalCostFCY)
		p.MaterialCostUSD = p.MaterialCostUSD.Add(l.TotalCostUSD)
	}
	p.AdditionalCosts = append(p.AdditionalCosts, c.Costs...)
	p.AdditionalCostUSD = c.costsUSD()
	p.TotalLandedCostUSD = p.MaterialCostUSD.Add(p.AdditionalCostUSD)
	p.LandedCostPerKg = LandedCostPerKg(p.TotalLandedCostUSD, p.TotalWeight)

	if len(c.Lines) > 0 {
		first := c.Lines[0]
		p.OriginalTypeId = first.OriginalTypeId
		p.OriginalProductId = first.OriginalProductId
		p.Weight = first.Weight
		p.Qty = first.Qty
		p.CostPerKg = first.NetPrice
	}
	return p
}

// Finalize saves a reviewed cart. On failure the cart is left untouched for retry.
func (c *PurchaseCart) Finalize(ctx context.Context, dc DataContext) (*models.Purchase, error) {
	if c.State != CartStateReviewing {
		return nil, invalidErr("state", ErrNotReviewed)
	}
	purchase := c.Build()
	if err := dc.AddPurchase(ctx, &purchase); err != nil {
		return nil, err
	}
	c.Lines = nil
	c.reset()
	c.NextBatchNumber = nextBatchAfter(purchase.BatchNumber, c.NextBatchNumber)
	c.BatchNumber = ""
	return &purchase, nil
}

// nextBatchAfter advances the counter by one past the saved batch when it is
// numeric, else past the previous suggestion.
func nextBatchAfter(saved string, suggested string) string {
	if n := models.BatchSequence(saved); n > 0 {
		if s := models.BatchSequence(suggested); s > n+1 {
			return suggested
		}
		return strconv.FormatInt(n+1, 10)
	}
	if n := models.BatchSequence(suggested); n > 0 {
		return strconv.FormatInt(n+1, 10)
	}
	return strconv.FormatInt(models.DefaultFirstBatchNumber, 10)
}
