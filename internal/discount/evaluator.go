package discount

import (
	"slices"
	"time"
)

// ActiveAt reports whether d is enabled and now falls inside its optional
// [StartDate, EndDate] window. Both bounds are inclusive.
func ActiveAt(d Discount, now time.Time) bool {
	if !d.IsActive {
		return false
	}
	if d.StartDate != nil && now.Before(*d.StartDate) {
		return false
	}
	if d.EndDate != nil && now.After(*d.EndDate) {
		return false
	}
	return true
}

// AppliesTo reports whether d targets productID.
func AppliesTo(d Discount, productID uint) bool {
	return d.IsGeneric || slices.Contains(d.ProductIDs, productID)
}

func apply(d Discount, price float64) float64 {
	switch d.Type {
	case TypePercentage:
		return price * (100 - d.Value) / 100
	case TypeFixed:
		return price - d.Value
	default:
		return price
	}
}

// CalculateDiscountedPrice picks the discount giving the lowest price for
// productID among those active at now. Ties keep the first one in list order.
// The result never goes below zero.
func CalculateDiscountedPrice(originalPrice float64, productID uint, now time.Time, discounts []Discount) PriceResult {
	res := PriceResult{Price: originalPrice, OriginalPrice: originalPrice}

	var best *Discount
	bestPrice := originalPrice
	for i := range discounts {
		d := discounts[i]
		if !ActiveAt(d, now) || !AppliesTo(d, productID) || !d.Type.Valid() {
			continue
		}
		p := apply(d, originalPrice)
		if best == nil || p < bestPrice {
			best = &discounts[i]
			bestPrice = p
		}
	}

	if best == nil {
		return res
	}

	if bestPrice < 0 {
		bestPrice = 0
	}
	res.Price = bestPrice
	res.Discount = &Applied{
		ID:    best.ID,
		Name:  best.Name,
		Type:  best.Type,
		Value: best.Value,
	}
	return res
}

// Pricer evaluates many products against one discount snapshot.
type Pricer struct {
	discounts []Discount
	now       time.Time
}

func NewPricer(discounts []Discount, now time.Time) *Pricer {
	return &Pricer{discounts: discounts, now: now}
}

func (p *Pricer) Price(productID uint, originalPrice float64) PriceResult {
	if p == nil {
		return PriceResult{Price: originalPrice, OriginalPrice: originalPrice}
	}
	return CalculateDiscountedPrice(originalPrice, productID, p.now, p.discounts)
}
