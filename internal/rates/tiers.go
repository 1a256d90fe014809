package rates

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

var (
	// ErrMissingFallbackTier is returned when a tier table has no min_qty = 0 entry.
	ErrMissingFallbackTier = errors.New("tier table has no min_qty 0 fallback")
	// ErrInvalidTier is returned for negative breakpoints, negative prices or duplicate breakpoints.
	ErrInvalidTier = errors.New("invalid pricing tier")
	// ErrNonMonotonicTiers is returned when a higher breakpoint carries a higher price.
	ErrNonMonotonicTiers = errors.New("tier price increases with quantity")
)

// Tier is a quantity breakpoint and the unit price that applies from it upwards.
type Tier struct {
	MinQty int             `json:"min_qty"`
	Price  decimal.Decimal `json:"price"`
}

// Tiers is a set of breakpoints. Order is not significant; lookups sort a copy.
type Tiers []Tier

// Sorted returns a copy ordered by MinQty descending.
func (t Tiers) Sorted() Tiers {
	out := make(Tiers, len(t))
	copy(out, t)
	sort.SliceStable(out, func(i, j int) bool { return out[i].MinQty > out[j].MinQty })
	return out
}

// Lookup returns the price of the highest breakpoint not above qty.
func (t Tiers) Lookup(qty int) (decimal.Decimal, error) {
	tier, ok := t.match(qty)
	if !ok {
		return decimal.Zero, ErrMissingFallbackTier
	}
	return tier.Price, nil
}

func (t Tiers) match(qty int) (Tier, bool) {
	for _, tier := range t.Sorted() {
		if tier.MinQty <= qty {
			return tier, true
		}
	}
	return Tier{}, false
}

// Validate checks that exactly one tier applies to any non-negative quantity and that
// price never increases with quantity.
func (t Tiers) Validate() error {
	if len(t) == 0 {
		return ErrMissingFallbackTier
	}

	seen := make(map[int]struct{}, len(t))
	hasFallback := false
	for _, tier := range t {
		if tier.MinQty < 0 {
			return fmt.Errorf("%w: min_qty %d is negative", ErrInvalidTier, tier.MinQty)
		}
		if tier.Price.IsNegative() {
			return fmt.Errorf("%w: price %s at min_qty %d is negative", ErrInvalidTier, tier.Price, tier.MinQty)
		}
		if _, dup := seen[tier.MinQty]; dup {
			return fmt.Errorf("%w: duplicate min_qty %d", ErrInvalidTier, tier.MinQty)
		}
		seen[tier.MinQty] = struct{}{}
		if tier.MinQty == 0 {
			hasFallback = true
		}
	}
	if !hasFallback {
		return ErrMissingFallbackTier
	}

	sorted := t.Sorted()
	for i := 1; i < len(sorted); i++ {
		// sorted[i] is the lower breakpoint.
		if sorted[i-1].Price.GreaterThan(sorted[i].Price) {
			return fmt.Errorf("%w: %s at %d > %s at %d", ErrNonMonotonicTiers,
				sorted[i-1].Price, sorted[i-1].MinQty, sorted[i].Price, sorted[i].MinQty)
		}
	}
	return nil
}

// Label describes the band qty falls in, e.g. "1,000-2,999 units".
func (t Tiers) Label(qty int) string {
	sorted := t.Sorted()
	for i, tier := range sorted {
		if tier.MinQty > qty {
			continue
		}
		if i == 0 {
			return humanize.Comma(int64(tier.MinQty)) + "+ units"
		}
		upper := sorted[i-1].MinQty
		if tier.MinQty == 0 {
			return "below " + humanize.Comma(int64(upper)) + " units"
		}
		return fmt.Sprintf("%s-%s units", humanize.Comma(int64(tier.MinQty)), humanize.Comma(int64(upper-1)))
	}
	return ""
}

// MarkupTier is a quantity breakpoint expressed as a markup over unit cost.
type MarkupTier struct {
	MinQty        int             `json:"min_qty"`
	MarkupPercent decimal.Decimal `json:"markup_percent"`
}

// MarkupTiers generates selling-price tiers for devices that have none.
type MarkupTiers []MarkupTier

// Apply turns markups into selling prices over unitCost, rounded to cents.
func (m MarkupTiers) Apply(unitCost decimal.Decimal) Tiers {
	out := make(Tiers, 0, len(m))
	hundred := decimal.NewFromInt(100)
	for _, mt := range m {
		factor := decimal.NewFromInt(1).Add(mt.MarkupPercent.Div(hundred))
		out = append(out, Tier{MinQty: mt.MinQty, Price: unitCost.Mul(factor).Round(2)})
	}
	return out
}
