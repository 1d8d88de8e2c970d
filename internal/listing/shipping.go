package listing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/MichaelEbbert/ebaysales/internal/model"
)

// Tier is one shipping option offered to buyers.
type Tier struct {
	Name           string           `json:"name" yaml:"name"`
	Method         string           `json:"method" yaml:"method"`
	Tracking       bool             `json:"tracking" yaml:"tracking"`
	Insurance      bool             `json:"insurance" yaml:"insurance"`
	InsuranceLimit *decimal.Decimal `json:"insurance_limit,omitempty" yaml:"insurance_limit,omitempty"`
	Price          decimal.Decimal  `json:"price" yaml:"price"`
	Cost           decimal.Decimal  `json:"cost" yaml:"cost"`
	LabelSize      string           `json:"label_size,omitempty" yaml:"label_size,omitempty"`
	Packing        string           `json:"packing" yaml:"packing"`
}

// Thresholds are the price ceilings for the three cheaper tiers.
type Thresholds struct {
	EconomyMax    decimal.Decimal `json:"economy_max" yaml:"economy_max"`
	StandardMax   decimal.Decimal `json:"standard_max" yaml:"standard_max"`
	Insured100Max decimal.Decimal `json:"insured_100_max" yaml:"insured_100_max"`
}

func cents(n int64) decimal.Decimal { return decimal.New(n, -2) }

func limit(n int64) *decimal.Decimal {
	d := decimal.NewFromInt(n)
	return &d
}

// DefaultTiers returns the built-in tariff table, used when no override has
// been saved. A fresh slice is returned on every call.
func DefaultTiers() []Tier {
	return []Tier{
		{
			Name:    "Economy",
			Method:  "Stamped Letter",
			Price:   cents(100),
			Cost:    cents(75),
			Packing: "Penny sleeve and top loader taped inside a team bag, plain white envelope.",
		},
		{
			Name:      "Standard",
			Method:    "Ground Adv.",
			Tracking:  true,
			Price:     cents(450),
			Cost:      cents(400),
			LabelSize: "4x6",
			Packing:   "Penny sleeve and top loader in a bubble mailer.",
		},
		{
			Name:           "Insured $100",
			Method:         "Ground Adv.",
			Tracking:       true,
			Insurance:      true,
			InsuranceLimit: limit(100),
			Price:          cents(650),
			Cost:           cents(490),
			LabelSize:      "4x6",
			Packing:        "Penny sleeve and top loader between cardboard in a bubble mailer.",
		},
		{
			Name:           "Insured $250",
			Method:         "Ground Adv.",
			Tracking:       true,
			Insurance:      true,
			InsuranceLimit: limit(250),
			Price:          cents(850),
			Cost:           cents(575),
			LabelSize:      "4x6",
			Packing:        "Semi-rigid holder between cardboard in a bubble mailer.",
		},
	}
}

// DefaultThresholds returns the built-in tier thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		EconomyMax:    cents(1999),
		StandardMax:   cents(4999),
		Insured100Max: cents(9999),
	}
}

var oneCent = cents(1)

// RecommendTier picks the tier for a sale price. A price has to exceed a
// threshold by at least a cent to move up, so a price equal to a threshold
// stays in the cheaper tier.
func RecommendTier(tiers []Tier, price decimal.Decimal, th Thresholds) (Tier, error) {
	var idx int
	switch {
	case price.GreaterThanOrEqual(th.Insured100Max.Add(oneCent)):
		idx = 3
	case price.GreaterThanOrEqual(th.StandardMax.Add(oneCent)):
		idx = 2
	case price.GreaterThanOrEqual(th.EconomyMax.Add(oneCent)):
		idx = 1
	}
	return tierAt(tiers, idx)
}

// RecommendTierForCard picks a tier from the card's starting bid using the
// fixed 20/50/100 breakpoints. Used for previews before a sale price exists.
func RecommendTierForCard(tiers []Tier, c *model.Card) (Tier, error) {
	var idx int
	switch bid := c.StartingBid; {
	case bid.GreaterThanOrEqual(decimal.NewFromInt(100)):
		idx = 3
	case bid.GreaterThanOrEqual(decimal.NewFromInt(50)):
		idx = 2
	case bid.GreaterThanOrEqual(decimal.NewFromInt(20)):
		idx = 1
	}
	return tierAt(tiers, idx)
}

// tierAt returns tiers[idx], falling back to the last tier for short tables.
func tierAt(tiers []Tier, idx int) (Tier, error) {
	if len(tiers) == 0 {
		return Tier{}, &model.ValidationError{Field: "tiers", Message: "shipping tariff table is empty"}
	}
	if idx >= len(tiers) {
		idx = len(tiers) - 1
	}
	return tiers[idx], nil
}

// ValidateTiers checks a tariff table before it replaces the current one.
func ValidateTiers(tiers []Tier) error {
	if len(tiers) == 0 {
		return &model.ValidationError{Field: "tiers", Message: "shipping tariff table is empty"}
	}
	for i, t := range tiers {
		if t.Name == "" {
			return &model.ValidationError{Field: "tiers", Message: fmt.Sprintf("tier %d has no name", i)}
		}
		if t.Price.IsNegative() || t.Cost.IsNegative() {
			return &model.ValidationError{Field: "tiers", Message: fmt.Sprintf("tier %q has a negative amount", t.Name)}
		}
		if t.InsuranceLimit != nil && !t.Insurance {
			return &model.ValidationError{Field: "tiers", Message: fmt.Sprintf("tier %q has an insurance limit without insurance", t.Name)}
		}
	}
	return nil
}

// Validate checks that the thresholds are non-negative and ascending.
func (th Thresholds) Validate() error {
	if th.EconomyMax.IsNegative() {
		return &model.ValidationError{Field: "economy_max", Message: "must not be negative"}
	}
	if !th.EconomyMax.LessThan(th.StandardMax) || !th.StandardMax.LessThan(th.Insured100Max) {
		return &model.ValidationError{Field: "thresholds", Message: "must be strictly ascending"}
	}
	return nil
}
