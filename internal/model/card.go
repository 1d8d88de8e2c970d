package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Category classifies a card and decides which optional fields are used when
// listing text is generated.
type Category string

// Card categories.
const (
	CategorySports  Category = "sports"
	CategoryMTG     Category = "mtg"
	CategoryPokemon Category = "pokemon"
)

// ParseCategory returns the category for s or a validation error.
func ParseCategory(s string) (Category, error) {
	switch c := Category(s); c {
	case CategorySports, CategoryMTG, CategoryPokemon:
		return c, nil
	}
	return "", &ValidationError{Field: "category", Message: fmt.Sprintf("unknown category %q", s)}
}

// DefaultStartingBid is used when a card is entered without a starting bid.
var DefaultStartingBid = decimal.New(50, -2)

// Card is a sellable unit: one or more copies of the same trading card.
type Card struct {
	ID             int64           `json:"id"`
	Category       Category        `json:"category"`
	Name           string          `json:"name,omitempty"`
	SetName        string          `json:"set_name,omitempty"`
	CardNumber     string          `json:"card_number,omitempty"`
	PlayerName     string          `json:"player_name,omitempty"`
	Year           string          `json:"year,omitempty"`
	Condition      string          `json:"condition,omitempty"`
	Graded         bool            `json:"graded"`
	GradingCompany string          `json:"grading_company,omitempty"`
	Grade          string          `json:"grade,omitempty"`
	Finish         string          `json:"finish,omitempty"`
	Quantity       int             `json:"quantity"`
	StartingBid    decimal.Decimal `json:"starting_bid"`
	Notes          string          `json:"notes,omitempty"`
	PrivateNotes   string          `json:"private_notes,omitempty"`
	ImageFront     string          `json:"image_front,omitempty"`
	ImageBack      string          `json:"image_back,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ConditionDisplay returns "{company} {grade}" for graded cards and the raw
// condition code otherwise.
func (c *Card) ConditionDisplay() string {
	if c.Graded {
		return c.GradingCompany + " " + c.Grade
	}
	return c.Condition
}

// Validate checks the invariants a card must satisfy before it is stored.
func (c *Card) Validate() error {
	if _, err := ParseCategory(string(c.Category)); err != nil {
		return err
	}
	if c.Quantity < 1 {
		return &ValidationError{Field: "quantity", Message: "must be at least 1"}
	}
	if c.StartingBid.IsNegative() {
		return &ValidationError{Field: "starting_bid", Message: "must not be negative"}
	}
	if c.Graded {
		if c.GradingCompany == "" || c.Grade == "" {
			return &ValidationError{Field: "grade", Message: "graded cards need a grading company and grade"}
		}
	} else if c.Condition == "" {
		return &ValidationError{Field: "condition", Message: "required"}
	}
	return nil
}
