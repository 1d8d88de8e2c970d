// Package listing derives marketplace content from cards and drives the
// listing lifecycle: titles, descriptions, shipping tiers, auction end
// times and status transitions. Everything here is pure; callers supply
// the clock and persist the results.
package listing

import (
	"strconv"
	"strings"

	"github.com/MichaelEbbert/ebaysales/internal/model"
)

// dualLandSets are the printings whose dual lands get the "Dual Land" tag.
var dualLandSets = map[string]bool{
	"Alpha":     true,
	"Beta":      true,
	"Unlimited": true,
	"Revised":   true,
}

// dualLandNames are the ten original dual lands.
var dualLandNames = map[string]bool{
	"Badlands":        true,
	"Bayou":           true,
	"Plateau":         true,
	"Savannah":        true,
	"Scrubland":       true,
	"Taiga":           true,
	"Tropical Island": true,
	"Tundra":          true,
	"Underground Sea": true,
	"Volcanic Island": true,
}

// IsDualLand reports whether the card is an original dual land from one of
// the early core sets. Matching is exact and case-sensitive.
func IsDualLand(c *model.Card) bool {
	return c.Category == model.CategoryMTG && dualLandSets[c.SetName] && dualLandNames[c.Name]
}

// Title builds the marketplace title. Empty fragments are skipped and the
// rest joined with single spaces.
func Title(c *model.Card) (string, error) {
	var parts []string
	add := func(s string) {
		if s != "" {
			parts = append(parts, s)
		}
	}

	switch c.Category {
	case model.CategorySports:
		add(c.Year)
		add(c.SetName)
		add(c.PlayerName)
		if c.CardNumber != "" {
			add("#" + c.CardNumber)
		}
		add(c.Name)
	case model.CategoryMTG, model.CategoryPokemon:
		if c.Category == model.CategoryMTG {
			add("MTG")
		}
		add(c.SetName)
		add(c.Name)
		if IsDualLand(c) {
			add("Dual Land")
		}
	default:
		_, err := model.ParseCategory(string(c.Category))
		return "", err
	}

	add("x" + strconv.Itoa(c.Quantity))
	add(c.ConditionDisplay())
	return strings.Join(parts, " "), nil
}
