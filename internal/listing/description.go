package listing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/MichaelEbbert/ebaysales/internal/model"
)

// Disclosures are appended to every description.
var Disclosures = [2]string{
	"Please review all photos carefully; the card pictured is the exact card you will receive.",
	"Condition is the seller's opinion, so please ask any questions before bidding.",
}

// Shipping table column widths.
const (
	colName      = 19
	colMethod    = 16
	colTracking  = 8
	colInsurance = 9
)

// GenerateDescription builds the listing description for c. A nil tier
// table falls back to DefaultTiers. Private notes are never included.
func GenerateDescription(c *model.Card, tiers []Tier) (string, error) {
	header, err := descriptionHeader(c)
	if err != nil {
		return "", err
	}
	if tiers == nil {
		tiers = DefaultTiers()
	}

	lines := []string{header}
	if c.Category != model.CategorySports && c.SetName != "" {
		lines = append(lines, "Set: "+c.SetName)
	}
	lines = append(lines,
		"Condition: "+c.ConditionDisplay(),
		"Quantity: "+strconv.Itoa(c.Quantity),
		"",
		Disclosures[0],
		Disclosures[1],
	)

	if notes := strings.TrimSpace(c.Notes); notes != "" {
		lines = append(lines, "", "Notes:", notes)
	}

	lines = append(lines, "", "Shipping Options:")
	lines = append(lines, shippingRow("Option", "Method", "Track", "Insured", "Price"))
	for _, t := range tiers {
		lines = append(lines, shippingRow(t.Name, t.Method, yesNo(t.Tracking), yesNo(t.Insurance), "$"+t.Price.StringFixed(2)))
	}

	return strings.Join(lines, "\n"), nil
}

func descriptionHeader(c *model.Card) (string, error) {
	switch c.Category {
	case model.CategoryMTG:
		return "Magic: The Gathering - " + c.Name, nil
	case model.CategoryPokemon:
		return "Pokemon - " + c.Name, nil
	case model.CategorySports:
		var parts []string
		for _, s := range []string{c.Year, c.SetName, c.PlayerName} {
			if s != "" {
				parts = append(parts, s)
			}
		}
		if len(parts) == 0 {
			return c.Name, nil
		}
		return strings.Join(parts, " "), nil
	}
	_, err := model.ParseCategory(string(c.Category))
	return "", err
}

func shippingRow(name, method, tracking, insurance, price string) string {
	return cell(name, colName) + cell(method, colMethod) + cell(tracking, colTracking) + cell(insurance, colInsurance) + price
}

// cell pads s to width, truncating so at least one space separates columns.
func cell(s string, width int) string {
	if r := []rune(s); len(r) >= width {
		s = string(r[:width-1])
	}
	return fmt.Sprintf("%-*s", width, s)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
