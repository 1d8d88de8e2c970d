package web

import (
	"database/sql"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MichaelEbbert/ebaysales/internal/listing"
	"github.com/MichaelEbbert/ebaysales/internal/model"
	webembed "github.com/MichaelEbbert/ebaysales/web"
)

// Templates holds parsed HTML templates.
type Templates struct {
	templates map[string]*template.Template
}

var statusNames = map[model.Status]string{
	model.StatusDraft:       "Draft",
	model.StatusScheduled:   "Scheduled",
	model.StatusListed:      "Listed",
	model.StatusEndedUnsold: "Ended, unsold",
	model.StatusEndedSold:   "Sold",
	model.StatusPaid:        "Paid",
	model.StatusShipped:     "Shipped",
	model.StatusComplete:    "Complete",
}

// FuncMap returns the template function map.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"statusName": func(s model.Status) string {
			if name, ok := statusNames[s]; ok {
				return name
			}
			return string(s)
		},
		"money": money,
		"eastern": func(t time.Time) string {
			if t.IsZero() {
				return "-"
			}
			return t.In(listing.AuctionLocation()).Format("Mon Jan 2, 3:04 PM MST")
		},
		"cardLabel": cardLabel,
	}
}

// money formats an amount as dollars, or "-" when unknown.
func money(v any) string {
	switch d := v.(type) {
	case decimal.Decimal:
		return "$" + d.StringFixed(2)
	case *decimal.Decimal:
		if d != nil {
			return "$" + d.StringFixed(2)
		}
	case decimal.NullDecimal:
		if d.Valid {
			return "$" + d.Decimal.StringFixed(2)
		}
	}
	return "-"
}

// cardLabel is the short name shown in tables.
func cardLabel(c model.Card) string {
	var parts []string
	for _, p := range []string{c.Year, c.PlayerName, c.Name, c.SetName} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("Card #%d", c.ID)
	}
	return strings.Join(parts, " ")
}

// LoadTemplates parses all page templates with the layout and shared
// partials.
func LoadTemplates() (*Templates, error) {
	tfs := webembed.TemplatesFS()

	var shared []string
	for _, name := range []string{"layout.html", "listings.html"} {
		b, err := fs.ReadFile(tfs, name)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", name, err)
		}
		shared = append(shared, string(b))
	}

	pages := []string{
		"login.html",
		"dashboard.html",
		"report.html",
		"card.html",
	}

	ts := &Templates{templates: make(map[string]*template.Template)}

	for _, page := range pages {
		pageBytes, err := fs.ReadFile(tfs, page)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", page, err)
		}

		tmpl := template.New(page).Funcs(FuncMap())
		for _, src := range shared {
			if tmpl, err = tmpl.Parse(src); err != nil {
				return nil, fmt.Errorf("parsing shared templates for %s: %w", page, err)
			}
		}
		tmpl, err = tmpl.Parse(string(pageBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}

		ts.templates[page] = tmpl
	}

	return ts, nil
}

// Render renders a template with the given data.
func (ts *Templates) Render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := ts.templates[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
	}
}

// PageData is the base data passed to all templates.
type PageData struct {
	Title         string
	Authenticated bool
	Error         string
}

// Server holds all dependencies for page handlers.
type Server struct {
	DB        *sql.DB
	Templates *Templates
	JWTSecret string
	Now       func() time.Time
}
