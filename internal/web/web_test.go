package web

import (
	"context"
	"database/sql"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MichaelEbbert/ebaysales/internal/auth"
	"github.com/MichaelEbbert/ebaysales/internal/db"
	"github.com/MichaelEbbert/ebaysales/internal/model"
	"github.com/MichaelEbbert/ebaysales/internal/store"
)

const testSecret = "test-secret"

var testNow = time.Date(2024, time.March, 4, 15, 0, 0, 0, time.UTC)

func setupWeb(t *testing.T) (*httptest.Server, *sql.DB) {
	t.Helper()
	database := db.NewTestDB(t)
	if err := auth.SetPassword(context.Background(), database, "password"); err != nil {
		t.Fatal(err)
	}
	router, err := NewRouter(database, testSecret, nil)
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, database
}

func noRedirect() *http.Client {
	return &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
}

func login(t *testing.T, srv *httptest.Server, password string) *http.Response {
	t.Helper()
	resp, err := noRedirect().PostForm(srv.URL+"/login", url.Values{"password": {password}})
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == cookieName && c.Value != "" {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func get(t *testing.T, srv *httptest.Server, path string, cookie *http.Cookie) (int, string, http.Header) {
	t.Helper()
	req, _ := http.NewRequest(http.MethodGet, srv.URL+path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := noRedirect().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body), resp.Header
}

func TestLoadTemplates(t *testing.T) {
	ts, err := LoadTemplates()
	if err != nil {
		t.Fatalf("LoadTemplates: %v", err)
	}
	for _, page := range []string{"login.html", "dashboard.html", "report.html", "card.html"} {
		if _, ok := ts.templates[page]; !ok {
			t.Errorf("template %s not loaded", page)
		}
	}
}

func TestMoney(t *testing.T) {
	d := decimal.RequireFromString("3.5")
	tests := []struct {
		in   any
		want string
	}{
		{d, "$3.50"},
		{&d, "$3.50"},
		{(*decimal.Decimal)(nil), "-"},
		{decimal.NullDecimal{}, "-"},
		{decimal.NewNullDecimal(decimal.NewFromInt(12)), "$12.00"},
		{"nope", "-"},
	}
	for _, tt := range tests {
		if got := money(tt.in); got != tt.want {
			t.Errorf("money(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCardLabel(t *testing.T) {
	c := model.Card{ID: 7, Year: "1989", PlayerName: "Ken Griffey Jr.", SetName: "Upper Deck"}
	if got := cardLabel(c); got != "1989 Ken Griffey Jr. Upper Deck" {
		t.Errorf("cardLabel = %q", got)
	}
	if got := cardLabel(model.Card{ID: 7}); got != "Card #7" {
		t.Errorf("cardLabel(empty) = %q", got)
	}
}

func TestUnauthenticatedRedirects(t *testing.T) {
	srv, _ := setupWeb(t)
	for _, path := range []string{"/", "/report", "/cards/1"} {
		status, _, header := get(t, srv, path, nil)
		if status != http.StatusSeeOther || header.Get("Location") != "/login" {
			t.Errorf("GET %s: status %d location %q", path, status, header.Get("Location"))
		}
	}

	status, body, _ := get(t, srv, "/login", nil)
	if status != http.StatusOK || !strings.Contains(body, `name="password"`) {
		t.Errorf("GET /login: status %d", status)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	srv, _ := setupWeb(t)
	resp := login(t, srv, "wrong")
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "Wrong password.") {
		t.Errorf("status %d, body missing error", resp.StatusCode)
	}
	for _, c := range resp.Cookies() {
		if c.Name == cookieName && c.Value != "" {
			t.Error("cookie set after failed login")
		}
	}
}

func TestLoginDashboardLogout(t *testing.T) {
	srv, database := setupWeb(t)
	ctx := context.Background()

	c := &model.Card{Category: model.CategoryPokemon, Name: "Eevee", SetName: "Jungle", Condition: "NM", Quantity: 1, StartingBid: decimal.NewFromInt(1)}
	if _, _, err := store.CreateCardWithListing(ctx, database, c, testNow); err != nil {
		t.Fatal(err)
	}

	resp := login(t, srv, "password")
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/" {
		t.Fatalf("login: status %d location %q", resp.StatusCode, resp.Header.Get("Location"))
	}
	cookie := sessionCookie(t, resp)

	status, body, _ := get(t, srv, "/", cookie)
	if status != http.StatusOK {
		t.Fatalf("dashboard: status %d", status)
	}
	for _, want := range []string{"Dashboard", "Eevee Jungle", "Next auction end", "Log out"} {
		if !strings.Contains(body, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}

	status, body, _ = get(t, srv, "/report", cookie)
	if status != http.StatusOK || !strings.Contains(body, "1 draft(s) ready to list") {
		t.Errorf("report: status %d", status)
	}

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/logout", nil)
	req.AddCookie(cookie)
	out, err := noRedirect().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	out.Body.Close()
	if out.StatusCode != http.StatusSeeOther {
		t.Fatalf("logout: status %d", out.StatusCode)
	}

	status, _, _ = get(t, srv, "/", cookie)
	if status != http.StatusSeeOther {
		t.Errorf("revoked cookie still accepted: status %d", status)
	}
}

func TestCardPage(t *testing.T) {
	srv, database := setupWeb(t)
	c := &model.Card{Category: model.CategoryPokemon, Name: "Eevee", SetName: "Jungle", CardNumber: "51/64", Condition: "NM", Quantity: 1, StartingBid: decimal.NewFromInt(1)}
	card, _, err := store.CreateCardWithListing(context.Background(), database, c, testNow)
	if err != nil {
		t.Fatal(err)
	}

	resp := login(t, srv, "password")
	resp.Body.Close()
	cookie := sessionCookie(t, resp)

	status, body, _ := get(t, srv, "/cards/"+itoa(card.ID), cookie)
	if status != http.StatusOK {
		t.Fatalf("card page: status %d", status)
	}
	for _, want := range []string{"Eevee", "Description", "Recommended shipping", "$1.00"} {
		if !strings.Contains(body, want) {
			t.Errorf("card page missing %q", want)
		}
	}

	if status, _, _ := get(t, srv, "/cards/9999", cookie); status != http.StatusNotFound {
		t.Errorf("missing card: status %d", status)
	}
	if status, _, _ := get(t, srv, "/cards/abc", cookie); status != http.StatusBadRequest {
		t.Errorf("bad id: status %d", status)
	}
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
