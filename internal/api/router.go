package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/MichaelEbbert/ebaysales/internal/assess"
	"github.com/MichaelEbbert/ebaysales/internal/events"
	"github.com/MichaelEbbert/ebaysales/internal/uploads"
)

// Deps are the collaborators shared by all handlers.
type Deps struct {
	DB        *sql.DB
	JWTSecret string
	Uploads   *uploads.Dir
	Checker   *assess.Checker
	Events    events.Publisher
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(d Deps) http.Handler {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Events == nil {
		d.Events = events.Noop{}
	}
	if d.Checker == nil {
		d.Checker = assess.NewChecker(nil)
	}
	deps := &d

	mux := http.NewServeMux()

	authHandler := &AuthHandler{deps}
	cardsHandler := &CardsHandler{deps}
	listingsHandler := &ListingsHandler{deps}
	ordersHandler := &OrdersHandler{deps}
	uploadsHandler := &UploadsHandler{deps}
	settingsHandler := &SettingsHandler{deps}
	dashboardHandler := &DashboardHandler{deps}

	authMW := AuthMiddleware(d.JWTSecret, d.DB)
	authed := func(h http.HandlerFunc) http.Handler { return authMW(h) }

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("PUT /api/auth/password", authed(authHandler.ChangePassword))
	mux.Handle("POST /api/auth/logout", authed(authHandler.Logout))

	// Cards.
	mux.Handle("GET /api/cards", authed(cardsHandler.List))
	mux.Handle("POST /api/cards", authed(cardsHandler.Create))
	mux.Handle("GET /api/cards/{id}", authed(cardsHandler.Get))
	mux.Handle("PUT /api/cards/{id}", authed(cardsHandler.Update))
	mux.Handle("DELETE /api/cards/{id}", authed(cardsHandler.Delete))
	mux.Handle("GET /api/cards/{id}/preview", authed(cardsHandler.Preview))

	// Listings.
	mux.Handle("GET /api/listings", authed(listingsHandler.List))
	mux.Handle("PUT /api/listings/{id}", authed(listingsHandler.Update))
	mux.Handle("POST /api/listings/{id}/status", authed(listingsHandler.SetStatus))
	mux.Handle("POST /api/listings/{id}/reschedule", authed(listingsHandler.Reschedule))

	// Orders.
	mux.Handle("GET /api/orders/{id}", authed(ordersHandler.Get))
	mux.Handle("PUT /api/orders/{id}", authed(ordersHandler.Update))

	// Scans.
	mux.Handle("POST /api/uploads", authed(uploadsHandler.Upload))
	mux.Handle("GET /api/uploads/{name}", authed(uploadsHandler.Get))
	mux.Handle("POST /api/condition-check", authed(uploadsHandler.ConditionCheck))

	// Settings and overview.
	mux.Handle("GET /api/settings/shipping", authed(settingsHandler.GetShipping))
	mux.Handle("PUT /api/settings/shipping", authed(settingsHandler.PutShipping))
	mux.Handle("GET /api/schedule/next-end", authed(dashboardHandler.NextEnd))
	mux.Handle("GET /api/dashboard", authed(dashboardHandler.Dashboard))
	mux.Handle("GET /api/report", authed(dashboardHandler.Report))

	return mux
}
