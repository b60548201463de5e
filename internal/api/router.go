package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/erazemk/minirent/internal/blob"
	"github.com/erazemk/minirent/internal/db"
	"github.com/erazemk/minirent/internal/metrics"
	"github.com/erazemk/minirent/internal/model"
	"github.com/erazemk/minirent/internal/rental"
	"github.com/erazemk/minirent/internal/stats"
)

// Options carries the optional collaborators of the router. Zero values get
// working defaults: tokens use the default expiry, photos go to the
// database, and metrics are disabled.
type Options struct {
	TokenExpiry time.Duration
	Blobs       blob.Store
	Metrics     *metrics.Metrics
	Stats       *stats.Scheduler
	Engine      *rental.Engine
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(database *sql.DB, jwtSecret string, opts Options) http.Handler {
	if opts.Blobs == nil {
		opts.Blobs = blob.NewDBStore(database)
	}
	if opts.Engine == nil {
		var engineOpts []rental.Option
		if opts.Metrics != nil {
			engineOpts = append(engineOpts, rental.WithObserver(opts.Metrics))
		}
		opts.Engine = rental.NewEngine(db.Transactor{DB: database}, engineOpts...)
	}

	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: database, JWTSecret: jwtSecret, TokenExpiry: opts.TokenExpiry}
	usersHandler := &UsersHandler{DB: database}
	propertiesHandler := &PropertiesHandler{DB: database, Engine: opts.Engine}
	photosHandler := &PhotosHandler{DB: database, Blobs: opts.Blobs}
	rentalsHandler := &RentalsHandler{DB: database, Engine: opts.Engine}
	inquiriesHandler := &InquiriesHandler{DB: database, Engine: opts.Engine}
	reviewsHandler := &ReviewsHandler{DB: database}
	amenitiesHandler := &AmenitiesHandler{DB: database}
	paymentsHandler := &PaymentsHandler{DB: database, Engine: opts.Engine}
	statsHandler := &StatsHandler{DB: database, Stats: opts.Stats}

	authMW := AuthMiddleware(jwtSecret, database)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireOwner := RequireRole(model.RoleOwner)

	authed := func(h http.HandlerFunc) http.Handler { return authMW(h) }
	admin := func(h http.HandlerFunc) http.Handler { return authMW(requireAdmin(h)) }
	owner := func(h http.HandlerFunc) http.Handler { return authMW(requireOwner(h)) }

	// Public.
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/inquiries", inquiriesHandler.Create)

	// Own account.
	mux.Handle("GET /api/auth/me", authed(authHandler.Me))
	mux.Handle("PUT /api/auth/password", authed(authHandler.ChangePassword))
	mux.Handle("POST /api/auth/logout", authed(authHandler.Logout))

	// Users (admin only).
	mux.Handle("GET /api/users", admin(usersHandler.List))
	mux.Handle("POST /api/users", admin(usersHandler.Create))
	mux.Handle("GET /api/users/{id}", admin(usersHandler.Get))
	mux.Handle("PUT /api/users/{id}", admin(usersHandler.Update))
	mux.Handle("PUT /api/users/{id}/password", admin(usersHandler.ResetPassword))
	mux.Handle("DELETE /api/users/{id}", admin(usersHandler.Delete))

	// Properties: read (all roles), write (owner+, own properties unless admin).
	mux.Handle("GET /api/properties", authed(propertiesHandler.List))
	mux.Handle("POST /api/properties", owner(propertiesHandler.Create))
	mux.Handle("GET /api/properties/{id}", authed(propertiesHandler.Get))
	mux.Handle("PUT /api/properties/{id}", owner(propertiesHandler.Update))
	mux.Handle("DELETE /api/properties/{id}", owner(propertiesHandler.Delete))
	mux.Handle("PUT /api/properties/{id}/status", owner(propertiesHandler.SetStatus))
	mux.Handle("PUT /api/properties/{id}/amenities", owner(propertiesHandler.SetAmenities))
	mux.Handle("GET /api/properties/{id}/rentals", authed(rentalsHandler.ListForProperty))

	// Photos.
	mux.Handle("GET /api/properties/{id}/photos", authed(photosHandler.List))
	mux.Handle("POST /api/properties/{id}/photos", owner(photosHandler.Upload))
	mux.Handle("GET /api/properties/{id}/photos/{photoID}", authed(photosHandler.Get))
	mux.Handle("DELETE /api/properties/{id}/photos/{photoID}", owner(photosHandler.Delete))

	// Reviews.
	mux.Handle("GET /api/properties/{id}/reviews", authed(reviewsHandler.List))
	mux.Handle("POST /api/properties/{id}/reviews", authed(reviewsHandler.Create))
	mux.Handle("DELETE /api/reviews/{id}", authed(reviewsHandler.Delete))

	// Rentals (all roles; the engine decides per record).
	mux.Handle("POST /api/rentals", authed(rentalsHandler.Create))
	mux.Handle("GET /api/rentals", authed(rentalsHandler.List))
	mux.Handle("GET /api/rentals/{id}", authed(rentalsHandler.Get))
	mux.Handle("PUT /api/rentals/{id}/status", authed(rentalsHandler.UpdateStatus))
	mux.Handle("POST /api/rentals/{id}/approve", authed(rentalsHandler.Approve))
	mux.Handle("POST /api/rentals/{id}/reject", authed(rentalsHandler.Reject))
	mux.Handle("POST /api/rentals/{id}/end", authed(rentalsHandler.End))
	mux.Handle("DELETE /api/rentals/{id}", authed(rentalsHandler.Delete))

	// Payments.
	mux.Handle("GET /api/rentals/{id}/payments", authed(paymentsHandler.List))
	mux.Handle("POST /api/rentals/{id}/payments", authed(paymentsHandler.Create))

	// Inquiries (owner+).
	mux.Handle("GET /api/inquiries", owner(inquiriesHandler.List))
	mux.Handle("GET /api/inquiries/{id}", owner(inquiriesHandler.Get))
	mux.Handle("PUT /api/inquiries/{id}/status", owner(inquiriesHandler.UpdateStatus))
	mux.Handle("POST /api/inquiries/{id}/convert", owner(inquiriesHandler.Convert))

	// Amenities: read (all roles), write (admin).
	mux.Handle("GET /api/amenities", authed(amenitiesHandler.List))
	mux.Handle("POST /api/amenities", admin(amenitiesHandler.Create))
	mux.Handle("DELETE /api/amenities/{id}", admin(amenitiesHandler.Delete))

	// Statistics.
	mux.Handle("GET /api/stats/me", owner(statsHandler.Mine))
	mux.Handle("GET /api/stats", admin(statsHandler.List))
	mux.Handle("POST /api/stats/refresh", admin(statsHandler.Refresh))

	if opts.Metrics != nil {
		mux.Handle("GET /metrics", opts.Metrics.Handler())
	}

	return RecoveryMiddleware(MetricsMiddleware(opts.Metrics)(mux))
}
