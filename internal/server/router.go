package server

import (
	"context"
	"net/http"

	"gorm.io/gorm"

	"github.com/diewo77/factura/auth"
	"github.com/diewo77/factura/httpx"
	"github.com/diewo77/factura/internal/handlers"
	"github.com/diewo77/factura/internal/models"
	"github.com/diewo77/factura/internal/services"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB) http.Handler {
	mux := http.NewServeMux()

	// Configure a verifier so RequireAuth can ensure the account still exists.
	auth.SetVerifier(func(_ context.Context, p auth.Principal) bool {
		var count int64
		var err error
		if p.IsAdmin() {
			err = db.Model(&models.User{}).Where("id = ?", p.ID).Limit(1).Count(&count).Error
		} else {
			err = db.Model(&models.Client{}).Where("id = ?", p.ID).Limit(1).Count(&count).Error
		}
		return err == nil && count > 0
	})

	authed := func(h http.HandlerFunc) http.Handler {
		return auth.Middleware(auth.RequireAuth(h))
	}
	adminOnly := func(h http.HandlerFunc) http.Handler {
		return auth.Middleware(auth.RequireAuth(auth.RequireAdmin(h)))
	}

	// --- Health endpoints ---
	//revive:disable:unused-parameter simple handlers intentionally ignore *http.Request
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	//revive:enable:unused-parameter

	// Auth endpoints
	handlers.NewAuthHandler(db).Register(mux)

	// Client management (admin only)
	ch := handlers.NewClientHandler(db)
	mux.Handle("/clients", adminOnly(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			ch.List(w, r)
		case http.MethodPost:
			ch.Create(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	}))
	mux.Handle("/clients/update", adminOnly(ch.Update))
	mux.Handle("/clients/delete", adminOnly(ch.Delete))

	// Catalog (admin only)
	ph := handlers.NewProductHandler(db)
	mux.Handle("/products", adminOnly(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			ph.List(w, r)
		case http.MethodPost:
			ph.Create(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	}))
	mux.Handle("/products/update", adminOnly(ph.Update))
	mux.Handle("/products/delete", adminOnly(ph.Delete))

	// Invoices: list/view/delete are scoped per principal inside the service;
	// creation is an admin operation.
	invSvc := services.NewInvoiceService(db)
	ih := handlers.NewInvoiceHandler(db, invSvc)
	mux.Handle("/invoices", auth.Middleware(auth.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			ih.List(w, r)
		case http.MethodPost:
			auth.RequireAdmin(http.HandlerFunc(ih.Create)).ServeHTTP(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	}))))
	mux.Handle("/invoices/view", authed(ih.View))
	mux.Handle("/invoices/delete", authed(ih.Delete))

	// Reports (admin only)
	rh := handlers.NewReportHandler(invSvc)
	mux.Handle("/reports/sales", adminOnly(rh.Sales))

	return withRecover(mux)
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
