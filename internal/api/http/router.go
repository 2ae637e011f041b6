package http

import (
	"net/http"
	"strings"

	"frontdesk-rental-backend/internal/apperr"
	"frontdesk-rental-backend/internal/metrics"
	"frontdesk-rental-backend/internal/repository"
	"frontdesk-rental-backend/internal/security"
	"frontdesk-rental-backend/internal/service"

	"github.com/gorilla/mux"
)

// RouterDeps carries everything the HTTP layer needs. Verifier and Tokens may
// be nil when admin auth is disabled; PhotoDir is set only for mock storage.
type RouterDeps struct {
	Rentals   service.RentalService
	Lifecycle service.LifecycleService
	History   service.HistoryService
	Staff     service.StaffService
	Export    service.ExportService
	Store     repository.HealthChecker
	Metrics   *metrics.Metrics

	Verifier      security.IDTokenVerifier
	Tokens        security.TokenManager
	AuthEnabled   bool
	AllowedDomain string
	SecureCookie  bool

	AllowedOrigins []string
	MaxBodyBytes   int64
	PhotoDir       string
}

// NewRouter wires every route and middleware and returns the root handler.
func NewRouter(d RouterDeps) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(notFound)

	auth := NewAuthMiddleware(d.Tokens, d.AllowedDomain, d.AuthEnabled)
	r.Use(RequestID, Observe(d.Metrics), Recover, LimitBody(d.MaxBodyBytes), auth.Authenticate)

	rentals := NewRentalHandler(d.Rentals, d.History)
	route(r, "/api/rentals", nil, map[string]http.HandlerFunc{
		http.MethodPost:   rentals.Register,
		http.MethodGet:    rentals.List,
		http.MethodPut:    rentals.Update,
		http.MethodDelete: rentals.Delete,
	})
	route(r, "/api/rentals/history", nil, map[string]http.HandlerFunc{
		http.MethodGet: rentals.History,
	})

	lifecycle := NewLifecycleHandler(d.Lifecycle)
	route(r, "/api/checkin", checkInUsage, map[string]http.HandlerFunc{http.MethodPost: lifecycle.CheckIn})
	route(r, "/api/move-to-active", moveToActiveUsage, map[string]http.HandlerFunc{http.MethodPost: lifecycle.MoveToActive})
	route(r, "/api/return", returnUsage, map[string]http.HandlerFunc{http.MethodPost: lifecycle.Return})
	route(r, "/api/report-trouble", reportTroubleUsage, map[string]http.HandlerFunc{http.MethodPost: lifecycle.ReportTrouble})
	route(r, "/api/resolve-trouble", resolveTroubleUsage, map[string]http.HandlerFunc{http.MethodPost: lifecycle.ResolveTrouble})

	staff := NewStaffHandler(d.Staff)
	route(r, "/api/staff", nil, map[string]http.HandlerFunc{
		http.MethodGet:    staff.List,
		http.MethodPost:   staff.Create,
		http.MethodPut:    staff.Update,
		http.MethodDelete: staff.Delete,
		http.MethodPatch:  staff.Reorder,
	})

	export := NewExportHandler(d.Export)
	route(r, "/api/export/onsen", nil, map[string]http.HandlerFunc{http.MethodGet: export.Onsen})

	admin := NewAdminHandler(d.History)
	r.HandleFunc("/admin/floor", admin.Floor).Methods(http.MethodGet)
	r.HandleFunc("/admin/summary", admin.Summary).Methods(http.MethodGet)

	authHandler := NewAuthHandler(d.Verifier, d.Tokens, d.AllowedDomain, d.SecureCookie)
	r.HandleFunc("/auth/session", authHandler.CreateSession).Methods(http.MethodPost)
	r.HandleFunc("/auth/logout", authHandler.Logout).Methods(http.MethodPost)
	r.HandleFunc("/auth-error", authHandler.Error).Methods(http.MethodGet)

	health := NewHealthHandler(d.Store)
	r.HandleFunc("/health", health.Live).Methods(http.MethodGet)
	r.HandleFunc("/health/ready", health.Ready).Methods(http.MethodGet)
	r.Handle("/metrics", d.Metrics.Handler()).Methods(http.MethodGet)

	if d.PhotoDir != "" {
		photos := NewPhotoHandler(d.PhotoDir)
		r.HandleFunc("/uploads/photos/{name}", photos.Download).Methods(http.MethodGet)
	}

	return NewCORS(d.AllowedOrigins, r)
}

// route registers one handler per method on path, then a method-less fallback
// on the same path. mux only reaches the fallback when no method matched, so
// it answers 405, with the usage document if there is one.
func route(r *mux.Router, path string, usage map[string]any, handlers map[string]http.HandlerFunc) {
	allowed := make([]string, 0, len(handlers))
	for _, m := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		h, ok := handlers[m]
		if !ok {
			continue
		}
		r.HandleFunc(path, h).Methods(m)
		allowed = append(allowed, m)
	}
	r.HandleFunc(path, methodNotAllowed(allowed, usage))
}

func methodNotAllowed(allowed []string, usage map[string]any) http.HandlerFunc {
	list := strings.Join(allowed, ", ")
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", list)
		err := apperr.MethodNotAllowed(list)
		if usage != nil && r.Method == http.MethodGet {
			err = err.With("usage", usage)
		}
		writeError(w, r, err, "method check")
	}
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, apperr.Empty("Not found", "No route for "+r.Method+" "+r.URL.Path), "routing")
}
