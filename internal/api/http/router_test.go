package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"frontdesk-rental-backend/internal/apperr"
	"frontdesk-rental-backend/internal/domain"
	"frontdesk-rental-backend/internal/metrics"
	"frontdesk-rental-backend/internal/security"
	"frontdesk-rental-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testDomain = "example-hotel.jp"

type fixture struct {
	rentals   *MockRentalService
	lifecycle *MockLifecycleService
	history   *MockHistoryService
	staff     *MockStaffService
	export    *MockExportService
	verifier  *MockVerifier
	store     *MockHealthChecker
	tokens    security.TokenManager
	metrics   *metrics.Metrics
	deps      RouterDeps
}

func newFixture(authEnabled bool) *fixture {
	f := &fixture{
		rentals:   new(MockRentalService),
		lifecycle: new(MockLifecycleService),
		history:   new(MockHistoryService),
		staff:     new(MockStaffService),
		export:    new(MockExportService),
		verifier:  new(MockVerifier),
		store:     new(MockHealthChecker),
		tokens:    security.NewTokenManager("test-secret", time.Hour),
		metrics:   metrics.New(),
	}
	f.deps = RouterDeps{
		Rentals:       f.rentals,
		Lifecycle:     f.lifecycle,
		History:       f.history,
		Staff:         f.staff,
		Export:        f.export,
		Store:         f.store,
		Metrics:       f.metrics,
		Verifier:      f.verifier,
		Tokens:        f.tokens,
		AuthEnabled:   authEnabled,
		AllowedDomain: testDomain,
		MaxBodyBytes:  1 << 20,
	}
	return f
}

func (f *fixture) router() http.Handler {
	return NewRouter(f.deps)
}

func (f *fixture) session(t *testing.T, email string) *http.Cookie {
	t.Helper()
	token, _, err := f.tokens.GenerateSessionToken(email, "Admin")
	require.NoError(t, err)
	return &http.Cookie{Name: security.SessionCookieName, Value: token}
}

func do(h http.Handler, method, target, body string, opts ...func(*http.Request)) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, opt := range opts {
		opt(req)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func withCookie(c *http.Cookie) func(*http.Request) {
	return func(r *http.Request) { r.AddCookie(c) }
}

func withHeader(k, v string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set(k, v) }
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestRentalRoutes(t *testing.T) {
	t.Run("register is created with the type parameter", func(t *testing.T) {
		f := newFixture(false)
		f.rentals.On("Register", mock.Anything, mock.MatchedBy(func(req *service.RegisterRequest) bool {
			return req.CustomerName == "Yamada Taro" && req.RegistrationType == "counter" && req.BikeCount == 2
		})).Return(&service.RegisterResult{
			RentalID:    "BC-20250402-0001",
			ServiceType: domain.ServiceBike,
			Status:      domain.RentalStatusPending,
			Message:     "Rental registered successfully",
		}, nil)

		rec := do(f.router(), http.MethodPost, "/api/rentals?type=counter",
			`{"customerName":"Yamada Taro","serviceType":"Bike","bikeCount":2}`)

		assert.Equal(t, http.StatusCreated, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "BC-20250402-0001", body["rentalId"])
		assert.NotEmpty(t, body["timestamp"])
		assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
		f.rentals.AssertExpectations(t)
	})

	t.Run("malformed body never reaches the service", func(t *testing.T) {
		f := newFixture(false)
		rec := do(f.router(), http.MethodPost, "/api/rentals", `{"customerName":`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "Invalid JSON", body["error"])
		f.rentals.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})

	t.Run("oversized body is rejected", func(t *testing.T) {
		f := newFixture(false)
		f.deps.MaxBodyBytes = 16
		rec := do(f.router(), http.MethodPost, "/api/rentals", `{"customerName":"`+strings.Repeat("x", 64)+`"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("list passes the filter", func(t *testing.T) {
		f := newFixture(false)
		f.rentals.On("List", mock.Anything, service.ListFilter{Status: "Active", ServiceType: "Bike", Limit: 10, Offset: 20}).
			Return(&service.ListResult{Rentals: []domain.Record{{"rentalID": "B1"}}, Total: 21}, nil)

		rec := do(f.router(), http.MethodGet, "/api/rentals?status=Active&serviceType=Bike&limit=10&offset=20", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, float64(21), body["total"])
		f.rentals.AssertExpectations(t)
	})

	t.Run("list rejects a negative limit", func(t *testing.T) {
		f := newFixture(false)
		rec := do(f.router(), http.MethodGet, "/api/rentals?limit=-1", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "limit", decode(t, rec)["field"])
	})

	t.Run("update forwards raw fields", func(t *testing.T) {
		f := newFixture(false)
		f.rentals.On("Update", mock.Anything, map[string]any{"rentalID": "B1", "notes": "late", "bikeCount": float64(3)}).
			Return(&service.UpdateResult{RentalID: "B1", UpdatedFields: []string{"notes", "bikeCount"}, Message: "Rental updated successfully"}, nil)

		rec := do(f.router(), http.MethodPut, "/api/rentals", `{"rentalID":"B1","notes":"late","bikeCount":3}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []any{"notes", "bikeCount"}, decode(t, rec)["updatedFields"])
	})

	t.Run("delete surfaces the conflict shape", func(t *testing.T) {
		f := newFixture(false)
		f.rentals.On("Delete", mock.Anything, "B1").
			Return(nil, apperr.Validation("status", "Cannot delete active rental").WithTitle("Cannot delete active rental"))

		rec := do(f.router(), http.MethodDelete, "/api/rentals?rentalID=B1", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "Cannot delete active rental", body["error"])
		assert.Equal(t, "status", body["field"])
	})

	t.Run("history maps totals", func(t *testing.T) {
		f := newFixture(false)
		f.history.On("Search", mock.Anything, service.HistoryQuery{
			CustomerName: "suzuki", SortBy: "totalPrice", SortOrder: "asc", Limit: 5,
		}).Return(&service.HistoryResult{
			Rentals:    []domain.Record{{"rentalID": "B1"}},
			Scanned:    40,
			Pagination: service.HistoryPagination{Total: 3, Limit: 5, TotalPages: 1, CurrentPage: 1},
			Filters:    map[string]string{"customerName": "suzuki"},
		}, nil)

		rec := do(f.router(), http.MethodGet, "/api/rentals/history?customerName=suzuki&sortBy=totalPrice&sortOrder=asc&limit=5", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, float64(40), body["total"])
		assert.Equal(t, float64(3), body["filtered"])
		assert.Contains(t, body, "stats")
		assert.Contains(t, body, "pagination")
	})
}

func TestLifecycleRoutes(t *testing.T) {
	t.Run("check-in conflict carries the current status", func(t *testing.T) {
		f := newFixture(false)
		f.lifecycle.On("CheckIn", mock.Anything, mock.MatchedBy(func(req *service.CheckInRequest) bool {
			return req.RentalID == "B1" && len(req.BikeNumbers) == 2
		})).Return(nil, apperr.StateConflict("Invalid rental status", "Rental is not pending", "Active"))

		rec := do(f.router(), http.MethodPost, "/api/checkin", `{"rentalID":"B1","bikeNumbers":["12","15"]}`)

		assert.Equal(t, http.StatusConflict, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "Invalid rental status", body["error"])
		assert.Equal(t, "Active", body["currentStatus"])
	})

	t.Run("each POST reaches its operation", func(t *testing.T) {
		f := newFixture(false)
		f.lifecycle.On("MoveToActive", mock.Anything, &service.MoveToActiveRequest{RentalID: "L1", StaffName: "Sato"}).
			Return(&service.MoveToActiveResult{RentalID: "L1"}, nil)
		f.lifecycle.On("Return", mock.Anything, &service.ReturnRequest{RentalID: "B1", ReturnStaff: "Sato"}).
			Return(&service.ReturnResult{RentalID: "B1", Message: "Bike return completed"}, nil)
		f.lifecycle.On("ReportTrouble", mock.Anything, &service.ReportTroubleRequest{RentalID: "O1", Notes: "lost key"}).
			Return(&service.ReportTroubleResult{RentalID: "O1"}, nil)
		f.lifecycle.On("ResolveTrouble", mock.Anything, &service.ResolveTroubleRequest{RentalID: "O1"}).
			Return(&service.ResolveTroubleResult{RentalID: "O1"}, nil)
		h := f.router()

		for path, body := range map[string]string{
			"/api/move-to-active":  `{"rentalID":"L1","staffName":"Sato"}`,
			"/api/return":          `{"rentalID":"B1","returnStaff":"Sato"}`,
			"/api/report-trouble":  `{"rentalID":"O1","notes":"lost key"}`,
			"/api/resolve-trouble": `{"rentalID":"O1"}`,
		} {
			rec := do(h, http.MethodPost, path, body)
			assert.Equal(t, http.StatusOK, rec.Code, path)
		}
		f.lifecycle.AssertExpectations(t)
	})

	t.Run("GET returns usage with 405", func(t *testing.T) {
		f := newFixture(false)
		rec := do(f.router(), http.MethodGet, "/api/move-to-active", "")

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.Equal(t, "POST", rec.Header().Get("Allow"))
		body := decode(t, rec)
		assert.Equal(t, "Method not allowed", body["error"])
		assert.Equal(t, "This endpoint only accepts POST requests", body["message"])
		usage, ok := body["usage"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Luggage storage only", usage["serviceTypeRestriction"])
		assert.Len(t, usage["validStorageAreas"], len(service.StorageLocations))
	})

	t.Run("other methods get 405 without usage", func(t *testing.T) {
		f := newFixture(false)
		rec := do(f.router(), http.MethodDelete, "/api/checkin", "")

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.NotContains(t, decode(t, rec), "usage")
	})

	t.Run("panics become 500", func(t *testing.T) {
		f := newFixture(false)
		f.lifecycle.On("ResolveTrouble", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
			panic("boom")
		}).Return(nil, nil)

		rec := do(f.router(), http.MethodPost, "/api/resolve-trouble", `{"rentalID":"O1"}`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "Internal server error", body["error"])
		assert.Equal(t, false, body["success"])
	})
}

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"validation", apperr.Validation("bikeNumbers", "Expected 2 bike numbers, received 1").WithTitle("Bike count mismatch"), http.StatusBadRequest, "validation"},
		{"state conflict", apperr.StateConflict("Invalid rental status", "Rental is not pending", "Active"), http.StatusConflict, "state_conflict"},
		{"not found", apperr.NotFound("Rental", "B404"), http.StatusNotFound, "not_found"},
		{"store unavailable", apperr.StoreUnavailable(errors.New("quota exceeded")), http.StatusBadGateway, "store_unavailable"},
		{"unclassified", errors.New("nil map"), http.StatusInternalServerError, "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(false)
			f.lifecycle.On("CheckIn", mock.Anything, mock.Anything).Return(nil, tt.err)

			rec := do(f.router(), http.MethodPost, "/api/checkin", `{"rentalID":"B1"}`)

			assert.Equal(t, tt.status, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, tt.kind, body["kind"])
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["error"])
		})
	}

	t.Run("malformed body", func(t *testing.T) {
		f := newFixture(false)
		rec := do(f.router(), http.MethodPost, "/api/checkin", `{"rentalID":`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "malformed_input", decode(t, rec)["kind"])
	})

	t.Run("method not allowed", func(t *testing.T) {
		f := newFixture(false)
		rec := do(f.router(), http.MethodDelete, "/api/checkin", "")

		assert.Equal(t, "method_not_allowed", decode(t, rec)["kind"])
	})
}

func TestStaffRoutes(t *testing.T) {
	f := newFixture(false)
	h := f.router()

	t.Run("list", func(t *testing.T) {
		f.staff.On("List", mock.Anything).Return([]domain.Staff{{ID: "STAFF_1", Name: "Sato"}}, nil).Once()
		rec := do(h, http.MethodGet, "/api/staff", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(1), decode(t, rec)["total"])
	})

	t.Run("create", func(t *testing.T) {
		f.staff.On("Add", mock.Anything, "Ito").Return(&domain.Staff{ID: "STAFF_2", Name: "Ito"}, nil).Once()
		rec := do(h, http.MethodPost, "/api/staff", `{"name":"Ito"}`)
		assert.Equal(t, http.StatusCreated, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "STAFF_2", body["staffId"])
		assert.Equal(t, "Staff member added successfully", body["message"])
	})

	t.Run("rename", func(t *testing.T) {
		f.staff.On("Rename", mock.Anything, "STAFF_2", "Itoh").Return(nil).Once()
		rec := do(h, http.MethodPut, "/api/staff", `{"id":"STAFF_2","name":"Itoh"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Staff member updated successfully", decode(t, rec)["message"])
	})

	t.Run("delete unknown", func(t *testing.T) {
		f.staff.On("Remove", mock.Anything, "STAFF_9").Return(apperr.NotFound("Staff member", "STAFF_9")).Once()
		rec := do(h, http.MethodDelete, "/api/staff?id=STAFF_9", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("reorder", func(t *testing.T) {
		ordered := []domain.Staff{{ID: "STAFF_2", Name: "Ito"}, {ID: "STAFF_1", Name: "Sato"}}
		f.staff.On("Reorder", mock.Anything, ordered).Return(nil).Once()
		rec := do(h, http.MethodPatch, "/api/staff", `{"orderedStaff":[{"id":"STAFF_2","name":"Ito"},{"id":"STAFF_1","name":"Sato"}]}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Staff order updated successfully", decode(t, rec)["message"])
	})

	f.staff.AssertExpectations(t)
}

func TestExportRoute(t *testing.T) {
	t.Run("streams an attachment", func(t *testing.T) {
		f := newFixture(false)
		f.export.On("ExportOnsen", mock.Anything, service.ExportQuery{StartDate: "2025-04-01", EndDate: "2025-04-02", Format: "pdf"}).
			Return(&service.ExportFile{FileName: "onsen-data-2025-04-01_to_2025-04-02.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.3")}, nil)

		rec := do(f.router(), http.MethodGet, "/api/export/onsen?startDate=2025-04-01&endDate=2025-04-02&format=pdf", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="onsen-data-2025-04-01_to_2025-04-02.pdf"`, rec.Header().Get("Content-Disposition"))
		assert.Equal(t, "%PDF-1.3", rec.Body.String())
	})

	t.Run("empty export is 404", func(t *testing.T) {
		f := newFixture(false)
		f.export.On("ExportOnsen", mock.Anything, mock.Anything).
			Return(nil, apperr.Empty("No Onsen data found", "No Onsen service records available for export"))

		rec := do(f.router(), http.MethodGet, "/api/export/onsen", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "No Onsen data found", decode(t, rec)["error"])
	})
}

func TestAuthBoundary(t *testing.T) {
	board := &service.FloorBoard{Total: 0, Columns: []service.FloorColumn{}}

	tests := []struct {
		name         string
		path         string
		opts         func(f *fixture, t *testing.T) []func(*http.Request)
		wantStatus   int
		wantLocation string
	}{
		{
			name:       "api client without session",
			path:       "/admin/floor",
			opts:       func(*fixture, *testing.T) []func(*http.Request) { return nil },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "browser without session is sent to sign-in",
			path: "/admin/floor?view=compact",
			opts: func(*fixture, *testing.T) []func(*http.Request) {
				return []func(*http.Request){withHeader("Accept", "text/html,application/xhtml+xml")}
			},
			wantStatus:   http.StatusFound,
			wantLocation: "/auth/signin?callbackUrl=%2Fadmin%2Ffloor%3Fview%3Dcompact",
		},
		{
			name: "browser from another domain is denied",
			path: "/admin/floor",
			opts: func(f *fixture, t *testing.T) []func(*http.Request) {
				return []func(*http.Request){
					withHeader("Accept", "text/html"),
					withCookie(f.session(t, "guest@gmail.com")),
				}
			},
			wantStatus:   http.StatusFound,
			wantLocation: "/auth-error?error=AccessDenied",
		},
		{
			name: "api client from another domain",
			path: "/admin/floor",
			opts: func(f *fixture, t *testing.T) []func(*http.Request) {
				return []func(*http.Request){withCookie(f.session(t, "guest@gmail.com"))}
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name: "forged cookie",
			path: "/admin/floor",
			opts: func(*fixture, *testing.T) []func(*http.Request) {
				return []func(*http.Request){withCookie(&http.Cookie{Name: security.SessionCookieName, Value: "not-a-jwt"})}
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "staff of the hotel",
			path: "/admin/floor",
			opts: func(f *fixture, t *testing.T) []func(*http.Request) {
				return []func(*http.Request){withCookie(f.session(t, "manager@"+testDomain))}
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(true)
			f.history.On("FloorBoard", mock.Anything).Return(board, nil).Maybe()

			rec := do(f.router(), http.MethodGet, tt.path, "", tt.opts(f, t)...)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantLocation != "" {
				assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
			}
		})
	}

	t.Run("front desk routes stay public", func(t *testing.T) {
		f := newFixture(true)
		f.staff.On("List", mock.Anything).Return([]domain.Staff{}, nil)
		rec := do(f.router(), http.MethodGet, "/api/staff", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("staff writes need a session", func(t *testing.T) {
		f := newFixture(true)
		rec := do(f.router(), http.MethodPost, "/api/staff", `{"name":"Ito"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		f.staff.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
	})
}

func TestSessionEndpoints(t *testing.T) {
	t.Run("verified hotel account receives a cookie", func(t *testing.T) {
		f := newFixture(true)
		f.verifier.On("Verify", mock.Anything, "id-token").
			Return(&security.Identity{Email: "Manager@" + testDomain, EmailVerified: true, Name: "Manager"}, nil)
		f.history.On("FloorBoard", mock.Anything).Return(&service.FloorBoard{}, nil)
		h := f.router()

		rec := do(h, http.MethodPost, "/auth/session", `{"idToken":"id-token"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "manager@"+testDomain, decode(t, rec)["email"])

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, security.SessionCookieName, cookies[0].Name)
		assert.True(t, cookies[0].HttpOnly)

		rec = do(h, http.MethodGet, "/admin/floor", "", withCookie(cookies[0]))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("other domain is forbidden", func(t *testing.T) {
		f := newFixture(true)
		f.verifier.On("Verify", mock.Anything, "id-token").
			Return(&security.Identity{Email: "someone@gmail.com", EmailVerified: true}, nil)

		rec := do(f.router(), http.MethodPost, "/auth/session", `{"idToken":"id-token"}`)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "AccessDenied", decode(t, rec)["error"])
		assert.Empty(t, rec.Result().Cookies())
	})

	t.Run("unverifiable token", func(t *testing.T) {
		f := newFixture(true)
		f.verifier.On("Verify", mock.Anything, "bad").Return(nil, security.ErrInvalidToken)

		rec := do(f.router(), http.MethodPost, "/auth/session", `{"idToken":"bad"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		f := newFixture(true)
		rec := do(f.router(), http.MethodPost, "/auth/session", `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("sign-in not configured", func(t *testing.T) {
		f := newFixture(false)
		f.deps.Verifier = nil
		rec := do(f.router(), http.MethodPost, "/auth/session", `{"idToken":"id-token"}`)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("logout expires the cookie", func(t *testing.T) {
		f := newFixture(true)
		rec := do(f.router(), http.MethodPost, "/auth/logout", "")
		require.Equal(t, http.StatusOK, rec.Code)
		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, -1, cookies[0].MaxAge)
	})

	t.Run("error page", func(t *testing.T) {
		f := newFixture(true)
		rec := do(f.router(), http.MethodGet, "/auth-error?error=AccessDenied", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "AccessDenied", body["error"])
		assert.Equal(t, "Access is limited to @"+testDomain+" accounts", body["message"])
	})
}

func TestHealthRoutes(t *testing.T) {
	t.Run("live", func(t *testing.T) {
		f := newFixture(true)
		rec := do(f.router(), http.MethodGet, "/health", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ok", decode(t, rec)["status"])
	})

	t.Run("ready", func(t *testing.T) {
		f := newFixture(true)
		f.store.On("Ping", mock.Anything).Return(nil)
		rec := do(f.router(), http.MethodGet, "/health/ready", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "ready", body["status"])
		assert.Contains(t, body, "host")
	})

	t.Run("store unreachable", func(t *testing.T) {
		f := newFixture(true)
		f.store.On("Ping", mock.Anything).Return(errors.New("403 from sheets"))
		rec := do(f.router(), http.MethodGet, "/health/ready", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "unreachable", decode(t, rec)["sheets"])
	})
}

func TestMetricsRoute(t *testing.T) {
	f := newFixture(false)
	f.staff.On("List", mock.Anything).Return([]domain.Staff{}, nil)
	h := f.router()

	do(h, http.MethodGet, "/api/staff", "")
	rec := do(h, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `frontdesk_http_requests_total{method="GET",route="/api/staff",status="200"} 1`)
}

func TestUnknownRoute(t *testing.T) {
	f := newFixture(false)
	rec := do(f.router(), http.MethodGet, "/api/nothing-here", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, decode(t, rec)["success"])
}

func TestPhotoDownload(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mock-1_id.jpg"), []byte{0xff, 0xd8, 0xff}, 0o644))
	f := newFixture(false)
	f.deps.PhotoDir = dir
	h := f.router()

	t.Run("serves a stored photo", func(t *testing.T) {
		rec := do(h, http.MethodGet, "/uploads/photos/mock-1_id.jpg", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
		assert.True(t, bytes.Equal([]byte{0xff, 0xd8, 0xff}, rec.Body.Bytes()))
	})

	t.Run("unknown photo", func(t *testing.T) {
		rec := do(h, http.MethodGet, "/uploads/photos/mock-2.jpg", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("hidden files are refused", func(t *testing.T) {
		rec := do(h, http.MethodGet, "/uploads/photos/.env", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
