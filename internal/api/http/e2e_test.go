package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"frontdesk-rental-backend/internal/app"
	"frontdesk-rental-backend/internal/config"
	"frontdesk-rental-backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// frontDesk runs the real services over the in-memory spreadsheet.
type frontDesk struct {
	t   *testing.T
	srv *httptest.Server
}

func newFrontDesk(t *testing.T) *frontDesk {
	t.Helper()
	cfg := &config.Config{
		Sheets: config.SheetsConfig{Driver: "memory", TimeoutSeconds: 5},
		Upload: config.UploadConfig{Type: "mock", MockDir: t.TempDir()},
	}
	a, err := app.New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(a.Close)

	mockStorage, ok := a.Photos.(*storage.MockStorageService)
	require.True(t, ok)

	srv := httptest.NewServer(NewRouter(RouterDeps{
		Rentals:   a.Rentals,
		Lifecycle: a.Lifecycle,
		History:   a.History,
		Staff:     a.Staff,
		Export:    a.Export,
		Store:     a.Store,
		Metrics:   a.Metrics,
		PhotoDir:  mockStorage.GetLocalPath(),
	}))
	t.Cleanup(srv.Close)
	return &frontDesk{t: t, srv: srv}
}

func (d *frontDesk) call(method, path string, payload any) (int, map[string]any) {
	d.t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(d.t, err)
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, d.srv.URL+path, body)
	require.NoError(d.t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.srv.Client().Do(req)
	require.NoError(d.t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(d.t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func field(m map[string]any, path ...string) any {
	var cur any = m
	for _, p := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = obj[p]
	}
	return cur
}

func TestBikeRentalLifecycle_E2E(t *testing.T) {
	d := newFrontDesk(t)

	// Step 1: customer registers
	status, body := d.call(http.MethodPost, "/api/rentals", map[string]any{
		"customerName":    "Yamada Taro",
		"customerContact": "090-1234-5678",
		"documentType":    "passport",
		"serviceType":     "Bike",
		"rentalPlan":      "2h",
		"bikeCount":       1,
		"totalPrice":      1000,
		"agreement":       true,
	})
	require.Equal(t, http.StatusCreated, status, body)
	rentalID, _ := body["rentalId"].(string)
	require.NotEmpty(t, rentalID)
	assert.Equal(t, "Pending", body["status"])

	// Step 2: a second check-in attempt on a missing rental is 404
	status, _ = d.call(http.MethodPost, "/api/checkin", map[string]any{
		"rentalID": "B-NOPE", "staffName": "Sato",
		"photoData": "data:image/jpeg;base64,/9j/4AAQ", "photoFileName": "id.jpg", "photoMimeType": "image/jpeg",
		"bikeNumbers": []string{"7"},
	})
	assert.Equal(t, http.StatusNotFound, status)

	// Step 3: staff checks in with an ID photo
	status, body = d.call(http.MethodPost, "/api/checkin", map[string]any{
		"rentalID":      rentalID,
		"staffName":     "Sato",
		"photoData":     "data:image/jpeg;base64,/9j/4AAQ",
		"photoFileName": "id.jpg",
		"photoMimeType": "image/jpeg",
		"bikeNumbers":   []string{"7"},
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Active", field(body, "checkin", "newStatus"))
	fileID, _ := field(body, "checkin", "photoFileId").(string)
	require.NotEmpty(t, fileID)

	photo, err := d.srv.Client().Get(d.srv.URL + "/uploads/photos/" + fileID + "_id.jpg")
	require.NoError(t, err)
	photo.Body.Close()
	assert.Equal(t, http.StatusOK, photo.StatusCode)

	// Step 4: checking in twice is a conflict
	status, body = d.call(http.MethodPost, "/api/checkin", map[string]any{
		"rentalID": rentalID, "staffName": "Sato",
		"photoData": "data:image/jpeg;base64,/9j/4AAQ", "photoFileName": "id.jpg", "photoMimeType": "image/jpeg",
		"bikeNumbers": []string{"7"},
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "Active", body["currentStatus"])

	// Step 5: Active rentals cannot be deleted
	status, _ = d.call(http.MethodDelete, "/api/rentals?rentalID="+rentalID, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	// Step 6: returning without the bike names it
	status, body = d.call(http.MethodPost, "/api/return", map[string]any{
		"rentalID": rentalID, "returnStaff": "Ito", "bikeNumbers": []string{},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["message"], "7")

	// Step 7: on-time return closes the rental
	status, body = d.call(http.MethodPost, "/api/return", map[string]any{
		"rentalID": rentalID, "returnStaff": "Ito", "bikeNumbers": []string{"7"}, "goodCondition": true,
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Closed", field(body, "return", "newStatus"))
	assert.Equal(t, false, field(body, "return", "isLate"))

	// Step 8: history finds it, then it can be deleted
	status, body = d.call(http.MethodGet, "/api/rentals/history?rentalID="+rentalID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["filtered"])

	status, _ = d.call(http.MethodDelete, "/api/rentals?rentalID="+rentalID, nil)
	assert.Equal(t, http.StatusOK, status)

	status, body = d.call(http.MethodGet, "/api/rentals", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), body["total"])
}

func TestHotelLuggageLifecycle_E2E(t *testing.T) {
	d := newFrontDesk(t)

	status, body := d.call(http.MethodPost, "/api/rentals", map[string]any{
		"hotelName":       "Ryokan Sakura",
		"serviceType":     "Luggage",
		"luggageCount":    2,
		"hotelTagNumbers": "T1, T2",
		"staffName":       "Sato",
	})
	require.Equal(t, http.StatusCreated, status, body)
	rentalID, _ := body["rentalId"].(string)
	assert.Equal(t, "Awaiting_Storage", body["status"])
	assert.Equal(t, "Ryokan Sakura", field(body, "hotelLuggage", "hotelName"))

	status, body = d.call(http.MethodPost, "/api/move-to-active", map[string]any{
		"rentalID": rentalID, "staffName": "Kato", "storageLocation": "Loading Dock",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid storage location", body["error"])

	status, body = d.call(http.MethodPost, "/api/move-to-active", map[string]any{
		"rentalID": rentalID, "staffName": "Kato", "storageLocation": "Area A - Front",
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Active", field(body, "storage", "newStatus"))

	status, body = d.call(http.MethodPost, "/api/report-trouble", map[string]any{
		"rentalID": rentalID, "notes": "Tag T2 torn", "staffName": "Kato",
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Troubled", field(body, "trouble", "newStatus"))

	status, _ = d.call(http.MethodPost, "/api/return", map[string]any{
		"rentalID": rentalID, "customerVerified": true,
	})
	assert.Equal(t, http.StatusConflict, status)

	status, body = d.call(http.MethodPost, "/api/resolve-trouble", map[string]any{"rentalID": rentalID})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Active", field(body, "resolution", "newStatus"))

	status, body = d.call(http.MethodPost, "/api/return", map[string]any{
		"rentalID": rentalID, "customerVerified": true,
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Closed (Picked Up)", field(body, "return", "newStatus"))
	assert.Equal(t, float64(2), field(body, "return", "luggagePickedUp"))

	status, body = d.call(http.MethodGet, "/admin/floor", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), body["total"])
}

func TestStaffRoster_E2E(t *testing.T) {
	d := newFrontDesk(t)

	var ids []string
	for _, name := range []string{"Sato", "Ito"} {
		status, body := d.call(http.MethodPost, "/api/staff", map[string]any{"name": name})
		require.Equal(t, http.StatusCreated, status, body)
		id, _ := body["staffId"].(string)
		ids = append(ids, id)
	}

	status, _ := d.call(http.MethodPatch, "/api/staff", map[string]any{
		"orderedStaff": []map[string]any{{"id": ids[1], "name": "Ito"}, {"id": ids[0], "name": "Sato"}},
	})
	require.Equal(t, http.StatusOK, status)

	status, body := d.call(http.MethodGet, "/api/staff", nil)
	require.Equal(t, http.StatusOK, status)
	staff, _ := body["staff"].([]any)
	require.Len(t, staff, 2)
	assert.Equal(t, "Ito", field(staff[0].(map[string]any), "name"))

	status, _ = d.call(http.MethodDelete, "/api/staff?id="+ids[0], nil)
	assert.Equal(t, http.StatusOK, status)
}
