package apperr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	t.Run("Classified error passes through", func(t *testing.T) {
		orig := NotFound("Rental", "B12345678")
		wrapped := fmt.Errorf("lookup: %w", orig)
		got := From(wrapped, "check-in")
		assert.Same(t, orig, got)
		assert.Equal(t, http.StatusNotFound, got.Status)
		assert.Equal(t, "Rental not found", got.Title)
		assert.Equal(t, "B12345678", got.Extra["identifier"])
	})

	t.Run("JSON syntax error is malformed input", func(t *testing.T) {
		var v map[string]any
		err := json.Unmarshal([]byte("{bad"), &v)
		got := From(err, "check-in")
		assert.Equal(t, KindMalformedInput, got.Kind)
		assert.Equal(t, http.StatusBadRequest, got.Status)
		assert.Equal(t, "Invalid JSON", got.Title)
	})

	t.Run("Deadline is store unavailable with 503", func(t *testing.T) {
		got := From(context.DeadlineExceeded, "return")
		assert.Equal(t, KindStoreUnavailable, got.Kind)
		assert.Equal(t, http.StatusServiceUnavailable, got.Status)
	})

	t.Run("Unknown error is internal with details", func(t *testing.T) {
		got := From(errors.New("boom"), "Return")
		assert.Equal(t, KindInternal, got.Kind)
		assert.Equal(t, http.StatusInternalServerError, got.Status)
		assert.Equal(t, "boom", got.Extra["details"])
		assert.Contains(t, got.Message, "Return")
	})

	t.Run("Nil stays nil", func(t *testing.T) {
		assert.Nil(t, From(nil, "x"))
	})
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *Error
		kind   Kind
		status int
	}{
		{"validation", Validation("staffName", "staffName is required"), KindValidation, 400},
		{"conflict", StateConflict("Return not allowed", "only Active", "Pending"), KindStateConflict, 409},
		{"store", StoreUnavailable(errors.New("dial tcp")), KindStoreUnavailable, 502},
		{"misconfigured", StoreMisconfigured(errors.New("no key")), KindStoreUnavailable, 500},
		{"upstream", Upstream(502, "Photo upload failed", "bad gateway"), KindUpstream, 502},
		{"method", MethodNotAllowed("POST"), KindMethodNotAllowed, 405},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.err.Kind)
			assert.Equal(t, tt.status, tt.err.Status)
			assert.True(t, Is(tt.err, tt.kind))
		})
	}

	assert.Equal(t, "This endpoint only accepts POST requests", MethodNotAllowed("POST").Message)
	assert.Equal(t, "staffName", Validation("staffName", "x").Extra["field"])
	assert.Equal(t, "Pending", StateConflict("t", "m", "Pending").Extra["currentStatus"])
}
