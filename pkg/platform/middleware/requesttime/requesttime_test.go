package requesttime

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinguard/pkg/requestcontext"
)

func TestMiddlewareCapturesRequestTime(t *testing.T) {
	var seen time.Time
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestcontext.Now(r.Context())
		// A second read must return the identical instant.
		assert.Equal(t, seen, requestcontext.Now(r.Context()))
		w.WriteHeader(http.StatusOK)
	}))

	before := time.Now()
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	after := time.Now()

	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, seen.Before(before))
	assert.False(t, seen.After(after))
}
