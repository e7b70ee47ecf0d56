package static

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandler(t *testing.T) {
	h := Handler()

	tests := []struct {
		path     string
		contains string
	}{
		{"/", "<title>Forum</title>"},
		{"/app.js", "location.hash"},
		{"/some/client/route", "<title>Forum</title>"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.contains)
		})
	}
}
