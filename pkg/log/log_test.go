package log

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel(" warning "))
	assert.Equal(t, zerolog.InfoLevel, parseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("bogus"))
}

func TestNewWritesServiceField(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "info", ServiceName: "forum", Output: &buf})

	logger.Debug().Msg("hidden")
	logger.Info().Msg("shown")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "forum", line[FieldService])
	assert.Equal(t, "shown", line["message"])
}

func TestCtxFallsBackToGlobal(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf})

	ctx := WithLogger(context.Background(), logger)
	l := Ctx(ctx)
	l.Info().Msg("scoped")
	assert.Contains(t, buf.String(), "scoped")

	assert.NotPanics(t, func() {
		l := Ctx(context.Background())
		_ = l
	})
}

func TestHTTPMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf})

	var sawLogger bool
	h := HTTPMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawLogger = r.Context().Value(ctxKey{}).(zerolog.Logger)
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/forum/search?ss=go", nil)
	req.Header.Set(headerRequestID, "req-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.True(t, sawLogger)
	assert.Equal(t, "req-1", rec.Header().Get(headerRequestID))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "req-1", line[FieldRequestID])
	assert.Equal(t, "/api/forum/search", line[FieldPath])
	assert.Equal(t, float64(http.StatusTeapot), line[FieldStatus])
}

func TestHTTPMiddlewareGeneratesRequestID(t *testing.T) {
	logger := New(Config{Output: &bytes.Buffer{}})
	h := HTTPMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, rec.Header().Get(headerRequestID), 36)
}
