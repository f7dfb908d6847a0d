package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/memohai/bucketlink/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(context.Context) error { return f.err }

func serve(t *testing.T, e *echo.Echo, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestPingHandler(t *testing.T) {
	e := echo.New()
	NewPingHandler(nil).Register(e)

	rec := serve(t, e, http.MethodGet, "/ping")
	require.Equal(t, http.StatusOK, rec.Code)
	var body StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)

	rec = serve(t, e, http.MethodHead, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestStorageHealthOK(t *testing.T) {
	e := echo.New()
	NewStorageHealthHandler(nil, fakePinger{}).Register(e)

	rec := serve(t, e, http.MethodGet, "/health/storage")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestStorageHealthUnavailable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind string
	}{
		{name: "denied", err: storage.Wrap(storage.KindPermissionDenied, "ping", "", errors.New("AccessDenied")), kind: "permission_denied"},
		{name: "missing bucket", err: storage.Wrap(storage.KindNotFound, "ping", "", errors.New("NoSuchBucket")), kind: "not_found"},
		{name: "plain error", err: errors.New("dial tcp: refused"), kind: "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			NewStorageHealthHandler(nil, fakePinger{err: tt.err}).Register(e)

			rec := serve(t, e, http.MethodGet, "/health/storage")
			require.Equal(t, http.StatusServiceUnavailable, rec.Code)
			var body StatusResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "unavailable", body.Status)
			assert.Equal(t, tt.kind, body.Kind)
		})
	}
}
