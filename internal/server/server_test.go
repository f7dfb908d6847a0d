package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type routeHandler struct {
	path string
}

func (h routeHandler) Register(e *echo.Echo) {
	e.GET(h.path, func(c echo.Context) error { return c.String(http.StatusOK, "hit") })
}

type panicHandler struct{}

func (panicHandler) Register(e *echo.Echo) {
	e.GET("/panic", func(echo.Context) error { panic("boom") })
}

func TestNewServerRegistersHandlers(t *testing.T) {
	s := NewServer(nil, "", routeHandler{path: "/a"}, nil, routeHandler{path: "/b"})
	assert.Equal(t, DefaultAddr, s.Addr())

	for _, path := range []string{"/a", "/b"} {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "hit", rec.Body.String())
	}
}

func TestServerRecoversPanics(t *testing.T) {
	s := NewServer(nil, "127.0.0.1:0", panicHandler{})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestServerStartStop(t *testing.T) {
	s := NewServer(nil, "127.0.0.1:0", routeHandler{path: "/a"})
	errCh := make(chan error, 1)
	go func() { errCh <- s.Start() }()

	time.Sleep(50 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}
