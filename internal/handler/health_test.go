package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct {
	err error
}

func (s stubPinger) PingContext(context.Context) error { return s.err }

func healthRequest(t *testing.T, db dbPinger) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, Health(db)(e.NewContext(req, rec)))
	return rec
}

func TestHealthOKWhenDatabaseAnswers(t *testing.T) {
	rec := healthRequest(t, stubPinger{})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestHealthUnavailableWhenDatabaseDown(t *testing.T) {
	rec := healthRequest(t, stubPinger{err: errors.New("connection refused")})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthUnavailableWithoutDatabase(t *testing.T) {
	rec := healthRequest(t, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
