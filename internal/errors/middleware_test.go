package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func performRequest(t *testing.T, handler echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	e.Use(Middleware())
	e.GET("/test", handler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestMiddlewareStructuredError(t *testing.T) {
	rec := performRequest(t, func(c echo.Context) error {
		return RejectedError("Content violates community guidelines")
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Content violates community guidelines", resp.Error)
	assert.Equal(t, TypeRejected, resp.Type)
}

func TestMiddlewarePlainError(t *testing.T) {
	rec := performRequest(t, func(c echo.Context) error {
		return assert.AnError
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, TypeInternal, resp.Type)
}

func TestMiddlewareSuccessPassthrough(t *testing.T) {
	rec := performRequest(t, func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestWrapHTTPError(t *testing.T) {
	wrapped := WrapHTTPError(echo.NewHTTPError(http.StatusNotFound, "Not Found"))
	assert.Equal(t, TypeNotFound, wrapped.Type)
	assert.Equal(t, "Not Found", wrapped.Message)

	wrapped = WrapHTTPError(echo.NewHTTPError(http.StatusTeapot, "weird"))
	assert.Equal(t, TypeInternal, wrapped.Type)
}
