package core_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiftshare/securecore/core"
)

func render(t *testing.T, resp core.Response) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, resp.Render(rec, req))
	return rec
}

func TestJSON(t *testing.T) {
	t.Parallel()

	rec := render(t, core.JSON(map[string]string{"hello": "world"}))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"data":{"hello":"world"}}`, rec.Body.String())
}

func TestJSONStatus(t *testing.T) {
	t.Parallel()

	rec := render(t, core.JSONStatus(http.StatusCreated, map[string]int{"n": 1}))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestNoContent(t *testing.T) {
	t.Parallel()

	rec := render(t, core.NoContent())
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestJSONError_HTTPError(t *testing.T) {
	t.Parallel()

	rec := render(t, core.JSONError(core.ErrNotFound))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":{"code":"not_found","message":"Not Found"}}`, rec.Body.String())
}

func TestJSONError_ValidationError(t *testing.T) {
	t.Parallel()

	verr := core.NewValidationError()
	verr.Add("url", "url is invalid")

	rec := render(t, core.JSONError(verr))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"error":{"code":"validation_error","message":"Validation failed","details":{"url":["url is invalid"]}}}`, rec.Body.String())
}

func TestJSONError_OpaqueInternal(t *testing.T) {
	t.Parallel()

	rec := render(t, core.JSONError(assert.AnError))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
}
