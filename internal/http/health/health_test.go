package health

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func serve(h http.HandlerFunc) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	return rec
}

func TestHandler(t *testing.T) {
	var checkErr error
	h := New(func() error { return checkErr })

	assert.Equal(t, http.StatusOK, serve(h.Healthz).Code)
	assert.Equal(t, http.StatusServiceUnavailable, serve(h.Readyz).Code)

	h.SetReady()
	rec := serve(h.Readyz)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", rec.Body.String())

	checkErr = errors.New("dispatcher closed")
	rec = serve(h.Readyz)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "dispatcher closed")

	h.SetNotReady()
	assert.Equal(t, http.StatusServiceUnavailable, serve(h.Readyz).Code)
}
