package httputil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestKeyAuth(t *testing.T) {
	ok := http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusTeapot)
	})
	h := UseKeyAuth([]string{"key1", "key2"}, ok)

	cases := []struct {
		header string
		status int
	}{
		{"", http.StatusUnauthorized},
		{"key1", http.StatusUnauthorized},
		{"Basic key1", http.StatusUnauthorized},
		{"Bearer nope", http.StatusUnauthorized},
		{"Bearer key1", http.StatusTeapot},
		{"bearer key2", http.StatusTeapot},
	}
	for _, c := range cases {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if c.header != "" {
			r.Header.Set("Authorization", c.header)
		}
		rw := httptest.NewRecorder()
		h.ServeHTTP(rw, r)
		assert.Equal(t, c.status, rw.Code)
	}
}

func TestCheckStatus(t *testing.T) {
	assert.Equal(t, nil, CheckStatus(&http.Response{StatusCode: 204}))
	assert.Equal(t, ErrHTTPStatus(404), CheckStatus(&http.Response{StatusCode: 404}))
	assert.Equal(t, "unexpected status code: 404 Not Found", ErrHTTPStatus(404).Error())
}
