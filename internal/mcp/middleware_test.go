package mcp

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIKeyMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler := APIKeyMiddleware("s3cret", next)

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		target string
		want   int
	}{
		{"header", func(r *http.Request) { r.Header.Set("X-API-Key", "s3cret") }, "/mcp", http.StatusTeapot},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer s3cret") }, "/mcp", http.StatusTeapot},
		{"query param", func(r *http.Request) {}, "/mcp?api_key=s3cret", http.StatusTeapot},
		{"missing", func(r *http.Request) {}, "/mcp", http.StatusUnauthorized},
		{"wrong header", func(r *http.Request) { r.Header.Set("X-API-Key", "nope") }, "/mcp?api_key=s3cret", http.StatusUnauthorized},
		{"basic auth", func(r *http.Request) { r.SetBasicAuth("u", "s3cret") }, "/mcp", http.StatusUnauthorized},
		{"empty bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer ") }, "/mcp", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.target, nil)
			tt.setup(req)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusUnauthorized {
				assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
			}
		})
	}
}
