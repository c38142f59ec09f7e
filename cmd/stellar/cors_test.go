package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCorsMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		origin     string
		method     string
		inner      int
		wantStatus int
		wantOrigin string
		wantVary   string
	}{
		{"success", "", http.MethodGet, http.StatusOK, http.StatusOK, "*", ""},
		{"error response", "*", http.MethodGet, http.StatusNotFound, http.StatusNotFound, "*", ""},
		{"preflight", "*", http.MethodOptions, 0, http.StatusNoContent, "*", ""},
		{"fixed origin", "http://kiosk.local:8080", http.MethodGet, http.StatusOK, http.StatusOK, "http://kiosk.local:8080", "Origin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := corsMiddleware(tt.origin, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.inner == 0 {
					t.Error("handler should not be called for OPTIONS preflight")
					return
				}
				w.WriteHeader(tt.inner)
			}))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(tt.method, "/albumart", nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Expected origin %q, got %q", tt.wantOrigin, got)
			}
			if got := rec.Header().Get("Vary"); got != tt.wantVary {
				t.Errorf("Expected Vary %q, got %q", tt.wantVary, got)
			}
			if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST, OPTIONS" {
				t.Errorf("Expected methods header, got %q", got)
			}
		})
	}
}
