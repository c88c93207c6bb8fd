package health

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHandler(t *testing.T) {
	tests := []struct {
		name     string
		result   Result
		wantCode int
	}{
		{"healthy", Healthy("ok"), http.StatusOK},
		{"degraded", Degraded("slow"), http.StatusOK},
		{"unhealthy", Unhealthy("down", errors.New("refused")), http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := NewAggregator()
			agg.Register(fixed("redis", tt.result))

			rec := httptest.NewRecorder()
			Handler(agg)(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("Code = %d, want %d", rec.Code, tt.wantCode)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}

			var body reportResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Status != tt.name {
				t.Errorf("status = %q, want %q", body.Status, tt.name)
			}
			if body.Checks["redis"].Status != tt.name {
				t.Errorf("checks.redis.status = %q", body.Checks["redis"].Status)
			}
			if tt.result.Error != nil && body.Checks["redis"].Error != "refused" {
				t.Errorf("checks.redis.error = %q", body.Checks["redis"].Error)
			}
		})
	}
}
