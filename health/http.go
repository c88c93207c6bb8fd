package health

import (
	"encoding/json"
	"net/http"
)

type checkResponse struct {
	Status   string         `json:"status"`
	Message  string         `json:"message,omitempty"`
	Duration string         `json:"duration"`
	Details  map[string]any `json:"details,omitempty"`
	Error    string         `json:"error,omitempty"`
}

type reportResponse struct {
	Status string                   `json:"status"`
	Checks map[string]checkResponse `json:"checks"`
}

// Handler serves the aggregate report as JSON. It answers 503 when the
// report is unhealthy and 200 otherwise.
func Handler(agg *Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := agg.CheckAll(r.Context())

		resp := reportResponse{
			Status: report.Status.String(),
			Checks: make(map[string]checkResponse, len(report.Results)),
		}
		for name, res := range report.Results {
			c := checkResponse{
				Status:   res.Status.String(),
				Message:  res.Message,
				Duration: res.Duration.String(),
				Details:  res.Details,
			}
			if res.Error != nil {
				c.Error = res.Error.Error()
			}
			resp.Checks[name] = c
		}

		w.Header().Set("Content-Type", "application/json")
		if report.Status == StatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}
