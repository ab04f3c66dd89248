package domain

// ============================================================
// Health API Responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status     string            `json:"status"` // healthy, degraded, unhealthy
	Components []ComponentHealth `json:"components"`
}

// ComponentHealth represents the health of one part of the advisor.
type ComponentHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	Detail      string `json:"detail,omitempty"`
	LastChecked string `json:"last_checked"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
}
