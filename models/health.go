package models

// HealthResponse is the body of GET /health (spec.md §6).
type HealthResponse struct {
	Status string `json:"status"`
}
