package model

// HealthStatus reports liveness and a summary of tracked components
type HealthStatus struct {
	Status     string `json:"status"`
	Service    string `json:"service"`
	Version    string `json:"version"`
	Components int    `json:"components"`
	Checked    int    `json:"checked"`
	Updates    int    `json:"updates_available"`
}
