package server

// HealthResponse is returned by /healthz
type HealthResponse struct {
	Status          string  `json:"status"`
	Uptime          float64 `json:"uptime_seconds"`
	Version         string  `json:"version"`
	BuildID         string  `json:"build_id"`
	SnapshotPresent bool    `json:"snapshot_present"`
	SnapshotEntries int     `json:"snapshot_entries"`
}
