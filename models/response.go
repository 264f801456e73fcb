package models

// SubmitResponse is the response for POST /submit.
type SubmitResponse struct {
	PDFURL    string `json:"pdf_url"`
	SessionID string `json:"session_id"`
}

// FailureResponse is the 500 body for POST /submit.
type FailureResponse struct {
	Message string `json:"message"`
}

// ExtractResponse is the response for POST /api/v1/extract.
type ExtractResponse struct {
	Success bool              `json:"success"`
	Result  *ExtractionResult `json:"result,omitempty"`

	// CacheStatus is "hit" or "miss" when caching was requested.
	CacheStatus string       `json:"cache_status,omitempty"`
	Timing      TimingInfo   `json:"timing"`
	Error       *ErrorDetail `json:"error,omitempty"`
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	TotalMs int64 `json:"total_ms"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status         string `json:"status"` // "healthy" or "degraded"
	Uptime         string `json:"uptime"`
	ActiveSessions int    `json:"active_sessions"`
	MaxSessions    int    `json:"max_sessions"`
	Version        string `json:"version"`
}

// SessionStats is a snapshot of browser session usage.
type SessionStats struct {
	MaxSessions    int
	ActiveSessions int
}
