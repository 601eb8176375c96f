package models

// OutboundMessageRequest is a manual message push through the API.
type OutboundMessageRequest struct {
	To         string `json:"to" binding:"required"`
	Message    string `json:"message" binding:"required"`
	PreviewURL bool   `json:"preview_url"`
}

// NotifyRequest asks the service to push the current stock report. An empty
// recipient list falls back to the configured recipients.
type NotifyRequest struct {
	Recipients   []string `json:"recipients"`
	Category     string   `json:"category"`
	CriticalOnly bool     `json:"critical_only"`
}

// NotifyResult summarizes a push.
type NotifyResult struct {
	RunID      string   `json:"run_id"`
	Sent       []string `json:"sent"`
	Skipped    bool     `json:"skipped"`
	Actionable int      `json:"actionable"`
}
