package audit

import "time"

// Event records one consent decision. It is transport-agnostic so stores
// and sinks can fan out.
type Event struct {
	Timestamp  time.Time `json:"timestamp"`
	VisitorID  string    `json:"visitor_id"`
	Action     string    `json:"action"`
	Decision   string    `json:"decision"`
	Categories []string  `json:"categories"`
	RequestID  string    `json:"request_id,omitempty"`
}
