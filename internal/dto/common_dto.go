package dto

import "time"

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}

// Millis renders a duration as whole milliseconds for JSON clients.
func Millis(d time.Duration) int64 {
	return d.Milliseconds()
}
