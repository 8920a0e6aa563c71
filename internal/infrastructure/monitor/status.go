package monitor

import "time"

// Status is the last observed health of the registered dependencies.
type Status struct {
	Healthy   bool            `json:"healthy"`
	Checks    map[string]bool `json:"checks"`
	LastCheck time.Time       `json:"lastCheck"`
}
