package usage

import "time"

// Record is the accumulated oracle usage for one destination/stage pair.
type Record struct {
	Destination  string    `json:"destination"`
	Stage        string    `json:"stage"`
	Calls        int64     `json:"calls"`
	Failures     int64     `json:"failures"`
	LastCalledAt time.Time `json:"last_called_at"`
}
