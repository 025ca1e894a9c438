package domain

import "time"

const (
	InstanceLive = "live"
	InstanceDead = "dead"
)

// InstanceRow is the liveness record of one running process.
type InstanceRow struct {
	ID     string    `json:"id"`
	Status string    `json:"status"`
	LastAt time.Time `json:"last_at"`
}
