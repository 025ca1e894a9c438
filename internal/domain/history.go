package domain

import "time"

// HistoryRow is one entry of the append-only per-job journal.
type HistoryRow struct {
	ID         int64         `json:"id"`
	Retry      int32         `json:"retry"`
	InstanceID *string       `json:"instance_id,omitempty"`
	At         time.Time     `json:"at"`
	Status     HistoryStatus `json:"status"`
	Message    *string       `json:"message,omitempty"`
}
