// Package instance provides the process-wide identity used for leases,
// heartbeats and history attribution.
package instance

import (
	"os"

	"github.com/oklog/ulid/v2"
)

// NewID returns "hostname:ULID". The ULID part makes restarts distinct, so
// a fenced identity is never reused.
func NewID() string {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return hostname + ":" + ulid.Make().String()
}
