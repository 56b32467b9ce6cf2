// Package clockid provides the hub's notion of time and identity: wall-clock
// timestamps for events and records, and 128-bit random identifiers for
// tasks. Agent identifiers are supplied by clients and are not generated
// here.
package clockid

import (
	"time"

	"github.com/google/uuid"
)

// Now returns the current timestamp used for last-seen marks, event
// timestamps, and task lifecycle transitions.
func Now() time.Time {
	return time.Now().UTC()
}

// NewTaskID returns a new 128-bit random task identifier.
func NewTaskID() string {
	return uuid.New().String()
}
