package appinfo

import (
	"sync/atomic"
	"time"
)

var (
	StartTime time.Time

	TotalInvitations atomic.Int64
	TotalDataSize    atomic.Int64
	TotalRSVPs       atomic.Int64
)

// AddInvitation: Called after a new invitation row is written
func AddInvitation(size int64) {
	TotalInvitations.Add(1)
	TotalDataSize.Add(size)
}

// RemoveInvitation: Called after an invitation and its RSVPs are deleted
func RemoveInvitation(size int64, rsvps int64) {
	TotalInvitations.Add(-1)
	TotalDataSize.Add(-size)
	TotalRSVPs.Add(-rsvps)
}

// ResizeInvitation: Called when an update changes the stored JSON size
func ResizeInvitation(delta int64) {
	TotalDataSize.Add(delta)
}

func AddRSVP() {
	TotalRSVPs.Add(1)
}

// SetInitialStats: Seeds the counters from the database at startup.
func SetInitialStats(invitations, size, rsvps int64) {
	TotalInvitations.Store(invitations)
	TotalDataSize.Store(size)
	TotalRSVPs.Store(rsvps)
}

func Uptime() time.Duration {
	if StartTime.IsZero() {
		return 0
	}
	return time.Since(StartTime)
}
