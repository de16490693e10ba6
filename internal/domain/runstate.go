package domain

import "time"

// RunState is the persisted watermark separating announcements already
// processed by an earlier run from new ones. It is read once at the start of
// a run and written once after the report has been persisted.
type RunState struct {
	LastRun time.Time
}
