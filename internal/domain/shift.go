package domain

import "time"

// Shift is one work day at a pickup point. WorkerID is nil until a
// worker takes the shift.
type Shift struct {
	ID       int64
	PointID  int64
	Date     time.Time
	WorkerID *int64
}
