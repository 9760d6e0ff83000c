package model

import "time"

// Operation names a hosted workflow invocation.
type Operation string

const (
	OperationFetch  Operation = "FETCH"
	OperationUpdate Operation = "UPDATE"
)

// ActivityRun is the transcript of one workflow invocation.
type ActivityRun struct {
	RunID      string
	Operation  Operation
	MemberID   int64
	Lines      []string
	Failed     bool
	RecordedAt time.Time
}
