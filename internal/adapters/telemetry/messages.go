package telemetry

import "time"

// MsgStepStart indicates a pipeline step of a permutation has started.
type MsgStepStart struct {
	Permutation int
	Step        string
	StartTime   time.Time
}

// MsgStepComplete indicates a pipeline step of a permutation has finished.
type MsgStepComplete struct {
	Permutation int
	Step        string
	Duration    time.Duration
	Err         error
}
