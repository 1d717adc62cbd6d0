package types

// Status is the outcome of one execution. Exactly one status applies.
type Status string

// Execution statuses.
const (
	StatusCompleted   Status = "completed"
	StatusNotExecuted Status = "not_executed"
	StatusFailed      Status = "failed"
)

// Result is returned by every execution.
type Result struct {
	Status Status `json:"status"`
	Data   any    `json:"data,omitempty"`
	Reason string `json:"reason,omitempty"` // Rejection reason when not executed.
	Err    error  `json:"-"`                // Cause when failed.
}

// Completed reports whether the strategy ran and produced Data.
func (r Result) Completed() bool { return r.Status == StatusCompleted }

// Executed reports whether the command got past the pre handlers.
func (r Result) Executed() bool { return r.Status != StatusNotExecuted }

// Failed reports whether the execution failed.
func (r Result) Failed() bool { return r.Status == StatusFailed }
