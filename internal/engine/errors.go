package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/metakernel/pkg/types"
)

// ErrPanic marks a failure raised by a panicking handler or strategy.
var ErrPanic = errors.New("panic during execution")

// Kind classifies an execution failure.
type Kind string

// Failure kinds.
const (
	// KindRequest is a malformed request: no context or no entity name.
	KindRequest Kind = "request"
	// KindConfiguration is an engine that cannot serve the command, such
	// as an unsupported command type or one with no bound strategy.
	KindConfiguration Kind = "configuration"
	// KindExecution is a failure raised by a handler, the strategy, or
	// the store underneath it.
	KindExecution Kind = "execution"
)

// ExecutionError is the single failure type returned by Execute. It
// carries the original cause.
type ExecutionError struct {
	Kind    Kind
	Command types.CommandType
	Entity  string
	Handler string // Set when a handler failed.
	Err     error
}

func (e *ExecutionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s error", e.Kind)
	if e.Command != "" || e.Entity != "" {
		fmt.Fprintf(&b, ": %s %s", e.Command, e.Entity)
	}
	if e.Handler != "" {
		fmt.Fprintf(&b, " (handler %s)", e.Handler)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// KindOf returns the kind of the first ExecutionError in err's chain.
func KindOf(err error) (Kind, bool) {
	var ee *ExecutionError
	if errors.As(err, &ee) {
		return ee.Kind, true
	}
	return "", false
}

// IsConfiguration reports whether err is a configuration failure.
func IsConfiguration(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindConfiguration
}

// IsExecution reports whether err is an execution failure.
func IsExecution(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindExecution
}
