package registry

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInsufficientInput marks plans that cannot be completed from the
	// currently finished indexes. Callers may provide more inputs and retry.
	ErrInsufficientInput = errors.New("insufficient input")

	// ErrCycle marks a malformed registry whose recipe graph is not a DAG.
	ErrCycle = errors.New("index dependency graph is not a DAG")
)

// InsufficientInputError reports that no combination of recipes can produce
// a requested target from the finished indexes.
type InsufficientInputError struct {
	Target    string
	Completed []string

	msg string
}

func newInsufficientInputError(target string, completed []string) *InsufficientInputError {
	var sb strings.Builder
	sb.WriteString("inputs [")
	sb.WriteString(strings.Join(completed, ", "))
	sb.WriteString("] are insufficient to create target index ")
	sb.WriteString(target)
	return &InsufficientInputError{Target: target, Completed: completed, msg: sb.String()}
}

func (e *InsufficientInputError) Error() string { return e.msg }

func (e *InsufficientInputError) Unwrap() error { return ErrInsufficientInput }

// CycleError reports a cyclic recipe graph, naming one index on a cycle.
type CycleError struct {
	Involved string
}

func (e *CycleError) Error() string {
	if e.Involved == "" {
		return ErrCycle.Error()
	}
	return fmt.Sprintf("%s: cycle involving %q", ErrCycle.Error(), e.Involved)
}

func (e *CycleError) Unwrap() error { return ErrCycle }
