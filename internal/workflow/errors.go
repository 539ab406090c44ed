package workflow

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/gyeh/grdflow/internal/model"
)

// ForbiddenError: the acting role may not perform the transition. Role is
// always checked before any state guard.
type ForbiddenError struct {
	Transition string
	Role       model.Role
	Required   model.Role
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("%s: role %q not allowed (requires %q)", e.Transition, e.Role, e.Required)
}

// GuardError: the batch is not in a state the transition accepts.
type GuardError struct {
	Transition string
	BatchID    uuid.UUID
	Expected   []model.State
	Actual     model.State
}

func (e *GuardError) Error() string {
	exp := make([]string, len(e.Expected))
	for i, s := range e.Expected {
		exp[i] = string(s)
	}
	return fmt.Sprintf("%s: batch %s is %q, expected one of [%s]",
		e.Transition, e.BatchID, e.Actual, strings.Join(exp, ", "))
}

// ValidationError: rows fail a field-completeness guard. Sample holds up to
// maxSampleEpisodes offending episode numbers; Total is the full count.
type ValidationError struct {
	Transition string
	BatchID    uuid.UUID
	Field      string
	Sample     []string
	Total      int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %d row(s) missing %s (e.g. %s)",
		e.Transition, e.Total, e.Field, strings.Join(e.Sample, ", "))
}

// ConflictError: the single-active-batch slot is occupied, or a racing
// transition won the conditional update first.
type ConflictError struct {
	Op      string
	BatchID uuid.UUID
	Estado  model.State
}

func (e *ConflictError) Error() string {
	if e.BatchID != uuid.Nil {
		return fmt.Sprintf("%s: batch %s already active in state %q", e.Op, e.BatchID, e.Estado)
	}
	return fmt.Sprintf("%s: lost conditional update to a concurrent transition", e.Op)
}

// NotFoundError: the referenced batch or row does not exist (caller error).
type NotFoundError struct {
	Kind string // "batch" or "row"
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Key)
}
