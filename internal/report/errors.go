package report

import (
	"errors"
	"fmt"
)

var (
	// ErrGoalNotFound means the goal does not exist or belongs to another user.
	ErrGoalNotFound = errors.New("goal not found")
	// ErrReportNotFound means no report matches the requested id or goal.
	ErrReportNotFound = errors.New("report not found")
	// ErrEmptyMemo rejects memo writes with no content after trimming.
	ErrEmptyMemo = errors.New("memo content cannot be empty")
)

// PreconditionError signals that a memo phase cannot be generated because an
// earlier phase has not been written yet.
type PreconditionError struct {
	Missing MemoPhase
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("required memo phase %q has not been written yet", e.Missing)
}
