package reconcile

import "fmt"

type Phase string

const (
	PhaseDelete Phase = "delete"
	PhaseCreate Phase = "create"
)

// CommitError is the first failed call of a commit. Index is 1-based within
// the phase; every earlier step of the commit was applied.
type CommitError struct {
	Phase      Phase
	Index      int
	Total      int
	TestCaseID int64  // delete phase
	Key        string // create phase
	Err        error
}

func (e *CommitError) Error() string {
	if e.Phase == PhaseDelete {
		return fmt.Sprintf("delete test case %d (step %d of %d): %v", e.TestCaseID, e.Index, e.Total, e.Err)
	}
	return fmt.Sprintf("create test case (step %d of %d): %v", e.Index, e.Total, e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }
