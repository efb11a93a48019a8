package authoring

import (
	"context"
	"fmt"

	"github.com/Neeharika2/code-assessor/internal/domain/model"
)

// Msg is an input to the workflow state machine.
type Msg interface{ msg() }

type SaveProblemMsg struct{ Draft model.ProblemDraft }

type AddCaseMsg struct{ Content model.TestCaseContent }

type RemoveCaseMsg struct{ Key string }

type EditCaseMsg struct {
	Key     string
	Content model.TestCaseContent
}

type SyncCasesMsg struct{ Cases []model.TestCaseContent }

type CommitMsg struct{}

type AbandonMsg struct{}

func (SaveProblemMsg) msg() {}
func (AddCaseMsg) msg()     {}
func (RemoveCaseMsg) msg()  {}
func (EditCaseMsg) msg()    {}
func (SyncCasesMsg) msg()   {}
func (CommitMsg) msg()      {}
func (AbandonMsg) msg()     {}

// Handle applies one message. Messages not valid in the current state fail
// with ErrInvalidTransition.
func (w *Workflow) Handle(ctx context.Context, m Msg) error {
	switch m := m.(type) {
	case SaveProblemMsg:
		return w.SaveProblem(ctx, m.Draft)
	case AddCaseMsg:
		_, err := w.AddTestCase(m.Content)
		return err
	case RemoveCaseMsg:
		return w.RemoveTestCase(m.Key)
	case EditCaseMsg:
		_, err := w.EditTestCase(m.Key, m.Content)
		return err
	case SyncCasesMsg:
		return w.SyncTestCases(m.Cases)
	case CommitMsg:
		return w.Commit(ctx)
	case AbandonMsg:
		return w.Abandon()
	}
	return fmt.Errorf("unknown message %T: %w", m, ErrInvalidTransition)
}
