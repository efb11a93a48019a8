package authoring

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/Neeharika2/code-assessor/internal/app/reconcile"
	"github.com/Neeharika2/code-assessor/internal/common"
	"github.com/Neeharika2/code-assessor/internal/domain/model"
	rt "github.com/Neeharika2/code-assessor/internal/domain/repository/repositorytest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type staticSession struct{ sess *model.Session }

func (s staticSession) Current() *model.Session { return s.sess }

var (
	admin   = staticSession{&model.Session{Token: "t", User: model.User{ID: 1, Username: "root", Role: model.RoleAdmin}}}
	student = staticSession{&model.Session{Token: "t", User: model.User{ID: 2, Username: "kid", Role: model.RoleStudent}}}
)

func newDeps(t *testing.T, sessions SessionSource) (Deps, *rt.Problems, *rt.TestCases) {
	problems := rt.NewProblems()
	cases := rt.NewTestCases()
	return Deps{Problems: problems, TestCases: cases, Sessions: sessions, Logger: zaptest.NewLogger(t)}, problems, cases
}

func draft(title string) model.ProblemDraft {
	return model.ProblemDraft{Title: title, Description: "Add two numbers.", Difficulty: "Medium"}
}

func tc(in, out string) model.TestCaseContent {
	return model.TestCaseContent{Input: in, ExpectedOutput: out}
}

func TestBeginRequiresAdmin(t *testing.T) {
	deps, _, _ := newDeps(t, student)
	_, err := Begin(context.Background(), deps, 0)
	require.ErrorIs(t, err, common.ErrForbidden)

	deps.Sessions = staticSession{}
	_, err = Begin(context.Background(), deps, 0)
	require.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestCreateFlow(t *testing.T) {
	ctx := context.Background()
	deps, problems, cases := newDeps(t, admin)

	w, err := Begin(ctx, deps, 0)
	require.NoError(t, err)
	assert.Equal(t, StateDraftProblem, w.State())
	assert.Equal(t, model.DefaultTimeLimitMs, w.Draft().TimeLimitMs)

	require.NoError(t, w.Handle(ctx, SaveProblemMsg{Draft: draft("A + B")}))
	assert.Equal(t, StateEditTestCases, w.State())
	require.NotZero(t, w.ProblemID())

	p, err := problems.FindProblemByID(ctx, w.ProblemID())
	require.NoError(t, err)
	assert.Equal(t, model.DifficultyMedium, p.Difficulty)
	assert.Equal(t, model.DefaultMemoryLimitKb, p.MemoryLimitKb)

	refreshed := []int64{}
	w.OnRefresh(func(id int64) { refreshed = append(refreshed, id) })

	require.NoError(t, w.Handle(ctx, AddCaseMsg{Content: tc("1 2", "3")}))
	require.NoError(t, w.Handle(ctx, AddCaseMsg{Content: tc("2 2", "4")}))
	require.NoError(t, w.Handle(ctx, CommitMsg{}))

	assert.Equal(t, StateClosed, w.State())
	assert.Equal(t, []int64{w.ProblemID()}, refreshed)
	assert.Len(t, cases.Stored(w.ProblemID()), 2)

	err = w.Handle(ctx, AddCaseMsg{Content: tc("x", "y")})
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestEditFlowPrepopulatesDraft(t *testing.T) {
	ctx := context.Background()
	deps, problems, cases := newDeps(t, admin)
	problems.Put(model.Problem{ID: 5, Title: "Old", Description: "d", Difficulty: model.DifficultyHard, TimeLimitMs: 1000, MemoryLimitKb: 1024})
	seeded := cases.Seed(5, tc("1", "1"), tc("2", "2"))

	w, err := Begin(ctx, deps, 5)
	require.NoError(t, err)
	assert.Equal(t, "Old", w.Draft().Title)
	assert.Equal(t, model.DifficultyHard, w.Draft().Difficulty)

	d := w.Draft()
	d.Title = "New"
	require.NoError(t, w.SaveProblem(ctx, d))
	p, err := problems.FindProblemByID(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "New", p.Title)
	assert.Equal(t, 1000, p.TimeLimitMs)

	entries := w.TestCases()
	require.Len(t, entries, 2)
	_, err = w.EditTestCase(entries[0].Key, tc("1", "one"))
	require.NoError(t, err)
	require.NoError(t, w.Commit(ctx))

	stored := cases.Stored(5)
	require.Len(t, stored, 2)
	assert.Equal(t, seeded[1].ID, stored[0].ID)
	assert.Equal(t, "one", stored[1].ExpectedOutput)
	assert.NotEqual(t, seeded[0].ID, stored[1].ID)
}

func TestSaveFailureStaysInDraft(t *testing.T) {
	ctx := context.Background()
	deps, problems, _ := newDeps(t, admin)
	problems.CreateErr = common.ErrorFromStatus(http.StatusConflict, "Problem title already exists")

	w, err := Begin(ctx, deps, 0)
	require.NoError(t, err)

	err = w.SaveProblem(ctx, draft("A + B"))
	require.ErrorIs(t, err, common.ErrConflict)
	assert.Equal(t, "save problem: Problem title already exists", err.Error())
	assert.Equal(t, StateDraftProblem, w.State())

	err = w.SaveProblem(ctx, model.ProblemDraft{Title: "  ", Description: "x"})
	require.ErrorIs(t, err, common.ErrValidation)

	err = w.SaveProblem(ctx, model.ProblemDraft{Title: "t", Description: "x", Difficulty: "brutal"})
	require.ErrorIs(t, err, common.ErrValidation)

	require.ErrorIs(t, w.Handle(ctx, CommitMsg{}), ErrInvalidTransition)

	problems.CreateErr = nil
	require.NoError(t, w.SaveProblem(ctx, draft("A + B")))
	assert.Equal(t, StateEditTestCases, w.State())
}

func TestPartialCommitKeepsSessionOpen(t *testing.T) {
	ctx := context.Background()
	deps, _, cases := newDeps(t, admin)
	w, err := Begin(ctx, deps, 0)
	require.NoError(t, err)
	require.NoError(t, w.SaveProblem(ctx, draft("A + B")))

	for _, in := range []string{"1", "2", "3"} {
		_, err := w.AddTestCase(tc(in, in))
		require.NoError(t, err)
	}
	refreshed := 0
	w.OnRefresh(func(int64) { refreshed++ })

	cases.Fail = func(c rt.Call) error {
		if c.Op == rt.OpCreate && c.Content.Input == "3" {
			return common.ErrorFromStatus(http.StatusInternalServerError, "database unavailable")
		}
		return nil
	}
	err = w.Commit(ctx)
	var ce *reconcile.CommitError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, reconcile.PhaseCreate, ce.Phase)
	assert.Equal(t, 3, ce.Index)
	assert.Equal(t, ce, w.LastCommitError())
	assert.Equal(t, StateEditTestCases, w.State())
	assert.Zero(t, refreshed)

	d, c := w.Pending()
	assert.Zero(t, d)
	assert.Equal(t, 1, c)

	cases.Fail = nil
	require.NoError(t, w.Commit(ctx))
	assert.Equal(t, StateClosed, w.State())
	assert.Nil(t, w.LastCommitError())
	assert.Equal(t, 1, refreshed)
	assert.Len(t, cases.Stored(w.ProblemID()), 3)
}

func TestAbandon(t *testing.T) {
	ctx := context.Background()
	deps, _, cases := newDeps(t, admin)
	w, err := Begin(ctx, deps, 0)
	require.NoError(t, err)
	require.NoError(t, w.SaveProblem(ctx, draft("A + B")))
	_, err = w.AddTestCase(tc("1", "1"))
	require.NoError(t, err)

	require.NoError(t, w.Handle(ctx, AbandonMsg{}))
	assert.Equal(t, StateClosed, w.State())
	assert.Empty(t, cases.Stored(w.ProblemID()))
	require.ErrorIs(t, w.Abandon(), ErrInvalidTransition)
	require.ErrorIs(t, w.Commit(ctx), ErrInvalidTransition)
}

func TestSyncThroughWorkflow(t *testing.T) {
	ctx := context.Background()
	deps, problems, cases := newDeps(t, admin)
	problems.Put(model.Problem{ID: 9, Title: "Echo", Description: "d", Difficulty: model.DifficultyEasy})
	cases.Seed(9, tc("a", "a"), tc("b", "b"))

	w, err := Begin(ctx, deps, 9)
	require.NoError(t, err)
	require.NoError(t, w.SaveProblem(ctx, w.Draft()))
	require.NoError(t, w.Handle(ctx, SyncCasesMsg{Cases: []model.TestCaseContent{tc("b", "b"), tc("c", "c")}}))
	require.NoError(t, w.Commit(ctx))

	var inputs []string
	for _, s := range cases.Stored(9) {
		inputs = append(inputs, s.Input)
	}
	assert.Equal(t, []string{"b", "c"}, inputs)
}

func TestDeleteProblem(t *testing.T) {
	ctx := context.Background()
	deps, problems, _ := newDeps(t, admin)
	problems.Put(model.Problem{ID: 3, Title: "x"})

	require.NoError(t, DeleteProblem(ctx, deps, 3))
	assert.Equal(t, []int64{3}, problems.Deleted)
	require.ErrorIs(t, DeleteProblem(ctx, deps, 3), common.ErrNotFound)
	require.ErrorIs(t, DeleteProblem(ctx, deps, 0), common.ErrValidation)

	deps.Sessions = student
	require.ErrorIs(t, DeleteProblem(ctx, deps, 3), common.ErrForbidden)
}

func TestCommitNotifiesListenersInOrderOutsideLock(t *testing.T) {
	ctx := context.Background()
	deps, _, _ := newDeps(t, admin)
	w, err := Begin(ctx, deps, 0)
	require.NoError(t, err)
	require.NoError(t, w.SaveProblem(ctx, draft("A + B")))
	_, err = w.AddTestCase(tc("1", "1"))
	require.NoError(t, err)

	var calls []string
	w.OnRefresh(func(id int64) {
		// reading state from a listener must not deadlock
		calls = append(calls, "first:"+w.State().String())
		w.OnRefresh(func(int64) { calls = append(calls, "late") })
	})
	w.OnRefresh(func(id int64) { calls = append(calls, "second") })

	require.NoError(t, w.Commit(ctx))
	assert.Equal(t, []string{"first:" + StateClosed.String(), "second"}, calls)
}
