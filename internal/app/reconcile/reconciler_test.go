package reconcile

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/Neeharika2/code-assessor/internal/common"
	"github.com/Neeharika2/code-assessor/internal/domain/model"
	rt "github.com/Neeharika2/code-assessor/internal/domain/repository/repositorytest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

const problemID = 7

func tc(in, out string) model.TestCaseContent {
	return model.TestCaseContent{Input: in, ExpectedOutput: out, Points: model.DefaultTestCasePoints}
}

func loaded(t *testing.T, contents ...model.TestCaseContent) (*Reconciler, *rt.TestCases, []model.TestCase) {
	t.Helper()
	repo := rt.NewTestCases()
	seeded := repo.Seed(problemID, contents...)
	r := New(repo, zaptest.NewLogger(t))
	require.NoError(t, r.Load(context.Background(), problemID))
	repo.ResetCalls()
	return r, repo, seeded
}

func contentsOf(entries []Entry) []model.TestCaseContent {
	out := make([]model.TestCaseContent, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.TestCaseContent)
	}
	return out
}

func storedContents(repo *rt.TestCases) []model.TestCaseContent {
	var out []model.TestCaseContent
	for _, c := range repo.Stored(problemID) {
		out = append(out, c.TestCaseContent)
	}
	return out
}

func entryIDs(entries []Entry) []int64 {
	out := make([]int64, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

func storedIDs(repo *rt.TestCases) []int64 {
	out := []int64{}
	for _, c := range repo.Stored(problemID) {
		out = append(out, c.ID)
	}
	return out
}

func TestLoadSeedsWorkingList(t *testing.T) {
	r, _, seeded := loaded(t, tc("1", "1"), tc("2", "4"))

	entries := r.Entries()
	require.Len(t, entries, 2)
	for i, e := range entries {
		assert.Equal(t, OriginExisting, e.Origin)
		assert.Equal(t, seeded[i].ID, e.ID)
		assert.NotEmpty(t, e.Key)
	}
	d, c := r.Pending()
	assert.Zero(t, d)
	assert.Zero(t, c)
}

func TestOperationsBeforeLoad(t *testing.T) {
	r := New(rt.NewTestCases(), nil)
	_, err := r.Add(tc("1", "1"))
	require.ErrorIs(t, err, ErrNotLoaded)
	require.ErrorIs(t, r.Commit(context.Background()), ErrNotLoaded)
	require.ErrorIs(t, r.Load(context.Background(), 0), common.ErrValidation)
}

func TestAddAndRemoveNewEntryIsLocalOnly(t *testing.T) {
	r, repo, _ := loaded(t, tc("1", "1"))

	e, err := r.Add(tc("5", "25"))
	require.NoError(t, err)
	assert.Equal(t, OriginNew, e.Origin)
	assert.Zero(t, e.ID)
	require.NoError(t, r.Remove(e.Key))

	require.NoError(t, r.Commit(context.Background()))
	assert.Empty(t, repo.Mutations())
}

func TestRemoveUnknownEntry(t *testing.T) {
	r, _, _ := loaded(t)
	require.ErrorIs(t, r.Remove("nope"), ErrUnknownEntry)
	require.ErrorIs(t, r.Remove("nope"), common.ErrNotFound)
}

func TestCommitOrderDeletesThenCreates(t *testing.T) {
	r, repo, seeded := loaded(t, tc("a", "A"), tc("b", "B"), tc("c", "C"))
	entries := r.Entries()

	_, err := r.Add(tc("x", "X"))
	require.NoError(t, err)
	require.NoError(t, r.Remove(entries[2].Key))
	_, err = r.Add(tc("y", "Y"))
	require.NoError(t, err)
	require.NoError(t, r.Remove(entries[0].Key))

	d, c := r.Pending()
	assert.Equal(t, 2, d)
	assert.Equal(t, 2, c)

	require.NoError(t, r.Commit(context.Background()))

	calls := repo.Mutations()
	require.Len(t, calls, 4)
	assert.Equal(t, rt.Call{Op: rt.OpDelete, ProblemID: problemID, ID: seeded[2].ID}, calls[0])
	assert.Equal(t, rt.Call{Op: rt.OpDelete, ProblemID: problemID, ID: seeded[0].ID}, calls[1])
	assert.Equal(t, rt.OpCreate, calls[2].Op)
	assert.Equal(t, "x", calls[2].Content.Input)
	assert.Equal(t, rt.OpCreate, calls[3].Op)
	assert.Equal(t, "y", calls[3].Content.Input)

	// the server now holds exactly the working list
	assert.ElementsMatch(t, contentsOf(r.Entries()), storedContents(repo))
	assert.ElementsMatch(t, entryIDs(r.Entries()), storedIDs(repo))
	for _, e := range r.Entries() {
		assert.Equal(t, OriginExisting, e.Origin)
		assert.NotZero(t, e.ID)
	}
}

func TestSecondCommitIsNoOp(t *testing.T) {
	r, repo, _ := loaded(t, tc("a", "A"))
	_, err := r.Add(tc("b", "B"))
	require.NoError(t, err)
	require.NoError(t, r.Commit(context.Background()))

	repo.ResetCalls()
	require.NoError(t, r.Commit(context.Background()))
	assert.Empty(t, repo.Mutations())
}

func TestUnmodifiedEntriesAreNeverResent(t *testing.T) {
	r, repo, _ := loaded(t, tc("a", "A"), tc("b", "B"))
	_, err := r.Add(tc("c", "C"))
	require.NoError(t, err)
	require.NoError(t, r.Commit(context.Background()))

	calls := repo.Mutations()
	require.Len(t, calls, 1)
	assert.Equal(t, "c", calls[0].Content.Input)
}

func TestEditIsRemovePlusAddAndChangesID(t *testing.T) {
	r, repo, seeded := loaded(t, tc("a", "A"), tc("b", "B"))
	first := r.Entries()[0]

	edited, err := r.Edit(first.Key, tc("a", "AA"))
	require.NoError(t, err)
	assert.Equal(t, OriginNew, edited.Origin)
	assert.NotEqual(t, first.Key, edited.Key)

	entries := r.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].Input, "edited entry moves to the end")
	assert.Equal(t, edited.Key, entries[1].Key)

	require.NoError(t, r.Commit(context.Background()))
	after := r.Entries()[1]
	assert.NotEqual(t, seeded[0].ID, after.ID)
	assert.Equal(t, []rt.Op{rt.OpDelete, rt.OpCreate}, ops(repo.Mutations()))
}

func TestEditWithSameContentKeepsEntry(t *testing.T) {
	r, repo, _ := loaded(t, tc("a", "A"))
	first := r.Entries()[0]

	same := tc("a", "A")
	same.Points = 0 // server default
	e, err := r.Edit(first.Key, same)
	require.NoError(t, err)
	assert.Equal(t, first, e)
	require.NoError(t, r.Commit(context.Background()))
	assert.Empty(t, repo.Mutations())
}

func TestPartialFailureReportsIndexAndResumes(t *testing.T) {
	r, repo, seeded := loaded(t, tc("a", "A"))
	require.NoError(t, r.Remove(r.Entries()[0].Key))
	for _, in := range []string{"1", "2", "3"} {
		_, err := r.Add(tc(in, in))
		require.NoError(t, err)
	}

	creates := 0
	repo.Fail = func(c rt.Call) error {
		if c.Op == rt.OpCreate {
			creates++
			if creates == 2 {
				return common.ErrorFromStatus(http.StatusInternalServerError, "db down")
			}
		}
		return nil
	}

	err := r.Commit(context.Background())
	var ce *CommitError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, PhaseCreate, ce.Phase)
	assert.Equal(t, 2, ce.Index)
	assert.Equal(t, 3, ce.Total)
	assert.ErrorIs(t, err, common.ErrService)
	assert.Contains(t, err.Error(), "db down")

	// applied steps are reflected in state
	d, c := r.Pending()
	assert.Zero(t, d)
	assert.Equal(t, 2, c)
	stored := repo.Stored(problemID)
	require.Len(t, stored, 1)
	assert.Equal(t, "1", stored[0].Input)
	assert.NotEqual(t, seeded[0].ID, stored[0].ID)

	repo.Fail = nil
	repo.ResetCalls()
	require.NoError(t, r.Commit(context.Background()))
	calls := repo.Mutations()
	require.Len(t, calls, 2)
	assert.Equal(t, "2", calls[0].Content.Input)
	assert.Equal(t, "3", calls[1].Content.Input)
	assert.ElementsMatch(t, contentsOf(r.Entries()), storedContents(repo))
}

func TestDeleteFailureStopsBeforeCreates(t *testing.T) {
	r, repo, seeded := loaded(t, tc("a", "A"), tc("b", "B"))
	for _, e := range r.Entries() {
		require.NoError(t, r.Remove(e.Key))
	}
	_, err := r.Add(tc("c", "C"))
	require.NoError(t, err)

	repo.Fail = func(c rt.Call) error {
		if c.Op == rt.OpDelete && c.ID == seeded[1].ID {
			return common.ErrorFromStatus(http.StatusForbidden, "Admins only")
		}
		return nil
	}
	err = r.Commit(context.Background())
	var ce *CommitError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, PhaseDelete, ce.Phase)
	assert.Equal(t, 2, ce.Index)
	assert.Equal(t, seeded[1].ID, ce.TestCaseID)
	assert.ErrorIs(t, err, common.ErrForbidden)
	assert.Equal(t, []rt.Op{rt.OpDelete}, ops(repo.Mutations()))

	d, c := r.Pending()
	assert.Equal(t, 1, d)
	assert.Equal(t, 1, c)
}

func TestDeleteOfMissingCaseIsSatisfied(t *testing.T) {
	r, repo, seeded := loaded(t, tc("a", "A"))
	require.NoError(t, r.Remove(r.Entries()[0].Key))

	// someone else already deleted it
	require.NoError(t, repo.DeleteTestCase(context.Background(), problemID, seeded[0].ID))

	require.NoError(t, r.Commit(context.Background()))
	d, _ := r.Pending()
	assert.Zero(t, d)
}

func TestSyncKeepsMatchingEntries(t *testing.T) {
	r, repo, seeded := loaded(t, tc("a", "A"), tc("b", "B"), tc("c", "C"))

	require.NoError(t, r.Sync([]model.TestCaseContent{tc("c", "C"), tc("d", "D"), tc("a", "A")}))
	d, c := r.Pending()
	assert.Equal(t, 1, d)
	assert.Equal(t, 1, c)

	require.NoError(t, r.Commit(context.Background()))
	calls := repo.Mutations()
	require.Len(t, calls, 2)
	assert.Equal(t, seeded[1].ID, calls[0].ID)
	assert.Equal(t, "d", calls[1].Content.Input)
	assert.ElementsMatch(t, []model.TestCaseContent{tc("a", "A"), tc("c", "C"), tc("d", "D")}, storedContents(repo))
}

func TestWorkingListAndDeleteSetStayDisjoint(t *testing.T) {
	r, _, _ := loaded(t, tc("a", "A"), tc("a", "A"))
	require.NoError(t, r.Sync([]model.TestCaseContent{tc("a", "A")}))

	ids := map[int64]bool{}
	for _, e := range r.Entries() {
		if e.ID != 0 {
			assert.False(t, ids[e.ID], "duplicate id in working list")
			ids[e.ID] = true
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.toDelete {
		assert.False(t, ids[id], "id both kept and scheduled for deletion")
	}
}

func TestCloseDiscardsInFlightResult(t *testing.T) {
	defer goleak.VerifyNone(t)

	r, repo, _ := loaded(t)
	_, err := r.Add(tc("x", "X"))
	require.NoError(t, err)

	repo.Gate = make(chan struct{})
	repo.Started = make(chan rt.Call, 1)

	done := make(chan error, 1)
	go func() { done <- r.Commit(context.Background()) }()

	select {
	case <-repo.Started:
	case <-time.After(5 * time.Second):
		t.Fatal("commit never reached the repository")
	}

	// concurrent commit and edits are refused
	require.ErrorIs(t, r.Commit(context.Background()), ErrCommitInProgress)
	_, err = r.Add(tc("y", "Y"))
	require.ErrorIs(t, err, ErrCommitInProgress)

	r.Close()
	close(repo.Gate)

	select {
	case err := <-done:
		require.ErrorIs(t, err, ErrSessionClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("commit did not return")
	}

	// the call completed server-side but the session state was not touched
	assert.Len(t, repo.Stored(problemID), 1)
	entries := r.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, OriginNew, entries[0].Origin)
	require.ErrorIs(t, r.Commit(context.Background()), ErrSessionClosed)
}

func ops(calls []rt.Call) []rt.Op {
	out := make([]rt.Op, 0, len(calls))
	for _, c := range calls {
		out = append(out, c.Op)
	}
	return out
}

func TestCommittedEntriesCarryServerIDs(t *testing.T) {
	r, repo, seeded := loaded(t, tc("a", "A"), tc("b", "B"), tc("c", "C"))
	entries := r.Entries()

	edited, err := r.Edit(entries[1].Key, tc("b", "BB"))
	require.NoError(t, err)
	require.NoError(t, r.Remove(entries[2].Key))
	_, err = r.Add(tc("d", "D"))
	require.NoError(t, err)
	assert.Zero(t, edited.ID)

	require.NoError(t, r.Commit(context.Background()))

	ids := entryIDs(r.Entries())
	assert.ElementsMatch(t, storedIDs(repo), ids)
	assert.NotContains(t, ids, int64(0))
	assert.Contains(t, ids, seeded[0].ID, "untouched entry keeps its id")
	assert.NotContains(t, ids, seeded[1].ID, "edited entry was replaced")
	assert.NotContains(t, ids, seeded[2].ID)
	for _, e := range r.Entries() {
		assert.Equal(t, OriginExisting, e.Origin)
	}
}
