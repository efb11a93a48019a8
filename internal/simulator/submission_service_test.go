package simulator

import (
	"context"
	"testing"

	"github.com/Neeharika2/code-assessor/internal/common"
	"github.com/Neeharika2/code-assessor/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_SamplesOnly(t *testing.T) {
	f := newFixture(t)
	pid := f.problem(t,
		model.TestCaseContent{Input: "a", ExpectedOutput: "a", IsSample: true},
		model.TestCaseContent{Input: "b", ExpectedOutput: "B", IsSample: true},
		model.TestCaseContent{Input: "h", ExpectedOutput: "h"},
	)

	res, err := f.subs.Run(context.Background(), model.JudgeRequest{ProblemID: pid, LanguageID: 71, SourceCode: "echo"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalTests)
	assert.Equal(t, 1, res.PassedTests)
	assert.False(t, res.AllPassed)
	assert.Zero(t, res.SubmissionID)
	assert.Equal(t, model.StatusWrongAnswer, res.Cases[1].Status)

	res, err = f.subs.Run(context.Background(), model.JudgeRequest{ProblemID: pid, LanguageID: 71, SourceCode: "SIM_UPPER"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.PassedTests, "only the upper-case expectation matches")
}

func TestRun_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hiddenOnly := f.problem(t, model.TestCaseContent{Input: "h", ExpectedOutput: "h"})

	for name, req := range map[string]model.JudgeRequest{
		"no problem":      {LanguageID: 71, SourceCode: "x"},
		"no source":       {ProblemID: hiddenOnly, LanguageID: 71},
		"bad language":    {ProblemID: hiddenOnly, LanguageID: 1, SourceCode: "x"},
		"no sample cases": {ProblemID: hiddenOnly, LanguageID: 71, SourceCode: "x"},
	} {
		_, err := f.subs.Run(ctx, req)
		assert.ErrorIs(t, err, common.ErrValidation, name)
	}
	_, err := f.subs.Run(ctx, model.JudgeRequest{ProblemID: 77, LanguageID: 71, SourceCode: "x"})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSubmit_RecordsAndStripsHidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pid := f.problem(t,
		model.TestCaseContent{Input: "s", ExpectedOutput: "s", IsSample: true},
		model.TestCaseContent{Input: "h", ExpectedOutput: "h"},
	)
	uid := f.user(t, "dana")

	res, err := f.subs.Submit(ctx, uid, model.JudgeRequest{ProblemID: pid, LanguageID: 60, SourceCode: "SIM_RUNTIME_ERROR"})
	require.NoError(t, err)
	assert.False(t, res.AllPassed)
	assert.Empty(t, f.subs.Completed(ctx, uid))

	res, err = f.subs.Submit(ctx, uid, model.JudgeRequest{ProblemID: pid, LanguageID: 60, SourceCode: "package main"})
	require.NoError(t, err)
	assert.True(t, res.AllPassed)
	assert.Equal(t, int64(2), res.SubmissionID)
	assert.Equal(t, "s", res.Cases[0].Input)
	assert.Equal(t, "s", res.Cases[0].Stdout)
	assert.Empty(t, res.Cases[1].Input)
	assert.Empty(t, res.Cases[1].ExpectedOutput)
	assert.Empty(t, res.Cases[1].Stdout)
	assert.Equal(t, []int64{pid}, f.subs.Completed(ctx, uid))

	history := f.subs.History(ctx, uid, pid)
	require.Len(t, history, 2)
	assert.Equal(t, int64(2), history[0].ID, "newest first")
	assert.True(t, history[0].Passed)
	assert.Equal(t, 2, history[0].PassedTests)
	assert.Empty(t, f.subs.History(ctx, uid+1, pid))
}

func TestMine_NewestFirstAcrossProblems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sample := model.TestCaseContent{Input: "1", ExpectedOutput: "1", IsSample: true}
	p1, p2 := f.problem(t, sample), f.problem(t, sample)
	ann, ben := f.user(t, "ann"), f.user(t, "ben")

	submit := func(user, pid int64, src string) {
		_, err := f.subs.Submit(ctx, user, model.JudgeRequest{ProblemID: pid, LanguageID: 71, SourceCode: src})
		require.NoError(t, err)
	}
	submit(ann, p1, "echo")
	submit(ann, p1, "SIM_COMPILE_ERROR")
	submit(ann, p2, "echo")
	submit(ben, p1, "echo")

	mine := f.subs.Mine(ctx, ann, 0)
	require.Len(t, mine, 3)
	assert.Equal(t, p2, mine[0].ProblemID)
	assert.Greater(t, mine[0].ID, mine[1].ID)
	assert.Greater(t, mine[1].ID, mine[2].ID)
	assert.Equal(t, "P", mine[0].ProblemTitle)

	assert.Len(t, f.subs.Mine(ctx, ann, p1), 2)
	assert.Empty(t, f.subs.Mine(ctx, ben, p2))

	for i := 0; i < mineLimit+5; i++ {
		submit(ben, p2, "echo")
	}
	assert.Len(t, f.subs.Mine(ctx, ben, 0), mineLimit)
}

func TestStats_FiltersApplyToEveryCount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sample := model.TestCaseContent{Input: "1", ExpectedOutput: "1", IsSample: true}
	p1, p2 := f.problem(t, sample), f.problem(t, sample)
	ann, ben := f.user(t, "ann"), f.user(t, "ben")

	for _, s := range []struct {
		user, pid int64
		src       string
	}{
		{ann, p1, "echo"},
		{ann, p1, "SIM_COMPILE_ERROR"},
		{ann, p2, "echo"},
		{ben, p1, "echo"},
	} {
		_, err := f.subs.Submit(ctx, s.user, model.JudgeRequest{ProblemID: s.pid, LanguageID: 71, SourceCode: s.src})
		require.NoError(t, err)
	}

	all := f.subs.Stats(ctx, model.SubmissionFilter{})
	assert.Equal(t, model.SubmissionStats{TotalSubmissions: 4, PassedSubmissions: 3, FailedSubmissions: 1, SuccessRate: 75}, all)

	byUser := f.subs.Stats(ctx, model.SubmissionFilter{UserID: ann})
	assert.Equal(t, 3, byUser.TotalSubmissions)
	assert.Equal(t, 2, byUser.PassedSubmissions)
	assert.InDelta(t, 66.67, byUser.SuccessRate, 0.01)

	byProblem := f.subs.Stats(ctx, model.SubmissionFilter{ProblemID: p1})
	assert.Equal(t, 3, byProblem.TotalSubmissions)
	assert.Equal(t, 2, byProblem.PassedSubmissions)
	assert.Equal(t, 1, byProblem.FailedSubmissions)

	none := f.subs.Stats(ctx, model.SubmissionFilter{UserID: ben, ProblemID: p2})
	assert.Equal(t, model.SubmissionStats{}, none)
}
