package results

import (
	"bytes"
	"testing"

	"github.com/Neeharika2/code-assessor/internal/domain/model"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(in, out string, passed bool) model.CaseOutcome {
	status := model.StatusAccepted
	if !passed {
		status = model.StatusWrongAnswer
	}
	return model.CaseOutcome{Passed: passed, Status: status, Input: in, ExpectedOutput: out, Stdout: out}
}

func hidden(passed bool) model.CaseOutcome {
	return model.CaseOutcome{Passed: passed, Status: model.StatusAccepted}
}

func TestRunModeShowsEveryCase(t *testing.T) {
	res := &model.JudgeResult{
		TotalTests:  3,
		PassedTests: 2,
		Cases:       []model.CaseOutcome{sample("1", "1", true), sample("2", "4", false), hidden(true)},
	}
	d := Aggregate(res, model.ModeRun)
	assert.Len(t, d.Rows, len(res.Cases))
	assert.Zero(t, d.Hidden)
	assert.Equal(t, []int{1, 2, 3}, numbers(d))
}

func TestSubmitModeHidesContentlessCases(t *testing.T) {
	res := &model.JudgeResult{
		SubmissionID: 12,
		TotalTests:   5,
		PassedTests:  4,
		Cases: []model.CaseOutcome{
			sample("1 2", "3", true),
			hidden(true),
			hidden(false),
			{Passed: true, ExpectedOutput: "only expected"},
			hidden(true),
		},
	}
	d := Aggregate(res, model.ModeSubmit)

	assert.Equal(t, Headline{AllPassed: false, PassedTests: 4, TotalTests: 5}, d.Headline)
	assert.Equal(t, []int{1, 4}, numbers(d))
	assert.Equal(t, 3, d.Hidden)
	assert.Equal(t, int64(12), d.SubmissionID)
}

func TestSubmitWithEveryCaseHidden(t *testing.T) {
	res := &model.JudgeResult{
		SubmissionID: 30,
		TotalTests:   3,
		PassedTests:  2,
		Cases:        []model.CaseOutcome{hidden(true), hidden(false), hidden(true)},
	}
	d := Aggregate(res, model.ModeSubmit)

	assert.Empty(t, d.Rows)
	assert.Equal(t, len(res.Cases), d.Hidden)
	assert.Equal(t, Headline{AllPassed: res.AllPassed, PassedTests: res.PassedTests, TotalTests: res.TotalTests}, d.Headline)

	var buf bytes.Buffer
	color.NoColor = true
	Render(&buf, d)
	assert.Contains(t, buf.String(), "FAILED  2 / 3 passed  (submission #30)")
	assert.Contains(t, buf.String(), "3 hidden test case(s) not shown")
	assert.NotContains(t, buf.String(), "case 1")
}

func TestCountsComeFromServerNotRows(t *testing.T) {
	// the server may report more tests than it returns rows for
	res := &model.JudgeResult{AllPassed: true, TotalTests: 10, PassedTests: 10, Cases: []model.CaseOutcome{sample("a", "b", true)}}
	d := Aggregate(res, model.ModeSubmit)
	assert.Equal(t, 10, d.Headline.TotalTests)
	assert.Equal(t, 10, d.Headline.PassedTests)
	assert.Len(t, d.Rows, 1)
}

func TestRender(t *testing.T) {
	color.NoColor = true
	res := &model.JudgeResult{
		SubmissionID: 12,
		TotalTests:   3,
		PassedTests:  1,
		Cases: []model.CaseOutcome{
			sample("1", "1", true),
			{Passed: false, Status: model.StatusCompileError, Input: "2", ExpectedOutput: "4", CompileOutput: "main.c:1: error"},
			hidden(false),
		},
	}

	var buf bytes.Buffer
	Render(&buf, Aggregate(res, model.ModeSubmit))
	out := buf.String()

	require.Contains(t, out, "FAILED  1 / 3 passed  (submission #12)")
	assert.Contains(t, out, "case 2")
	assert.Contains(t, out, "compile-error")
	assert.Contains(t, out, "main.c:1: error")
	assert.Contains(t, out, "1 hidden test case(s) not shown")
	assert.NotContains(t, out, "case 3")
}

func numbers(d Display) []int {
	out := make([]int, 0, len(d.Rows))
	for _, r := range d.Rows {
		out = append(out, r.Number)
	}
	return out
}
