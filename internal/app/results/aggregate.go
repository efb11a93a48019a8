// Package results turns a raw judge result into what the user is allowed to
// see.
package results

import "github.com/Neeharika2/code-assessor/internal/domain/model"

type Headline struct {
	AllPassed   bool
	PassedTests int
	TotalTests  int
}

// Row is one visible case. Number is the 1-based position in the server's
// order, so gaps show where hidden cases were.
type Row struct {
	Number int
	model.CaseOutcome
}

type Display struct {
	Mode         model.Mode
	SubmissionID int64
	Headline     Headline
	Rows         []Row
	Hidden       int
}

// Aggregate builds the display model. Counts are always the server's; in
// submit mode cases without input or expected output text are hidden cases
// and are left out of Rows.
func Aggregate(res *model.JudgeResult, mode model.Mode) Display {
	d := Display{
		Mode:         mode,
		SubmissionID: res.SubmissionID,
		Headline: Headline{
			AllPassed:   res.AllPassed,
			PassedTests: res.PassedTests,
			TotalTests:  res.TotalTests,
		},
		Rows: make([]Row, 0, len(res.Cases)),
	}
	for i, c := range res.Cases {
		if mode == model.ModeSubmit && !visible(c) {
			d.Hidden++
			continue
		}
		d.Rows = append(d.Rows, Row{Number: i + 1, CaseOutcome: c})
	}
	return d
}

func visible(c model.CaseOutcome) bool {
	return c.Input != "" || c.ExpectedOutput != ""
}
