package results

import (
	"fmt"
	"io"
	"strings"

	"github.com/Neeharika2/code-assessor/internal/domain/model"
	"github.com/fatih/color"
)

var (
	passColor = color.New(color.FgGreen, color.Bold)
	failColor = color.New(color.FgRed, color.Bold)
	dimColor  = color.New(color.Faint)
)

// Render writes a terminal view of d.
func Render(w io.Writer, d Display) {
	h := d.Headline
	verdict := passColor.Sprint("ALL PASSED")
	if !h.AllPassed {
		verdict = failColor.Sprint("FAILED")
	}
	fmt.Fprintf(w, "%s  %d / %d passed", verdict, h.PassedTests, h.TotalTests)
	if d.SubmissionID != 0 {
		fmt.Fprintf(w, "  (submission #%d)", d.SubmissionID)
	}
	fmt.Fprintln(w)

	for _, r := range d.Rows {
		mark := passColor.Sprint("✓")
		if !r.Passed {
			mark = failColor.Sprint("✗")
		}
		fmt.Fprintf(w, "%s case %d  %-20s %s\n", mark, r.Number, statusLabel(r.Status),
			dimColor.Sprintf("%.3fs %dKB", r.TimeSec, r.MemoryKb))
		if r.Passed {
			continue
		}
		block(w, "input", r.Input)
		block(w, "expected", r.ExpectedOutput)
		block(w, "stdout", r.Stdout)
		block(w, "stderr", r.Stderr)
		block(w, "compile output", r.CompileOutput)
	}
	if d.Hidden > 0 {
		fmt.Fprintln(w, dimColor.Sprintf("%d hidden test case(s) not shown", d.Hidden))
	}
}

func statusLabel(s model.CaseStatus) string {
	if s == "" {
		return "unknown"
	}
	return string(s)
}

func block(w io.Writer, label, text string) {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return
	}
	fmt.Fprintf(w, "    %s:\n", dimColor.Sprint(label))
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintf(w, "      %s\n", line)
	}
}
