package model

import (
	"encoding/json"
	"strings"
	"time"
)

// Mode says how a JudgeResult was produced.
type Mode string

const (
	ModeRun    Mode = "run"    // samples only, not persisted
	ModeSubmit Mode = "submit" // full set, persisted, affects completion
)

type CaseStatus string

const (
	StatusAccepted          CaseStatus = "accepted"
	StatusWrongAnswer       CaseStatus = "wrong-answer"
	StatusRuntimeError      CaseStatus = "runtime-error"
	StatusTimeLimitExceeded CaseStatus = "time-limit-exceeded"
	StatusCompileError      CaseStatus = "compile-error"
)

// ParseCaseStatus normalises the execution service's status descriptions
// ("Accepted", "Wrong Answer", "Runtime Error (NZEC)", ...) and the canonical
// spellings. Anything else is returned unchanged; see Known.
func ParseCaseStatus(s string) CaseStatus {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "-", "_", "-").Replace(norm)
	switch {
	case norm == "accepted" || norm == "ok":
		return StatusAccepted
	case norm == "wrong-answer" || norm == "wronganswer":
		return StatusWrongAnswer
	case norm == "time-limit-exceeded" || norm == "timelimitexceeded":
		return StatusTimeLimitExceeded
	case norm == "compile-error" || norm == "compilation-error" || norm == "compilationerror":
		return StatusCompileError
	case strings.HasPrefix(norm, "runtime-error") || norm == "runtimeerror":
		return StatusRuntimeError
	}
	return CaseStatus(strings.TrimSpace(s))
}

func (s CaseStatus) Known() bool {
	switch s {
	case StatusAccepted, StatusWrongAnswer, StatusRuntimeError, StatusTimeLimitExceeded, StatusCompileError:
		return true
	}
	return false
}

func (s *CaseStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*s = ParseCaseStatus(raw)
	return nil
}

// CaseOutcome is the result of one test case. Input and ExpectedOutput are
// empty for hidden cases; the server never sends their content.
type CaseOutcome struct {
	Passed         bool       `json:"passed"`
	Status         CaseStatus `json:"status"`
	TimeSec        float64    `json:"time"`   // seconds
	MemoryKb       int        `json:"memory"` // peak
	Stdout         string     `json:"stdout"`
	Stderr         string     `json:"stderr"`
	CompileOutput  string     `json:"compile_output"`
	ExpectedOutput string     `json:"expected_output"`
	Input          string     `json:"input"`
}

func (c *CaseOutcome) Elapsed() time.Duration {
	return time.Duration(c.TimeSec * float64(time.Second))
}

// JudgeResult is one response of the execution service. It is never merged
// with an earlier result.
type JudgeResult struct {
	SubmissionID int64         `json:"submission_id,omitempty"` // zero for run
	AllPassed    bool          `json:"all_passed"`
	TotalTests   int           `json:"total_tests"`
	PassedTests  int           `json:"passed_tests"`
	Cases        []CaseOutcome `json:"test_results"`
}

func (r *JudgeResult) HasSubmission() bool { return r.SubmissionID != 0 }

// JudgeRequest is the body of both /run and /submit.
type JudgeRequest struct {
	ProblemID  int64  `json:"problem_id"`
	LanguageID int    `json:"language_id"`
	SourceCode string `json:"source_code"`
}

// Submission is a persisted submit, as listed in history.
type Submission struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	ProblemID     int64     `json:"problem_id"`
	ProblemTitle  string    `json:"problem_title,omitempty"` // set by cross-problem listings
	LanguageID    int       `json:"language_id"`
	Status        string    `json:"status"`
	Passed        bool      `json:"passed"`
	TotalTests    int       `json:"total_tests"`
	PassedTests   int       `json:"passed_tests"`
	ExecutionTime float64   `json:"execution_time"` // seconds, summed over cases
	MemoryUsed    int       `json:"memory_used"`    // KB, peak
	ErrorMessage  string    `json:"error_message,omitempty"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// SubmissionFilter narrows listings and statistics. Zero fields match
// everything.
type SubmissionFilter struct {
	UserID    int64
	ProblemID int64
}

// SubmissionStats counts recorded submissions. SuccessRate is a percentage.
type SubmissionStats struct {
	TotalSubmissions  int     `json:"total_submissions"`
	PassedSubmissions int     `json:"passed_submissions"`
	FailedSubmissions int     `json:"failed_submissions"`
	SuccessRate       float64 `json:"success_rate"`
}
