package simulator

import (
	"context"
	"strings"

	"github.com/Neeharika2/code-assessor/internal/domain/model"
)

// Executor runs one program against one input.
type Executor interface {
	Execute(ctx context.Context, job Job) (model.CaseOutcome, error)
}

type Job struct {
	Source        string
	LanguageID    int
	Input         string
	Expected      string
	TimeLimitMs   int
	MemoryLimitKb int
}

// Markers recognised by EchoExecutor anywhere in the source.
const (
	MarkerCompileError = "SIM_COMPILE_ERROR"
	MarkerRuntimeError = "SIM_RUNTIME_ERROR"
	MarkerTimeLimit    = "SIM_TIME_LIMIT"
	MarkerUpper        = "SIM_UPPER"
)

// EchoExecutor is a deterministic sandbox: every program prints its input
// back, optionally upper-cased, unless a marker asks for a failure.
type EchoExecutor struct{}

func (EchoExecutor) Execute(ctx context.Context, job Job) (model.CaseOutcome, error) {
	if err := ctx.Err(); err != nil {
		return model.CaseOutcome{}, err
	}
	out := model.CaseOutcome{
		Input:          job.Input,
		ExpectedOutput: job.Expected,
		TimeSec:        0.001 * float64(1+len(job.Input)),
		MemoryKb:       1024 + len(job.Source),
	}

	switch {
	case strings.Contains(job.Source, MarkerCompileError):
		out.Status = model.StatusCompileError
		out.CompileOutput = "main: syntax error near " + MarkerCompileError
		out.TimeSec, out.MemoryKb = 0, 0
		return out, nil
	case strings.Contains(job.Source, MarkerRuntimeError):
		out.Status = model.StatusRuntimeError
		out.Stderr = "Traceback (most recent call last):\nRuntimeError: simulated"
		return out, nil
	case strings.Contains(job.Source, MarkerTimeLimit):
		out.Status = model.StatusTimeLimitExceeded
		out.TimeSec = float64(job.TimeLimitMs) / 1000
		return out, nil
	}

	out.Stdout = job.Input
	if strings.Contains(job.Source, MarkerUpper) {
		out.Stdout = strings.ToUpper(job.Input)
	}
	out.Passed = strings.TrimSpace(out.Stdout) == strings.TrimSpace(job.Expected)
	out.Status = model.StatusAccepted
	if !out.Passed {
		out.Status = model.StatusWrongAnswer
	}
	return out, nil
}
