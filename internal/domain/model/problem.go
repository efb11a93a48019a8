package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"
)

type ProblemDifficulty string

const (
	DifficultyEasy   ProblemDifficulty = "easy"
	DifficultyMedium ProblemDifficulty = "medium"
	DifficultyHard   ProblemDifficulty = "hard"
)

// Server-side defaults applied when a problem is created with zero limits.
const (
	DefaultTimeLimitMs    = 2000
	DefaultMemoryLimitKb  = 256000
	DefaultTestCasePoints = 10
)

// ParseDifficulty accepts any casing; the empty string means easy, matching
// the server default.
func ParseDifficulty(s string) (ProblemDifficulty, error) {
	switch d := ProblemDifficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case "":
		return DifficultyEasy, nil
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d, nil
	default:
		return "", fmt.Errorf("unknown difficulty %q (want easy, medium or hard)", s)
	}
}

type Problem struct {
	ID            int64             `json:"id"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	Difficulty    ProblemDifficulty `json:"difficulty"`
	TimeLimitMs   int               `json:"time_limit"`
	MemoryLimitKb int               `json:"memory_limit"`
	CreatedByID   int64             `json:"created_by,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	TestCases     []TestCase        `json:"test_cases,omitempty"` // samples only on public reads
}

// Slug is the display key used to look a problem up by name.
func (p *Problem) Slug() string {
	return slug.Make(p.Title)
}

// ProblemDraft is the editable metadata of a problem.
type ProblemDraft struct {
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	Difficulty    ProblemDifficulty `json:"difficulty"`
	TimeLimitMs   int               `json:"time_limit"`
	MemoryLimitKb int               `json:"memory_limit"`
}

// Draft returns the editable metadata of p.
func (p *Problem) Draft() ProblemDraft {
	return ProblemDraft{
		Title:         p.Title,
		Description:   p.Description,
		Difficulty:    p.Difficulty,
		TimeLimitMs:   p.TimeLimitMs,
		MemoryLimitKb: p.MemoryLimitKb,
	}
}

// TestCaseContent is everything about a test case except its identity.
type TestCaseContent struct {
	Input          string `json:"input" toml:"input"`
	ExpectedOutput string `json:"expected_output" toml:"expected_output"`
	IsSample       bool   `json:"is_sample" toml:"sample"`
	Points         int    `json:"points" toml:"points"`
}

// Equal compares content the way the server stores it; zero points means
// the server default.
func (c TestCaseContent) Equal(o TestCaseContent) bool {
	return c.Input == o.Input &&
		c.ExpectedOutput == o.ExpectedOutput &&
		c.IsSample == o.IsSample &&
		c.points() == o.points()
}

func (c TestCaseContent) points() int {
	if c.Points == 0 {
		return DefaultTestCasePoints
	}
	return c.Points
}

type TestCase struct {
	ID        int64     `json:"id"` // zero until the server assigns one
	ProblemID int64     `json:"problem_id"`
	CreatedAt time.Time `json:"created_at"`
	TestCaseContent
}
