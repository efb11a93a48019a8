package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/Neeharika2/code-assessor/internal/common"
	"github.com/Neeharika2/code-assessor/internal/domain/model"
	"github.com/pelletier/go-toml/v2"
)

// problemFile is the on-disk form of a problem and its full test-case list:
//
//	title = "Echo"
//	difficulty = "easy"
//	time_limit = 1000
//
//	[[test_cases]]
//	input = "1\n"
//	expected_output = "1\n"
//	sample = true
type problemFile struct {
	Title         string                  `toml:"title"`
	Description   string                  `toml:"description"`
	Difficulty    string                  `toml:"difficulty"`
	TimeLimitMs   int                     `toml:"time_limit"`
	MemoryLimitKb int                     `toml:"memory_limit"`
	TestCases     []model.TestCaseContent `toml:"test_cases"`
}

func readProblemFile(path string) (*problemFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read problem file: %w", err)
	}
	var pf problemFile
	dec := toml.NewDecoder(bytes.NewReader(raw)).DisallowUnknownFields()
	if err := dec.Decode(&pf); err != nil {
		return nil, fmt.Errorf("%s: %v: %w", path, err, common.ErrValidation)
	}
	return &pf, nil
}

func (pf *problemFile) draft() model.ProblemDraft {
	return model.ProblemDraft{
		Title:         pf.Title,
		Description:   pf.Description,
		Difficulty:    model.ProblemDifficulty(pf.Difficulty),
		TimeLimitMs:   pf.TimeLimitMs,
		MemoryLimitKb: pf.MemoryLimitKb,
	}
}
