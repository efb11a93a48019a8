package simulator

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Neeharika2/code-assessor/internal/common"
	"github.com/Neeharika2/code-assessor/internal/domain/model"
	"go.uber.org/zap"
)

type ProblemService struct {
	store  *Store
	logger *zap.Logger
}

func NewProblemService(store *Store, logger *zap.Logger) *ProblemService {
	return &ProblemService{store: store, logger: logger}
}

func validateDraft(d *model.ProblemDraft) error {
	if strings.TrimSpace(d.Title) == "" || strings.TrimSpace(d.Description) == "" {
		return fmt.Errorf("title and description are required: %w", common.ErrValidation)
	}
	diff, err := model.ParseDifficulty(string(d.Difficulty))
	if err != nil {
		return fmt.Errorf("%v: %w", err, common.ErrValidation)
	}
	d.Difficulty = diff
	if d.TimeLimitMs < 0 || d.MemoryLimitKb < 0 {
		return fmt.Errorf("limits must not be negative: %w", common.ErrValidation)
	}
	if d.TimeLimitMs == 0 {
		d.TimeLimitMs = model.DefaultTimeLimitMs
	}
	if d.MemoryLimitKb == 0 {
		d.MemoryLimitKb = model.DefaultMemoryLimitKb
	}
	return nil
}

func (s *ProblemService) ListProblems(ctx context.Context) []model.Problem {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	out := make([]model.Problem, 0, len(s.store.problems))
	for _, p := range s.store.problems {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GetProblem returns the public view: only sample test cases are attached.
func (s *ProblemService) GetProblem(ctx context.Context, id int64) (*model.Problem, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	p, ok := s.store.problemLocked(id)
	if !ok {
		return nil, fmt.Errorf("problem not found: %w", common.ErrNotFound)
	}
	out := *p
	out.TestCases = []model.TestCase{}
	for _, tc := range s.store.testCases[id] {
		if tc.IsSample {
			out.TestCases = append(out.TestCases, tc)
		}
	}
	return &out, nil
}

func (s *ProblemService) CreateProblem(ctx context.Context, userID int64, d model.ProblemDraft) (*model.Problem, error) {
	if err := validateDraft(&d); err != nil {
		return nil, err
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	s.store.nextProblemID++
	now := s.store.now()
	p := &model.Problem{
		ID:            s.store.nextProblemID,
		Title:         strings.TrimSpace(d.Title),
		Description:   d.Description,
		Difficulty:    d.Difficulty,
		TimeLimitMs:   d.TimeLimitMs,
		MemoryLimitKb: d.MemoryLimitKb,
		CreatedByID:   userID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.store.problems[p.ID] = p
	s.logger.Info("problem created", zap.Int64("problem_id", p.ID), zap.String("slug", p.Slug()))
	out := *p
	return &out, nil
}

func (s *ProblemService) UpdateProblem(ctx context.Context, id int64, d model.ProblemDraft) error {
	if err := validateDraft(&d); err != nil {
		return err
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	p, ok := s.store.problemLocked(id)
	if !ok {
		return fmt.Errorf("problem not found: %w", common.ErrNotFound)
	}
	p.Title = strings.TrimSpace(d.Title)
	p.Description = d.Description
	p.Difficulty = d.Difficulty
	p.TimeLimitMs = d.TimeLimitMs
	p.MemoryLimitKb = d.MemoryLimitKb
	p.UpdatedAt = s.store.now()
	return nil
}

// DeleteProblem cascades to everything recorded against the problem.
func (s *ProblemService) DeleteProblem(ctx context.Context, id int64) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if _, ok := s.store.problemLocked(id); !ok {
		return fmt.Errorf("problem not found: %w", common.ErrNotFound)
	}
	delete(s.store.problems, id)
	delete(s.store.testCases, id)
	kept := s.store.submissions[:0]
	for _, sub := range s.store.submissions {
		if sub.ProblemID != id {
			kept = append(kept, sub)
		}
	}
	s.store.submissions = kept
	delete(s.store.pairs, id)
	for _, set := range s.store.completed {
		set.Remove(id)
	}
	s.logger.Info("problem deleted", zap.Int64("problem_id", id))
	return nil
}

func (s *ProblemService) ListTestCases(ctx context.Context, problemID int64) ([]model.TestCase, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	if _, ok := s.store.problemLocked(problemID); !ok {
		return nil, fmt.Errorf("problem not found: %w", common.ErrNotFound)
	}
	return append([]model.TestCase{}, s.store.testCases[problemID]...), nil
}

func (s *ProblemService) CreateTestCase(ctx context.Context, problemID int64, c model.TestCaseContent) (*model.TestCase, error) {
	if c.Points < 0 {
		return nil, fmt.Errorf("points must not be negative: %w", common.ErrValidation)
	}
	if c.Points == 0 {
		c.Points = model.DefaultTestCasePoints
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if _, ok := s.store.problemLocked(problemID); !ok {
		return nil, fmt.Errorf("problem not found: %w", common.ErrNotFound)
	}
	s.store.nextTestCaseID++
	tc := model.TestCase{ID: s.store.nextTestCaseID, ProblemID: problemID, CreatedAt: s.store.now(), TestCaseContent: c}
	s.store.testCases[problemID] = append(s.store.testCases[problemID], tc)
	return &tc, nil
}

func (s *ProblemService) DeleteTestCase(ctx context.Context, problemID, testCaseID int64) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	cases := s.store.testCases[problemID]
	for i, tc := range cases {
		if tc.ID == testCaseID {
			s.store.testCases[problemID] = append(cases[:i], cases[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("test case not found: %w", common.ErrNotFound)
}
