package simulator

import (
	"context"
	"fmt"
	"sort"

	"github.com/Neeharika2/code-assessor/internal/common"
	"github.com/Neeharika2/code-assessor/internal/domain/model"
	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/zap"
)

type SubmissionService struct {
	store    *Store
	executor Executor
	logger   *zap.Logger
}

func NewSubmissionService(store *Store, executor Executor, logger *zap.Logger) *SubmissionService {
	return &SubmissionService{store: store, executor: executor, logger: logger}
}

func (s *SubmissionService) load(req model.JudgeRequest, samplesOnly bool) (model.Problem, []model.TestCase, error) {
	if req.ProblemID == 0 || req.SourceCode == "" {
		return model.Problem{}, nil, fmt.Errorf("problem_id and source_code are required: %w", common.ErrValidation)
	}
	if _, ok := model.LookupLanguage(req.LanguageID); !ok {
		return model.Problem{}, nil, fmt.Errorf("unsupported language_id %d: %w", req.LanguageID, common.ErrValidation)
	}

	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	p, ok := s.store.problemLocked(req.ProblemID)
	if !ok {
		return model.Problem{}, nil, fmt.Errorf("problem not found: %w", common.ErrNotFound)
	}
	var cases []model.TestCase
	for _, tc := range s.store.testCases[req.ProblemID] {
		if !samplesOnly || tc.IsSample {
			cases = append(cases, tc)
		}
	}
	if len(cases) == 0 {
		return model.Problem{}, nil, fmt.Errorf("no test cases found for this problem: %w", common.ErrValidation)
	}
	return *p, cases, nil
}

func (s *SubmissionService) judge(ctx context.Context, p model.Problem, cases []model.TestCase, req model.JudgeRequest) (*model.JudgeResult, error) {
	res := &model.JudgeResult{TotalTests: len(cases), Cases: make([]model.CaseOutcome, 0, len(cases))}
	for _, tc := range cases {
		out, err := s.executor.Execute(ctx, Job{
			Source:        req.SourceCode,
			LanguageID:    req.LanguageID,
			Input:         tc.Input,
			Expected:      tc.ExpectedOutput,
			TimeLimitMs:   p.TimeLimitMs,
			MemoryLimitKb: p.MemoryLimitKb,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to execute code: %v: %w", err, common.ErrService)
		}
		if out.Passed {
			res.PassedTests++
		}
		res.Cases = append(res.Cases, out)
	}
	res.AllPassed = res.PassedTests == res.TotalTests
	return res, nil
}

// Run judges against the sample cases only and records nothing.
func (s *SubmissionService) Run(ctx context.Context, req model.JudgeRequest) (*model.JudgeResult, error) {
	p, cases, err := s.load(req, true)
	if err != nil {
		return nil, err
	}
	return s.judge(ctx, p, cases, req)
}

// Submit judges against every case, records the submission and marks the
// problem completed on a full pass. Hidden case content is stripped from the
// response.
func (s *SubmissionService) Submit(ctx context.Context, userID int64, req model.JudgeRequest) (*model.JudgeResult, error) {
	p, cases, err := s.load(req, false)
	if err != nil {
		return nil, err
	}
	res, err := s.judge(ctx, p, cases, req)
	if err != nil {
		return nil, err
	}

	sub := &submissionRecord{
		Submission: model.Submission{
			UserID:      userID,
			ProblemID:   req.ProblemID,
			LanguageID:  req.LanguageID,
			Status:      "completed",
			Passed:      res.AllPassed,
			TotalTests:  res.TotalTests,
			PassedTests: res.PassedTests,
		},
		source: req.SourceCode,
	}
	for _, c := range res.Cases {
		sub.ExecutionTime += c.TimeSec
		if c.MemoryKb > sub.MemoryUsed {
			sub.MemoryUsed = c.MemoryKb
		}
		if sub.ErrorMessage == "" && c.CompileOutput != "" {
			sub.ErrorMessage = c.CompileOutput
		}
	}

	s.store.mu.Lock()
	s.store.nextSubmissionID++
	sub.ID = s.store.nextSubmissionID
	sub.SubmittedAt = s.store.now()
	s.store.submissions = append(s.store.submissions, sub)
	if res.AllPassed {
		set, ok := s.store.completed[userID]
		if !ok {
			set = mapset.NewThreadUnsafeSet[int64]()
			s.store.completed[userID] = set
		}
		set.Add(req.ProblemID)
	}
	s.store.mu.Unlock()

	res.SubmissionID = sub.ID
	for i, tc := range cases {
		if !tc.IsSample {
			res.Cases[i].Input = ""
			res.Cases[i].ExpectedOutput = ""
			res.Cases[i].Stdout = ""
		}
	}
	s.logger.Info("submission judged",
		zap.Int64("submission_id", sub.ID),
		zap.Int64("user_id", userID),
		zap.Int64("problem_id", req.ProblemID),
		zap.Int("passed", res.PassedTests),
		zap.Int("total", res.TotalTests))
	return res, nil
}

// History lists the user's submissions for a problem, newest first.
func (s *SubmissionService) History(ctx context.Context, userID, problemID int64) []model.Submission {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	out := []model.Submission{}
	for _, sub := range s.store.submissions {
		if sub.UserID == userID && sub.ProblemID == problemID {
			out = append(out, sub.Submission)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

// mineLimit caps the cross-problem listing.
const mineLimit = 50

// Mine lists the user's latest submissions across problems, newest first,
// optionally narrowed to one problem.
func (s *SubmissionService) Mine(ctx context.Context, userID, problemID int64) []model.Submission {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	out := []model.Submission{}
	for i := len(s.store.submissions) - 1; i >= 0 && len(out) < mineLimit; i-- {
		sub := s.store.submissions[i]
		if sub.UserID != userID || (problemID != 0 && sub.ProblemID != problemID) {
			continue
		}
		item := sub.Submission
		if p, ok := s.store.problemLocked(sub.ProblemID); ok {
			item.ProblemTitle = p.Title
		}
		out = append(out, item)
	}
	return out
}

// Stats counts the submissions matching the filter. Both counts honour it.
func (s *SubmissionService) Stats(ctx context.Context, filter model.SubmissionFilter) model.SubmissionStats {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	var stats model.SubmissionStats
	for _, sub := range s.store.submissions {
		if filter.UserID != 0 && sub.UserID != filter.UserID {
			continue
		}
		if filter.ProblemID != 0 && sub.ProblemID != filter.ProblemID {
			continue
		}
		stats.TotalSubmissions++
		if sub.Passed {
			stats.PassedSubmissions++
		}
	}
	stats.FailedSubmissions = stats.TotalSubmissions - stats.PassedSubmissions
	if stats.TotalSubmissions > 0 {
		stats.SuccessRate = 100 * float64(stats.PassedSubmissions) / float64(stats.TotalSubmissions)
	}
	return stats
}

func (s *SubmissionService) Completed(ctx context.Context, userID int64) []int64 {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	set, ok := s.store.completed[userID]
	if !ok {
		return []int64{}
	}
	ids := set.ToSlice()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
