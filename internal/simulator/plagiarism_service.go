package simulator

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/Neeharika2/code-assessor/internal/common"
	"github.com/Neeharika2/code-assessor/internal/domain/model"
	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/zap"
)

// Tier boundaries, in percent.
const (
	plagiarizedAbove = 60.0
	suspiciousFrom   = 30.0
)

type PlagiarismService struct {
	store  *Store
	logger *zap.Logger
}

func NewPlagiarismService(store *Store, logger *zap.Logger) *PlagiarismService {
	return &PlagiarismService{store: store, logger: logger}
}

// Check compares every pair of passing submissions written in the same
// language. Pairs from the same user are left out.
func (s *PlagiarismService) Check(ctx context.Context, problemID int64, languageID *int) (*model.PlagiarismReport, error) {
	if languageID != nil {
		if lang, ok := model.LookupLanguage(*languageID); !ok || !lang.Plagiarism {
			return nil, fmt.Errorf("language not supported for plagiarism detection: %w", common.ErrValidation)
		}
	}

	s.store.mu.RLock()
	if _, ok := s.store.problemLocked(problemID); !ok {
		s.store.mu.RUnlock()
		return nil, fmt.Errorf("problem not found: %w", common.ErrNotFound)
	}
	var pool []submissionRecord
	names := map[int64]string{}
	for _, sub := range s.store.submissions {
		if sub.ProblemID != problemID || !sub.Passed {
			continue
		}
		if languageID != nil && sub.LanguageID != *languageID {
			continue
		}
		pool = append(pool, *sub)
		names[sub.UserID] = s.store.usernameLocked(sub.UserID)
	}
	now := s.store.now()
	s.store.mu.RUnlock()

	report := &model.PlagiarismReport{
		ProblemID:        problemID,
		LanguageID:       languageID,
		TotalSubmissions: len(pool),
		Results:          []model.PairResult{},
		CheckedAt:        now,
	}
	if len(pool) < 2 {
		report.Message = "Not enough submissions for plagiarism detection"
		return report, nil
	}

	byLang := map[int][]submissionRecord{}
	var langs []int
	for _, sub := range pool {
		if lang, ok := model.LookupLanguage(sub.LanguageID); !ok || !lang.Plagiarism {
			continue
		}
		if _, seen := byLang[sub.LanguageID]; !seen {
			langs = append(langs, sub.LanguageID)
		}
		byLang[sub.LanguageID] = append(byLang[sub.LanguageID], sub)
	}
	sort.Ints(langs)

	for _, lang := range langs {
		subs := byLang[lang]
		for i := 0; i < len(subs); i++ {
			for j := i + 1; j < len(subs); j++ {
				if subs[i].UserID == subs[j].UserID {
					continue
				}
				pair := compare(subs[i], subs[j], names)
				if pair.Status.Flagged() {
					report.FlaggedCount++
				}
				report.Results = append(report.Results, pair)
			}
		}
	}
	report.TotalComparisons = len(report.Results)
	sortBySimilarity(report.Results)

	s.store.mu.Lock()
	if _, ok := s.store.problemLocked(problemID); ok {
		s.store.recordPairsLocked(problemID, report.Results, now)
	}
	s.store.mu.Unlock()

	s.logger.Info("plagiarism check",
		zap.Int64("problem_id", problemID),
		zap.Int("submissions", len(pool)),
		zap.Int("comparisons", report.TotalComparisons),
		zap.Int("flagged", report.FlaggedCount))
	return report, nil
}

// CheckSubmission compares one submission against the other passing
// submissions of the same problem and language. Other users only.
func (s *PlagiarismService) CheckSubmission(ctx context.Context, submissionID int64) (*model.SubmissionPlagiarismReport, error) {
	s.store.mu.RLock()
	target, ok := s.store.submissionLocked(submissionID)
	if !ok {
		s.store.mu.RUnlock()
		return nil, fmt.Errorf("submission not found: %w", common.ErrNotFound)
	}
	self := *target
	if lang, ok := model.LookupLanguage(self.LanguageID); !ok || !lang.Plagiarism {
		s.store.mu.RUnlock()
		return nil, fmt.Errorf("language not supported for plagiarism detection: %w", common.ErrValidation)
	}
	names := map[int64]string{self.UserID: s.store.usernameLocked(self.UserID)}
	var others []submissionRecord
	for _, sub := range s.store.submissions {
		if sub.ID == self.ID || sub.ProblemID != self.ProblemID || sub.LanguageID != self.LanguageID || !sub.Passed {
			continue
		}
		others = append(others, *sub)
		names[sub.UserID] = s.store.usernameLocked(sub.UserID)
	}
	now := s.store.now()
	s.store.mu.RUnlock()

	report := &model.SubmissionPlagiarismReport{
		SubmissionID: self.ID,
		ProblemID:    self.ProblemID,
		LanguageID:   self.LanguageID,
		Results:      []model.PairResult{},
		CheckedAt:    now,
	}
	if len(others) == 0 {
		report.Message = "No other submissions to compare with"
		return report, nil
	}
	for _, other := range others {
		if other.UserID == self.UserID {
			continue
		}
		pair := compare(self, other, names)
		if pair.Status.Flagged() {
			report.FlaggedCount++
		}
		report.Results = append(report.Results, pair)
	}
	report.TotalComparisons = len(report.Results)
	sortBySimilarity(report.Results)

	s.store.mu.Lock()
	if _, ok := s.store.problemLocked(self.ProblemID); ok {
		s.store.recordPairsLocked(self.ProblemID, report.Results, now)
	}
	s.store.mu.Unlock()

	s.logger.Info("submission plagiarism check",
		zap.Int64("submission_id", self.ID),
		zap.Int64("problem_id", self.ProblemID),
		zap.Int("comparisons", report.TotalComparisons),
		zap.Int("flagged", report.FlaggedCount))
	return report, nil
}

// StoredResults returns the pairs recorded by earlier checks of the problem,
// most similar first. A problem never checked has none.
func (s *PlagiarismService) StoredResults(ctx context.Context, problemID int64) (*model.StoredPlagiarismResults, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	if _, ok := s.store.problemLocked(problemID); !ok {
		return nil, fmt.Errorf("problem not found: %w", common.ErrNotFound)
	}
	results := append([]model.PairResult{}, s.store.pairs[problemID]...)
	sortBySimilarity(results)
	return &model.StoredPlagiarismResults{ProblemID: problemID, Results: results}, nil
}

func compare(a, b submissionRecord, names map[int64]string) model.PairResult {
	sim := Similarity(a.source, b.source)
	return model.PairResult{
		UserID1:           a.UserID,
		UserID2:           b.UserID,
		Username1:         names[a.UserID],
		Username2:         names[b.UserID],
		SubmissionID1:     a.ID,
		SubmissionID2:     b.ID,
		SimilarityPercent: sim,
		Status:            Classify(sim),
	}
}

func sortBySimilarity(results []model.PairResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].SimilarityPercent > results[j].SimilarityPercent
	})
}

// Classify applies the analysis service's tiers. The low tier uses the
// legacy SAFE spelling, as the production service does.
func Classify(similarity float64) model.PlagiarismStatus {
	switch {
	case similarity > plagiarizedAbove:
		return model.PlagiarismPlagiarized
	case similarity >= suspiciousFrom:
		return model.PlagiarismSuspicious
	default:
		return "SAFE"
	}
}

// Similarity is the Jaccard index of the two programs' token sets, in
// percent.
func Similarity(a, b string) float64 {
	ta, tb := tokens(a), tokens(b)
	union := ta.Union(tb).Cardinality()
	if union == 0 {
		return 0
	}
	pct := 100 * float64(ta.Intersect(tb).Cardinality()) / float64(union)
	return float64(int(pct*10+0.5)) / 10
}

func tokens(src string) mapset.Set[string] {
	set := mapset.NewThreadUnsafeSet[string]()
	for _, f := range strings.FieldsFunc(src, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	}) {
		set.Add(f)
	}
	return set
}
