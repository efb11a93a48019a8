// Package simulator is an in-memory stand-in for the judge backend. It
// speaks the same HTTP contract (see internal/api) so the client can be
// exercised without the real execution and similarity services.
package simulator

import (
	"sync"
	"time"

	"github.com/Neeharika2/code-assessor/internal/domain/model"
	mapset "github.com/deckarep/golang-set/v2"
)

type userRecord struct {
	model.User
	hashedPassword string
}

type submissionRecord struct {
	model.Submission
	source string
}

// Store holds all simulator state behind one lock.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	nextUserID       int64
	nextProblemID    int64
	nextTestCaseID   int64
	nextSubmissionID int64

	users       map[int64]*userRecord
	byUsername  map[string]int64
	problems    map[int64]*model.Problem
	testCases   map[int64][]model.TestCase // problem id -> cases in creation order
	submissions []*submissionRecord
	completed   map[int64]mapset.Set[int64]  // user id -> problem ids
	pairs       map[int64][]model.PairResult // problem id -> recorded comparisons
}

func NewStore() *Store {
	return &Store{
		now:        time.Now,
		users:      make(map[int64]*userRecord),
		byUsername: make(map[string]int64),
		problems:   make(map[int64]*model.Problem),
		testCases:  make(map[int64][]model.TestCase),
		completed:  make(map[int64]mapset.Set[int64]),
		pairs:      make(map[int64][]model.PairResult),
	}
}

func (s *Store) problemLocked(id int64) (*model.Problem, bool) {
	p, ok := s.problems[id]
	return p, ok
}

func (s *Store) usernameLocked(id int64) string {
	if u, ok := s.users[id]; ok {
		return u.Username
	}
	return ""
}

func (s *Store) submissionLocked(id int64) (*submissionRecord, bool) {
	for _, sub := range s.submissions {
		if sub.ID == id {
			return sub, true
		}
	}
	return nil, false
}

// recordPairsLocked stores the outcome of a check. A pair compared again
// replaces its earlier result.
func (s *Store) recordPairsLocked(problemID int64, results []model.PairResult, at time.Time) {
	stored := s.pairs[problemID]
	for _, r := range results {
		r.CheckedAt = &at
		replaced := false
		for i, old := range stored {
			if old.Involves(r.SubmissionID1) && old.Involves(r.SubmissionID2) {
				stored[i] = r
				replaced = true
				break
			}
		}
		if !replaced {
			stored = append(stored, r)
		}
	}
	s.pairs[problemID] = stored
}
