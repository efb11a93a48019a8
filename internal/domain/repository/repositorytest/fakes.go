// Package repositorytest provides in-memory repositories with call recording
// and fault injection for tests.
package repositorytest

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/Neeharika2/code-assessor/internal/common"
	"github.com/Neeharika2/code-assessor/internal/domain/model"
)

type Op string

const (
	OpList   Op = "list"
	OpCreate Op = "create"
	OpDelete Op = "delete"
)

type Call struct {
	Op        Op
	ProblemID int64
	ID        int64 // delete target, or the id assigned by create
	Content   model.TestCaseContent
}

// TestCases is a test-case store keyed by problem id.
type TestCases struct {
	mu     sync.Mutex
	nextID int64
	cases  map[int64][]model.TestCase
	calls  []Call

	// Fail, when set, is consulted before every mutating call; a non-nil
	// result is returned and nothing changes.
	Fail func(c Call) error
	// Gate, when set, blocks every mutating call until it can receive.
	// Started is signalled first.
	Gate    chan struct{}
	Started chan Call
}

func NewTestCases() *TestCases {
	return &TestCases{nextID: 100, cases: make(map[int64][]model.TestCase)}
}

// Seed stores contents for problemID as if created earlier and returns them
// with their ids.
func (f *TestCases) Seed(problemID int64, contents ...model.TestCaseContent) []model.TestCase {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.TestCase, 0, len(contents))
	for _, c := range contents {
		out = append(out, f.insertLocked(problemID, c))
	}
	return out
}

func (f *TestCases) insertLocked(problemID int64, c model.TestCaseContent) model.TestCase {
	f.nextID++
	if c.Points == 0 {
		c.Points = model.DefaultTestCasePoints
	}
	tc := model.TestCase{ID: f.nextID, ProblemID: problemID, CreatedAt: time.Now(), TestCaseContent: c}
	f.cases[problemID] = append(f.cases[problemID], tc)
	return tc
}

func (f *TestCases) ListTestCases(_ context.Context, problemID int64) ([]model.TestCase, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: OpList, ProblemID: problemID})
	return append([]model.TestCase(nil), f.cases[problemID]...), nil
}

func (f *TestCases) CreateTestCase(_ context.Context, problemID int64, content model.TestCaseContent) (*model.TestCase, error) {
	call := Call{Op: OpCreate, ProblemID: problemID, Content: content}
	if err := f.before(call); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	tc := f.insertLocked(problemID, content)
	call.ID = tc.ID
	f.calls = append(f.calls, call)
	return &tc, nil
}

func (f *TestCases) DeleteTestCase(_ context.Context, problemID, testCaseID int64) error {
	call := Call{Op: OpDelete, ProblemID: problemID, ID: testCaseID}
	if err := f.before(call); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	list := f.cases[problemID]
	for i, tc := range list {
		if tc.ID == testCaseID {
			f.cases[problemID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return common.ErrorFromStatus(http.StatusNotFound, "Test case not found")
}

func (f *TestCases) before(c Call) error {
	if f.Started != nil {
		f.Started <- c
	}
	if f.Gate != nil {
		<-f.Gate
	}
	if f.Fail != nil {
		return f.Fail(c)
	}
	return nil
}

// Mutations returns the recorded create and delete calls in order.
func (f *TestCases) Mutations() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Call
	for _, c := range f.calls {
		if c.Op != OpList {
			out = append(out, c)
		}
	}
	return out
}

func (f *TestCases) ResetCalls() {
	f.mu.Lock()
	f.calls = nil
	f.mu.Unlock()
}

// Stored returns the server-side test cases of problemID in id order.
func (f *TestCases) Stored(problemID int64) []model.TestCase {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]model.TestCase(nil), f.cases[problemID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Problems is a problem store. CreateErr and UpdateErr, when set, fail the
// matching call.
type Problems struct {
	mu       sync.Mutex
	nextID   int64
	problems map[int64]model.Problem

	CreateErr error
	UpdateErr error
	Deleted   []int64
}

func NewProblems() *Problems {
	return &Problems{problems: make(map[int64]model.Problem)}
}

func (f *Problems) Put(p model.Problem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID > f.nextID {
		f.nextID = p.ID
	}
	f.problems[p.ID] = p
}

func (f *Problems) ListProblems(context.Context) ([]model.Problem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Problem, 0, len(f.problems))
	for _, p := range f.problems {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *Problems) FindProblemByID(_ context.Context, id int64) (*model.Problem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.problems[id]
	if !ok {
		return nil, fmt.Errorf("problem %d: %w", id, common.ErrNotFound)
	}
	return &p, nil
}

func (f *Problems) CreateProblem(_ context.Context, d model.ProblemDraft) (*model.Problem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	f.nextID++
	p := model.Problem{
		ID:            f.nextID,
		Title:         d.Title,
		Description:   d.Description,
		Difficulty:    d.Difficulty,
		TimeLimitMs:   d.TimeLimitMs,
		MemoryLimitKb: d.MemoryLimitKb,
	}
	f.problems[p.ID] = p
	return &p, nil
}

func (f *Problems) UpdateProblem(_ context.Context, id int64, d model.ProblemDraft) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	p, ok := f.problems[id]
	if !ok {
		return common.ErrorFromStatus(http.StatusNotFound, "Problem not found")
	}
	p.Title, p.Description, p.Difficulty = d.Title, d.Description, d.Difficulty
	p.TimeLimitMs, p.MemoryLimitKb = d.TimeLimitMs, d.MemoryLimitKb
	f.problems[id] = p
	return nil
}

func (f *Problems) DeleteProblem(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.problems[id]; !ok {
		return common.ErrorFromStatus(http.StatusNotFound, "Problem not found")
	}
	delete(f.problems, id)
	f.Deleted = append(f.Deleted, id)
	return nil
}
