// Package authoring is the admin flow for creating or editing a problem:
// save the problem metadata, then edit and commit its test cases.
package authoring

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/Neeharika2/code-assessor/internal/app/reconcile"
	"github.com/Neeharika2/code-assessor/internal/common"
	"github.com/Neeharika2/code-assessor/internal/domain/model"
	"github.com/Neeharika2/code-assessor/internal/domain/repository"
	"go.uber.org/zap"
)

var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrBusy              = errors.New("authoring step already in progress")
)

type State int

const (
	StateDraftProblem State = iota
	StateEditTestCases
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDraftProblem:
		return "draft-problem"
	case StateEditTestCases:
		return "edit-test-cases"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

type SessionSource interface {
	Current() *model.Session
}

type Deps struct {
	Problems  repository.ProblemRepository
	TestCases repository.TestCaseRepository
	Sessions  SessionSource
	Logger    *zap.Logger
}

func (d Deps) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

func requireAdmin(s SessionSource) error {
	sess := s.Current()
	if sess == nil {
		return fmt.Errorf("login required: %w", common.ErrUnauthorized)
	}
	if !sess.IsAdmin() {
		return fmt.Errorf("admin role required: %w", common.ErrForbidden)
	}
	return nil
}

type Workflow struct {
	deps   Deps
	logger *zap.Logger

	mu        sync.Mutex
	state     State
	busy      bool
	problemID int64
	draft     model.ProblemDraft
	rec       *reconcile.Reconciler
	lastErr   *reconcile.CommitError
	listeners []func(problemID int64)
}

// Begin opens an authoring session. A zero problemID starts the create flow;
// otherwise the draft is pre-populated from the current problem.
func Begin(ctx context.Context, deps Deps, problemID int64) (*Workflow, error) {
	if err := requireAdmin(deps.Sessions); err != nil {
		return nil, err
	}
	w := &Workflow{deps: deps, logger: deps.logger(), state: StateDraftProblem}
	if problemID == 0 {
		w.draft = model.ProblemDraft{
			Difficulty:    model.DifficultyEasy,
			TimeLimitMs:   model.DefaultTimeLimitMs,
			MemoryLimitKb: model.DefaultMemoryLimitKb,
		}
		return w, nil
	}
	p, err := deps.Problems.FindProblemByID(ctx, problemID)
	if err != nil {
		return nil, fmt.Errorf("load problem: %w", err)
	}
	w.problemID = p.ID
	w.draft = p.Draft()
	return w, nil
}

func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// ProblemID is zero until the problem has been created.
func (w *Workflow) ProblemID() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.problemID
}

func (w *Workflow) Draft() model.ProblemDraft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft
}

// LastCommitError is the failed step of the most recent partial commit.
func (w *Workflow) LastCommitError() *reconcile.CommitError {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

// OnRefresh registers fn to run after a successful commit.
func (w *Workflow) OnRefresh(fn func(problemID int64)) {
	w.mu.Lock()
	w.listeners = append(w.listeners, fn)
	w.mu.Unlock()
}

// TestCases returns the working list, or nil before the problem is saved.
func (w *Workflow) TestCases() []reconcile.Entry {
	w.mu.Lock()
	rec := w.rec
	w.mu.Unlock()
	if rec == nil {
		return nil
	}
	return rec.Entries()
}

func (w *Workflow) Pending() (deletes, creates int) {
	w.mu.Lock()
	rec := w.rec
	w.mu.Unlock()
	if rec == nil {
		return 0, 0
	}
	return rec.Pending()
}

// SaveProblem creates or updates the problem and moves on to test-case
// editing. On failure the workflow stays in the draft state.
func (w *Workflow) SaveProblem(ctx context.Context, d model.ProblemDraft) error {
	problemID, err := w.enter(StateDraftProblem)
	if err != nil {
		return err
	}
	defer w.leave()

	d, err = normalizeDraft(d)
	if err != nil {
		return fmt.Errorf("save problem: %w", err)
	}

	w.mu.Lock()
	w.draft = d
	w.mu.Unlock()

	if problemID == 0 {
		p, err := w.deps.Problems.CreateProblem(ctx, d)
		if err != nil {
			return fmt.Errorf("save problem: %w", err)
		}
		problemID = p.ID
		w.logger.Info("problem created", zap.Int64("problem_id", problemID), zap.String("slug", p.Slug()))
	} else {
		if err := w.deps.Problems.UpdateProblem(ctx, problemID, d); err != nil {
			return fmt.Errorf("save problem: %w", err)
		}
		w.logger.Info("problem updated", zap.Int64("problem_id", problemID))
	}

	w.mu.Lock()
	if w.state == StateClosed {
		w.mu.Unlock()
		return reconcile.ErrSessionClosed
	}
	// a retry after a failed load must update, not create a duplicate
	w.problemID = problemID
	w.mu.Unlock()

	rec := reconcile.New(w.deps.TestCases, w.logger)
	if err := rec.Load(ctx, problemID); err != nil {
		return fmt.Errorf("save problem: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateClosed {
		rec.Close()
		return reconcile.ErrSessionClosed
	}
	w.rec = rec
	w.state = StateEditTestCases
	return nil
}

func (w *Workflow) AddTestCase(c model.TestCaseContent) (reconcile.Entry, error) {
	rec, err := w.editing()
	if err != nil {
		return reconcile.Entry{}, err
	}
	return rec.Add(c)
}

func (w *Workflow) RemoveTestCase(key string) error {
	rec, err := w.editing()
	if err != nil {
		return err
	}
	return rec.Remove(key)
}

func (w *Workflow) EditTestCase(key string, c model.TestCaseContent) (reconcile.Entry, error) {
	rec, err := w.editing()
	if err != nil {
		return reconcile.Entry{}, err
	}
	return rec.Edit(key, c)
}

func (w *Workflow) SyncTestCases(cases []model.TestCaseContent) error {
	rec, err := w.editing()
	if err != nil {
		return err
	}
	return rec.Sync(cases)
}

// Commit applies the test-case edits. Full success closes the session and
// notifies refresh listeners. A partial failure leaves it open for a retry.
func (w *Workflow) Commit(ctx context.Context) error {
	problemID, err := w.enter(StateEditTestCases)
	if err != nil {
		return err
	}
	defer w.leave()

	w.mu.Lock()
	rec := w.rec
	w.mu.Unlock()

	if err := rec.Commit(ctx); err != nil {
		var ce *reconcile.CommitError
		if errors.As(err, &ce) {
			w.mu.Lock()
			w.lastErr = ce
			w.mu.Unlock()
			w.logger.Warn("test case commit partially applied",
				zap.Int64("problem_id", problemID),
				zap.String("phase", string(ce.Phase)),
				zap.Int("step", ce.Index),
				zap.Int("of", ce.Total),
				zap.Error(ce.Err))
		}
		return fmt.Errorf("commit test cases: %w", err)
	}

	w.mu.Lock()
	if w.state == StateClosed {
		w.mu.Unlock()
		return reconcile.ErrSessionClosed
	}
	w.state = StateClosed
	w.lastErr = nil
	rec.Close()
	listeners := slices.Clone(w.listeners)
	w.mu.Unlock()

	for _, fn := range listeners {
		fn(problemID)
	}
	return nil
}

// Abandon closes the session without committing. Responses of calls still
// in flight are discarded.
func (w *Workflow) Abandon() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateClosed {
		return fmt.Errorf("abandon in state %s: %w", w.state, ErrInvalidTransition)
	}
	w.state = StateClosed
	if w.rec != nil {
		w.rec.Close()
	}
	return nil
}

func (w *Workflow) enter(want State) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != want {
		return 0, fmt.Errorf("%s required, workflow is %s: %w", want, w.state, ErrInvalidTransition)
	}
	if w.busy {
		return 0, ErrBusy
	}
	w.busy = true
	return w.problemID, nil
}

func (w *Workflow) leave() {
	w.mu.Lock()
	w.busy = false
	w.mu.Unlock()
}

func (w *Workflow) editing() (*reconcile.Reconciler, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateEditTestCases {
		return nil, fmt.Errorf("%s required, workflow is %s: %w", StateEditTestCases, w.state, ErrInvalidTransition)
	}
	return w.rec, nil
}

func normalizeDraft(d model.ProblemDraft) (model.ProblemDraft, error) {
	d.Title = strings.TrimSpace(d.Title)
	if d.Title == "" {
		return d, fmt.Errorf("title is required: %w", common.ErrValidation)
	}
	if strings.TrimSpace(d.Description) == "" {
		return d, fmt.Errorf("description is required: %w", common.ErrValidation)
	}
	diff, err := model.ParseDifficulty(string(d.Difficulty))
	if err != nil {
		return d, fmt.Errorf("%v: %w", err, common.ErrValidation)
	}
	d.Difficulty = diff
	if d.TimeLimitMs < 0 || d.MemoryLimitKb < 0 {
		return d, fmt.Errorf("limits must not be negative: %w", common.ErrValidation)
	}
	if d.TimeLimitMs == 0 {
		d.TimeLimitMs = model.DefaultTimeLimitMs
	}
	if d.MemoryLimitKb == 0 {
		d.MemoryLimitKb = model.DefaultMemoryLimitKb
	}
	return d, nil
}

// DeleteProblem removes a problem. The server cascades to its test cases
// and submissions.
func DeleteProblem(ctx context.Context, deps Deps, problemID int64) error {
	if problemID == 0 {
		return fmt.Errorf("no problem selected: %w", common.ErrValidation)
	}
	if err := requireAdmin(deps.Sessions); err != nil {
		return err
	}
	if err := deps.Problems.DeleteProblem(ctx, problemID); err != nil {
		return fmt.Errorf("delete problem %d: %w", problemID, err)
	}
	deps.logger().Info("problem deleted", zap.Int64("problem_id", problemID))
	return nil
}
