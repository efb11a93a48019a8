// Package reconcile turns local edits to a problem's test cases into an
// ordered series of delete and create calls. The server has no update verb,
// so an edited case is removed and added again and receives a new id.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Neeharika2/code-assessor/internal/common"
	"github.com/Neeharika2/code-assessor/internal/domain/model"
	"github.com/Neeharika2/code-assessor/internal/domain/repository"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrSessionClosed    = errors.New("authoring session closed")
	ErrCommitInProgress = errors.New("commit already in progress")
	ErrNotLoaded        = errors.New("test cases not loaded")
	ErrUnknownEntry     = fmt.Errorf("unknown test case entry: %w", common.ErrNotFound)
)

type Origin int

const (
	OriginExisting Origin = iota // persisted and unmodified
	OriginNew                    // local only until commit
)

func (o Origin) String() string {
	if o == OriginNew {
		return "new"
	}
	return "existing"
}

// Entry is one row of the working list. Key is stable for the life of the
// entry; ID is zero until the server assigns one.
type Entry struct {
	Key    string
	ID     int64
	Origin Origin
	model.TestCaseContent
}

type Reconciler struct {
	repo   repository.TestCaseRepository
	logger *zap.Logger

	mu         sync.Mutex
	problemID  int64
	loaded     bool
	closed     bool
	committing bool
	existing   map[int64]model.TestCase
	toDelete   []int64 // removal order
	deleting   mapset.Set[int64]
	entries    []Entry
}

func New(repo repository.TestCaseRepository, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		repo:     repo,
		logger:   logger,
		existing: make(map[int64]model.TestCase),
		deleting: mapset.NewThreadUnsafeSet[int64](),
	}
}

// Load fetches the problem's current test cases and resets all local edits.
func (r *Reconciler) Load(ctx context.Context, problemID int64) error {
	if problemID == 0 {
		return fmt.Errorf("no problem selected: %w", common.ErrValidation)
	}
	r.mu.Lock()
	err := r.mutableLocked()
	r.mu.Unlock()
	if err != nil && !errors.Is(err, ErrNotLoaded) {
		return err
	}

	cases, err := r.repo.ListTestCases(ctx, problemID)
	if err != nil {
		return fmt.Errorf("load test cases: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrSessionClosed
	}
	r.problemID = problemID
	r.existing = make(map[int64]model.TestCase, len(cases))
	r.toDelete = nil
	r.deleting.Clear()
	r.entries = make([]Entry, 0, len(cases))
	for _, tc := range cases {
		if _, dup := r.existing[tc.ID]; dup {
			r.logger.Warn("server listed test case twice", zap.Int64("test_case_id", tc.ID))
			continue
		}
		r.existing[tc.ID] = tc
		r.entries = append(r.entries, Entry{Key: uuid.NewString(), ID: tc.ID, Origin: OriginExisting, TestCaseContent: tc.TestCaseContent})
	}
	r.loaded = true
	r.logger.Debug("test cases loaded", zap.Int64("problem_id", problemID), zap.Int("count", len(r.entries)))
	return nil
}

// Add appends a new entry. Nothing is sent until Commit.
func (r *Reconciler) Add(content model.TestCaseContent) (Entry, error) {
	if content.Points < 0 {
		return Entry{}, fmt.Errorf("points must not be negative: %w", common.ErrValidation)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.mutableLocked(); err != nil {
		return Entry{}, err
	}
	return r.addLocked(content), nil
}

func (r *Reconciler) addLocked(content model.TestCaseContent) Entry {
	e := Entry{Key: uuid.NewString(), Origin: OriginNew, TestCaseContent: content}
	r.entries = append(r.entries, e)
	return e
}

// Remove drops the entry. A persisted one is scheduled for deletion.
func (r *Reconciler) Remove(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.mutableLocked(); err != nil {
		return err
	}
	return r.removeLocked(key)
}

func (r *Reconciler) removeLocked(key string) error {
	i := r.indexLocked(key)
	if i < 0 {
		return ErrUnknownEntry
	}
	e := r.entries[i]
	r.entries = append(r.entries[:i], r.entries[i+1:]...)
	if e.Origin == OriginExisting && !r.deleting.Contains(e.ID) {
		r.toDelete = append(r.toDelete, e.ID)
		r.deleting.Add(e.ID)
	}
	return nil
}

// Edit replaces the entry's content. A changed entry moves to the end of the
// list as a new entry; an unchanged one is left alone.
func (r *Reconciler) Edit(key string, content model.TestCaseContent) (Entry, error) {
	if content.Points < 0 {
		return Entry{}, fmt.Errorf("points must not be negative: %w", common.ErrValidation)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.mutableLocked(); err != nil {
		return Entry{}, err
	}
	i := r.indexLocked(key)
	if i < 0 {
		return Entry{}, ErrUnknownEntry
	}
	if r.entries[i].TestCaseContent.Equal(content) {
		return r.entries[i], nil
	}
	if err := r.removeLocked(key); err != nil {
		return Entry{}, err
	}
	return r.addLocked(content), nil
}

// Sync makes the working list match desired. Entries whose content already
// matches a desired item are kept; the rest are removed and the unmatched
// desired items are added in order.
func (r *Reconciler) Sync(desired []model.TestCaseContent) error {
	for i, c := range desired {
		if c.Points < 0 {
			return fmt.Errorf("test case %d: points must not be negative: %w", i+1, common.ErrValidation)
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.mutableLocked(); err != nil {
		return err
	}

	matched := make([]bool, len(desired))
	current := append([]Entry(nil), r.entries...)
	for _, e := range current {
		keep := false
		for j, c := range desired {
			if !matched[j] && e.TestCaseContent.Equal(c) {
				matched[j] = true
				keep = true
				break
			}
		}
		if !keep {
			if err := r.removeLocked(e.Key); err != nil {
				return err
			}
		}
	}
	for j, c := range desired {
		if !matched[j] {
			r.addLocked(c)
		}
	}
	return nil
}

// Commit deletes every removed case in removal order, then creates every new
// entry in list order, one call at a time. On failure the steps already
// applied stay applied and are reflected in the state, so calling Commit
// again resumes where it stopped.
func (r *Reconciler) Commit(ctx context.Context) error {
	r.mu.Lock()
	if err := r.mutableLocked(); err != nil {
		r.mu.Unlock()
		return err
	}
	r.committing = true
	problemID := r.problemID
	deletes := append([]int64(nil), r.toDelete...)
	var creates []Entry
	for _, e := range r.entries {
		if e.Origin == OriginNew {
			creates = append(creates, e)
		}
	}
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.committing = false
		r.mu.Unlock()
	}()

	for i, id := range deletes {
		err := r.repo.DeleteTestCase(ctx, problemID, id)
		if errors.Is(err, common.ErrNotFound) {
			r.logger.Debug("test case already gone", zap.Int64("test_case_id", id))
			err = nil
		}
		if applyErr := r.applyDelete(id, err, i, len(deletes)); applyErr != nil {
			return applyErr
		}
	}
	for i, e := range creates {
		tc, err := r.repo.CreateTestCase(ctx, problemID, e.TestCaseContent)
		if applyErr := r.applyCreate(e, tc, err, i, len(creates)); applyErr != nil {
			return applyErr
		}
	}

	if len(deletes)+len(creates) > 0 {
		r.logger.Info("test cases committed",
			zap.Int64("problem_id", problemID),
			zap.Int("deleted", len(deletes)),
			zap.Int("created", len(creates)))
	}
	return nil
}

func (r *Reconciler) applyDelete(id int64, callErr error, i, total int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrSessionClosed
	}
	if callErr != nil {
		return &CommitError{Phase: PhaseDelete, Index: i + 1, Total: total, TestCaseID: id, Err: callErr}
	}
	for j, d := range r.toDelete {
		if d == id {
			r.toDelete = append(r.toDelete[:j], r.toDelete[j+1:]...)
			break
		}
	}
	r.deleting.Remove(id)
	delete(r.existing, id)
	return nil
}

func (r *Reconciler) applyCreate(e Entry, tc *model.TestCase, callErr error, i, total int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrSessionClosed
	}
	if callErr != nil {
		return &CommitError{Phase: PhaseCreate, Index: i + 1, Total: total, Key: e.Key, Err: callErr}
	}
	k := r.indexLocked(e.Key)
	if k < 0 {
		return fmt.Errorf("entry %s vanished during commit", e.Key)
	}
	r.existing[tc.ID] = model.TestCase{ID: tc.ID, ProblemID: r.problemID, CreatedAt: tc.CreatedAt, TestCaseContent: e.TestCaseContent}
	r.entries[k].ID = tc.ID
	r.entries[k].Origin = OriginExisting
	return nil
}

// Close ends the session. Calls still in flight complete but their results
// are dropped, and every later operation fails with ErrSessionClosed.
func (r *Reconciler) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
}

func (r *Reconciler) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *Reconciler) ProblemID() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.problemID
}

// Entries returns a copy of the working list.
func (r *Reconciler) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Pending reports how many calls the next Commit would make.
func (r *Reconciler) Pending() (deletes, creates int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.Origin == OriginNew {
			creates++
		}
	}
	return len(r.toDelete), creates
}

func (r *Reconciler) mutableLocked() error {
	switch {
	case r.closed:
		return ErrSessionClosed
	case r.committing:
		return ErrCommitInProgress
	case !r.loaded:
		return ErrNotLoaded
	}
	return nil
}

func (r *Reconciler) indexLocked(key string) int {
	for i, e := range r.entries {
		if e.Key == key {
			return i
		}
	}
	return -1
}
