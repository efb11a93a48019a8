package catalog

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/Neeharika2/code-assessor/internal/common"
	"github.com/Neeharika2/code-assessor/internal/domain/model"
	rt "github.com/Neeharika2/code-assessor/internal/domain/repository/repositorytest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeUsers struct {
	ids   []int64
	err   error
	calls int
}

func (f *fakeUsers) Login(context.Context, model.Credentials) (*model.Session, error) {
	return nil, nil
}

func (f *fakeUsers) Register(context.Context, model.Profile) (*model.Session, error) {
	return nil, nil
}

func (f *fakeUsers) CompletedProblemIDs(context.Context) ([]int64, error) {
	f.calls++
	return f.ids, f.err
}

type failingProblems struct{ *rt.Problems }

func (failingProblems) ListProblems(context.Context) ([]model.Problem, error) {
	return nil, common.ErrorFromStatus(http.StatusInternalServerError, "db down")
}

type staticSession struct{ sess *model.Session }

func (s staticSession) Current() *model.Session { return s.sess }

var loggedIn = staticSession{&model.Session{Token: "t"}}

func seeded() *rt.Problems {
	p := rt.NewProblems()
	p.Put(model.Problem{ID: 1, Title: "Two Sum"})
	p.Put(model.Problem{ID: 2, Title: "Reverse a String"})
	return p
}

func TestLoadMergesCompletion(t *testing.T) {
	users := &fakeUsers{ids: []int64{2}}
	c := New(seeded(), users, loggedIn, zaptest.NewLogger(t))

	l, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, l.Problems, 2)
	assert.True(t, l.IsCompleted(2))
	assert.False(t, l.IsCompleted(1))
	assert.NoError(t, l.CompletionErr)
}

func TestCompletionFailureDegradesToEmpty(t *testing.T) {
	users := &fakeUsers{err: common.ErrorFromStatus(http.StatusServiceUnavailable, "completion service down")}
	c := New(seeded(), users, loggedIn, zaptest.NewLogger(t))

	l, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, l.Problems, 2)
	assert.Zero(t, l.Completed.Cardinality())
	assert.ErrorIs(t, l.CompletionErr, common.ErrService)
}

func TestAnonymousSkipsCompletion(t *testing.T) {
	users := &fakeUsers{ids: []int64{1}}
	c := New(seeded(), users, staticSession{}, zaptest.NewLogger(t))

	l, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.Zero(t, users.calls)
	assert.Zero(t, l.Completed.Cardinality())
}

func TestProblemListFailureIsFatal(t *testing.T) {
	c := New(failingProblems{seeded()}, &fakeUsers{}, loggedIn, zaptest.NewLogger(t))
	_, err := c.Load(context.Background())
	require.Error(t, err)
	var apiErr *common.APIError
	assert.True(t, errors.As(err, &apiErr))
}

func TestResolve(t *testing.T) {
	c := New(seeded(), &fakeUsers{}, staticSession{}, nil)
	ctx := context.Background()

	p, err := c.Resolve(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "Reverse a String", p.Title)

	p, err = c.Resolve(ctx, "two-sum")
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)

	p, err = c.Resolve(ctx, "Two Sum")
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)

	_, err = c.Resolve(ctx, "three-sum")
	require.ErrorIs(t, err, common.ErrNotFound)
	_, err = c.Resolve(ctx, " ")
	require.ErrorIs(t, err, common.ErrValidation)
}
