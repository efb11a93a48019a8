// Package catalog lists problems together with the caller's completion
// state.
package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Neeharika2/code-assessor/internal/common"
	"github.com/Neeharika2/code-assessor/internal/domain/model"
	"github.com/Neeharika2/code-assessor/internal/domain/repository"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type SessionSource interface {
	Current() *model.Session
}

type Listing struct {
	Problems  []model.Problem
	Completed mapset.Set[int64]
	// CompletionErr is set when the completion lookup failed and Completed
	// was left empty.
	CompletionErr error
}

func (l *Listing) IsCompleted(id int64) bool {
	return l.Completed.Contains(id)
}

type Catalog struct {
	problems repository.ProblemRepository
	users    repository.UserRepository
	sessions SessionSource
	logger   *zap.Logger
}

func New(problems repository.ProblemRepository, users repository.UserRepository, sessions SessionSource, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{problems: problems, users: users, sessions: sessions, logger: logger}
}

// Load fetches the problem list and, for a logged-in caller, the completed
// set concurrently. Only the problem list is required; a failed completion
// lookup degrades to an empty set.
func (c *Catalog) Load(ctx context.Context) (*Listing, error) {
	listing := &Listing{Completed: mapset.NewSet[int64]()}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		problems, err := c.problems.ListProblems(gctx)
		if err != nil {
			return fmt.Errorf("list problems: %w", err)
		}
		listing.Problems = problems
		return nil
	})

	if c.sessions.Current() != nil {
		// detached from gctx so a failed list does not show up as a
		// cancelled completion lookup
		g.Go(func() error {
			ids, err := c.users.CompletedProblemIDs(ctx)
			if err != nil {
				c.logger.Warn("completion lookup failed", zap.Error(err))
				listing.CompletionErr = err
				return nil
			}
			listing.Completed.Append(ids...)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return listing, nil
}

// Problem returns the public view of one problem with its sample cases.
func (c *Catalog) Problem(ctx context.Context, id int64) (*model.Problem, error) {
	if id == 0 {
		return nil, fmt.Errorf("no problem selected: %w", common.ErrValidation)
	}
	return c.problems.FindProblemByID(ctx, id)
}

// Resolve finds a problem by numeric id or title slug.
func (c *Catalog) Resolve(ctx context.Context, ref string) (*model.Problem, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("no problem selected: %w", common.ErrValidation)
	}
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return c.Problem(ctx, id)
	}

	want := slug.Make(ref)
	problems, err := c.problems.ListProblems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list problems: %w", err)
	}
	for _, p := range problems {
		if p.Slug() == want {
			return c.Problem(ctx, p.ID)
		}
	}
	return nil, fmt.Errorf("problem %q: %w", ref, common.ErrNotFound)
}
