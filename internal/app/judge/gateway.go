// Package judge is the typed front of the execution service: run against the
// sample cases, or submit against all of them.
package judge

import (
	"context"
	"fmt"
	"strings"

	"github.com/Neeharika2/code-assessor/internal/common"
	"github.com/Neeharika2/code-assessor/internal/domain/model"
	"github.com/Neeharika2/code-assessor/internal/domain/repository"
	"go.uber.org/zap"
)

// SessionSource reports the current session, nil when logged out.
type SessionSource interface {
	Current() *model.Session
}

type Gateway struct {
	subs     repository.SubmissionRepository
	sessions SessionSource
	logger   *zap.Logger
}

func NewGateway(subs repository.SubmissionRepository, sessions SessionSource, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{subs: subs, sessions: sessions, logger: logger}
}

// Run judges source against the problem's sample cases. The result never
// carries a submission id.
func (g *Gateway) Run(ctx context.Context, problemID int64, languageID int, source string) (*model.JudgeResult, error) {
	req, err := newRequest(problemID, languageID, source)
	if err != nil {
		return nil, err
	}
	res, err := g.subs.Run(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("run: %w", err)
	}
	res.SubmissionID = 0
	g.logger.Debug("run judged",
		zap.Int64("problem_id", problemID),
		zap.Int("language_id", languageID),
		zap.Int("passed", res.PassedTests),
		zap.Int("total", res.TotalTests))
	return res, nil
}

// Submit judges source against every case and records the submission. It
// needs a session.
func (g *Gateway) Submit(ctx context.Context, problemID int64, languageID int, source string) (*model.JudgeResult, error) {
	req, err := newRequest(problemID, languageID, source)
	if err != nil {
		return nil, err
	}
	if g.sessions.Current() == nil {
		return nil, fmt.Errorf("submit: login required: %w", common.ErrUnauthorized)
	}
	res, err := g.subs.Submit(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}
	if !res.HasSubmission() {
		return nil, fmt.Errorf("submit: response carried no submission id: %w", common.ErrService)
	}
	g.logger.Info("submission judged",
		zap.Int64("submission_id", res.SubmissionID),
		zap.Int64("problem_id", problemID),
		zap.Bool("all_passed", res.AllPassed))
	return res, nil
}

// History lists the caller's submissions for a problem, newest first as the
// server orders them.
func (g *Gateway) History(ctx context.Context, problemID int64) ([]model.Submission, error) {
	if problemID == 0 {
		return nil, fmt.Errorf("no problem selected: %w", common.ErrValidation)
	}
	if g.sessions.Current() == nil {
		return nil, fmt.Errorf("submissions: login required: %w", common.ErrUnauthorized)
	}
	subs, err := g.subs.ListSubmissions(ctx, problemID)
	if err != nil {
		return nil, fmt.Errorf("submissions: %w", err)
	}
	return subs, nil
}

// Mine lists the caller's latest submissions across problems, or for one
// problem when problemID is set.
func (g *Gateway) Mine(ctx context.Context, problemID int64) ([]model.Submission, error) {
	if g.sessions.Current() == nil {
		return nil, fmt.Errorf("submissions: login required: %w", common.ErrUnauthorized)
	}
	subs, err := g.subs.ListMine(ctx, problemID)
	if err != nil {
		return nil, fmt.Errorf("submissions: %w", err)
	}
	return subs, nil
}

// Stats counts recorded submissions. It needs no session.
func (g *Gateway) Stats(ctx context.Context, filter model.SubmissionFilter) (*model.SubmissionStats, error) {
	if filter.UserID < 0 || filter.ProblemID < 0 {
		return nil, fmt.Errorf("stats filter ids must be positive: %w", common.ErrValidation)
	}
	stats, err := g.subs.Stats(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	return stats, nil
}

func newRequest(problemID int64, languageID int, source string) (model.JudgeRequest, error) {
	if problemID == 0 {
		return model.JudgeRequest{}, fmt.Errorf("no problem selected: %w", common.ErrValidation)
	}
	if strings.TrimSpace(source) == "" {
		return model.JudgeRequest{}, fmt.Errorf("source code is empty: %w", common.ErrValidation)
	}
	if _, ok := model.LookupLanguage(languageID); !ok {
		return model.JudgeRequest{}, fmt.Errorf("unsupported language id %d: %w", languageID, common.ErrValidation)
	}
	return model.JudgeRequest{ProblemID: problemID, LanguageID: languageID, SourceCode: source}, nil
}
