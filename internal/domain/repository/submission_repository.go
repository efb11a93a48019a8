package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Neeharika2/code-assessor/internal/domain/model"
	"github.com/Neeharika2/code-assessor/internal/platform/judgeapi"
)

type SubmissionRepository interface {
	// Run judges against sample cases only. Nothing is persisted.
	Run(ctx context.Context, req model.JudgeRequest) (*model.JudgeResult, error)
	// Submit judges against every case and records a submission.
	Submit(ctx context.Context, req model.JudgeRequest) (*model.JudgeResult, error)
	ListSubmissions(ctx context.Context, problemID int64) ([]model.Submission, error)
	// ListMine lists the caller's latest submissions across problems. A zero
	// problemID means all problems.
	ListMine(ctx context.Context, problemID int64) ([]model.Submission, error)
	Stats(ctx context.Context, filter model.SubmissionFilter) (*model.SubmissionStats, error)
}

type httpSubmissionRepository struct {
	api *judgeapi.Client
}

func NewHTTPSubmissionRepository(api *judgeapi.Client) SubmissionRepository {
	return &httpSubmissionRepository{api: api}
}

func (r *httpSubmissionRepository) Run(ctx context.Context, req model.JudgeRequest) (*model.JudgeResult, error) {
	var res model.JudgeResult
	err := r.api.Do(ctx, judgeapi.Request{
		Method: http.MethodPost,
		Path:   "/run",
		Body:   req,
		Public: true,
	}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *httpSubmissionRepository) Submit(ctx context.Context, req model.JudgeRequest) (*model.JudgeResult, error) {
	var res model.JudgeResult
	err := r.api.Do(ctx, judgeapi.Request{
		Method: http.MethodPost,
		Path:   "/submit",
		Body:   req,
	}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *httpSubmissionRepository) ListSubmissions(ctx context.Context, problemID int64) ([]model.Submission, error) {
	var resp struct {
		Submissions []model.Submission `json:"submissions"`
	}
	err := r.api.Do(ctx, judgeapi.Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/problems/%d/submissions", problemID),
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("httpSubmissionRepository.ListSubmissions: %w", err)
	}
	return resp.Submissions, nil
}

func (r *httpSubmissionRepository) ListMine(ctx context.Context, problemID int64) ([]model.Submission, error) {
	var query url.Values
	if problemID != 0 {
		query = url.Values{"problem_id": {strconv.FormatInt(problemID, 10)}}
	}
	var resp struct {
		Submissions []model.Submission `json:"submissions"`
	}
	err := r.api.Do(ctx, judgeapi.Request{
		Method: http.MethodGet,
		Path:   "/my/submissions",
		Query:  query,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("httpSubmissionRepository.ListMine: %w", err)
	}
	return resp.Submissions, nil
}

func (r *httpSubmissionRepository) Stats(ctx context.Context, filter model.SubmissionFilter) (*model.SubmissionStats, error) {
	query := url.Values{}
	if filter.UserID != 0 {
		query.Set("user_id", strconv.FormatInt(filter.UserID, 10))
	}
	if filter.ProblemID != 0 {
		query.Set("problem_id", strconv.FormatInt(filter.ProblemID, 10))
	}
	var stats model.SubmissionStats
	err := r.api.Do(ctx, judgeapi.Request{
		Method: http.MethodGet,
		Path:   "/submissions/stats",
		Query:  query,
		Public: true,
	}, &stats)
	if err != nil {
		return nil, fmt.Errorf("httpSubmissionRepository.Stats: %w", err)
	}
	return &stats, nil
}
