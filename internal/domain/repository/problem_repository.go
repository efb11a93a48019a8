package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Neeharika2/code-assessor/internal/common"
	"github.com/Neeharika2/code-assessor/internal/domain/model"
	"github.com/Neeharika2/code-assessor/internal/platform/judgeapi"
)

var errMalformed = fmt.Errorf("%w: malformed response", common.ErrService)

type ProblemRepository interface {
	ListProblems(ctx context.Context) ([]model.Problem, error)
	// FindProblemByID returns the public view: sample test cases only.
	FindProblemByID(ctx context.Context, id int64) (*model.Problem, error)
	CreateProblem(ctx context.Context, draft model.ProblemDraft) (*model.Problem, error)
	UpdateProblem(ctx context.Context, id int64, draft model.ProblemDraft) error
	DeleteProblem(ctx context.Context, id int64) error
}

type httpProblemRepository struct {
	api *judgeapi.Client
}

func NewHTTPProblemRepository(api *judgeapi.Client) ProblemRepository {
	return &httpProblemRepository{api: api}
}

func problemPath(id int64) string {
	return fmt.Sprintf("/problems/%d", id)
}

func (r *httpProblemRepository) ListProblems(ctx context.Context) ([]model.Problem, error) {
	var resp struct {
		Problems []model.Problem `json:"problems"`
	}
	err := r.api.Do(ctx, judgeapi.Request{
		Method: http.MethodGet,
		Path:   "/problems",
		Public: true,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("httpProblemRepository.ListProblems: %w", err)
	}
	return resp.Problems, nil
}

func (r *httpProblemRepository) FindProblemByID(ctx context.Context, id int64) (*model.Problem, error) {
	var resp struct {
		Problem *model.Problem `json:"problem"`
	}
	err := r.api.Do(ctx, judgeapi.Request{
		Method: http.MethodGet,
		Path:   problemPath(id),
		Public: true,
	}, &resp)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("problem %d: %w", id, err)
		}
		return nil, fmt.Errorf("httpProblemRepository.FindProblemByID: %w", err)
	}
	if resp.Problem == nil {
		return nil, fmt.Errorf("problem %d: %w", id, errMalformed)
	}
	return resp.Problem, nil
}

func (r *httpProblemRepository) CreateProblem(ctx context.Context, draft model.ProblemDraft) (*model.Problem, error) {
	var resp struct {
		Problem *model.Problem `json:"problem"`
	}
	err := r.api.Do(ctx, judgeapi.Request{
		Method: http.MethodPost,
		Path:   "/problems",
		Body:   draft,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Problem == nil || resp.Problem.ID == 0 {
		return nil, fmt.Errorf("create problem: %w", errMalformed)
	}
	return resp.Problem, nil
}

func (r *httpProblemRepository) UpdateProblem(ctx context.Context, id int64, draft model.ProblemDraft) error {
	return r.api.Do(ctx, judgeapi.Request{
		Method: http.MethodPut,
		Path:   problemPath(id),
		Body:   draft,
	}, nil)
}

func (r *httpProblemRepository) DeleteProblem(ctx context.Context, id int64) error {
	return r.api.Do(ctx, judgeapi.Request{
		Method: http.MethodDelete,
		Path:   problemPath(id),
	}, nil)
}
