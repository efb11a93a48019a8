package repository

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Neeharika2/code-assessor/internal/domain/model"
	"github.com/Neeharika2/code-assessor/internal/platform/judgeapi"
)

// TestCaseRepository is the admin view of a problem's test cases. There is
// no update verb; a changed case is deleted and created again.
type TestCaseRepository interface {
	ListTestCases(ctx context.Context, problemID int64) ([]model.TestCase, error)
	CreateTestCase(ctx context.Context, problemID int64, content model.TestCaseContent) (*model.TestCase, error)
	DeleteTestCase(ctx context.Context, problemID, testCaseID int64) error
}

type httpTestCaseRepository struct {
	api *judgeapi.Client
}

func NewHTTPTestCaseRepository(api *judgeapi.Client) TestCaseRepository {
	return &httpTestCaseRepository{api: api}
}

func (r *httpTestCaseRepository) ListTestCases(ctx context.Context, problemID int64) ([]model.TestCase, error) {
	var resp struct {
		TestCases []model.TestCase `json:"test_cases"`
	}
	err := r.api.Do(ctx, judgeapi.Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/problems/%d/testcases", problemID),
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("httpTestCaseRepository.ListTestCases: %w", err)
	}
	return resp.TestCases, nil
}

func (r *httpTestCaseRepository) CreateTestCase(ctx context.Context, problemID int64, content model.TestCaseContent) (*model.TestCase, error) {
	var resp struct {
		TestCase *model.TestCase `json:"test_case"`
	}
	err := r.api.Do(ctx, judgeapi.Request{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/problems/%d/testcases", problemID),
		Body:   content,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.TestCase == nil || resp.TestCase.ID == 0 {
		return nil, fmt.Errorf("create test case: %w", errMalformed)
	}
	return resp.TestCase, nil
}

func (r *httpTestCaseRepository) DeleteTestCase(ctx context.Context, problemID, testCaseID int64) error {
	return r.api.Do(ctx, judgeapi.Request{
		Method: http.MethodDelete,
		Path:   fmt.Sprintf("/problems/%d/testcases/%d", problemID, testCaseID),
	}, nil)
}
