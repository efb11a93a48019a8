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

type PlagiarismRepository interface {
	CheckPlagiarism(ctx context.Context, problemID int64, languageID *int) (*model.PlagiarismReport, error)
	CheckSubmission(ctx context.Context, submissionID int64) (*model.SubmissionPlagiarismReport, error)
	// StoredResults lists the pairs recorded by earlier checks of a problem.
	StoredResults(ctx context.Context, problemID int64) (*model.StoredPlagiarismResults, error)
}

type httpPlagiarismRepository struct {
	api *judgeapi.Client
}

func NewHTTPPlagiarismRepository(api *judgeapi.Client) PlagiarismRepository {
	return &httpPlagiarismRepository{api: api}
}

func (r *httpPlagiarismRepository) CheckPlagiarism(ctx context.Context, problemID int64, languageID *int) (*model.PlagiarismReport, error) {
	var query url.Values
	if languageID != nil {
		query = url.Values{"language_id": {strconv.Itoa(*languageID)}}
	}
	var report model.PlagiarismReport
	err := r.api.Do(ctx, judgeapi.Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/problems/%d/plagiarism", problemID),
		Query:  query,
	}, &report)
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *httpPlagiarismRepository) CheckSubmission(ctx context.Context, submissionID int64) (*model.SubmissionPlagiarismReport, error) {
	var report model.SubmissionPlagiarismReport
	err := r.api.Do(ctx, judgeapi.Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/plagiarism/submissions/%d", submissionID),
	}, &report)
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *httpPlagiarismRepository) StoredResults(ctx context.Context, problemID int64) (*model.StoredPlagiarismResults, error) {
	var results model.StoredPlagiarismResults
	err := r.api.Do(ctx, judgeapi.Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/plagiarism/results/%d", problemID),
	}, &results)
	if err != nil {
		return nil, err
	}
	return &results, nil
}
