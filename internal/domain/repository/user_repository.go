package repository

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Neeharika2/code-assessor/internal/domain/model"
	"github.com/Neeharika2/code-assessor/internal/platform/judgeapi"
)

type UserRepository interface {
	Login(ctx context.Context, creds model.Credentials) (*model.Session, error)
	// Register returns nil without error when the server only acknowledges.
	Register(ctx context.Context, profile model.Profile) (*model.Session, error)
	CompletedProblemIDs(ctx context.Context) ([]int64, error)
}

type httpUserRepository struct {
	api *judgeapi.Client
}

func NewHTTPUserRepository(api *judgeapi.Client) UserRepository {
	return &httpUserRepository{api: api}
}

func (r *httpUserRepository) Login(ctx context.Context, creds model.Credentials) (*model.Session, error) {
	var sess model.Session
	err := r.api.Do(ctx, judgeapi.Request{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body:   creds,
		Public: true,
	}, &sess)
	if err != nil {
		return nil, err
	}
	if sess.Token == "" {
		return nil, fmt.Errorf("login response carried no token: %w", errMalformed)
	}
	return &sess, nil
}

func (r *httpUserRepository) Register(ctx context.Context, profile model.Profile) (*model.Session, error) {
	var resp struct {
		Token string      `json:"token"`
		User  *model.User `json:"user"`
	}
	err := r.api.Do(ctx, judgeapi.Request{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Body:   profile,
		Public: true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Token == "" || resp.User == nil {
		return nil, nil
	}
	return &model.Session{Token: resp.Token, User: *resp.User}, nil
}

func (r *httpUserRepository) CompletedProblemIDs(ctx context.Context) ([]int64, error) {
	var resp struct {
		CompletedProblemIDs []int64 `json:"completed_problem_ids"`
		TotalCompleted      int     `json:"total_completed"`
	}
	err := r.api.Do(ctx, judgeapi.Request{
		Method: http.MethodGet,
		Path:   "/users/me/completed",
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("httpUserRepository.CompletedProblemIDs: %w", err)
	}
	return resp.CompletedProblemIDs, nil
}
