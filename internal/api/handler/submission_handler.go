package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Neeharika2/code-assessor/internal/api/middleware"
	"github.com/Neeharika2/code-assessor/internal/common"
	"github.com/Neeharika2/code-assessor/internal/domain/model"
	"github.com/Neeharika2/code-assessor/internal/simulator"
	"github.com/go-chi/chi/v5"
)

type SubmissionHandler struct {
	submissionService *simulator.SubmissionService
}

func NewSubmissionHandler(ss *simulator.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: ss}
}

func (h *SubmissionHandler) RegisterRoutes(r chi.Router) {
	// public
	r.Post("/run", h.run)
	r.Get("/submissions/stats", h.stats)

	r.Group(func(authRouter chi.Router) {
		authRouter.Use(middleware.Authenticator)
		authRouter.Post("/submit", h.submit)
		authRouter.Get("/my/submissions", h.mySubmissions)
		authRouter.Get("/users/me/completed", h.completed)
	})
}

func (h *SubmissionHandler) run(w http.ResponseWriter, r *http.Request) {
	var req model.JudgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	res, err := h.submissionService.Run(r.Context(), req)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, res)
}

func (h *SubmissionHandler) submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	var req model.JudgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	res, err := h.submissionService.Submit(r.Context(), userID, req)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, res)
}

func (h *SubmissionHandler) completed(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	ids := h.submissionService.Completed(r.Context(), userID)
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"completed_problem_ids": ids,
		"total_completed":       len(ids),
	})
}

func (h *SubmissionHandler) mySubmissions(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	problemID, ok := queryID(r, "problem_id")
	if !ok {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid problem_id")
		return
	}
	subs := h.submissionService.Mine(r.Context(), userID, problemID)
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"submissions": subs})
}

func (h *SubmissionHandler) stats(w http.ResponseWriter, r *http.Request) {
	var filter model.SubmissionFilter
	var ok bool
	if filter.UserID, ok = queryID(r, "user_id"); !ok {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid user_id")
		return
	}
	if filter.ProblemID, ok = queryID(r, "problem_id"); !ok {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid problem_id")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, h.submissionService.Stats(r.Context(), filter))
}
