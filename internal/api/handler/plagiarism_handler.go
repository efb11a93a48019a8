package handler

import (
	"net/http"

	"github.com/Neeharika2/code-assessor/internal/api/middleware"
	"github.com/Neeharika2/code-assessor/internal/common"
	"github.com/Neeharika2/code-assessor/internal/simulator"
	"github.com/go-chi/chi/v5"
)

// PlagiarismHandler serves the per-submission check and the recorded
// results. The problem-wide check lives under /problems.
type PlagiarismHandler struct {
	plagiarismService *simulator.PlagiarismService
}

func NewPlagiarismHandler(pl *simulator.PlagiarismService) *PlagiarismHandler {
	return &PlagiarismHandler{plagiarismService: pl}
}

func (h *PlagiarismHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Use(middleware.AdminOnly)
	r.Get("/submissions/{submissionID}", h.checkSubmission)
	r.Get("/results/{problemID}", h.storedResults)
}

func (h *PlagiarismHandler) checkSubmission(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "submissionID")
	if !ok {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid submission ID")
		return
	}
	report, err := h.plagiarismService.CheckSubmission(r.Context(), id)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, report)
}

func (h *PlagiarismHandler) storedResults(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "problemID")
	if !ok {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid problem ID")
		return
	}
	results, err := h.plagiarismService.StoredResults(r.Context(), id)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, results)
}
