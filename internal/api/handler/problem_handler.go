package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Neeharika2/code-assessor/internal/api/middleware"
	"github.com/Neeharika2/code-assessor/internal/common"
	"github.com/Neeharika2/code-assessor/internal/domain/model"
	"github.com/Neeharika2/code-assessor/internal/simulator"
	"github.com/go-chi/chi/v5"
)

type ProblemHandler struct {
	problemService    *simulator.ProblemService
	submissionService *simulator.SubmissionService
	plagiarismService *simulator.PlagiarismService
}

func NewProblemHandler(ps *simulator.ProblemService, ss *simulator.SubmissionService, pl *simulator.PlagiarismService) *ProblemHandler {
	return &ProblemHandler{problemService: ps, submissionService: ss, plagiarismService: pl}
}

func (h *ProblemHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listProblems)          // GET /api/problems
	r.Get("/{problemID}", h.getProblem) // GET /api/problems/3, samples only

	r.Group(func(authRouter chi.Router) {
		authRouter.Use(middleware.Authenticator)
		authRouter.Get("/{problemID}/submissions", h.listSubmissions)

		authRouter.Group(func(adminRouter chi.Router) {
			adminRouter.Use(middleware.AdminOnly)
			adminRouter.Post("/", h.createProblem)
			adminRouter.Put("/{problemID}", h.updateProblem)
			adminRouter.Delete("/{problemID}", h.deleteProblem)

			adminRouter.Get("/{problemID}/testcases", h.listTestCases)
			adminRouter.Post("/{problemID}/testcases", h.createTestCase)
			adminRouter.Delete("/{problemID}/testcases/{testCaseID}", h.deleteTestCase)

			adminRouter.Get("/{problemID}/plagiarism", h.checkPlagiarism)
		})
	})
}

func (h *ProblemHandler) listProblems(w http.ResponseWriter, r *http.Request) {
	problems := h.problemService.ListProblems(r.Context())
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"problems": problems})
}

func (h *ProblemHandler) getProblem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "problemID")
	if !ok {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid problem ID")
		return
	}
	problem, err := h.problemService.GetProblem(r.Context(), id)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"problem": problem})
}

func (h *ProblemHandler) createProblem(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req model.ProblemDraft
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	problem, err := h.problemService.CreateProblem(r.Context(), userID, req)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, map[string]interface{}{"problem": problem})
}

func (h *ProblemHandler) updateProblem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "problemID")
	if !ok {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid problem ID")
		return
	}
	var req model.ProblemDraft
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	if err := h.problemService.UpdateProblem(r.Context(), id, req); err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithMessage(w, http.StatusOK, "Problem updated successfully")
}

func (h *ProblemHandler) deleteProblem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "problemID")
	if !ok {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid problem ID")
		return
	}
	if err := h.problemService.DeleteProblem(r.Context(), id); err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithMessage(w, http.StatusOK, "Problem deleted successfully")
}

func (h *ProblemHandler) listTestCases(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "problemID")
	if !ok {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid problem ID")
		return
	}
	cases, err := h.problemService.ListTestCases(r.Context(), id)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"test_cases": cases})
}

func (h *ProblemHandler) createTestCase(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "problemID")
	if !ok {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid problem ID")
		return
	}
	var req model.TestCaseContent
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	tc, err := h.problemService.CreateTestCase(r.Context(), id, req)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, map[string]interface{}{"test_case": tc})
}

func (h *ProblemHandler) deleteTestCase(w http.ResponseWriter, r *http.Request) {
	problemID, ok := idParam(r, "problemID")
	if !ok {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid problem ID")
		return
	}
	testCaseID, ok := idParam(r, "testCaseID")
	if !ok {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid test case ID")
		return
	}
	if err := h.problemService.DeleteTestCase(r.Context(), problemID, testCaseID); err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithMessage(w, http.StatusOK, "Test case deleted successfully")
}

func (h *ProblemHandler) listSubmissions(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	id, ok := idParam(r, "problemID")
	if !ok {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid problem ID")
		return
	}
	subs := h.submissionService.History(r.Context(), userID, id)
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"submissions": subs})
}

func (h *ProblemHandler) checkPlagiarism(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "problemID")
	if !ok {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid problem ID")
		return
	}
	var languageID *int
	if raw := r.URL.Query().Get("language_id"); raw != "" {
		lang, err := strconv.Atoi(raw)
		if err != nil {
			common.RespondWithError(w, http.StatusBadRequest, "Invalid language_id")
			return
		}
		languageID = &lang
	}
	report, err := h.plagiarismService.Check(r.Context(), id, languageID)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, report)
}
