// Package api is the HTTP surface of the judge simulator.
package api

import (
	"net/http"
	"time"

	"github.com/Neeharika2/code-assessor/internal/api/handler"
	"github.com/Neeharika2/code-assessor/internal/api/middleware"
	"github.com/Neeharika2/code-assessor/internal/common/security"
	"github.com/Neeharika2/code-assessor/internal/simulator"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	"go.uber.org/zap"
)

type Services struct {
	Auth       *simulator.AuthService
	Problems   *simulator.ProblemService
	Submission *simulator.SubmissionService
	Plagiarism *simulator.PlagiarismService
}

func NewRouter(issuer *security.Issuer, svc Services, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// puts the verified token (or the verification error) in the context;
	// Authenticator decides per route
	r.Use(jwtauth.Verifier(issuer.Auth()))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(api chi.Router) {
		authHandler := handler.NewAuthHandler(svc.Auth)
		api.Route("/auth", authHandler.RegisterRoutes)

		problemHandler := handler.NewProblemHandler(svc.Problems, svc.Submission, svc.Plagiarism)
		api.Route("/problems", problemHandler.RegisterRoutes)

		plagiarismHandler := handler.NewPlagiarismHandler(svc.Plagiarism)
		api.Route("/plagiarism", plagiarismHandler.RegisterRoutes)

		submissionHandler := handler.NewSubmissionHandler(svc.Submission)
		api.Group(submissionHandler.RegisterRoutes)
	})

	return r
}

// NewSimulator wires a fresh in-memory simulator behind the router.
func NewSimulator(issuer *security.Issuer, executor simulator.Executor, logger *zap.Logger) (http.Handler, Services) {
	store := simulator.NewStore()
	svc := Services{
		Auth:       simulator.NewAuthService(store, issuer, logger),
		Problems:   simulator.NewProblemService(store, logger),
		Submission: simulator.NewSubmissionService(store, executor, logger),
		Plagiarism: simulator.NewPlagiarismService(store, logger),
	}
	return NewRouter(issuer, svc, logger), svc
}
