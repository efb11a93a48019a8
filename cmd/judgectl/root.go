package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/Neeharika2/code-assessor/internal/app/authoring"
	"github.com/Neeharika2/code-assessor/internal/app/catalog"
	"github.com/Neeharika2/code-assessor/internal/app/judge"
	"github.com/Neeharika2/code-assessor/internal/app/plagiarism"
	"github.com/Neeharika2/code-assessor/internal/app/session"
	"github.com/Neeharika2/code-assessor/internal/common"
	"github.com/Neeharika2/code-assessor/internal/domain/repository"
	"github.com/Neeharika2/code-assessor/internal/platform/config"
	"github.com/Neeharika2/code-assessor/internal/platform/judgeapi"
	"github.com/Neeharika2/code-assessor/internal/platform/kv"
	"github.com/Neeharika2/code-assessor/internal/platform/logging"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app is everything a command needs, built once per invocation.
type app struct {
	verbose bool
	closed  bool

	cfg      *config.Config
	logger   *zap.Logger
	rdb      *redis.Client
	sessions *session.Store

	users      repository.UserRepository
	problems   repository.ProblemRepository
	testCases  repository.TestCaseRepository
	catalog    *catalog.Catalog
	gateway    *judge.Gateway
	plagiarism *plagiarism.View
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}
	root := &cobra.Command{
		Use:           "judgectl",
		Short:         "Client for the code-assessor judge",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newLoginCmd(a),
		newRegisterCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newProblemsCmd(a),
		newProblemCmd(a),
		newLanguagesCmd(),
		newRunCmd(a),
		newSubmitCmd(a),
		newSubmissionsCmd(a),
		newStatsCmd(a),
		newAuthorCmd(a),
		newPlagiarismCmd(a),
	)
	return root, a
}

// execute runs one invocation. What setup acquired is released even when
// the command fails.
func execute(ctx context.Context, root *cobra.Command, a *app) error {
	defer a.close()
	return root.ExecuteContext(ctx)
}

func (a *app) setup(cmd *cobra.Command) error {
	a.cfg = config.Load()
	level := a.cfg.LogLevel
	if a.verbose {
		level = "debug"
	}
	logger, err := logging.New(level, a.cfg.LogDev)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger

	client := judgeapi.New(a.cfg.APIBaseURL,
		judgeapi.WithTimeout(a.cfg.RequestTimeout),
		judgeapi.WithLogger(logger.Named("judgeapi")))

	persist, err := a.persister(cmd)
	if err != nil {
		return err
	}

	a.users = repository.NewHTTPUserRepository(client)
	a.problems = repository.NewHTTPProblemRepository(client)
	a.testCases = repository.NewHTTPTestCaseRepository(client)

	a.sessions = session.NewStore(a.users, persist, logger.Named("session"))
	client.Attach(a.sessions)
	if err := a.sessions.Open(cmd.Context()); err != nil {
		// a broken session file must not lock the user out of login
		logger.Warn("could not restore session", zap.Error(err))
	}

	a.catalog = catalog.New(a.problems, a.users, a.sessions, logger.Named("catalog"))
	a.gateway = judge.NewGateway(repository.NewHTTPSubmissionRepository(client), a.sessions, logger.Named("judge"))
	a.plagiarism = plagiarism.NewView(repository.NewHTTPPlagiarismRepository(client), a.sessions, logger.Named("plagiarism"))
	return nil
}

func (a *app) persister(cmd *cobra.Command) (session.Persister, error) {
	switch a.cfg.SessionBackend {
	case config.SessionBackendFile:
		return session.NewFileStore(a.cfg.SessionFile), nil
	case config.SessionBackendRedis:
		rdb, err := kv.ConnectRedis(cmd.Context(), a.cfg, a.logger)
		if err != nil {
			return nil, err
		}
		a.rdb = rdb
		return session.NewRedisStore(rdb, a.cfg.SessionRedisKey), nil
	default:
		return nil, fmt.Errorf("unknown SESSION_BACKEND %q (want %s or %s)",
			a.cfg.SessionBackend, config.SessionBackendFile, config.SessionBackendRedis)
	}
}

func (a *app) authoringDeps() authoring.Deps {
	return authoring.Deps{
		Problems:  a.problems,
		TestCases: a.testCases,
		Sessions:  a.sessions,
		Logger:    a.logger.Named("authoring"),
	}
}

func (a *app) close() {
	if a.closed {
		return
	}
	a.closed = true
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// exitCode gives scripts something to branch on besides the message.
func exitCode(err error) int {
	switch {
	case errors.Is(err, common.ErrValidation):
		return 2
	case errors.Is(err, common.ErrUnauthorized), errors.Is(err, common.ErrForbidden):
		return 3
	case errors.Is(err, common.ErrNotFound):
		return 4
	case errors.Is(err, common.ErrNetwork), errors.Is(err, common.ErrService):
		return 5
	}
	return 1
}
