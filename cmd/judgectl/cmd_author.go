package main

import (
	"errors"
	"fmt"

	"github.com/Neeharika2/code-assessor/internal/app/authoring"
	"github.com/Neeharika2/code-assessor/internal/app/reconcile"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newAuthorCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "author",
		Short: "Create and edit problems (admin)",
	}
	cmd.AddCommand(newAuthorApplyCmd(a))
	return cmd
}

func newAuthorApplyCmd(a *app) *cobra.Command {
	var (
		file      string
		problemID int64
		noCommit  bool
		retries   int
	)
	cmd := &cobra.Command{
		Use:   "apply -f problem.toml",
		Short: "Make a problem and its test cases match a problem file",
		Long: `Creates the problem (or updates --problem) from the file, then makes the
server's test cases equal the file's list: stale cases are deleted first,
missing ones created after. A case whose content changed is replaced and gets
a new id. If a step fails the earlier steps stay applied; --retries resumes
from the failed step.

--no-commit still creates or updates the problem itself. Only the test case
changes are left unapplied, and their count is printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pf, err := readProblemFile(file)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			wf, err := authoring.Begin(ctx, a.authoringDeps(), problemID)
			if err != nil {
				return err
			}
			if err := wf.Handle(ctx, authoring.SaveProblemMsg{Draft: pf.draft()}); err != nil {
				_ = wf.Abandon()
				return err
			}
			if err := wf.Handle(ctx, authoring.SyncCasesMsg{Cases: pf.TestCases}); err != nil {
				_ = wf.Abandon()
				return err
			}

			deletes, creates := wf.Pending()
			fmt.Fprintf(out, "Problem %d saved; %d test case(s) to delete, %d to create\n", wf.ProblemID(), deletes, creates)
			if noCommit {
				return wf.Handle(ctx, authoring.AbandonMsg{})
			}

			wf.OnRefresh(func(id int64) {
				fmt.Fprintf(out, "Problem %d now has %d test case(s)\n", id, len(pf.TestCases))
			})
			for attempt := 0; ; attempt++ {
				err = wf.Handle(ctx, authoring.CommitMsg{})
				var ce *reconcile.CommitError
				if err == nil || !errors.As(err, &ce) || attempt >= retries {
					break
				}
				a.logger.Warn("retrying test case commit", zap.Int("attempt", attempt+1), zap.Error(err))
			}
			if err != nil {
				_ = wf.Abandon()
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "problem file (TOML)")
	cmd.Flags().Int64Var(&problemID, "problem", 0, "existing problem id to update")
	cmd.Flags().BoolVar(&noCommit, "no-commit", false, "save the problem but leave its test cases untouched (writes the problem)")
	cmd.Flags().IntVar(&retries, "retries", 0, "times to resume a partially applied commit")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
