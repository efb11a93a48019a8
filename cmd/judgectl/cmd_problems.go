package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/Neeharika2/code-assessor/internal/app/authoring"
	"github.com/Neeharika2/code-assessor/internal/common"
	"github.com/Neeharika2/code-assessor/internal/domain/model"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newProblemsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "problems",
		Short: "List problems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			listing, err := a.catalog.Load(cmd.Context())
			if err != nil {
				return err
			}
			if listing.CompletionErr != nil {
				a.logger.Warn("completion markers unavailable", zap.Error(listing.CompletionErr))
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tDIFFICULTY\tSLUG\tDONE")
			for i := range listing.Problems {
				p := &listing.Problems[i]
				done := ""
				if listing.IsCompleted(p.ID) {
					done = color.GreenString("✓")
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", p.ID, p.Title, p.Difficulty, p.Slug(), done)
			}
			return tw.Flush()
		},
	}
}

func newProblemCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "problem",
		Short: "Show or delete one problem",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show <id|slug>",
		Short: "Show a problem with its sample cases",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.catalog.Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "#%d %s [%s]\n", p.ID, color.New(color.Bold).Sprint(p.Title), p.Difficulty)
			fmt.Fprintf(out, "time limit %dms, memory limit %dKB\n\n", p.TimeLimitMs, p.MemoryLimitKb)
			fmt.Fprintln(out, p.Description)
			for i, tc := range p.TestCases {
				fmt.Fprintf(out, "\nSample %d\n  input:    %q\n  expected: %q\n", i+1, tc.Input, tc.ExpectedOutput)
			}
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a problem (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("problem id %q: %w", args[0], common.ErrValidation)
			}
			if err := authoring.DeleteProblem(cmd.Context(), a.authoringDeps(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted problem %d\n", id)
			return nil
		},
	})
	return cmd
}

func newLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List supported languages",
		Args:  cobra.NoArgs,
		// no session or API needed
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSLUG\tNAME\tPLAGIARISM")
			for _, l := range model.Languages() {
				plag := ""
				if l.Plagiarism {
					plag = "yes"
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", l.ID, l.Slug, l.Name, plag)
			}
			return tw.Flush()
		},
	}
}
