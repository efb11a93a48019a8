package main

import (
	"fmt"

	"github.com/Neeharika2/code-assessor/internal/app/plagiarism"
	"github.com/Neeharika2/code-assessor/internal/common"
	"github.com/Neeharika2/code-assessor/internal/domain/model"
	"github.com/spf13/cobra"
)

func newPlagiarismCmd(a *app) *cobra.Command {
	var (
		language   string
		submission int64
		stored     bool
	)
	cmd := &cobra.Command{
		Use:   "plagiarism [<id|slug>]",
		Short: "Similarity reports of accepted submissions (admin)",
		Long: `Compare the accepted submissions of a problem and report similar pairs.

With --submission, compare one submission against the other users' accepted
submissions of its problem and language. With --stored, list the pairs
recorded by earlier checks of the problem without comparing again.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if submission != 0 {
				if len(args) != 0 || stored || language != "" {
					return fmt.Errorf("--submission cannot be combined with a problem or other flags: %w", common.ErrValidation)
				}
				return nil
			}
			if stored && language != "" {
				return fmt.Errorf("--stored takes no --lang: %w", common.ErrValidation)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if submission != 0 {
				report, err := a.plagiarism.CheckSubmission(cmd.Context(), submission)
				if err != nil {
					return err
				}
				plagiarism.RenderSubmission(out, report)
				return nil
			}

			p, err := a.catalog.Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if stored {
				results, err := a.plagiarism.StoredResults(cmd.Context(), p.ID)
				if err != nil {
					return err
				}
				plagiarism.RenderStored(out, results)
				return nil
			}

			var languageID *int
			if language != "" {
				l, err := model.ParseLanguage(language)
				if err != nil {
					return fmt.Errorf("%v: %w", err, common.ErrValidation)
				}
				languageID = &l.ID
			}
			report, err := a.plagiarism.Check(cmd.Context(), p.ID, languageID)
			if err != nil {
				return err
			}
			plagiarism.Render(out, report)
			return nil
		},
	}
	cmd.Flags().StringVarP(&language, "lang", "l", "", "only compare submissions in this language")
	cmd.Flags().Int64VarP(&submission, "submission", "s", 0, "check one submission by id")
	cmd.Flags().BoolVar(&stored, "stored", false, "list results recorded by earlier checks")
	return cmd
}
