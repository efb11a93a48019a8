package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/Neeharika2/code-assessor/internal/app/results"
	"github.com/Neeharika2/code-assessor/internal/common"
	"github.com/Neeharika2/code-assessor/internal/domain/model"
	"github.com/spf13/cobra"
)

type sourceFlags struct {
	file     string
	language string
}

func (f *sourceFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "source file, - for stdin")
	cmd.Flags().StringVarP(&f.language, "lang", "l", "", "language id, slug or extension (default from the file name)")
	_ = cmd.MarkFlagRequired("file")
}

// load reads the source and picks the language: the flag, then the file
// extension, then the editor default.
func (f *sourceFlags) load(stdin io.Reader) (model.Language, string, error) {
	var (
		src []byte
		err error
	)
	if f.file == "-" {
		src, err = io.ReadAll(stdin)
	} else {
		src, err = os.ReadFile(f.file)
	}
	if err != nil {
		return model.Language{}, "", fmt.Errorf("read source: %w", err)
	}

	ref := f.language
	if ref == "" && f.file != "-" {
		ref = filepath.Ext(f.file)
	}
	if ref == "" {
		l, _ := model.LookupLanguage(model.DefaultLanguageID)
		return l, string(src), nil
	}
	l, err := model.ParseLanguage(ref)
	if err != nil {
		return model.Language{}, "", fmt.Errorf("%v: %w", err, common.ErrValidation)
	}
	return l, string(src), nil
}

func newRunCmd(a *app) *cobra.Command {
	var sf sourceFlags
	cmd := &cobra.Command{
		Use:   "run <id|slug>",
		Short: "Run a solution against the sample cases",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.catalog.Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			lang, src, err := sf.load(cmd.InOrStdin())
			if err != nil {
				return err
			}
			res, err := a.gateway.Run(cmd.Context(), p.ID, lang.ID, src)
			if err != nil {
				return err
			}
			results.Render(cmd.OutOrStdout(), results.Aggregate(res, model.ModeRun))
			return nil
		},
	}
	sf.bind(cmd)
	return cmd
}

func newSubmitCmd(a *app) *cobra.Command {
	var sf sourceFlags
	cmd := &cobra.Command{
		Use:   "submit <id|slug>",
		Short: "Submit a solution against every case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.catalog.Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			lang, src, err := sf.load(cmd.InOrStdin())
			if err != nil {
				return err
			}
			res, err := a.gateway.Submit(cmd.Context(), p.ID, lang.ID, src)
			if err != nil {
				return err
			}
			results.Render(cmd.OutOrStdout(), results.Aggregate(res, model.ModeSubmit))
			return nil
		},
	}
	sf.bind(cmd)
	return cmd
}

func newSubmissionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "submissions [<id|slug>]",
		Short: "List your submissions, for one problem or your latest across all",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				subs []model.Submission
				err  error
			)
			if len(args) == 1 {
				p, rerr := a.catalog.Resolve(cmd.Context(), args[0])
				if rerr != nil {
					return rerr
				}
				subs, err = a.gateway.History(cmd.Context(), p.ID)
			} else {
				subs, err = a.gateway.Mine(cmd.Context(), 0)
			}
			if err != nil {
				return err
			}
			if len(subs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No submissions yet")
				return nil
			}
			return writeSubmissions(cmd.OutOrStdout(), subs, len(args) == 0)
		},
	}
}

func writeSubmissions(w io.Writer, subs []model.Submission, withProblem bool) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if withProblem {
		fmt.Fprint(tw, "PROBLEM\t")
	}
	fmt.Fprintln(tw, "ID\tLANGUAGE\tPASSED\tTIME\tMEMORY\tSUBMITTED")
	for _, s := range subs {
		lang := fmt.Sprint(s.LanguageID)
		if l, ok := model.LookupLanguage(s.LanguageID); ok {
			lang = l.Slug
		}
		if withProblem {
			title := s.ProblemTitle
			if title == "" {
				title = fmt.Sprintf("#%d", s.ProblemID)
			}
			fmt.Fprintf(tw, "%s\t", title)
		}
		fmt.Fprintf(tw, "%d\t%s\t%d/%d\t%.3fs\t%dKB\t%s\n",
			s.ID, lang, s.PassedTests, s.TotalTests, s.ExecutionTime, s.MemoryUsed,
			s.SubmittedAt.Local().Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func newStatsCmd(a *app) *cobra.Command {
	var (
		userID  int64
		problem string
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Submission counts and success rate, optionally for one user or problem",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := model.SubmissionFilter{UserID: userID}
			if problem != "" {
				p, err := a.catalog.Resolve(cmd.Context(), problem)
				if err != nil {
					return err
				}
				filter.ProblemID = p.ID
			}
			stats, err := a.gateway.Stats(cmd.Context(), filter)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d submissions: %d passed, %d failed\n",
				stats.TotalSubmissions, stats.PassedSubmissions, stats.FailedSubmissions)
			fmt.Fprintf(out, "success rate: %.1f%%\n", stats.SuccessRate)
			return nil
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "only count this user's submissions")
	cmd.Flags().StringVar(&problem, "problem", "", "only count submissions for this problem (id or slug)")
	return cmd
}
