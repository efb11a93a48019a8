// Package plagiarism shows similarity reports to administrators: a whole
// problem, one submission, or the results recorded by earlier checks. Tiers
// are decided by the analysis service and echoed.
package plagiarism

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/Neeharika2/code-assessor/internal/common"
	"github.com/Neeharika2/code-assessor/internal/domain/model"
	"github.com/Neeharika2/code-assessor/internal/domain/repository"
	"github.com/fatih/color"
	"go.uber.org/zap"
)

type SessionSource interface {
	Current() *model.Session
}

type View struct {
	repo     repository.PlagiarismRepository
	sessions SessionSource
	logger   *zap.Logger
}

func NewView(repo repository.PlagiarismRepository, sessions SessionSource, logger *zap.Logger) *View {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &View{repo: repo, sessions: sessions, logger: logger}
}

// Check fetches the report. languageID, when set, limits the comparison to
// one plagiarism-capable language.
func (v *View) Check(ctx context.Context, problemID int64, languageID *int) (*model.PlagiarismReport, error) {
	if problemID == 0 {
		return nil, fmt.Errorf("no problem selected: %w", common.ErrValidation)
	}
	if err := v.authorize("plagiarism check"); err != nil {
		return nil, err
	}
	if languageID != nil {
		lang, ok := model.LookupLanguage(*languageID)
		if !ok || !lang.Plagiarism {
			return nil, fmt.Errorf("language %d not supported for plagiarism detection: %w", *languageID, common.ErrValidation)
		}
	}

	report, err := v.repo.CheckPlagiarism(ctx, problemID, languageID)
	if err != nil {
		return nil, fmt.Errorf("plagiarism check: %w", err)
	}
	v.logger.Info("plagiarism report received",
		zap.Int64("problem_id", problemID),
		zap.Int("submissions", report.TotalSubmissions),
		zap.Int("flagged", report.FlaggedCount))
	return report, nil
}

// CheckSubmission compares one submission against the other users' passing
// submissions of its problem and language.
func (v *View) CheckSubmission(ctx context.Context, submissionID int64) (*model.SubmissionPlagiarismReport, error) {
	if submissionID <= 0 {
		return nil, fmt.Errorf("no submission selected: %w", common.ErrValidation)
	}
	if err := v.authorize("plagiarism check"); err != nil {
		return nil, err
	}
	report, err := v.repo.CheckSubmission(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("plagiarism check: %w", err)
	}
	v.logger.Info("submission plagiarism report received",
		zap.Int64("submission_id", submissionID),
		zap.Int("comparisons", report.TotalComparisons),
		zap.Int("flagged", report.FlaggedCount))
	return report, nil
}

// StoredResults fetches what earlier checks of the problem recorded. No new
// comparison is run.
func (v *View) StoredResults(ctx context.Context, problemID int64) (*model.StoredPlagiarismResults, error) {
	if problemID == 0 {
		return nil, fmt.Errorf("no problem selected: %w", common.ErrValidation)
	}
	if err := v.authorize("plagiarism results"); err != nil {
		return nil, err
	}
	results, err := v.repo.StoredResults(ctx, problemID)
	if err != nil {
		return nil, fmt.Errorf("plagiarism results: %w", err)
	}
	return results, nil
}

func (v *View) authorize(op string) error {
	sess := v.sessions.Current()
	if sess == nil {
		return fmt.Errorf("%s: login required: %w", op, common.ErrUnauthorized)
	}
	if !sess.IsAdmin() {
		return fmt.Errorf("%s: admin role required: %w", op, common.ErrForbidden)
	}
	return nil
}

var tierColors = map[model.PlagiarismStatus]*color.Color{
	model.PlagiarismPlagiarized: color.New(color.FgRed, color.Bold),
	model.PlagiarismSuspicious:  color.New(color.FgYellow),
	model.PlagiarismClean:       color.New(color.FgGreen),
}

// Tier returns the display label for a status tag. Unknown tags are shown
// as received.
func Tier(s model.PlagiarismStatus) string {
	c := s.Canonical()
	if col, ok := tierColors[c]; ok {
		return col.Sprint(string(c))
	}
	return string(s)
}

// Render writes the summary and one row per pair in server order.
func Render(w io.Writer, r *model.PlagiarismReport) {
	fmt.Fprintf(w, "problem %d: %d submissions, %d comparisons, %d flagged\n",
		r.ProblemID, r.TotalSubmissions, r.TotalComparisons, r.FlaggedCount)
	if r.LanguageID != nil {
		if lang, ok := model.LookupLanguage(*r.LanguageID); ok {
			fmt.Fprintf(w, "language: %s\n", lang.Name)
		}
	}
	if r.Message != "" {
		fmt.Fprintln(w, r.Message)
	}
	renderPairs(w, r.Results, false)
}

// RenderSubmission writes a per-submission report.
func RenderSubmission(w io.Writer, r *model.SubmissionPlagiarismReport) {
	fmt.Fprintf(w, "submission #%d (problem %d): %d comparisons, %d flagged\n",
		r.SubmissionID, r.ProblemID, r.TotalComparisons, r.FlaggedCount)
	if lang, ok := model.LookupLanguage(r.LanguageID); ok {
		fmt.Fprintf(w, "language: %s\n", lang.Name)
	}
	if r.Message != "" {
		fmt.Fprintln(w, r.Message)
	}
	renderPairs(w, r.Results, false)
}

// RenderStored writes recorded results with the time each pair was checked.
func RenderStored(w io.Writer, r *model.StoredPlagiarismResults) {
	if len(r.Results) == 0 {
		fmt.Fprintf(w, "problem %d: no recorded plagiarism results\n", r.ProblemID)
		return
	}
	fmt.Fprintf(w, "problem %d: %d recorded pairs\n", r.ProblemID, len(r.Results))
	renderPairs(w, r.Results, true)
}

func renderPairs(w io.Writer, pairs []model.PairResult, withTime bool) {
	if len(pairs) == 0 {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	header := "USER A\tUSER B\tSUBMISSIONS\tSIMILARITY\tSTATUS"
	if withTime {
		header += "\tCHECKED"
	}
	fmt.Fprintln(tw, header)
	for _, p := range pairs {
		fmt.Fprintf(tw, "%s\t%s\t#%d / #%d\t%.1f%%\t%s",
			userLabel(p.Username1, p.UserID1), userLabel(p.Username2, p.UserID2),
			p.SubmissionID1, p.SubmissionID2, p.SimilarityPercent, Tier(p.Status))
		if withTime {
			checked := "-"
			if p.CheckedAt != nil {
				checked = p.CheckedAt.Local().Format(time.DateTime)
			}
			fmt.Fprintf(tw, "\t%s", checked)
		}
		fmt.Fprintln(tw)
	}
	tw.Flush()
}

func userLabel(name string, id int64) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf("user %d", id)
}
