package model

import "time"

// PlagiarismStatus is the tier tag assigned by the analysis service. The
// client echoes it; thresholds live on the service.
type PlagiarismStatus string

const (
	PlagiarismPlagiarized PlagiarismStatus = "PLAGIARIZED"
	PlagiarismSuspicious  PlagiarismStatus = "SUSPICIOUS"
	PlagiarismClean       PlagiarismStatus = "CLEAN"
	plagiarismSafeLegacy  PlagiarismStatus = "SAFE"
)

// Canonical folds the legacy SAFE tag into CLEAN.
func (s PlagiarismStatus) Canonical() PlagiarismStatus {
	if s == plagiarismSafeLegacy {
		return PlagiarismClean
	}
	return s
}

func (s PlagiarismStatus) Flagged() bool {
	switch s.Canonical() {
	case PlagiarismPlagiarized, PlagiarismSuspicious:
		return true
	}
	return false
}

type PairResult struct {
	UserID1           int64            `json:"user_id_1"`
	UserID2           int64            `json:"user_id_2"`
	Username1         string           `json:"username_1,omitempty"`
	Username2         string           `json:"username_2,omitempty"`
	SubmissionID1     int64            `json:"submission_id_1"`
	SubmissionID2     int64            `json:"submission_id_2"`
	SimilarityPercent float64          `json:"similarity_percent"`
	Status            PlagiarismStatus `json:"status"`
	CheckedAt         *time.Time       `json:"checked_at,omitempty"` // stored results only
}

// Involves reports whether the pair compares the given submission.
func (p PairResult) Involves(submissionID int64) bool {
	return p.SubmissionID1 == submissionID || p.SubmissionID2 == submissionID
}

type PlagiarismReport struct {
	ProblemID        int64        `json:"problem_id"`
	LanguageID       *int         `json:"language_id,omitempty"`
	TotalSubmissions int          `json:"total_submissions"`
	TotalComparisons int          `json:"total_comparisons"`
	FlaggedCount     int          `json:"flagged_count"`
	Message          string       `json:"message,omitempty"`
	Results          []PairResult `json:"results"`
	CheckedAt        time.Time    `json:"checked_at"`
}

// SubmissionPlagiarismReport compares one submission against the other
// passing submissions of its problem and language.
type SubmissionPlagiarismReport struct {
	SubmissionID     int64        `json:"submission_id"`
	ProblemID        int64        `json:"problem_id"`
	LanguageID       int          `json:"language_id"`
	TotalComparisons int          `json:"total_comparisons"`
	FlaggedCount     int          `json:"flagged_count"`
	Message          string       `json:"message,omitempty"`
	Results          []PairResult `json:"results"`
	CheckedAt        time.Time    `json:"checked_at"`
}

// StoredPlagiarismResults is every pair recorded by earlier checks of a
// problem, most similar first.
type StoredPlagiarismResults struct {
	ProblemID int64        `json:"problem_id"`
	Results   []PairResult `json:"results"`
}
