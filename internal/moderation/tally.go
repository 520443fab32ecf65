package moderation

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/models"
	"github.com/google/uuid"
)

// VotingStatus is the per-report read model shown next to a report.
type VotingStatus struct {
	ReportID      uuid.UUID            `json:"report_id"`
	Status        models.ReportStatus  `json:"status"`
	Total         int                  `json:"total"`
	RemoveCount   int                  `json:"remove_count"`
	KeepCount     int                  `json:"keep_count"`
	UserVote      *models.VoteDecision `json:"user_vote,omitempty"`
	TimeRemaining time.Duration        `json:"time_remaining"`
}

// Tally summarizes the votes on r as seen by viewer. TimeRemaining is zero
// once the report is terminal or its voting period has elapsed.
func Tally(r *models.Report, viewer string, t Thresholds, now time.Time) VotingStatus {
	total, remove, keep := countVotes(r.Votes)
	vs := VotingStatus{
		ReportID:    r.ID,
		Status:      r.Status,
		Total:       total,
		RemoveCount: remove,
		KeepCount:   keep,
	}
	if viewer != "" {
		if v, ok := r.VoteBy(viewer); ok {
			d := v.Decision
			vs.UserVote = &d
		}
	}
	if r.Status == models.ReportPending {
		if remaining := Deadline(r, t).Sub(now); remaining > 0 {
			vs.TimeRemaining = remaining
		}
	}
	return vs
}
