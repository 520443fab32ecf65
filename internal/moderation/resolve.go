package moderation

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/models"
)

// Outcome is the result of evaluating a report against the thresholds.
type Outcome struct {
	Status models.ReportStatus
	Cause  models.ResolutionCause
}

func (o Outcome) Resolved() bool {
	return o.Status.Terminal()
}

var stillPending = Outcome{Status: models.ReportPending}

// Evaluate decides the status a report should move to. The order is fixed:
// the AI score pre-empts voting, a vote tally that meets the minimum and a
// threshold resolves next, and an elapsed voting period rejects last.
// Terminal reports evaluate to their current status.
func Evaluate(r *models.Report, t Thresholds, now time.Time) Outcome {
	if r.Status != models.ReportPending {
		return Outcome{Status: r.Status, Cause: r.ResolutionCause}
	}

	if r.AIConfidence != nil && *r.AIConfidence >= t.AIConfidenceThreshold {
		return Outcome{Status: models.ReportAutoRemoved, Cause: models.CauseAIThreshold}
	}

	total, removeCount, keepCount := countVotes(r.Votes)
	if total >= t.MinVotesRequired {
		removeFraction := float64(removeCount) / float64(total)
		keepFraction := float64(keepCount) / float64(total)
		switch {
		case removeFraction >= t.RemovalThreshold:
			return Outcome{Status: models.ReportResolvedRemoved, Cause: models.CauseVoteThreshold}
		case t.Policy != PolicyRemoveOnly && keepFraction >= t.RemovalThreshold:
			return Outcome{Status: models.ReportResolvedKept, Cause: models.CauseVoteThreshold}
		}
	}

	if !now.Before(Deadline(r, t)) {
		return Outcome{Status: models.ReportRejected, Cause: models.CauseVotingExpired}
	}
	return stillPending
}

// Deadline is the end of the report's voting period.
func Deadline(r *models.Report, t Thresholds) time.Time {
	return r.CreatedAt.Add(t.VotingPeriod)
}

func countVotes(votes []models.Vote) (total, remove, keep int) {
	for _, v := range votes {
		switch v.Decision {
		case models.DecisionRemove:
			remove++
		case models.DecisionKeep:
			keep++
		}
	}
	return remove + keep, remove, keep
}

// contentTarget maps a resolution onto the content status it implies.
// Removed content is never restored by a later keep or rejection, and content
// with other pending reports stays under review.
func contentTarget(status models.ReportStatus, current models.ContentStatus, otherPending bool) models.ContentStatus {
	switch status {
	case models.ReportAutoRemoved, models.ReportResolvedRemoved:
		return models.ContentRemoved
	case models.ReportResolvedKept, models.ReportRejected:
		if current == models.ContentRemoved {
			return current
		}
		if otherPending {
			return models.ContentUnderReview
		}
		return models.ContentActive
	}
	return current
}
