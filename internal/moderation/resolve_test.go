package moderation

import (
	"fmt"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/models"
	"github.com/stretchr/testify/assert"
)

var created = time.Date(2026, time.February, 5, 12, 0, 0, 0, time.UTC)

func reportWithVotes(remove, keep int) *models.Report {
	r := &models.Report{Status: models.ReportPending, CreatedAt: created}
	for i := 0; i < remove; i++ {
		r.PutVote(models.Vote{VoterID: fmt.Sprintf("remove-%d", i), Decision: models.DecisionRemove})
	}
	for i := 0; i < keep; i++ {
		r.PutVote(models.Vote{VoterID: fmt.Sprintf("keep-%d", i), Decision: models.DecisionKeep})
	}
	return r
}

func TestEvaluateVoteThresholds(t *testing.T) {
	th := DefaultThresholds()
	th.MinVotesRequired = 5
	th.RemovalThreshold = 0.6
	now := created.Add(time.Hour)

	tests := []struct {
		name   string
		remove int
		keep   int
		want   models.ReportStatus
	}{
		{"exactly sixty percent remove", 3, 2, models.ReportResolvedRemoved},
		{"exactly sixty percent keep", 2, 3, models.ReportResolvedKept},
		{"even split", 3, 3, models.ReportPending},
		{"unanimous remove", 5, 0, models.ReportResolvedRemoved},
		{"unanimous keep", 0, 5, models.ReportResolvedKept},
		{"below minimum all remove", 4, 0, models.ReportPending},
		{"below minimum all keep", 0, 4, models.ReportPending},
		{"no votes", 0, 0, models.ReportPending},
		{"large split under threshold", 11, 9, models.ReportPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Evaluate(reportWithVotes(tt.remove, tt.keep), th, now)
			assert.Equal(t, tt.want, out.Status)
			if out.Resolved() {
				assert.Equal(t, models.CauseVoteThreshold, out.Cause)
			} else {
				assert.Equal(t, models.CauseNone, out.Cause)
			}
		})
	}
}

func TestEvaluateRemoveOnlyPolicyNeverKeepsByVote(t *testing.T) {
	th := DefaultThresholds()
	th.Policy = PolicyRemoveOnly
	now := created.Add(time.Hour)

	assert.Equal(t, models.ReportPending, Evaluate(reportWithVotes(0, 5), th, now).Status)
	assert.Equal(t, models.ReportResolvedRemoved, Evaluate(reportWithVotes(3, 2), th, now).Status)
}

func TestEvaluateAIPreemptsVotes(t *testing.T) {
	assert := assert.New(t)
	th := DefaultThresholds()
	th.AIConfidenceThreshold = 0.9
	now := created.Add(time.Hour)

	r := reportWithVotes(0, 5)
	high := 0.95
	r.AIConfidence = &high
	out := Evaluate(r, th, now)
	assert.Equal(models.ReportAutoRemoved, out.Status)
	assert.Equal(models.CauseAIThreshold, out.Cause)

	r = reportWithVotes(0, 0)
	r.AIConfidence = &high
	assert.Equal(models.ReportAutoRemoved, Evaluate(r, th, now).Status)

	low := 0.5
	r = reportWithVotes(0, 5)
	r.AIConfidence = &low
	assert.Equal(models.ReportResolvedKept, Evaluate(r, th, now).Status)

	atThreshold := 0.9
	r = reportWithVotes(0, 0)
	r.AIConfidence = &atThreshold
	assert.Equal(models.ReportAutoRemoved, Evaluate(r, th, now).Status)
}

func TestEvaluateVotingPeriodExpiry(t *testing.T) {
	assert := assert.New(t)
	th := DefaultThresholds()

	r := reportWithVotes(3, 3)
	assert.Equal(models.ReportPending, Evaluate(r, th, created.Add(th.VotingPeriod-time.Second)).Status)

	out := Evaluate(r, th, created.Add(th.VotingPeriod))
	assert.Equal(models.ReportRejected, out.Status)
	assert.Equal(models.CauseVotingExpired, out.Cause)

	// a threshold reached on the last vote wins over expiry
	assert.Equal(models.ReportResolvedRemoved, Evaluate(reportWithVotes(5, 0), th, created.Add(2*th.VotingPeriod)).Status)
}

func TestEvaluateTerminalReportIsStable(t *testing.T) {
	r := reportWithVotes(0, 5)
	r.Status = models.ReportResolvedRemoved
	r.ResolutionCause = models.CauseVoteThreshold

	out := Evaluate(r, DefaultThresholds(), created.Add(time.Hour))
	assert.Equal(t, models.ReportResolvedRemoved, out.Status)
	assert.Equal(t, models.CauseVoteThreshold, out.Cause)
}

func TestContentTarget(t *testing.T) {
	tests := []struct {
		name         string
		status       models.ReportStatus
		current      models.ContentStatus
		otherPending bool
		want         models.ContentStatus
	}{
		{"auto removed", models.ReportAutoRemoved, models.ContentUnderReview, false, models.ContentRemoved},
		{"vote removed", models.ReportResolvedRemoved, models.ContentUnderReview, false, models.ContentRemoved},
		{"kept clears review", models.ReportResolvedKept, models.ContentUnderReview, false, models.ContentActive},
		{"rejected reverts", models.ReportRejected, models.ContentUnderReview, false, models.ContentActive},
		{"kept with other pending reports", models.ReportResolvedKept, models.ContentUnderReview, true, models.ContentUnderReview},
		{"kept never restores removed content", models.ReportResolvedKept, models.ContentRemoved, false, models.ContentRemoved},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, contentTarget(tt.status, tt.current, tt.otherPending))
		})
	}
}

func TestThresholdsValidate(t *testing.T) {
	assert := assert.New(t)
	assert.NoError(DefaultThresholds().Validate())

	bad := []func(*Thresholds){
		func(t *Thresholds) { t.MinVotesRequired = 0 },
		func(t *Thresholds) { t.RemovalThreshold = 0 },
		func(t *Thresholds) { t.RemovalThreshold = 1.2 },
		func(t *Thresholds) { t.AIConfidenceThreshold = -0.1 },
		func(t *Thresholds) { t.VotingPeriod = 0 },
		func(t *Thresholds) { t.Policy = "majority" },
	}
	for i, mutate := range bad {
		th := DefaultThresholds()
		mutate(&th)
		assert.ErrorIs(th.Validate(), ErrValidation, "case %d", i)
	}
}

func TestTally(t *testing.T) {
	assert := assert.New(t)
	th := DefaultThresholds()
	r := reportWithVotes(2, 1)

	vs := Tally(r, "remove-1", th, created.Add(time.Hour))
	assert.Equal(3, vs.Total)
	assert.Equal(2, vs.RemoveCount)
	assert.Equal(1, vs.KeepCount)
	if assert.NotNil(vs.UserVote) {
		assert.Equal(models.DecisionRemove, *vs.UserVote)
	}
	assert.Equal(th.VotingPeriod-time.Hour, vs.TimeRemaining)

	vs = Tally(r, "someone-else", th, created.Add(2*th.VotingPeriod))
	assert.Nil(vs.UserVote)
	assert.Zero(vs.TimeRemaining)

	r.Status = models.ReportResolvedRemoved
	assert.Zero(Tally(r, "", th, created).TimeRemaining)
}
