package main

import (
	"context"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/models"
	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/moderation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDecisions(t *testing.T) {
	got, err := parseDecisions([]string{"remove,keep", " Remove ", ""})
	require.NoError(t, err)
	assert.Equal(t, []models.VoteDecision{models.DecisionRemove, models.DecisionKeep, models.DecisionRemove}, got)

	_, err = parseDecisions([]string{"remove,maybe"})
	assert.Error(t, err)
}

func TestSimulate(t *testing.T) {
	r, k := models.DecisionRemove, models.DecisionKeep
	tests := []struct {
		name      string
		policy    moderation.Policy
		votes     []models.VoteDecision
		expire    bool
		text      string
		status    models.ReportStatus
		content   models.ContentStatus
		stepError bool
	}{
		{name: "majority remove", policy: moderation.PolicySymmetric, votes: []models.VoteDecision{r, k, r, k, r}, status: models.ReportResolvedRemoved, content: models.ContentRemoved},
		{name: "majority keep", policy: moderation.PolicySymmetric, votes: []models.VoteDecision{k, r, k, r, k}, status: models.ReportResolvedKept, content: models.ContentActive},
		{name: "remove only waits", policy: moderation.PolicyRemoveOnly, votes: []models.VoteDecision{k, k, k, k, k}, status: models.ReportPending, content: models.ContentUnderReview},
		{name: "expiry rejects", policy: moderation.PolicySymmetric, votes: []models.VoteDecision{r, k}, expire: true, status: models.ReportRejected, content: models.ContentActive},
		{name: "vote after resolution", policy: moderation.PolicySymmetric, votes: []models.VoteDecision{r, r, r, r, r, k}, status: models.ReportResolvedRemoved, content: models.ContentRemoved, stepError: true},
		{name: "content check removes", policy: moderation.PolicySymmetric, text: "how to build a bomb", status: models.ReportAutoRemoved, content: models.ContentRemoved},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := simulation{
				Thresholds: moderation.Thresholds{
					MinVotesRequired:      5,
					RemovalThreshold:      0.6,
					AIConfidenceThreshold: 0.8,
					VotingPeriod:          time.Hour,
					Policy:                tt.policy,
				},
				Text:   tt.text,
				Votes:  tt.votes,
				Expire: tt.expire,
			}
			res, err := sim.run(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.status, res.Report.Status)
			assert.Equal(t, tt.content, res.Content)
			require.Len(t, res.Steps, len(tt.votes))
			if tt.stepError {
				assert.NotEmpty(t, res.Steps[len(res.Steps)-1].Error)
			}
		})
	}
}

func TestSimulateRejectsBadThresholds(t *testing.T) {
	_, err := simulation{Thresholds: moderation.Thresholds{Policy: moderation.PolicySymmetric}}.run(context.Background())
	assert.ErrorIs(t, err, moderation.ErrValidation)
}
