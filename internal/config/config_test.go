package config

import (
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/moderation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	assert := assert.New(t)
	cfg := Load()

	th, err := cfg.Thresholds()
	require.NoError(t, err)
	assert.Equal(moderation.DefaultThresholds(), th)
	assert.Equal(moderation.DefaultFeatures(), cfg.Features())
	assert.Equal(30, cfg.LogRetentionDays)
	assert.Equal(60*time.Second, cfg.AITimeout)
}

func TestLoadOverrides(t *testing.T) {
	assert := assert.New(t)
	t.Setenv("MIN_VOTES_REQUIRED", "9")
	t.Setenv("REMOVAL_THRESHOLD", "0.75")
	t.Setenv("VOTING_PERIOD", "24h")
	t.Setenv("RESOLUTION_POLICY", "remove_only")
	t.Setenv("ENABLE_COMMUNITY_VOTING", "false")
	t.Setenv("FORBID_SELF_VOTE", "true")
	t.Setenv("ADMIN_IDS", " 0xabc, ,acct-7 ")
	t.Setenv("DATABASE_URL", "sqlite://moderation.db")

	cfg := Load()
	th, err := cfg.Thresholds()
	require.NoError(t, err)
	assert.Equal(9, th.MinVotesRequired)
	assert.InDelta(0.75, th.RemovalThreshold, 1e-9)
	assert.Equal(24*time.Hour, th.VotingPeriod)
	assert.Equal(moderation.PolicyRemoveOnly, th.Policy)

	f := cfg.Features()
	assert.False(f.CommunityVoting)
	assert.True(f.ForbidSelfVote)

	assert.Equal([]string{"0xabc", "acct-7"}, cfg.AdminIDList())

	path, ok := cfg.SQLitePath()
	assert.True(ok)
	assert.Equal("moderation.db", path)
}

func TestMalformedValuesFallBack(t *testing.T) {
	t.Setenv("MIN_VOTES_REQUIRED", "many")
	t.Setenv("VOTING_PERIOD", "three days")
	t.Setenv("ENABLE_AI_MODERATION", "sometimes")

	cfg := Load()
	assert.Equal(t, 5, cfg.MinVotesRequired)
	assert.Equal(t, 72*time.Hour, cfg.VotingPeriod)
	assert.True(t, cfg.EnableAIModeration)
}

func TestInvalidThresholdsRejected(t *testing.T) {
	t.Setenv("REMOVAL_THRESHOLD", "1.5")
	_, err := Load().Thresholds()
	assert.ErrorIs(t, err, moderation.ErrValidation)
}
