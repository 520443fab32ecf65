package moderation

import "time"

// Policy selects how a vote tally resolves a report.
type Policy string

const (
	// PolicySymmetric resolves kept when the keep side reaches the removal
	// threshold, mirroring the remove side.
	PolicySymmetric Policy = "symmetric"
	// PolicyRemoveOnly never resolves kept by vote; reports the community
	// does not remove wait for the voting period to expire.
	PolicyRemoveOnly Policy = "remove_only"
)

type Thresholds struct {
	MinVotesRequired      int           `json:"min_votes_required"`
	RemovalThreshold      float64       `json:"removal_threshold"`
	AIConfidenceThreshold float64       `json:"ai_confidence_threshold"`
	VotingPeriod          time.Duration `json:"voting_period"`
	Policy                Policy        `json:"policy"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		MinVotesRequired:      5,
		RemovalThreshold:      0.6,
		AIConfidenceThreshold: 0.8,
		VotingPeriod:          72 * time.Hour,
		Policy:                PolicySymmetric,
	}
}

func (t Thresholds) Validate() error {
	if t.MinVotesRequired <= 0 {
		return validationError("min votes required must be positive, got %d", t.MinVotesRequired)
	}
	if t.RemovalThreshold <= 0 || t.RemovalThreshold > 1 {
		return validationError("removal threshold must be in (0,1], got %v", t.RemovalThreshold)
	}
	if t.AIConfidenceThreshold <= 0 || t.AIConfidenceThreshold > 1 {
		return validationError("ai confidence threshold must be in (0,1], got %v", t.AIConfidenceThreshold)
	}
	if t.VotingPeriod <= 0 {
		return validationError("voting period must be positive, got %s", t.VotingPeriod)
	}
	switch t.Policy {
	case PolicySymmetric, PolicyRemoveOnly:
	default:
		return validationError("unknown resolution policy %q", t.Policy)
	}
	return nil
}
