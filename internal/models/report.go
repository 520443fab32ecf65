package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ReportStatus string

const (
	ReportPending         ReportStatus = "pending"
	ReportUnderReview     ReportStatus = "under_review"
	ReportResolvedRemoved ReportStatus = "resolved_removed"
	ReportResolvedKept    ReportStatus = "resolved_kept"
	ReportRejected        ReportStatus = "rejected"
	ReportAutoRemoved     ReportStatus = "auto_removed"
)

func (s ReportStatus) Valid() bool {
	switch s {
	case ReportPending, ReportUnderReview, ReportResolvedRemoved,
		ReportResolvedKept, ReportRejected, ReportAutoRemoved:
		return true
	}
	return false
}

// Terminal reports are frozen: votes and the AI score no longer change.
// under_review is listed for filtering only; it is never assigned to a report.
func (s ReportStatus) Terminal() bool {
	return s.Valid() && s != ReportPending
}

type ResolutionCause string

const (
	CauseNone          ResolutionCause = ""
	CauseVoteThreshold ResolutionCause = "vote_threshold"
	CauseAIThreshold   ResolutionCause = "ai_threshold"
	CauseVotingExpired ResolutionCause = "voting_expired"
)

type ReportReason string

const (
	ReasonSpam                 ReportReason = "spam"
	ReasonHarassment           ReportReason = "harassment"
	ReasonInappropriateContent ReportReason = "inappropriate_content"
	ReasonHateSpeech           ReportReason = "hate_speech"
	ReasonMisinformation       ReportReason = "misinformation"
	ReasonCopyright            ReportReason = "copyright"
	ReasonViolence             ReportReason = "violence"
	ReasonOther                ReportReason = "other"
)

var ReportReasons = []ReportReason{
	ReasonSpam, ReasonHarassment, ReasonInappropriateContent, ReasonHateSpeech,
	ReasonMisinformation, ReasonCopyright, ReasonViolence, ReasonOther,
}

func (r ReportReason) Valid() bool {
	for _, known := range ReportReasons {
		if r == known {
			return true
		}
	}
	return false
}

// AIReason is a category the automated content check may flag.
type AIReason string

const (
	AIChildNudity          AIReason = "child_nudity"
	AIPedophilia           AIReason = "pedophilia"
	AIChildViolence        AIReason = "child_violence"
	AIViolenceAgainstWomen AIReason = "violence_against_women"
	AIRape                 AIReason = "rape"
	AIExtremeViolence      AIReason = "extreme_violence"
	AIHateSpeech           AIReason = "hate_speech"
	AITerrorism            AIReason = "terrorism"
)

func (r AIReason) Valid() bool {
	switch r {
	case AIChildNudity, AIPedophilia, AIChildViolence, AIViolenceAgainstWomen,
		AIRape, AIExtremeViolence, AIHateSpeech, AITerrorism:
		return true
	}
	return false
}

type VoteDecision string

const (
	DecisionRemove VoteDecision = "remove"
	DecisionKeep   VoteDecision = "keep"
)

func (d VoteDecision) Valid() bool {
	return d == DecisionRemove || d == DecisionKeep
}

// Report is a user-filed complaint against a content item. The content is
// referenced by id and never embedded.
type Report struct {
	ID              uuid.UUID                     `gorm:"type:uuid;primaryKey" json:"id"`
	ContentID       string                        `gorm:"not null;size:255;index" json:"content_id"`
	ContentType     ContentType                   `gorm:"not null;size:20" json:"content_type"`
	ReporterID      string                        `gorm:"not null;size:255;index" json:"reporter_id"`
	Reason          ReportReason                  `gorm:"not null;size:50" json:"reason"`
	Description     string                        `gorm:"size:1000" json:"description"`
	Status          ReportStatus                  `gorm:"not null;default:'pending';size:30;index" json:"status"`
	ResolutionCause ResolutionCause               `gorm:"size:30" json:"resolution_cause,omitempty"`
	AIConfidence    *float64                      `json:"ai_confidence,omitempty"`
	AIFlags         datatypes.JSONSlice[AIReason] `json:"ai_flags,omitempty"`
	AutoModerated   bool                          `gorm:"not null;default:false" json:"auto_moderated"`
	ModeratorNotes  string                        `gorm:"size:1000" json:"moderator_notes,omitempty"`
	CreatedAt       time.Time                     `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time                     `json:"updated_at"`
	ResolvedAt      *time.Time                    `json:"resolved_at,omitempty"`
	Votes           []Vote                        `gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE" json:"votes"`
}

// Vote is unique per (report, voter); a later vote replaces the earlier one.
type Vote struct {
	ReportID  uuid.UUID    `gorm:"type:uuid;primaryKey" json:"report_id"`
	VoterID   string       `gorm:"size:255;primaryKey" json:"voter_id"`
	Decision  VoteDecision `gorm:"not null;size:10" json:"decision"`
	Timestamp time.Time    `gorm:"not null" json:"timestamp"`
}

// Clone returns a deep copy so callers can mutate a working copy and
// discard it if the write fails.
func (r *Report) Clone() *Report {
	out := *r
	if r.AIConfidence != nil {
		c := *r.AIConfidence
		out.AIConfidence = &c
	}
	if r.ResolvedAt != nil {
		t := *r.ResolvedAt
		out.ResolvedAt = &t
	}
	if r.AIFlags != nil {
		out.AIFlags = append(datatypes.JSONSlice[AIReason](nil), r.AIFlags...)
	}
	if r.Votes != nil {
		out.Votes = append([]Vote(nil), r.Votes...)
	}
	return &out
}

// VoteBy returns the live vote of the given voter, if any.
func (r *Report) VoteBy(voterID string) (Vote, bool) {
	for _, v := range r.Votes {
		if v.VoterID == voterID {
			return v, true
		}
	}
	return Vote{}, false
}

// PutVote inserts or replaces the voter's vote.
func (r *Report) PutVote(v Vote) {
	for i := range r.Votes {
		if r.Votes[i].VoterID == v.VoterID {
			r.Votes[i] = v
			return
		}
	}
	r.Votes = append(r.Votes, v)
}
