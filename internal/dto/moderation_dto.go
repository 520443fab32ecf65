package dto

import (
	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/models"
	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/moderation"
	"github.com/google/uuid"
)

type SubmitReportRequest struct {
	ContentID   string `json:"content_id"`
	ContentType string `json:"content_type"`
	Reason      string `json:"reason"`
	Description string `json:"description"`
}

type SubmitVoteRequest struct {
	Decision string `json:"decision"`
}

type CheckContentRequest struct {
	Text      string   `json:"text"`
	MediaRefs []string `json:"media_refs"`
}

type AnnotateReportRequest struct {
	Notes string `json:"notes"`
}

type ReportListResponse struct {
	Reports []models.Report `json:"reports"`
	Total   int64           `json:"total"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
}

type VotingStatusResponse struct {
	ReportID        uuid.UUID            `json:"report_id"`
	Status          models.ReportStatus  `json:"status"`
	Total           int                  `json:"total"`
	RemoveCount     int                  `json:"remove_count"`
	KeepCount       int                  `json:"keep_count"`
	UserVote        *models.VoteDecision `json:"user_vote"`
	TimeRemainingMs int64                `json:"time_remaining_ms"`
}

func NewVotingStatusResponse(vs moderation.VotingStatus) VotingStatusResponse {
	return VotingStatusResponse{
		ReportID:        vs.ReportID,
		Status:          vs.Status,
		Total:           vs.Total,
		RemoveCount:     vs.RemoveCount,
		KeepCount:       vs.KeepCount,
		UserVote:        vs.UserVote,
		TimeRemainingMs: Millis(vs.TimeRemaining),
	}
}

type ThresholdsResponse struct {
	MinVotesRequired      int     `json:"min_votes_required"`
	RemovalThreshold      float64 `json:"removal_threshold"`
	AIConfidenceThreshold float64 `json:"ai_confidence_threshold"`
	VotingPeriodMs        int64   `json:"voting_period_ms"`
	Policy                string  `json:"policy"`
	AIModeration          bool    `json:"ai_moderation"`
	CommunityVoting       bool    `json:"community_voting"`
}

func NewThresholdsResponse(t moderation.Thresholds, f moderation.Features) ThresholdsResponse {
	return ThresholdsResponse{
		MinVotesRequired:      t.MinVotesRequired,
		RemovalThreshold:      t.RemovalThreshold,
		AIConfidenceThreshold: t.AIConfidenceThreshold,
		VotingPeriodMs:        Millis(t.VotingPeriod),
		Policy:                string(t.Policy),
		AIModeration:          f.AIModeration,
		CommunityVoting:       f.CommunityVoting,
	}
}

type StatsResponse struct {
	TotalReports          int   `json:"total_reports"`
	PendingReports        int   `json:"pending_reports"`
	ResolvedReports       int   `json:"resolved_reports"`
	ResolvedRemoved       int   `json:"resolved_removed"`
	ResolvedKept          int   `json:"resolved_kept"`
	RejectedReports       int   `json:"rejected_reports"`
	AutoRemovedReports    int   `json:"auto_removed_reports"`
	AIDetections          int   `json:"ai_detections"`
	CommunityVotes        int   `json:"community_votes"`
	AverageResponseTimeMs int64 `json:"average_response_time_ms"`
}

func NewStatsResponse(s moderation.Stats) StatsResponse {
	return StatsResponse{
		TotalReports:          s.TotalReports,
		PendingReports:        s.PendingReports,
		ResolvedReports:       s.ResolvedReports,
		ResolvedRemoved:       s.ResolvedRemoved,
		ResolvedKept:          s.ResolvedKept,
		RejectedReports:       s.RejectedReports,
		AutoRemovedReports:    s.AutoRemovedReports,
		AIDetections:          s.AIDetections,
		CommunityVotes:        s.CommunityVotes,
		AverageResponseTimeMs: Millis(s.AverageResponseTime),
	}
}

type CheckContentResponse struct {
	Confidence float64           `json:"confidence"`
	Flags      []models.AIReason `json:"flags"`
}

type ExpireResponse struct {
	Resolved int `json:"resolved"`
}
