package moderation

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/models"
)

// Stats aggregates the current report collection. It is always recomputed
// from the reports, never maintained incrementally.
type Stats struct {
	TotalReports        int           `json:"total_reports"`
	PendingReports      int           `json:"pending_reports"`
	ResolvedReports     int           `json:"resolved_reports"`
	ResolvedRemoved     int           `json:"resolved_removed"`
	ResolvedKept        int           `json:"resolved_kept"`
	RejectedReports     int           `json:"rejected_reports"`
	AutoRemovedReports  int           `json:"auto_removed_reports"`
	AIDetections        int           `json:"ai_detections"`
	CommunityVotes      int           `json:"community_votes"`
	AverageResponseTime time.Duration `json:"average_response_time"`
}

func ComputeStats(reports []models.Report) Stats {
	var (
		s        Stats
		terminal int
		elapsed  time.Duration
	)
	for i := range reports {
		r := &reports[i]
		s.TotalReports++
		s.CommunityVotes += len(r.Votes)
		if len(r.AIFlags) > 0 {
			s.AIDetections++
		}

		switch r.Status {
		case models.ReportPending:
			s.PendingReports++
		case models.ReportResolvedRemoved:
			s.ResolvedReports++
			s.ResolvedRemoved++
		case models.ReportResolvedKept:
			s.ResolvedReports++
			s.ResolvedKept++
		case models.ReportRejected:
			s.RejectedReports++
		case models.ReportAutoRemoved:
			s.AutoRemovedReports++
		}

		if r.Status.Terminal() {
			terminal++
			elapsed += r.UpdatedAt.Sub(r.CreatedAt)
		}
	}
	if terminal > 0 {
		s.AverageResponseTime = elapsed / time.Duration(terminal)
	}
	return s
}
