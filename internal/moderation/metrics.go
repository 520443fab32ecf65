package moderation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var reportsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "moderation_reports_submitted_total",
	Help: "Number of reports filed, by reason",
}, []string{"reason"})

var votesSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "moderation_votes_submitted_total",
	Help: "Number of community votes accepted, by decision",
}, []string{"decision"})

var reportsResolved = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "moderation_reports_resolved_total",
	Help: "Number of reports reaching a terminal status",
}, []string{"status", "cause"})

var contentChecks = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "moderation_content_checks_total",
	Help: "Automated content checks, by outcome",
}, []string{"outcome"})

var contentCheckDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name: "moderation_content_check_duration_sec",
	Help: "Duration of automated content checks",
})

var lateCheckResults = promauto.NewCounter(prometheus.CounterOpts{
	Name: "moderation_content_check_discarded_total",
	Help: "AI results discarded because the report was already frozen",
})
