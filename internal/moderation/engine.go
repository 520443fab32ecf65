// Package moderation implements the report resolution engine: report
// submission, community voting, automated content checks and the rules that
// turn those signals into a final report status and a content status.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/models"
	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
)

const (
	MaxDescriptionLength = 1000
	MaxNotesLength       = 1000
)

// Features toggles optional behavior of the engine.
type Features struct {
	AIModeration     bool
	CommunityVoting  bool
	ForbidSelfReport bool
	// ForbidSelfVote bars the reporter and the content author from voting.
	ForbidSelfVote bool
}

func DefaultFeatures() Features {
	return Features{
		AIModeration:     true,
		CommunityVoting:  true,
		ForbidSelfReport: true,
	}
}

type Options struct {
	Reports      ReportStore
	Contents     ContentStore
	Classifier   Classifier
	Identity     IdentityProvider
	Thresholds   Thresholds
	Features     Features
	CheckTimeout time.Duration
	Clock        Clock
	Logger       *slog.Logger
}

type Engine struct {
	reports      ReportStore
	contents     ContentStore
	classifier   Classifier
	identity     IdentityProvider
	thresholds   Thresholds
	features     Features
	checkTimeout time.Duration
	clock        Clock
	logger       *slog.Logger

	// Lock order is report then content. SubmitReport takes only the
	// content lock.
	locks        *keyedLocks[uuid.UUID]
	contentLocks *keyedLocks[string]
	inflight sync.WaitGroup
}

func NewEngine(opts Options) (*Engine, error) {
	if opts.Reports == nil || opts.Contents == nil {
		return nil, errors.New("moderation engine requires a report store and a content store")
	}
	if err := opts.Thresholds.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		reports:      opts.Reports,
		contents:     opts.Contents,
		classifier:   opts.Classifier,
		identity:     opts.Identity,
		thresholds:   opts.Thresholds,
		features:     opts.Features,
		checkTimeout: opts.CheckTimeout,
		clock:        opts.Clock,
		logger:       opts.Logger,
		locks:        newKeyedLocks[uuid.UUID](),
		contentLocks: newKeyedLocks[string](),
	}
	if e.checkTimeout <= 0 {
		e.checkTimeout = 60 * time.Second
	}
	if e.clock == nil {
		e.clock = systemClock{}
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e, nil
}

func (e *Engine) Thresholds() Thresholds { return e.thresholds }

func (e *Engine) Features() Features { return e.features }

// Wait blocks until every content check launched so far has finished.
func (e *Engine) Wait() { e.inflight.Wait() }

func (e *Engine) now() time.Time { return e.clock.Now().UTC() }

type SubmitReportInput struct {
	ContentID   string
	ContentType models.ContentType
	ReporterID  string
	Reason      models.ReportReason
	Description string
}

// SubmitReport files a pending report against a content item, marks the
// content under review and starts one asynchronous content check.
func (e *Engine) SubmitReport(ctx context.Context, in SubmitReportInput) (*models.Report, error) {
	in.ContentID = strings.TrimSpace(in.ContentID)
	in.Description = strings.TrimSpace(in.Description)
	if err := e.checkActor(ctx, in.ReporterID); err != nil {
		return nil, err
	}
	if in.ContentID == "" {
		return nil, validationError("content_id is required")
	}
	if !in.ContentType.Valid() {
		return nil, validationError("invalid content_type %q: must be post, comment, or sphere", in.ContentType)
	}
	if !in.Reason.Valid() {
		return nil, validationError("invalid reason %q", in.Reason)
	}
	if utf8.RuneCountInString(in.Description) > MaxDescriptionLength {
		return nil, validationError("description exceeds %d characters", MaxDescriptionLength)
	}
	if in.Reason == models.ReasonOther && in.Description == "" {
		return nil, validationError("description is required when reason is other")
	}

	// held across the status read, the under_review write and the insert
	unlockContent := e.contentLocks.lock(in.ContentID)
	defer unlockContent()

	content, err := e.contents.GetContent(ctx, in.ContentID)
	if err != nil {
		return nil, err
	}
	if content.Type != in.ContentType {
		return nil, validationError("content %s is a %s, not a %s", content.ID, content.Type, in.ContentType)
	}
	if e.features.ForbidSelfReport && content.AuthorID == in.ReporterID {
		return nil, ErrSelfReport
	}

	now := e.now()
	report := &models.Report{
		ID:          uuid.New(),
		ContentID:   content.ID,
		ContentType: content.Type,
		ReporterID:  in.ReporterID,
		Reason:      in.Reason,
		Description: in.Description,
		Status:      models.ReportPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if content.Status == models.ContentActive {
		if err := e.contents.SetContentStatus(ctx, content.ID, models.ContentUnderReview); err != nil {
			return nil, fmt.Errorf("failed to mark content under review: %w", err)
		}
	}
	if err := e.reports.CreateReport(ctx, report); err != nil {
		if content.Status == models.ContentActive {
			e.restoreContent(content.ID, content.Status)
		}
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	reportsSubmitted.WithLabelValues(string(report.Reason)).Inc()
	e.logger.Info("report submitted",
		"report_id", report.ID.String(),
		"content_id", report.ContentID,
		"actor", report.ReporterID,
		"reason", report.Reason,
	)

	if e.features.AIModeration && e.classifier != nil {
		e.launchCheck(report.ID, content.Text, content.MediaRefs)
	}
	return report.Clone(), nil
}

// SubmitVote records the voter's decision, replacing any earlier vote from
// the same voter, and resolves the report when a threshold is met.
func (e *Engine) SubmitVote(ctx context.Context, reportID uuid.UUID, voterID string, decision models.VoteDecision) (*models.Report, error) {
	if err := e.checkActor(ctx, voterID); err != nil {
		return nil, err
	}
	if !decision.Valid() {
		return nil, validationError("invalid decision %q: must be remove or keep", decision)
	}
	if !e.features.CommunityVoting {
		return nil, ErrVotingDisabled
	}

	unlock := e.locks.lock(reportID)
	defer unlock()

	current, err := e.reports.GetReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if current.Status != models.ReportPending {
		return nil, ErrAlreadyResolved
	}
	if e.features.ForbidSelfVote {
		if err := e.checkSelfVote(ctx, current, voterID); err != nil {
			return nil, err
		}
	}

	working := current.Clone()
	working.PutVote(models.Vote{
		ReportID:  working.ID,
		VoterID:   voterID,
		Decision:  decision,
		Timestamp: e.now(),
	})

	saved, err := e.commit(ctx, working)
	if err != nil {
		return nil, err
	}
	votesSubmitted.WithLabelValues(string(decision)).Inc()
	return saved, nil
}

// ApplyContentCheck ingests an automated check result. The AI score is set
// at most once; results for frozen reports are discarded without error.
func (e *Engine) ApplyContentCheck(ctx context.Context, reportID uuid.UUID, result CheckResult) (*models.Report, error) {
	if err := validateCheck(result); err != nil {
		return nil, err
	}

	unlock := e.locks.lock(reportID)
	defer unlock()

	current, err := e.reports.GetReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if current.Status != models.ReportPending || current.AIConfidence != nil {
		lateCheckResults.Inc()
		e.logger.Debug("discarding content check result",
			"report_id", reportID.String(),
			"status", current.Status,
		)
		return current, nil
	}

	working := current.Clone()
	confidence := result.Confidence
	working.AIConfidence = &confidence
	working.AIFlags = append(working.AIFlags[:0], result.Flags...)

	return e.commit(ctx, working)
}

// CheckContent runs the classifier directly, for callers screening content
// before it is published.
func (e *Engine) CheckContent(ctx context.Context, text string, mediaRefs []string) (CheckResult, error) {
	if e.classifier == nil || !e.features.AIModeration {
		return CheckResult{}, ErrClassifierUnavailable
	}
	ctx, cancel := context.WithTimeout(ctx, e.checkTimeout)
	defer cancel()
	return e.classify(ctx, text, mediaRefs)
}

// ExpireStale re-evaluates every pending report whose voting period has
// elapsed. Reports that reached no threshold become rejected.
func (e *Engine) ExpireStale(ctx context.Context) (int, error) {
	cutoff := e.now().Add(-e.thresholds.VotingPeriod)
	ids, err := e.reports.PendingCreatedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to list expired reports: %w", err)
	}

	var (
		resolved int
		errs     []error
	)
	for _, id := range ids {
		ok, err := e.expireOne(ctx, id)
		if err != nil {
			errs = append(errs, fmt.Errorf("report %s: %w", id, err))
			continue
		}
		if ok {
			resolved++
		}
	}
	return resolved, errors.Join(errs...)
}

func (e *Engine) expireOne(ctx context.Context, id uuid.UUID) (bool, error) {
	unlock := e.locks.lock(id)
	defer unlock()

	current, err := e.reports.GetReport(ctx, id)
	if err != nil {
		return false, err
	}
	if current.Status != models.ReportPending {
		return false, nil
	}
	if !Evaluate(current, e.thresholds, e.now()).Resolved() {
		return false, nil
	}
	if _, err := e.commit(ctx, current.Clone()); err != nil {
		if errors.Is(err, ErrAlreadyResolved) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (e *Engine) GetReport(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	return e.reports.GetReport(ctx, id)
}

func (e *Engine) ListReports(ctx context.Context, filter ReportFilter) ([]models.Report, int64, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, validationError("invalid status %q", filter.Status)
	}
	if filter.ContentType != "" && !filter.ContentType.Valid() {
		return nil, 0, validationError("invalid content_type %q", filter.ContentType)
	}
	return e.reports.ListReports(ctx, filter)
}

func (e *Engine) GetVotingStatus(ctx context.Context, id uuid.UUID, viewer string) (VotingStatus, error) {
	r, err := e.reports.GetReport(ctx, id)
	if err != nil {
		return VotingStatus{}, err
	}
	return Tally(r, viewer, e.thresholds, e.now()), nil
}

func (e *Engine) GetStats(ctx context.Context) (Stats, error) {
	reports, err := e.reports.AllReports(ctx)
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(reports), nil
}

// AnnotateReport stores moderator notes. Notes are allowed on terminal
// reports and never influence resolution.
func (e *Engine) AnnotateReport(ctx context.Context, id uuid.UUID, notes string) (*models.Report, error) {
	notes = strings.TrimSpace(notes)
	if utf8.RuneCountInString(notes) > MaxNotesLength {
		return nil, validationError("notes exceed %d characters", MaxNotesLength)
	}
	unlock := e.locks.lock(id)
	defer unlock()
	return e.reports.AnnotateReport(ctx, id, notes)
}

// commit evaluates working, applies the content side effect of a
// resolution and persists the report. If the report write fails the content
// status is put back, so either the whole sequence lands or none of it does.
func (e *Engine) commit(ctx context.Context, working *models.Report) (*models.Report, error) {
	now := e.now()
	working.UpdatedAt = now

	outcome := Evaluate(working, e.thresholds, now)
	var restore func()
	if outcome.Resolved() {
		// held across the pending count, the status write and the save
		unlockContent := e.contentLocks.lock(working.ContentID)
		defer unlockContent()

		working.Status = outcome.Status
		working.ResolutionCause = outcome.Cause
		working.AutoModerated = outcome.Cause == models.CauseAIThreshold
		working.ResolvedAt = &now

		var err error
		restore, err = e.applyContentStatus(ctx, working)
		if err != nil {
			return nil, err
		}
	}

	if err := e.reports.SaveReport(ctx, working, models.ReportPending); err != nil {
		if restore != nil {
			restore()
		}
		return nil, err
	}

	if outcome.Resolved() {
		reportsResolved.WithLabelValues(string(outcome.Status), string(outcome.Cause)).Inc()
		e.logger.Info("report resolved",
			"report_id", working.ID.String(),
			"content_id", working.ContentID,
			"status", outcome.Status,
			"cause", outcome.Cause,
			"votes", len(working.Votes),
		)
	}
	return working.Clone(), nil
}

// applyContentStatus moves the content to the status implied by the
// report's resolution and returns a func that undoes the change.
func (e *Engine) applyContentStatus(ctx context.Context, r *models.Report) (func(), error) {
	content, err := e.contents.GetContent(ctx, r.ContentID)
	if errors.Is(err, ErrNotFound) {
		e.logger.Warn("reported content is gone, resolving without side effect",
			"report_id", r.ID.String(),
			"content_id", r.ContentID,
		)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	otherPending := false
	if r.Status == models.ReportResolvedKept || r.Status == models.ReportRejected {
		n, err := e.reports.CountPendingForContent(ctx, r.ContentID)
		if err != nil {
			return nil, err
		}
		// the report being resolved is still pending in the store
		otherPending = n > 1
	}

	target := contentTarget(r.Status, content.Status, otherPending)
	if target == content.Status {
		return nil, nil
	}
	if err := e.contents.SetContentStatus(ctx, content.ID, target); err != nil {
		return nil, fmt.Errorf("failed to set content status: %w", err)
	}
	previous := content.Status
	return func() { e.restoreContent(content.ID, previous) }, nil
}

func (e *Engine) restoreContent(contentID string, status models.ContentStatus) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.contents.SetContentStatus(ctx, contentID, status); err != nil {
		e.logger.Error("failed to restore content status",
			"content_id", contentID,
			"status", status,
			"error", err.Error(),
		)
		sentry.CaptureException(err)
	}
}

func (e *Engine) checkActor(ctx context.Context, actor string) error {
	if strings.TrimSpace(actor) == "" {
		return validationError("actor identity is required")
	}
	if e.identity == nil {
		return nil
	}
	current, ok := e.identity.CurrentIdentity(ctx)
	if ok && current != actor {
		return validationError("actor does not match the authenticated identity")
	}
	return nil
}

func (e *Engine) checkSelfVote(ctx context.Context, r *models.Report, voterID string) error {
	if r.ReporterID == voterID {
		return ErrSelfVote
	}
	content, err := e.contents.GetContent(ctx, r.ContentID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if content.AuthorID == voterID {
		return ErrSelfVote
	}
	return nil
}

// launchCheck runs the classifier in the background. A failure only costs
// the AI signal; voting keeps working either way.
func (e *Engine) launchCheck(reportID uuid.UUID, text string, mediaRefs []string) {
	media := append([]string(nil), mediaRefs...)
	e.inflight.Add(1)
	go func() {
		defer e.inflight.Done()

		ctx, cancel := context.WithTimeout(context.Background(), e.checkTimeout)
		defer cancel()

		result, err := e.classify(ctx, text, media)
		if err != nil {
			e.logger.Warn("content check unavailable, falling back to votes",
				"report_id", reportID.String(),
				"error", err.Error(),
			)
			return
		}

		if _, err := e.ApplyContentCheck(ctx, reportID, result); err != nil {
			e.logger.Error("failed to apply content check",
				"report_id", reportID.String(),
				"action", "apply_content_check",
				"error", err.Error(),
			)
			sentry.CaptureException(err)
		}
	}()
}

func (e *Engine) classify(ctx context.Context, text string, mediaRefs []string) (CheckResult, error) {
	start := time.Now()
	result, err := e.classifier.CheckContent(ctx, text, mediaRefs)
	contentCheckDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		contentChecks.WithLabelValues("error").Inc()
		return CheckResult{}, fmt.Errorf("%w: %v", ErrClassifierUnavailable, err)
	}
	if err := validateCheck(result); err != nil {
		contentChecks.WithLabelValues("invalid").Inc()
		return CheckResult{}, fmt.Errorf("%w: %v", ErrClassifierUnavailable, err)
	}
	contentChecks.WithLabelValues("ok").Inc()
	return result, nil
}

func validateCheck(result CheckResult) error {
	if math.IsNaN(result.Confidence) || result.Confidence < 0 || result.Confidence > 1 {
		return validationError("confidence must be in [0,1], got %v", result.Confidence)
	}
	return nil
}
