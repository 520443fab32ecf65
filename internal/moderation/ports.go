package moderation

import (
	"context"
	"time"

	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/models"
	"github.com/google/uuid"
)

// ReportStore persists reports and their votes.
type ReportStore interface {
	CreateReport(ctx context.Context, r *models.Report) error
	// GetReport returns the report with its votes, or ErrReportNotFound.
	GetReport(ctx context.Context, id uuid.UUID) (*models.Report, error)
	// SaveReport writes status, AI fields, timestamps and votes in one
	// transaction. It fails with ErrAlreadyResolved when the stored status
	// is no longer expect.
	SaveReport(ctx context.Context, r *models.Report, expect models.ReportStatus) error
	ListReports(ctx context.Context, filter ReportFilter) ([]models.Report, int64, error)
	AllReports(ctx context.Context) ([]models.Report, error)
	PendingCreatedBefore(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error)
	CountPendingForContent(ctx context.Context, contentID string) (int64, error)
	// AnnotateReport sets moderator notes without touching resolution state.
	AnnotateReport(ctx context.Context, id uuid.UUID, notes string) (*models.Report, error)
}

// ContentStore holds the reported posts, comments and spheres.
type ContentStore interface {
	// GetContent returns the record or ErrContentNotFound.
	GetContent(ctx context.Context, id string) (*models.Content, error)
	SetContentStatus(ctx context.Context, id string, status models.ContentStatus) error
}

// CheckResult is the automated content check's verdict.
type CheckResult struct {
	Confidence float64           `json:"confidence"`
	Flags      []models.AIReason `json:"flags"`
}

// Classifier scores content. Any error is treated as "no AI signal".
type Classifier interface {
	CheckContent(ctx context.Context, text string, mediaRefs []string) (CheckResult, error)
}

// IdentityProvider reports who is acting in ctx.
type IdentityProvider interface {
	CurrentIdentity(ctx context.Context) (string, bool)
}

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

type ReportFilter struct {
	Status      models.ReportStatus
	ContentID   string
	ContentType models.ContentType
	ReporterID  string
	SphereID    string
	Limit       int
	Offset      int
}
