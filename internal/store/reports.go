// Package store holds the gorm-backed report and content stores.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/models"
	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/moderation"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type Reports struct {
	db *gorm.DB
}

func NewReports(db *gorm.DB) *Reports {
	return &Reports{db: db}
}

func (s *Reports) CreateReport(ctx context.Context, r *models.Report) error {
	return s.db.WithContext(ctx).Create(r).Error
}

func (s *Reports) GetReport(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	var r models.Report
	err := s.db.WithContext(ctx).
		Preload("Votes", orderedVotes).
		First(&r, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, moderation.ErrReportNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Reports) SaveReport(ctx context.Context, r *models.Report, expect models.ReportStatus) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Report{}).
			Where("id = ? AND status = ?", r.ID, expect).
			Updates(map[string]interface{}{
				"status":           r.Status,
				"resolution_cause": r.ResolutionCause,
				"ai_confidence":    r.AIConfidence,
				"ai_flags":         r.AIFlags,
				"auto_moderated":   r.AutoModerated,
				"updated_at":       r.UpdatedAt,
				"resolved_at":      r.ResolvedAt,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update report: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.Report{}).Where("id = ?", r.ID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return moderation.ErrReportNotFound
			}
			return moderation.ErrAlreadyResolved
		}

		if len(r.Votes) == 0 {
			return nil
		}
		votes := make([]models.Vote, len(r.Votes))
		for i, v := range r.Votes {
			v.ReportID = r.ID
			votes[i] = v
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "report_id"}, {Name: "voter_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"decision", "timestamp"}),
		}).Create(&votes).Error
		if err != nil {
			return fmt.Errorf("failed to upsert votes: %w", err)
		}
		return nil
	})
}

func (s *Reports) ListReports(ctx context.Context, filter moderation.ReportFilter) ([]models.Report, int64, error) {
	var reports []models.Report
	var total int64

	filtered := func() *gorm.DB {
		query := s.db.WithContext(ctx).Model(&models.Report{}).Scopes(matching(filter))
		if filter.SphereID != "" {
			query = query.Scopes(inSphere(s.db, filter.SphereID))
		}
		return query
	}
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	err := filtered().Preload("Votes", orderedVotes).
		Order("created_at DESC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&reports).Error
	if err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

func (s *Reports) AllReports(ctx context.Context) ([]models.Report, error) {
	var reports []models.Report
	if err := s.db.WithContext(ctx).Preload("Votes").Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

func (s *Reports) PendingCreatedBefore(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).Model(&models.Report{}).
		Where("status = ? AND created_at <= ?", models.ReportPending, cutoff).
		Order("created_at ASC").
		Pluck("id", &ids).Error
	return ids, err
}

func (s *Reports) CountPendingForContent(ctx context.Context, contentID string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Report{}).
		Where("content_id = ? AND status = ?", contentID, models.ReportPending).
		Count(&n).Error
	return n, err
}

func (s *Reports) AnnotateReport(ctx context.Context, id uuid.UUID, notes string) (*models.Report, error) {
	// UpdateColumn leaves updated_at alone; notes are not a resolution event.
	result := s.db.WithContext(ctx).Model(&models.Report{}).
		Where("id = ?", id).
		UpdateColumn("moderator_notes", notes)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, moderation.ErrReportNotFound
	}
	return s.GetReport(ctx, id)
}

func orderedVotes(db *gorm.DB) *gorm.DB {
	return db.Order("timestamp ASC")
}

func matching(f moderation.ReportFilter) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.Status != "" {
			db = db.Where("status = ?", f.Status)
		}
		if f.ContentID != "" {
			db = db.Where("content_id = ?", f.ContentID)
		}
		if f.ContentType != "" {
			db = db.Where("content_type = ?", f.ContentType)
		}
		if f.ReporterID != "" {
			db = db.Where("reporter_id = ?", f.ReporterID)
		}
		return db
	}
}

// inSphere filters reports to content posted in a sphere. Reports only
// reference content by id, so the sphere is resolved through the contents
// table.
func inSphere(root *gorm.DB, sphereID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		sub := root.Model(&models.Content{}).Select("id").Where("sphere_id = ?", sphereID)
		return db.Where("content_id IN (?)", sub)
	}
}
