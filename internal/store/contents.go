package store

import (
	"context"
	"errors"

	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/models"
	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/moderation"
	"gorm.io/gorm"
)

// ErrContentExists is returned when a content id is already taken. It relies
// on the connection being opened with TranslateError.
var ErrContentExists = errors.New("content already exists")

type Contents struct {
	db *gorm.DB
}

func NewContents(db *gorm.DB) *Contents {
	return &Contents{db: db}
}

func (s *Contents) CreateContent(ctx context.Context, c *models.Content) error {
	if c.Status == "" {
		c.Status = models.ContentActive
	}
	err := s.db.WithContext(ctx).Create(c).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrContentExists
	}
	return err
}

func (s *Contents) GetContent(ctx context.Context, id string) (*models.Content, error) {
	var c models.Content
	err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, moderation.ErrContentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Contents) SetContentStatus(ctx context.Context, id string, status models.ContentStatus) error {
	result := s.db.WithContext(ctx).Model(&models.Content{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return moderation.ErrContentNotFound
	}
	return nil
}

func (s *Contents) ListBySphere(ctx context.Context, sphereID string, limit, offset int) ([]models.Content, int64, error) {
	var contents []models.Content
	var total int64

	if err := s.db.WithContext(ctx).Model(&models.Content{}).Where("sphere_id = ?", sphereID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	err := s.db.WithContext(ctx).
		Where("sphere_id = ?", sphereID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&contents).Error
	if err != nil {
		return nil, 0, err
	}
	return contents, total, nil
}
