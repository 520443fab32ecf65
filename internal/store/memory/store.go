// Package memory provides in-process report and content stores. A Store is
// owned by whoever constructs it; there is no shared package state.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/models"
	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/moderation"
	"github.com/google/uuid"
)

type Store struct {
	mu       sync.RWMutex
	reports  map[uuid.UUID]*models.Report
	contents map[string]*models.Content
}

func NewStore() *Store {
	return &Store{
		reports:  make(map[uuid.UUID]*models.Report),
		contents: make(map[string]*models.Content),
	}
}

func (s *Store) PutContent(c models.Content) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.Status == "" {
		c.Status = models.ContentActive
	}
	s.contents[c.ID] = cloneContent(&c)
}

func (s *Store) GetContent(_ context.Context, id string) (*models.Content, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contents[id]
	if !ok {
		return nil, moderation.ErrContentNotFound
	}
	return cloneContent(c), nil
}

func (s *Store) SetContentStatus(_ context.Context, id string, status models.ContentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contents[id]
	if !ok {
		return moderation.ErrContentNotFound
	}
	c.Status = status
	return nil
}

func (s *Store) CreateReport(_ context.Context, r *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[r.ID] = r.Clone()
	return nil
}

func (s *Store) GetReport(_ context.Context, id uuid.UUID) (*models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[id]
	if !ok {
		return nil, moderation.ErrReportNotFound
	}
	return r.Clone(), nil
}

func (s *Store) SaveReport(_ context.Context, r *models.Report, expect models.ReportStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.reports[r.ID]
	if !ok {
		return moderation.ErrReportNotFound
	}
	if stored.Status != expect {
		return moderation.ErrAlreadyResolved
	}
	notes := stored.ModeratorNotes
	next := r.Clone()
	next.ModeratorNotes = notes
	s.reports[r.ID] = next
	return nil
}

func (s *Store) ListReports(_ context.Context, f moderation.ReportFilter) ([]models.Report, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Report
	for _, r := range s.reports {
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.ContentID != "" && r.ContentID != f.ContentID {
			continue
		}
		if f.ContentType != "" && r.ContentType != f.ContentType {
			continue
		}
		if f.ReporterID != "" && r.ReporterID != f.ReporterID {
			continue
		}
		if f.SphereID != "" {
			c, ok := s.contents[r.ContentID]
			if !ok || c.SphereID != f.SphereID {
				continue
			}
		}
		out = append(out, *r.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	total := int64(len(out))
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []models.Report{}, total, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, total, nil
}

func (s *Store) AllReports(_ context.Context) ([]models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Report, 0, len(s.reports))
	for _, r := range s.reports {
		out = append(out, *r.Clone())
	}
	return out, nil
}

func (s *Store) PendingCreatedBefore(_ context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var pending []*models.Report
	for _, r := range s.reports {
		if r.Status == models.ReportPending && !r.CreatedAt.After(cutoff) {
			pending = append(pending, r)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].CreatedAt.Before(pending[j].CreatedAt) })
	ids := make([]uuid.UUID, len(pending))
	for i, r := range pending {
		ids[i] = r.ID
	}
	return ids, nil
}

func (s *Store) CountPendingForContent(_ context.Context, contentID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, r := range s.reports {
		if r.ContentID == contentID && r.Status == models.ReportPending {
			n++
		}
	}
	return n, nil
}

func (s *Store) AnnotateReport(_ context.Context, id uuid.UUID, notes string) (*models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok {
		return nil, moderation.ErrReportNotFound
	}
	r.ModeratorNotes = notes
	return r.Clone(), nil
}

func cloneContent(c *models.Content) *models.Content {
	out := *c
	if c.MediaRefs != nil {
		out.MediaRefs = append(out.MediaRefs[:0:0], c.MediaRefs...)
	}
	return &out
}
