package models

import (
	"time"

	"gorm.io/datatypes"
)

type ContentType string

const (
	ContentPost    ContentType = "post"
	ContentComment ContentType = "comment"
	ContentSphere  ContentType = "sphere"
)

func (t ContentType) Valid() bool {
	return t == ContentPost || t == ContentComment || t == ContentSphere
}

type ContentStatus string

const (
	ContentActive      ContentStatus = "active"
	ContentUnderReview ContentStatus = "under_review"
	ContentRemoved     ContentStatus = "removed"
)

// Content is a post, comment or sphere held by the content store.
type Content struct {
	ID        string                      `gorm:"primaryKey;size:255" json:"id"`
	Type      ContentType                 `gorm:"not null;size:20" json:"type"`
	AuthorID  string                      `gorm:"not null;size:255;index" json:"author_id"`
	SphereID  string                      `gorm:"size:255;index" json:"sphere_id,omitempty"`
	Text      string                      `gorm:"type:text" json:"text"`
	MediaRefs datatypes.JSONSlice[string] `json:"media_refs,omitempty"`
	Status    ContentStatus               `gorm:"not null;default:'active';size:20" json:"status"`
	CreatedAt time.Time                   `json:"created_at"`
	UpdatedAt time.Time                   `json:"updated_at"`
}
