package dto

import "github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/models"

type CreateContentRequest struct {
	ID        string   `json:"id"`
	Type      string   `json:"type"`
	SphereID  string   `json:"sphere_id"`
	Text      string   `json:"text"`
	MediaRefs []string `json:"media_refs"`
}

type ContentListResponse struct {
	Contents []models.Content `json:"contents"`
	Total    int64            `json:"total"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}
