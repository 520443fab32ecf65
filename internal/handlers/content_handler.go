package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/identity"
	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/models"
	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/store"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ContentRepository interface {
	CreateContent(ctx context.Context, c *models.Content) error
	GetContent(ctx context.Context, id string) (*models.Content, error)
	ListBySphere(ctx context.Context, sphereID string, limit, offset int) ([]models.Content, int64, error)
}

// PublishFilter screens text before it is stored.
type PublishFilter interface {
	FilterContent(text string) (bool, string)
	RejectionMessage(reason string) string
}

type ContentHandler struct {
	contents ContentRepository
	filter   PublishFilter
}

func NewContentHandler(contents ContentRepository, filter PublishFilter) *ContentHandler {
	return &ContentHandler{contents: contents, filter: filter}
}

func (h *ContentHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateContentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	contentType := models.ContentType(req.Type)
	if !contentType.Valid() {
		return badRequest(c, "Invalid type: must be post, comment, or sphere")
	}
	if strings.TrimSpace(req.Text) == "" && len(req.MediaRefs) == 0 {
		return badRequest(c, "Text or media is required")
	}
	if h.filter != nil {
		if ok, reason := h.filter.FilterContent(req.Text); !ok {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
				Error: true, Message: h.filter.RejectionMessage(reason),
			})
		}
	}

	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = uuid.NewString()
	}
	content := &models.Content{
		ID:        id,
		Type:      contentType,
		AuthorID:  identity.Current(c),
		SphereID:  strings.TrimSpace(req.SphereID),
		Text:      req.Text,
		MediaRefs: req.MediaRefs,
		Status:    models.ContentActive,
	}
	if err := h.contents.CreateContent(c.UserContext(), content); err != nil {
		if errors.Is(err, store.ErrContentExists) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: "Content id already exists",
			})
		}
		return respondError(c, err, "Failed to create content")
	}
	return c.Status(fiber.StatusCreated).JSON(content)
}

func (h *ContentHandler) Get(c *fiber.Ctx) error {
	content, err := h.contents.GetContent(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Failed to fetch content")
	}
	return c.JSON(content)
}

// List returns the contents of one sphere, newest first.
func (h *ContentHandler) List(c *fiber.Ctx) error {
	sphereID := strings.TrimSpace(c.Query("sphere_id"))
	if sphereID == "" {
		return badRequest(c, "sphere_id is required")
	}
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	contents, total, err := h.contents.ListBySphere(c.UserContext(), sphereID, limit, offset)
	if err != nil {
		return respondError(c, err, "Failed to fetch contents")
	}
	if contents == nil {
		contents = []models.Content{}
	}
	return c.JSON(dto.ContentListResponse{
		Contents: contents,
		Total:    total,
		Limit:    limit,
		Offset:   offset,
	})
}
