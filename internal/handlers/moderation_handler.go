package handlers

import (
	"strconv"

	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/identity"
	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/models"
	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/moderation"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ModerationHandler struct {
	engine *moderation.Engine
}

func NewModerationHandler(engine *moderation.Engine) *ModerationHandler {
	return &ModerationHandler{engine: engine}
}

func (h *ModerationHandler) SubmitReport(c *fiber.Ctx) error {
	var req dto.SubmitReportRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	report, err := h.engine.SubmitReport(c.UserContext(), moderation.SubmitReportInput{
		ContentID:   req.ContentID,
		ContentType: models.ContentType(req.ContentType),
		ReporterID:  identity.Current(c),
		Reason:      models.ReportReason(req.Reason),
		Description: req.Description,
	})
	if err != nil {
		return respondError(c, err, "Failed to submit report")
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}

func (h *ModerationHandler) ListReports(c *fiber.Ctx) error {
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

	reports, total, err := h.engine.ListReports(c.UserContext(), moderation.ReportFilter{
		Status:      models.ReportStatus(c.Query("status")),
		ContentID:   c.Query("content_id"),
		ContentType: models.ContentType(c.Query("content_type")),
		ReporterID:  c.Query("reporter_id"),
		SphereID:    c.Query("sphere_id"),
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		return respondError(c, err, "Failed to fetch reports")
	}
	if reports == nil {
		reports = []models.Report{}
	}

	return c.JSON(dto.ReportListResponse{
		Reports: reports,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	})
}

func (h *ModerationHandler) GetReport(c *fiber.Ctx) error {
	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid report ID")
	}
	report, err := h.engine.GetReport(c.UserContext(), reportID)
	if err != nil {
		return respondError(c, err, "Failed to fetch report")
	}
	return c.JSON(report)
}

func (h *ModerationHandler) SubmitVote(c *fiber.Ctx) error {
	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid report ID")
	}
	var req dto.SubmitVoteRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	report, err := h.engine.SubmitVote(c.UserContext(), reportID, identity.Current(c), models.VoteDecision(req.Decision))
	if err != nil {
		return respondError(c, err, "Failed to submit vote")
	}
	return c.JSON(report)
}

func (h *ModerationHandler) VotingStatus(c *fiber.Ctx) error {
	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid report ID")
	}
	vs, err := h.engine.GetVotingStatus(c.UserContext(), reportID, identity.Current(c))
	if err != nil {
		return respondError(c, err, "Failed to fetch voting status")
	}
	return c.JSON(dto.NewVotingStatusResponse(vs))
}

func (h *ModerationHandler) CheckContent(c *fiber.Ctx) error {
	var req dto.CheckContentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	result, err := h.engine.CheckContent(c.UserContext(), req.Text, req.MediaRefs)
	if err != nil {
		return respondError(c, err, "Failed to check content")
	}
	flags := result.Flags
	if flags == nil {
		flags = []models.AIReason{}
	}
	return c.JSON(dto.CheckContentResponse{Confidence: result.Confidence, Flags: flags})
}

func (h *ModerationHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.engine.GetStats(c.UserContext())
	if err != nil {
		return respondError(c, err, "Failed to compute stats")
	}
	return c.JSON(dto.NewStatsResponse(stats))
}

func (h *ModerationHandler) Thresholds(c *fiber.Ctx) error {
	return c.JSON(dto.NewThresholdsResponse(h.engine.Thresholds(), h.engine.Features()))
}

func (h *ModerationHandler) AnnotateReport(c *fiber.Ctx) error {
	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid report ID")
	}
	var req dto.AnnotateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	report, err := h.engine.AnnotateReport(c.UserContext(), reportID, req.Notes)
	if err != nil {
		return respondError(c, err, "Failed to update report notes")
	}
	return c.JSON(report)
}

func (h *ModerationHandler) Expire(c *fiber.Ctx) error {
	n, err := h.engine.ExpireStale(c.UserContext())
	if err != nil {
		return respondError(c, err, "Failed to expire reports")
	}
	return c.JSON(dto.ExpireResponse{Resolved: n})
}
