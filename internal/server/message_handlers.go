package server

import (
	"strconv"

	"agencydesk/internal/events"
	"agencydesk/internal/models"
	"agencydesk/internal/repository"

	"github.com/gofiber/fiber/v2"
)

// GetAgencyMessages handles GET /api/agencies/:slug/messages. Hidden messages
// never leave the moderation queue.
func (s *Server) GetAgencyMessages(c *fiber.Ctx) error {
	slug := c.Params("slug")
	p := parsePagination(c, 20)

	agency, err := s.agencyService.GetBySlug(c.Context(), slug)
	if err != nil {
		return respondAppError(c, err)
	}
	if agency.Status != models.AgencyStatusActive {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Agency", slug))
	}

	messages, err := s.messageService.ListVisibleByAgency(c.Context(), agency.ID, p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{"data": messages})
}

// SendAgencyMessage handles POST /api/agencies/:id/messages
func (s *Server) SendAgencyMessage(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	agencyID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Body string `json:"body"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	message, err := s.messageService.SubmitMessage(c.Context(), agencyID, userID, req.Body)
	if err != nil {
		return respondAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    message,
	})
}

// GetAdminMessages handles GET /api/admin/messages with status/search filters.
func (s *Server) GetAdminMessages(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	status := c.Query("status")
	if status != "" && !models.ValidMessageStatus(status) {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unknown message status filter"))
	}

	var agencyID uint
	if raw := c.Query("agency_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid agency_id filter"))
		}
		agencyID = uint(id)
	}

	messages, total, err := s.messageService.ListMessages(c.Context(), repository.MessageListParams{
		AgencyID: agencyID,
		Status:   models.MessageStatus(status),
		Search:   c.Query("search"),
		Limit:    p.Limit,
		Offset:   p.Offset,
	})
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"data":       messages,
		"pagination": paginationEnvelope(total, p),
	})
}

// HideMessage handles POST /api/admin/messages/:id/hide
func (s *Server) HideMessage(c *fiber.Ctx) error {
	return s.moderateMessage(c, "hidden")
}

// FlagMessage handles POST /api/admin/messages/:id/flag
func (s *Server) FlagMessage(c *fiber.Ctx) error {
	return s.moderateMessage(c, "flagged")
}

// RestoreMessage handles POST /api/admin/messages/:id/restore
func (s *Server) RestoreMessage(c *fiber.Ctx) error {
	return s.moderateMessage(c, "visible")
}

func (s *Server) moderateMessage(c *fiber.Ctx, action string) error {
	moderatorID := c.Locals("userID").(uint)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Note string `json:"note"`
	}
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	var message *models.AgencyMessage
	var modErr error
	switch action {
	case "hidden":
		message, modErr = s.messageService.Hide(c.Context(), id, moderatorID, req.Note)
	case "flagged":
		message, modErr = s.messageService.Flag(c.Context(), id, moderatorID, req.Note)
	default:
		message, modErr = s.messageService.Restore(c.Context(), id, moderatorID, req.Note)
	}
	if modErr != nil {
		return respondAppError(c, modErr)
	}

	s.publishAdminEvent(c.Context(), events.EventMessageModerated, fiber.Map{
		"message_id": message.ID,
		"agency_id":  message.AgencyID,
		"status":     message.Status,
	})

	return c.JSON(fiber.Map{
		"success": true,
		"data":    message,
	})
}
