package server

import (
	"agencydesk/internal/events"
	"agencydesk/internal/models"
	"agencydesk/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetAdminUsers handles GET /api/admin/users with username/email search.
func (s *Server) GetAdminUsers(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	users, total, err := s.userService.ListUsers(c.Context(), c.Query("search"), p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"data":       users,
		"pagination": paginationEnvelope(total, p),
	})
}

// ChangeUserRole handles PUT /api/admin/users/:id/role. Every change lands in
// the role audit trail.
func (s *Server) ChangeUserRole(c *fiber.Ctx) error {
	adminID := c.Locals("userID").(uint)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Role   string `json:"role"`
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.ChangeRole(c.Context(), service.ChangeRoleInput{
		TargetID:  id,
		NewRole:   req.Role,
		Reason:    req.Reason,
		ChangedBy: adminID,
	})
	if err != nil {
		return respondAppError(c, err)
	}

	s.publishAdminEvent(c.Context(), events.EventUserRoleChanged, fiber.Map{
		"user_id":  user.ID,
		"new_role": user.Role,
	})

	return c.JSON(fiber.Map{
		"success": true,
		"data":    user,
	})
}

// GetUserRoleAudit handles GET /api/admin/users/:id/role-audit
func (s *Server) GetUserRoleAudit(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	audits, err := s.userService.RoleAudit(c.Context(), id)
	if err != nil {
		return respondAppError(c, err)
	}

	return c.JSON(fiber.Map{"data": audits})
}

// DeleteUser handles DELETE /api/admin/users/:id. Users who own claimed
// agencies cannot be deleted; the 409 response lists the offending agencies.
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	adminID := c.Locals("userID").(uint)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.userService.DeleteUser(c.Context(), id, adminID); err != nil {
		return respondAppError(c, err)
	}

	s.publishAdminEvent(c.Context(), events.EventUserDeleted, fiber.Map{
		"user_id": id,
	})

	return c.JSON(fiber.Map{"success": true})
}
