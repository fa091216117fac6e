package server

import (
	"io"

	"agencydesk/internal/events"
	"agencydesk/internal/models"
	"agencydesk/internal/repository"
	"agencydesk/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetAgencies handles GET /api/agencies. The public directory only ever shows
// active listings regardless of the status filter admins see.
func (s *Server) GetAgencies(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	agencies, total, err := s.agencyService.ListAgencies(c.Context(), repository.AgencyListParams{
		Search: c.Query("search"),
		Trade:  c.Query("trade"),
		Region: c.Query("region"),
		Status: models.AgencyStatusActive,
		Limit:  p.Limit,
		Offset: p.Offset,
	})
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"data":       agencies,
		"pagination": paginationEnvelope(total, p),
	})
}

// GetAgencyBySlug handles GET /api/agencies/:slug
func (s *Server) GetAgencyBySlug(c *fiber.Ctx) error {
	slug := c.Params("slug")

	agency, err := s.agencyService.GetBySlug(c.Context(), slug)
	if err != nil {
		return respondAppError(c, err)
	}
	if agency.Status != models.AgencyStatusActive {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Agency", slug))
	}

	return c.JSON(fiber.Map{"data": agency})
}

// CreateAgency handles POST /api/admin/agencies
func (s *Server) CreateAgency(c *fiber.Ctx) error {
	var in service.AgencyInput
	if err := c.BodyParser(&in); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	agency, err := s.agencyService.CreateAgency(c.Context(), in)
	if err != nil {
		return respondAppError(c, err)
	}

	s.publishAdminEvent(c.Context(), events.EventAgencyCreated, fiber.Map{
		"agency_id": agency.ID,
		"slug":      agency.Slug,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    agency,
	})
}

// UpdateAgency handles PATCH /api/admin/agencies/:id. Empty fields are left
// unchanged; omitted trades/regions keep their current tags.
func (s *Server) UpdateAgency(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var in service.AgencyInput
	if err := c.BodyParser(&in); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	agency, err := s.agencyService.UpdateAgency(c.Context(), id, in)
	if err != nil {
		return respondAppError(c, err)
	}

	s.publishAdminEvent(c.Context(), events.EventAgencyUpdated, fiber.Map{
		"agency_id": agency.ID,
		"slug":      agency.Slug,
	})

	return c.JSON(fiber.Map{
		"success": true,
		"data":    agency,
	})
}

// DeleteAgency handles DELETE /api/admin/agencies/:id. Deletion is refused
// while a claim is pending or under review.
func (s *Server) DeleteAgency(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.agencyService.DeleteAgency(c.Context(), id); err != nil {
		return respondAppError(c, err)
	}

	s.publishAdminEvent(c.Context(), events.EventAgencyDeleted, fiber.Map{
		"agency_id": id,
	})

	return c.JSON(fiber.Map{"success": true})
}

// GetAgencyCompliance handles GET /api/admin/agencies/:id/compliance
func (s *Server) GetAgencyCompliance(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	agency, err := s.agencyService.GetCompliance(c.Context(), id)
	if err != nil {
		return respondAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"license_number":   agency.LicenseNumber,
			"insurance_expiry": agency.InsuranceExpiry,
			"compliance_notes": agency.ComplianceNotes,
			"last_reviewed_at": agency.LastReviewedAt,
		},
	})
}

// UpdateAgencyCompliance handles PUT /api/admin/agencies/:id/compliance
func (s *Server) UpdateAgencyCompliance(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var in service.ComplianceInput
	if err := c.BodyParser(&in); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	agency, err := s.agencyService.UpdateCompliance(c.Context(), id, in)
	if err != nil {
		return respondAppError(c, err)
	}

	s.publishAdminEvent(c.Context(), events.EventAgencyUpdated, fiber.Map{
		"agency_id": agency.ID,
		"slug":      agency.Slug,
	})

	return c.JSON(fiber.Map{
		"success": true,
		"data":    agency,
	})
}

// UploadAgencyLogo handles POST /api/admin/agencies/:id/logo (multipart form,
// field "logo"). Processing failures after the agency lookup succeed degrade
// to a warning so the caller knows the listing itself is intact.
func (s *Server) UploadAgencyLogo(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	agency, err := s.agencyService.GetByID(c.Context(), id)
	if err != nil {
		return respondAppError(c, err)
	}

	fileHeader, err := c.FormFile("logo")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Logo file is required (multipart field \"logo\")"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Could not read uploaded file"))
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Could not read uploaded file"))
	}

	filename, storeErr := s.logoService.Store(content)
	if storeErr != nil {
		// The agency record is untouched; report the logo failure as a warning
		// rather than failing the whole request.
		return c.JSON(fiber.Map{
			"success": true,
			"data":    agency,
			"warning": storeErr.Error(),
		})
	}

	oldPath := agency.LogoPath
	agency, err = s.agencyService.SetLogoPath(c.Context(), id, filename)
	if err != nil {
		return respondAppError(c, err)
	}
	if oldPath != "" && oldPath != filename {
		if rmErr := s.logoService.Remove(oldPath); rmErr != nil {
			return c.JSON(fiber.Map{
				"success": true,
				"data":    agency,
				"warning": "Previous logo file could not be removed",
			})
		}
	}

	s.publishAdminEvent(c.Context(), events.EventAgencyUpdated, fiber.Map{
		"agency_id": agency.ID,
		"slug":      agency.Slug,
	})

	return c.JSON(fiber.Map{
		"success": true,
		"data":    agency,
	})
}

// DeleteAgencyLogo handles DELETE /api/admin/agencies/:id/logo
func (s *Server) DeleteAgencyLogo(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	agency, err := s.agencyService.GetByID(c.Context(), id)
	if err != nil {
		return respondAppError(c, err)
	}

	oldPath := agency.LogoPath
	agency, err = s.agencyService.SetLogoPath(c.Context(), id, "")
	if err != nil {
		return respondAppError(c, err)
	}
	if oldPath != "" {
		if rmErr := s.logoService.Remove(oldPath); rmErr != nil {
			return c.JSON(fiber.Map{
				"success": true,
				"data":    agency,
				"warning": "Logo file could not be removed from disk",
			})
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    agency,
	})
}
