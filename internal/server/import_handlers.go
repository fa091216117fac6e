package server

import (
	"errors"
	"mime/multipart"

	"agencydesk/internal/events"
	"agencydesk/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ValidateAgencyImport handles POST /api/admin/agencies/import/validate
// (multipart form, field "file"). Nothing is persisted; the caller gets a
// per-row report to fix the CSV before committing.
func (s *Server) ValidateAgencyImport(c *fiber.Ctx) error {
	file, err := openImportFile(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	defer file.Close()

	summary, err := s.importer.Validate(c.Context(), file)
	if err != nil {
		return respondAppError(c, err)
	}

	return c.JSON(fiber.Map{"data": summary})
}

// ImportAgencies handles POST /api/admin/agencies/import. Valid rows are
// created; invalid rows are reported back alongside what was imported.
func (s *Server) ImportAgencies(c *fiber.Ctx) error {
	file, err := openImportFile(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	defer file.Close()

	summary, imported, err := s.importer.Import(c.Context(), file)
	if err != nil {
		return respondAppError(c, err)
	}

	s.publishAdminEvent(c.Context(), events.EventAgencyImported, fiber.Map{
		"imported": imported,
		"invalid":  summary.Invalid,
	})

	return c.JSON(fiber.Map{
		"success":  true,
		"imported": imported,
		"data":     summary,
	})
}

func openImportFile(c *fiber.Ctx) (multipart.File, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, errors.New("CSV file is required (multipart field \"file\")")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return nil, errors.New("could not read uploaded file")
	}
	return file, nil
}
