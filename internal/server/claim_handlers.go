package server

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"agencydesk/internal/cache"
	"agencydesk/internal/events"
	"agencydesk/internal/models"
	"agencydesk/internal/observability"
	"agencydesk/internal/repository"
	"agencydesk/internal/validation"
	"agencydesk/internal/verification"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const minRejectionReasonLen = 20

// SubmitClaim handles POST /api/agencies/:id/claims
func (s *Server) SubmitClaim(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	agencyID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		BusinessEmail      string  `json:"business_email"`
		PhoneNumber        *string `json:"phone_number"`
		PositionTitle      *string `json:"position_title"`
		VerificationMethod string  `json:"verification_method"`
		AdditionalNotes    string  `json:"additional_notes"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	req.BusinessEmail = strings.TrimSpace(req.BusinessEmail)
	if req.BusinessEmail == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Business email is required"))
	}
	if err := validation.ValidateEmail(req.BusinessEmail); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	if req.PhoneNumber != nil && strings.TrimSpace(*req.PhoneNumber) != "" {
		if err := validation.ValidatePhone(*req.PhoneNumber); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError(err.Error()))
		}
	}

	method := models.VerificationMethod(req.VerificationMethod)
	if req.VerificationMethod == "" {
		method = models.VerificationMethodEmail
	}
	switch method {
	case models.VerificationMethodEmail, models.VerificationMethodPhone, models.VerificationMethodManual:
	default:
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unknown verification method"))
	}

	agency, err := s.agencyRepo.GetByID(c.Context(), agencyID)
	if err != nil {
		return respondAppError(c, err)
	}
	if agency.OwnerUserID != nil {
		return models.RespondWithError(c, fiber.StatusConflict,
			models.NewConflictError("Agency has already been claimed", nil))
	}

	live, err := s.claimRepo.HasLiveClaim(c.Context(), agency.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if live {
		return models.RespondWithError(c, fiber.StatusConflict,
			models.NewConflictError("Agency already has a claim under review", nil))
	}

	claim := &models.ClaimRequest{
		AgencyID:            agency.ID,
		UserID:              userID,
		BusinessEmail:       req.BusinessEmail,
		PhoneNumber:         req.PhoneNumber,
		PositionTitle:       req.PositionTitle,
		VerificationMethod:  method,
		EmailDomainVerified: verification.EmailDomainMatches(req.BusinessEmail, agency.Website),
		AdditionalNotes:     strings.TrimSpace(req.AdditionalNotes),
		Status:              models.ClaimStatusPending,
	}

	if err := s.claimRepo.Create(c.Context(), claim); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	s.publishAdminEvent(c.Context(), events.EventClaimSubmitted, fiber.Map{
		"claim_id":  claim.ID,
		"agency_id": agency.ID,
		"user_id":   userID,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    claim,
	})
}

// GetMyClaims handles GET /api/claims/me
func (s *Server) GetMyClaims(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	claims, err := s.claimRepo.ListByUser(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{"data": claims})
}

// GetAdminClaims handles GET /api/admin/claims with status/search filters and
// page-based pagination.
func (s *Server) GetAdminClaims(c *fiber.Ctx) error {
	p := parsePageParams(c, 20)

	status := c.Query("status")
	if status != "" && !models.ValidClaimStatus(status) {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unknown claim status filter"))
	}
	search := c.Query("search")

	// Admin claim pages are cached briefly; the short TTL keeps the list
	// fresh enough that review actions show up without explicit invalidation.
	var page struct {
		Claims []models.ClaimRequest `json:"claims"`
		Total  int64                 `json:"total"`
	}
	sig := fmt.Sprintf("%s:%s:%d:%d", status, search, p.Offset, p.Limit)
	err := cache.Aside(c.Context(), cache.ClaimPageKey(sig), &page, cache.ClaimPageTTL, func() error {
		claims, total, err := s.claimRepo.List(c.Context(), repository.ClaimListParams{
			Status: models.ClaimStatus(status),
			Search: search,
			Limit:  p.Limit,
			Offset: p.Offset,
		})
		if err != nil {
			return err
		}
		page.Claims = claims
		page.Total = total
		return nil
	})
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"data":       page.Claims,
		"pagination": paginationEnvelope(page.Total, p),
	})
}

// GetAdminClaimDetail handles GET /api/admin/claims/:id, returning the claim
// plus its verification breakdown.
func (s *Server) GetAdminClaimDetail(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	claim, err := s.claimRepo.GetByID(c.Context(), id)
	if err != nil {
		return respondAppError(c, err)
	}

	var summary verification.Summary
	if claim.Agency != nil {
		summary = verification.SummarizeWithAgency(claim, claim.Agency)
	} else {
		summary = verification.Summarize(claim)
	}

	return c.JSON(fiber.Map{
		"data":         claim,
		"verification": summary,
	})
}

// StartClaimReview handles POST /api/admin/claims/:id/review, moving a pending
// claim to under_review.
func (s *Server) StartClaimReview(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	tx := s.db.WithContext(c.Context()).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	var claim models.ClaimRequest
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&claim, id).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Claim", id))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	if claim.Status != models.ClaimStatusPending {
		tx.Rollback()
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Claim is not pending"))
	}

	claim.Status = models.ClaimStatusUnderReview
	if err := tx.Save(&claim).Error; err != nil {
		tx.Rollback()
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	if err := tx.Commit().Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    claim,
	})
}

// ApproveClaim handles POST /api/admin/claims/:id/approve. Approval transfers
// agency ownership and promotes the claimant, all in one transaction. Only a
// claim that is still pending can be approved; the row lock makes concurrent
// approvals lose with a 400 rather than double-apply.
func (s *Server) ApproveClaim(c *fiber.Ctx) error {
	reviewerID := c.Locals("userID").(uint)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	tx := s.db.WithContext(c.Context()).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	var claim models.ClaimRequest
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&claim, id).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Claim", id))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	if claim.Status != models.ClaimStatusPending {
		tx.Rollback()
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Claim is not pending"))
	}

	var agency models.Agency
	if err := tx.First(&agency, claim.AgencyID).Error; err != nil {
		tx.Rollback()
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	var claimant models.User
	if err := tx.First(&claimant, claim.UserID).Error; err != nil {
		tx.Rollback()
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	now := time.Now().UTC()
	claim.Status = models.ClaimStatusApproved
	claim.ReviewedByID = &reviewerID
	claim.ReviewedAt = &now
	if err := tx.Save(&claim).Error; err != nil {
		tx.Rollback()
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	agency.OwnerUserID = &claim.UserID
	if err := tx.Save(&agency).Error; err != nil {
		tx.Rollback()
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	// Promote plain users to agency_owner; admins keep their role.
	if claimant.Role == models.UserRoleUser {
		audit := models.RoleChangeAudit{
			UserID:      claimant.ID,
			OldRole:     claimant.Role,
			NewRole:     models.UserRoleAgencyOwner,
			ChangedByID: reviewerID,
			Reason:      "Agency claim approved",
		}
		if err := tx.Create(&audit).Error; err != nil {
			tx.Rollback()
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		claimant.Role = models.UserRoleAgencyOwner
		if err := tx.Save(&claimant).Error; err != nil {
			tx.Rollback()
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	cache.InvalidateAgency(c.Context(), agency.Slug)
	cache.InvalidateUser(c.Context(), claimant.ID)
	observability.ClaimReviewsTotal.WithLabelValues("approved").Inc()

	s.publishAdminEvent(c.Context(), events.EventClaimReviewed, fiber.Map{
		"claim_id":  claim.ID,
		"agency_id": agency.ID,
		"user_id":   claimant.ID,
		"outcome":   "approved",
	})

	return c.JSON(fiber.Map{
		"success": true,
		"data":    claim,
	})
}

// RejectClaim handles POST /api/admin/claims/:id/reject. Rejection requires a
// substantive reason so the claimant gets actionable feedback.
func (s *Server) RejectClaim(c *fiber.Ctx) error {
	reviewerID := c.Locals("userID").(uint)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		RejectionReason string `json:"rejection_reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	reason := strings.TrimSpace(req.RejectionReason)
	if len(reason) < minRejectionReasonLen {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Rejection reason must be at least 20 characters"))
	}

	tx := s.db.WithContext(c.Context()).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	var claim models.ClaimRequest
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&claim, id).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Claim", id))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	if claim.Status != models.ClaimStatusPending {
		tx.Rollback()
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Claim is not pending"))
	}

	now := time.Now().UTC()
	claim.Status = models.ClaimStatusRejected
	claim.RejectionReason = &reason
	claim.ReviewedByID = &reviewerID
	claim.ReviewedAt = &now
	if err := tx.Save(&claim).Error; err != nil {
		tx.Rollback()
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	if err := tx.Commit().Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	observability.ClaimReviewsTotal.WithLabelValues("rejected").Inc()

	s.publishAdminEvent(c.Context(), events.EventClaimReviewed, fiber.Map{
		"claim_id":  claim.ID,
		"agency_id": claim.AgencyID,
		"user_id":   claim.UserID,
		"outcome":   "rejected",
	})

	return c.JSON(fiber.Map{
		"success": true,
		"data":    claim,
	})
}
