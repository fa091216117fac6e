package service

import (
	"context"
	"strings"
	"time"

	"agencydesk/internal/models"
	"agencydesk/internal/repository"
	"agencydesk/internal/validation"
)

type AgencyService struct {
	agencyRepo repository.AgencyRepository
	claimRepo  repository.ClaimRepository
}

func NewAgencyService(agencyRepo repository.AgencyRepository, claimRepo repository.ClaimRepository) *AgencyService {
	return &AgencyService{agencyRepo: agencyRepo, claimRepo: claimRepo}
}

type AgencyInput struct {
	Name         string   `json:"name"`
	Slug         string   `json:"slug"`
	Website      string   `json:"website"`
	ContactEmail string   `json:"contact_email"`
	ContactPhone string   `json:"contact_phone"`
	Description  string   `json:"description"`
	Status       string   `json:"status"`
	Trades       []string `json:"trades"`
	Regions      []string `json:"regions"`
}

type ComplianceInput struct {
	LicenseNumber   string     `json:"license_number"`
	InsuranceExpiry *time.Time `json:"insurance_expiry"`
	ComplianceNotes string     `json:"compliance_notes"`
}

func (s *AgencyService) ListAgencies(ctx context.Context, params repository.AgencyListParams) ([]models.Agency, int64, error) {
	return s.agencyRepo.List(ctx, params)
}

func (s *AgencyService) GetBySlug(ctx context.Context, slug string) (*models.Agency, error) {
	return s.agencyRepo.GetBySlug(ctx, slug)
}

func (s *AgencyService) GetByID(ctx context.Context, id uint) (*models.Agency, error) {
	return s.agencyRepo.GetByID(ctx, id)
}

func validateAgencyInput(in AgencyInput, requireAll bool) error {
	if requireAll || in.Name != "" {
		if err := validation.ValidateAgencyName(in.Name); err != nil {
			return models.NewValidationError(err.Error())
		}
	}
	if requireAll || in.Slug != "" {
		if err := validation.ValidateAgencySlug(in.Slug); err != nil {
			return models.NewValidationError(err.Error())
		}
	}
	if in.Website != "" {
		if err := validation.ValidateWebsite(in.Website); err != nil {
			return models.NewValidationError(err.Error())
		}
	}
	if in.ContactEmail != "" {
		if err := validation.ValidateEmail(in.ContactEmail); err != nil {
			return models.NewValidationError(err.Error())
		}
	}
	if in.ContactPhone != "" {
		if err := validation.ValidatePhone(in.ContactPhone); err != nil {
			return models.NewValidationError(err.Error())
		}
	}
	if in.Status != "" && in.Status != string(models.AgencyStatusActive) && in.Status != string(models.AgencyStatusSuspended) {
		return models.NewValidationError("Unknown status: " + in.Status)
	}
	return nil
}

func (s *AgencyService) CreateAgency(ctx context.Context, in AgencyInput) (*models.Agency, error) {
	if err := validateAgencyInput(in, true); err != nil {
		return nil, err
	}

	agency := &models.Agency{
		Name:         strings.TrimSpace(in.Name),
		Slug:         in.Slug,
		Website:      strings.TrimSpace(in.Website),
		ContactEmail: strings.TrimSpace(in.ContactEmail),
		ContactPhone: strings.TrimSpace(in.ContactPhone),
		Description:  strings.TrimSpace(in.Description),
		Status:       models.AgencyStatusActive,
	}
	if in.Status != "" {
		agency.Status = models.AgencyStatus(in.Status)
	}

	if err := s.agencyRepo.Create(ctx, agency); err != nil {
		return nil, err
	}
	if len(in.Trades) > 0 || len(in.Regions) > 0 {
		if err := s.agencyRepo.ReplaceTags(ctx, agency, in.Trades, in.Regions); err != nil {
			return nil, err
		}
	}
	return agency, nil
}

// UpdateAgency applies a partial update; empty fields are left unchanged.
// Trades/Regions replace the existing sets when present (nil means keep).
func (s *AgencyService) UpdateAgency(ctx context.Context, id uint, in AgencyInput) (*models.Agency, error) {
	if err := validateAgencyInput(in, false); err != nil {
		return nil, err
	}

	agency, err := s.agencyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != "" {
		agency.Name = strings.TrimSpace(in.Name)
	}
	if in.Slug != "" {
		agency.Slug = in.Slug
	}
	if in.Website != "" {
		agency.Website = strings.TrimSpace(in.Website)
	}
	if in.ContactEmail != "" {
		agency.ContactEmail = strings.TrimSpace(in.ContactEmail)
	}
	if in.ContactPhone != "" {
		agency.ContactPhone = strings.TrimSpace(in.ContactPhone)
	}
	if in.Description != "" {
		agency.Description = strings.TrimSpace(in.Description)
	}
	if in.Status != "" {
		agency.Status = models.AgencyStatus(in.Status)
	}

	if err := s.agencyRepo.Update(ctx, agency); err != nil {
		return nil, err
	}
	if in.Trades != nil || in.Regions != nil {
		if err := s.agencyRepo.ReplaceTags(ctx, agency, in.Trades, in.Regions); err != nil {
			return nil, err
		}
	}
	return agency, nil
}

// DeleteAgency removes a listing. Blocked while a claim is awaiting review so
// the reviewer never loses the row under their feet.
func (s *AgencyService) DeleteAgency(ctx context.Context, id uint) error {
	live, err := s.claimRepo.HasLiveClaim(ctx, id)
	if err != nil {
		return err
	}
	if live {
		return models.NewConflictError(
			"Agency has a claim awaiting review and cannot be deleted",
			nil,
		)
	}
	return s.agencyRepo.Delete(ctx, id)
}

func (s *AgencyService) GetCompliance(ctx context.Context, id uint) (*models.Agency, error) {
	return s.agencyRepo.GetByID(ctx, id)
}

// UpdateCompliance replaces the compliance fields and stamps last_reviewed_at.
func (s *AgencyService) UpdateCompliance(ctx context.Context, id uint, in ComplianceInput) (*models.Agency, error) {
	agency, err := s.agencyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if len(in.LicenseNumber) > 80 {
		return nil, models.NewValidationError("license_number too long (max 80 characters)")
	}

	now := time.Now().UTC()
	agency.LicenseNumber = strings.TrimSpace(in.LicenseNumber)
	agency.InsuranceExpiry = in.InsuranceExpiry
	agency.ComplianceNotes = strings.TrimSpace(in.ComplianceNotes)
	agency.LastReviewedAt = &now

	if err := s.agencyRepo.Update(ctx, agency); err != nil {
		return nil, err
	}
	return agency, nil
}

// SetLogoPath records the stored logo path on the listing.
func (s *AgencyService) SetLogoPath(ctx context.Context, id uint, path string) (*models.Agency, error) {
	agency, err := s.agencyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	agency.LogoPath = path
	if err := s.agencyRepo.Update(ctx, agency); err != nil {
		return nil, err
	}
	return agency, nil
}
