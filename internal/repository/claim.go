package repository

import (
	"context"
	"errors"
	"strings"

	"agencydesk/internal/models"

	"gorm.io/gorm"
)

// ClaimListParams filters the admin claims queue.
type ClaimListParams struct {
	Status models.ClaimStatus
	Search string
	Limit  int
	Offset int
}

// ClaimRepository defines persistence operations for claim requests.
type ClaimRepository interface {
	GetByID(ctx context.Context, id uint) (*models.ClaimRequest, error)
	Create(ctx context.Context, claim *models.ClaimRequest) error
	List(ctx context.Context, params ClaimListParams) ([]models.ClaimRequest, int64, error)
	ListByUser(ctx context.Context, userID uint) ([]models.ClaimRequest, error)
	HasLiveClaim(ctx context.Context, agencyID uint) (bool, error)
	CountClaimedByUser(ctx context.Context, userID uint) (int64, error)
}

type claimRepository struct {
	db *gorm.DB
}

// NewClaimRepository returns a new ClaimRepository implementation.
func NewClaimRepository(db *gorm.DB) ClaimRepository {
	return &claimRepository{db: db}
}

func (r *claimRepository) GetByID(ctx context.Context, id uint) (*models.ClaimRequest, error) {
	var claim models.ClaimRequest
	if err := r.db.WithContext(ctx).
		Preload("Agency").
		Preload("User").
		Preload("ReviewedBy").
		First(&claim, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Claim", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &claim, nil
}

func (r *claimRepository) Create(ctx context.Context, claim *models.ClaimRequest) error {
	if err := r.db.WithContext(ctx).Create(claim).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *claimRepository) List(ctx context.Context, params ClaimListParams) ([]models.ClaimRequest, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ClaimRequest{}).
		Joins("JOIN agencies ON agencies.id = claim_requests.agency_id")

	if params.Status != "" {
		query = query.Where("claim_requests.status = ?", params.Status)
	}
	if params.Search != "" {
		like := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(agencies.name) LIKE ? OR LOWER(claim_requests.business_email) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var claims []models.ClaimRequest
	if err := query.
		Preload("Agency").
		Preload("User").
		Order("claim_requests.created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&claims).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return claims, total, nil
}

func (r *claimRepository) ListByUser(ctx context.Context, userID uint) ([]models.ClaimRequest, error) {
	var claims []models.ClaimRequest
	if err := r.db.WithContext(ctx).
		Preload("Agency").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&claims).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return claims, nil
}

// HasLiveClaim reports whether the agency already has a claim awaiting review.
func (r *claimRepository) HasLiveClaim(ctx context.Context, agencyID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ClaimRequest{}).
		Where("agency_id = ? AND status IN ?", agencyID,
			[]models.ClaimStatus{models.ClaimStatusPending, models.ClaimStatusUnderReview}).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// CountClaimedByUser counts approved claims held by the user. Used to block
// account deletion while the user still owns claimed agencies.
func (r *claimRepository) CountClaimedByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ClaimRequest{}).
		Where("user_id = ? AND status = ?", userID, models.ClaimStatusApproved).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
