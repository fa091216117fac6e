package repository

import (
	"context"
	"errors"
	"strings"

	"agencydesk/internal/cache"
	"agencydesk/internal/models"

	"gorm.io/gorm"
)

// AgencyListParams filters the directory listing.
type AgencyListParams struct {
	Search string
	Trade  string
	Region string
	Status models.AgencyStatus
	Limit  int
	Offset int
}

// AgencyRepository defines persistence operations for agency listings.
type AgencyRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Agency, error)
	GetBySlug(ctx context.Context, slug string) (*models.Agency, error)
	Create(ctx context.Context, agency *models.Agency) error
	Update(ctx context.Context, agency *models.Agency) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, params AgencyListParams) ([]models.Agency, int64, error)
	ListByOwner(ctx context.Context, ownerUserID uint) ([]models.Agency, error)
	ReplaceTags(ctx context.Context, agency *models.Agency, trades, regions []string) error
}

type agencyRepository struct {
	db *gorm.DB
}

// NewAgencyRepository returns a new AgencyRepository implementation.
func NewAgencyRepository(db *gorm.DB) AgencyRepository {
	return &agencyRepository{db: db}
}

func (r *agencyRepository) GetByID(ctx context.Context, id uint) (*models.Agency, error) {
	var agency models.Agency
	if err := r.db.WithContext(ctx).
		Preload("Trades").
		Preload("Regions").
		First(&agency, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Agency", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &agency, nil
}

func (r *agencyRepository) GetBySlug(ctx context.Context, slug string) (*models.Agency, error) {
	var agency models.Agency
	key := cache.AgencyKey(slug)

	err := cache.Aside(ctx, key, &agency, cache.AgencyTTL, func() error {
		if err := r.db.WithContext(ctx).
			Preload("Trades").
			Preload("Regions").
			Where("slug = ?", slug).
			First(&agency).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Agency", slug)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &agency, nil
}

func (r *agencyRepository) Create(ctx context.Context, agency *models.Agency) error {
	if err := r.db.WithContext(ctx).Create(agency).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("An agency with this slug already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *agencyRepository) Update(ctx context.Context, agency *models.Agency) error {
	if err := r.db.WithContext(ctx).Save(agency).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("An agency with this slug already exists")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateAgency(ctx, agency.Slug)
	return nil
}

func (r *agencyRepository) Delete(ctx context.Context, id uint) error {
	agency, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Delete(&models.Agency{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateAgency(ctx, agency.Slug)
	return nil
}

func (r *agencyRepository) List(ctx context.Context, params AgencyListParams) ([]models.Agency, int64, error) {
	filtered := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&models.Agency{})
		if params.Status != "" {
			query = query.Where("agencies.status = ?", params.Status)
		}
		if params.Search != "" {
			like := "%" + strings.ToLower(params.Search) + "%"
			query = query.Where("LOWER(agencies.name) LIKE ? OR LOWER(agencies.description) LIKE ?", like, like)
		}
		if params.Trade != "" {
			query = query.
				Joins("JOIN agency_trades ON agency_trades.agency_id = agencies.id").
				Joins("JOIN trades ON trades.id = agency_trades.trade_id").
				Where("LOWER(trades.name) = ?", strings.ToLower(params.Trade))
		}
		if params.Region != "" {
			query = query.
				Joins("JOIN agency_regions ON agency_regions.agency_id = agencies.id").
				Joins("JOIN regions ON regions.id = agency_regions.region_id").
				Where("LOWER(regions.name) = ?", strings.ToLower(params.Region))
		}
		return query
	}

	var total int64
	if err := filtered().Distinct("agencies.id").Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var agencies []models.Agency
	if err := filtered().Distinct("agencies.*").
		Preload("Trades").
		Preload("Regions").
		Order("agencies.name ASC").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&agencies).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return agencies, total, nil
}

func (r *agencyRepository) ListByOwner(ctx context.Context, ownerUserID uint) ([]models.Agency, error) {
	var agencies []models.Agency
	if err := r.db.WithContext(ctx).
		Where("owner_user_id = ?", ownerUserID).
		Order("name ASC").
		Find(&agencies).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return agencies, nil
}

// ReplaceTags resolves trade and region names to tag rows, creating missing
// ones, and replaces the agency's associations with the result.
func (r *agencyRepository) ReplaceTags(ctx context.Context, agency *models.Agency, trades, regions []string) error {
	db := r.db.WithContext(ctx)

	if trades != nil {
		resolved := make([]models.Trade, 0, len(trades))
		for _, name := range trades {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			var tag models.Trade
			if err := db.Where("name = ?", name).FirstOrCreate(&tag, models.Trade{Name: name}).Error; err != nil {
				return models.NewInternalError(err)
			}
			resolved = append(resolved, tag)
		}
		if err := db.Model(agency).Association("Trades").Replace(resolved); err != nil {
			return models.NewInternalError(err)
		}
		agency.Trades = resolved
	}

	if regions != nil {
		resolved := make([]models.Region, 0, len(regions))
		for _, name := range regions {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			var tag models.Region
			if err := db.Where("name = ?", name).FirstOrCreate(&tag, models.Region{Name: name}).Error; err != nil {
				return models.NewInternalError(err)
			}
			resolved = append(resolved, tag)
		}
		if err := db.Model(agency).Association("Regions").Replace(resolved); err != nil {
			return models.NewInternalError(err)
		}
		agency.Regions = resolved
	}

	cache.InvalidateAgency(ctx, agency.Slug)
	return nil
}
