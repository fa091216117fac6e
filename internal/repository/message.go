package repository

import (
	"context"
	"errors"
	"strings"

	"agencydesk/internal/models"

	"gorm.io/gorm"
)

// MessageListParams filters the admin moderation queue.
type MessageListParams struct {
	AgencyID uint
	Status   models.MessageStatus
	Search   string
	Limit    int
	Offset   int
}

// MessageRepository defines persistence operations for agency messages.
type MessageRepository interface {
	GetByID(ctx context.Context, id uint) (*models.AgencyMessage, error)
	Create(ctx context.Context, msg *models.AgencyMessage) error
	Update(ctx context.Context, msg *models.AgencyMessage) error
	List(ctx context.Context, params MessageListParams) ([]models.AgencyMessage, int64, error)
	ListVisibleByAgency(ctx context.Context, agencyID uint, limit, offset int) ([]models.AgencyMessage, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository returns a new MessageRepository implementation.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) GetByID(ctx context.Context, id uint) (*models.AgencyMessage, error) {
	var msg models.AgencyMessage
	if err := r.db.WithContext(ctx).
		Preload("Agency").
		Preload("SenderUser").
		First(&msg, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Message", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &msg, nil
}

func (r *messageRepository) Create(ctx context.Context, msg *models.AgencyMessage) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *messageRepository) Update(ctx context.Context, msg *models.AgencyMessage) error {
	if err := r.db.WithContext(ctx).Save(msg).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *messageRepository) List(ctx context.Context, params MessageListParams) ([]models.AgencyMessage, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.AgencyMessage{})

	if params.AgencyID != 0 {
		query = query.Where("agency_id = ?", params.AgencyID)
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.Search != "" {
		like := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(body) LIKE ?", like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var msgs []models.AgencyMessage
	if err := query.
		Preload("Agency").
		Preload("SenderUser").
		Order("created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&msgs).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return msgs, total, nil
}

func (r *messageRepository) ListVisibleByAgency(ctx context.Context, agencyID uint, limit, offset int) ([]models.AgencyMessage, error) {
	var msgs []models.AgencyMessage
	if err := r.db.WithContext(ctx).
		Preload("SenderUser").
		Where("agency_id = ? AND status <> ?", agencyID, models.MessageStatusHidden).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&msgs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return msgs, nil
}
