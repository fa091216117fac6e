package service

import (
	"context"
	"strings"

	"agencydesk/internal/models"
	"agencydesk/internal/repository"
)

type MessageService struct {
	messageRepo repository.MessageRepository
	agencyRepo  repository.AgencyRepository
}

func NewMessageService(messageRepo repository.MessageRepository, agencyRepo repository.AgencyRepository) *MessageService {
	return &MessageService{messageRepo: messageRepo, agencyRepo: agencyRepo}
}

const maxMessageBodyLen = 2000

// SubmitMessage posts a message to an agency listing. Suspended listings do
// not accept messages.
func (s *MessageService) SubmitMessage(ctx context.Context, agencyID, senderID uint, body string) (*models.AgencyMessage, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, models.NewValidationError("message body is required")
	}
	if len(body) > maxMessageBodyLen {
		return nil, models.NewValidationError("message body too long (max 2000 characters)")
	}

	agency, err := s.agencyRepo.GetByID(ctx, agencyID)
	if err != nil {
		return nil, err
	}
	if agency.Status != models.AgencyStatusActive {
		return nil, models.NewValidationError("agency is not accepting messages")
	}

	msg := &models.AgencyMessage{
		AgencyID:     agency.ID,
		SenderUserID: senderID,
		Body:         body,
		Status:       models.MessageStatusVisible,
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *MessageService) ListMessages(ctx context.Context, params repository.MessageListParams) ([]models.AgencyMessage, int64, error) {
	return s.messageRepo.List(ctx, params)
}

func (s *MessageService) ListVisibleByAgency(ctx context.Context, agencyID uint, limit, offset int) ([]models.AgencyMessage, error) {
	return s.messageRepo.ListVisibleByAgency(ctx, agencyID, limit, offset)
}

// Hide removes a message from public view. Any state can be hidden.
func (s *MessageService) Hide(ctx context.Context, id, moderatorID uint, note string) (*models.AgencyMessage, error) {
	return s.moderate(ctx, id, moderatorID, note, models.MessageStatusHidden)
}

// Flag marks a visible message for moderator attention. Hidden messages must
// be restored first.
func (s *MessageService) Flag(ctx context.Context, id, moderatorID uint, note string) (*models.AgencyMessage, error) {
	msg, err := s.messageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if msg.Status == models.MessageStatusHidden {
		return nil, models.NewValidationError("hidden messages cannot be flagged")
	}
	return s.applyModeration(ctx, msg, moderatorID, note, models.MessageStatusFlagged)
}

// Restore returns a hidden or flagged message to the visible state.
func (s *MessageService) Restore(ctx context.Context, id, moderatorID uint, note string) (*models.AgencyMessage, error) {
	msg, err := s.messageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if msg.Status == models.MessageStatusVisible {
		return nil, models.NewValidationError("message is already visible")
	}
	return s.applyModeration(ctx, msg, moderatorID, note, models.MessageStatusVisible)
}

func (s *MessageService) moderate(ctx context.Context, id, moderatorID uint, note string, status models.MessageStatus) (*models.AgencyMessage, error) {
	msg, err := s.messageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if msg.Status == status {
		return nil, models.NewValidationError("message is already " + string(status))
	}
	return s.applyModeration(ctx, msg, moderatorID, note, status)
}

func (s *MessageService) applyModeration(ctx context.Context, msg *models.AgencyMessage, moderatorID uint, note string, status models.MessageStatus) (*models.AgencyMessage, error) {
	msg.Status = status
	msg.ModeratedByID = &moderatorID
	msg.ModerationNote = strings.TrimSpace(note)
	if err := s.messageRepo.Update(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}
