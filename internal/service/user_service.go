// Package service contains business logic between handlers and repositories.
package service

import (
	"context"
	"errors"
	"strings"

	"agencydesk/internal/cache"
	"agencydesk/internal/models"
	"agencydesk/internal/repository"

	"gorm.io/gorm"
)

type UserService struct {
	db         *gorm.DB
	userRepo   repository.UserRepository
	agencyRepo repository.AgencyRepository
}

func NewUserService(db *gorm.DB, userRepo repository.UserRepository, agencyRepo repository.AgencyRepository) *UserService {
	return &UserService{db: db, userRepo: userRepo, agencyRepo: agencyRepo}
}

type ChangeRoleInput struct {
	TargetID  uint
	NewRole   string
	Reason    string
	ChangedBy uint
}

func (s *UserService) ListUsers(ctx context.Context, search string, limit, offset int) ([]models.User, int64, error) {
	return s.userRepo.List(ctx, search, limit, offset)
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) RoleAudit(ctx context.Context, userID uint) ([]models.RoleChangeAudit, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.userRepo.ListRoleAudit(ctx, userID)
}

// ChangeRole updates a user's role and records the transition in the audit
// trail. The update and the audit row are written in one transaction.
func (s *UserService) ChangeRole(ctx context.Context, in ChangeRoleInput) (*models.User, error) {
	if !models.ValidUserRole(in.NewRole) {
		return nil, models.NewValidationError("Unknown role: " + in.NewRole)
	}
	if in.TargetID == in.ChangedBy {
		return nil, models.NewValidationError("cannot change your own role")
	}

	var updated models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&updated, in.TargetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", in.TargetID)
			}
			return models.NewInternalError(err)
		}

		newRole := models.UserRole(in.NewRole)
		if updated.Role == newRole {
			return models.NewValidationError("user already has this role")
		}

		audit := models.RoleChangeAudit{
			UserID:      updated.ID,
			OldRole:     updated.Role,
			NewRole:     newRole,
			ChangedByID: in.ChangedBy,
			Reason:      strings.TrimSpace(in.Reason),
		}
		if err := tx.Create(&audit).Error; err != nil {
			return models.NewInternalError(err)
		}

		updated.Role = newRole
		if err := tx.Save(&updated).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateUser(ctx, updated.ID)
	return &updated, nil
}

// DeleteUser soft-deletes a user account. Deletion is blocked with a conflict
// while the user still owns claimed agencies; the conflict details carry the
// agency names so the caller can show which listings stand in the way.
func (s *UserService) DeleteUser(ctx context.Context, targetID, deletedBy uint) error {
	if targetID == deletedBy {
		return models.NewValidationError("cannot delete your own account")
	}

	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return err
	}

	owned, err := s.agencyRepo.ListByOwner(ctx, targetID)
	if err != nil {
		return err
	}
	if len(owned) > 0 {
		names := make([]string, len(owned))
		for i, a := range owned {
			names[i] = a.Name
		}
		return models.NewConflictError(
			"User owns claimed agencies and cannot be deleted",
			map[string]any{"claimed_agencies": names},
		)
	}

	return s.userRepo.Delete(ctx, targetID)
}
