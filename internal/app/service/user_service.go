package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"studentms/internal/common"
	"studentms/internal/domain/model"
	"studentms/internal/domain/repository"
	"time"
)

type UserService struct {
	userRepo repository.UserRepository
	now      func() time.Time
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo, now: time.Now}
}

func (s *UserService) List(ctx context.Context, role, search string, page, limit int) ([]model.User, common.Pagination, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	if role != "" && !model.IsValidRole(role) {
		role = ""
	}
	users, total, err := s.userRepo.List(ctx, repository.ListUsersFilter{
		Role:   role,
		Search: search,
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return nil, common.Pagination{}, err
	}
	return users, common.NewPagination(page, limit, total), nil
}

func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewError(http.StatusNotFound, common.CodeUserNotFound, "User not found")
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) Ban(ctx context.Context, actorID, targetID, reason string) (*model.User, error) {
	if targetID == actorID {
		return nil, common.NewError(http.StatusBadRequest, common.CodeCannotBanSelf, "You cannot ban yourself")
	}
	user, err := s.Get(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if user.IsBanned {
		return nil, common.NewError(http.StatusBadRequest, common.CodeUserAlreadyBanned, "User is already banned")
	}
	if reason == "" {
		reason = "No reason provided"
	}
	at := s.now()
	if err := s.userRepo.Ban(ctx, targetID, actorID, reason, at); err != nil {
		return nil, fmt.Errorf("failed to ban user: %w", err)
	}
	user.IsBanned = true
	user.BannedAt = &at
	user.BannedBy = &actorID
	user.BanReason = reason
	return user, nil
}

func (s *UserService) Unban(ctx context.Context, targetID string) (*model.User, error) {
	user, err := s.Get(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if !user.IsBanned {
		return nil, common.NewError(http.StatusBadRequest, common.CodeUserNotBanned, "User is not banned")
	}
	if err := s.userRepo.Unban(ctx, targetID); err != nil {
		return nil, fmt.Errorf("failed to unban user: %w", err)
	}
	user.IsBanned = false
	user.BannedAt = nil
	user.BannedBy = nil
	user.BanReason = ""
	return user, nil
}

// Delete removes the identity immediately. There is no soft delete.
func (s *UserService) Delete(ctx context.Context, actorID, targetID string) (*model.User, error) {
	if targetID == actorID {
		return nil, common.NewError(http.StatusBadRequest, common.CodeCannotDeleteSelf, "You cannot delete yourself")
	}
	user, err := s.Get(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Delete(ctx, targetID); err != nil {
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}
	return user, nil
}

func (s *UserService) Stats(ctx context.Context) (*model.UserStats, error) {
	return s.userRepo.Stats(ctx, s.now().AddDate(0, 0, -7))
}
