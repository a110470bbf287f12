package service

import (
	"context"
	"strings"
	"time"

	"studentms/internal/common"
	"studentms/internal/domain/model"
	"studentms/internal/domain/repository"
)

type fakeUserRepo struct {
	users map[string]*model.User

	failureCalls int
	resetCalls   int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, user.Email) {
			return common.NewError(400, common.CodeDuplicateEmail, "User with this email already exists")
		}
		if u.Username == user.Username {
			return common.NewError(400, common.CodeDuplicateUsername, "User with this username already exists")
		}
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeUserRepo) List(ctx context.Context, filter repository.ListUsersFilter) ([]model.User, int, error) {
	var out []model.User
	for _, u := range f.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Search != "" &&
			!strings.Contains(strings.ToLower(u.Username), strings.ToLower(filter.Search)) &&
			!strings.Contains(strings.ToLower(u.Email), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (f *fakeUserRepo) UpdateProfile(ctx context.Context, id string, profile model.Profile) error {
	u, ok := f.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.Profile = profile
	return nil
}

func (f *fakeUserRepo) UpdatePreferences(ctx context.Context, id string, prefs model.Preferences) error {
	u, ok := f.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.Preferences = prefs
	return nil
}

func (f *fakeUserRepo) UpdatePassword(ctx context.Context, id, newHash string, history model.PasswordHistory, changedAt time.Time) error {
	u, ok := f.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.HashedPassword = newHash
	u.PasswordHistory = history
	changed := changedAt
	u.PasswordChangedAt = &changed
	return nil
}

func (f *fakeUserRepo) RecordLoginFailure(ctx context.Context, id string, threshold int, lockUntil time.Time) (int, *time.Time, error) {
	f.failureCalls++
	u, ok := f.users[id]
	if !ok {
		return 0, nil, common.ErrNotFound
	}
	u.FailedLoginAttempts++
	if u.FailedLoginAttempts >= threshold {
		until := lockUntil
		u.LockedUntil = &until
		return u.FailedLoginAttempts, &until, nil
	}
	return u.FailedLoginAttempts, nil, nil
}

func (f *fakeUserRepo) ResetLoginFailures(ctx context.Context, id string, lastLogin time.Time) error {
	f.resetCalls++
	u, ok := f.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	u.LastLogin = &lastLogin
	return nil
}

func (f *fakeUserRepo) Ban(ctx context.Context, id, bannedBy, reason string, at time.Time) error {
	u, ok := f.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.IsBanned = true
	u.BannedAt = &at
	u.BannedBy = &bannedBy
	u.BanReason = reason
	return nil
}

func (f *fakeUserRepo) Unban(ctx context.Context, id string) error {
	u, ok := f.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.IsBanned = false
	u.BannedAt = nil
	u.BannedBy = nil
	u.BanReason = ""
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.users[id]; !ok {
		return common.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) Stats(ctx context.Context, recentSince time.Time) (*model.UserStats, error) {
	stats := &model.UserStats{}
	for _, u := range f.users {
		stats.TotalUsers++
		if u.IsBanned {
			stats.BannedUsers++
		} else {
			stats.ActiveUsers++
		}
		if u.Role == model.RoleAdmin {
			stats.TotalAdmins++
		} else {
			stats.TotalFaculty++
		}
		if u.LastLogin != nil && u.LastLogin.After(recentSince) {
			stats.RecentUsers++
		}
	}
	return stats, nil
}
