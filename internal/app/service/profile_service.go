package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"studentms/internal/common"
	"studentms/internal/common/security"
	"studentms/internal/domain/model"
	"studentms/internal/domain/repository"
	"time"
)

var contactPattern = regexp.MustCompile(`^\d{10}$`)

type ProfileService struct {
	userRepo       repository.UserRepository
	passwordMinLen int
	now            func() time.Time
}

func NewProfileService(userRepo repository.UserRepository, passwordMinLen int) *ProfileService {
	return &ProfileService{userRepo: userRepo, passwordMinLen: passwordMinLen, now: time.Now}
}

type UpdateProfileRequest struct {
	FirstName      *string    `json:"first_name,omitempty"`
	LastName       *string    `json:"last_name,omitempty"`
	Contact        *string    `json:"contact,omitempty"`
	ProfilePicture *string    `json:"profile_picture,omitempty"`
	DateOfBirth    *time.Time `json:"date_of_birth,omitempty"`
	Address        *string    `json:"address,omitempty"`
}

type UpdatePreferencesRequest struct {
	Theme              *string `json:"theme,omitempty"`
	Language           *string `json:"language,omitempty"`
	DateFormat         *string `json:"date_format,omitempty"`
	ItemsPerPage       *int    `json:"items_per_page,omitempty"`
	EmailNotifications *bool   `json:"email_notifications,omitempty"`
}

func (s *ProfileService) Get(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewError(http.StatusNotFound, common.CodeUserNotFound, "User not found")
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile merges the provided fields onto the stored profile.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*model.User, error) {
	if req.Contact != nil && *req.Contact != "" && !contactPattern.MatchString(*req.Contact) {
		return nil, common.NewError(http.StatusBadRequest, common.CodeInvalidContact, "Contact must be 10 digits")
	}

	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := user.Profile
	if req.FirstName != nil {
		profile.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		profile.LastName = *req.LastName
	}
	if req.Contact != nil {
		profile.Contact = *req.Contact
	}
	if req.ProfilePicture != nil {
		profile.ProfilePicture = *req.ProfilePicture
	}
	if req.DateOfBirth != nil {
		profile.DateOfBirth = req.DateOfBirth
	}
	if req.Address != nil {
		profile.Address = *req.Address
	}

	if err := s.userRepo.UpdateProfile(ctx, userID, profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	user.Profile = profile
	return user, nil
}

func (s *ProfileService) GetPreferences(ctx context.Context, userID string) (model.Preferences, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return model.Preferences{}, err
	}
	return user.Preferences, nil
}

func (s *ProfileService) UpdatePreferences(ctx context.Context, userID string, req UpdatePreferencesRequest) (model.Preferences, error) {
	if req.Theme != nil && *req.Theme != "light" && *req.Theme != "dark" {
		return model.Preferences{}, common.NewError(http.StatusBadRequest, common.CodeInvalidTheme, "Invalid theme value")
	}
	if req.ItemsPerPage != nil && (*req.ItemsPerPage < 5 || *req.ItemsPerPage > 100) {
		return model.Preferences{}, common.NewError(http.StatusBadRequest, common.CodeInvalidItemsPerPage,
			"Items per page must be between 5 and 100")
	}

	user, err := s.Get(ctx, userID)
	if err != nil {
		return model.Preferences{}, err
	}

	prefs := user.Preferences
	if req.Theme != nil {
		prefs.Theme = *req.Theme
	}
	if req.Language != nil {
		prefs.Language = *req.Language
	}
	if req.DateFormat != nil {
		prefs.DateFormat = *req.DateFormat
	}
	if req.ItemsPerPage != nil {
		prefs.ItemsPerPage = *req.ItemsPerPage
	}
	if req.EmailNotifications != nil {
		prefs.EmailNotifications = *req.EmailNotifications
	}

	if err := s.userRepo.UpdatePreferences(ctx, userID, prefs); err != nil {
		return model.Preferences{}, fmt.Errorf("failed to update preferences: %w", err)
	}
	return prefs, nil
}

// ChangePassword runs the full lifecycle as one visible sequence: verify the current
// password, check length, reject recent reuse, capture the old hash into history,
// then hash and persist the new password.
func (s *ProfileService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return common.NewError(http.StatusBadRequest, common.CodeMissingPasswords,
			"Current password and new password are required")
	}
	if len(newPassword) < s.passwordMinLen {
		return common.NewError(http.StatusBadRequest, common.CodePasswordTooShort,
			fmt.Sprintf("New password must be at least %d characters long", s.passwordMinLen))
	}

	user, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}

	if !security.CheckPasswordHash(currentPassword, user.HashedPassword) {
		return common.NewError(http.StatusBadRequest, common.CodeIncorrectPassword,
			"Current password is incorrect")
	}
	// The current hash is not in history yet, so check it explicitly.
	if security.CheckPasswordHash(newPassword, user.HashedPassword) ||
		security.IsPasswordInHistory(newPassword, user.PasswordHistory) {
		return common.NewError(http.StatusBadRequest, common.CodePasswordInHistory,
			"Cannot reuse a recent password. Please choose a different password.")
	}

	// The old hash goes into history before the new one overwrites it.
	history := security.PushPasswordHistory(user.PasswordHistory, user.HashedPassword)

	newHash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, newHash, history, s.now()); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (s *ProfileService) UpdateAvatar(ctx context.Context, userID, profilePicture string) (string, error) {
	if profilePicture == "" {
		return "", common.NewError(http.StatusBadRequest, common.CodeMissingProfilePicture,
			"Profile picture data is required")
	}
	user, err := s.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	profile := user.Profile
	profile.ProfilePicture = profilePicture
	if err := s.userRepo.UpdateProfile(ctx, userID, profile); err != nil {
		return "", fmt.Errorf("failed to update avatar: %w", err)
	}
	return profilePicture, nil
}
