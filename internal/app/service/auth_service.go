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

	"github.com/google/uuid"
)

var emailPattern = regexp.MustCompile(`^[\w.+-]+@[\w-]+(\.[\w-]+)+$`)

type AuthService struct {
	userRepo         repository.UserRepository
	passwordMinLen   int
	lockoutThreshold int
	lockoutDuration  time.Duration
	now              func() time.Time
}

func NewAuthService(userRepo repository.UserRepository, passwordMinLen, lockoutThreshold int, lockoutDuration time.Duration) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		passwordMinLen:   passwordMinLen,
		lockoutThreshold: lockoutThreshold,
		lockoutDuration:  lockoutDuration,
		now:              time.Now,
	}
}

type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *AuthService) validateNewUser(username, email, password string) error {
	if username == "" || email == "" || password == "" {
		return common.NewError(http.StatusBadRequest, common.CodeMissingRequiredFields,
			"Username, email, and password are required")
	}
	if len(username) < 3 {
		return common.NewError(http.StatusBadRequest, common.CodeValidationError,
			"Username must be at least 3 characters long")
	}
	if !emailPattern.MatchString(email) {
		return common.NewError(http.StatusBadRequest, common.CodeValidationError,
			"Please enter a valid email")
	}
	if len(password) < s.passwordMinLen {
		return common.NewError(http.StatusBadRequest, common.CodeValidationError,
			fmt.Sprintf("Password must be at least %d characters long", s.passwordMinLen))
	}
	return nil
}

func (s *AuthService) createUser(ctx context.Context, username, email, password, role string) (*model.User, error) {
	// Pre-checks give precise duplicate codes; the unique indexes remain the backstop.
	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, common.NewError(http.StatusBadRequest, common.CodeDuplicateEmail,
			"User with this email already exists")
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		return nil, common.NewError(http.StatusBadRequest, common.CodeDuplicateUsername,
			"User with this username already exists")
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hashedPassword, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:             uuid.NewString(),
		Username:       username,
		Email:          email,
		HashedPassword: hashedPassword,
		Role:           role,
		Preferences:    model.DefaultPreferences(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Signup is public self-registration. The role is always Faculty regardless of input.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*model.User, error) {
	if err := s.validateNewUser(req.Username, req.Email, req.Password); err != nil {
		return nil, err
	}
	return s.createUser(ctx, req.Username, req.Email, req.Password, model.RoleFaculty)
}

// Register is the admin-only creation path and may choose the role. It returns a
// session token so the caller can attach the cookie.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*model.User, string, error) {
	if err := s.validateNewUser(req.Username, req.Email, req.Password); err != nil {
		return nil, "", err
	}
	role := req.Role
	if role == "" {
		role = model.RoleFaculty
	}
	if !model.IsValidRole(role) {
		return nil, "", common.NewError(http.StatusBadRequest, common.CodeValidationError,
			"Role must be either Admin or Faculty")
	}

	user, err := s.createUser(ctx, req.Username, req.Email, req.Password, role)
	if err != nil {
		return nil, "", err
	}
	token, err := security.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return user, token, nil
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*model.User, string, error) {
	if req.Email == "" && req.Username == "" {
		return nil, "", common.NewError(http.StatusBadRequest, common.CodeMissingCredentials,
			"Email or username is required")
	}
	if req.Password == "" {
		return nil, "", common.NewError(http.StatusBadRequest, common.CodeMissingPassword,
			"Password is required")
	}

	var user *model.User
	var err error
	if req.Email != "" {
		user, err = s.userRepo.FindByEmail(ctx, req.Email)
	} else {
		user, err = s.userRepo.FindByUsername(ctx, req.Username)
	}
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// Uniform response: never reveal whether the identity exists.
			return nil, "", common.NewError(http.StatusUnauthorized, common.CodeInvalidCredentials,
				"Invalid credentials")
		}
		return nil, "", fmt.Errorf("failed to find user: %w", err)
	}

	if user.IsBanned {
		return nil, "", common.NewError(http.StatusForbidden, common.CodeUserBanned,
			"Account is banned")
	}

	now := s.now()
	// Lockout pre-check happens before the password is consulted at all.
	if user.IsAccountLocked(now) {
		return nil, "", common.NewError(http.StatusUnauthorized, common.CodeAccountLocked,
			"Account is temporarily locked due to too many failed login attempts")
	}

	if !security.CheckPasswordHash(req.Password, user.HashedPassword) {
		if _, _, ferr := s.userRepo.RecordLoginFailure(ctx, user.ID, s.lockoutThreshold, now.Add(s.lockoutDuration)); ferr != nil {
			return nil, "", fmt.Errorf("failed to record login failure: %w", ferr)
		}
		return nil, "", common.NewError(http.StatusUnauthorized, common.CodeInvalidCredentials,
			"Invalid credentials")
	}

	// Unconditional reset, even if no failures were recorded. Also stamps last_login.
	if err := s.userRepo.ResetLoginFailures(ctx, user.ID, now); err != nil {
		return nil, "", fmt.Errorf("failed to reset login failures: %w", err)
	}

	token, err := security.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return user, token, nil
}
