package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"studentms/internal/common"
	"studentms/internal/common/security"
	"studentms/internal/domain/model"
	"studentms/internal/domain/repository"
)

type contextKey string

const (
	UserCtxKey     contextKey = "user"
	UserIDCtxKey   contextKey = "userID"
	UserRoleCtxKey contextKey = "userRole"
)

// Authenticator validates the session token and looks the account up so that
// deleted or banned users are rejected even while holding a valid token.
func Authenticator(userRepo repository.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				switch {
				case errors.Is(err, jwtauth.ErrNoTokenFound):
					common.RespondWithErrorMessage(w, http.StatusUnauthorized, common.CodeMissingToken, "Authentication token required")
				case errors.Is(err, jwtauth.ErrExpired):
					common.RespondWithErrorMessage(w, http.StatusUnauthorized, common.CodeTokenExpired, "Session expired, please log in again")
				default:
					common.RespondWithErrorMessage(w, http.StatusUnauthorized, common.CodeInvalidToken, "Invalid authentication token")
				}
				return
			}
			if token == nil {
				common.RespondWithErrorMessage(w, http.StatusUnauthorized, common.CodeInvalidToken, "Invalid authentication token")
				return
			}

			userID, err := security.GetUserIDFromClaims(claims)
			if err != nil {
				common.RespondWithErrorMessage(w, http.StatusUnauthorized, common.CodeInvalidToken, "Invalid token claims")
				return
			}

			user, err := userRepo.FindByID(r.Context(), userID)
			if err != nil {
				if common.HTTPStatusFromError(err) == http.StatusNotFound {
					common.RespondWithErrorMessage(w, http.StatusUnauthorized, common.CodeUserNotFound, "User no longer exists")
				} else {
					common.RespondWithError(w, err)
				}
				return
			}
			if user.IsBanned {
				common.RespondWithErrorMessage(w, http.StatusForbidden, common.CodeUserBanned, "Account is banned")
				return
			}

			ctx := context.WithValue(r.Context(), UserCtxKey, user)
			ctx = context.WithValue(ctx, UserIDCtxKey, user.ID)
			ctx = context.WithValue(ctx, UserRoleCtxKey, user.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole allows the request through only when the authenticated user's
// role is in the allow list.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := r.Context().Value(UserRoleCtxKey).(string)
			if !ok {
				common.RespondWithErrorMessage(w, http.StatusUnauthorized, common.CodeAuthenticationRequired, "Authentication required")
				return
			}
			if _, ok := allowed[role]; !ok {
				common.RespondWithErrorMessage(w, http.StatusForbidden, common.CodeInsufficientPermissions, "You do not have permission to perform this action")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminOnly is shorthand for RequireRole(model.RoleAdmin).
func AdminOnly(next http.Handler) http.Handler {
	return RequireRole(model.RoleAdmin)(next)
}

// UserFromContext returns the authenticated user set by Authenticator.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(UserCtxKey).(*model.User)
	return user, ok
}

// UserIDFromContext returns the authenticated user's id.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserIDCtxKey).(string)
	return id, ok
}

// RoleFromContext returns the authenticated user's role.
func RoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(UserRoleCtxKey).(string)
	return role, ok
}
