package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

const (
	RoleAdmin   = "Admin"
	RoleFaculty = "Faculty"
)

func IsValidRole(role string) bool {
	return role == RoleAdmin || role == RoleFaculty
}

// Profile is self-service descriptive data, stored as JSONB.
type Profile struct {
	FirstName      string     `json:"first_name,omitempty"`
	LastName       string     `json:"last_name,omitempty"`
	Contact        string     `json:"contact,omitempty"`
	ProfilePicture string     `json:"profile_picture,omitempty"`
	DateOfBirth    *time.Time `json:"date_of_birth,omitempty"`
	Address        string     `json:"address,omitempty"`
}

// Preferences is self-service display configuration, stored as JSONB.
type Preferences struct {
	Theme              string `json:"theme"`
	Language           string `json:"language"`
	DateFormat         string `json:"date_format"`
	ItemsPerPage       int    `json:"items_per_page"`
	EmailNotifications bool   `json:"email_notifications"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		Theme:              "light",
		Language:           "en",
		DateFormat:         "MM/DD/YYYY",
		ItemsPerPage:       10,
		EmailNotifications: true,
	}
}

// PasswordHistory holds up to the last 5 prior password hashes, most recent first.
type PasswordHistory []string

type User struct {
	ID                  string          `json:"id"`
	Username            string          `json:"username"`
	Email               string          `json:"email"`
	HashedPassword      string          `json:"-"`
	Role                string          `json:"role"`
	Profile             Profile         `json:"profile"`
	Preferences         Preferences     `json:"preferences"`
	PasswordChangedAt   *time.Time      `json:"password_changed_at,omitempty"`
	PasswordHistory     PasswordHistory `json:"-"`
	FailedLoginAttempts int             `json:"-"`
	LockedUntil         *time.Time      `json:"-"`
	TwoFactorEnabled    bool            `json:"two_factor_enabled"`
	TwoFactorSecret     string          `json:"-"`
	LastLogin           *time.Time      `json:"last_login,omitempty"`
	IsBanned            bool            `json:"is_banned"`
	BannedAt            *time.Time      `json:"banned_at,omitempty"`
	BannedBy            *string         `json:"banned_by,omitempty"`
	BanReason           string          `json:"ban_reason,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// IsAccountLocked reports whether a lockout window is still open.
func (u *User) IsAccountLocked(now time.Time) bool {
	return u.LockedUntil != nil && u.LockedUntil.After(now)
}

// UserSummary is the identity subset returned by auth endpoints.
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

func (p Profile) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *Profile) Scan(src interface{}) error {
	return scanJSON(src, p)
}

func (p Preferences) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *Preferences) Scan(src interface{}) error {
	return scanJSON(src, p)
}

func (h PasswordHistory) Value() (driver.Value, error) {
	if h == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal(h)
}

func (h *PasswordHistory) Scan(src interface{}) error {
	return scanJSON(src, h)
}

func scanJSON(src, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return errors.New("unsupported source type for JSONB scan")
	}
}
