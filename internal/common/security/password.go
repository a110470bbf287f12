package security

import (
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is fixed; bcrypt bakes a random salt into every hash so two hashes of
// the same plaintext differ while both still verify.
const bcryptCost = 10

// PasswordHistorySize bounds how many prior hashes are kept per user.
const PasswordHistorySize = 5

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IsPasswordInHistory reports whether the candidate plaintext matches any stored
// prior hash.
func IsPasswordInHistory(candidate string, history []string) bool {
	for _, oldHash := range history {
		if CheckPasswordHash(candidate, oldHash) {
			return true
		}
	}
	return false
}

// PushPasswordHistory front-inserts oldHash unless already present and truncates to
// PasswordHistorySize entries, most recent first.
func PushPasswordHistory(history []string, oldHash string) []string {
	if oldHash == "" {
		return history
	}
	for _, h := range history {
		if h == oldHash {
			return history
		}
	}
	updated := append([]string{oldHash}, history...)
	if len(updated) > PasswordHistorySize {
		updated = updated[:PasswordHistorySize]
	}
	return updated
}
