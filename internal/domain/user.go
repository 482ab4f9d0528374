package domain

import (
	"errors"
	"time"
)

// Common validation errors for users.
var (
	ErrEmptyUsername   = errors.New("username cannot be empty")
	ErrEmptyKeyPrefix  = errors.New("api key prefix cannot be empty")
	ErrEmptyKeyHash    = errors.New("api key hash cannot be empty")
	ErrAPIKeyTooShort  = errors.New("api key must be at least 10 characters long")
	ErrAPIKeyTooLong   = errors.New("api key must be at most 72 characters long")
	ErrInvalidKeyChars = errors.New("api key may only contain printable ASCII characters")
)

// APIKeyPrefixLength is the number of leading characters of an API key that
// are stored in clear and used to find the candidate user before the bcrypt
// comparison.
const APIKeyPrefixLength = 8

// User is a consumer of the API identified by an API key. The key itself is
// never stored, only its prefix and a bcrypt hash.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	APIKeyPrefix string    `json:"-"`
	APIKeyHash   string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Validate checks the stored representation of a user.
func (u *User) Validate() error {
	if u.Username == "" {
		return ErrEmptyUsername
	}
	if u.APIKeyPrefix == "" {
		return ErrEmptyKeyPrefix
	}
	if u.APIKeyHash == "" {
		return ErrEmptyKeyHash
	}
	return nil
}

// ValidateAPIKey checks a plaintext key before it is hashed. bcrypt ignores
// anything past 72 bytes so longer keys are refused outright.
func ValidateAPIKey(key string) error {
	if len(key) < 10 {
		return ErrAPIKeyTooShort
	}
	if len(key) > 72 {
		return ErrAPIKeyTooLong
	}
	for _, r := range key {
		if r < 0x21 || r > 0x7e {
			return ErrInvalidKeyChars
		}
	}
	return nil
}

// APIKeyPrefix returns the lookup prefix for a plaintext key.
func APIKeyPrefix(key string) string {
	if len(key) <= APIKeyPrefixLength {
		return key
	}
	return key[:APIKeyPrefixLength]
}
