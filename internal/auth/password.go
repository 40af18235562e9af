package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// defaultCost is the bcrypt work factor used for stored user passwords.
// Cost 10 (2^10 rounds) is bcrypt.DefaultCost and what the stored hashes in
// existing users.json files were produced with.
const defaultCost = 10

// maxPasswordBytes is the bcrypt input limit. Longer inputs would be
// silently truncated by the algorithm, so they are rejected instead.
const maxPasswordBytes = 72

var (
	ErrPasswordTooLong  = errors.New("auth: password must be 72 bytes or fewer")
	ErrPasswordMismatch = errors.New("auth: invalid password")
)

// PasswordService provides bcrypt hashing and verification.
//
// It's a struct (not free functions) so that the cost can be injected
// in tests; cost 4 keeps the suite fast without changing the logic.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the default cost.
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceForTest creates a PasswordService with a caller-chosen
// cost, normally bcrypt.MinCost. Do NOT use in production.
func NewPasswordServiceForTest(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash hashes the given plaintext password with bcrypt.
//
// The output is a self-contained string like:
//
//	$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy
//
// It embeds the salt and cost, so it is stored as-is in the user record.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify checks whether a plaintext password matches a stored bcrypt hash.
//
// Returns nil on a match and ErrPasswordMismatch when the password is wrong.
// Any other error means the stored hash itself could not be decoded.
// The comparison inside bcrypt is constant-time.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}
