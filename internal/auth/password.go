package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Password length rules. bcrypt silently ignores everything past 72 bytes,
// so longer passwords are rejected rather than quietly truncated.
const (
	MinPasswordLength = 8
	MaxPasswordBytes  = 72
)

// defaultCost is the bcrypt work factor: 2^12 rounds, roughly 250ms per hash
// on a modern server. Slow is the point; it makes offline guessing expensive.
const defaultCost = 12

var (
	// ErrInvalidPassword is returned by Verify on a mismatch.
	ErrInvalidPassword = errors.New("auth: invalid password")
	// ErrWeakPassword is returned by Hash when the password breaks the length rules.
	ErrWeakPassword = errors.New("auth: password does not meet length requirements")
)

// PasswordService hashes and verifies passwords with bcrypt.
//
// bcrypt embeds a random salt and the cost in its output:
//
//	$2a$12$<22-char salt><31-char hash>
//
// so the whole string goes into users.password_hash and nothing else is needed.
type PasswordService struct {
	cost int
}

// NewPasswordService uses the production cost.
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceForTest uses the given (low) cost so tests in other
// packages don't pay ~250ms per hash. Never use it in production.
func NewPasswordServiceForTest(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash validates the length rules and returns the bcrypt hash.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) < MinPasswordLength {
		return "", fmt.Errorf("%w: at least %d characters", ErrWeakPassword, MinPasswordLength)
	}
	if len(plaintext) > MaxPasswordBytes {
		return "", fmt.Errorf("%w: at most %d bytes", ErrWeakPassword, MaxPasswordBytes)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}
	return string(hashed), nil
}

// Verify returns nil when plaintext matches hash and ErrInvalidPassword when
// it doesn't. The comparison is constant-time.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidPassword
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}
