package auth

import (
	"errors"
	"strings"
	"testing"
)

// Cost 4 is bcrypt's minimum: milliseconds per hash instead of ~250ms.
func newTestPasswordService() *PasswordService {
	return NewPasswordServiceForTest(4)
}

func TestHash_OutputLooksBcrypt(t *testing.T) {
	ps := newTestPasswordService()

	hash, err := ps.Hash("password123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("Hash() does not look like a bcrypt hash: %q", hash)
	}
}

func TestHash_SaltIsRandom(t *testing.T) {
	ps := newTestPasswordService()

	hash1, _ := ps.Hash("same-password")
	hash2, _ := ps.Hash("same-password")

	if hash1 == hash2 {
		t.Error("Hash() produced identical hashes for the same password")
	}
}

func TestHash_LengthRules(t *testing.T) {
	tests := []struct {
		name    string
		pw      string
		wantErr bool
	}{
		{"too short", "1234567", true},
		{"minimum", "12345678", false},
		{"exactly 72 bytes", strings.Repeat("a", 72), false},
		{"73 bytes", strings.Repeat("a", 73), true},
	}

	ps := newTestPasswordService()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ps.Hash(tt.pw)
			if tt.wantErr && !errors.Is(err, ErrWeakPassword) {
				t.Errorf("Hash() error = %v, want ErrWeakPassword", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Hash() unexpected error = %v", err)
			}
		})
	}
}

func TestVerify(t *testing.T) {
	ps := newTestPasswordService()
	hash, err := ps.Hash("correct-horse")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if err := ps.Verify(hash, "correct-horse"); err != nil {
		t.Errorf("Verify(correct) error = %v", err)
	}
	if err := ps.Verify(hash, "wrong-horse"); !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("Verify(wrong) error = %v, want ErrInvalidPassword", err)
	}
	if err := ps.Verify(hash, ""); !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("Verify(empty) error = %v, want ErrInvalidPassword", err)
	}
}

func TestVerify_GarbageHash(t *testing.T) {
	ps := newTestPasswordService()

	err := ps.Verify("not-a-bcrypt-hash", "whatever")
	if err == nil || errors.Is(err, ErrInvalidPassword) {
		t.Errorf("Verify() error = %v, want a non-mismatch error", err)
	}
}
