package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/hbnb-project/hbnb/backend/internal/domain/providers"
	apperrors "github.com/hbnb-project/hbnb/backend/pkg/errors"
)

// ErrPasswordMismatch is returned by Compare when the password is wrong.
var ErrPasswordMismatch = errors.New("password mismatch")

// BcryptHasher hashes passwords with bcrypt
type BcryptHasher struct {
	cost int
}

var _ providers.PasswordHasher = (*BcryptHasher)(nil)

// NewBcryptHasher creates a hasher. Out-of-range costs fall back to bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash hashes password. bcrypt only reads the first 72 bytes; longer input is rejected by the library.
func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", apperrors.NewFieldValidationError("password", "Password cannot exceed 72 bytes")
		}
		return "", apperrors.NewInternalError("failed to hash password", err)
	}
	return string(hash), nil
}

func (h *BcryptHasher) Compare(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return err
}
