package service

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrCredentialMismatch = errors.New("credential mismatch")

// CredentialVerifier 密碼雜湊與比對
type CredentialVerifier interface {
	Hash(password string) (string, error)
	Verify(hash, password string) error
}

type BcryptVerifier struct {
	cost int
}

func NewBcryptVerifier(cost int) *BcryptVerifier {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptVerifier{cost: cost}
}

func (b *BcryptVerifier) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (b *BcryptVerifier) Verify(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrCredentialMismatch
		}
		return err
	}
	return nil
}

var _ CredentialVerifier = (*BcryptVerifier)(nil)
