package admin

import (
	"errors"

	"dayspa/internal/pkg/jwt"
	"dayspa/internal/pkg/token"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Service authenticates the shared admin password and mints tokens: the
// HMAC cookie token for the dashboard, and named staff bearer tokens for
// the counter.
type Service struct {
	passwordHash []byte
	tokens       *token.Service
	staffTokens  *jwt.Service
}

func NewService(passwordHash string, tokens *token.Service, staffTokens *jwt.Service) *Service {
	return &Service{
		passwordHash: []byte(passwordHash),
		tokens:       tokens,
		staffTokens:  staffTokens,
	}
}

func (s *Service) Login(password string) (string, error) {
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.tokens.Sign()
}

func (s *Service) TokenTTLSeconds() int {
	return int(s.tokens.TTL().Seconds())
}

func (s *Service) MintStaffToken(name string) (string, error) {
	return s.staffTokens.GenerateToken(name, "staff")
}
