// Package token implements the admin session token: a payload of
// issued-at/expiry signed with HMAC-SHA256 and carried as
// base64url(payload) "." base64url(signature). Possession of a valid,
// unexpired token is the sole authorization fact; there is no identity
// and no revocation.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

var (
	ErrMissing          = errors.New("token missing")
	ErrMalformed        = errors.New("token malformed")
	ErrInvalidBase64    = errors.New("token segment is not valid base64")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrInvalidPayload   = errors.New("payload is not valid JSON")
	ErrMissingClaims    = errors.New("payload missing claims")
	ErrExpired          = errors.New("token expired")
)

type Claims struct {
	IssuedAt  int64 `json:"iat"`
	ExpiresAt int64 `json:"exp"`
}

type Service struct {
	secret []byte
	ttl    time.Duration
}

func New(secret string, ttl time.Duration) *Service {
	return &Service{secret: []byte(secret), ttl: ttl}
}

// TTL returns the configured token lifetime, used for the cookie max-age.
func (s *Service) TTL() time.Duration { return s.ttl }

func (s *Service) Sign() (string, error) {
	now := time.Now()
	claims := Claims{
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.ttl).Unix(),
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}

	seg := base64.RawURLEncoding.EncodeToString(payload)
	return seg + "." + base64.RawURLEncoding.EncodeToString(s.sign(seg)), nil
}

func (s *Service) Verify(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrMissing
	}

	parts := strings.Split(tokenStr, ".")
	if len(parts) != 2 {
		return nil, ErrMalformed
	}

	sig, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, ErrInvalidBase64
	}
	// hmac.Equal is constant-time.
	if !hmac.Equal(sig, s.sign(parts[0])) {
		return nil, ErrInvalidSignature
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, ErrInvalidBase64
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, ErrInvalidPayload
	}
	if claims.IssuedAt == 0 || claims.ExpiresAt == 0 {
		return nil, ErrMissingClaims
	}
	if time.Now().Unix() >= claims.ExpiresAt {
		return nil, ErrExpired
	}

	return &claims, nil
}

func (s *Service) sign(payloadSegment string) []byte {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payloadSegment))
	return mac.Sum(nil)
}
