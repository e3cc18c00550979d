// Package token issues and verifies signed reservation verification tokens.
// An approved reservation gets a token the requester can present at the space;
// verification only proves the token was issued for that reservation and has
// not expired — it never substitutes for the reservation's stored state.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Domain errors
var (
	ErrInvalidToken = errors.New("verification token is invalid")
	ErrExpiredToken = errors.New("verification token has expired")
)

// Claims carries the signed reservation facts.
type Claims struct {
	ReservationID string `json:"reservation_id"`
	SpaceID       string `json:"space_id"`
	Date          string `json:"date"`
	jwt.RegisteredClaims
}

// Service signs and verifies reservation tokens with HS256.
type Service struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
}

// NewService creates a token Service.
// PRE: secretKey is non-empty; ttl > 0
// POST: Returns a ready Service
func NewService(secretKey string, ttl time.Duration, now func() time.Time) *Service {
	return &Service{secretKey: []byte(secretKey), ttl: ttl, now: now}
}

// Issue signs a verification token for an approved reservation.
// PRE: reservationID is non-empty
// POST: Returns a signed compact JWT valid for the service TTL
func (s *Service) Issue(reservationID, spaceID, date string) (string, error) {
	now := s.now()
	claims := &Claims{
		ReservationID: reservationID,
		SpaceID:       spaceID,
		Date:          date,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("sign verification token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a verification token.
// PRE: tokenString is a compact JWT
// POST: Returns the claims, ErrExpiredToken, or ErrInvalidToken
func (s *Service) Verify(tokenString string) (Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secretKey, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpiredToken
		}
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}
