package token

import (
	"errors"
	"testing"
	"time"
)

var tokenNow = time.Date(2026, 3, 2, 9, 15, 0, 0, time.UTC)

func TestIssueAndVerify(t *testing.T) {
	svc := NewService("test-secret", time.Hour, func() time.Time { return tokenNow })

	signed, err := svc.Issue("res-1", "lab-1", "2026-03-04")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := svc.Verify(signed)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.ReservationID != "res-1" || claims.SpaceID != "lab-1" || claims.Date != "2026-03-04" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestVerifyExpired(t *testing.T) {
	issuer := NewService("test-secret", time.Hour, func() time.Time { return tokenNow })
	signed, err := issuer.Issue("res-1", "lab-1", "2026-03-04")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	later := NewService("test-secret", time.Hour, func() time.Time { return tokenNow.Add(2 * time.Hour) })
	if _, err := later.Verify(signed); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("expected ErrExpiredToken, got %v", err)
	}
}

func TestVerifyTampered(t *testing.T) {
	svc := NewService("test-secret", time.Hour, func() time.Time { return tokenNow })
	signed, err := svc.Issue("res-1", "lab-1", "2026-03-04")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	otherKey := NewService("another-secret", time.Hour, func() time.Time { return tokenNow })
	if _, err := otherKey.Verify(signed); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for wrong key, got %v", err)
	}
	if _, err := svc.Verify(signed + "x"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for tampered token, got %v", err)
	}
}
