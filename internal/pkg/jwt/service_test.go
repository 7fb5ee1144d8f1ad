package jwt

import (
	"errors"
	"testing"
	"time"

	"careernest/internal/domain/user"

	"github.com/google/uuid"
)

func newTestService() *HMACService {
	return NewHMACService("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()
	companyID := uuid.New()

	token, err := svc.GenerateAccessToken(userID, user.RoleCompany, &companyID)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("user id mismatch: %s", claims.UserID)
	}
	if claims.Role != user.RoleCompany {
		t.Fatalf("role mismatch: %s", claims.Role)
	}
	if claims.CompanyID == nil || *claims.CompanyID != companyID {
		t.Fatalf("company id mismatch: %v", claims.CompanyID)
	}
	if svc.IsRefreshToken(claims) {
		t.Fatalf("access token classified as refresh")
	}
}

func TestRefreshTokenIsClassified(t *testing.T) {
	svc := newTestService()

	token, err := svc.GenerateRefreshToken(uuid.New())
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !svc.IsRefreshToken(claims) {
		t.Fatalf("refresh token not classified as refresh")
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := newTestService().GenerateAccessToken(uuid.New(), user.RoleApplicant, nil)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	other := NewHMACService("other-access", "other-refresh", 15*time.Minute, 7*24*time.Hour)
	if _, err := other.ValidateToken(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestValidateToken_Expired(t *testing.T) {
	svc := newTestService()
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, err := svc.GenerateAccessToken(uuid.New(), user.RoleApplicant, nil)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if _, err := svc.ValidateToken(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestValidateToken_Garbage(t *testing.T) {
	if _, err := newTestService().ValidateToken("not.a.jwt"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}
