package security_test

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/security"
)

const testSecret = "test-secret-key-with-32-chars!!"

func TestJWTManager_GenerateAndValidate(t *testing.T) {
	manager := security.NewJWTManager(testSecret, 15*time.Minute)

	token, expiresAt, err := manager.GenerateOperatorToken("alice")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	if token == "" {
		t.Error("token is empty")
	}

	if time.Until(expiresAt) > 15*time.Minute || time.Until(expiresAt) < 14*time.Minute {
		t.Errorf("unexpected expiry %v", expiresAt)
	}

	claims, err := manager.ValidateOperatorToken(token)
	if err != nil {
		t.Fatalf("failed to validate token: %v", err)
	}

	if claims.Subject != "alice" {
		t.Errorf("subject mismatch: got %v, want alice", claims.Subject)
	}

	if claims.Role != security.RoleOperator {
		t.Errorf("role mismatch: got %v, want %v", claims.Role, security.RoleOperator)
	}
}

func TestJWTManager_InvalidToken(t *testing.T) {
	manager := security.NewJWTManager(testSecret, 15*time.Minute)

	if _, err := manager.ValidateOperatorToken("invalid-token"); err == nil {
		t.Error("expected error for invalid token, got nil")
	}

	if _, err := manager.ValidateOperatorToken(""); err == nil {
		t.Error("expected error for empty token, got nil")
	}

	otherManager := security.NewJWTManager("different-secret-key-32-chars!!", 15*time.Minute)
	token, _, _ := otherManager.GenerateOperatorToken("mallory")

	if _, err := manager.ValidateOperatorToken(token); err == nil {
		t.Error("expected error for token signed with different secret, got nil")
	}
}

func TestJWTManager_Expired(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	claims := security.Claims{
		Role: security.RoleOperator,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "bob",
			Issuer:    "tradechat",
			ExpiresAt: jwt.NewNumericDate(past),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatal(err)
	}

	manager := security.NewJWTManager(testSecret, time.Minute)
	if _, err := manager.ValidateOperatorToken(token); err == nil {
		t.Error("expected error for expired token, got nil")
	}
}

func TestJWTManager_WrongRole(t *testing.T) {
	claims := security.Claims{
		Role: "viewer",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "tradechat",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))

	manager := security.NewJWTManager(testSecret, time.Minute)
	if _, err := manager.ValidateOperatorToken(token); err == nil {
		t.Error("expected error for non-operator token, got nil")
	}
}

func TestJWTManager_NoSecret(t *testing.T) {
	manager := security.NewJWTManager("", time.Minute)

	if manager.Enabled() {
		t.Error("manager without secret should be disabled")
	}

	if _, _, err := manager.GenerateOperatorToken("x"); !errors.Is(err, security.ErrNoSecret) {
		t.Errorf("expected ErrNoSecret, got %v", err)
	}

	if _, err := manager.ValidateOperatorToken("x"); !errors.Is(err, security.ErrNoSecret) {
		t.Errorf("expected ErrNoSecret, got %v", err)
	}
}

func TestJWTManager_TTL(t *testing.T) {
	if got := security.NewJWTManager(testSecret, 30*time.Minute).TTL(); got != 30*time.Minute {
		t.Errorf("ttl mismatch: got %v", got)
	}
	if got := security.NewJWTManager(testSecret, 0).TTL(); got != time.Hour {
		t.Errorf("default ttl mismatch: got %v", got)
	}
}

func BenchmarkJWTGeneration(b *testing.B) {
	manager := security.NewJWTManager("benchmark-secret-key-32-chars!!", 15*time.Minute)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = manager.GenerateOperatorToken("bench")
	}
}
