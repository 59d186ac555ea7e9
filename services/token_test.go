package services

import (
	"os"
	"testing"

	"main/utils"
)

func initTestJWT(t *testing.T) {
	t.Helper()
	os.Setenv("GO_ENV", "test")
	utils.InitJWT()
}

func TestGenerateAndParseToken(t *testing.T) {
	initTestJWT(t)

	token, err := GenerateToken("user-123", "someone@example.com")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}

	if claims["user_id"] != "user-123" {
		t.Errorf("user_id claim = %v, want user-123", claims["user_id"])
	}
	if claims["email"] != "someone@example.com" {
		t.Errorf("email claim = %v, want someone@example.com", claims["email"])
	}
	if claims["iss"] != TokenIssuer {
		t.Errorf("iss claim = %v, want %q", claims["iss"], TokenIssuer)
	}
	if _, tagged := claims["type"]; tagged {
		t.Error("access token must not carry a type claim")
	}
}

func TestRefreshTokenIsTagged(t *testing.T) {
	initTestJWT(t)

	token, err := GenerateRefreshToken("user-123", "someone@example.com")
	if err != nil {
		t.Fatalf("GenerateRefreshToken failed: %v", err)
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if claims["type"] != "refresh" {
		t.Errorf("type claim = %v, want refresh", claims["type"])
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	initTestJWT(t)

	if _, err := ParseToken("not.a.token"); err == nil {
		t.Error("expected error for malformed token")
	}
}
