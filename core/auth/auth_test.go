package auth

import (
	"testing"
	"time"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("password stored in the clear")
	}
	if !VerifyPassword("correct horse battery staple", hash) {
		t.Fatal("correct password rejected")
	}
	if VerifyPassword("wrong", hash) {
		t.Fatal("wrong password accepted")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	Configure("test-secret", time.Hour)

	token, err := GenerateToken(42, "ana")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 42 || claims.Username != "ana" {
		t.Fatalf("claims mangled: %+v", claims)
	}
}

func TestParseTokenGarbage(t *testing.T) {
	Configure("test-secret", time.Hour)

	if _, err := ParseToken("not.a.token"); err == nil {
		t.Fatal("expected an error for a malformed token")
	}
}
