package utils

import "testing"

// The signing key must be read when tokens are issued, not at package init:
// the key usually arrives via .env, which is only loaded after this package
// is initialized.
func TestJWTUsesKeySetAfterInit(t *testing.T) {
	t.Setenv("JWT_KEY", "test-secret")

	token, err := GenerateJWT("u1", "tenant")
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	claims, err := ValidateJWT(token)
	if err != nil {
		t.Fatalf("ValidateJWT: %v", err)
	}
	if claims.UserID != "u1" || claims.Role != "tenant" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestValidateJWTRejectsWrongKey(t *testing.T) {
	t.Setenv("JWT_KEY", "first-secret")
	token, err := GenerateJWT("u1", "tenant")
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	t.Setenv("JWT_KEY", "rotated-secret")
	if _, err := ValidateJWT(token); err == nil {
		t.Fatal("expected validation failure after key rotation")
	}
}
