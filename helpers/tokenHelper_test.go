package helpers

import "testing"

func TestTokenRoundTripCarriesWebID(t *testing.T) {
	SECRET_KEY = "test-secret"

	token, refreshToken, err := GenerateAllTokens("owner@example.com", "owner", "uid-1", 42)
	if err != nil {
		t.Fatalf("GenerateAllTokens: %v", err)
	}
	if token == "" || refreshToken == "" {
		t.Fatal("empty tokens")
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.WebID != 42 {
		t.Errorf("WebID = %d, want 42", claims.WebID)
	}
	if claims.Email != "owner@example.com" || claims.Username != "owner" || claims.Uid != "uid-1" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	SECRET_KEY = "test-secret"

	if _, err := ValidateToken("not-a-token"); err == nil {
		t.Error("malformed token accepted")
	}
}

func TestValidateTokenRejectsWrongKey(t *testing.T) {
	SECRET_KEY = "test-secret"
	token, _, err := GenerateAllTokens("owner@example.com", "owner", "uid-1", 42)
	if err != nil {
		t.Fatalf("GenerateAllTokens: %v", err)
	}

	SECRET_KEY = "other-secret"
	if _, err := ValidateToken(token); err == nil {
		t.Error("token signed with a different key accepted")
	}
}
