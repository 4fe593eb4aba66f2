package auth

import (
	"strings"
	"testing"
	"time"
)

func TestHashVerify(t *testing.T) {
	hash, err := Hash("abcdef")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	ok, err := Verify("abcdef", hash)
	if err != nil || !ok {
		t.Fatalf("Verify senha correta: ok=%v err=%v", ok, err)
	}

	ok, err = Verify("errada", hash)
	if err != nil {
		t.Fatalf("Verify senha errada: %v", err)
	}
	if ok {
		t.Fatal("senha errada não pode verificar")
	}
}

func TestJWTRoundTrip(t *testing.T) {
	mgr := NewJWTManager("segredo-de-teste-com-32-caracteres!!", 15*time.Minute)

	token, jti, err := mgr.GenerateAccessToken("subject-1", "admin")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	if jti == "" {
		t.Fatal("jti vazio")
	}

	claims, err := mgr.ParseAndValidate(token)
	if err != nil {
		t.Fatalf("ParseAndValidate: %v", err)
	}
	if claims.Subject != "subject-1" {
		t.Fatalf("subject = %s", claims.Subject)
	}
	if claims.Role != "admin" {
		t.Fatalf("role = %s", claims.Role)
	}
}

func TestJWTSegredoErrado(t *testing.T) {
	mgr := NewJWTManager("segredo-de-teste-com-32-caracteres!!", 15*time.Minute)
	outro := NewJWTManager("outro-segredo-tambem-com-32-chars!!!", 15*time.Minute)

	token, _, err := mgr.GenerateAccessToken("subject-1", "user")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	if _, err := outro.ParseAndValidate(token); err == nil {
		t.Fatal("token assinado com outro segredo não pode validar")
	}
}

func TestJWTExpirado(t *testing.T) {
	mgr := NewJWTManager("segredo-de-teste-com-32-caracteres!!", -time.Minute)

	token, _, err := mgr.GenerateAccessToken("subject-1", "user")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	if _, err := mgr.ParseAndValidate(token); err == nil {
		t.Fatal("token expirado não pode validar")
	}
}

func TestRefreshToken(t *testing.T) {
	raw, hashed, err := GenerateRefreshToken()
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}
	if raw == "" || hashed == "" {
		t.Fatal("token ou hash vazio")
	}
	if HashRefreshToken(raw) != hashed {
		t.Fatal("hash do token não bate")
	}

	raw2, _, err := GenerateRefreshToken()
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}
	if raw == raw2 {
		t.Fatal("tokens devem ser únicos")
	}
}

func TestRefreshRedisKey(t *testing.T) {
	key := RefreshRedisKey("abc")
	if !strings.HasPrefix(key, "refresh:") || !strings.HasSuffix(key, "abc") {
		t.Fatalf("chave inesperada: %s", key)
	}
}
