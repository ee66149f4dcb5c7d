package token

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	xerrors "authguard-service/internal/pkg/errors"
)

const testSecret = "c3VwZXItc2VjcmV0LXNpZ25pbmcta2V5LWZvci10ZXN0cw==" // base64

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := NewCodec(testSecret)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	return c
}

func TestNewCodecRejectsBadSecret(t *testing.T) {
	if _, err := NewCodec("not-base64!!!"); err == nil {
		t.Fatal("expected error for invalid base64 secret")
	}
	if _, err := NewCodec(""); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	c := newTestCodec(t)
	issued := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return issued }

	tok, err := c.Encode("a@x.com", 42, []string{"ADMIN", "USER"}, TypeAccess, 15*time.Minute)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	claims, err := c.Decode(tok)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if claims.Subject != "a@x.com" {
		t.Errorf("subject = %q, want a@x.com", claims.Subject)
	}
	if claims.UserID != 42 {
		t.Errorf("user_id = %d, want 42", claims.UserID)
	}
	if len(claims.Roles) != 2 || claims.Roles[0] != "ADMIN" || claims.Roles[1] != "USER" {
		t.Errorf("roles = %v, want [ADMIN USER]", claims.Roles)
	}
	if claims.TokenType != TypeAccess {
		t.Errorf("type = %q, want %q", claims.TokenType, TypeAccess)
	}
	if !claims.IssuedAt.Time.Equal(issued) {
		t.Errorf("iat = %v, want %v", claims.IssuedAt.Time, issued)
	}
	if !claims.ExpiresAt.Time.Equal(issued.Add(15 * time.Minute)) {
		t.Errorf("exp = %v, want %v", claims.ExpiresAt.Time, issued.Add(15*time.Minute))
	}
}

func TestDecodeRejectsTamperedSignature(t *testing.T) {
	c := newTestCodec(t)
	tok, err := c.Encode("a@x.com", 1, []string{"USER"}, TypeAccess, time.Minute)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		t.Fatalf("token has %d segments, want 3", len(parts))
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		t.Fatalf("decode signature: %v", err)
	}
	sig[0] ^= 0xff
	parts[2] = base64.RawURLEncoding.EncodeToString(sig)

	if _, err := c.Decode(strings.Join(parts, ".")); !errors.Is(err, xerrors.ErrInvalidSignature) {
		t.Fatalf("Decode tampered token: err = %v, want ErrInvalidSignature", err)
	}
}

func TestDecodeRejectsWrongSecret(t *testing.T) {
	c := newTestCodec(t)
	other, err := NewCodec(base64.StdEncoding.EncodeToString([]byte("another-secret-entirely")))
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	tok, err := other.Encode("a@x.com", 1, nil, TypeAccess, time.Minute)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := c.Decode(tok); !errors.Is(err, xerrors.ErrInvalidSignature) {
		t.Fatalf("Decode: err = %v, want ErrInvalidSignature", err)
	}
}

func TestDecodeRejectsMalformedToken(t *testing.T) {
	c := newTestCodec(t)
	for _, tok := range []string{"", "garbage", "a.b", "a.b.c.d"} {
		if _, err := c.Decode(tok); !errors.Is(err, xerrors.ErrMalformedToken) {
			t.Errorf("Decode(%q): err = %v, want ErrMalformedToken", tok, err)
		}
	}
}

func TestExpiredTokenStillDecodes(t *testing.T) {
	c := newTestCodec(t)
	issued := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return issued }

	tok, err := c.Encode("a@x.com", 7, []string{"USER"}, TypeRefresh, time.Hour)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	// Advance past expiry: signature still verifies, claims still readable.
	c.now = func() time.Time { return issued.Add(2 * time.Hour) }

	claims, err := c.Decode(tok)
	if err != nil {
		t.Fatalf("Decode expired token: %v", err)
	}
	if claims.UserID != 7 {
		t.Errorf("user_id = %d, want 7", claims.UserID)
	}

	expired, err := c.IsExpired(tok)
	if err != nil {
		t.Fatalf("IsExpired: %v", err)
	}
	if !expired {
		t.Error("IsExpired = false, want true")
	}
}

func TestIsExpiredBeforeExpiry(t *testing.T) {
	c := newTestCodec(t)
	issued := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return issued }

	tok, err := c.Encode("a@x.com", 7, nil, TypeAccess, time.Hour)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	c.now = func() time.Time { return issued.Add(59 * time.Minute) }
	expired, err := c.IsExpired(tok)
	if err != nil {
		t.Fatalf("IsExpired: %v", err)
	}
	if expired {
		t.Error("IsExpired = true before expiry")
	}
}

func TestExtractors(t *testing.T) {
	c := newTestCodec(t)
	issued := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return issued }

	tok, err := c.Encode("b@x.com", 99, []string{"MANAGER"}, TypeRefresh, 30*time.Minute)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	if sub, _ := c.ExtractSubject(tok); sub != "b@x.com" {
		t.Errorf("ExtractSubject = %q", sub)
	}
	if id, _ := c.ExtractUserID(tok); id != 99 {
		t.Errorf("ExtractUserID = %d", id)
	}
	if roles, _ := c.ExtractRoles(tok); len(roles) != 1 || roles[0] != "MANAGER" {
		t.Errorf("ExtractRoles = %v", roles)
	}
	if typ, _ := c.ExtractType(tok); typ != TypeRefresh {
		t.Errorf("ExtractType = %q", typ)
	}
	if exp, _ := c.ExtractExpiry(tok); !exp.Equal(issued.Add(30 * time.Minute)) {
		t.Errorf("ExtractExpiry = %v", exp)
	}
}
