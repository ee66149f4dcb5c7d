// internal/pkg/token/codec.go
package token

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	xerrors "authguard-service/internal/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

// Codec encodes and decodes HMAC-SHA256 signed tokens. It is stateless and
// deterministic given the secret and the clock; expiry enforcement is left to
// callers so that expired refresh tokens still decode for rotation decisions.
type Codec struct {
	secret []byte
	now    func() time.Time
}

// NewCodec builds a Codec from a base64-encoded HMAC secret.
func NewCodec(secretBase64 string) (*Codec, error) {
	secret, err := base64.StdEncoding.DecodeString(secretBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode token secret: %w", err)
	}
	if len(secret) == 0 {
		return nil, fmt.Errorf("token secret is empty")
	}
	return &Codec{
		secret: secret,
		now:    time.Now,
	}, nil
}

// NewCodecWithClock is like NewCodec but with an injected clock, so tests can
// pin issuance and expiry instants.
func NewCodecWithClock(secretBase64 string, now func() time.Time) (*Codec, error) {
	c, err := NewCodec(secretBase64)
	if err != nil {
		return nil, err
	}
	c.now = now
	return c, nil
}

// Encode creates a signed token for the subject with the given claims snapshot.
func (c *Codec) Encode(subject string, userID int64, roles []string, tokenType string, ttl time.Duration) (string, error) {
	now := c.now()

	claims := &Claims{
		UserID:    userID,
		Roles:     roles,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        ulid.Make().String(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies the signature and returns the claims. Expired tokens decode
// successfully; use IsExpired or the exp claim to enforce lifetime.
func (c *Codec) Decode(tokenString string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithoutClaimsValidation())

	if err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, xerrors.ErrInvalidSignature
		}
		return nil, fmt.Errorf("%w: %v", xerrors.ErrMalformedToken, err)
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, xerrors.ErrMalformedToken
	}

	return claims, nil
}

// ExtractSubject returns the subject (email) claim.
func (c *Codec) ExtractSubject(tokenString string) (string, error) {
	claims, err := c.Decode(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// ExtractUserID returns the user_id claim.
func (c *Codec) ExtractUserID(tokenString string) (int64, error) {
	claims, err := c.Decode(tokenString)
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}

// ExtractRoles returns the role-name snapshot embedded at issuance.
func (c *Codec) ExtractRoles(tokenString string) ([]string, error) {
	claims, err := c.Decode(tokenString)
	if err != nil {
		return nil, err
	}
	return claims.Roles, nil
}

// ExtractType returns the token type claim.
func (c *Codec) ExtractType(tokenString string) (string, error) {
	claims, err := c.Decode(tokenString)
	if err != nil {
		return "", err
	}
	return claims.TokenType, nil
}

// ExtractExpiry returns the expiry instant of the token.
func (c *Codec) ExtractExpiry(tokenString string) (time.Time, error) {
	claims, err := c.Decode(tokenString)
	if err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, xerrors.ErrMalformedToken
	}
	return claims.ExpiresAt.Time, nil
}

// IsExpired reports whether the token's expiry has passed.
func (c *Codec) IsExpired(tokenString string) (bool, error) {
	exp, err := c.ExtractExpiry(tokenString)
	if err != nil {
		return false, err
	}
	return c.now().After(exp), nil
}
