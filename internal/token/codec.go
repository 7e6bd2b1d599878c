package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalid = errors.New("invalid token")
	ErrExpired = errors.New("token expired")
)

// Codec issues and verifies signed, time-bound identity tokens. Tokens are
// stateless: there is no revocation, compromise is bounded only by expiry.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

// NewCodec creates a codec with the process-wide signing secret
func NewCodec(secret string, ttl time.Duration) *Codec {
	if ttl == 0 {
		ttl = 15 * 24 * time.Hour
	}
	return &Codec{secret: []byte(secret), ttl: ttl}
}

// TTL returns the token validity window
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Issue produces a signed token for a subject id
func (c *Codec) Issue(subjectID string) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subjectID,
		"iat": now.Unix(),
		"exp": now.Add(c.ttl).Unix(),
	})
	return t.SignedString(c.secret)
}

// Verify checks signature and expiry and returns the subject id
func (c *Codec) Verify(tokenString string) (string, error) {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalid
		}
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpired
		}
		return "", ErrInvalid
	}
	if !t.Valid {
		return "", ErrInvalid
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalid
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", ErrInvalid
	}
	return sub, nil
}
