package jwt

import (
	"fmt"
	"time"

	"whisperbox/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the typed projection carried by a session token.
// Identity fields are authoritative; the flags are a snapshot taken at
// login and may go stale, so mutable state is re-read from storage by
// the endpoints that care.
type SessionClaims struct {
	UserID      int64  `json:"uid"`
	Username    string `json:"username"`
	IsVerified  bool   `json:"is_verified"`
	IsAccepting bool   `json:"is_accepting"`
	jwt.RegisteredClaims
}

func NewToken(user models.User, ttl time.Duration, secret string) (string, error) {
	const op = "jwt.NewToken"

	claims := &SessionClaims{
		UserID:      user.ID,
		Username:    user.Username,
		IsVerified:  user.IsVerified,
		IsAccepting: user.IsAccepting,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

func ParseToken(tokenStr, secret string) (*SessionClaims, error) {
	const op = "jwt.ParseToken"

	claims := &SessionClaims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%s: unexpected signing method", op)
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse token: %w", op, err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}

	return claims, nil
}
