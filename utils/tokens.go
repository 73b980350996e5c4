package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims is the identity the rest of the system relies on: who the
// actor is and whether they hold admin privilege.
type AccessClaims struct {
	UserID  uint `json:"uid"`
	IsAdmin bool `json:"adm"`
	jwt.RegisteredClaims
}

func jwtSecret() []byte {
	return []byte(EnvOrDefault("JWT_SECRET", "dev-secret-change-me"))
}

// SignAccessToken issues an HS256 access token valid for 24h.
func SignAccessToken(userID uint, isAdmin bool) (string, error) {
	now := time.Now().UTC()
	claims := AccessClaims{
		UserID:  userID,
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret())
}

// ParseAccessToken validates signature and expiry and returns the claims.
func ParseAccessToken(token string) (*AccessClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &AccessClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecret(), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*AccessClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
