package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

/**
 * @file: jwt.go
 * @description: HS256 tokens for the admin API
 */

type AuthClaims struct {
	UserId string `json:"userId,omitempty"`
	jwt.RegisteredClaims
}

// Actor returns the identity recorded in audit entries.
func (a *AuthClaims) Actor() string {
	if a.UserId != "" {
		return a.UserId
	}
	return a.Subject
}

// GenToken signs an access token for subject valid for ttl.
func GenToken(subject, issuer string, secretKey []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &AuthClaims{
		UserId: subject,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secretKey)
}

// ParseToken verifies an HMAC signed token. When issuer is not empty the
// token's iss claim must match it.
func ParseToken(aToken, secretKey, issuer string) (*AuthClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{
		jwt.SigningMethodHS256.Alg(),
		jwt.SigningMethodHS384.Alg(),
		jwt.SigningMethodHS512.Alg(),
	})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	claims := new(AuthClaims)
	token, err := jwt.ParseWithClaims(aToken, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, jwt.ErrTokenExpired
		}
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
