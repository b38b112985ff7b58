package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenIsExpired is returned when the token signature verifies but the exp claim is in the past.
	ErrTokenIsExpired = errors.New("token is expired")
	// ErrInvalidToken is returned for any other verification failure: bad signature,
	// wrong signing method, malformed token, missing subject.
	ErrInvalidToken = errors.New("invalid token")
)

// ProviderClaims are the claims carried by access tokens minted by the identity
// provider. Subject holds the provider's stable user identifier; Email is the
// address the user signed up with.
type ProviderClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// VerifyProviderToken validates the given HMAC-SHA256 access token and extracts its claims.
//
// Validation includes:
//   - Signature verification using the provided sign key
//   - Signing method restricted to HS256
//   - Expiration (exp) claim check
//   - Issuer (iss) claim check when tokenIssuer is non-empty
//   - Subject (sub) claim presence
//
// Returns ErrTokenIsExpired for expired tokens and ErrInvalidToken for every
// other verification failure.
func VerifyProviderToken(tokenString, tokenSignKey, tokenIssuer string) (ProviderClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if tokenIssuer != "" {
		opts = append(opts, jwt.WithIssuer(tokenIssuer))
	}

	claims := &ProviderClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return []byte(tokenSignKey), nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ProviderClaims{}, fmt.Errorf("%w: %v", ErrTokenIsExpired, err)
		}
		return ProviderClaims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return ProviderClaims{}, fmt.Errorf("%w: empty subject", ErrInvalidToken)
	}

	return *claims, nil
}

// ParseBearerToken extracts the token part from an `Authorization: Bearer <token>` header value.
func ParseBearerToken(authorizationHeader string) (string, error) {
	parts := strings.Split(strings.TrimSpace(authorizationHeader), " ")
	if len(parts) != 2 || parts[1] == "" {
		return "", errors.New("invalid authorization header")
	}
	return parts[1], nil
}
