package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformedToken = errors.New("auth: malformed token")
	ErrMissingSubject = errors.New("auth: token has no subject")
)

var unverified = jwt.NewParser()

// parseClaims decodes the token payload without checking the signature.
// Clients never hold the signing key; the backend validates every request.
func parseClaims(token string) (jwt.RegisteredClaims, error) {
	var claims jwt.RegisteredClaims
	if token == "" {
		return claims, ErrMalformedToken
	}
	if _, _, err := unverified.ParseUnverified(token, &claims); err != nil {
		return claims, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	return claims, nil
}

// SubjectFromToken returns the user id carried in the token's sub claim.
func SubjectFromToken(token string) (string, error) {
	claims, err := parseClaims(token)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", ErrMissingSubject
	}
	return claims.Subject, nil
}

// ExpiryFromToken returns the exp claim. ok is false when the token has none.
func ExpiryFromToken(token string) (exp time.Time, ok bool, err error) {
	claims, err := parseClaims(token)
	if err != nil {
		return time.Time{}, false, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false, nil
	}
	return claims.ExpiresAt.Time, true, nil
}
