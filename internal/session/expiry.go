package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// EstimateExpiry guesses when an access token stops being accepted. The token
// is not verified: the exp claim is only a hint for display and scheduling.
// Opaque tokens, and JWTs without exp, fall back to now + fallback.
func EstimateExpiry(token string, fallback time.Duration, now time.Time) time.Time {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err == nil && claims.ExpiresAt != nil {
		return claims.ExpiresAt.UTC()
	}
	return now.Add(fallback).UTC()
}
