package academyapi

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoExpiry is returned for access tokens without an exp claim.
var ErrNoExpiry = errors.New("token has no expiry")

// TokenPair is the bearer token pair issued at login.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// AccessExpiry reads the exp claim of an access token.
// The signature is not checked here; the academy API verifies every call.
func AccessExpiry(access string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(access, claims); err != nil {
		return time.Time{}, fmt.Errorf("parse access token: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("read exp claim: %w", err)
	}
	if exp == nil {
		return time.Time{}, ErrNoExpiry
	}
	return exp.Time, nil
}

// NeedsRefresh reports whether access expires within skew of now.
// Tokens whose expiry cannot be read are left alone; the API will answer 401.
func NeedsRefresh(access string, now time.Time, skew time.Duration) bool {
	exp, err := AccessExpiry(access)
	if err != nil {
		return false
	}
	return !now.Add(skew).Before(exp)
}
