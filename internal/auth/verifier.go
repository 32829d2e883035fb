package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/EmpoweredVote/Ledger-Backend/internal/utils"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingSubject = errors.New("token has no subject")
	ErrMissingExpiry  = errors.New("token has no expiry")
)

// TokenVerifier checks access tokens issued by the managed auth provider.
// Tokens are HS256 signed with the project secret and carry the user id in sub.
type TokenVerifier struct {
	Secret []byte
	// Audience is checked when set (hosted auth issues "authenticated").
	Audience string
}

func NewTokenVerifier(secret, audience string) TokenVerifier {
	return TokenVerifier{Secret: []byte(secret), Audience: audience}
}

func (v TokenVerifier) Verify(token string) (utils.SessionData, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.Audience != "" {
		opts = append(opts, jwt.WithAudience(v.Audience))
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return v.Secret, nil
	}, opts...)
	if err != nil {
		return utils.SessionData{}, fmt.Errorf("verify token: %w", err)
	}

	if claims.Subject == "" {
		return utils.SessionData{}, ErrMissingSubject
	}
	if claims.ExpiresAt == nil {
		return utils.SessionData{}, ErrMissingExpiry
	}

	return utils.SessionData{
		UserID:    claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Sign issues a token the verifier accepts. Used by the CLI for local
// development servers and by tests.
func (v TokenVerifier) Sign(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	if v.Audience != "" {
		claims.Audience = jwt.ClaimStrings{v.Audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.Secret)
}
