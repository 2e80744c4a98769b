package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

const TokenTTL = 365 * 24 * time.Hour

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrNoEmail      = errors.New("token payload has no email")
)

// Identity is the decoded token payload.
type Identity struct {
	Email  string
	Claims jwt.MapClaims
}

type Tokens struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

func NewTokens(secret string) *Tokens {
	return &Tokens{Secret: []byte(secret), TTL: TokenTTL, Now: time.Now}
}

func (t *Tokens) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

// Sign embeds payload as HS256 claims with iat and exp set from TTL. Only
// a string email is required; every other field is signed as-is.
func (t *Tokens) Sign(payload map[string]any) (string, error) {
	if email, _ := payload["email"].(string); email == "" {
		return "", ErrNoEmail
	}
	claims := jwt.MapClaims{}
	for k, v := range payload {
		claims[k] = v
	}
	now := t.now()
	claims["iat"] = jwt.NewNumericDate(now)
	claims["exp"] = jwt.NewNumericDate(now.Add(t.TTL))
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.Secret)
}

// Verify checks signature and expiry and returns the identity in one call.
func (t *Tokens) Verify(token string) (Identity, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return t.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired(), jwt.WithTimeFunc(t.now))
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	email, _ := claims["email"].(string)
	return Identity{Email: email, Claims: claims}, nil
}
