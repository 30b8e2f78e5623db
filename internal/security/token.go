package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"panchayat/internal/apperr"
	"panchayat/internal/models"
)

const DefaultTokenTTL = 24 * time.Hour

var (
	ErrMissingSecret  = apperr.New(apperr.KindConfiguration, "missing_secret", "token signing secret is not configured")
	ErrInvalidToken   = apperr.New(apperr.KindUnauthenticated, "invalid_token", "token signature is invalid")
	ErrExpiredToken   = apperr.New(apperr.KindUnauthenticated, "expired_token", "token has expired")
	ErrMalformedToken = apperr.New(apperr.KindUnauthenticated, "malformed_token", "token cannot be parsed")
)

// Identity is what a verified session token asserts about its bearer.
type Identity struct {
	UserID string
	Role   models.UserRole
}

type AccessClaims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock returns a copy of the issuer that reads time from now.
func (t *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	cp := *t
	cp.now = now
	return &cp
}

func (t *TokenIssuer) Issue(userID string, role models.UserRole) (string, error) {
	if len(t.secret) == 0 {
		return "", ErrMissingSecret
	}

	now := t.now()
	claims := AccessClaims{
		UserID: userID,
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

func (t *TokenIssuer) Verify(tokenStr string) (Identity, error) {
	if len(t.secret) == 0 {
		return Identity{}, ErrMissingSecret
	}

	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Name}),
		jwt.WithStrictDecoding(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Identity{}, apperr.Wrap(ErrMalformedToken, err)
		case errors.Is(err, jwt.ErrTokenExpired):
			return Identity{}, apperr.Wrap(ErrExpiredToken, err)
		default:
			return Identity{}, apperr.Wrap(ErrInvalidToken, err)
		}
	}
	if !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	role := models.UserRole(claims.Role)
	if claims.UserID == "" || !role.Valid() {
		return Identity{}, ErrMalformedToken
	}

	return Identity{UserID: claims.UserID, Role: role}, nil
}
