package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"cabinrent/internal/app/policies"
)

var ErrSecretTooShort = errors.New("security: jwt secret must be at least 32 bytes")

type accessClaims struct {
	Email string   `json:"email"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// JWTIssuer signs HS256 access tokens.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

func NewJWTIssuer(secret string, ttl time.Duration) (*JWTIssuer, error) {
	if len(secret) < 32 {
		return nil, ErrSecretTooShort
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &JWTIssuer{secret: []byte(secret), ttl: ttl, issuer: "cabinrent", now: time.Now}, nil
}

func (j *JWTIssuer) Issue(p policies.Principal) (string, time.Time, error) {
	now := j.now().UTC()
	expires := now.Add(j.ttl)
	claims := accessClaims{
		Email: p.Email,
		Roles: append([]string(nil), p.Roles...),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("security: sign token: %w", err)
	}
	return signed, expires, nil
}

func (j *JWTIssuer) Parse(token string) (policies.Principal, error) {
	var claims accessClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return j.secret, nil
	})
	if err != nil {
		return policies.Principal{}, err
	}
	if !parsed.Valid || !claims.VerifyIssuer(j.issuer, true) {
		return policies.Principal{}, errors.New("security: invalid token")
	}
	return policies.Principal{ID: claims.Subject, Email: claims.Email, Roles: claims.Roles}, nil
}
