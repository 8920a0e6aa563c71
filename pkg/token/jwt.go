package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// DefaultTTL is the lifetime of an issued token when none is configured.
const DefaultTTL = 7 * 24 * time.Hour

// ErrMissingSecret is returned when the signing secret is not configured.
var ErrMissingSecret = errors.New("token: signing secret is not set")

type claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// Issuer signs and verifies HS256 bearer tokens bound to a user id.
type Issuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret, issuer string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// TTL returns the lifetime applied to issued tokens.
func (t *Issuer) TTL() time.Duration {
	return t.ttl
}

// Issue returns a signed token for userID expiring after the configured TTL.
func (t *Issuer) Issue(userID string) (string, error) {
	now := t.now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
		UserID: userID,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.secret)
}

// Verify returns the user id bound to tokenString when the signature is
// valid and the token has not expired. It never returns an error: any
// failure yields ok == false.
func (t *Issuer) Verify(tokenString string) (userID string, ok bool) {
	if tokenString == "" {
		return "", false
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", false
	}

	c, ok := parsed.Claims.(*claims)
	if !ok || c.ExpiresAt == nil {
		return "", false
	}
	if t.issuer != "" && !c.VerifyIssuer(t.issuer, true) {
		return "", false
	}
	if c.UserID == "" || c.UserID != c.Subject {
		return "", false
	}
	return c.UserID, true
}
