package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// confirmPurpose tags confirmation tokens so they can never be replayed
// against another signing flow sharing the same secret.
const confirmPurpose = "email-confirm"

var (
	// ErrTokenExpired is returned when a confirmation token is older than
	// the allowed window. Kept distinct from ErrTokenInvalid for logging;
	// handlers collapse both into one user-visible message.
	ErrTokenExpired = errors.New("confirmation token expired")
	// ErrTokenInvalid is returned for tampered, foreign, malformed or
	// wrong-purpose tokens.
	ErrTokenInvalid = errors.New("confirmation token invalid")
)

type confirmClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// ConfirmSigner produces and validates stateless, time-limited tokens that
// bind an email address to an issuance timestamp. Tokens carry no server
// state and there is no revocation list; the only lifecycle control is the
// signing secret, which is loaded once at startup.
type ConfirmSigner struct {
	secret []byte
	now    func() time.Time
}

// NewConfirmSigner creates a signer using the process-wide secret.
func NewConfirmSigner(secret string) *ConfirmSigner {
	return &ConfirmSigner{secret: []byte(secret), now: time.Now}
}

// Issue serializes the email with the current timestamp and the
// email-confirm purpose tag into a URL-safe signed token.
func (s *ConfirmSigner) Issue(email string) (string, error) {
	claims := &confirmClaims{
		Purpose: confirmPurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  email,
			IssuedAt: jwt.NewNumericDate(s.now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Validate checks signature, purpose and age, returning the embedded email
// address. A token whose age is exactly maxAge is still accepted; strictly
// older fails with ErrTokenExpired. Every other failure is ErrTokenInvalid.
func (s *ConfirmSigner) Validate(token string, maxAge time.Duration) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &confirmClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*confirmClaims)
	if !ok || claims.Purpose != confirmPurpose || claims.Subject == "" || claims.IssuedAt == nil {
		return "", ErrTokenInvalid
	}
	if age := s.now().Sub(claims.IssuedAt.Time); age > maxAge {
		return "", ErrTokenExpired
	}
	return claims.Subject, nil
}
