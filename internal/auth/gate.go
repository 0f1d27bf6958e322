package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Status is the gate's deny reason. Expired routes the user to the
// session-expired page instead of the generic login redirect.
type Status string

const (
	StatusInvalid Status = "INVALID_TOKEN"
	StatusExpired Status = "EXPIRED_TOKEN"
)

// Decision is the outcome of authenticating one request token.
type Decision struct {
	CanContinue bool
	Status      Status
	Claims      *Claims
}

// Gate inspects the signed session token from the cookie.
type Gate struct {
	secret string
	strict bool
}

// NewGate builds a gate. strict controls what happens when no secret is
// configured or verification fails for a reason other than expiry:
// strict denies, non-strict lets a present token through.
func NewGate(secret string, strict bool) *Gate {
	return &Gate{secret: secret, strict: strict}
}

// Authenticate classifies a token as continue, invalid or expired.
// An absent token is always invalid; an expired token with a valid
// signature is always expired, in both modes.
func (g *Gate) Authenticate(token string) Decision {
	if token == "" {
		return Decision{Status: StatusInvalid}
	}

	if g.secret == "" {
		if g.strict {
			return Decision{Status: StatusInvalid}
		}
		// no secret configured: presence of a token is enough (dev)
		return Decision{CanContinue: true}
	}

	claims, err := ParseToken(g.secret, token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Decision{Status: StatusExpired}
		}
		if g.strict {
			return Decision{Status: StatusInvalid}
		}
		return Decision{CanContinue: true}
	}

	return Decision{CanContinue: true, Claims: claims}
}
