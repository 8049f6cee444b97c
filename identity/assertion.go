// Package identity issues and verifies signed AgentAssertion tokens
// naming an org and agent id. KeyHierarchy itself does not check them;
// m2mctl key derive verifies one, when --assertion is given, before it
// derives a key.
package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidAssertion covers every verification failure: bad
// signature, expired token, or a claims shape that does not match
// AgentClaims. Deliberately coarse, matching the frame codec's
// security-verify error philosophy (spec.md §7).
var ErrInvalidAssertion = errors.New("identity: invalid agent assertion")

// AgentClaims identifies the agent and org an assertion vouches for.
type AgentClaims struct {
	Org     string
	AgentID string
	jwt.RegisteredClaims
}

// Issuer signs AgentAssertion tokens with an org-level shared secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

// NewIssuer builds an Issuer. ttl is the lifetime given to every
// assertion it signs.
func NewIssuer(secret []byte, ttl time.Duration) *Issuer {
	return &Issuer{secret: secret, ttl: ttl}
}

// Issue signs a new assertion for (org, agentID).
func (iss *Issuer) Issue(org, agentID string) (string, error) {
	now := time.Now()
	claims := AgentClaims{
		Org:     org,
		AgentID: agentID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(iss.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(iss.secret)
	if err != nil {
		return "", fmt.Errorf("identity: signing assertion: %w", err)
	}
	return signed, nil
}

// Verifier checks assertions signed by an Issuer sharing the same
// secret.
type Verifier struct {
	secret []byte
}

// NewVerifier builds a Verifier.
func NewVerifier(secret []byte) *Verifier {
	return &Verifier{secret: secret}
}

// Verify parses and validates raw, returning the claims on success.
// Expiry, signature, and claims-shape are all checked; any failure
// collapses to ErrInvalidAssertion.
func (v *Verifier) Verify(raw string) (AgentClaims, error) {
	var claims AgentClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("identity: unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return AgentClaims{}, ErrInvalidAssertion
	}
	if claims.Org == "" || claims.AgentID == "" {
		return AgentClaims{}, ErrInvalidAssertion
	}
	return claims, nil
}
