package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssueVerifyRoundtrip(t *testing.T) {
	secret := []byte("org-shared-secret-0123456789")
	iss := NewIssuer(secret, time.Minute)
	v := NewVerifier(secret)

	token, err := iss.Issue("acme", "router")
	require.NoError(t, err)

	claims, err := v.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "acme", claims.Org)
	require.Equal(t, "router", claims.AgentID)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	iss := NewIssuer([]byte("secret-a-0123456789"), time.Minute)
	v := NewVerifier([]byte("secret-b-0123456789"))

	token, err := iss.Issue("acme", "router")
	require.NoError(t, err)

	_, err = v.Verify(token)
	require.ErrorIs(t, err, ErrInvalidAssertion)
}

func TestVerifyRejectsExpiredAssertion(t *testing.T) {
	secret := []byte("org-shared-secret-0123456789")
	iss := NewIssuer(secret, -time.Minute)
	v := NewVerifier(secret)

	token, err := iss.Issue("acme", "router")
	require.NoError(t, err)

	_, err = v.Verify(token)
	require.ErrorIs(t, err, ErrInvalidAssertion)
}

func TestVerifyRejectsMalformedToken(t *testing.T) {
	v := NewVerifier([]byte("org-shared-secret-0123456789"))
	_, err := v.Verify("not-a-jwt")
	require.ErrorIs(t, err, ErrInvalidAssertion)
}
