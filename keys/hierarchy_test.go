package keys

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func masterKey(t *testing.T) *KeyMaterial {
	t.Helper()
	b := make([]byte, 32)
	for i := range b {
		b[i] = byte(i + 1)
	}
	km, err := New(b)
	require.NoError(t, err)
	return km
}

func TestAgentIdOrgIdValidation(t *testing.T) {
	_, err := NewOrgId("")
	require.ErrorIs(t, err, ErrInvalidID)

	_, err = NewOrgId("acme corp")
	require.ErrorIs(t, err, ErrInvalidID)

	long := make([]byte, 65)
	for i := range long {
		long[i] = 'a'
	}
	_, err = NewAgentId(string(long))
	require.ErrorIs(t, err, ErrInvalidID)

	id, err := NewAgentId("agent-1_A")
	require.NoError(t, err)
	require.Equal(t, AgentId("agent-1_A"), id)
}

func TestKeyHierarchyAgentKeyDeterministic(t *testing.T) {
	org, err := NewOrgId("acme")
	require.NoError(t, err)
	agent, err := NewAgentId("router")
	require.NoError(t, err)

	h := NewKeyHierarchy(masterKey(t), org)
	k1, err := h.AgentKey(agent)
	require.NoError(t, err)
	k2, err := h.AgentKey(agent)
	require.NoError(t, err)
	require.True(t, k1.Equal(k2))
}

func TestKeyHierarchyAgentKeysDiffer(t *testing.T) {
	org, _ := NewOrgId("acme")
	h := NewKeyHierarchy(masterKey(t), org)
	a1, _ := NewAgentId("agent-a")
	a2, _ := NewAgentId("agent-b")
	ka, err := h.AgentKey(a1)
	require.NoError(t, err)
	kb, err := h.AgentKey(a2)
	require.NoError(t, err)
	require.False(t, ka.Equal(kb))
}

func TestKeyHierarchySessionKeySymmetry(t *testing.T) {
	org, _ := NewOrgId("acme")
	h := NewKeyHierarchy(masterKey(t), org)
	alice, _ := NewAgentId("alice")
	bob, _ := NewAgentId("bob")

	kAB, err := h.SessionKey(alice, bob, "sess-1")
	require.NoError(t, err)
	kBA, err := h.SessionKey(bob, alice, "sess-1")
	require.NoError(t, err)
	require.True(t, kAB.Equal(kBA))
}

func TestKeyHierarchySessionKeyDifferentSessionsDiffer(t *testing.T) {
	org, _ := NewOrgId("acme")
	h := NewKeyHierarchy(masterKey(t), org)
	alice, _ := NewAgentId("alice")
	bob, _ := NewAgentId("bob")

	k1, err := h.SessionKey(alice, bob, "sess-1")
	require.NoError(t, err)
	k2, err := h.SessionKey(alice, bob, "sess-2")
	require.NoError(t, err)
	require.False(t, k1.Equal(k2))
}

func TestKeyHierarchyDifferentOrgsDiffer(t *testing.T) {
	orgA, _ := NewOrgId("acme")
	orgB, _ := NewOrgId("globex")
	agent, _ := NewAgentId("router")

	master := masterKey(t)
	ka, err := NewKeyHierarchy(master, orgA).AgentKey(agent)
	require.NoError(t, err)
	kb, err := NewKeyHierarchy(master, orgB).AgentKey(agent)
	require.NoError(t, err)
	require.False(t, ka.Equal(kb))
}
