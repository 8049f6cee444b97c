package keys

import (
	"errors"
	"fmt"
)

// ErrInvalidID is returned when an OrgId or AgentId contains a byte
// outside [A-Za-z0-9_-] or has a length outside 1..64, spec.md §3. This
// validation is a hard invariant: both identifiers are embedded verbatim
// into HKDF context labels, so an unchecked byte could smuggle a
// delimiter and collide two distinct contexts.
var ErrInvalidID = errors.New("keys: id must be 1-64 bytes of [A-Za-z0-9_-]")

// OrgId is a short validated identifier for an organization.
type OrgId string

// AgentId is a short validated identifier for an agent within an org.
type AgentId string

// NewOrgId validates and wraps s.
func NewOrgId(s string) (OrgId, error) {
	if !validID(s) {
		return "", ErrInvalidID
	}
	return OrgId(s), nil
}

// NewAgentId validates and wraps s.
func NewAgentId(s string) (AgentId, error) {
	if !validID(s) {
		return "", ErrInvalidID
	}
	return AgentId(s), nil
}

func validID(s string) bool {
	if len(s) < 1 || len(s) > 64 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z':
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '_' || c == '-':
		default:
			return false
		}
	}
	return true
}

// KeyHierarchy derives per-agent and per-session keys from an org
// master secret using labeled HKDF contexts, spec.md §4.7. The context
// string format is the entire security binding between endpoints: any
// formatting divergence produces unrelated keys, so it is fixed
// byte-for-byte here.
type KeyHierarchy struct {
	master *KeyMaterial
	org    OrgId
}

// NewKeyHierarchy binds a master KeyMaterial to an org. The hierarchy
// does not take ownership of master's lifetime; the caller is
// responsible for closing it once no longer needed by any hierarchy.
func NewKeyHierarchy(master *KeyMaterial, org OrgId) *KeyHierarchy {
	return &KeyHierarchy{master: master, org: org}
}

// AgentKey derives agent_key = HKDF(M, info="m2m/v1/{org}/agent/{agent}", len=32).
func (h *KeyHierarchy) AgentKey(agent AgentId) (*KeyMaterial, error) {
	context := fmt.Sprintf("m2m/v1/%s/agent/%s", h.org, agent)
	return h.master.Derive([]byte(context), MinKeyLen)
}

// SessionKey derives
// session_key = HKDF(M, info="m2m/v1/{org}/session/{lo}:{hi}/{sid}", len=32)
// where lo, hi are a and b sorted lexicographically, so both endpoints
// derive bytewise-identical keys without exchanging messages (spec.md
// §8.4's symmetry property).
func (h *KeyHierarchy) SessionKey(a, b AgentId, sessionID string) (*KeyMaterial, error) {
	lo, hi := string(a), string(b)
	if lo > hi {
		lo, hi = hi, lo
	}
	context := fmt.Sprintf("m2m/v1/%s/session/%s:%s/%s", h.org, lo, hi, sessionID)
	return h.master.Derive([]byte(context), MinKeyLen)
}
