package frame

import (
	"encoding/json"
	"fmt"

	"github.com/sage-x-project/m2m/wire"
)

// chatMessage mirrors only the fields the routing header needs from an
// OpenAI-schema chat message; the rest of the object is opaque payload
// and is never touched here.
type chatMessage struct {
	Role string `json:"role"`
}

type chatPayload struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

// extractRoutingHeader runs a single decode of the original
// (pre-compression) JSON to pull the fields spec.md §4.10 step 2 lists:
// model, message count, per-message role bits, and a coarse content
// hint (the raw payload's byte length).
func extractRoutingHeader(payload []byte) (wire.RoutingHeader, error) {
	var cp chatPayload
	if err := json.Unmarshal(payload, &cp); err != nil {
		return wire.RoutingHeader{}, fmt.Errorf("frame: decoding chat payload: %w", err)
	}
	roles := make([]wire.Role, len(cp.Messages))
	for i, m := range cp.Messages {
		role, err := parseRole(m.Role)
		if err != nil {
			return wire.RoutingHeader{}, err
		}
		roles[i] = role
	}
	return wire.RoutingHeader{
		Model:       cp.Model,
		Roles:       roles,
		ContentHint: uint64(len(payload)),
	}, nil
}

func parseRole(s string) (wire.Role, error) {
	switch s {
	case "system":
		return wire.RoleSystem, nil
	case "user":
		return wire.RoleUser, nil
	case "assistant":
		return wire.RoleAssistant, nil
	case "tool":
		return wire.RoleTool, nil
	default:
		return 0, fmt.Errorf("frame: unknown message role %q", s)
	}
}
