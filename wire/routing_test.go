package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoutingHeaderRoundtrip(t *testing.T) {
	rh := RoutingHeader{
		Model:       "gpt-4o",
		Roles:       []Role{RoleSystem, RoleUser, RoleAssistant, RoleTool, RoleUser},
		ContentHint: 4096,
	}
	buf, err := rh.Marshal(false)
	require.NoError(t, err)

	got, err := ParseRoutingHeader(buf, false)
	require.NoError(t, err)
	require.Equal(t, rh.Model, got.Model)
	require.Equal(t, rh.Roles, got.Roles)
	require.Equal(t, rh.ContentHint, got.ContentHint)
	require.Nil(t, got.Extensions)
}

func TestRoutingHeaderWithExtensions(t *testing.T) {
	rh := RoutingHeader{
		Model:       "o200k-demo",
		Roles:       []Role{RoleUser},
		ContentHint: 12,
		Extensions: []Extension{
			{Tag: 1, Value: []byte("trace-id")},
			{Tag: 9, Value: nil},
		},
	}
	buf, err := rh.Marshal(true)
	require.NoError(t, err)

	got, err := ParseRoutingHeader(buf, true)
	require.NoError(t, err)
	require.Equal(t, rh.Extensions, got.Extensions)
}

func TestRoutingHeaderUnknownExtensionTagSkippable(t *testing.T) {
	rh := RoutingHeader{Model: "m", Roles: []Role{RoleUser}, Extensions: []Extension{
		{Tag: 250, Value: []byte{1, 2, 3}},
	}}
	buf, err := rh.Marshal(true)
	require.NoError(t, err)
	got, err := ParseRoutingHeader(buf, true)
	require.NoError(t, err)
	require.Equal(t, uint8(250), got.Extensions[0].Tag)
}

func TestRoutingHeaderModelTooLong(t *testing.T) {
	rh := RoutingHeader{Model: string(make([]byte, 256))}
	_, err := rh.Marshal(false)
	require.ErrorIs(t, err, ErrModelTooLong)
}

func TestRoutingHeaderTruncated(t *testing.T) {
	rh := RoutingHeader{Model: "gpt-4o", Roles: []Role{RoleUser, RoleAssistant}}
	buf, err := rh.Marshal(false)
	require.NoError(t, err)
	_, err = ParseRoutingHeader(buf[:len(buf)-1], false)
	require.Error(t, err)
}

func TestPackRolesEightMessages(t *testing.T) {
	roles := []Role{RoleSystem, RoleUser, RoleAssistant, RoleTool, RoleUser, RoleUser, RoleAssistant, RoleSystem}
	packed := packRoles(roles)
	require.Len(t, packed, 2)
	require.Equal(t, roles, unpackRoles(packed, len(roles)))
}
