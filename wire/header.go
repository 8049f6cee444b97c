package wire

import (
	"encoding/binary"
	"errors"
)

// FixedHeaderSize is the exact on-wire size of the fixed header,
// spec.md §3.
const FixedHeaderSize = 20

// ErrHeaderShort is returned when fewer than FixedHeaderSize bytes are
// available to parse a fixed header.
var ErrHeaderShort = errors.New("wire: fixed header truncated")

// ErrUnknownSchema is returned for a schema byte outside 0..3.
var ErrUnknownSchema = errors.New("wire: unknown schema")

// ErrUnknownSecurityMode is returned for a security byte outside 0..2.
var ErrUnknownSecurityMode = errors.New("wire: unknown security mode")

// FixedHeader is the 20-byte little-endian struct described in
// spec.md §3:
//
//	offset 0  u16  header_len
//	offset 2  u8   schema
//	offset 3  u8   security
//	offset 4  u32  flags
//	offset 8  [12] reserved (zero)
type FixedHeader struct {
	HeaderLen uint16
	Schema    Schema
	Security  SecurityMode
	Flags     Flags
}

// Marshal writes the 20-byte fixed header.
func (h FixedHeader) Marshal() []byte {
	buf := make([]byte, FixedHeaderSize)
	binary.LittleEndian.PutUint16(buf[0:2], h.HeaderLen)
	buf[2] = byte(h.Schema)
	buf[3] = byte(h.Security)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(h.Flags))
	// buf[8:20] stays zero (reserved).
	return buf
}

// ParseFixedHeader reads the fixed header from the front of buf. Schema
// and security bytes outside their known ranges are rejected; unknown
// flag bits are preserved verbatim in Flags and never rejected, per
// spec.md §4.8.
func ParseFixedHeader(buf []byte) (FixedHeader, error) {
	if len(buf) < FixedHeaderSize {
		return FixedHeader{}, ErrHeaderShort
	}
	schema := Schema(buf[2])
	if schema > SchemaError {
		return FixedHeader{}, ErrUnknownSchema
	}
	security := SecurityMode(buf[3])
	if security > SecurityAead {
		return FixedHeader{}, ErrUnknownSecurityMode
	}
	return FixedHeader{
		HeaderLen: binary.LittleEndian.Uint16(buf[0:2]),
		Schema:    schema,
		Security:  security,
		Flags:     Flags(binary.LittleEndian.Uint32(buf[4:8])),
	}, nil
}
