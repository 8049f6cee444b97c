package wire

// Schema identifies the payload kind carried by a frame.
type Schema uint8

const (
	SchemaRequest Schema = iota
	SchemaResponse
	SchemaStreamChunk
	SchemaError
)

// SecurityMode identifies the seal applied to a frame's trailer.
type SecurityMode uint8

const (
	SecurityNone SecurityMode = iota
	SecurityHmac
	SecurityAead
)

// Flags is the 32-bit little-endian flags field of the fixed header.
// Bits 0-15 are schema-specific (see RequestFlag/ResponseFlag), bits
// 16-23 are reserved and must be zero on encode, and bits 24-31 are the
// CommonFlag bits shared by every schema.
type Flags uint32

const commonFlagShift = 24

// RequestFlag bits, valid when Schema == SchemaRequest.
type RequestFlag uint32

const (
	FlagHasSystemPrompt RequestFlag = 1 << iota
	FlagHasTools
	FlagHasToolChoice
	FlagHasImages
	FlagStreamRequested
	FlagHasResponseFormat
	FlagHasMaxTokens
	FlagHasReasoningEffort
	FlagHasServiceTier
	FlagHasSeed
	FlagHasLogprobs
	FlagHasUserID
	FlagHasTemperature
	FlagHasTopP
	FlagHasStop
)

// ResponseFlag bits, valid when Schema == SchemaResponse.
type ResponseFlag uint32

const (
	FlagHasToolCalls ResponseFlag = 1 << iota
	FlagHasRefusal
	FlagContentFiltered
	FlagHasUsage
	FlagTruncated
	FlagHasCachedTokens
	FlagHasReasoningTokens
	FlagHasCostEstimate
)

// CommonFlag bits occupy the top byte of Flags regardless of schema.
type CommonFlag uint32

const (
	FlagCompressed CommonFlag = 1 << iota
	FlagHasExtensions
)

// WithRequestFlag sets a request-schema bit in the low 16 bits.
func (f Flags) WithRequestFlag(bit RequestFlag) Flags {
	return f | Flags(bit)
}

// HasRequestFlag reports whether a request-schema bit is set.
func (f Flags) HasRequestFlag(bit RequestFlag) bool {
	return Flags(bit)&f != 0
}

// WithResponseFlag sets a response-schema bit in the low 16 bits.
func (f Flags) WithResponseFlag(bit ResponseFlag) Flags {
	return f | Flags(bit)
}

// HasResponseFlag reports whether a response-schema bit is set.
func (f Flags) HasResponseFlag(bit ResponseFlag) bool {
	return Flags(bit)&f != 0
}

// WithCommonFlag sets a common flag bit, stored in the top byte.
func (f Flags) WithCommonFlag(bit CommonFlag) Flags {
	return f | Flags(bit)<<commonFlagShift
}

// HasCommonFlag reports whether a common flag bit is set.
func (f Flags) HasCommonFlag(bit CommonFlag) bool {
	return Flags(bit)<<commonFlagShift&f != 0
}

// Reserved returns the middle reserved byte (bits 16-23). It must be
// zero on encode; decoders ignore it rather than rejecting the frame,
// per the additive-evolution contract in spec.md §4.8.
func (f Flags) Reserved() uint8 {
	return uint8(f >> 16)
}
