// Package frame assembles and inverts the M2M v1 wire envelope:
// prefix, fixed header, routing header, and a security-mode-dependent
// trailer, spec.md §4.10, §4.11, §6.
package frame

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"time"
	"unicode/utf8"

	"github.com/sage-x-project/m2m/internal/logger"
	"github.com/sage-x-project/m2m/internal/metrics"
	"github.com/sage-x-project/m2m/seal"
	"github.com/sage-x-project/m2m/tokendict"
	"github.com/sage-x-project/m2m/wire"
)

func securityModeLabel(mode wire.SecurityMode) string {
	switch mode {
	case wire.SecurityNone:
		return "none"
	case wire.SecurityHmac:
		return "hmac"
	case wire.SecurityAead:
		return "aead"
	default:
		return "unknown"
	}
}

// Prefix is the 7-byte ASCII marker that opens every M2M v1 frame.
const Prefix = "#M2M|1|"

// MaxPayloadLen is the largest payload length the u32 length fields
// can represent.
const MaxPayloadLen = 1<<32 - 1

// Codec is stateless and safe to share across goroutines, spec.md §5.
type Codec struct {
	Dictionary *tokendict.Dictionary
	Counter    tokendict.TokenCounter
	Encoding   tokendict.Encoding
	// Logger receives a Warn entry naming the failing stage on every
	// Decode error; nil (the default) disables this. Decode's returned
	// error already carries the same stage, so this is purely an
	// operational log line for a deployment piping output through its
	// own collector, not part of the decode contract.
	Logger logger.Logger
}

// NewCodec builds a Codec with dict and counter. Either may be nil: a
// nil Dictionary or Counter disables compression entirely (Encode
// behaves as if every input were below CompressThreshold).
func NewCodec(dict *tokendict.Dictionary, counter tokendict.TokenCounter, enc tokendict.Encoding) *Codec {
	return &Codec{Dictionary: dict, Counter: counter, Encoding: enc}
}

// WithLogger sets the Codec's Logger and returns it, for chaining at
// construction time.
func (c *Codec) WithLogger(l logger.Logger) *Codec {
	c.Logger = l
	return c
}

// EncodeOptions configures one Encode call.
type EncodeOptions struct {
	Schema   wire.Schema
	Security wire.SecurityMode
	// HMACKey is required when Security == SecurityHmac.
	HMACKey []byte
	// AEADKey is required when Security == SecurityAead.
	AEADKey []byte
	// ExtraFlags OR's additional schema-specific flag bits the caller
	// has already computed (e.g. FlagHasTools) on top of the ones this
	// codec infers itself (FlagCompressed).
	ExtraFlags wire.Flags
}

// Encode implements spec.md §4.10.
func (c *Codec) Encode(payload []byte, opts EncodeOptions) (out []byte, err error) {
	start := time.Now()
	modeLabel := securityModeLabel(opts.Security)
	defer func() {
		metrics.FrameCodecDuration.WithLabelValues("encode").Observe(time.Since(start).Seconds())
		if err == nil {
			metrics.FramesEncoded.WithLabelValues(modeLabel).Inc()
			metrics.FrameSize.Observe(float64(len(out)))
		}
	}()

	if !utf8.Valid(payload) {
		return nil, wrapErr(StageEncode, ErrInvalidUTF8)
	}
	if uint64(len(payload)) > MaxPayloadLen {
		return nil, wrapErr(StageEncode, ErrPayloadTooLarge)
	}

	routing, err := extractRoutingHeader(payload)
	if err != nil {
		return nil, wrapErr(StageJSONParse, err)
	}

	body := payload
	flags := opts.ExtraFlags
	if c.Dictionary != nil && c.Counter != nil {
		compressed, used := c.Dictionary.Compress(string(payload), c.Encoding, c.Counter)
		if used {
			body = []byte(compressed)
			flags = flags.WithCommonFlag(wire.FlagCompressed)
			if len(payload) > 0 {
				metrics.FrameCompressionRatio.Observe(float64(len(body)) / float64(len(payload)))
			}
		}
	}

	routingBytes, err := routing.Marshal(false)
	if err != nil {
		return nil, wrapErr(StageEncode, err)
	}

	fixed := wire.FixedHeader{
		HeaderLen: uint16(len(routingBytes)),
		Schema:    opts.Schema,
		Security:  opts.Security,
		Flags:     flags,
	}
	fixedBytes := fixed.Marshal()
	aad := append(append([]byte{}, fixedBytes...), routingBytes...)

	crc := crc32.ChecksumIEEE(body)
	lenAndCrc := make([]byte, 8)
	binary.LittleEndian.PutUint32(lenAndCrc[0:4], uint32(len(body)))
	binary.LittleEndian.PutUint32(lenAndCrc[4:8], crc)
	plainTrailer := append(lenAndCrc, body...)

	var trailer []byte
	switch opts.Security {
	case wire.SecurityNone:
		trailer = plainTrailer
	case wire.SecurityHmac:
		if len(opts.HMACKey) == 0 {
			return nil, wrapErr(StageEncode, ErrSecurityKeyMissing)
		}
		h, err := seal.NewHMAC(opts.HMACKey)
		if err != nil {
			return nil, wrapErr(StageEncode, err)
		}
		tag := h.Sign(append(append([]byte{}, aad...), plainTrailer...))
		trailer = append(plainTrailer, tag...)
	case wire.SecurityAead:
		if len(opts.AEADKey) == 0 {
			return nil, wrapErr(StageEncode, ErrSecurityKeyMissing)
		}
		a, err := seal.NewAEAD(opts.AEADKey)
		if err != nil {
			return nil, wrapErr(StageEncode, err)
		}
		sealed, err := a.Seal(plainTrailer, aad)
		if err != nil {
			return nil, wrapErr(StageEncode, err)
		}
		sealedLen := make([]byte, 4)
		binary.LittleEndian.PutUint32(sealedLen, uint32(len(sealed)))
		trailer = append(sealedLen, sealed...)
	default:
		return nil, wrapErr(StageEncode, wire.ErrUnknownSecurityMode)
	}

	out := make([]byte, 0, len(Prefix)+len(fixedBytes)+len(routingBytes)+len(trailer))
	out = append(out, Prefix...)
	out = append(out, fixedBytes...)
	out = append(out, routingBytes...)
	out = append(out, trailer...)
	return out, nil
}

// DecodeOptions supplies the key material Decode needs for the
// security mode the frame itself declares.
type DecodeOptions struct {
	HMACKey []byte
	AEADKey []byte
}

// Decode implements spec.md §4.11.
func (c *Codec) Decode(data []byte, opts DecodeOptions) (out []byte, err error) {
	start := time.Now()
	modeLabel := "unknown"
	defer func() {
		metrics.FrameCodecDuration.WithLabelValues("decode").Observe(time.Since(start).Seconds())
		if err == nil {
			metrics.FramesDecoded.WithLabelValues(modeLabel, "success").Inc()
			return
		}
		stage := "unknown"
		if ferr, ok := err.(*Error); ok {
			stage = string(ferr.Stage)
		}
		metrics.FramesDecoded.WithLabelValues(modeLabel, "failure").Inc()
		metrics.FrameDecodeErrors.WithLabelValues(stage).Inc()
		if c.Logger != nil {
			c.Logger.Warn("frame decode failed", logger.String("stage", stage), logger.Error(err))
		}
	}()

	if len(data) < len(Prefix) || string(data[:len(Prefix)]) != Prefix {
		return nil, wrapErr(StageBadPrefix, ErrBadPrefix)
	}
	rest := data[len(Prefix):]

	fixed, err := wire.ParseFixedHeader(rest)
	if err != nil {
		return nil, wrapErr(StageHeaderParse, err)
	}
	modeLabel = securityModeLabel(fixed.Security)
	fixedBytes := rest[:wire.FixedHeaderSize]
	rest = rest[wire.FixedHeaderSize:]

	if len(rest) < int(fixed.HeaderLen) {
		return nil, wrapErr(StageRoutingParse, wire.ErrRoutingShort)
	}
	routingBytes := rest[:fixed.HeaderLen]
	rest = rest[fixed.HeaderLen:]

	hasExtensions := fixed.Flags.HasCommonFlag(wire.FlagHasExtensions)
	if _, err := wire.ParseRoutingHeader(routingBytes, hasExtensions); err != nil {
		return nil, wrapErr(StageRoutingParse, err)
	}

	aad := append(append([]byte{}, fixedBytes...), routingBytes...)

	var plainTrailer []byte
	switch fixed.Security {
	case wire.SecurityNone:
		plainTrailer = rest
	case wire.SecurityHmac:
		if len(opts.HMACKey) == 0 {
			return nil, wrapErr(StageSecurityVerify, ErrSecurityKeyMissing)
		}
		if len(rest) < seal.TagSize {
			return nil, wrapErr(StageSecurityVerify, seal.ErrHMACVerify)
		}
		body := rest[:len(rest)-seal.TagSize]
		tag := rest[len(rest)-seal.TagSize:]
		h, err := seal.NewHMAC(opts.HMACKey)
		if err != nil {
			return nil, wrapErr(StageSecurityVerify, err)
		}
		if err := h.Verify(append(append([]byte{}, aad...), body...), tag); err != nil {
			return nil, wrapErr(StageSecurityVerify, err)
		}
		plainTrailer = body
	case wire.SecurityAead:
		if len(opts.AEADKey) == 0 {
			return nil, wrapErr(StageSecurityVerify, ErrSecurityKeyMissing)
		}
		if len(rest) < 4 {
			return nil, wrapErr(StageSecurityVerify, seal.ErrAEADOpen)
		}
		sealedLen := binary.LittleEndian.Uint32(rest[0:4])
		sealed := rest[4:]
		if uint64(len(sealed)) < uint64(sealedLen) {
			return nil, wrapErr(StageSecurityVerify, seal.ErrAEADOpen)
		}
		sealed = sealed[:sealedLen]
		a, err := seal.NewAEAD(opts.AEADKey)
		if err != nil {
			return nil, wrapErr(StageSecurityVerify, err)
		}
		plainTrailer, err = a.Open(sealed, aad)
		if err != nil {
			return nil, wrapErr(StageSecurityVerify, err)
		}
	default:
		return nil, wrapErr(StageSecurityVerify, wire.ErrUnknownSecurityMode)
	}

	if len(plainTrailer) < 8 {
		return nil, wrapErr(StageCrcMismatch, fmt.Errorf("frame: trailer shorter than len+crc header"))
	}
	payloadLen := binary.LittleEndian.Uint32(plainTrailer[0:4])
	wantCrc := binary.LittleEndian.Uint32(plainTrailer[4:8])
	body := plainTrailer[8:]
	if uint64(len(body)) != uint64(payloadLen) {
		return nil, wrapErr(StageCrcMismatch, ErrCrcMismatch)
	}
	if crc32.ChecksumIEEE(body) != wantCrc {
		return nil, wrapErr(StageCrcMismatch, ErrCrcMismatch)
	}

	if fixed.Flags.HasCommonFlag(wire.FlagCompressed) {
		if c.Dictionary == nil {
			return nil, wrapErr(StageDecompress, fmt.Errorf("frame: compressed frame but no dictionary configured"))
		}
		expanded, err := c.Dictionary.Decompress(string(body))
		if err != nil {
			return nil, wrapErr(StageDecompress, err)
		}
		body = []byte(expanded)
	}

	if !utf8.Valid(body) {
		return nil, wrapErr(StageDecompress, ErrInvalidUTF8)
	}
	return body, nil
}
