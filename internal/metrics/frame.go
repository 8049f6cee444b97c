package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FramesEncoded tracks encoded frames by security mode.
	FramesEncoded = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "frames",
			Name:      "encoded_total",
			Help:      "Total number of frames encoded",
		},
		[]string{"security_mode"}, // none, hmac, aead
	)

	// FramesDecoded tracks decoded frames by security mode and outcome.
	FramesDecoded = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "frames",
			Name:      "decoded_total",
			Help:      "Total number of frames decoded",
		},
		[]string{"security_mode", "status"}, // success, failure
	)

	// FrameDecodeErrors tracks decode failures by the pipeline stage
	// that rejected the frame.
	FrameDecodeErrors = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "frames",
			Name:      "decode_errors_total",
			Help:      "Total number of frame decode failures by stage",
		},
		[]string{"stage"},
	)

	// FrameSize tracks encoded frame sizes in bytes.
	FrameSize = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "frames",
			Name:      "size_bytes",
			Help:      "Encoded frame size in bytes",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 10), // 64B to 16MB
		},
	)

	// FrameCompressionRatio tracks the token-dictionary compression
	// ratio (compressed length / original length) for compressed payloads.
	FrameCompressionRatio = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "frames",
			Name:      "compression_ratio",
			Help:      "Ratio of compressed payload length to original payload length",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
		},
	)

	// FrameCodecDuration tracks encode/decode wall time.
	FrameCodecDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "frames",
			Name:      "codec_duration_seconds",
			Help:      "Frame encode/decode duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 2, 15),
		},
		[]string{"operation"}, // encode, decode
	)
)
