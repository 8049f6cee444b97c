// Package session holds per-peer state built on top of the frame
// codec: negotiated capabilities, a SecurityContext, and a sequence
// counter, spec.md §4.12.
package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sage-x-project/m2m/internal/logger"
	"github.com/sage-x-project/m2m/internal/metrics"
)

// State is the session lifecycle, spec.md §4.12.
type State int

const (
	StateNegotiating State = iota
	StateActive
	StateClosed
)

// ErrSessionClosed is returned by EncryptFrame/DecryptFrame on a closed
// session.
var ErrSessionClosed = errors.New("session: session is closed")

// ErrNotActive is returned when an operation that requires State ==
// StateActive is attempted in another state.
var ErrNotActive = errors.New("session: session is not active")

// Session is a per-peer runtime object: its SecurityContext, the
// capabilities negotiated with that peer, and a monotonically
// increasing sequence counter that is bookkeeping only — it forms no
// part of any AAD by default, since random nonces already carry
// anti-replay duty (spec.md §4.12).
type Session struct {
	mu           sync.Mutex
	id           string
	peerID       string
	state        State
	capabilities Capabilities
	ctx          *SecurityContext
	sequence     uint64
	replay       *ReplayWindow
	log          logger.Logger
}

// New creates a session in StateNegotiating for peerID, logging through
// the package-level default logger.
func New(id, peerID string) *Session {
	return &Session{id: id, peerID: peerID, state: StateNegotiating, log: logger.GetDefaultLogger()}
}

// WithLogger overrides the session's logger and returns it, for
// chaining at construction time.
func (s *Session) WithLogger(l logger.Logger) *Session {
	s.log = l
	return s
}

// Activate records the negotiated capabilities and SecurityContext,
// transitioning Negotiating -> Active.
func (s *Session) Activate(caps Capabilities, ctx *SecurityContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.capabilities = caps
	s.ctx = ctx
	s.state = StateActive
	metrics.SessionsCreated.WithLabelValues("success").Inc()
	metrics.SessionsActive.Inc()
	if s.log != nil {
		s.log.Info("session activated", logger.String("session_id", s.id), logger.String("peer_id", s.peerID))
	}
}

// EnableReplayWindow turns on the optional replay-window extension
// (spec.md §4.12's "optional replay-window per-session ... for a
// future extension"), tracking the last windowSize sequence numbers
// seen from the peer.
func (s *Session) EnableReplayWindow(windowSize int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replay = NewReplayWindow(windowSize)
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// PeerID returns the remote peer identifier.
func (s *Session) PeerID() string { return s.peerID }

// State reports the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Capabilities returns the negotiated capability set.
func (s *Session) Capabilities() Capabilities {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.capabilities
}

// NextSequence returns the next outgoing sequence number and
// increments the counter. It is bookkeeping only; callers that need
// anti-replay protection should pair it with EnableReplayWindow on the
// receiving side.
func (s *Session) NextSequence() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	seq := s.sequence
	s.sequence++
	return seq
}

// EncryptFrame seals plaintext under the session's SecurityContext.
func (s *Session) EncryptFrame(plaintext, aad []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return nil, ErrSessionClosed
	}
	if s.state != StateActive {
		return nil, ErrNotActive
	}
	out, err := s.ctx.Seal(plaintext, aad)
	if err == nil {
		metrics.SessionMessageSize.WithLabelValues("outbound").Observe(float64(len(out)))
	}
	return out, err
}

// DecryptFrameWithSequence verifies and opens data, additionally
// rejecting sequence numbers the ReplayWindow has already seen when
// one is enabled.
func (s *Session) DecryptFrameWithSequence(data, aad []byte, seq uint64) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return nil, ErrSessionClosed
	}
	if s.state != StateActive {
		return nil, ErrNotActive
	}
	if s.replay != nil {
		if !s.replay.Accept(seq) {
			metrics.ReplayRejections.Inc()
			if s.log != nil {
				s.log.Warn("replay window rejected sequence", logger.String("session_id", s.id), logger.Uint64("sequence", seq))
			}
			return nil, fmt.Errorf("session: sequence %d rejected by replay window", seq)
		}
	}
	out, err := s.ctx.Open(data, aad)
	if err == nil {
		metrics.SessionMessageSize.WithLabelValues("inbound").Observe(float64(len(out)))
	}
	return out, err
}

// DecryptFrame verifies and opens data without replay tracking.
func (s *Session) DecryptFrame(data, aad []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return nil, ErrSessionClosed
	}
	if s.state != StateActive {
		return nil, ErrNotActive
	}
	out, err := s.ctx.Open(data, aad)
	if err == nil {
		metrics.SessionMessageSize.WithLabelValues("inbound").Observe(float64(len(out)))
	}
	return out, err
}

// Close transitions the session to Closed and releases its key
// material.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return nil
	}
	s.state = StateClosed
	metrics.SessionsClosed.Inc()
	metrics.SessionsActive.Dec()
	if s.log != nil {
		s.log.Info("session closed", logger.String("session_id", s.id), logger.String("peer_id", s.peerID))
	}
	if s.ctx != nil {
		return s.ctx.Close()
	}
	return nil
}
