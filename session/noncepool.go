package session

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/sage-x-project/m2m/internal/metrics"
)

// poolSize is the number of pre-warmed nonces a NoncePool keeps
// buffered, bounding how often a caller can block on OS entropy.
const poolSize = 256

// NonceSize matches seal.NonceSize, the 96-bit ChaCha20-Poly1305 nonce
// length, as an untyped constant.
const NonceSize = 12

// NoncePool pre-generates random 96-bit nonces in batches of poolSize,
// so only one AEAD seal in every poolSize reads OS entropy inline
// (spec.md §5). The pool starts empty, so the first Next call performs
// the first read. Concurrent refills are deduplicated with singleflight
// so callers that find the pool empty at the same time share one refill.
type NoncePool struct {
	mu   sync.Mutex
	buf  [][]byte
	sf   singleflight.Group
}

// NewNoncePool returns an empty pool; the first Next call triggers a
// refill.
func NewNoncePool() *NoncePool {
	return &NoncePool{}
}

// Next returns a fresh, never-before-issued nonce, refilling the
// internal buffer if it is empty.
func (p *NoncePool) Next() ([]byte, error) {
	p.mu.Lock()
	if len(p.buf) > 0 {
		n := p.buf[len(p.buf)-1]
		p.buf = p.buf[:len(p.buf)-1]
		p.mu.Unlock()
		return n, nil
	}
	p.mu.Unlock()

	v, err, _ := p.sf.Do("refill", func() (any, error) {
		filled, err := fillNonces(poolSize)
		if err != nil {
			return nil, err
		}
		p.mu.Lock()
		p.buf = append(p.buf, filled...)
		p.mu.Unlock()
		metrics.NonceRefills.Inc()
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	_ = v

	// Other callers sharing this refill may already have drained it.
	return p.Next()
}

func fillNonces(n int) ([][]byte, error) {
	raw := make([]byte, n*NonceSize)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return nil, fmt.Errorf("session: reading entropy for nonce pool: %w", err)
	}
	out := make([][]byte, n)
	for i := 0; i < n; i++ {
		out[i] = raw[i*NonceSize : (i+1)*NonceSize]
	}
	return out, nil
}
