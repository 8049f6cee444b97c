package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNoncePoolIssuesUniqueNonces(t *testing.T) {
	p := NewNoncePool()
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		n, err := p.Next()
		require.NoError(t, err)
		require.Len(t, n, NonceSize)
		key := string(n)
		require.False(t, seen[key])
		seen[key] = true
	}
}

func TestNoncePoolConcurrentRefill(t *testing.T) {
	p := NewNoncePool()
	var wg sync.WaitGroup
	results := make(chan []byte, 600)
	for i := 0; i < 600; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := p.Next()
			require.NoError(t, err)
			results <- n
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]bool)
	for n := range results {
		require.False(t, seen[string(n)])
		seen[string(n)] = true
	}
}
