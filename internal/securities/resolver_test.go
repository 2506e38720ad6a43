package securities

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveIsIdempotent(t *testing.T) {
	r := NewMemoryResolver()

	identity := Identity{Name: "Barrick Gold Co", WKN: "067901108", Currency: "USD"}

	first, err := r.Resolve(identity)
	require.NoError(t, err)
	second, err := r.Resolve(identity)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, r.Len())
}

func TestResolveDistinguishesIdentities(t *testing.T) {
	r := NewMemoryResolver()

	a, err := r.Resolve(Identity{Name: "Netflix Inc", WKN: "64110L106"})
	require.NoError(t, err)
	b, err := r.Resolve(Identity{Name: "Netflix Inc", WKN: "64110L107"})
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, r.Len())
}

func TestResolveConcurrent(t *testing.T) {
	r := NewMemoryResolver()
	identity := Identity{Name: "Vanguard Index Fds", WKN: "922908363", Currency: "USD"}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Resolve(identity)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, r.Len())
}
