package review

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestKeyedMutex(t *testing.T) {
	t.Parallel()

	t.Run("serializes one key", func(t *testing.T) {
		t.Parallel()
		km := newKeyedMutex()
		key := uuid.New()

		var inside, maxInside int32
		var wg sync.WaitGroup
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock := km.Lock(key)
				defer unlock()

				n := atomic.AddInt32(&inside, 1)
				for {
					m := atomic.LoadInt32(&maxInside)
					if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
						break
					}
				}
				atomic.AddInt32(&inside, -1)
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), maxInside)
		assert.Zero(t, km.size())
	})

	t.Run("keys are independent", func(t *testing.T) {
		t.Parallel()
		km := newKeyedMutex()

		unlockA := km.Lock(uuid.New())
		unlockB := km.Lock(uuid.New())
		assert.Equal(t, 2, km.size())

		unlockA()
		unlockB()
		assert.Zero(t, km.size())
	})
}
