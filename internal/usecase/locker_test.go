package usecase

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutex(t *testing.T) {
	t.Run("Serializes holders of the same key", func(t *testing.T) {
		locks := newKeyedMutex()

		var (
			wg      sync.WaitGroup
			inside  int
			maxSeen int
			mu      sync.Mutex
		)

		for range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()

				unlock := locks.Lock("A")
				defer unlock()

				mu.Lock()
				inside++
				maxSeen = max(maxSeen, inside)
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				inside--
				mu.Unlock()
			}()
		}

		wg.Wait()

		assert.Equal(t, 1, maxSeen)
		assert.Equal(t, 0, locks.len())
	})

	t.Run("Different keys do not block each other", func(t *testing.T) {
		locks := newKeyedMutex()

		unlockA := locks.Lock("A")
		defer unlockA()

		done := make(chan struct{})
		go func() {
			unlockB := locks.Lock("B")
			unlockB()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("lock on B waited for A")
		}
	})
}
