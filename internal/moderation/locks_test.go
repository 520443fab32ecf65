package moderation

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedLocksReleaseEntries(t *testing.T) {
	l := newKeyedLocks[string]()

	unlock := l.lock("a")
	assert.Equal(t, 1, l.size())
	unlock()
	unlock()
	assert.Equal(t, 0, l.size())

	for i := 0; i < 100; i++ {
		l.lock(string(rune('a' + i%26)))()
	}
	assert.Equal(t, 0, l.size())
}

func TestKeyedLocksSerializeSameKey(t *testing.T) {
	l := newKeyedLocks[int]()
	var (
		wg      sync.WaitGroup
		counter int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.lock(7)
			defer unlock()
			v := counter
			counter = v + 1
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
	assert.Equal(t, 0, l.size())
}
