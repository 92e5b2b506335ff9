package bot

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionsGetCreatesOnce(t *testing.T) {
	store := newSessions()

	var wg sync.WaitGroup
	got := make([]*Session, 8)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = store.get(42)
		}(i)
	}
	wg.Wait()

	for _, s := range got[1:] {
		assert.Same(t, got[0], s)
	}
	assert.Equal(t, StateMenu, got[0].State)
}

func TestSessionsResetKeepsCleanup(t *testing.T) {
	store := newSessions()
	s := store.get(7)
	s.State = StateReturnConfirm
	s.Row = 3
	s.track(100)
	s.track(101)

	fresh := store.reset(7)
	assert.Equal(t, StateMenu, fresh.State)
	assert.Zero(t, fresh.Row)
	assert.Equal(t, []int{100, 101}, fresh.Cleanup)
	assert.Same(t, fresh, store.get(7))
}

func TestTrackBounded(t *testing.T) {
	s := &Session{}
	for i := 0; i < maxCleanup+5; i++ {
		s.track(i)
	}
	assert.Len(t, s.Cleanup, maxCleanup)
	assert.Equal(t, 5, s.Cleanup[0], "oldest ids are dropped first")
}
