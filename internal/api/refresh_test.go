package api

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshStateSingleOwner(t *testing.T) {
	state := newRefreshState()

	wait, owner := state.join()
	require.True(t, owner)
	assert.Nil(t, wait)

	_, owner = state.join()
	assert.False(t, owner)

	state.finish(refreshResult{token: "t1"})

	_, owner = state.join()
	assert.True(t, owner, "state should be idle again once the wave is drained")
}

func TestRefreshStateDrainsWaitersInOrderExactlyOnce(t *testing.T) {
	state := newRefreshState()
	_, owner := state.join()
	require.True(t, owner)

	var waiters []<-chan refreshResult
	for range 4 {
		wait, owner := state.join()
		require.False(t, owner)
		waiters = append(waiters, wait)
	}
	assert.Equal(t, 4, state.pending())

	for i, wait := range waiters {
		assert.Equal(t, (<-chan refreshResult)(state.waiters[i]), wait)
		assert.Len(t, wait, 0, "waiter %d signalled before the refresh resolved", i)
	}

	n := state.finish(refreshResult{token: "fresh"})
	assert.Equal(t, 4, n)
	assert.Equal(t, 0, state.pending())

	for _, wait := range waiters {
		res := <-wait
		assert.Equal(t, "fresh", res.token)
		assert.NoError(t, res.err)
		assert.Len(t, wait, 0)
	}
}

func TestRefreshStatePropagatesFailure(t *testing.T) {
	state := newRefreshState()
	_, owner := state.join()
	require.True(t, owner)

	wait, _ := state.join()
	failure := errors.Mark(ErrRefreshRejected, ErrSessionExpired)
	state.finish(refreshResult{err: failure})

	res := <-wait
	assert.Empty(t, res.token)
	assert.Same(t, failure, res.err)
}
