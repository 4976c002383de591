package loader

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateTransitions(t *testing.T) {
	legal := [][2]State{
		{StateIdle, StateFetchingManifest},
		{StateFetchingManifest, StateComplete},
		{StateFetchingManifest, StateError},
		{StateComplete, StateError},
	}
	for _, tr := range legal {
		assert.True(t, tr[0].CanTransition(tr[1]), "%s -> %s", tr[0], tr[1])
	}

	illegal := [][2]State{
		{StateIdle, StateComplete},
		{StateIdle, StateIdle},
		{StateComplete, StateIdle},
		{StateComplete, StateFetchingManifest},
		{StateError, StateIdle},
		{StateError, StateComplete},
	}
	for _, tr := range illegal {
		assert.False(t, tr[0].CanTransition(tr[1]), "%s -> %s", tr[0], tr[1])
	}
}

func TestSessionTransitionRejectsIllegal(t *testing.T) {
	s := New(t.TempDir(), "https://host/", Options{})
	err := s.transition(StateComplete)
	assert.ErrorIs(t, err, ErrIllegalTransition)
	assert.Equal(t, StateIdle, s.State())
}

func TestFailFollowsTransitionTable(t *testing.T) {
	cause := errors.New("boom")

	idle := New(t.TempDir(), "https://host/", Options{})
	err := idle.fail(cause)
	assert.ErrorIs(t, err, ErrIllegalTransition)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, StateIdle, idle.State())

	fetching := New(t.TempDir(), "https://host/", Options{})
	require.NoError(t, fetching.transition(StateFetchingManifest))
	err = fetching.fail(cause)
	assert.Equal(t, cause, err)
	assert.Equal(t, StateError, fetching.State())

	// a failed session stays failed when it fails again
	err = fetching.fail(ErrSessionReuse)
	assert.Equal(t, ErrSessionReuse, err)
	assert.Equal(t, StateError, fetching.State())
}

func TestStateText(t *testing.T) {
	b, err := StateFetchingManifest.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "fetching_manifest", string(b))
	assert.True(t, StateComplete.Terminal())
	assert.False(t, StateIdle.Terminal())
	assert.True(t, strings.HasPrefix(State(42).String(), "state("))
}
