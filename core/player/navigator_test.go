package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShHaWkK/SpootifyCLI/model"
)

func localContext(ids ...string) []model.TrackRef {
	refs := make([]model.TrackRef, len(ids))
	for i, id := range ids {
		refs[i] = model.LocalRef(id)
	}
	return refs
}

func TestNextPreviousWalkInOrder(t *testing.T) {
	n := NewNavigator()
	n.SetContext(localContext("A", "B", "C"), 1)

	ref, ok, _ := n.Next(false)
	require.True(t, ok)
	assert.Equal(t, "C", ref.LocalID)

	ref, ok, _ = n.Previous()
	require.True(t, ok)
	assert.Equal(t, "B", ref.LocalID)
}

func TestNextHaltsAtEndWhenRepeatOff(t *testing.T) {
	n := NewNavigator()
	n.SetContext(localContext("A", "B", "C"), 2)

	_, ok, notice := n.Next(false)
	assert.False(t, ok)
	assert.Equal(t, EndOfListNotice, notice)

	// The cursor stays put, so the current track is still C.
	ref, present := n.Current()
	require.True(t, present)
	assert.Equal(t, "C", ref.LocalID)
}

func TestPreviousHaltsAtStartWhenRepeatOff(t *testing.T) {
	n := NewNavigator()
	n.SetContext(localContext("A", "B", "C"), 0)

	_, ok, notice := n.Previous()
	assert.False(t, ok)
	assert.Equal(t, EndOfListNotice, notice)
}

func TestRepeatContextWrapsBothWays(t *testing.T) {
	n := NewNavigator()
	n.SetContext(localContext("A", "B"), 1)
	n.SetRepeat(model.RepeatContext)
	require.Equal(t, model.RepeatContext, n.Repeat())

	ref, ok, _ := n.Next(false)
	require.True(t, ok)
	assert.Equal(t, "A", ref.LocalID)

	ref, ok, _ = n.Previous()
	require.True(t, ok)
	assert.Equal(t, "B", ref.LocalID)
}

func TestRepeatTrackReplaysOnAutoAdvanceOnly(t *testing.T) {
	n := NewNavigator()
	n.SetContext(localContext("A", "B", "C"), 0)
	n.SetRepeat(model.RepeatTrack)

	ref, ok, _ := n.Next(true)
	require.True(t, ok)
	assert.Equal(t, "A", ref.LocalID, "track end replays the same track")

	ref, ok, _ = n.Next(false)
	require.True(t, ok)
	assert.Equal(t, "B", ref.LocalID, "manual skip still advances")
}

func TestShuffleVisitsEveryTrackOnce(t *testing.T) {
	n := NewNavigator()
	n.SetContext(localContext("A", "B", "C", "D", "E"), 0)
	n.SetShuffle(true)
	require.True(t, n.Shuffle())
	require.Equal(t, 5, n.Len())

	seen := map[string]bool{"A": true}
	for i := 0; i < 4; i++ {
		ref, ok, _ := n.Next(false)
		require.True(t, ok)
		assert.False(t, seen[ref.LocalID], "no repeats before the order is exhausted")
		seen[ref.LocalID] = true
	}
	assert.Len(t, seen, 5)
}

func TestShufflePreviousInvertsNext(t *testing.T) {
	n := NewNavigator()
	n.SetContext(localContext("A", "B", "C", "D"), 0)
	n.SetShuffle(true)

	first, ok, _ := n.Next(false)
	require.True(t, ok)
	second, ok, _ := n.Next(false)
	require.True(t, ok)
	require.NotEqual(t, first.LocalID, second.LocalID)

	back, ok, _ := n.Previous()
	require.True(t, ok)
	assert.Equal(t, first.LocalID, back.LocalID)
}

func TestShuffleFirstStepExcludesCurrent(t *testing.T) {
	n := NewNavigator()
	n.SetContext(localContext("A", "B", "C"), 1)
	n.SetShuffle(true)

	for i := 0; i < 10; i++ {
		ref, ok, _ := n.Next(false)
		require.True(t, ok)
		if i == 0 {
			assert.NotEqual(t, "B", ref.LocalID, "first shuffled step never repeats the current track")
		}
	}
}

func TestEmptyContext(t *testing.T) {
	n := NewNavigator()
	_, ok, notice := n.Next(false)
	assert.False(t, ok)
	assert.Equal(t, EndOfListNotice, notice)
	_, present := n.Current()
	assert.False(t, present)
}
