package player

import (
	"math/rand"
	"sync"
	"time"

	"github.com/ShHaWkK/SpootifyCLI/model"
)

// EndOfListNotice is reported when navigation halts at a boundary. It
// is informational, not an error.
const EndOfListNotice = "End of list reached."

// Navigator owns the active playback context: an ordered list of track
// references and a cursor. Shuffle materializes a random permutation
// when toggled on, so "previous" really is the inverse of "next" while
// each forward step still lands on a uniformly random not-yet-played
// track.
type Navigator struct {
	mu      sync.Mutex
	refs    []model.TrackRef
	cursor  int
	shuffle bool
	order   []int
	pos     int
	repeat  model.RepeatMode
	rng     *rand.Rand
}

func NewNavigator() *Navigator {
	return &Navigator{
		cursor: -1,
		repeat: model.RepeatOff,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetContext replaces the playback context and places the cursor on
// start. An active shuffle order is re-rolled for the new list.
func (n *Navigator) SetContext(refs []model.TrackRef, start int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.refs = make([]model.TrackRef, len(refs))
	copy(n.refs, refs)
	if start < 0 || start >= len(n.refs) {
		start = 0
	}
	if len(n.refs) == 0 {
		n.cursor = -1
		n.order = nil
		return
	}
	n.cursor = start
	if n.shuffle {
		n.reroll()
	}
}

// Current returns the track under the cursor.
func (n *Navigator) Current() (model.TrackRef, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.cursor < 0 || n.cursor >= len(n.refs) {
		return model.TrackRef{}, false
	}
	return n.refs[n.cursor], true
}

// Next advances the cursor. auto marks a track-end advance as opposed
// to a manual skip: repeat=track replays the current track only then.
// With shuffle off and repeat off, running past the last track halts
// with EndOfListNotice instead of wrapping.
func (n *Navigator) Next(auto bool) (model.TrackRef, bool, string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.refs) == 0 {
		return model.TrackRef{}, false, EndOfListNotice
	}
	if auto && n.repeat == model.RepeatTrack {
		return n.refs[n.cursor], true, ""
	}
	if n.shuffle {
		if n.pos+1 >= len(n.order) {
			// Order exhausted: roll a new one and step past the current
			// track so it is not replayed back to back.
			n.reroll()
			if len(n.order) > 1 {
				n.pos = 1
			}
		} else {
			n.pos++
		}
		n.cursor = n.order[n.pos]
		return n.refs[n.cursor], true, ""
	}
	if n.cursor+1 >= len(n.refs) {
		if n.repeat == model.RepeatOff {
			return model.TrackRef{}, false, EndOfListNotice
		}
		n.cursor = 0
	} else {
		n.cursor++
	}
	return n.refs[n.cursor], true, ""
}

// Previous moves the cursor back, halting at the first track when
// repeat is off and shuffle is off.
func (n *Navigator) Previous() (model.TrackRef, bool, string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.refs) == 0 {
		return model.TrackRef{}, false, EndOfListNotice
	}
	if n.shuffle {
		if n.pos > 0 {
			n.pos--
		} else {
			n.pos = len(n.order) - 1
		}
		n.cursor = n.order[n.pos]
		return n.refs[n.cursor], true, ""
	}
	if n.cursor == 0 {
		if n.repeat == model.RepeatOff {
			return model.TrackRef{}, false, EndOfListNotice
		}
		n.cursor = len(n.refs) - 1
	} else {
		n.cursor--
	}
	return n.refs[n.cursor], true, ""
}

// SetShuffle toggles shuffle. Enabling it rolls a fresh permutation
// starting from the current track; disabling keeps the cursor where it
// is and resumes list order from there.
func (n *Navigator) SetShuffle(on bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.shuffle == on {
		return
	}
	n.shuffle = on
	if on && len(n.refs) > 0 {
		n.reroll()
	} else {
		n.order = nil
		n.pos = 0
	}
}

func (n *Navigator) SetRepeat(mode model.RepeatMode) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if model.ValidRepeatMode(mode) {
		n.repeat = mode
	}
}

func (n *Navigator) Shuffle() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.shuffle
}

func (n *Navigator) Repeat() model.RepeatMode {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.repeat
}

func (n *Navigator) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.refs)
}

// reroll materializes a new permutation with the current track first,
// so the step after a toggle is a uniform pick among the others.
// Callers hold the lock.
func (n *Navigator) reroll() {
	n.order = n.rng.Perm(len(n.refs))
	for i, idx := range n.order {
		if idx == n.cursor {
			n.order[0], n.order[i] = n.order[i], n.order[0]
			break
		}
	}
	n.pos = 0
}
