package handpose

import "fmt"

// GapPolicy controls what the history records for a side that was not
// detected in a frame.
type GapPolicy string

const (
	// GapAppend records the miss as an empty entry. Smoothing then runs over
	// fewer samples and the output empties once the window holds no hand.
	GapAppend GapPolicy = "append"
	// GapHold repeats the last detected frame of the side for up to one
	// window length of consecutive misses, then falls back to GapAppend.
	GapHold GapPolicy = "hold"
)

// ParseGapPolicy converts a config string to a GapPolicy.
// The empty string maps to GapAppend.
func ParseGapPolicy(s string) (GapPolicy, error) {
	switch GapPolicy(s) {
	case "", GapAppend:
		return GapAppend, nil
	case GapHold:
		return GapHold, nil
	}
	return "", fmt.Errorf("unknown gap policy %q", s)
}

// History is an oldest-first snapshot of a HistoryBuffer.
type History struct {
	Left  [][]Keypoint `json:"left"`
	Right [][]Keypoint `json:"right"`
}

// HistoryBuffer keeps the last N routed frames for each hand in two
// independent ring buffers. It is owned by a single pipeline and is not
// safe for concurrent use.
type HistoryBuffer struct {
	policy GapPolicy
	left   ring
	right  ring
}

// NewHistory creates a HistoryBuffer holding at most capacity frames per
// side. Capacities below 1 are raised to 1.
func NewHistory(capacity int, policy GapPolicy) *HistoryBuffer {
	if capacity < 1 {
		capacity = 1
	}
	if policy == "" {
		policy = GapAppend
	}
	return &HistoryBuffer{
		policy: policy,
		left:   newRing(capacity),
		right:  newRing(capacity),
	}
}

// Push records one frame. Each side is appended even when empty (subject to
// the gap policy); the oldest entry is evicted once the buffer is full.
func (b *HistoryBuffer) Push(f Frame) {
	b.left.push(f.Left, b.policy)
	b.right.push(f.Right, b.policy)
}

// Snapshot returns copies of both buffers, oldest first.
func (b *HistoryBuffer) Snapshot() History {
	return History{
		Left:  b.left.snapshot(),
		Right: b.right.snapshot(),
	}
}

// Len returns the number of frames currently held per side.
func (b *HistoryBuffer) Len() int {
	return b.left.n
}

// Capacity returns the fixed window length.
func (b *HistoryBuffer) Capacity() int {
	return len(b.left.entries)
}

// Policy returns the gap policy the buffer was built with.
func (b *HistoryBuffer) Policy() GapPolicy {
	return b.policy
}

// Reset drops all recorded frames.
func (b *HistoryBuffer) Reset() {
	b.left = newRing(len(b.left.entries))
	b.right = newRing(len(b.right.entries))
}

type ring struct {
	entries [][]Keypoint
	head    int // oldest entry
	n       int

	last   []Keypoint // most recent non-empty entry
	misses int        // consecutive empty pushes
}

func newRing(capacity int) ring {
	return ring{entries: make([][]Keypoint, capacity)}
}

func (r *ring) push(kps []Keypoint, policy GapPolicy) {
	if len(kps) == 0 {
		r.misses++
		kps = nil
		if policy == GapHold && r.last != nil && r.misses <= len(r.entries) {
			kps = r.last
		}
	} else {
		kps = append([]Keypoint(nil), kps...)
		r.misses = 0
		r.last = kps
	}

	size := len(r.entries)
	if r.n < size {
		r.entries[(r.head+r.n)%size] = kps
		r.n++
		return
	}
	r.entries[r.head] = kps
	r.head = (r.head + 1) % size
}

func (r *ring) snapshot() [][]Keypoint {
	out := make([][]Keypoint, r.n)
	for i := 0; i < r.n; i++ {
		out[i] = r.entries[(r.head+i)%len(r.entries)]
	}
	return out
}
