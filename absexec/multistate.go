package absexec

import (
	"crypto/sha256"
	"encoding/binary"
	"hash"

	absint "github.com/wcbup/Abstract-Interpretation"
)

// Status is the outcome of an exploration state.
type Status uint8

const (
	Running Status = iota
	Returned
	Faulted
	AssertionFailed
)

func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case Returned:
		return "returned"
	case Faulted:
		return "faulted"
	case AssertionFailed:
		return "assertion-failed"
	default:
		return "unknown"
	}
}

// State is a single exploration state: a call stack of frames and, once the
// stack is empty, its outcome. Each state owns its frames exclusively.
type State struct {
	frames []*Frame
	ret    Value
	status Status

	// Tracking for logging
	id       int    // Unique state ID
	parentID int    // Parent state ID (0 for root)
	lineage  string // Fork path, e.g. "0", "0.T", "0.T.F"
}

// NewState creates the root state executing m with the given locals.
func NewState(m *absint.Method, args []Value) *State {
	return &State{
		frames:  []*Frame{NewFrame(m, args)},
		ret:     Void(),
		lineage: "0",
	}
}

// ID returns the state's diagnostic identifier.
func (s *State) ID() int { return s.id }

// Lineage returns the fork path of the state.
func (s *State) Lineage() string { return s.lineage }

// Status reports whether the state is running or how it terminated.
func (s *State) Status() Status { return s.status }

// Terminal reports whether the call stack is empty.
func (s *State) Terminal() bool { return len(s.frames) == 0 }

// ReturnValue is the final return value; meaningful once Terminal.
func (s *State) ReturnValue() Value { return s.ret }

// Depth returns the number of frames on the call stack.
func (s *State) Depth() int { return len(s.frames) }

// Top returns the active frame, or nil for a terminal state.
func (s *State) Top() *Frame {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}

// Frames returns the call stack, bottom first. The frames are the state's
// own and must not be shared with another state.
func (s *State) Frames() []*Frame {
	return s.frames
}

// PushFrame makes f the active frame.
func (s *State) PushFrame(f *Frame) {
	s.frames = append(s.frames, f)
}

func (s *State) popFrame() {
	if len(s.frames) > 0 {
		s.frames[len(s.frames)-1] = nil
		s.frames = s.frames[:len(s.frames)-1]
	}
}

// terminate clears the call stack and records how the state ended.
func (s *State) terminate(status Status) {
	for i := range s.frames {
		s.frames[i] = nil
	}
	s.frames = s.frames[:0]
	s.status = status
}

// clone creates a deep copy of this state for forking.
func (s *State) clone() *State {
	frames := make([]*Frame, len(s.frames))
	for i, f := range s.frames {
		frames[i] = f.clone()
	}
	return &State{
		frames:   frames,
		ret:      s.ret,
		status:   s.status,
		id:       s.id,       // Clone inherits ID initially, will be reassigned
		parentID: s.parentID, // Clone inherits parent
		lineage:  s.lineage,  // Clone inherits lineage, will be extended
	}
}

// fingerprint computes a hash of this state for memoization.
// Includes: every frame's method, pc, locals and operand stack.
func (s *State) fingerprint() [sha256.Size]byte {
	h := sha256.New()

	binary.Write(h, binary.LittleEndian, uint64(len(s.frames)))
	for _, f := range s.frames {
		h.Write([]byte(f.Method.ID()))
		h.Write([]byte{0})
		binary.Write(h, binary.LittleEndian, int64(f.PC))

		slots := f.slots()
		binary.Write(h, binary.LittleEndian, uint64(len(slots)))
		for _, k := range slots {
			binary.Write(h, binary.LittleEndian, int64(k))
			hashValue(h, f.locals[k])
		}

		binary.Write(h, binary.LittleEndian, uint64(f.stack.len()))
		for _, v := range f.stack.data {
			hashValue(h, v)
		}
	}

	var sum [sha256.Size]byte
	copy(sum[:], h.Sum(nil))
	return sum
}

// hashValue hashes kind, exact payload and home slot; the home slot takes
// part because it decides where later refinements are written.
func hashValue(h hash.Hash, v Value) {
	h.Write([]byte{byte(v.Kind)})
	binary.Write(h, binary.LittleEndian, v.Int)
	binary.Write(h, binary.LittleEndian, int64(v.Home))
}

// stateSet holds the active states of one round plus memoization data.
type stateSet struct {
	states      []*State
	seen        map[[sha256.Size]byte]bool // Memoization: fingerprint → explored
	nextStateID int                        // Monotonic counter for state IDs
}

// newStateSet creates an empty set.
func newStateSet() *stateSet {
	return &stateSet{
		states:      make([]*State, 0, 32),
		seen:        make(map[[sha256.Size]byte]bool),
		nextStateID: 1, // Start from 1 (0 is reserved for root)
	}
}

// push adds a state to the set.
func (w *stateSet) push(state *State) {
	w.states = append(w.states, state)
}

// isEmpty checks if no state is active.
func (w *stateSet) isEmpty() bool {
	return len(w.states) == 0
}

// drain returns the current states and empties the set, keeping the
// memoization data.
func (w *stateSet) drain() []*State {
	states := w.states
	w.states = make([]*State, 0, len(states))
	return states
}

// markSeen records the state and reports whether it had been seen before.
func (w *stateSet) markSeen(state *State) bool {
	fp := state.fingerprint()
	if w.seen[fp] {
		return true
	}
	w.seen[fp] = true
	return false
}
