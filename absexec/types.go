package absexec

import (
	"io"
)

// Options configures abstract interpretation behavior.
type Options struct {
	// MaxRounds bounds the number of exploration rounds. Loops are not
	// widened, so this is the only termination guard. 0 means unbounded;
	// DefaultOptions sets 1000.
	MaxRounds int

	// EnableMemo drops successor states identical to an already explored
	// state. It keeps findings unchanged but lowers terminal-state counts.
	EnableMemo bool

	// Logging configuration
	LogLevel             string    // "error", "warn", "info", "debug"; "" disables logging
	LogFormat            string    // "text" (default) or "json"
	LogOutput            io.Writer // defaults to os.Stderr
	LogStackPreviewDepth int       // Max stack entries shown per trace line (default: 3)
	Logger               Logger    // overrides the fields above when set
}

// DefaultOptions returns the default configuration.
func DefaultOptions() Options {
	return Options{
		MaxRounds:            1000,
		EnableMemo:           false,
		LogLevel:             "warn",
		LogFormat:            "text",
		LogStackPreviewDepth: 3,
	}
}

// HaltReason tells why a run stopped.
type HaltReason uint8

const (
	// HaltExhausted: no active state remains.
	HaltExhausted HaltReason = iota
	// HaltBudget: the round budget ran out with states still active.
	HaltBudget
)

func (h HaltReason) String() string {
	switch h {
	case HaltExhausted:
		return "exhausted"
	case HaltBudget:
		return "budget"
	default:
		return "unknown"
	}
}

// Result is the product of a run.
type Result struct {
	RunID     string
	Method    string
	Confirmed []Exception
	Possible  []Exception

	// Per-exception detail, in the same order as Confirmed and Possible.
	ConfirmedDetails []Finding
	PossibleDetails  []Finding

	Rounds       int
	Halt         HaltReason
	Active       int            // states still active when the run halted
	Terminal     map[Status]int // terminal states by outcome
	ReturnValues []Value        // distinct return values, first-seen order
	Deduplicated int            // successors dropped by memoization
}

// TerminalCount returns the number of states that finished.
func (r *Result) TerminalCount() int {
	n := 0
	for _, c := range r.Terminal {
		n += c
	}
	return n
}
