package absexec

import (
	"github.com/speakeasy-api/openapi/sequencedmap"
)

// Exception is a runtime exception category reported by the analysis.
type Exception string

const (
	ArithmeticException Exception = "java.lang.ArithmeticException"
)

// Site is the first place an exception was observed.
type Site struct {
	Method string `json:"method" yaml:"method"`
	PC     int    `json:"pc" yaml:"pc"`
}

// Finding is one entry of a finding set.
type Finding struct {
	Exception Exception `json:"exception" yaml:"exception"`
	Count     int       `json:"count" yaml:"count"`
	First     Site      `json:"first" yaml:"first"`
}

// Findings holds the confirmed and possible exception sets of a run. Both
// keep insertion order so reports are deterministic.
type Findings struct {
	confirmed *sequencedmap.Map[Exception, *Finding]
	possible  *sequencedmap.Map[Exception, *Finding]
}

func newFindings() *Findings {
	return &Findings{
		confirmed: sequencedmap.New[Exception, *Finding](),
		possible:  sequencedmap.New[Exception, *Finding](),
	}
}

// Record adds an observation of e at site with the given severity.
// NoFault is ignored.
func (f *Findings) Record(sev Severity, e Exception, site Site) {
	var set *sequencedmap.Map[Exception, *Finding]
	switch sev {
	case ConfirmedFault:
		set = f.confirmed
	case PossibleFault:
		set = f.possible
	default:
		return
	}
	if existing, ok := set.Get(e); ok {
		existing.Count++
		return
	}
	set.Set(e, &Finding{Exception: e, Count: 1, First: site})
}

// Confirmed returns the exceptions some path definitely raises.
func (f *Findings) Confirmed() []Exception { return keys(f.confirmed) }

// Possible returns the exceptions some path might raise.
func (f *Findings) Possible() []Exception { return keys(f.possible) }

// IsConfirmed reports whether e is in the confirmed set.
func (f *Findings) IsConfirmed(e Exception) bool {
	_, ok := f.confirmed.Get(e)
	return ok
}

// IsPossible reports whether e is in the possible set.
func (f *Findings) IsPossible(e Exception) bool {
	_, ok := f.possible.Get(e)
	return ok
}

// Details returns copies of the confirmed and possible entries.
func (f *Findings) Details() (confirmed, possible []Finding) {
	return entries(f.confirmed), entries(f.possible)
}

func keys(m *sequencedmap.Map[Exception, *Finding]) []Exception {
	out := make([]Exception, 0, m.Len())
	for k := range m.All() {
		out = append(out, k)
	}
	return out
}

func entries(m *sequencedmap.Map[Exception, *Finding]) []Finding {
	out := make([]Finding, 0, m.Len())
	for _, v := range m.All() {
		out = append(out, *v)
	}
	return out
}
