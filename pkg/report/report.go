// Package report renders analysis results for people and for tools.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/itchyny/go-yaml"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"
	"github.com/wcbup/Abstract-Interpretation/absexec"
)

// Format selects the output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists the accepted format names, for flag completion and help.
var Formats = []string{string(FormatText), string(FormatJSON), string(FormatYAML)}

// ParseFormat accepts a format name case-insensitively. The empty string
// selects text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format: %s", s)
	}
}

// Options controls text rendering.
type Options struct {
	// Color enables ANSI colors in text output.
	Color bool
}

// ColorEnabled reports whether f is a terminal and NO_COLOR is unset.
func ColorEnabled(f *os.File) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Entry is the serialized form of one result.
type Entry struct {
	Method       string            `json:"method" yaml:"method"`
	Run          string            `json:"run" yaml:"run"`
	Verdict      string            `json:"verdict" yaml:"verdict"`
	Confirmed    []absexec.Finding `json:"confirmed" yaml:"confirmed"`
	Possible     []absexec.Finding `json:"possible" yaml:"possible"`
	Rounds       int               `json:"rounds" yaml:"rounds"`
	Halt         string            `json:"halt" yaml:"halt"`
	Active       int               `json:"active" yaml:"active"`
	Terminal     map[string]int    `json:"terminal" yaml:"terminal"`
	ReturnValues []string          `json:"returnValues,omitempty" yaml:"returnValues,omitempty"`
	Deduplicated int               `json:"deduplicated,omitempty" yaml:"deduplicated,omitempty"`
}

// Verdict summarizes a result in one word: "throws" when some exception is
// confirmed, "may-throw" when one is only possible, "ok" otherwise.
// A run cut short by its budget without findings is "incomplete".
func Verdict(r *absexec.Result) string {
	switch {
	case len(r.Confirmed) > 0:
		return "throws"
	case len(r.Possible) > 0:
		return "may-throw"
	case r.Halt == absexec.HaltBudget:
		return "incomplete"
	default:
		return "ok"
	}
}

// NewEntry converts r to its serialized form.
func NewEntry(r *absexec.Result) Entry {
	e := Entry{
		Method:       r.Method,
		Run:          r.RunID,
		Verdict:      Verdict(r),
		Confirmed:    nonNil(r.ConfirmedDetails),
		Possible:     nonNil(r.PossibleDetails),
		Rounds:       r.Rounds,
		Halt:         r.Halt.String(),
		Active:       r.Active,
		Terminal:     make(map[string]int, len(r.Terminal)),
		Deduplicated: r.Deduplicated,
	}
	for status, n := range r.Terminal {
		e.Terminal[status.String()] = n
	}
	for _, v := range r.ReturnValues {
		e.ReturnValues = append(e.ReturnValues, v.String())
	}
	return e
}

func nonNil(fs []absexec.Finding) []absexec.Finding {
	if fs == nil {
		return []absexec.Finding{}
	}
	return fs
}

// Render writes results to w in the given format.
func Render(w io.Writer, results []*absexec.Result, format Format, opts Options) error {
	switch format {
	case FormatJSON:
		entries := entries(results)
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case FormatYAML:
		data, err := yaml.Marshal(entries(results))
		if err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		_, err = w.Write(data)
		return err
	case FormatText, "":
		return renderText(w, results, opts)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

func entries(results []*absexec.Result) []Entry {
	out := make([]Entry, 0, len(results))
	for _, r := range results {
		out = append(out, NewEntry(r))
	}
	return out
}

type palette struct {
	bold, red, yellow, green, faint *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		bold:   color.New(color.Bold),
		red:    color.New(color.FgRed, color.Bold),
		yellow: color.New(color.FgYellow),
		green:  color.New(color.FgGreen),
		faint:  color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.bold, p.red, p.yellow, p.green, p.faint} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) verdict(v string) string {
	switch v {
	case "throws":
		return p.red.Sprint(v)
	case "may-throw", "incomplete":
		return p.yellow.Sprint(v)
	default:
		return p.green.Sprint(v)
	}
}

// renderText writes one block per result:
//
//	Arithmetics.alwaysThrows5  may-throw
//	  possible   java.lang.ArithmeticException  pc 10 (1x)
//	  rounds 12, exhausted, terminal returned=2
func renderText(w io.Writer, results []*absexec.Result, opts Options) error {
	p := newPalette(opts.Color)

	width := 0
	for _, r := range results {
		for _, fs := range [][]absexec.Finding{r.ConfirmedDetails, r.PossibleDetails} {
			for _, f := range fs {
				width = max(width, runewidth.StringWidth(string(f.Exception)))
			}
		}
	}

	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteByte('\n')
		}
		verdict := Verdict(r)
		fmt.Fprintf(&b, "%s  %s\n", p.bold.Sprint(r.Method), p.verdict(verdict))
		writeFindings(&b, p.red, "confirmed", r.ConfirmedDetails, width)
		writeFindings(&b, p.yellow, "possible", r.PossibleDetails, width)

		stats := fmt.Sprintf("rounds %d, %s, terminal %s", r.Rounds, r.Halt, terminalSummary(r.Terminal))
		if r.Active > 0 {
			stats += fmt.Sprintf(", %d active", r.Active)
		}
		if r.Deduplicated > 0 {
			stats += fmt.Sprintf(", %d deduplicated", r.Deduplicated)
		}
		fmt.Fprintf(&b, "  %s\n", p.faint.Sprint(stats))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeFindings(b *strings.Builder, c *color.Color, label string, fs []absexec.Finding, width int) {
	for _, f := range fs {
		name := runewidth.FillRight(string(f.Exception), width)
		fmt.Fprintf(b, "  %s %s  pc %d (%dx)\n", runewidth.FillRight(label, 10), c.Sprint(name), f.First.PC, f.Count)
	}
}

func terminalSummary(terminal map[absexec.Status]int) string {
	if len(terminal) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(terminal))
	for status, n := range terminal {
		parts = append(parts, fmt.Sprintf("%s=%d", status, n))
	}
	sort.Strings(parts)
	return strings.Join(parts, " ")
}
