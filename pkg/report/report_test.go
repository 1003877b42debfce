package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	absint "github.com/wcbup/Abstract-Interpretation"
	"github.com/wcbup/Abstract-Interpretation/absexec"
)

func sampleResults() []*absexec.Result {
	return []*absexec.Result{
		{
			RunID:            "run-1",
			Method:           "Arithmetics.alwaysThrows1",
			Confirmed:        []absexec.Exception{absexec.ArithmeticException},
			ConfirmedDetails: []absexec.Finding{{Exception: absexec.ArithmeticException, Count: 1, First: absexec.Site{Method: "Arithmetics.alwaysThrows1", PC: 2}}},
			Rounds:           3,
			Halt:             absexec.HaltExhausted,
			Terminal:         map[absexec.Status]int{absexec.Faulted: 1},
		},
		{
			RunID:           "run-2",
			Method:          "Arithmetics.alwaysThrows5",
			Possible:        []absexec.Exception{absexec.ArithmeticException},
			PossibleDetails: []absexec.Finding{{Exception: absexec.ArithmeticException, Count: 1, First: absexec.Site{Method: "Arithmetics.alwaysThrows5", PC: 10}}},
			Rounds:          10,
			Halt:            absexec.HaltExhausted,
			Terminal:        map[absexec.Status]int{absexec.Returned: 2},
			ReturnValues:    []absexec.Value{absexec.AnyInt(), absexec.NonNegative()},
		},
		{
			RunID:    "run-3",
			Method:   "Arithmetics.speedVsPrecision",
			Rounds:   25,
			Halt:     absexec.HaltBudget,
			Active:   1,
			Terminal: map[absexec.Status]int{},
		},
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatText, "TEXT": FormatText, "json": FormatJSON, "yml": FormatYAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := ParseFormat("xml")
	require.EqualError(t, err, "unknown output format: xml")
}

func TestVerdict(t *testing.T) {
	results := sampleResults()
	require.Equal(t, "throws", Verdict(results[0]))
	require.Equal(t, "may-throw", Verdict(results[1]))
	require.Equal(t, "incomplete", Verdict(results[2]))
	require.Equal(t, "ok", Verdict(&absexec.Result{}))
}

func TestRender_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleResults(), FormatText, Options{}))

	want := strings.Join([]string{
		"Arithmetics.alwaysThrows1  throws",
		"  confirmed  java.lang.ArithmeticException  pc 2 (1x)",
		"  rounds 3, exhausted, terminal faulted=1",
		"",
		"Arithmetics.alwaysThrows5  may-throw",
		"  possible   java.lang.ArithmeticException  pc 10 (1x)",
		"  rounds 10, exhausted, terminal returned=2",
		"",
		"Arithmetics.speedVsPrecision  incomplete",
		"  rounds 25, budget, terminal none, 1 active",
		"",
	}, "\n")
	require.Equal(t, want, buf.String())
}

func TestRender_TextColor(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleResults()[:1], FormatText, Options{Color: true}))
	require.Contains(t, buf.String(), "\x1b[")
}

func TestRender_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleResults(), FormatJSON, Options{}))

	var got []Entry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 3)
	require.Equal(t, "may-throw", got[1].Verdict)
	require.Equal(t, []string{"Any", "NonNegative"}, got[1].ReturnValues)
	require.Equal(t, map[string]int{"returned": 2}, got[1].Terminal)
	require.Equal(t, 10, got[1].Possible[0].First.PC)
	require.Empty(t, got[1].Confirmed)
	require.Equal(t, "budget", got[2].Halt)

	// empty finding sets serialize as [] rather than null
	require.Contains(t, buf.String(), `"confirmed": []`)
}

func TestRender_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleResults()[:1], FormatYAML, Options{}))
	out := buf.String()
	require.Contains(t, out, "method: Arithmetics.alwaysThrows1")
	require.Contains(t, out, "verdict: throws")
	require.Contains(t, out, "exception: java.lang.ArithmeticException")
	require.Contains(t, out, "faulted: 1")
}

func TestRender_UnknownFormat(t *testing.T) {
	require.Error(t, Render(&bytes.Buffer{}, nil, Format("xml"), Options{}))
}

func TestListing(t *testing.T) {
	m := absint.NewMethod("neverThrows2", []absint.TypeTag{absint.TypeInt},
		absint.GetStatic("Arithmetics", "$assertionsDisabled"),
		absint.IfZ(absint.Ne, 3),
		absint.Instruction{Op: absint.OpUnknown, Name: "throw"},
		absint.Load(0),
		absint.Return(absint.TypeInt),
	)
	m.Class = "Arithmetics"
	m.Returns = absint.TypeInt
	m.Annotations = []string{absint.CaseAnnotation}

	var buf bytes.Buffer
	require.NoError(t, Listing(&buf, m))
	want := strings.Join([]string{
		"Arithmetics.neverThrows2(int) int @Case",
		"   0: get            Arithmetics.$assertionsDisabled",
		"   1: ifz            ne 3",
		"!  2: throw          ",
		"   3: load:int       0",
		"   4: return:int     ",
		"",
	}, "\n")
	require.Equal(t, want, buf.String())
}
