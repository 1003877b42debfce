package absexec

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFindings_RecordKeepsFirstSiteAndCounts(t *testing.T) {
	f := newFindings()
	f.Record(PossibleFault, ArithmeticException, Site{Method: "A.f", PC: 4})
	f.Record(PossibleFault, ArithmeticException, Site{Method: "A.f", PC: 9})
	f.Record(NoFault, ArithmeticException, Site{Method: "A.f", PC: 1})
	f.Record(ConfirmedFault, "java.lang.ArrayIndexOutOfBoundsException", Site{Method: "A.f", PC: 2})
	f.Record(ConfirmedFault, ArithmeticException, Site{Method: "A.f", PC: 7})

	want := []Exception{"java.lang.ArrayIndexOutOfBoundsException", ArithmeticException}
	if diff := cmp.Diff(want, f.Confirmed()); diff != "" {
		t.Errorf("confirmed order mismatch (-want +got):\n%s", diff)
	}
	if !f.IsPossible(ArithmeticException) || !f.IsConfirmed(ArithmeticException) {
		t.Error("expected ArithmeticException in both sets")
	}

	_, possible := f.Details()
	wantPossible := []Finding{{Exception: ArithmeticException, Count: 2, First: Site{Method: "A.f", PC: 4}}}
	if diff := cmp.Diff(wantPossible, possible); diff != "" {
		t.Errorf("possible details mismatch (-want +got):\n%s", diff)
	}
}

func TestFindings_EmptyByDefault(t *testing.T) {
	f := newFindings()
	if len(f.Confirmed()) != 0 || len(f.Possible()) != 0 {
		t.Errorf("expected empty findings, got %v / %v", f.Confirmed(), f.Possible())
	}
	if f.IsPossible(ArithmeticException) {
		t.Error("empty findings report a possible exception")
	}
}

func TestResult_FindingDetailsFromRun(t *testing.T) {
	res := analyze(t, alwaysThrows5(), []Value{AnyInt(), AnyInt()}, quietOptions())
	want := []Finding{{Exception: ArithmeticException, Count: 1, First: Site{Method: "alwaysThrows5", PC: 10}}}
	if diff := cmp.Diff(want, res.PossibleDetails); diff != "" {
		t.Errorf("possible details mismatch (-want +got):\n%s", diff)
	}
	if len(res.ConfirmedDetails) != 0 {
		t.Errorf("unexpected confirmed details %v", res.ConfirmedDetails)
	}
}
