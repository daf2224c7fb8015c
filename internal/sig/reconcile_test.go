package sig_test

import (
	"errors"
	"testing"

	"wasmsig/internal/sig"
)

func TestSlotTag(t *testing.T) {
	cases := []struct {
		narrow, wide sig.ValueType
		want         byte
		wantErr      bool
	}{
		{sig.I32, sig.I64, 'p', false},
		{sig.I32, sig.I32, 'i', false},
		{sig.I64, sig.I64, 'j', false},
		{sig.F32, sig.F32, 'f', false},
		{sig.F64, sig.F64, 'd', false},
		{sig.I64, sig.I32, 0, true},
		{sig.F32, sig.F64, 0, true},
		{sig.F64, sig.F32, 0, true},
		{sig.I32, sig.F64, 0, true},
	}
	for _, tc := range cases {
		got, err := sig.SlotTag(tc.narrow, tc.wide)
		if tc.wantErr {
			if err == nil {
				t.Errorf("SlotTag(%s, %s): expected error, got %q", tc.narrow, tc.wide, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("SlotTag(%s, %s): %v", tc.narrow, tc.wide, err)
			continue
		}
		if got != tc.want {
			t.Errorf("SlotTag(%s, %s) = %q, want %q", tc.narrow, tc.wide, got, tc.want)
		}
	}
}

func TestReconcilePointerParam(t *testing.T) {
	narrow := sig.FuncType{
		Params:  []sig.ValueType{sig.I32, sig.I32},
		Results: []sig.ValueType{sig.I32},
	}
	wide := sig.FuncType{
		Params:  []sig.ValueType{sig.I64, sig.I32},
		Results: []sig.ValueType{sig.I32},
	}
	got, err := sig.Reconcile(narrow, wide)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if got != "ipi" {
		t.Fatalf("Reconcile = %q, want %q", got, "ipi")
	}
}

func TestReconcileVoidReturn(t *testing.T) {
	narrow := sig.FuncType{Params: []sig.ValueType{sig.F64}}
	wide := sig.FuncType{Params: []sig.ValueType{sig.F64}}
	got, err := sig.Reconcile(narrow, wide)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if got != "vd" {
		t.Fatalf("Reconcile = %q, want %q", got, "vd")
	}
}

func TestReconcileLengthInvariant(t *testing.T) {
	narrow := sig.FuncType{
		Params:  []sig.ValueType{sig.I32, sig.I64, sig.F32, sig.F64},
		Results: []sig.ValueType{sig.I32},
	}
	got, err := sig.Reconcile(narrow, narrow)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(got) != 1+len(narrow.Params) {
		t.Fatalf("len(%q) = %d, want %d", got, len(got), 1+len(narrow.Params))
	}
	if got != "iijfd" {
		t.Fatalf("Reconcile = %q, want %q", got, "iijfd")
	}
}

func TestReconcileArityMismatch(t *testing.T) {
	narrow := sig.FuncType{Params: []sig.ValueType{sig.I32}}
	wide := sig.FuncType{Params: []sig.ValueType{sig.I32, sig.I32}}
	if _, err := sig.Reconcile(narrow, wide); err == nil {
		t.Fatal("expected arity mismatch error")
	}

	narrow = sig.FuncType{Results: []sig.ValueType{sig.I32}}
	wide = sig.FuncType{}
	if _, err := sig.Reconcile(narrow, wide); err == nil {
		t.Fatal("expected result count mismatch error")
	}
}

func TestMappingInsert(t *testing.T) {
	m := sig.Mapping{}
	if err := m.Insert("bar", "vi"); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := m.Insert("bar", "vi"); err != nil {
		t.Fatalf("identical re-insert: %v", err)
	}

	err := m.Insert("bar", "vj")
	if err == nil {
		t.Fatal("expected contradiction error")
	}
	var contradiction *sig.ContradictionError
	if !errors.As(err, &contradiction) {
		t.Fatalf("expected ContradictionError, got %T", err)
	}
	if contradiction.Symbol != "bar" || contradiction.Existing != "vi" || contradiction.Incoming != "vj" {
		t.Fatalf("unexpected contradiction contents: %+v", contradiction)
	}
}

func TestMappingSymbolsSorted(t *testing.T) {
	m := sig.Mapping{"zlib": "ip", "abort": "v", "malloc": "pp"}
	syms := m.Symbols()
	want := []string{"abort", "malloc", "zlib"}
	if len(syms) != len(want) {
		t.Fatalf("Symbols() = %v, want %v", syms, want)
	}
	for i := range want {
		if syms[i] != want[i] {
			t.Fatalf("Symbols() = %v, want %v", syms, want)
		}
	}
}
