package strings

import "testing"

func TestIfEmpty(t *testing.T) {
	def := []string{"boston"}
	if got := IfEmpty(nil, def); len(got) != 1 || got[0] != "boston" {
		t.Fatalf("IfEmpty(nil) = %v", got)
	}
	in := []string{"nyc"}
	if got := IfEmpty(in, def); len(got) != 1 || got[0] != "nyc" {
		t.Fatalf("IfEmpty(in) = %v", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 500); got != "short" {
		t.Fatalf("Truncate = %q", got)
	}
	if got := Truncate("abcdef", 3); got != "abc" {
		t.Fatalf("Truncate = %q, want abc", got)
	}
	if got := Truncate("abc", 0); got != "abc" {
		t.Fatalf("Truncate n=0 = %q", got)
	}
}

func TestPtrAndDeref(t *testing.T) {
	if Ptr("") != nil {
		t.Fatalf("Ptr(empty) != nil")
	}
	p := Ptr("venue")
	if p == nil || *p != "venue" {
		t.Fatalf("Ptr = %v", p)
	}
	if Deref(nil) != "" {
		t.Fatalf("Deref(nil) != empty")
	}
	if Deref(p) != "venue" {
		t.Fatalf("Deref = %q", Deref(p))
	}
}

func TestSQLNull(t *testing.T) {
	if SQLNull("  ") != nil {
		t.Fatalf("SQLNull(blank) != nil")
	}
	if SQLNull("x") != "x" {
		t.Fatalf("SQLNull(x) != x")
	}
	if SQLNullPtr(nil) != nil {
		t.Fatalf("SQLNullPtr(nil) != nil")
	}
	blank := " "
	if SQLNullPtr(&blank) != nil {
		t.Fatalf("SQLNullPtr(blank) != nil")
	}
	v := "addr"
	if SQLNullPtr(&v) != "addr" {
		t.Fatalf("SQLNullPtr = %v", SQLNullPtr(&v))
	}
}
