package raw

import "testing"

func TestGet(t *testing.T) {
	c := New().Prefix("RAWTEST_")
	t.Setenv("RAWTEST_NAME", "  micdrop ")
	if got := c.Get("NAME", "x"); got != "micdrop" {
		t.Fatalf("Get = %q, want %q", got, "micdrop")
	}
	if got := c.Get("MISSING", "fallback"); got != "fallback" {
		t.Fatalf("Get default = %q, want %q", got, "fallback")
	}
}

func TestGetBool(t *testing.T) {
	c := New().Prefix("RAWTEST_")
	for _, v := range []string{"1", "true", "yes", "TRUE"} {
		t.Setenv("RAWTEST_ON", v)
		if !c.GetBool("ON", false) {
			t.Fatalf("GetBool(%q) = false, want true", v)
		}
	}
	t.Setenv("RAWTEST_ON", "nope")
	if c.GetBool("ON", false) {
		t.Fatalf("GetBool(nope) = true, want false")
	}
	if !c.GetBool("MISSING", true) {
		t.Fatalf("GetBool default = false, want true")
	}
}

func TestGetInt(t *testing.T) {
	c := New().Prefix("RAWTEST_")
	t.Setenv("RAWTEST_N", " 42 ")
	if got := c.GetInt("N", 7); got != 42 {
		t.Fatalf("GetInt = %d, want 42", got)
	}
	t.Setenv("RAWTEST_N", "-3")
	if got := c.GetInt("N", 7); got != 7 {
		t.Fatalf("GetInt non-numeric = %d, want default 7", got)
	}
	if got := c.GetInt("MISSING", 9); got != 9 {
		t.Fatalf("GetInt default = %d, want 9", got)
	}
}

func TestNestedPrefix(t *testing.T) {
	c := New().Prefix("A_").Prefix("B_")
	t.Setenv("A_B_K", "v")
	if got := c.Get("K", ""); got != "v" {
		t.Fatalf("nested Get = %q, want %q", got, "v")
	}
}
