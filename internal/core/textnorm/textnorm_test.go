package textnorm

import "testing"

func TestFold_Table(t *testing.T) {
	tests := []struct {
		name string
		in   string
		out  string
	}{
		{
			name: "identity ascii",
			in:   "tuesday open mic",
			out:  "tuesday open mic",
		},
		{
			name: "utf8 repair drops invalid bytes",
			in:   string([]byte{0xff, 'm', 'i', 'c', 0x80, ' ', 'n', 'i', 'g', 'h', 't'}),
			out:  "mic night",
		},
		{
			name: "case fold",
			in:   "Wednesday Night LAUGHS",
			out:  "wednesday night laughs",
		},
		{
			name: "remove zero-widths",
			in:   "co​me‍dy", // ZERO WIDTH SPACE + ZERO WIDTH JOINER
			out:  "comedy",
		},
		{
			name: "remove combining marks",
			in:   "café comedy", // "café" using combining acute accent
			out:  "cafe comedy",
		},
		{
			name: "width fold fullwidth",
			in:   "ＯＰＥＮ ｍｉｃ", // fullwidth OPEN mic
			out:  "open mic",
		},
		{
			name: "nfkc ligature",
			in:   "oﬃce party", // ffi ligature
			out:  "office party",
		},
		{
			name: "collapse whitespace",
			in:   "  open\t\tmic \n night   ",
			out:  "open mic night",
		},
		{
			name: "empty",
			in:   "",
			out:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Fold(tt.in); got != tt.out {
				t.Fatalf("Fold(%q) = %q, want %q", tt.in, got, tt.out)
			}
		})
	}
}

func TestFold_Deterministic(t *testing.T) {
	in := "Ｗednesday​ Night  Café"
	first := Fold(in)
	for i := 0; i < 50; i++ {
		if got := Fold(in); got != first {
			t.Fatalf("Fold not deterministic: %q vs %q", got, first)
		}
	}
}
