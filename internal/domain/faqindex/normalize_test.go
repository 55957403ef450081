package faqindex

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		out  string
	}{
		{name: "trims whitespace", in: "  Hello World  ", out: "hello world"},
		{name: "lowercases", in: "TRACK My Order", out: "track my order"},
		{name: "punctuation becomes space", in: "What's, the policy?", out: "what s the policy"},
		{name: "collapses runs", in: "a   b\t\nc", out: "a b c"},
		{name: "empty stays empty", in: "", out: ""},
		{name: "only punctuation", in: "?!...", out: ""},
	}

	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.out {
			t.Fatalf("%s: expected %q got %q", tc.name, tc.out, got)
		}
	}
}
