package sanitize

import "testing"

func TestText(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text untouched", "Looking for pricing", "Looking for pricing"},
		{"tags stripped", "<b>hello</b> world", "hello world"},
		{"encoded tags stripped after decode", "&lt;b&gt;bold&lt;/b&gt; note", "bold note"},
		{"whitespace trimmed", "  note  ", "note"},
		{"quotes decoded", "she said &quot;yes&quot;", `she said "yes"`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Text(tc.input); got != tc.want {
				t.Fatalf("Text(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}
