package bibtex

import (
	"reflect"
	"testing"
)

func TestSplitNames(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  []string
	}{
		{"single", "Donald E. Knuth", []string{"Donald E. Knuth"}},
		{"two", "A. One and B. Two", []string{"A. One", "B. Two"}},
		{"three", "A. One and B. Two and C. Three", []string{"A. One", "B. Two", "C. Three"}},
		{"inverted", "Knuth, Donald E. and Lamport, Leslie", []string{"Knuth, Donald E.", "Lamport, Leslie"}},
		{"uppercase and", "A. One AND B. Two", []string{"A. One", "B. Two"}},
		{"braced corporate name", "{Barnes and Noble} and A. One", []string{"{Barnes and Noble}", "A. One"}},
		{"trailing separator", "A. One and ", []string{"A. One"}},
		{"empty", "", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := splitNames(tc.input); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("splitNames(%q): got %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestSplitNamesDoesNotSplitInsideWords(t *testing.T) {
	got := splitNames("Alexander Grand")
	if len(got) != 1 || got[0] != "Alexander Grand" {
		t.Errorf("got %v, want single name", got)
	}
}

func TestNormalizePages(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"1-10", "1--10"},
		{"1 - 10", "1--10"},
		{"1--10", "1--10"},
		{"97–111", "97--111"},
		{"12", "12"},
		{"xii", "xii"},
	}

	for _, tc := range cases {
		if got := normalizePages(tc.input); got != tc.want {
			t.Errorf("normalizePages(%q): got %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestSplitKeywords(t *testing.T) {
	cases := []struct {
		input string
		want  []string
	}{
		{"a, b, c", []string{"a", "b", "c"}},
		{"a; b", []string{"a", "b"}},
		{"single keyword", []string{"single keyword"}},
		{" , ", nil},
	}

	for _, tc := range cases {
		if got := splitKeywords(tc.input); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("splitKeywords(%q): got %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestCollapseWhitespace(t *testing.T) {
	got := collapseWhitespace("  a\tb\n c  ")
	if got != "a b c" {
		t.Errorf("got %q, want %q", got, "a b c")
	}
}

func TestNormalizeSplitsAuthorsBeforeBraceStripping(t *testing.T) {
	input := `@book{corp, title={T}, year={2000}, publisher={P},
  author = {{Barnes and Noble} and Knuth, Donald E.}}`

	entries, err := ParseString(input, nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	got := entries[0].Authors
	want := []string{"Barnes and Noble", "Knuth, Donald E."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("authors: got %v, want %v", got, want)
	}
}
