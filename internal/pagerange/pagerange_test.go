package pagerange

import (
	"errors"
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		spec      string
		pageCount int
		expected  []int
	}{
		{
			name:      "single index",
			spec:      "0",
			pageCount: 10,
			expected:  []int{0},
		},
		{
			name:      "comma separated",
			spec:      "0,1,5",
			pageCount: 10,
			expected:  []int{0, 1, 5},
		},
		{
			name:      "range expansion",
			spec:      "5-8",
			pageCount: 10,
			expected:  []int{5, 6, 7, 8},
		},
		{
			name:      "mixed singles and ranges",
			spec:      "0,1,5-8",
			pageCount: 10,
			expected:  []int{0, 1, 5, 6, 7, 8},
		},
		{
			name:      "duplicates collapse",
			spec:      "3,3,3",
			pageCount: 10,
			expected:  []int{3},
		},
		{
			name:      "overlapping forms dedup",
			spec:      "0-2,1",
			pageCount: 10,
			expected:  []int{0, 1, 2},
		},
		{
			name:      "unsorted input sorts ascending",
			spec:      "9,2,7-8,0",
			pageCount: 10,
			expected:  []int{0, 2, 7, 8, 9},
		},
		{
			name:      "whitespace around commas ignored",
			spec:      " 0 , 1 , 5 - 8 ",
			pageCount: 10,
			expected:  []int{0, 1, 5, 6, 7, 8},
		},
		{
			name:      "empty spec selects nothing",
			spec:      "",
			pageCount: 10,
			expected:  []int{},
		},
		{
			name:      "trailing comma tolerated",
			spec:      "0,1,",
			pageCount: 10,
			expected:  []int{0, 1},
		},
		{
			name:      "single-page range",
			spec:      "4-4",
			pageCount: 10,
			expected:  []int{4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.spec, tt.pageCount)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.spec, err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Parse(%q) = %v, want %v", tt.spec, got, tt.expected)
			}
		})
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name      string
		spec      string
		pageCount int
		badToken  string
	}{
		{
			name:      "inverted range",
			spec:      "3-1",
			pageCount: 10,
			badToken:  "3-1",
		},
		{
			name:      "non-numeric token",
			spec:      "0,abc",
			pageCount: 10,
			badToken:  "abc",
		},
		{
			name:      "non-numeric range component",
			spec:      "1-x",
			pageCount: 10,
			badToken:  "1-x",
		},
		{
			name:      "index beyond page count",
			spec:      "12",
			pageCount: 10,
			badToken:  "12",
		},
		{
			name:      "range end beyond page count",
			spec:      "8-12",
			pageCount: 10,
			badToken:  "8-12",
		},
		{
			name:      "decimal is not an index",
			spec:      "1.5",
			pageCount: 10,
			badToken:  "1.5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.spec, tt.pageCount)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, expected error", tt.spec)
			}
			var rangeErr *InvalidRangeSpecError
			if !errors.As(err, &rangeErr) {
				t.Fatalf("Parse(%q) returned %T, want *InvalidRangeSpecError", tt.spec, err)
			}
			if rangeErr.Token != tt.badToken {
				t.Errorf("error names token %q, want %q", rangeErr.Token, tt.badToken)
			}
		})
	}
}

func TestAll(t *testing.T) {
	got := All(4)
	want := []int{0, 1, 2, 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("All(4) = %v, want %v", got, want)
	}

	if got := All(0); len(got) != 0 {
		t.Errorf("All(0) = %v, want empty", got)
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		indices  []int
		expected string
	}{
		{
			name:     "empty",
			indices:  nil,
			expected: "",
		},
		{
			name:     "single index",
			indices:  []int{3},
			expected: "3",
		},
		{
			name:     "consecutive run collapses",
			indices:  []int{5, 6, 7, 8},
			expected: "5-8",
		},
		{
			name:     "mixed",
			indices:  []int{0, 1, 5, 6, 7, 8},
			expected: "0-1,5-8",
		},
		{
			name:     "unsorted with duplicates",
			indices:  []int{8, 0, 5, 6, 0, 7},
			expected: "0,5-8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.indices); got != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.indices, got, tt.expected)
			}
		})
	}
}

// Parsing, re-serializing, and re-parsing a valid spec yields the same
// index set.
func TestParseFormatRoundTrip(t *testing.T) {
	specs := []string{"0", "0,1,5-8", "0-2,1", "9,2,7-8,0", "4-4", "0-9"}
	for _, spec := range specs {
		t.Run(spec, func(t *testing.T) {
			first, err := Parse(spec, 10)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", spec, err)
			}
			normalized := Format(first)
			second, err := Parse(normalized, 10)
			if err != nil {
				t.Fatalf("Parse(Format(%q)) failed: %v", spec, err)
			}
			if !reflect.DeepEqual(first, second) {
				t.Errorf("round trip mismatch: %v -> %q -> %v", first, normalized, second)
			}
		})
	}
}
