// Package pagerange parses page-selection expressions like "0,1,5-8" into
// ordered, deduplicated sets of 0-based page indices.
package pagerange

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// InvalidRangeSpecError reports a malformed page-selection token.
type InvalidRangeSpecError struct {
	Token  string
	Reason string
}

func (e *InvalidRangeSpecError) Error() string {
	return fmt.Sprintf("invalid page range token %q: %s", e.Token, e.Reason)
}

// Parse expands a page-selection expression into an ascending sequence of
// unique page indices. Tokens are comma-separated and are either a single
// non-negative integer or an inclusive "start-end" pair with start <= end.
// Whitespace around commas is ignored; empty tokens are skipped. Indices
// at or beyond pageCount are rejected.
func Parse(spec string, pageCount int) ([]int, error) {
	if strings.TrimSpace(spec) == "" {
		return []int{}, nil
	}

	seen := make(map[int]bool)
	for _, token := range strings.Split(spec, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		if strings.Contains(token, "-") {
			parts := strings.SplitN(token, "-", 2)
			start, err := parseIndex(token, parts[0])
			if err != nil {
				return nil, err
			}
			end, err := parseIndex(token, parts[1])
			if err != nil {
				return nil, err
			}
			if start > end {
				return nil, &InvalidRangeSpecError{Token: token, Reason: fmt.Sprintf("start (%d) is greater than end (%d)", start, end)}
			}
			if end >= pageCount {
				return nil, &InvalidRangeSpecError{Token: token, Reason: fmt.Sprintf("page %d is beyond the last page (%d)", end, pageCount-1)}
			}
			for i := start; i <= end; i++ {
				seen[i] = true
			}
		} else {
			idx, err := parseIndex(token, token)
			if err != nil {
				return nil, err
			}
			if idx >= pageCount {
				return nil, &InvalidRangeSpecError{Token: token, Reason: fmt.Sprintf("page %d is beyond the last page (%d)", idx, pageCount-1)}
			}
			seen[idx] = true
		}
	}

	indices := make([]int, 0, len(seen))
	for i := range seen {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	return indices, nil
}

// parseIndex parses one integer component of a token. The full token is
// reported on failure so the user sees the offending input, not a fragment.
func parseIndex(token, s string) (int, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, &InvalidRangeSpecError{Token: token, Reason: "contains non-numeric characters"}
	}
	if n < 0 {
		return 0, &InvalidRangeSpecError{Token: token, Reason: "page numbers cannot be negative"}
	}
	return n, nil
}

// All returns every page index from 0 to pageCount-1. The all-pages
// selection mode bypasses parsing entirely.
func All(pageCount int) []int {
	indices := make([]int, pageCount)
	for i := range indices {
		indices[i] = i
	}
	return indices
}

// Format serializes a set of page indices into normalized form:
// ascending, deduplicated, with consecutive runs collapsed into ranges.
// Parsing the result yields the same index set.
func Format(indices []int) string {
	if len(indices) == 0 {
		return ""
	}

	sorted := make([]int, len(indices))
	copy(sorted, indices)
	sort.Ints(sorted)

	var parts []string
	start := sorted[0]
	prev := sorted[0]
	flush := func(end int) {
		if start == end {
			parts = append(parts, strconv.Itoa(start))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", start, end))
		}
	}
	for _, idx := range sorted[1:] {
		if idx == prev {
			continue
		}
		if idx == prev+1 {
			prev = idx
			continue
		}
		flush(prev)
		start = idx
		prev = idx
	}
	flush(prev)
	return strings.Join(parts, ",")
}
