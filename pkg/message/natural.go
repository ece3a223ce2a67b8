// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package message

import (
	"sort"
	"strings"
)

// NaturalCompare compares two strings case-insensitively in natural order:
// runs of digits compare by their numeric value, so `rfc822` < `rfc2086`.
// Leading zeros are ignored, `x9` < `x010` and `x010` equals `x10`.
//
// It returns -1, 0 or +1.
func NaturalCompare(a, b string) int {
	i, j := 0, 0

	for i < len(a) && j < len(b) {
		ca, cb := a[i], b[j]

		if isDigit(ca) && isDigit(cb) {
			var ra, rb string

			ra, i = digitRun(a, i)
			rb, j = digitRun(b, j)

			if c := compareNumeric(ra, rb); c != 0 {
				return c
			}

			continue
		}

		la, lb := toLower(ca), toLower(cb)
		if la != lb {
			if la < lb {
				return -1
			}

			return 1
		}

		i++
		j++
	}

	switch {
	case len(a)-i < len(b)-j:
		return -1
	case len(a)-i > len(b)-j:
		return 1
	default:
		return 0
	}
}

// NaturalLess reports whether a sorts before b in natural order.
func NaturalLess(a, b string) bool {
	return NaturalCompare(a, b) < 0
}

// NaturalKeys returns the map keys in natural order.
func NaturalKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))

	for k := range m {
		keys = append(keys, k)
	}

	sort.SliceStable(keys, func(i, j int) bool {
		if c := NaturalCompare(keys[i], keys[j]); c != 0 {
			return c < 0
		}

		// keys equal ignoring case still need a stable total order
		return keys[i] < keys[j]
	})

	return keys
}

// SortedKeys returns the map keys in plain lexicographic order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))

	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func toLower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}

	return c
}

func digitRun(s string, start int) (string, int) {
	end := start
	for end < len(s) && isDigit(s[end]) {
		end++
	}

	return s[start:end], end
}

func compareNumeric(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")

	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return strings.Compare(a, b)
	}
}
