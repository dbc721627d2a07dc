package dirlist

import (
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// displayWidth measures the screen columns occupied by a raw entry name.
//
// Names come straight from the directory read and may contain bytes that are
// not valid UTF-8. Valid runs are measured with uniseg (grapheme-cluster
// aware, so combining marks and east-asian wide characters count correctly);
// each invalid byte counts as one column, matching how it is rendered (as a
// single replacement character per byte).
func displayWidth(name []byte) int {
	if len(name) == 0 {
		return 0
	}

	// Fast path: the overwhelmingly common case of a fully valid name.
	if utf8.Valid(name) {
		return uniseg.StringWidth(string(name))
	}

	width := 0
	rest := name

	for len(rest) > 0 {
		// Find the next run of valid UTF-8.
		n := 0
		for n < len(rest) {
			r, size := utf8.DecodeRune(rest[n:])
			if r == utf8.RuneError && size <= 1 {
				break
			}

			n += size
		}

		if n > 0 {
			width += uniseg.StringWidth(string(rest[:n]))
			rest = rest[n:]

			continue
		}

		// One invalid byte, one column.
		width++
		rest = rest[1:]
	}

	return width
}
