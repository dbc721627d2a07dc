//go:build unix && !aix && !linux && !darwin && !freebsd && !netbsd

package dirlist

import (
	"golang.org/x/sys/unix"
)

// fillBirthTime is a no-op on platforms without birth times; the birth-time
// sort key falls back to the name tie-break.
func fillBirthTime(_ int, _ string, _ bool, _ *unix.Stat_t, _ *Metadata) {}
