//go:build darwin || freebsd || netbsd

package dirlist

import (
	"golang.org/x/sys/unix"
)

// fillBirthTime copies the birth time the stat record already carries on
// darwin and the BSDs that report one.
func fillBirthTime(_ int, _ string, _ bool, st *unix.Stat_t, md *Metadata) {
	md.BTime = st.Btim.Nano()
	md.BTimeOK = true
}
