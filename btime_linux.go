//go:build linux

package dirlist

import (
	"golang.org/x/sys/unix"
)

// fillBirthTime fetches the birth time via statx(2). The regular stat result
// carries no birth time on Linux, so this is a second syscall, made only when
// statx and the filesystem actually report one. Kernels without statx or
// filesystems without btime leave BTimeOK false; the birth-time sort key then
// falls back to the name tie-break.
func fillBirthTime(dirfd int, name string, follow bool, _ *unix.Stat_t, md *Metadata) {
	flags := unix.AT_SYMLINK_NOFOLLOW
	if follow {
		flags = 0
	}

	var stx unix.Statx_t

	err := unix.Statx(dirfd, name, flags|unix.AT_STATX_DONT_SYNC, unix.STATX_BTIME, &stx)
	if err != nil {
		return
	}

	if stx.Mask&unix.STATX_BTIME == 0 {
		return
	}

	md.BTime = stx.Btime.Sec*1e9 + int64(stx.Btime.Nsec)
	md.BTimeOK = true
}
