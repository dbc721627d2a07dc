//go:build unix && !aix

package dirlist

import (
	"errors"
	"syscall"

	"golang.org/x/sys/unix"
)

// stat_unix.go provides the metadata half of the I/O backend contract for all
// Unix platforms: fstatat-relative stats against an open directory fd, plus
// path-based stats for command-line roots. Field widths of unix.Stat_t differ
// across platforms (Dev is int32 on darwin, Nlink uint16 on the BSDs), so
// every field is converted explicitly.

// statAt stats name relative to dirfd. follow controls whether a symlink is
// dereferenced (stat vs lstat semantics).
func statAt(dirfd int, name string, follow bool) (Metadata, FileType, error) {
	flags := unix.AT_SYMLINK_NOFOLLOW
	if follow {
		flags = 0
	}

	var st unix.Stat_t

	for {
		err := unix.Fstatat(dirfd, name, &st, flags)
		if errors.Is(err, syscall.EINTR) {
			continue
		}

		if err != nil {
			return Metadata{}, TypeUnknown, err
		}

		break
	}

	md := metadataFromStat(&st)
	fillBirthTime(dirfd, name, follow, &st, &md)

	return md, typeFromMode(uint32(st.Mode)), nil
}

// statRoot stats a command-line root by path.
func statRoot(path string, follow bool) (Metadata, FileType, error) {
	return statAt(unix.AT_FDCWD, path, follow)
}

func metadataFromStat(st *unix.Stat_t) Metadata {
	return Metadata{
		Dev:   uint64(st.Dev),
		Ino:   uint64(st.Ino),
		Mode:  uint32(st.Mode),
		Nlink: uint64(st.Nlink),
		UID:   st.Uid,
		GID:   st.Gid,
		Size:  st.Size,
		ATime: st.Atim.Nano(),
		MTime: st.Mtim.Nano(),
		CTime: st.Ctim.Nano(),
	}
}

// readlinkAt resolves a symlink relative to dirfd, growing the buffer until
// the target fits.
func readlinkAt(dirfd int, name string) (string, error) {
	for size := 128; ; size *= 2 {
		buf := make([]byte, size)

		var (
			n   int
			err error
		)

		for {
			n, err = unix.Readlinkat(dirfd, name, buf)
			if errors.Is(err, syscall.EINTR) {
				continue
			}

			break
		}

		if err != nil {
			return "", err
		}

		if n < size {
			return string(buf[:n]), nil
		}
	}
}

// isTransientReadError reports whether a directory read error should be
// retried in place rather than aborting the directory.
func isTransientReadError(err error) bool {
	return errors.Is(err, unix.EOVERFLOW)
}
