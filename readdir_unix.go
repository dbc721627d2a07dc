//go:build unix && !aix && (!linux || android)

package dirlist

// readdir_unix.go implements directory enumeration for non-Linux Unix
// platforms (macOS, the BSDs, solaris, android). Enumeration goes through
// (*os.File).ReadDir, which still surfaces the cheap dirent type hint; the
// underlying fd is kept for fstatat-relative metadata fetches, same as the
// Linux backend.

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

const readDirBatchSize = 1024

// dirStream wraps an open directory for enumeration and fstatat-relative
// metadata fetches.
type dirStream struct {
	fd int
	f  *os.File
}

// openDirStream opens a directory for enumeration. Symlinks are followed
// (opendir semantics); the walker's dereference policy and the cycle guard
// decide what may be opened and descended into.
func openDirStream(path string) (*dirStream, error) {
	for {
		fd, err := unix.Open(path, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_CLOEXEC, 0)
		if errors.Is(err, syscall.EINTR) {
			continue
		}

		if err != nil {
			return nil, err
		}

		return &dirStream{fd: fd, f: os.NewFile(uintptr(fd), path)}, nil
	}
}

// readBatch reads up to readDirBatchSize entries and calls emit for each with
// the name bytes and the type hint. Returns io.EOF when exhausted.
func (d *dirStream) readBatch(_ []byte, emit func(name []byte, hint FileType)) error {
	entries, err := d.f.ReadDir(readDirBatchSize)

	for _, e := range entries {
		emit([]byte(e.Name()), hintFromDirEntry(e))
	}

	if err != nil {
		if errors.Is(err, io.EOF) {
			return io.EOF
		}

		return err
	}

	if len(entries) == 0 {
		return io.EOF
	}

	return nil
}

func hintFromDirEntry(e fs.DirEntry) FileType {
	typ := e.Type()

	switch {
	case typ.IsRegular():
		return TypeRegular
	case typ&fs.ModeDir != 0:
		return TypeDirectory
	case typ&fs.ModeSymlink != 0:
		return TypeSymlink
	case typ&fs.ModeNamedPipe != 0:
		return TypeFifo
	case typ&fs.ModeSocket != 0:
		return TypeSocket
	case typ&fs.ModeCharDevice != 0:
		return TypeCharDevice
	case typ&fs.ModeDevice != 0:
		return TypeBlockDevice
	default:
		return TypeUnknown
	}
}

// identity returns the (device, inode) pair of the open directory.
func (d *dirStream) identity() (devIno, bool, error) {
	var st unix.Stat_t

	for {
		err := unix.Fstat(d.fd, &st)
		if errors.Is(err, syscall.EINTR) {
			continue
		}

		if err != nil {
			return devIno{}, false, err
		}

		return devIno{dev: uint64(st.Dev), ino: uint64(st.Ino)}, true, nil
	}
}

// statEntry stats an entry of this directory by name.
func (d *dirStream) statEntry(name string, follow bool) (Metadata, FileType, error) {
	return statAt(d.fd, name, follow)
}

// readlink resolves a symlink entry of this directory.
func (d *dirStream) readlink(name string) (string, error) {
	return readlinkAt(d.fd, name)
}

func (d *dirStream) close() error {
	if d.f == nil {
		return nil
	}

	err := d.f.Close()
	d.f = nil

	if err != nil {
		return fmt.Errorf("close dir: %w", err)
	}

	return nil
}
