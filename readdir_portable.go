//go:build !unix || aix

package dirlist

// readdir_portable.go implements the I/O backend contract for platforms
// without a usable fstatat surface (windows, aix, wasm, plan9). Everything
// goes through the portable os APIs with joined paths; device/inode identity
// is unavailable, so the cycle guard degrades to never matching (recursive
// symlink loops cannot occur without symlink dereference on these targets).

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

const readDirBatchSize = 1024

type dirStream struct {
	path string
	f    *os.File
}

func openDirStream(path string) (*dirStream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	return &dirStream{path: path, f: f}, nil
}

func (d *dirStream) readBatch(_ []byte, emit func(name []byte, hint FileType)) error {
	entries, err := d.f.ReadDir(readDirBatchSize)

	for _, e := range entries {
		emit([]byte(e.Name()), hintFromFileMode(e.Type()))
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

func hintFromFileMode(typ fs.FileMode) FileType {
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

func (d *dirStream) identity() (devIno, bool, error) {
	// No stable device/inode identity on this platform; the walker skips the
	// cycle guard for this directory.
	return devIno{}, false, nil
}

func (d *dirStream) statEntry(name string, follow bool) (Metadata, FileType, error) {
	return statPath(filepath.Join(d.path, name), follow)
}

func (d *dirStream) readlink(name string) (string, error) {
	return os.Readlink(filepath.Join(d.path, name))
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

// statRoot stats a command-line root by path.
func statRoot(path string, follow bool) (Metadata, FileType, error) {
	return statPath(path, follow)
}

func statPath(path string, follow bool) (Metadata, FileType, error) {
	var (
		info os.FileInfo
		err  error
	)

	if follow {
		info, err = os.Stat(path)
	} else {
		info, err = os.Lstat(path)
	}

	if err != nil {
		return Metadata{}, TypeUnknown, err
	}

	return metadataFromInfo(info), hintFromFileMode(info.Mode().Type()), nil
}

func metadataFromInfo(info os.FileInfo) Metadata {
	mode := info.Mode()

	return Metadata{
		Mode:  modeBitsFromFileMode(mode),
		Nlink: 1,
		Size:  info.Size(),
		MTime: info.ModTime().UnixNano(),
	}
}

// modeBitsFromFileMode reconstructs raw st_mode bits from an fs.FileMode so
// the mode-dependent rendering works the same on every platform.
func modeBitsFromFileMode(mode fs.FileMode) uint32 {
	bits := uint32(mode.Perm())

	switch {
	case mode.IsRegular():
		bits |= modeTypeReg
	case mode&fs.ModeDir != 0:
		bits |= modeTypeDir
	case mode&fs.ModeSymlink != 0:
		bits |= modeTypeLnk
	case mode&fs.ModeNamedPipe != 0:
		bits |= modeTypeFifo
	case mode&fs.ModeSocket != 0:
		bits |= modeTypeSock
	case mode&fs.ModeCharDevice != 0:
		bits |= modeTypeChr
	case mode&fs.ModeDevice != 0:
		bits |= modeTypeBlk
	}

	if mode&fs.ModeSetuid != 0 {
		bits |= 0o4000
	}

	if mode&fs.ModeSetgid != 0 {
		bits |= 0o2000
	}

	if mode&fs.ModeSticky != 0 {
		bits |= 0o1000
	}

	return bits
}

// isTransientReadError reports whether a directory read error should be
// retried in place. No such error class exists on this backend.
func isTransientReadError(error) bool { return false }
