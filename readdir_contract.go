package dirlist

// ============================================================================
// Internal I/O backend contract
// ============================================================================
//
// The walker is written against a small set of unexported, platform-dependent
// functions and types. Those symbols form an internal backend contract that
// each supported OS group provides via build-tagged files:
//
//   - Linux fast path (getdents64 parsing):      readdir_linux.go
//   - Other Unix (ReadDir + fstatat):            readdir_unix.go
//   - Portable (windows/aix/wasm/plan9):         readdir_portable.go
//   - Unix metadata (fstatat/readlinkat/statx):  stat_unix.go, btime_*.go
//
// This file contains no runtime dispatch; the compile-time assignments below
// document the required surface and ensure every build provides it.
//
// Semantics expected by the walker:
//
//   - readBatch appends nothing itself: it calls emit once per entry with the
//     raw name bytes (valid only during the call; emit copies what it keeps)
//     and the cheap dirent type hint, skipping "." and "..". io.EOF signals
//     exhaustion. Errors for which isTransientReadError reports true are
//     retried in place by the walker; any other error stops that directory.
//
//   - identity reports the (device, inode) of the open directory for the
//     cycle guard, with ok=false on platforms without stable identity (the
//     walker then skips loop detection for that directory).
//
//   - statEntry/readlink operate relative to the open directory so entries
//     are never re-resolved through a changed path.

// Function signatures required by the walker.
var (
	_ func(string) (*dirStream, error)               = openDirStream
	_ func(string, bool) (Metadata, FileType, error) = statRoot
	_ func(error) bool                               = isTransientReadError
)

// Method set required by the walker. The interface exists only for this
// compile-time check; call sites use *dirStream directly.
type ioDirStream interface {
	readBatch(buf []byte, emit func(name []byte, hint FileType)) error
	identity() (devIno, bool, error)
	statEntry(name string, follow bool) (Metadata, FileType, error)
	readlink(name string) (string, error)
	close() error
}

var _ ioDirStream = (*dirStream)(nil)
