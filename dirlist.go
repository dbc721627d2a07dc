// Package dirlist enumerates the entries of directories (or bare files) and
// produces sorted, width-annotated listings ready for rendering.
//
// It is the engine behind an ls-style command: a traversal driver that
// discovers entries and guards recursive descent against symlink loops, a
// pluggable multi-key sort engine that survives locale-collation failures
// mid-sort, and a column-layout engine that packs variable-width, possibly
// multi-byte names into a terminal line. All three operate on one shared
// in-memory entry table per directory.
//
// # Usage
//
// [List] walks the given roots and returns one [DirListing] per directory in
// traversal order, plus the non-fatal errors encountered on the way:
//
//	listings, errs := dirlist.List(ctx, []string{"."},
//	        dirlist.WithSortKey(dirlist.SortMTime),
//	        dirlist.WithDirsFirst())
//	for _, l := range listings {
//	        for _, e := range l.Entries {
//	                fmt.Println(e.Name())
//	        }
//	}
//	os.Exit(int(dirlist.ExitStatus(errs)))
//
// [Layout] computes a multi-column grid for a listing's display widths, and
// [Renderer] turns listings into terminal output.
//
// # Error model
//
// Nothing in a listing run is fatal: a path that cannot be opened or stat'd
// is reported and skipped, a traversal loop abandons one directory, and a
// collation failure degrades one sort to byte order. Errors are typed
// ([IOError], [LoopError]) and carry whether the failing path was named on
// the command line; [ExitStatus] folds them into the process exit severity.
//
// # Determinism
//
// For a fixed configuration and filesystem state the output order is fully
// deterministic: every comparator is a strict total order with a byte-wise
// name tie-break, and entries with missing metadata still order consistently.
//
// # Concurrency
//
// Listing is single-threaded by design; the only asynchronous concern is
// signal delivery, handled cooperatively via [InterruptToken] at defined poll
// points. A session's state is owned by the calling goroutine.
package dirlist

import (
	"context"
	"errors"
	"fmt"
)

// Severity grades a problem for exit-status purposes.
type Severity uint8

const (
	// SeverityNone means no problem.
	SeverityNone Severity = 0
	// SeverityMinor covers failures on paths discovered during traversal.
	SeverityMinor Severity = 1
	// SeveritySerious covers failures on paths named by the caller, and
	// traversal loops.
	SeveritySerious Severity = 2
)

// IOError is returned when a filesystem operation on a path fails.
type IOError struct {
	// Path is the path the operation failed on.
	Path string
	// Op is the operation that failed: "open", "stat", or "read".
	Op string
	// Named records whether the path was named on the command line, which
	// raises the error's severity to serious.
	Named bool
	// Err is the underlying error.
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("cannot %s %q: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// LoopError is returned when recursive descent would enter a directory that
// is already being traversed (a symlink loop). The directory is abandoned;
// its siblings continue.
type LoopError struct {
	// Path is the directory that would have been visited twice.
	Path string
}

func (e *LoopError) Error() string {
	return fmt.Sprintf("%q: not listing already-listed directory", e.Path)
}

// DirListing is the listing of one directory (or of the group of non-directory
// command-line arguments, which has an empty Path and is always first).
//
// Entries is the sorted view: an order-only projection over the underlying
// entry table, ready for line-by-line or grid rendering.
type DirListing struct {
	// Path is the directory that was listed; "" for the argument group.
	Path string
	// Label is the name to display for this directory. It differs from Path
	// for symlinks-to-directories listed under their link name.
	Label string
	// CommandLine records whether this directory was named by the caller.
	CommandLine bool
	// Entries is the sorted view of the directory's contents.
	Entries []*Entry
}

// List enumerates roots and returns one DirListing per directory in traversal
// order, plus all non-fatal errors encountered.
//
// With no roots, the current directory is listed. Non-directory roots (and
// directory roots under [WithImmediateDirs]) are collected into a leading
// listing with an empty Path. Recursive descent, sorting, filtering, symlink
// policy, and diagnostics are controlled by opts.
//
// Cancelling ctx stops the walk at the next safe point; List returns whatever
// listings were completed before cancellation was observed. Cancellation
// itself is not added to the error slice; check ctx.Err().
func List(ctx context.Context, roots []string, opts ...Option) ([]*DirListing, []error) {
	cfg := applyOptions(opts)
	s := newSession(cfg)

	return s.list(ctx, roots)
}

// ExitStatus folds a List error slice into the overall run severity: the
// maximum severity observed, suitable for the process exit code (0 success,
// 1 minor problems, 2 serious trouble).
func ExitStatus(errs []error) Severity {
	sev := SeverityNone

	for _, err := range errs {
		if s := severityOf(err); s > sev {
			sev = s
		}
	}

	return sev
}

func severityOf(err error) Severity {
	var loopErr *LoopError
	if errors.As(err, &loopErr) {
		return SeveritySerious
	}

	var ioErr *IOError
	if errors.As(err, &ioErr) {
		if ioErr.Named {
			return SeveritySerious
		}

		return SeverityMinor
	}

	return SeverityMinor
}
