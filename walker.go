package dirlist

import (
	"context"
	"errors"
	"io"
	"path/filepath"
)

// dirReadBufSize backs getdents64 parsing on Linux; other backends read in
// entry-count batches and ignore it. 32KB reads many entries per syscall
// while staying cache-friendly.
const dirReadBufSize = 32 * 1024

// ============================================================================
// Directory walker
// ============================================================================
//
// The walker drives a stack of pending directories. Command-line roots seed
// the stack (argument order is the only ordering promise across top-level
// entries); recursive descent pushes discovered subdirectories back onto it.
//
// Cycle-guard release follows the stack too: when a directory is admitted to
// the guard, a sentinel marker carrying its (device, inode) is pushed
// *before* its subdirectories, so the marker pops only after the entire
// subtree queued during that directory has been processed. This gives guard
// entries exactly the lifetime of the recursive descent they protect.

// pendingDir is a directory queued for later traversal, or (when release is
// set) the sentinel that releases a cycle-guard entry.
type pendingDir struct {
	// path is the path to open; empty for release sentinels.
	path string
	// label is the display-name override (symlinks-to-directories are listed
	// under their link name).
	label string
	// commandLine affects error severity and dereference policy.
	commandLine bool

	// release marks a cycle-guard release sentinel; id identifies the guard
	// entry to drop.
	release bool
	id      devIno
	idOK    bool
}

type session struct {
	cfg      options
	guard    cycleGuard
	pending  []pendingDir
	listings []*DirListing
	errs     []error

	// names is the locale-collating comparator, nil when the locale is
	// C/POSIX or unsupported (plain byte order then).
	names nameComparer
}

func newSession(cfg options) *session {
	return &session{
		cfg:   cfg,
		names: newLocaleComparer(cfg.Locale),
	}
}

func (s *session) list(ctx context.Context, roots []string) ([]*DirListing, []error) {
	if len(roots) == 0 {
		roots = []string{"."}
	}

	s.gobbleRoots(roots)

	for len(s.pending) > 0 {
		if s.stopped(ctx) {
			// Cancelled mid-walk: release markers still on the stack have
			// not run, so the guard is legitimately non-empty. Return what
			// was completed.
			return s.listings, s.errs
		}

		p := s.pending[len(s.pending)-1]
		s.pending = s.pending[:len(s.pending)-1]

		if p.release {
			s.guard.remove(p.id)

			continue
		}

		s.processDir(ctx, p)
	}

	if s.guard.size() != 0 {
		// Traversal accounting bug: every guard entry must have been paired
		// with a release sentinel.
		panic("dirlist: cycle guard not empty at end of traversal")
	}

	return s.listings, s.errs
}

// gobbleRoots classifies the command-line roots: directories are queued for
// traversal (pushed in reverse so the stack pops them in argument order),
// everything else lands in the leading argument-group listing.
func (s *session) gobbleRoots(roots []string) {
	table := &entryTable{}
	table.reset(len(roots))

	var dirs []pendingDir

	for _, root := range roots {
		md, ft, err := s.statArg(root)
		if err != nil {
			s.diagnose(&IOError{Path: root, Op: "access", Named: true, Err: err})

			continue
		}

		if ft == TypeDirectory && !s.cfg.ImmediateDirs {
			p := pendingDir{path: root, label: root, commandLine: true}
			if md.Dev != 0 || md.Ino != 0 {
				p.id = devIno{dev: md.Dev, ino: md.Ino}
				p.idOK = true
			}

			dirs = append(dirs, p)

			continue
		}

		if ft == TypeDirectory {
			ft = TypeArgDirectory
		}

		e := table.add([]byte(root), ft, true)
		e.meta = md
		e.statOK = true

		if ft == TypeSymlink && s.cfg.LinkTargets {
			s.resolveLinkRoot(e, root)
		}
	}

	if table.len() > 0 {
		view := table.view()
		s.sortEntries(view)

		s.listings = append(s.listings, &DirListing{Entries: view})
	}

	for i := len(dirs) - 1; i >= 0; i-- {
		s.pending = append(s.pending, dirs[i])
	}
}

// statArg stats a command-line root under the argument dereference policy.
func (s *session) statArg(root string) (Metadata, FileType, error) {
	switch s.cfg.Deref {
	case DerefAlways, DerefCommandLine:
		return statRoot(root, true)
	case DerefNever:
		return statRoot(root, false)
	}

	// DerefCommandLineDirs: follow a symlink argument only when it resolves
	// to a directory; otherwise list the link itself.
	md, ft, err := statRoot(root, false)
	if err != nil {
		return md, ft, err
	}

	if ft == TypeSymlink {
		if tmd, tft, terr := statRoot(root, true); terr == nil && tft == TypeDirectory {
			return tmd, tft, nil
		}
	}

	return md, ft, nil
}

func (s *session) resolveLinkRoot(e *Entry, root string) {
	d, err := openDirStream(filepath.Dir(root))
	if err != nil {
		return
	}

	defer func() { _ = d.close() }()

	if target, lerr := d.readlink(filepath.Base(root)); lerr == nil {
		e.linkTarget = target
	}

	if md, _, serr := d.statEntry(filepath.Base(root), true); serr == nil {
		e.linkMode = md.Mode
		e.linkModeOK = true
	}
}

// processDir lists one pending directory: open, admit to the cycle guard,
// read and filter entries, sort, promote subdirectories in recursive mode,
// and emit the listing.
func (s *session) processDir(ctx context.Context, p pendingDir) {
	d, err := openDirStream(p.path)
	if err != nil {
		s.diagnose(&IOError{Path: p.path, Op: "open", Named: p.commandLine, Err: err})

		return
	}

	defer func() { _ = d.close() }()

	if s.cfg.Recursive {
		id, idOK := p.id, p.idOK
		if !idOK {
			var iderr error

			id, idOK, iderr = d.identity()
			if iderr != nil {
				s.diagnose(&IOError{Path: p.path, Op: "stat", Named: p.commandLine, Err: iderr})
			}
		}

		if idOK {
			if s.guard.contains(id) {
				s.diagnose(&LoopError{Path: p.path})

				return
			}

			s.guard.add(id)
			// The paired release sentinel goes under everything this
			// directory will queue.
			s.pending = append(s.pending, pendingDir{release: true, id: id})
		}
	}

	table := &entryTable{}
	table.reset(64)

	buf := make([]byte, dirReadBufSize)

	for {
		readErr := d.readBatch(buf, func(name []byte, hint FileType) {
			if s.skipName(name) {
				return
			}

			e := table.add(name, hint, false)
			s.fillEntry(d, p.path, e)

			s.cfg.Interrupt.Poll()
		})

		if readErr == nil {
			if s.stopped(ctx) {
				return
			}

			continue
		}

		if errors.Is(readErr, io.EOF) {
			break
		}

		if isTransientReadError(readErr) {
			continue
		}

		// Sort and emit whatever was collected before the error.
		s.diagnose(&IOError{Path: p.path, Op: "read", Named: p.commandLine, Err: readErr})

		break
	}

	view := table.view()
	s.sortEntries(view)

	s.cfg.Interrupt.Poll()

	if s.cfg.Recursive {
		view = s.promoteSubdirs(p, view)
	}

	s.listings = append(s.listings, &DirListing{
		Path:        p.path,
		Label:       p.label,
		CommandLine: p.commandLine,
		Entries:     view,
	})

	s.cfg.Interrupt.Poll()
}

// promoteSubdirs extracts directory-typed entries from the sorted view and
// queues them as pending work, preserving already-known (device, inode) pairs
// to avoid a second stat. The remaining entries stay in the listing.
//
// Pushing in reverse sorted order makes the stack pop them in sorted order,
// so recursive output follows the configured sort.
func (s *session) promoteSubdirs(p pendingDir, view []*Entry) []*Entry {
	var promoted []*Entry

	kept := make([]*Entry, 0, len(view))

	for _, e := range view {
		if e.ftype == TypeDirectory {
			promoted = append(promoted, e)

			continue
		}

		kept = append(kept, e)
	}

	for i := len(promoted) - 1; i >= 0; i-- {
		e := promoted[i]

		child := pendingDir{
			path:  filepath.Join(p.path, e.Name()),
			label: filepath.Join(p.label, e.Name()),
		}

		if e.statOK {
			child.id = devIno{dev: e.meta.Dev, ino: e.meta.Ino}
			child.idOK = e.meta.Dev != 0 || e.meta.Ino != 0
		}

		s.pending = append(s.pending, child)
	}

	return kept
}

// fillEntry completes a freshly added entry: stat when the configuration
// needs metadata, and symlink resolution when asked for. A failed stat is a
// minor diagnostic; the entry stays renderable from its dirent hint.
func (s *session) fillEntry(d *dirStream, dir string, e *Entry) {
	follow := s.cfg.Deref == DerefAlways

	if s.cfg.needsStat(e.ftype) || (follow && e.ftype == TypeSymlink) {
		md, ft, err := d.statEntry(e.Name(), follow)
		if err != nil {
			s.diagnose(&IOError{Path: filepath.Join(dir, e.Name()), Op: "stat", Err: err})

			return
		}

		e.meta = md
		e.statOK = true

		if ft != TypeUnknown {
			e.ftype = ft
		}
	}

	if e.ftype == TypeSymlink && s.cfg.LinkTargets {
		if target, err := d.readlink(e.Name()); err == nil {
			e.linkTarget = target
		}

		if md, _, err := d.statEntry(e.Name(), true); err == nil {
			e.linkMode = md.Mode
			e.linkModeOK = true
		}
	}
}

// skipName applies the dotfile policy and the ignore/hide pattern lists.
func (s *session) skipName(name []byte) bool {
	if s.cfg.Hidden == HideDotfiles && len(name) > 0 && name[0] == '.' {
		return true
	}

	if len(s.cfg.Ignore) == 0 && (s.cfg.Hidden == HideNone || len(s.cfg.Hide) == 0) {
		return false
	}

	n := string(name)

	for _, pat := range s.cfg.Ignore {
		if ok, _ := filepath.Match(pat, n); ok {
			return true
		}
	}

	if s.cfg.Hidden != HideNone {
		for _, pat := range s.cfg.Hide {
			if ok, _ := filepath.Match(pat, n); ok {
				return true
			}
		}
	}

	return false
}

func (s *session) sortEntries(view []*Entry) {
	sortView(view, s.cfg.Key, s.cfg.Reverse, s.cfg.DirsFirst, s.names, func(err error) {
		// Collation degradation is a diagnostic, never a listing failure.
		if s.cfg.OnDiagnostic != nil {
			s.cfg.OnDiagnostic(err, SeverityNone)
		}
	})
}

// diagnose reports a non-fatal error through the diagnostic handler and
// collects it unless the handler declines.
func (s *session) diagnose(err error) {
	collect := true
	if s.cfg.OnDiagnostic != nil {
		collect = s.cfg.OnDiagnostic(err, severityOf(err))
	}

	if collect {
		s.errs = append(s.errs, err)
	}
}

func (s *session) stopped(ctx context.Context) bool {
	return ctx != nil && ctx.Err() != nil
}
