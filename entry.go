package dirlist

// ============================================================================
// Entry and EntryTable: the shared in-memory entry store
// ============================================================================
//
// Every stage of the pipeline (walker -> sort -> layout -> renderer) operates
// on the same Entry values. The walker fills an entryTable per directory, the
// sort engine orders a []*Entry view over it, and the layout engine reads the
// memoized display widths. Entries are never copied between stages.

// FileType classifies an entry.
//
// The classification comes from the cheap directory-read type hint when
// available and is upgraded from stat metadata when the entry is stat'd.
// TypeArgDirectory marks a directory that was named on the command line; it
// participates differently in recursion (never promoted a second time).
type FileType uint8

const (
	TypeUnknown FileType = iota
	TypeFifo
	TypeCharDevice
	TypeDirectory
	TypeBlockDevice
	TypeRegular
	TypeSymlink
	TypeSocket
	TypeWhiteout
	TypeArgDirectory
)

// File-type bits of a raw st_mode, shared by all platform backends.
const (
	modeTypeMask = 0o170000
	modeTypeFifo = 0o010000
	modeTypeChr  = 0o020000
	modeTypeDir  = 0o040000
	modeTypeBlk  = 0o060000
	modeTypeReg  = 0o100000
	modeTypeLnk  = 0o120000
	modeTypeSock = 0o140000
	modeTypeWht  = 0o160000
)

// typeFromMode maps the file-type bits of a stat mode to a FileType.
func typeFromMode(mode uint32) FileType {
	switch mode & modeTypeMask {
	case modeTypeFifo:
		return TypeFifo
	case modeTypeChr:
		return TypeCharDevice
	case modeTypeDir:
		return TypeDirectory
	case modeTypeBlk:
		return TypeBlockDevice
	case modeTypeReg:
		return TypeRegular
	case modeTypeLnk:
		return TypeSymlink
	case modeTypeSock:
		return TypeSocket
	case modeTypeWht:
		return TypeWhiteout
	default:
		return TypeUnknown
	}
}

// String returns a short human-readable name for the file type.
func (t FileType) String() string {
	switch t {
	case TypeFifo:
		return "fifo"
	case TypeCharDevice:
		return "chardev"
	case TypeDirectory:
		return "directory"
	case TypeBlockDevice:
		return "blockdev"
	case TypeRegular:
		return "regular"
	case TypeSymlink:
		return "symlink"
	case TypeSocket:
		return "socket"
	case TypeWhiteout:
		return "whiteout"
	case TypeArgDirectory:
		return "directory"
	default:
		return "unknown"
	}
}

// Metadata holds the stat record for an entry.
//
// Timestamps are Unix nanoseconds to avoid time.Time allocations in the sort
// hot path. Use time.Unix(0, md.MTime) to convert when needed.
type Metadata struct {
	Dev   uint64
	Ino   uint64
	Mode  uint32
	Nlink uint64
	UID   uint32
	GID   uint32
	Size  int64

	ATime int64
	MTime int64
	CTime int64

	// BTime is the birth (creation) time, when the platform reports one.
	BTime   int64
	BTimeOK bool
}

// Entry is one filesystem object discovered during traversal.
//
// The name is kept as the raw bytes returned by the directory read; it is not
// necessarily valid UTF-8. An Entry whose stat failed (StatOK() == false) is
// still renderable from the type hint: stat failure only disables the fields
// that depend on metadata.
type Entry struct {
	name  []byte
	ftype FileType

	meta   Metadata
	statOK bool

	// linkTarget is the symlink resolution, filled only for symlinks when the
	// configuration asked for it (WithLinkTargets).
	linkTarget string

	// linkMode is the mode of the symlink referent, used to group and color
	// symlinks by what they point at. Valid only when linkModeOK.
	linkMode   uint32
	linkModeOK bool

	// cachedWidth memoizes the display width of the name (screen columns).
	// Computing it requires multi-byte width measurement, so it is filled
	// lazily by Width(). -1 means not yet measured.
	cachedWidth int

	// commandLine marks entries created from command-line arguments.
	// Failures on these raise the run severity to serious.
	commandLine bool
}

// Name returns the entry name as a string.
//
// Names are raw bytes from the directory read; the string may contain invalid
// UTF-8 sequences.
func (e *Entry) Name() string { return string(e.name) }

// NameBytes returns the raw name bytes. The slice must not be modified.
func (e *Entry) NameBytes() []byte { return e.name }

// Type returns the entry classification.
func (e *Entry) Type() FileType { return e.ftype }

// Stat returns the metadata record and whether it was successfully fetched.
func (e *Entry) Stat() (Metadata, bool) { return e.meta, e.statOK }

// LinkTarget returns the symlink target, or "" if the entry is not a symlink
// or the target was not resolved.
func (e *Entry) LinkTarget() string { return e.linkTarget }

// LinkMode returns the mode of the symlink referent, if it was resolved.
func (e *Entry) LinkMode() (uint32, bool) { return e.linkMode, e.linkModeOK }

// IsDir reports whether the entry is a directory, including symlinks whose
// referent is a directory (when the referent mode was resolved). This is the
// classification used by directories-first grouping.
func (e *Entry) IsDir() bool {
	if e.ftype == TypeDirectory || e.ftype == TypeArgDirectory {
		return true
	}

	if e.ftype == TypeSymlink && e.linkModeOK {
		return e.linkMode&modeTypeMask == modeTypeDir
	}

	return false
}

// Width returns the display width of the entry name in screen columns,
// measuring multi-byte sequences. The result is memoized.
func (e *Entry) Width() int {
	if e.cachedWidth < 0 {
		e.cachedWidth = displayWidth(e.name)
	}

	return e.cachedWidth
}

// extension returns the substring from the last '.' onward, or nil if the
// name contains no dot. Used by the extension sort key.
func (e *Entry) extension() []byte {
	for i := len(e.name) - 1; i >= 0; i-- {
		if e.name[i] == '.' {
			return e.name[i:]
		}
	}

	return nil
}

// mtime/ctime/atime/btime return the timestamp for sorting. An entry whose
// stat failed (or whose platform lacks birth times) reports the zero time so
// it orders after every real timestamp under newest-first and the comparator
// stays a total order.
func (e *Entry) mtime() int64 {
	if !e.statOK {
		return 0
	}

	return e.meta.MTime
}

func (e *Entry) ctime() int64 {
	if !e.statOK {
		return 0
	}

	return e.meta.CTime
}

func (e *Entry) atime() int64 {
	if !e.statOK {
		return 0
	}

	return e.meta.ATime
}

func (e *Entry) btime() int64 {
	if !e.statOK || !e.meta.BTimeOK {
		return 0
	}

	return e.meta.BTime
}

func (e *Entry) size() int64 {
	if !e.statOK {
		return 0
	}

	return e.meta.Size
}

// ============================================================================
// entryTable: growable per-directory entry store
// ============================================================================

// entryTable owns the entries of the directory currently being processed.
//
// Names are packed into a shared arena ([]byte storage) rather than allocated
// per entry: each Entry.name is a subslice of the arena. Arena growth copies
// the storage, but previously handed-out subslices keep pointing at the old
// backing array, which stays valid, so no fixups are needed.
type entryTable struct {
	entries []Entry
	arena   []byte
}

// reset prepares the table for a new directory. The entries slice is
// reallocated (listings returned to the caller keep pointers into the old
// one); the arena is reused only when nothing references it yet.
func (t *entryTable) reset(capHint int) {
	if capHint <= 0 {
		capHint = 64
	}

	t.entries = make([]Entry, 0, capHint)
	t.arena = make([]byte, 0, capHint*24)
}

// add appends an entry with a copy of name placed in the arena and returns a
// pointer to it. The pointer is only valid until the next add (slice growth
// may move the backing array): callers must fully populate the entry before
// adding the next one. Stable pointers come from view() once the directory is
// fully read.
func (t *entryTable) add(name []byte, ftype FileType, commandLine bool) *Entry {
	start := len(t.arena)
	t.arena = append(t.arena, name...)

	t.entries = append(t.entries, Entry{
		name:        t.arena[start:len(t.arena):len(t.arena)],
		ftype:       ftype,
		cachedWidth: -1,
		commandLine: commandLine,
	})

	return &t.entries[len(t.entries)-1]
}

// view materializes the sorted-view slice: an order-only projection over the
// table. Sorting reorders the view, never the table itself.
func (t *entryTable) view() []*Entry {
	v := make([]*Entry, len(t.entries))
	for i := range t.entries {
		v[i] = &t.entries[i]
	}

	return v
}

func (t *entryTable) len() int { return len(t.entries) }
