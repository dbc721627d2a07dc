package dirlist

import "time"

// Option configures [List] and [Watch].
// Options are applied in order.
type Option func(*options)

// DerefPolicy controls when symlinks are dereferenced.
type DerefPolicy uint8

const (
	// DerefCommandLineDirs dereferences symlinks named on the command line
	// when they resolve to directories. This is the default.
	DerefCommandLineDirs DerefPolicy = iota
	// DerefNever never dereferences symlinks.
	DerefNever
	// DerefCommandLine dereferences all symlinks named on the command line.
	DerefCommandLine
	// DerefAlways dereferences every symlink encountered.
	DerefAlways
)

// HiddenPolicy controls which names are hidden by default.
type HiddenPolicy uint8

const (
	// HideDotfiles hides names starting with '.'. This is the default.
	HideDotfiles HiddenPolicy = iota
	// HideNone shows every name.
	HideNone
)

// StatMode controls when entries are stat'd.
type StatMode uint8

const (
	// StatAuto stats entries only when the active configuration needs
	// metadata: a metadata sort key, or link-target resolution. This is the
	// default; callers that render metadata (long format, inode display,
	// mode-based coloring) request StatAlways.
	StatAuto StatMode = iota
	// StatAlways stats every entry.
	StatAlways
	// StatNever skips stat entirely; entries carry only the dirent hint.
	StatNever
)

// WithRecursive enables recursive descent into discovered subdirectories.
//
// In recursive mode, directory-typed entries are promoted into pending work
// after sorting instead of being emitted with their parent's listing, and the
// traversal is protected against symlink loops by the cycle guard.
func WithRecursive() Option {
	return func(o *options) {
		o.Recursive = true
	}
}

// WithImmediateDirs lists directories named on the command line as plain
// entries instead of listing their contents.
func WithImmediateDirs() Option {
	return func(o *options) {
		o.ImmediateDirs = true
	}
}

// WithDereference sets the symlink dereference policy.
func WithDereference(p DerefPolicy) Option {
	return func(o *options) {
		o.Deref = p
	}
}

// WithHidden sets the default-hidden policy for dotfiles.
func WithHidden(p HiddenPolicy) Option {
	return func(o *options) {
		o.Hidden = p
	}
}

// WithIgnore adds shell glob patterns for names to skip unconditionally.
func WithIgnore(patterns ...string) Option {
	return func(o *options) {
		o.Ignore = append(o.Ignore, patterns...)
	}
}

// WithHide adds shell glob patterns for names to skip unless the hidden
// policy is HideNone.
func WithHide(patterns ...string) Option {
	return func(o *options) {
		o.Hide = append(o.Hide, patterns...)
	}
}

// WithSortKey sets the primary sort key. The default is [SortName].
func WithSortKey(k SortKey) Option {
	return func(o *options) {
		o.Key = k
	}
}

// WithReverse reverses the primary sort key.
//
// Reverse applies to the primary key only: it never flips directories-first
// grouping or the byte-wise name tie-break.
func WithReverse() Option {
	return func(o *options) {
		o.Reverse = true
	}
}

// WithDirsFirst groups directory-classified entries (including symlinks that
// resolve to directories) ahead of all others, with the primary key applied
// within each group.
func WithDirsFirst() Option {
	return func(o *options) {
		o.DirsFirst = true
	}
}

// WithStat sets the stat mode. See [StatMode].
func WithStat(m StatMode) Option {
	return func(o *options) {
		o.Stat = m
	}
}

// WithLinkTargets resolves symlink targets (readlink) and the referent's mode
// for every symlink entry. Required for rendering "name -> target" and for
// grouping/coloring symlinks by what they point at.
func WithLinkTargets() Option {
	return func(o *options) {
		o.LinkTargets = true
	}
}

// WithLocale overrides the collation locale, which otherwise comes from
// LC_ALL/LC_COLLATE/LANG. "C" and "POSIX" select plain byte order.
func WithLocale(locale string) Option {
	return func(o *options) {
		o.Locale = locale
		o.LocaleSet = true
	}
}

// WithOnDiagnostic registers a handler for non-fatal diagnostics: per-path
// access errors, traversal loops, and collation degradation.
//
// The return value controls whether the diagnostic's error is collected in
// the error slice returned by [List]. Collation diagnostics are never
// collected; they do not affect the run's severity. If nil, all collectable
// errors are collected.
func WithOnDiagnostic(fn func(err error, severity Severity) bool) Option {
	return func(o *options) {
		o.OnDiagnostic = fn
	}
}

// WithInterrupt attaches a cooperative interrupt token, polled at safe points
// (after each directory entry, after sorting, after each emitted listing).
// See [InterruptToken].
func WithInterrupt(t *InterruptToken) Option {
	return func(o *options) {
		o.Interrupt = t
	}
}

// WithMinIdle sets a minimum idle time between relists for [Watch]. Bursts of
// filesystem events within the window coalesce into one relist.
// Values <= 0 use the default.
func WithMinIdle(d time.Duration) Option {
	return func(o *options) {
		o.MinIdle = d
	}
}

type options struct {
	// Recursive enables recursive descent.
	Recursive bool
	// ImmediateDirs lists directory arguments themselves.
	ImmediateDirs bool
	// Deref is the symlink dereference policy.
	Deref DerefPolicy
	// Hidden is the dotfile policy.
	Hidden HiddenPolicy
	// Ignore holds glob patterns skipped unconditionally.
	Ignore []string
	// Hide holds glob patterns skipped unless Hidden == HideNone.
	Hide []string
	// Key is the primary sort key.
	Key SortKey
	// Reverse flips the primary key.
	Reverse bool
	// DirsFirst groups directories ahead of other entries.
	DirsFirst bool
	// Stat controls when entries are stat'd.
	Stat StatMode
	// LinkTargets resolves symlink targets and referent modes.
	LinkTargets bool
	// Locale overrides the collation locale when LocaleSet.
	Locale    string
	LocaleSet bool
	// OnDiagnostic handles non-fatal diagnostics.
	OnDiagnostic func(err error, severity Severity) bool
	// Interrupt is polled at safe points.
	Interrupt *InterruptToken
	// MinIdle is the Watch relist coalescing window.
	MinIdle time.Duration
}

// applyOptions merges option values and applies defaults.
func applyOptions(opts []Option) options {
	cfg := options{Key: SortName}

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if !cfg.LocaleSet {
		cfg.Locale = localeFromEnv()
	}

	if cfg.MinIdle <= 0 {
		cfg.MinIdle = defaultWatchMinIdle
	}

	return cfg
}

// keyNeedsMetadata reports whether the sort key reads the stat record.
func keyNeedsMetadata(k SortKey) bool {
	switch k {
	case SortSize, SortMTime, SortCTime, SortATime, SortBTime:
		return true
	default:
		return false
	}
}

// needsStat resolves the lazy-stat policy for one entry: stat is skipped
// entirely unless the configuration requires metadata. The formula is kept in
// one place because it is easy to get subtly wrong.
func (o *options) needsStat(hint FileType) bool {
	switch o.Stat {
	case StatAlways:
		return true
	case StatNever:
		return false
	}

	if keyNeedsMetadata(o.Key) {
		return true
	}

	// Recursive descent and dirs-first grouping need to know which entries
	// are directories; an unknown hint forces a stat to find out.
	if hint == TypeUnknown && (o.Recursive || o.DirsFirst) {
		return true
	}

	return false
}
