// Command dirlist lists directory contents.
//
// It covers the everyday surface of ls: grid, long, and one-per-line output,
// the full set of sort keys, recursive descent with symlink-loop protection,
// locale-aware name ordering, and a --watch mode that relists on filesystem
// changes.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/calvinalkan/dirlist"
)

type cliFlags struct {
	long       bool
	all        bool
	recursive  bool
	reverse    bool
	sortSize   bool
	sortTime   bool
	sortAtime  bool
	sortCtime  bool
	sortVer    bool
	sortExt    bool
	sortNone   bool
	onePerLine bool
	byColumns  bool
	byRows     bool
	commas     bool
	directory  bool
	dirsFirst  bool
	human      bool
	classify   bool
	deref      bool
	derefArgs  bool
	width      int
	color      string
	ignore     []string
	hide       []string
	locale     string
	watch      bool
	verbose    bool
}

func main() {
	var f cliFlags

	var severity dirlist.Severity

	root := &cobra.Command{
		Use:           "dirlist [flags] [path ...]",
		Short:         "list directory contents",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sev, err := run(cmd.Context(), &f, args)
			severity = sev

			return err
		},
	}

	fl := root.Flags()
	fl.BoolVarP(&f.long, "long", "l", false, "use a long listing format")
	fl.BoolVarP(&f.all, "all", "a", false, "do not hide entries starting with .")
	fl.BoolVarP(&f.recursive, "recursive", "R", false, "list subdirectories recursively")
	fl.BoolVarP(&f.reverse, "reverse", "r", false, "reverse order while sorting")
	fl.BoolVarP(&f.sortSize, "size-sort", "S", false, "sort by file size, largest first")
	fl.BoolVarP(&f.sortTime, "time-sort", "t", false, "sort by modification time, newest first")
	fl.BoolVarP(&f.sortAtime, "atime", "u", false, "with -t, sort by access time")
	fl.BoolVarP(&f.sortCtime, "ctime", "c", false, "with -t, sort by status change time")
	fl.BoolVarP(&f.sortVer, "version-sort", "v", false, "natural sort of version numbers within names")
	fl.BoolVarP(&f.sortExt, "extension-sort", "X", false, "sort alphabetically by entry extension")
	fl.BoolVarP(&f.sortNone, "no-sort", "U", false, "do not sort; list entries in directory order")
	fl.BoolVarP(&f.onePerLine, "one-per-line", "1", false, "list one file per line")
	fl.BoolVarP(&f.byColumns, "columns", "C", false, "list entries by columns")
	fl.BoolVarP(&f.byRows, "across", "x", false, "list entries by lines instead of by columns")
	fl.BoolVarP(&f.commas, "commas", "m", false, "fill width with a comma separated list of entries")
	fl.BoolVarP(&f.directory, "directory", "d", false, "list directories themselves, not their contents")
	fl.BoolVar(&f.dirsFirst, "group-directories-first", false, "group directories before files")
	fl.BoolVarP(&f.human, "human-readable", "H", false, "with -l, print sizes like 1K 234M 2G")
	fl.BoolVarP(&f.classify, "indicator", "p", false, "append / indicator to directories")
	fl.BoolVarP(&f.deref, "dereference", "L", false, "show information for the file each symlink references")
	fl.BoolVar(&f.derefArgs, "dereference-command-line", false, "follow symlinks listed on the command line")
	fl.IntVarP(&f.width, "width", "w", 0, "set output width (0 means detect)")
	fl.StringVar(&f.color, "color", "auto", "colorize the output: always, auto, never")
	fl.StringSliceVarP(&f.ignore, "ignore", "I", nil, "do not list entries matching shell PATTERN")
	fl.StringSliceVar(&f.hide, "hide", nil, "do not list entries matching PATTERN unless -a is given")
	fl.StringVar(&f.locale, "locale", "", "override the collation locale (default from environment)")
	fl.BoolVar(&f.watch, "watch", false, "relist whenever the listed directories change")
	fl.BoolVar(&f.verbose, "verbose", false, "log every diagnostic to stderr as it happens")

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "dirlist: %v\n", err)
		os.Exit(2)
	}

	// Exiting here, after run has returned, lets its deferred cleanup (signal
	// detach) execute.
	os.Exit(int(severity))
}

func run(ctx context.Context, f *cliFlags, args []string) (dirlist.Severity, error) {
	tty := isatty.IsTerminal(os.Stdout.Fd())

	width := f.width
	if width <= 0 {
		width = 80
		if tty {
			if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
				width = w
			}
		}
	}

	renderer := dirlist.NewRenderer(os.Stdout, outputFormat(f, tty), width)
	renderer.Classify = f.classify
	renderer.HumanSizes = f.human
	renderer.Color = useColor(f.color, tty)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	token := &dirlist.InterruptToken{}

	stop := dirlist.NotifySignals(token, func() {
		_ = renderer.Flush()
	})
	defer stop()

	opts := buildOptions(f, logger, token)

	if f.watch {
		err := dirlist.Watch(ctx, args, func(listings []*dirlist.DirListing, errs []error) bool {
			_ = renderer.RenderAll(listings)

			return true
		}, opts...)

		return dirlist.SeverityNone, err
	}

	listings, errs := dirlist.List(ctx, args, opts...)

	if err := renderer.RenderAll(listings); err != nil {
		return dirlist.SeveritySerious, err
	}

	if !f.verbose {
		for _, err := range errs {
			fmt.Fprintf(os.Stderr, "dirlist: %v\n", err)
		}
	}

	return dirlist.ExitStatus(errs), nil
}

func buildOptions(f *cliFlags, logger *slog.Logger, token *dirlist.InterruptToken) []dirlist.Option {
	opts := []dirlist.Option{
		dirlist.WithSortKey(sortKey(f)),
		dirlist.WithInterrupt(token),
	}

	if f.recursive {
		opts = append(opts, dirlist.WithRecursive())
	}

	if f.directory {
		opts = append(opts, dirlist.WithImmediateDirs())
	}

	if f.all {
		opts = append(opts, dirlist.WithHidden(dirlist.HideNone))
	}

	if f.reverse {
		opts = append(opts, dirlist.WithReverse())
	}

	if f.dirsFirst {
		opts = append(opts, dirlist.WithDirsFirst())
	}

	switch {
	case f.deref:
		opts = append(opts, dirlist.WithDereference(dirlist.DerefAlways))
	case f.derefArgs:
		opts = append(opts, dirlist.WithDereference(dirlist.DerefCommandLine))
	}

	if len(f.ignore) > 0 {
		opts = append(opts, dirlist.WithIgnore(f.ignore...))
	}

	if len(f.hide) > 0 {
		opts = append(opts, dirlist.WithHide(f.hide...))
	}

	if f.locale != "" {
		opts = append(opts, dirlist.WithLocale(f.locale))
	}

	// Long format reads metadata from every entry; the engine's lazy stat
	// policy only covers sort keys.
	if f.long {
		opts = append(opts, dirlist.WithStat(dirlist.StatAlways), dirlist.WithLinkTargets())
	}

	if f.verbose {
		opts = append(opts, dirlist.WithOnDiagnostic(func(err error, sev dirlist.Severity) bool {
			logger.Warn("diagnostic", "err", err, "severity", int(sev))

			return true
		}))
	}

	return opts
}

func sortKey(f *cliFlags) dirlist.SortKey {
	switch {
	case f.sortNone:
		return dirlist.SortNone
	case f.sortSize:
		return dirlist.SortSize
	case f.sortTime && f.sortAtime:
		return dirlist.SortATime
	case f.sortTime && f.sortCtime:
		return dirlist.SortCTime
	case f.sortTime:
		return dirlist.SortMTime
	case f.sortVer:
		return dirlist.SortVersion
	case f.sortExt:
		return dirlist.SortExtension
	default:
		return dirlist.SortName
	}
}

// outputFormat resolves the output shape from flags and the tty state, the
// same precedence ls uses: explicit format flags win, otherwise a terminal
// gets columns and a pipe gets one-per-line.
func outputFormat(f *cliFlags, tty bool) dirlist.OutputFormat {
	switch {
	case f.long:
		return dirlist.FormatLong
	case f.onePerLine:
		return dirlist.FormatOnePerLine
	case f.commas:
		return dirlist.FormatCommas
	case f.byRows:
		return dirlist.FormatAcross
	case f.byColumns:
		return dirlist.FormatColumns
	case tty:
		return dirlist.FormatColumns
	default:
		return dirlist.FormatOnePerLine
	}
}

func useColor(mode string, tty bool) bool {
	switch mode {
	case "always", "yes", "force":
		return true
	case "never", "no", "none":
		return false
	default:
		return tty && os.Getenv("NO_COLOR") == ""
	}
}
