package dirlist

import (
	"bufio"
	"fmt"
	"io"
	"os/user"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/muesli/termenv"
)

// OutputFormat selects how a listing is printed.
type OutputFormat uint8

const (
	// FormatColumns fills a grid column-major (down, then across).
	FormatColumns OutputFormat = iota
	// FormatAcross fills a grid row-major (across, then down).
	FormatAcross
	// FormatOnePerLine prints one entry per line.
	FormatOnePerLine
	// FormatLong prints mode, links, owner, group, size, time, and name.
	FormatLong
	// FormatCommas prints names separated by ", ", wrapped at LineWidth.
	FormatCommas
)

// Renderer prints DirListings to a terminal or file.
//
// Rendering consumes the sorted view and the computed column layout; it never
// re-orders entries or re-measures widths beyond the memoized per-entry
// display width.
type Renderer struct {
	// Format selects the output shape.
	Format OutputFormat
	// LineWidth is the terminal width used by grid and comma formats.
	LineWidth int
	// Classify appends a '/' to directory names.
	Classify bool
	// HumanSizes prints sizes like "1.2 MiB" in long format.
	HumanSizes bool
	// Color styles names by file type. Requires entries with metadata or
	// type hints; broken or special files get their own styles.
	Color bool

	w   *bufio.Writer
	out *termenv.Output

	// uid/gid -> name caches for long format.
	users  map[uint32]string
	groups map[uint32]string

	// now anchors the recent/old time format cutoff; zero means wall clock.
	now time.Time
}

// NewRenderer creates a renderer writing to w.
func NewRenderer(w io.Writer, format OutputFormat, lineWidth int) *Renderer {
	bw := bufio.NewWriter(w)

	return &Renderer{
		Format:    format,
		LineWidth: lineWidth,
		w:         bw,
		out:       termenv.NewOutput(bw),
	}
}

// Flush flushes buffered output. Safe to call from an interrupt handler's
// flush hook.
func (r *Renderer) Flush() error {
	return r.w.Flush()
}

// RenderAll prints every listing, with "path:" headers whenever more than one
// listing is printed (matching multi-argument and recursive output).
func (r *Renderer) RenderAll(listings []*DirListing) error {
	headers := len(listings) > 1

	first := true

	for _, l := range listings {
		if !first {
			r.w.WriteByte('\n')
		}

		first = false

		if headers && l.Path != "" {
			label := l.Label
			if label == "" {
				label = l.Path
			}

			r.w.WriteString(label)
			r.w.WriteString(":\n")
		}

		r.Render(l)
	}

	return r.w.Flush()
}

// Render prints one listing without a header.
func (r *Renderer) Render(l *DirListing) {
	switch r.Format {
	case FormatLong:
		r.renderLong(l.Entries)
	case FormatOnePerLine:
		for _, e := range l.Entries {
			r.writeName(e)
			r.w.WriteByte('\n')
		}
	case FormatCommas:
		r.renderCommas(l.Entries)
	default:
		r.renderGrid(l.Entries, r.Format == FormatColumns)
	}
}

// ============================================================================
// Grid output
// ============================================================================

func (r *Renderer) renderGrid(entries []*Entry, byColumns bool) {
	if len(entries) == 0 {
		return
	}

	widths := make([]int, len(entries))
	for i, e := range entries {
		widths[i] = r.cellWidth(e)
	}

	cols, colWidths := Layout(widths, r.LineWidth, byColumns)
	rows := (len(entries) + cols - 1) / cols

	for row := range rows {
		for col := range cols {
			var idx int
			if byColumns {
				idx = col*rows + row
			} else {
				idx = row*cols + col
			}

			if idx >= len(entries) {
				break
			}

			e := entries[idx]
			r.writeName(e)

			// Pad to the column width (which includes the gap) except after
			// the last cell in the row.
			last := col == cols-1 || idx+boolToInt(byColumns)*rows+boolToInt(!byColumns) >= len(entries)
			if !last {
				for pad := r.cellWidth(e); pad < colWidths[col]; pad++ {
					r.w.WriteByte(' ')
				}
			}
		}

		r.w.WriteByte('\n')
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}

	return 0
}

func (r *Renderer) cellWidth(e *Entry) int {
	w := e.Width()
	if r.Classify && e.IsDir() {
		w++
	}

	return w
}

// ============================================================================
// Comma output
// ============================================================================

func (r *Renderer) renderCommas(entries []*Entry) {
	pos := 0

	for i, e := range entries {
		sep := 2 // ", "
		if i == len(entries)-1 {
			sep = 0
		}

		w := r.cellWidth(e)
		if pos > 0 && pos+w+sep > r.LineWidth {
			r.w.WriteByte('\n')

			pos = 0
		}

		r.writeName(e)

		pos += w

		if i < len(entries)-1 {
			r.w.WriteString(", ")

			pos += 2
		}
	}

	if len(entries) > 0 {
		r.w.WriteByte('\n')
	}
}

// ============================================================================
// Long output
// ============================================================================

func (r *Renderer) renderLong(entries []*Entry) {
	// First pass: field widths, so links/owner/group/size align.
	var wLinks, wOwner, wGroup, wSize int

	lines := make([][5]string, len(entries))

	for i, e := range entries {
		md, ok := e.Stat()

		mode := "??????????"
		links, owner, group, size := "?", "?", "?", "?"

		if ok {
			mode = modeString(e.Type(), md.Mode)
			links = strconv.FormatUint(md.Nlink, 10)
			owner = r.userName(md.UID)
			group = r.groupName(md.GID)
			size = r.sizeString(md.Size)
		}

		lines[i] = [5]string{mode, links, owner, group, size}

		wLinks = max(wLinks, len(links))
		wOwner = max(wOwner, len(owner))
		wGroup = max(wGroup, len(group))
		wSize = max(wSize, len(size))
	}

	for i, e := range entries {
		f := lines[i]

		fmt.Fprintf(r.w, "%s %*s %-*s %-*s %*s %s ",
			f[0], wLinks, f[1], wOwner, f[2], wGroup, f[3], wSize, f[4],
			r.timeString(e))

		r.writeName(e)

		if e.Type() == TypeSymlink && e.LinkTarget() != "" {
			r.w.WriteString(" -> ")
			r.w.WriteString(e.LinkTarget())
		}

		r.w.WriteByte('\n')
	}
}

// modeString renders "drwxr-xr-x"-style permissions from raw mode bits.
func modeString(t FileType, mode uint32) string {
	var b [10]byte

	switch t {
	case TypeDirectory, TypeArgDirectory:
		b[0] = 'd'
	case TypeSymlink:
		b[0] = 'l'
	case TypeFifo:
		b[0] = 'p'
	case TypeSocket:
		b[0] = 's'
	case TypeCharDevice:
		b[0] = 'c'
	case TypeBlockDevice:
		b[0] = 'b'
	case TypeWhiteout:
		b[0] = 'w'
	default:
		b[0] = '-'
	}

	rwx := [3]byte{'r', 'w', 'x'}
	for i := range 9 {
		if mode&(1<<uint(8-i)) != 0 {
			b[1+i] = rwx[i%3]
		} else {
			b[1+i] = '-'
		}
	}

	// setuid/setgid/sticky overlay the execute slots.
	if mode&0o4000 != 0 {
		b[3] = overlayExec(b[3], 's', 'S')
	}

	if mode&0o2000 != 0 {
		b[6] = overlayExec(b[6], 's', 'S')
	}

	if mode&0o1000 != 0 {
		b[9] = overlayExec(b[9], 't', 'T')
	}

	return string(b[:])
}

func overlayExec(cur, set, unset byte) byte {
	if cur == 'x' {
		return set
	}

	return unset
}

func (r *Renderer) sizeString(size int64) string {
	if r.HumanSizes {
		return humanize.IBytes(uint64(max(size, 0)))
	}

	return strconv.FormatInt(size, 10)
}

// timeString formats the modification time: "Jan _2 15:04" for recent files,
// "Jan _2  2006" for files older than six months (or with a future
// timestamp), the classic two-format convention.
func (r *Renderer) timeString(e *Entry) string {
	md, ok := e.Stat()
	if !ok {
		return strings.Repeat(" ", 12)
	}

	t := time.Unix(0, md.MTime)

	now := r.now
	if now.IsZero() {
		now = time.Now()
	}

	recent := !t.After(now) && t.After(now.Add(-6*30*24*time.Hour))
	if recent {
		return t.Format("Jan _2 15:04")
	}

	return t.Format("Jan _2  2006")
}

func (r *Renderer) userName(uid uint32) string {
	if r.users == nil {
		r.users = make(map[uint32]string)
	}

	if name, ok := r.users[uid]; ok {
		return name
	}

	name := strconv.FormatUint(uint64(uid), 10)
	if u, err := user.LookupId(name); err == nil && u.Username != "" {
		name = u.Username
	}

	r.users[uid] = name

	return name
}

func (r *Renderer) groupName(gid uint32) string {
	if r.groups == nil {
		r.groups = make(map[uint32]string)
	}

	if name, ok := r.groups[gid]; ok {
		return name
	}

	name := strconv.FormatUint(uint64(gid), 10)
	if g, err := user.LookupGroupId(name); err == nil && g.Name != "" {
		name = g.Name
	}

	r.groups[gid] = name

	return name
}

// ============================================================================
// Names and color
// ============================================================================

// printableName returns the entry name with each invalid UTF-8 byte replaced
// by U+FFFD, one replacement per byte, matching how displayWidth counts them.
func printableName(e *Entry) string {
	raw := e.NameBytes()
	if utf8.Valid(raw) {
		return string(raw)
	}

	var b strings.Builder

	b.Grow(len(raw))

	for len(raw) > 0 {
		r, size := utf8.DecodeRune(raw)
		if r == utf8.RuneError && size <= 1 {
			b.WriteRune(utf8.RuneError)

			raw = raw[1:]

			continue
		}

		b.Write(raw[:size])

		raw = raw[size:]
	}

	return b.String()
}

func (r *Renderer) writeName(e *Entry) {
	name := printableName(e)

	if r.Color {
		if style, styled := r.styleFor(e); styled {
			r.w.WriteString(r.out.String(name).Foreground(style.fg).Bold().String())

			r.classifySuffix(e)

			return
		}
	}

	r.w.WriteString(name)
	r.classifySuffix(e)
}

func (r *Renderer) classifySuffix(e *Entry) {
	if r.Classify && e.IsDir() {
		r.w.WriteByte('/')
	}
}

type nameStyle struct {
	fg termenv.Color
}

func (r *Renderer) styleFor(e *Entry) (nameStyle, bool) {
	switch e.Type() {
	case TypeDirectory, TypeArgDirectory:
		return nameStyle{fg: r.out.Color("12")}, true // bright blue
	case TypeSymlink:
		return nameStyle{fg: r.out.Color("14")}, true // bright cyan
	case TypeFifo:
		return nameStyle{fg: r.out.Color("3")}, true // yellow
	case TypeSocket:
		return nameStyle{fg: r.out.Color("13")}, true // bright magenta
	case TypeBlockDevice, TypeCharDevice:
		return nameStyle{fg: r.out.Color("11")}, true // bright yellow
	}

	if md, ok := e.Stat(); ok && md.Mode&0o111 != 0 {
		return nameStyle{fg: r.out.Color("10")}, true // bright green
	}

	return nameStyle{}, false
}
