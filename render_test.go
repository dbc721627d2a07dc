package dirlist

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func Test_ModeString_Renders_Permission_Bits(t *testing.T) {
	t.Parallel()

	cases := []struct {
		ftype FileType
		mode  uint32
		want  string
	}{
		{TypeRegular, 0o644, "-rw-r--r--"},
		{TypeDirectory, 0o755, "drwxr-xr-x"},
		{TypeSymlink, 0o777, "lrwxrwxrwx"},
		{TypeRegular, 0o4755, "-rwsr-xr-x"},
		{TypeRegular, 0o2750, "-rwxr-s---"},
		{TypeDirectory, 0o1777, "drwxrwxrwt"},
		{TypeRegular, 0o1666, "-rw-rw-rwT"},
		{TypeFifo, 0o600, "prw-------"},
	}

	for _, c := range cases {
		if got := modeString(c.ftype, c.mode); got != c.want {
			t.Errorf("modeString(%v, %o) = %q, want %q", c.ftype, c.mode, got, c.want)
		}
	}
}

func Test_Renderer_Grid_Pads_Cells_To_Column_Widths(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	r := NewRenderer(&buf, FormatAcross, 10)

	l := &DirListing{Entries: []*Entry{
		testEntry("a", TypeRegular),
		testEntry("bb", TypeRegular),
		testEntry("ccc", TypeRegular),
	}}

	r.Render(l)

	if err := r.Flush(); err != nil {
		t.Fatal(err)
	}

	if got := buf.String(); got != "a  bb  ccc\n" {
		t.Fatalf("grid output = %q, want %q", got, "a  bb  ccc\n")
	}
}

func Test_Renderer_OnePerLine_Prints_Each_Name(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	r := NewRenderer(&buf, FormatOnePerLine, 80)

	r.Render(&DirListing{Entries: []*Entry{
		testEntry("one", TypeRegular),
		testEntry("two", TypeRegular),
	}})

	if err := r.Flush(); err != nil {
		t.Fatal(err)
	}

	if got := buf.String(); got != "one\ntwo\n" {
		t.Fatalf("output = %q", got)
	}
}

func Test_Renderer_Commas_Wrap_At_Line_Width(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	r := NewRenderer(&buf, FormatCommas, 80)

	entries := []*Entry{
		testEntry("a", TypeRegular),
		testEntry("b", TypeRegular),
		testEntry("c", TypeRegular),
	}

	r.Render(&DirListing{Entries: entries})

	if err := r.Flush(); err != nil {
		t.Fatal(err)
	}

	if got := buf.String(); got != "a, b, c\n" {
		t.Fatalf("output = %q, want %q", got, "a, b, c\n")
	}

	buf.Reset()

	r = NewRenderer(&buf, FormatCommas, 5)
	r.Render(&DirListing{Entries: entries})

	if err := r.Flush(); err != nil {
		t.Fatal(err)
	}

	lines := strings.Count(buf.String(), "\n")
	if lines != 2 {
		t.Fatalf("output %q has %d lines, want 2", buf.String(), lines)
	}
}

func Test_Renderer_Replaces_Each_Invalid_Byte_With_One_Replacement_Rune(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	r := NewRenderer(&buf, FormatOnePerLine, 80)

	e := &Entry{name: []byte{'a', 0xff, 0xfe, 'b'}, ftype: TypeRegular, cachedWidth: -1}

	r.Render(&DirListing{Entries: []*Entry{e}})

	if err := r.Flush(); err != nil {
		t.Fatal(err)
	}

	if got := buf.String(); got != "a��b\n" {
		t.Fatalf("output = %q, want %q", got, "a��b\n")
	}
}

func Test_Renderer_Classify_Appends_Slash_To_Directories(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	r := NewRenderer(&buf, FormatOnePerLine, 80)
	r.Classify = true

	r.Render(&DirListing{Entries: []*Entry{
		testEntry("docs", TypeDirectory),
		testEntry("file", TypeRegular),
	}})

	if err := r.Flush(); err != nil {
		t.Fatal(err)
	}

	if got := buf.String(); got != "docs/\nfile\n" {
		t.Fatalf("output = %q", got)
	}
}

func Test_Renderer_Long_Format_Includes_Mode_Size_And_Link_Target(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	r := NewRenderer(&buf, FormatLong, 80)
	r.now = time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC)

	file := testEntry("notes.txt", TypeRegular)
	file.meta = Metadata{Mode: 0o644, Nlink: 1, Size: 42,
		MTime: time.Date(2026, time.May, 20, 9, 30, 0, 0, time.UTC).UnixNano()}
	file.statOK = true

	link := testEntry("cur", TypeSymlink)
	link.meta = Metadata{Mode: 0o777, Nlink: 1, Size: 9,
		MTime: time.Date(2020, time.January, 2, 0, 0, 0, 0, time.UTC).UnixNano()}
	link.statOK = true
	link.linkTarget = "notes.txt"

	r.Render(&DirListing{Entries: []*Entry{file, link}})

	if err := r.Flush(); err != nil {
		t.Fatal(err)
	}

	out := buf.String()

	if !strings.Contains(out, "-rw-r--r--") {
		t.Errorf("missing file mode in %q", out)
	}

	if !strings.Contains(out, " 42 ") {
		t.Errorf("missing size in %q", out)
	}

	if want := time.Unix(0, file.meta.MTime).Format("Jan _2 15:04"); !strings.Contains(out, want) {
		t.Errorf("missing recent-format time %q in %q", want, out)
	}

	if want := time.Unix(0, link.meta.MTime).Format("Jan _2  2006"); !strings.Contains(out, want) {
		t.Errorf("missing old-format time %q in %q", want, out)
	}

	if !strings.Contains(out, "cur -> notes.txt") {
		t.Errorf("missing symlink target in %q", out)
	}
}

func Test_Renderer_Long_Format_Uses_Placeholders_When_Stat_Failed(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	r := NewRenderer(&buf, FormatLong, 80)

	r.Render(&DirListing{Entries: []*Entry{testEntry("ghost", TypeRegular)}})

	if err := r.Flush(); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(buf.String(), "??????????") {
		t.Fatalf("missing mode placeholder in %q", buf.String())
	}
}

func Test_RenderAll_Prints_Headers_For_Multiple_Listings(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	r := NewRenderer(&buf, FormatOnePerLine, 80)

	listings := []*DirListing{
		{Path: "a", Label: "a", Entries: []*Entry{testEntry("x", TypeRegular)}},
		{Path: "b", Label: "b", Entries: []*Entry{testEntry("y", TypeRegular)}},
	}

	if err := r.RenderAll(listings); err != nil {
		t.Fatal(err)
	}

	if got := buf.String(); got != "a:\nx\n\nb:\ny\n" {
		t.Fatalf("output = %q", got)
	}
}

func Test_RenderAll_Omits_Header_For_Single_Listing(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	r := NewRenderer(&buf, FormatOnePerLine, 80)

	listings := []*DirListing{
		{Path: "a", Entries: []*Entry{testEntry("x", TypeRegular)}},
	}

	if err := r.RenderAll(listings); err != nil {
		t.Fatal(err)
	}

	if got := buf.String(); got != "x\n" {
		t.Fatalf("output = %q", got)
	}
}
