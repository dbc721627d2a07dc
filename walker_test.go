package dirlist

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func writeFile(t *testing.T, path string) {
	t.Helper()

	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func listingNames(l *DirListing) []string {
	return viewNames(l.Entries)
}

func Test_List_Returns_Sorted_Names_And_Hides_Dotfiles_By_Default(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "banana"))
	writeFile(t, filepath.Join(dir, "apple"))
	writeFile(t, filepath.Join(dir, ".hidden"))

	listings, errs := List(context.Background(), []string{dir}, WithLocale("C"))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	if len(listings) != 1 {
		t.Fatalf("listings = %d, want 1", len(listings))
	}

	want := []string{"apple", "banana"}
	if got := listingNames(listings[0]); !slices.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func Test_List_Shows_Dotfiles_When_Hidden_Policy_Is_HideNone(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "visible"))
	writeFile(t, filepath.Join(dir, ".hidden"))

	listings, errs := List(context.Background(), []string{dir},
		WithHidden(HideNone), WithLocale("C"))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	want := []string{".hidden", "visible"}
	if got := listingNames(listings[0]); !slices.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func Test_List_Skips_Names_Matching_Ignore_Patterns(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "keep.go"))
	writeFile(t, filepath.Join(dir, "drop.tmp"))
	writeFile(t, filepath.Join(dir, "also.tmp"))

	listings, _ := List(context.Background(), []string{dir},
		WithIgnore("*.tmp"), WithLocale("C"))

	want := []string{"keep.go"}
	if got := listingNames(listings[0]); !slices.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func Test_List_Applies_Hide_Patterns_Only_Under_Default_Hidden_Policy(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "keep"))
	writeFile(t, filepath.Join(dir, "secret"))

	listings, _ := List(context.Background(), []string{dir},
		WithHide("secret"), WithLocale("C"))

	if got := listingNames(listings[0]); !slices.Equal(got, []string{"keep"}) {
		t.Fatalf("hide pattern not applied: %v", got)
	}

	// With -a semantics, hide patterns are inert.
	listings, _ = List(context.Background(), []string{dir},
		WithHide("secret"), WithHidden(HideNone), WithLocale("C"))

	want := []string{"keep", "secret"}
	if got := listingNames(listings[0]); !slices.Equal(got, want) {
		t.Fatalf("hide pattern should be inert with HideNone: %v", got)
	}
}

func Test_List_Puts_NonDirectory_Arguments_In_A_Leading_Group(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "lonely.txt"))

	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	writeFile(t, filepath.Join(sub, "inner"))

	file := filepath.Join(dir, "lonely.txt")

	listings, errs := List(context.Background(), []string{file, sub}, WithLocale("C"))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	if len(listings) != 2 {
		t.Fatalf("listings = %d, want 2", len(listings))
	}

	if listings[0].Path != "" {
		t.Fatalf("first listing should be the argument group, got path %q", listings[0].Path)
	}

	if got := listingNames(listings[0]); !slices.Equal(got, []string{file}) {
		t.Fatalf("argument group = %v, want [%s]", got, file)
	}

	if listings[1].Path != sub {
		t.Fatalf("second listing path = %q, want %q", listings[1].Path, sub)
	}

	if got := listingNames(listings[1]); !slices.Equal(got, []string{"inner"}) {
		t.Fatalf("sub listing = %v", got)
	}
}

func Test_List_Lists_Directory_Arguments_Themselves_When_ImmediateDirs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	listings, errs := List(context.Background(), []string{dir},
		WithImmediateDirs(), WithLocale("C"))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	if len(listings) != 1 || listings[0].Path != "" {
		t.Fatalf("want one argument-group listing, got %+v", listings)
	}

	if got := listingNames(listings[0]); !slices.Equal(got, []string{dir}) {
		t.Fatalf("got %v, want [%s]", got, dir)
	}

	if typ := listings[0].Entries[0].Type(); typ != TypeArgDirectory {
		t.Fatalf("entry type = %v, want %v", typ, TypeArgDirectory)
	}
}

func Test_List_Recursion_Emits_Subdirectories_In_Sorted_Order_After_Parent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "file.txt"))

	for _, sub := range []string{"zebra", "alpha"} {
		if err := os.Mkdir(filepath.Join(dir, sub), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	listings, errs := List(context.Background(), []string{dir},
		WithRecursive(), WithLocale("C"))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	paths := make([]string, len(listings))
	for i, l := range listings {
		paths[i] = l.Path
	}

	want := []string{dir, filepath.Join(dir, "alpha"), filepath.Join(dir, "zebra")}
	if !slices.Equal(paths, want) {
		t.Fatalf("listing order = %v, want %v", paths, want)
	}

	// Promoted subdirectories leave the parent listing.
	if got := listingNames(listings[0]); !slices.Equal(got, []string{"file.txt"}) {
		t.Fatalf("parent listing = %v, want [file.txt]", got)
	}
}

func Test_List_Reports_LoopError_Once_When_Symlink_Cycles_Back(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	writeFile(t, filepath.Join(sub, "inner.txt"))

	if err := os.Symlink(dir, filepath.Join(sub, "back")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	listings, errs := List(context.Background(), []string{dir},
		WithRecursive(), WithDereference(DerefAlways), WithLocale("C"))

	loops := 0

	for _, err := range errs {
		var le *LoopError
		if errors.As(err, &le) {
			loops++
		}
	}

	if loops != 1 {
		t.Fatalf("loop diagnostics = %d (errs %v), want 1", loops, errs)
	}

	// Every non-cyclic directory is still listed exactly once.
	paths := make([]string, len(listings))
	for i, l := range listings {
		paths[i] = l.Path
	}

	want := []string{dir, sub}
	if !slices.Equal(paths, want) {
		t.Fatalf("listing paths = %v, want %v", paths, want)
	}

	if got := ExitStatus(errs); got != SeveritySerious {
		t.Fatalf("exit status = %d, want %d", got, SeveritySerious)
	}
}

func Test_List_Reports_Serious_Error_For_Missing_CommandLine_Argument(t *testing.T) {
	t.Parallel()

	listings, errs := List(context.Background(),
		[]string{filepath.Join(t.TempDir(), "does-not-exist")})

	if len(listings) != 0 {
		t.Fatalf("listings = %v, want none", listings)
	}

	if len(errs) != 1 {
		t.Fatalf("errs = %v, want one", errs)
	}

	var ioErr *IOError
	if !errors.As(errs[0], &ioErr) {
		t.Fatalf("err = %v, want IOError", errs[0])
	}

	if got := ExitStatus(errs); got != SeveritySerious {
		t.Fatalf("exit status = %d, want %d", got, SeveritySerious)
	}
}

func Test_List_Stats_Entries_When_Sort_Key_Needs_Metadata(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, "big"), make([]byte, 100), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(dir, "small"), make([]byte, 1), 0o644); err != nil {
		t.Fatal(err)
	}

	listings, errs := List(context.Background(), []string{dir},
		WithSortKey(SortSize), WithLocale("C"))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	want := []string{"big", "small"}
	if got := listingNames(listings[0]); !slices.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	for _, e := range listings[0].Entries {
		if _, ok := e.Stat(); !ok {
			t.Fatalf("entry %q not stat'd despite size sort", e.Name())
		}
	}
}

func Test_List_Returns_Partial_Results_When_Context_Canceled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	listings, errs := List(ctx, []string{dir})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	// The argument scan completed but no directory was processed.
	if len(listings) != 0 {
		t.Fatalf("listings = %v, want none", listings)
	}
}

func Test_ExitStatus_Picks_The_Worst_Severity(t *testing.T) {
	t.Parallel()

	if got := ExitStatus(nil); got != SeverityNone {
		t.Fatalf("empty = %d, want %d", got, SeverityNone)
	}

	minor := &IOError{Path: "x", Op: "stat", Err: os.ErrPermission}
	serious := &LoopError{Path: "y"}

	if got := ExitStatus([]error{minor}); got != SeverityMinor {
		t.Fatalf("minor = %d, want %d", got, SeverityMinor)
	}

	if got := ExitStatus([]error{minor, serious}); got != SeveritySerious {
		t.Fatalf("mixed = %d, want %d", got, SeveritySerious)
	}
}

func Test_List_OnDiagnostic_Can_Suppress_Error_Collection(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "nope")

	seen := 0

	_, errs := List(context.Background(), []string{missing},
		WithOnDiagnostic(func(err error, sev Severity) bool {
			seen++

			if sev != SeveritySerious {
				t.Errorf("severity = %d, want %d", sev, SeveritySerious)
			}

			return false
		}))

	if seen != 1 {
		t.Fatalf("handler called %d times, want 1", seen)
	}

	if len(errs) != 0 {
		t.Fatalf("errs = %v, want suppressed", errs)
	}
}
