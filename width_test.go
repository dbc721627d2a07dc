package dirlist

import "testing"

func Test_DisplayWidth_Counts_ASCII_As_One_Column_Each(t *testing.T) {
	t.Parallel()

	if w := displayWidth([]byte("hello.txt")); w != 9 {
		t.Fatalf("width = %d, want 9", w)
	}
}

func Test_DisplayWidth_Counts_Wide_CJK_Runes_As_Two_Columns(t *testing.T) {
	t.Parallel()

	// Two CJK ideographs, two columns each.
	if w := displayWidth([]byte("日本")); w != 4 {
		t.Fatalf("width = %d, want 4", w)
	}
}

func Test_DisplayWidth_Counts_Invalid_Bytes_As_One_Column_Each(t *testing.T) {
	t.Parallel()

	name := []byte{'a', 0xff, 0xfe, 'b'}
	if w := displayWidth(name); w != 4 {
		t.Fatalf("width = %d, want 4", w)
	}
}

func Test_Entry_Width_Is_Memoized(t *testing.T) {
	t.Parallel()

	e := &Entry{name: []byte("abc"), cachedWidth: -1}

	if w := e.Width(); w != 3 {
		t.Fatalf("width = %d, want 3", w)
	}

	// Mutating the name must not change the memoized width.
	e.name = []byte("abcdef")

	if w := e.Width(); w != 3 {
		t.Fatalf("memoized width = %d, want 3", w)
	}
}
