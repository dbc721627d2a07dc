package dirlist

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func Test_Watch_Delivers_Initial_Listing_And_Stops_When_Callback_Returns_False(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "seed"))

	calls := 0

	err := Watch(context.Background(), []string{dir},
		func(listings []*DirListing, errs []error) bool {
			calls++

			if len(listings) != 1 {
				t.Errorf("listings = %d, want 1", len(listings))
			} else if got := listingNames(listings[0]); !slices.Equal(got, []string{"seed"}) {
				t.Errorf("initial listing = %v, want [seed]", got)
			}

			return false
		}, WithLocale("C"))
	if err != nil {
		t.Fatalf("watch failed: %v", err)
	}

	if calls != 1 {
		t.Fatalf("callback called %d times, want 1", calls)
	}
}

func Test_Watch_Relists_After_Filesystem_Change(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "seed"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	got := make(chan []string, 16)

	go func() {
		calls := 0

		_ = Watch(ctx, []string{dir}, func(listings []*DirListing, errs []error) bool {
			calls++

			if len(listings) == 1 {
				got <- listingNames(listings[0])
			}

			return calls < 2
		}, WithLocale("C"), WithMinIdle(20*time.Millisecond))

		close(got)
	}()

	select {
	case names := <-got:
		if !slices.Equal(names, []string{"seed"}) {
			t.Fatalf("initial listing = %v, want [seed]", names)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for initial listing")
	}

	// Keep rewriting until the watcher observes a change: the first write can
	// race watch registration, later ones cannot.
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case names, ok := <-got:
			if !ok {
				t.Fatal("watch ended before the relist")
			}

			want := []string{"added", "seed"}
			if !slices.Equal(names, want) {
				t.Fatalf("relist = %v, want %v", names, want)
			}

			return
		case <-ticker.C:
			if err := os.WriteFile(filepath.Join(dir, "added"), []byte("x"), 0o644); err != nil {
				t.Fatal(err)
			}
		case <-ctx.Done():
			t.Fatal("timed out waiting for relist")
		}
	}
}
