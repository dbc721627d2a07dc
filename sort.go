package dirlist

import (
	"cmp"
	"slices"
)

// ============================================================================
// Sort engine
// ============================================================================
//
// Sorting operates in place on a []*Entry view and never reorders or mutates
// the underlying entryTable storage, so repeated sorts (one per subdirectory
// during recursive listing) are cheap and order-independent across
// directories.
//
// Every comparator is built from the same four pieces instead of one function
// per key x reverse x dirs-first x locale combination:
//
//	key extraction -> direction flag -> byte-wise name tie-break,
//	all wrapped in an optional directories-first decorator.
//
// The tie-break makes every comparator a strict total order even when primary
// keys are equal or absent (missing timestamps, equal sizes), so sorting is
// deterministic and reproducible. SortNone is the one exception: it promises
// filesystem read order, so it carries no tie-break and leans on sort
// stability instead (also within dirs-first groups).

// SortKey selects the primary sort key.
type SortKey uint8

const (
	// SortName orders by name under the active locale's collation.
	SortName SortKey = iota
	// SortExtension orders by the substring from the last '.' onward;
	// names without an extension sort first.
	SortExtension
	// SortWidth orders by the display width of the name.
	SortWidth
	// SortSize orders by file size, largest first.
	SortSize
	// SortVersion orders by natural version comparison (digit runs compare
	// numerically). Locale-independent and infallible.
	SortVersion
	// SortMTime orders by modification time, most recent first.
	SortMTime
	// SortCTime orders by status-change time, most recent first.
	SortCTime
	// SortATime orders by access time, most recent first.
	SortATime
	// SortBTime orders by birth time, most recent first. Entries whose
	// platform or filesystem reports no birth time order by name.
	SortBTime
	// SortNone keeps filesystem read order.
	SortNone
)

// sortView orders view in place.
//
// Text comparisons go through names, which collates under the active locale
// and can fail on byte sequences with no defined order. On the first failure
// the in-progress sort is finished degraded (its ordering is discarded),
// onDegrade is called once, and the entire sort restarts with byte-wise
// comparison. The two-phase strategy gives locale-correct output for good
// input and safe, consistent output for bad input; never a partial mix.
func sortView(view []*Entry, key SortKey, reverse, dirsFirst bool, names nameComparer, onDegrade func(error)) {
	if key == SortNone && !dirsFirst {
		return
	}

	if names == nil {
		names = compareBytes
	}

	var collateFailure error

	slices.SortStableFunc(view, buildComparator(key, reverse, dirsFirst, names, &collateFailure))

	if collateFailure == nil {
		return
	}

	if onDegrade != nil {
		onDegrade(collateFailure)
	}

	slices.SortStableFunc(view, buildComparator(key, reverse, dirsFirst, compareBytes, nil))
}

// buildComparator assembles the comparator for one (key, reverse, dirsFirst)
// combination.
//
// If failure is non-nil, the first collation error is recorded there and all
// further text comparisons in this sort pass degrade to byte order. The pass
// still terminates with a consistent (if meaningless) order; the caller
// discards it and restarts.
func buildComparator(key SortKey, reverse, dirsFirst bool, names nameComparer, failure *error) func(a, b *Entry) int {
	degraded := false

	text := func(a, b []byte) int {
		if degraded {
			c, _ := compareBytes(a, b)

			return c
		}

		c, err := names(a, b)
		if err != nil {
			degraded = true

			if failure != nil && *failure == nil {
				*failure = err
			}

			c, _ = compareBytes(a, b)
		}

		return c
	}

	primary := func(a, b *Entry) int {
		switch key {
		case SortName:
			return text(a.name, b.name)
		case SortExtension:
			return text(a.extension(), b.extension())
		case SortWidth:
			return cmp.Compare(a.Width(), b.Width())
		case SortSize:
			return cmp.Compare(b.size(), a.size())
		case SortVersion:
			return versionCompare(a.name, b.name)
		case SortMTime:
			return cmp.Compare(b.mtime(), a.mtime())
		case SortCTime:
			return cmp.Compare(b.ctime(), a.ctime())
		case SortATime:
			return cmp.Compare(b.atime(), a.atime())
		case SortBTime:
			return cmp.Compare(b.btime(), a.btime())
		default:
			return 0
		}
	}

	return func(a, b *Entry) int {
		// Directories-first is a higher-priority grouping applied before the
		// primary key and is never flipped by reverse.
		if dirsFirst {
			ad, bd := a.IsDir(), b.IsDir()
			if ad != bd {
				if ad {
					return -1
				}

				return 1
			}
		}

		c := primary(a, b)
		if reverse {
			c = -c
		}

		if c != 0 {
			return c
		}

		// SortNone means "retain read order": the stable sort already keeps
		// equal elements in place, so a tie-break here would reorder within
		// dirs-first groups.
		if key == SortNone {
			return 0
		}

		// Deterministic tie-break: byte-for-byte name order, not reversed.
		c, _ = compareBytes(a.name, b.name)

		return c
	}
}
