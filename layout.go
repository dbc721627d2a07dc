package dirlist

// ============================================================================
// Column layout engine
// ============================================================================

const (
	// minColumnWidth is the smallest column the layout will produce: one
	// content cell plus the inter-column gap. It bounds the candidate count
	// to lineWidth/minColumnWidth.
	minColumnWidth = 3

	// columnGap is the fixed spacing charged between adjacent columns.
	// The last column in a row is never charged a gap.
	columnGap = 2
)

// Layout computes the multi-column layout for a sorted set of display widths.
//
// It chooses the maximum column count c (1 <= c <= min(len(widths), a bound
// derived from lineWidth)) such that laying the entries out in c columns fits
// within lineWidth. Entries fill column-major when byColumns is true (down
// each column, then across), row-major otherwise. Each column's width is the
// maximum width of the entries assigned to it plus columnGap, except the last
// column which gets no gap.
//
// The returned colWidths has one slot per column and includes the gap, so a
// renderer pads each cell to colWidths[i] and writes cells back to back.
//
// One column is always feasible: even when a single entry exceeds lineWidth
// the result is (1, [widest]) rather than a failure.
//
// All candidate counts are evaluated simultaneously in a single pass over the
// entries. Each candidate keeps a feasible flag and a running total line
// length; an entry that grows a column past lineWidth kills that candidate
// immediately and it is never touched again. This amortizes the
// O(entries x candidates) cost into one scan with no backtracking.
func Layout(widths []int, lineWidth int, byColumns bool) (columns int, colWidths []int) {
	n := len(widths)
	if n == 0 {
		return 1, []int{0}
	}

	maxCols := max(1, lineWidth/minColumnWidth)
	if maxCols > n {
		maxCols = n
	}

	type candidate struct {
		feasible bool
		lineLen  int
		cols     []int
		rows     int // column-major row count: ceil(n / c)
	}

	cands := make([]candidate, maxCols)
	for i := range cands {
		c := i + 1

		cols := make([]int, c)
		for j := range cols {
			cols[j] = minColumnWidth
		}

		cands[i] = candidate{
			feasible: true,
			lineLen:  c * minColumnWidth,
			cols:     cols,
			rows:     (n + c - 1) / c,
		}
	}

	for idx, w := range widths {
		for i := range cands {
			cand := &cands[i]
			if !cand.feasible {
				continue
			}

			c := i + 1

			var col int
			if byColumns {
				col = idx / cand.rows
			} else {
				col = idx % c
			}

			need := w
			if col != c-1 {
				need += columnGap
			}

			if need > cand.cols[col] {
				cand.lineLen += need - cand.cols[col]
				cand.cols[col] = need

				// Candidate 1 is the mandated fallback: it keeps accumulating
				// so its column width always reaches the widest entry, even
				// past the line width.
				if cand.lineLen > lineWidth && c != 1 {
					cand.feasible = false
				}
			}
		}
	}

	for i := maxCols - 1; i > 0; i-- {
		if cands[i].feasible {
			return i + 1, cands[i].cols
		}
	}

	// Single column is the guaranteed fallback; it is never marked infeasible
	// even when the widest entry alone exceeds the line width.
	return 1, cands[0].cols
}
