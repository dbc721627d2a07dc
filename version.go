package dirlist

// versionCompare is the "natural" string comparison used by the version sort
// key: embedded digit runs compare numerically, everything else compares
// byte-wise. It is locale-independent and never fails, so it never needs the
// collation fallback.
//
// Digit-run rules:
//   - numeric value decides first ("file9" < "file10")
//   - equal values with different leading-zero counts order the run with
//     fewer leading zeros first ("1" < "01"), keeping the order total
//
// Full equality is left to the caller's byte-wise name tie-break.
func versionCompare(a, b []byte) int {
	i, j := 0, 0

	for i < len(a) && j < len(b) {
		ca, cb := a[i], b[j]

		if isDigit(ca) && isDigit(cb) {
			// Bounds of both digit runs.
			ia := i
			for ia < len(a) && isDigit(a[ia]) {
				ia++
			}

			jb := j
			for jb < len(b) && isDigit(b[jb]) {
				jb++
			}

			if c := compareDigitRuns(a[i:ia], b[j:jb]); c != 0 {
				return c
			}

			i, j = ia, jb

			continue
		}

		if ca != cb {
			if ca < cb {
				return -1
			}

			return 1
		}

		i++
		j++
	}

	switch {
	case i < len(a):
		return 1
	case j < len(b):
		return -1
	default:
		return 0
	}
}

// compareDigitRuns compares two all-digit byte runs numerically.
func compareDigitRuns(a, b []byte) int {
	ta := trimLeadingZeros(a)
	tb := trimLeadingZeros(b)

	// More significant digits wins.
	if len(ta) != len(tb) {
		if len(ta) < len(tb) {
			return -1
		}

		return 1
	}

	for k := range ta {
		if ta[k] != tb[k] {
			if ta[k] < tb[k] {
				return -1
			}

			return 1
		}
	}

	// Same value: fewer leading zeros first.
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}

		return 1
	}

	return 0
}

func trimLeadingZeros(run []byte) []byte {
	for len(run) > 1 && run[0] == '0' {
		run = run[1:]
	}

	return run
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
