package dirlist

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ============================================================================
// Locale-collating name comparison
// ============================================================================
//
// Text tie-breaks are locale-aware: the name comparator collates under the
// active locale so "a" < "B" < "b" orders the way the user's language expects
// instead of raw byte order. Entry names are raw bytes, though, and a name
// that is not valid text for the locale cannot be collated. Such a comparison
// *fails* rather than guessing; the sort engine reacts by restarting the whole
// sort with byte-wise comparison (see sortView).

// CollateError reports that a name could not be collated under the active
// locale. It is surfaced as a diagnostic, never as a listing failure.
type CollateError struct {
	// Name is the raw name that failed collation.
	Name []byte
}

func (e *CollateError) Error() string {
	return fmt.Sprintf("cannot collate %q in the current locale", e.Name)
}

// nameComparer compares two raw names. The locale-backed implementation can
// fail on invalid byte sequences; the byte-wise one never does.
type nameComparer func(a, b []byte) (int, error)

// compareBytes is the infallible fallback comparator: plain byte order.
func compareBytes(a, b []byte) (int, error) {
	// Inlined bytes.Compare to keep the signature uniform.
	n := min(len(a), len(b))
	for i := range n {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1, nil
			}

			return 1, nil
		}
	}

	switch {
	case len(a) < len(b):
		return -1, nil
	case len(a) > len(b):
		return 1, nil
	default:
		return 0, nil
	}
}

// newLocaleComparer builds a collating comparator for the given locale name
// (as found in LC_ALL/LC_COLLATE/LANG). It returns nil for the C/POSIX
// locales and for locales the collation tables do not cover; callers fall
// back to byte-wise comparison in that case.
func newLocaleComparer(locale string) nameComparer {
	tag, ok := parseLocale(locale)
	if !ok {
		return nil
	}

	col := collate.New(tag)

	return func(a, b []byte) (int, error) {
		// A name that is not valid UTF-8 has no defined collation order in
		// the locale. Fail the comparison instead of producing an arbitrary
		// result; the sort driver degrades to byte-wise comparison.
		if !utf8.Valid(a) {
			return 0, &CollateError{Name: a}
		}

		if !utf8.Valid(b) {
			return 0, &CollateError{Name: b}
		}

		return col.Compare(a, b), nil
	}
}

// localeFromEnv resolves the collation locale the way libc does:
// LC_ALL beats LC_COLLATE beats LANG.
func localeFromEnv() string {
	for _, key := range []string{"LC_ALL", "LC_COLLATE", "LANG"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}

	return ""
}

// parseLocale maps an environment-style locale name ("de_DE.UTF-8@euro") to a
// BCP 47 tag. The C and POSIX locales mean byte order and report !ok.
func parseLocale(locale string) (language.Tag, bool) {
	if locale == "" || locale == "C" || locale == "POSIX" {
		return language.Und, false
	}

	// Strip codeset and modifier suffixes.
	if i := strings.IndexByte(locale, '.'); i >= 0 {
		locale = locale[:i]
	}

	if i := strings.IndexByte(locale, '@'); i >= 0 {
		locale = locale[:i]
	}

	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil {
		return language.Und, false
	}

	return tag, true
}
