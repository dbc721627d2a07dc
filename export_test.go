package dirlist

// Export internal symbols for white-box tests in dirlist package.
var (
	VersionCompare    = versionCompare
	DisplayWidth      = displayWidth
	CompareBytes      = compareBytes
	NewLocaleComparer = newLocaleComparer
	ParseLocale       = parseLocale
	LocaleFromEnv     = localeFromEnv
	SortView          = sortView
	ModeString        = modeString
	TypeFromMode      = typeFromMode
)

const (
	MinColumnWidth = minColumnWidth
	ColumnGap      = columnGap
)
