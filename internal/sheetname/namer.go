// =============================================================================
// Resolved Trades Consolidator - Sheet Namer
// =============================================================================
//
// This module turns a source filename into a workbook sheet name.
//
// FILENAME CONVENTION:
//   {direction}_{date}_{time}_Resolved.{ext}
//
//   Buy_20240115_093015_Resolved.csv   ->  Buy_0115_0930
//   Sell_20240116_1045_Resolved.xlsx   ->  Sell_0116_1045
//
//   The date token ends with MMDD and the time token starts with HHMM.
//   Files that do not follow the convention fall back to their base name
//   with "Merged" removed.
//
// SHEET NAME RULES (enforced by the workbook format):
//   - at most 31 characters
//   - none of: [ ] * : ? / \
//   - may not begin or end with an apostrophe
//   - unique within a workbook, compared case-insensitively
//
// =============================================================================

package sheetname

import (
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ginjaninja78/resolved-trades/internal/types"
)

// MaxLength is the workbook sheet-name length ceiling, in characters.
const MaxLength = 31

// ResolvedMarker is the stem suffix that marks a resolved-trade file.
const ResolvedMarker = "_Resolved"

// fallbackName is used when sanitization leaves nothing behind.
const fallbackName = "Sheet"

// forbidden lists the characters a sheet name may not contain.
var forbidden = strings.NewReplacer(
	"[", "",
	"]", "",
	"*", "",
	":", "",
	"?", "",
	"/", "",
	"\\", "",
)

// =============================================================================
// PARSING
// =============================================================================

// Parse describes the file at path: its name, stem, extension and, when the
// stem follows the convention, its direction/date/time tokens.
func Parse(path string) types.SourceFile {
	name := filepath.Base(path)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	sf := types.SourceFile{
		Path: path,
		Name: name,
		Stem: stem,
		Ext:  strings.ToLower(strings.TrimPrefix(ext, ".")),
	}

	parts := strings.Split(strings.ReplaceAll(stem, ResolvedMarker, ""), "_")
	if len(parts) >= 3 {
		sf.Direction = parts[0]
		sf.Date = parts[1]
		sf.Time = parts[2]
		sf.Conventional = true
	}
	return sf
}

// IsResolved reports whether name is a resolved-trade file: the part of the
// name before its first "." ends with the "_Resolved" marker.
func IsResolved(name string) bool {
	stem, _, _ := strings.Cut(filepath.Base(name), ".")
	return strings.HasSuffix(stem, ResolvedMarker)
}

// =============================================================================
// DERIVATION
// =============================================================================

// Derive returns the sheet name for filename. It never fails: a filename that
// does not follow the convention gets the fallback name.
func Derive(filename string) string {
	sf := Parse(filename)

	var name string
	if sf.Conventional {
		name = sf.Direction + "_" + lastN(sf.Date, 4) + "_" + firstN(sf.Time, 4)
	} else {
		base := strings.ReplaceAll(sf.Stem, ResolvedMarker, "")
		name = strings.ReplaceAll(base, "Merged", "")
	}

	return Sanitize(name)
}

// Sanitize strips forbidden characters and truncates to MaxLength.
func Sanitize(name string) string {
	name = forbidden.Replace(name)
	name = strings.Trim(name, "'")
	name = truncate(name, MaxLength)
	// Truncation can expose a trailing apostrophe.
	name = strings.TrimRight(name, "'")
	if name == "" {
		return fallbackName
	}
	return name
}

// lastN returns the last n characters of s, or s when it is shorter.
func lastN(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}

// firstN returns the first n characters of s, or s when it is shorter.
func firstN(s string, n int) string {
	return truncate(s, n)
}

// truncate cuts s to at most n characters.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// =============================================================================
// COLLISION RESOLUTION
// =============================================================================

// Registry tracks the sheet names already assigned in one workbook.
// It is not safe for concurrent use; the merger owns it for a single run.
type Registry struct {
	taken map[string]bool
	names []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{taken: make(map[string]bool)}
}

// Reserve records name as taken without resolving collisions. It is used for
// sheets that already exist in a workbook.
func (r *Registry) Reserve(name string) {
	if key := fold(name); !r.taken[key] {
		r.taken[key] = true
		r.names = append(r.names, name)
	}
}

// Taken reports whether name is already assigned.
func (r *Registry) Taken(name string) bool {
	return r.taken[fold(name)]
}

// Assign returns a unique name for candidate and records it.
func (r *Registry) Assign(candidate string) string {
	name := r.Next(candidate)
	r.Reserve(name)
	return name
}

// Next returns the name Assign would give candidate, without recording it.
//
// If candidate is free it is used as-is. Otherwise "_1", "_2", ... are tried
// in turn. The base is shortened so the suffix always fits in MaxLength,
// which keeps every attempt distinct even for 31-character candidates.
func (r *Registry) Next(candidate string) string {
	name := candidate
	for n := 1; r.Taken(name); n++ {
		suffix := "_" + strconv.Itoa(n)
		name = truncate(candidate, MaxLength-utf8.RuneCountInString(suffix)) + suffix
	}
	return name
}

// Names returns the assigned names in assignment order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the number of assigned names.
func (r *Registry) Len() int { return len(r.names) }

func fold(name string) string {
	return strings.ToLower(name)
}
