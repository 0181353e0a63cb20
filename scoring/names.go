package scoring

import (
	"strings"

	"golang.org/x/text/cases"
)

// NameKey is the single normalization applied to team and player names before
// they are compared: trimmed, inner whitespace collapsed, case-folded.
func NameKey(name string) string {
	collapsed := strings.Join(strings.Fields(name), " ")
	return cases.Fold().String(collapsed)
}

// DisplayName trims and collapses whitespace but keeps the original casing.
func DisplayName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// SameName reports whether a and b refer to the same team or player.
func SameName(a, b string) bool {
	return NameKey(a) == NameKey(b)
}

// GroupKey normalizes a group label ("a ", "A") to "A".
func GroupKey(group string) string {
	return strings.ToUpper(strings.TrimSpace(group))
}
