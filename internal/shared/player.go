package shared

import "strings"

const (
	MinPlayers = 3  // Fewest seats a Black Queen table can have
	MaxPlayers = 10 // Most seats a Black Queen table can have
)

// NormalizeNames trims every submitted name and drops the blank ones,
// keeping the original order.
func NormalizeNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if trimmed := strings.TrimSpace(n); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// IndexOf returns the seat of name in roster, or -1 if absent.
func IndexOf(roster []string, name string) int {
	for i, n := range roster {
		if n == name {
			return i
		}
	}
	return -1
}
