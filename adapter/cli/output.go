package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	inbox "github.com/felixgeelhaar/calmbox/internal/inbox/domain"
)

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// LevelBadge renders a level as a fixed-width tag.
func LevelBadge(level inbox.Level) string {
	switch level {
	case inbox.LevelHigh:
		return "[HIGH]"
	case inbox.LevelMedium:
		return "[MED] "
	case inbox.LevelLow:
		return "[LOW] "
	default:
		return "[ -- ]"
	}
}

// Truncate shortens s to n runes with a trailing ellipsis.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

// Rule prints a horizontal line.
func Rule(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("-", 60))
}

// PrintStress renders a stress reading and the break advice.
func PrintStress(w io.Writer, s inbox.StressSnapshot) {
	fmt.Fprintf(w, "Stress: %s (%d of %d emails high, %.0f%%)\n",
		strings.ToUpper(s.OverallLevel.String()), s.HighCount, s.Total, s.HighFraction*100)
	if s.NeedsBreak {
		fmt.Fprintln(w, "Your inbox is running hot. Consider taking a short break.")
	}
}
