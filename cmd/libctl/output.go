package main

import (
	"encoding/json"
	"fmt"
	"strings"
)

// humanTitleMaxLen is the title width in human-readable listings.
const humanTitleMaxLen = 70

// outputJSON writes a value as indented JSON.
func (c *cli) outputJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable line.
func (c *cli) outputHuman(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}
