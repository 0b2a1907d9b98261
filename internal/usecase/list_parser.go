package usecase

import (
	"regexp"
	"strings"
)

// Package-level compiled regex pattern for splitting pasted lists
var lineBreakRegex = regexp.MustCompile(`\r?\n`)

// ParseShoppingList splits pasted text into list lines, one query per line
func ParseShoppingList(text string) []string {
	return CleanItems(lineBreakRegex.Split(text, -1))
}

// CleanItems trims every line, drops blank ones and drops repeated lines.
// Comparison is case-sensitive; the first occurrence keeps its position.
func CleanItems(lines []string) []string {
	seen := make(map[string]bool, len(lines))
	items := make([]string, 0, len(lines))
	for _, line := range lines {
		item := strings.TrimSpace(line)
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		items = append(items, item)
	}
	return items
}
