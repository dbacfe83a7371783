package pdftext

import (
	"regexp"
	"strings"
)

const (
	tableOpen  = "[TABLE]"
	tableClose = "[/TABLE]"

	// minTableRows is the minimum run of consecutive columnar lines treated
	// as a table rather than incidental alignment.
	minTableRows = 3
)

var columnGapRe = regexp.MustCompile(`\S(?: {3,}|\t+)\S`)

// MarkTables wraps runs of columnar lines in [TABLE]...[/TABLE] delimiters so
// downstream pattern matching and prompts can locate tabular data. A line is
// columnar when it contains at least two wide gaps between tokens, the shape
// pdftotext -layout gives table rows.
func MarkTables(text string) string {
	lines := strings.Split(text, "\n")
	var out []string
	var run []string

	flush := func() {
		if len(run) >= minTableRows {
			out = append(out, tableOpen)
			out = append(out, run...)
			out = append(out, tableClose)
		} else {
			out = append(out, run...)
		}
		run = nil
	}

	for _, line := range lines {
		if isColumnarLine(line) {
			run = append(run, line)
			continue
		}
		flush()
		out = append(out, line)
	}
	flush()

	return strings.Join(out, "\n")
}

func isColumnarLine(line string) bool {
	if strings.TrimSpace(line) == "" {
		return false
	}
	if strings.Count(line, "|") >= 2 {
		return true
	}
	return len(columnGapRe.FindAllString(line, -1)) >= 2
}
