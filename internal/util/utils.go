package util

import (
	"bytes"
	"fmt"
)

// GetLineAndColumn converts a byte offset into source into a 1-based
// line/column pair, matching how the parser reports ParseError.Pos.
func GetLineAndColumn(src string, pos int) (line int, column int) {
	line = 1
	column = 1
	for i, r := range src {
		if i == pos {
			return
		}
		if r == '\n' {
			line++
			column = 1
		} else {
			column++
		}
	}
	return
}

// GetContextLines renders a short source excerpt around (errorLine, errorCol)
// with an arrow under the offending column, for printing under a ParseError.
func GetContextLines(src string, errorLine, errorCol, errorPos int) string {
	lines := splitLines(src)

	firstShown := errorLine - 2
	if firstShown < 1 {
		firstShown = 1
	}

	var out bytes.Buffer
	for n := firstShown; n <= errorLine && n <= len(lines); n++ {
		text := ""
		if n <= len(lines) {
			text = lines[n-1]
		}

		if n != errorLine {
			fmt.Fprintf(&out, "     %3d | %s\n", n, text)
			continue
		}

		gutter := fmt.Sprintf("  >  %3d | ", n)
		fmt.Fprintf(&out, "%s%s\n", gutter, text)
		fmt.Fprintf(&out, "%s^ unexpected here", blankOutVisible(gutter+text[:errorCol-1]))
	}

	return out.String()
}

// splitLines breaks src into its constituent lines without the trailing
// newline, tolerating a final line with no terminator.
func splitLines(src string) []string {
	var lines []string
	start := 0
	for i, r := range src {
		last := i == len(src)-1
		if r == '\n' {
			lines = append(lines, src[start:i])
			start = i + 1
		} else if last {
			lines = append(lines, src[start:i+1])
		}
	}
	return lines
}

// blankOutVisible replaces every rune with a space, except tabs, so the
// returned string lines up under the original when printed on the next row.
func blankOutVisible(s string) string {
	var buf bytes.Buffer
	for _, r := range s {
		if r == '\t' {
			buf.WriteRune('\t')
		} else {
			buf.WriteRune(' ')
		}
	}
	return buf.String()
}
