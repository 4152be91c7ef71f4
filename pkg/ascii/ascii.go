// Package ascii renders boxed text and simple column tables for terminal
// output. Multi-width runes (emoji, CJK, etc.) are accounted for so the
// borders stay aligned.
package ascii

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Box builds a box containing the provided lines and returns it as a string.
// Lines are left-aligned with single-space padding on each side.
func Box(lines []string) string {
	if len(lines) == 0 {
		return ""
	}

	trimmed := make([]string, len(lines))
	maxWidth := 0
	for i, line := range lines {
		trimmed[i] = strings.TrimRight(line, " ")
		if w := StringWidth(trimmed[i]); w > maxWidth {
			maxWidth = w
		}
	}

	leftPadding, rightPadding := 1, 1
	innerWidth := maxWidth + leftPadding + rightPadding
	border := strings.Repeat("─", innerWidth)

	var sb strings.Builder
	sb.WriteString("┌" + border + "┐\n")
	for _, line := range trimmed {
		lineWidth := StringWidth(line)
		fill := innerWidth - leftPadding - rightPadding - lineWidth
		if fill < 0 {
			fill = 0
		}
		sb.WriteString("│ " + line + strings.Repeat(" ", fill) + " │\n")
	}
	sb.WriteString("└" + border + "┘\n")
	return sb.String()
}

// Table renders headers and rows as an aligned column table inside a box.
// Cell values wider than cellWidth are truncated with an ellipsis; a
// cellWidth of zero disables truncation.
func Table(headers []string, rows [][]string, cellWidth int) string {
	if len(headers) == 0 {
		return ""
	}

	widths := make([]int, len(headers))
	clip := func(s string) string {
		if cellWidth > 0 {
			return Truncate(s, cellWidth)
		}
		return s
	}
	for i, h := range headers {
		widths[i] = StringWidth(clip(h))
	}
	clipped := make([][]string, len(rows))
	for r, row := range rows {
		clipped[r] = make([]string, len(headers))
		for i := range headers {
			cell := ""
			if i < len(row) {
				cell = clip(row[i])
			}
			clipped[r][i] = cell
			if w := StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	formatRow := func(cells []string) string {
		var sb strings.Builder
		for i, w := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			if i > 0 {
				sb.WriteString("  ")
			}
			sb.WriteString(cell)
			sb.WriteString(strings.Repeat(" ", w-StringWidth(cell)))
		}
		return strings.TrimRight(sb.String(), " ")
	}

	lines := make([]string, 0, len(rows)+2)
	headerCells := make([]string, len(headers))
	for i, h := range headers {
		headerCells[i] = clip(h)
	}
	lines = append(lines, formatRow(headerCells))

	var rule strings.Builder
	for i, w := range widths {
		if i > 0 {
			rule.WriteString("  ")
		}
		rule.WriteString(strings.Repeat("─", w))
	}
	lines = append(lines, rule.String())

	for _, row := range clipped {
		lines = append(lines, formatRow(row))
	}

	return Box(lines)
}

// Truncate shortens a string so that its display width fits within the
// provided width. An ellipsis ("...") is appended when truncation occurs and
// there is space for it.
func Truncate(value string, width int) string {
	if width <= 0 {
		return ""
	}
	if StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return substringWithWidth(value, width)
	}
	truncated := substringWithWidth(value, width-3)
	return truncated + "..."
}

func substringWithWidth(s string, target int) string {
	if target <= 0 {
		return ""
	}
	width := 0
	var sb strings.Builder
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if width+w > target {
			break
		}
		width += w
		sb.WriteRune(r)
	}
	return sb.String()
}

// StringWidth returns the display width of a string, accounting for
// multi-width Unicode characters (emoji, CJK, etc.).
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}
