package graph

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"
)

// label builds an HTML-like node label: a header cell over a body cell.
func label(header, body string, width int) string {
	return fmt.Sprintf(`<TABLE BORDER="2" CELLSPACING="0" CELLPADDING="8">`+
		`<TR><TD BORDER="1" SIDES="b">%s</TD></TR>`+
		`<TR><TD BORDER="0">%s</TD></TR>`+
		`</TABLE>`, html.EscapeString(header), strings.Join(wrap(body, width), "<BR/>"))
}

// wrap breaks text into escaped lines of at most width runes. A word longer
// than width gets a line of its own.
func wrap(text string, width int) []string {
	var lines []string
	var line strings.Builder
	n := 0
	for _, word := range strings.Fields(text) {
		size := utf8.RuneCountInString(word)
		if n > 0 && n+1+size > width {
			lines = append(lines, html.EscapeString(line.String()))
			line.Reset()
			n = 0
		}
		if n > 0 {
			line.WriteByte(' ')
			n++
		}
		line.WriteString(word)
		n += size
	}
	if n > 0 || len(lines) == 0 {
		lines = append(lines, html.EscapeString(line.String()))
	}

	return lines
}
