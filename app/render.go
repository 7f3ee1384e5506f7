package app

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"

	"doc-inspector/config"
	"doc-inspector/inspect/urls"
	"doc-inspector/record"
)

const (
	// maxCustomXMLRunes caps custom XML content in listings.
	maxCustomXMLRunes = 400

	defaultReportWidth = 80
	maxReportWidth     = 120
)

// section is one titled block of the report. The TUI pages through them.
type section struct {
	Title string
	Body  string
}

var (
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#7dcfff"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#c0caf5"))
	canaryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f7768e")).Bold(true)
	vendorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#bb9af7"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#565f89"))
)

// terminalWidth returns the width of w when it is a terminal, capped for
// readability, or a fixed default otherwise.
func terminalWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return min(width, maxReportWidth)
		}
	}
	return defaultReportWidth
}

// buildSections lays out the record for the given width. Empty listings keep
// their section and show the none-found marker.
func buildSections(rec *record.DocumentRecord, width int) []section {
	secs := []section{
		{Title: "Properties", Body: propertyTable(rec.Properties, width)},
		{Title: "URLs", Body: urlList(rec.Links, rec.Indicators)},
		{Title: "Images", Body: plainList(rec.Images)},
		{Title: "Comments", Body: commentList(rec.Comments)},
	}
	if rec.Format == record.Word || rec.Format == record.Presentation || rec.Format == record.Spreadsheet {
		secs = append(secs, section{Title: "Custom XML", Body: customXMLList(rec.CustomXML)})
	}
	if rec.Format == record.Spreadsheet {
		secs = append(secs, section{Title: "Sheets", Body: plainList(rec.Sheets)})
	}
	if len(rec.Warnings) > 0 {
		secs = append(secs, section{Title: "Warnings", Body: plainList(rec.Warnings)})
	}
	return secs
}

// renderReport renders the whole record for plain terminal output.
func renderReport(rec *record.DocumentRecord, width int) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s (%s)", sanitize(rec.Path, false), rec.Format)))
	b.WriteString("\n")
	for _, s := range buildSections(rec, width) {
		b.WriteString(separatorStyle.Render(strings.Repeat("━", width)))
		b.WriteString("\n")
		b.WriteString(subHeaderStyle.Render(strings.ToUpper(s.Title)))
		b.WriteString("\n")
		b.WriteString(s.Body)
		b.WriteString("\n")
	}
	return b.String()
}

// propertyTable renders a two-column table, squeezed to width only when its
// natural size would overflow.
func propertyTable(props []record.Property, width int) string {
	if len(props) == 0 {
		return noneFound()
	}
	rows := make([][]string, 0, len(props))
	for _, p := range props {
		rows = append(rows, []string{sanitize(p.Key, false), sanitize(p.Value, false)})
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(separatorStyle).
		Headers("Property", "Value").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return subHeaderStyle.Padding(0, 1)
			case col == 0:
				return keyStyle.Padding(0, 1)
			}
			return valueStyle.Padding(0, 1)
		})
	out := t.String()
	if width > 0 && lipgloss.Width(out) > width {
		out = t.Width(width).String()
	}
	return out
}

// urlList prints each URL with its labels. Namespace URLs such as purl.org
// are left out of the listing but stay in the record.
func urlList(links, indicators []string) string {
	var lines []string
	for _, u := range links {
		if urls.Ignored(u) {
			continue
		}
		line := "  • " + sanitize(u, false)
		for _, label := range urls.Annotate(u) {
			if label == config.CanaryLabel {
				line += " " + canaryStyle.Render("["+label+"]")
			} else {
				line += " " + vendorStyle.Render("["+label+"]")
			}
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return noneFound()
	}
	if len(indicators) > 0 {
		lines = append(lines, "", canaryWarning(len(indicators)))
	}
	return strings.Join(lines, "\n")
}

func canaryWarning(n int) string {
	noun := "indicator"
	if n != 1 {
		noun += "s"
	}
	return warningStyle.Render(fmt.Sprintf("⚠ %d canary/tracking %s found: opening this file may notify a third party", n, noun))
}

func plainList(items []string) string {
	if len(items) == 0 {
		return noneFound()
	}
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = "  • " + sanitize(it, false)
	}
	return strings.Join(lines, "\n")
}

func commentList(comments []record.Comment) string {
	if len(comments) == 0 {
		return noneFound()
	}
	var lines []string
	for _, c := range comments {
		head := "  • " + keyStyle.Render(orDash(sanitize(c.Author, false)))
		if c.Location != "" {
			head += mutedStyle.Render(" @ " + sanitize(c.Location, false))
		}
		lines = append(lines, head)
		for _, l := range strings.Split(sanitize(c.Text, true), "\n") {
			lines = append(lines, "      "+l)
		}
	}
	return strings.Join(lines, "\n")
}

func customXMLList(parts []record.CustomXMLPart) string {
	if len(parts) == 0 {
		return noneFound()
	}
	var lines []string
	for _, p := range parts {
		lines = append(lines, "  • "+keyStyle.Render(sanitize(p.Name, false)))
		content := sanitize(p.Content, false)
		if !p.Readable {
			content = mutedStyle.Render(content)
		}
		lines = append(lines, "      "+truncateRunes(strings.Join(strings.Fields(content), " "), maxCustomXMLRunes))
	}
	return strings.Join(lines, "\n")
}

// sanitize replaces control characters in document-supplied text with
// U+FFFD so the file cannot emit terminal escape sequences. Tabs become
// spaces; newlines survive only when keepNewlines is set.
func sanitize(s string, keepNewlines bool) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' && keepNewlines:
			return r
		case r == '\t':
			return ' '
		case unicode.IsControl(r):
			return utf8.RuneError
		}
		return r
	}, s)
}

func noneFound() string {
	return mutedStyle.Render("  " + config.NoneFound)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "…"
}
