// File: pkg/formatter/table.go
package formatter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	titleStyle  = lipgloss.NewStyle().Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	mutedStyle  = lipgloss.NewStyle().Faint(true)
)

type Table struct {
	Headers      []string
	Rows         [][]string
	columnWidths []int
}

// Creates a new table with the given headers
func NewTable(headers []string) *Table {
	t := &Table{
		Headers: headers,
		Rows:    [][]string{},
	}
	t.calculateColumnWidths()
	return t
}

func (t *Table) AddRow(row []string) {
	t.Rows = append(t.Rows, row)
	t.calculateColumnWidths()
}

// Widths are display widths, so styled cells line up with plain ones
func (t *Table) calculateColumnWidths() {
	t.columnWidths = make([]int, len(t.Headers))
	for i, h := range t.Headers {
		t.columnWidths[i] = lipgloss.Width(h)
	}

	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(t.columnWidths) {
				t.columnWidths[i] = max(t.columnWidths[i], lipgloss.Width(cell))
			}
		}
	}
}

// Returns the string representation of the table
func (t *Table) String() string {
	if len(t.Headers) == 0 {
		return ""
	}

	t.calculateColumnWidths()

	var sb strings.Builder

	t.writeBorder(&sb)
	sb.WriteString("\n")

	styled := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		styled[i] = headerStyle.Render(h)
	}
	t.writeRow(&sb, styled)

	t.writeBorder(&sb)
	sb.WriteString("\n")

	for _, row := range t.Rows {
		t.writeRow(&sb, row)
	}

	t.writeBorder(&sb)

	return sb.String()
}

func (t *Table) writeRow(sb *strings.Builder, row []string) {
	sb.WriteString("| ")
	for i, cell := range row {
		if i < len(t.columnWidths) {
			sb.WriteString(cell)
			sb.WriteString(strings.Repeat(" ", t.columnWidths[i]-lipgloss.Width(cell)))
			sb.WriteString(" | ")
		}
	}
	sb.WriteString("\n")
}

// writeBorder writes a horizontal border to the string builder
func (t *Table) writeBorder(sb *strings.Builder) {
	sb.WriteString("+")
	for _, width := range t.columnWidths {
		sb.WriteString(strings.Repeat("-", width+2))
		sb.WriteString("+")
	}
}

// Formats a section header with a title
func FormatHeaderSection(title string) string {
	borderLine := strings.Repeat("=", len(title)+30)
	return borderLine + "\n" + titleStyle.Render("  "+title+"  ") + "\n" + borderLine
}

// Formats a simple section title
func FormatSectionTitle(title string) string {
	return titleStyle.Render("-- " + title + " --")
}
