package tui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/mrz1836/faster/internal/domain"
)

// Table layout constants.
const (
	// DefaultTerminalWidth is used when the terminal width cannot be detected.
	DefaultTerminalWidth = 100

	// MinDirectiveWidth keeps the directive column readable on narrow terminals.
	MinDirectiveWidth = 20

	columnGap = "  "
)

// TerminalWidth returns the width of stdout, or DefaultTerminalWidth when
// stdout is not a terminal.
func TerminalWidth() int {
	fd := int(os.Stdout.Fd()) //nolint:gosec // fd fits in int
	if !term.IsTerminal(fd) {
		return DefaultTerminalWidth
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return DefaultTerminalWidth
	}
	return width
}

// Truncate shortens s to at most width display cells, ending with "…" when
// cut. Wide runes (CJK, emoji) count as two cells.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

// PadRight pads s with spaces to width display cells.
func PadRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// TableColumn defines a column in a table. A zero Width sizes the column to
// its widest cell.
type TableColumn struct {
	Name  string
	Width int
}

// Table renders aligned columns. Cells may carry a style applied after padding
// so ANSI codes never affect alignment.
type Table struct {
	w       io.Writer
	styles  *TableStyles
	columns []TableColumn
	rows    [][]Cell
}

// Cell is one table value with an optional style.
type Cell struct {
	Text  string
	Style *lipgloss.Style
}

// NewTable creates a table with the given columns.
func NewTable(w io.Writer, columns []TableColumn) *Table {
	CheckNoColor()
	return &Table{
		w:       w,
		styles:  NewTableStyles(),
		columns: columns,
	}
}

// AddRow adds a row of plain cells.
func (t *Table) AddRow(values ...string) {
	row := make([]Cell, len(values))
	for i, v := range values {
		row[i] = Cell{Text: v}
	}
	t.rows = append(t.rows, row)
}

// AddCells adds a row of cells.
func (t *Table) AddCells(cells ...Cell) {
	t.rows = append(t.rows, cells)
}

// Render writes the header and all rows.
func (t *Table) Render() {
	widths := t.widths()

	header := make([]string, len(t.columns))
	for i, col := range t.columns {
		header[i] = PadRight(col.Name, widths[i])
	}
	_, _ = fmt.Fprintln(t.w, t.styles.Header.Render(strings.TrimRight(strings.Join(header, columnGap), " ")))

	for _, row := range t.rows {
		parts := make([]string, len(t.columns))
		for i := range t.columns {
			var cell Cell
			if i < len(row) {
				cell = row[i]
			}
			text := PadRight(Truncate(cell.Text, widths[i]), widths[i])
			if i == len(t.columns)-1 {
				text = strings.TrimRight(text, " ")
			}
			if cell.Style != nil && HasColorSupport() {
				text = cell.Style.Render(text)
			}
			parts[i] = text
		}
		_, _ = fmt.Fprintln(t.w, strings.Join(parts, columnGap))
	}
}

func (t *Table) widths() []int {
	widths := make([]int, len(t.columns))
	for i, col := range t.columns {
		if col.Width > 0 {
			widths[i] = col.Width
			continue
		}
		widths[i] = runewidth.StringWidth(col.Name)
		for _, row := range t.rows {
			if i < len(row) {
				widths[i] = max(widths[i], runewidth.StringWidth(row[i].Text))
			}
		}
	}
	return widths
}

// Queue table column widths.
const (
	idColumnWidth     = 8
	statusColumnWidth = 11
	modelColumnWidth  = 8
	ageColumnWidth    = 14
)

// QueueTable renders tasks as ID, STATUS, MODEL, AGE and DIRECTIVE columns,
// truncating directives to fit width display cells.
func QueueTable(w io.Writer, tasks []*domain.Task, width int) {
	fixed := idColumnWidth + statusColumnWidth + modelColumnWidth + ageColumnWidth + 4*len(columnGap)
	directiveWidth := max(width-fixed, MinDirectiveWidth)

	table := NewTable(w, []TableColumn{
		{Name: "ID", Width: idColumnWidth},
		{Name: "STATUS", Width: statusColumnWidth},
		{Name: "MODEL", Width: modelColumnWidth},
		{Name: "AGE", Width: ageColumnWidth},
		{Name: "DIRECTIVE", Width: directiveWidth},
	})

	for _, t := range tasks {
		statusStyle := lipgloss.NewStyle().Foreground(TaskStatusColor(t.Status))
		model := t.Model
		if model == "" {
			model = "-"
		}
		table.AddCells(
			Cell{Text: t.ID},
			Cell{Text: TaskStatusIcon(t.Status) + " " + t.Status.String(), Style: &statusStyle},
			Cell{Text: model},
			Cell{Text: RelativeTime(t.CreatedAt)},
			Cell{Text: singleLine(t.Command)},
		)
	}
	table.Render()
}

// singleLine collapses whitespace so multi-line directives fit one row.
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
