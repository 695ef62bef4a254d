package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// TableColumn defines a table column. A zero Width sizes the column to its
// widest cell.
type TableColumn struct {
	Title string
	Width int
}

// NewTable creates a non-focused Bubbles table tall enough to show every row.
func NewTable(columns []TableColumn, rows []table.Row) table.Model {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		width := c.Width
		if width == 0 {
			width = lipgloss.Width(c.Title)
			for _, row := range rows {
				if i < len(row) && lipgloss.Width(row[i]) > width {
					width = lipgloss.Width(row[i])
				}
			}
		}
		cols[i] = table.Column{Title: c.Title, Width: width}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+2), // header plus its bottom border
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true)
	// Nothing is focused, so the first row must not look selected.
	s.Selected = s.Cell
	t.SetStyles(s)
	return t
}

// RenderSimpleTable renders rows as a static table string for CLI output.
func RenderSimpleTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row(row)
	}
	return NewTable(columns, tableRows).View()
}

// PoolTableRow is one pool in the pools table.
type PoolTableRow struct {
	Name        string
	Complete    bool     // Has both a BACKEND row and at least one node row
	DownNodes   []string // Nodes reported DOWN or NOLB
	Utilization float64  // Session utilization percentage, negative when unknown
	RequestRate int64
	Errors5xx   int64
	BytesIn     int64
	BytesOut    int64
	RtimeMS     int64 // Negative when unknown
}

// RenderPoolTable renders the pools table shown by "check-haproxy pools".
func RenderPoolTable(rows []PoolTableRow) string {
	if len(rows) == 0 {
		return "No pools reported"
	}

	successStyle := SuccessStyle()
	errorStyle := ErrorStyle()
	mutedStyle := MutedStyle()

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(ColorMuted)

	var sb strings.Builder
	sb.WriteString(headerStyle.Render("  " +
		padRight("POOL", 20) +
		padRight("SESSIONS", 10) +
		padRight("REQ/S", 8) +
		padRight("5XX", 8) +
		padRight("IN", 10) +
		padRight("OUT", 10) +
		padRight("RTIME", 8) +
		"NODES DOWN"))
	sb.WriteString("\n")

	for _, row := range rows {
		var icon, down string
		switch {
		case !row.Complete:
			icon = mutedStyle.Render(SymbolPending)
			down = mutedStyle.Render("not reported")
		case len(row.DownNodes) > 0:
			icon = errorStyle.Render(SymbolFail)
			down = errorStyle.Render(strings.Join(row.DownNodes, ", "))
		default:
			icon = successStyle.Render(SymbolSuccess)
			down = mutedStyle.Render("-")
		}

		sessions := "-"
		if row.Utilization > 0 {
			sessions = strconv.FormatFloat(row.Utilization, 'f', 1, 64) + "%"
		}
		rtime := "-"
		if row.RtimeMS > 0 {
			rtime = strconv.FormatInt(row.RtimeMS, 10) + "ms"
		}

		sb.WriteString(icon + " " +
			padRight(row.Name, 20) +
			padRight(sessions, 10) +
			padRight(strconv.FormatInt(row.RequestRate, 10), 8) +
			padRight(strconv.FormatInt(row.Errors5xx, 10), 8) +
			padRight(formatBytes(row.BytesIn), 10) +
			padRight(formatBytes(row.BytesOut), 10) +
			padRight(rtime, 8) +
			down)
		sb.WriteString("\n")
	}

	return sb.String()
}

func formatBytes(n int64) string {
	if n <= 0 {
		return "0 B"
	}
	return humanize.Bytes(uint64(n))
}

// padRight pads a string to the specified width.
func padRight(s string, width int) string {
	// Account for ANSI codes when calculating visible length
	visibleLen := lipgloss.Width(s)
	if visibleLen >= width {
		return s + " "
	}
	return s + strings.Repeat(" ", width-visibleLen)
}
