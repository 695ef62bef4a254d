package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/table"
	"github.com/stretchr/testify/assert"
)

func TestNewTable(t *testing.T) {
	columns := []TableColumn{
		{Title: "Metric", Width: 20},
		{Title: "Value", Width: 10},
	}
	rows := []table.Row{
		{"web_req_rate", "10"},
		{"web_econ", "3"},
	}

	view := NewTable(columns, rows).View()

	assert.Contains(t, view, "Metric")
	assert.Contains(t, view, "Value")
	assert.Contains(t, view, "web_req_rate")
	assert.Contains(t, view, "web_econ")
}

func TestNewTable_AutoWidth(t *testing.T) {
	columns := []TableColumn{{Title: "M"}, {Title: "V"}}
	rows := []table.Row{{"web_sessionUtil", "33.5%"}}

	tbl := NewTable(columns, rows)
	cols := tbl.Columns()

	assert.Equal(t, len("web_sessionUtil"), cols[0].Width)
	assert.Equal(t, len("33.5%"), cols[1].Width)
	assert.Contains(t, tbl.View(), "web_sessionUtil")
}

func TestRenderSimpleTable(t *testing.T) {
	columns := []TableColumn{
		{Title: "Pool"},
		{Title: "Metric"},
		{Title: "Value"},
	}
	rows := [][]string{
		{"web", "req_rate", "10"},
		{"api", "econ", "0"},
	}

	out := RenderSimpleTable(columns, rows)
	assert.Contains(t, out, "Pool")
	assert.Contains(t, out, "req_rate")
	assert.Contains(t, out, "api")
}

func TestRenderSimpleTable_Empty(t *testing.T) {
	assert.Empty(t, RenderSimpleTable([]TableColumn{{Title: "Pool"}}, nil))
}

func TestRenderPoolTable(t *testing.T) {
	DisableColors()

	out := RenderPoolTable([]PoolTableRow{
		{Name: "web", Complete: true, DownNodes: []string{}, Utilization: 5, RequestRate: 10, BytesIn: 2048, BytesOut: 0, RtimeMS: 22},
		{Name: "api", Complete: true, DownNodes: []string{"app2", "app3"}, Utilization: -1, RtimeMS: -1},
		{Name: "stats", Complete: false, Utilization: -1, RtimeMS: -1},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	var body []string
	for _, l := range lines {
		if strings.Contains(l, "web") || strings.Contains(l, "api") || strings.Contains(l, "stats") {
			body = append(body, l)
		}
	}
	assert.Len(t, body, 3)

	assert.Contains(t, body[0], SymbolSuccess)
	assert.Contains(t, body[0], "5.0%")
	assert.Contains(t, body[0], "2.0 kB")
	assert.Contains(t, body[0], "0 B")
	assert.Contains(t, body[0], "22ms")

	assert.Contains(t, body[1], SymbolFail)
	assert.Contains(t, body[1], "app2, app3")

	assert.Contains(t, body[2], SymbolPending)
	assert.Contains(t, body[2], "not reported")
	assert.Contains(t, out, "POOL")
}

func TestRenderPoolTable_Empty(t *testing.T) {
	assert.Equal(t, "No pools reported", RenderPoolTable(nil))
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "ab  ", padRight("ab", 4))
	assert.Equal(t, "abcd ", padRight("abcd", 4))
}
