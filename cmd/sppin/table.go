package main

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// tableView collects rows for a rounded go-pretty table. Headers keep the
// case they were given.
type tableView struct {
	title    string
	headers  []string
	right    map[int]bool
	maxWidth map[int]int
	rows     [][]string
	empty    string
}

func newTableView(headers ...string) *tableView {
	return &tableView{
		headers:  headers,
		right:    map[int]bool{},
		maxWidth: map[int]int{},
		empty:    "no rows",
	}
}

func (v *tableView) withTitle(title string) *tableView {
	v.title = strings.TrimSpace(title)
	return v
}

// alignRight right-aligns the given zero-based columns.
func (v *tableView) alignRight(cols ...int) *tableView {
	for _, c := range cols {
		v.right[c] = true
	}
	return v
}

// wrapAt soft-wraps a column once it grows past width characters.
func (v *tableView) wrapAt(col, width int) *tableView {
	if width > 0 {
		v.maxWidth[col] = width
	}
	return v
}

func (v *tableView) add(cells ...string) {
	v.rows = append(v.rows, cells)
}

func (v *tableView) render() string {
	columns := len(v.headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault
	tw.Style().Title.Format = text.FormatDefault
	if v.title != "" {
		tw.SetTitle(v.title)
	}

	header := make(table.Row, columns)
	for i, h := range v.headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	if len(v.rows) == 0 {
		blank := make(table.Row, columns)
		blank[0] = v.empty
		for i := 1; i < columns; i++ {
			blank[i] = v.empty
		}
		tw.AppendRow(blank, table.RowConfig{AutoMerge: true})
	}
	for _, cells := range v.rows {
		row := make(table.Row, columns)
		for i := range columns {
			if i < len(cells) {
				row[i] = cells[i]
			} else {
				row[i] = ""
			}
		}
		tw.AppendRow(row)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		cfg := table.ColumnConfig{Number: i + 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft}
		if v.right[i] {
			cfg.Align = text.AlignRight
		}
		if w, ok := v.maxWidth[i]; ok {
			cfg.WidthMax = w
			cfg.WidthMaxEnforcer = text.WrapSoft
		}
		configs = append(configs, cfg)
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}
