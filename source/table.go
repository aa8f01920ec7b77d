package source

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Table is tabular data with named columns; every value is kept as text.
type Table struct {
	// Columns the column names, in order.
	Columns []string
	// Rows the records, each of them has len(Columns) values.
	Rows [][]string
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Head returns a table with the first n rows sharing the underlying data.
func (t *Table) Head(n int) *Table {
	if n < 0 {
		n = 0
	}
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	return &Table{Columns: t.Columns, Rows: t.Rows[:n]}
}

// Column returns the index of the named column, or -1.
func (t *Table) Column(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Format writes the table as aligned text, with a leading row index like a dataframe print.
func (t *Table) Format(w io.Writer) error {
	width := make([]int, len(t.Columns)+1)
	index := make([]string, len(t.Rows))
	for i := range t.Rows {
		index[i] = fmt.Sprint(i)
		width[0] = max(width[0], len(index[i]))
	}
	for j, c := range t.Columns {
		width[j+1] = utf8.RuneCountInString(c)
	}
	for _, row := range t.Rows {
		for j, v := range row {
			if j+1 < len(width) {
				width[j+1] = max(width[j+1], utf8.RuneCountInString(v))
			}
		}
	}

	line := func(first string, values []string) error {
		var sb strings.Builder
		sb.WriteString(pad(first, width[0]))
		for j := 1; j < len(width); j++ {
			v := ""
			if j-1 < len(values) {
				v = values[j-1]
			}
			sb.WriteString("  ")
			sb.WriteString(pad(v, width[j]))
		}
		_, err := fmt.Fprintln(w, strings.TrimRight(sb.String(), " "))
		return err
	}

	if err := line("", t.Columns); err != nil {
		return err
	}
	for i, row := range t.Rows {
		if err := line(index[i], row); err != nil {
			return err
		}
	}
	return nil
}

// pad right-aligns s within n runes.
func pad(s string, n int) string {
	if d := n - utf8.RuneCountInString(s); d > 0 {
		return strings.Repeat(" ", d) + s
	}
	return s
}
