package source

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Supported values of IOOptions.Format.
const (
	FormatCSV     = "csv"
	FormatParquet = "parquet"
	FormatJSON    = "json"
)

// IOOptions configures how bytes are parsed into a Table and how a Table is written back as text.
// The zero value reads and writes comma separated text with a header row.
type IOOptions struct {
	// Format is one of "csv" (default), "parquet" or "json".
	Format string `yaml:"format,omitempty" json:"format,omitempty"`

	// Delimiter is the field delimiter, "," when empty. Only the first rune is used.
	Delimiter string `yaml:"delimiter,omitempty" json:"delimiter,omitempty"`

	// Comment lines starting with this rune are ignored when reading.
	Comment string `yaml:"comment,omitempty" json:"comment,omitempty"`

	// NoHeader means the first row is data; columns are then named by their position.
	// When writing, no header row is emitted.
	NoHeader bool `yaml:"no_header,omitempty" json:"no_header,omitempty"`

	// SkipRows is the number of leading records skipped before the header.
	SkipRows int `yaml:"skip_rows,omitempty" json:"skip_rows,omitempty"`

	// NRows limits the number of data rows read, 0 means all of them.
	NRows int `yaml:"nrows,omitempty" json:"nrows,omitempty"`

	// Columns selects a subset of columns, in the given order.
	Columns []string `yaml:"columns,omitempty" json:"columns,omitempty"`

	// LazyQuotes allows quotes to appear in unquoted fields.
	LazyQuotes bool `yaml:"lazy_quotes,omitempty" json:"lazy_quotes,omitempty"`

	// TrimLeadingSpace ignores leading white space in fields.
	TrimLeadingSpace bool `yaml:"trim_leading_space,omitempty" json:"trim_leading_space,omitempty"`

	// CRLF terminates written lines with \r\n.
	CRLF bool `yaml:"crlf,omitempty" json:"crlf,omitempty"`
}

// delimiter returns the configured delimiter rune.
func (o IOOptions) delimiter() (rune, error) {
	return singleRune("delimiter", o.Delimiter, ',')
}

// comment returns the configured comment rune, 0 when disabled.
func (o IOOptions) comment() (rune, error) {
	return singleRune("comment", o.Comment, 0)
}

func singleRune(name string, s string, def rune) (rune, error) {
	if s == "" {
		return def, nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || size != len(s) {
		return 0, fmt.Errorf("the %s must be a single character, got %q", name, s)
	}
	return r, nil
}

// ParseTable parses the content of r into a Table according to opts.
// Errors of the underlying parser are returned unmodified.
func ParseTable(r io.Reader, opts IOOptions) (*Table, error) {
	var table *Table
	var err error
	switch strings.ToLower(opts.Format) {
	case "", FormatCSV:
		table, err = parseCSV(r, opts)
	case FormatParquet:
		table, err = parseParquet(r, opts)
	case FormatJSON:
		table, err = parseJSON(r, opts)
	default:
		return nil, fmt.Errorf("unsupported format %q", opts.Format)
	}
	if err != nil {
		return nil, err
	}
	return selectColumns(table, opts.Columns)
}

// selectColumns projects the table on the requested columns.
func selectColumns(table *Table, columns []string) (*Table, error) {
	if len(columns) == 0 {
		return table, nil
	}
	idx := make([]int, len(columns))
	for i, name := range columns {
		idx[i] = table.Column(name)
		if idx[i] < 0 {
			return nil, fmt.Errorf("column %q not found, available columns: %v", name, table.Columns)
		}
	}
	ret := &Table{Columns: append([]string(nil), columns...), Rows: make([][]string, len(table.Rows))}
	for r, row := range table.Rows {
		projected := make([]string, len(idx))
		for i, j := range idx {
			projected[i] = row[j]
		}
		ret.Rows[r] = projected
	}
	return ret, nil
}

// limitRows applies NRows.
func limitRows(opts IOOptions, count int) bool {
	return opts.NRows > 0 && count >= opts.NRows
}
