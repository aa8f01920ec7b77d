package source

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name            string
		input           string
		opts            IOOptions
		expectedColumns []string
		expectedRows    [][]string
	}{
		{
			name:            "Test header and rows",
			input:           "ID,Name,Description\n1,Alice,\n2,Bob,\"one,two\"\n",
			expectedColumns: []string{"ID", "Name", "Description"},
			expectedRows:    [][]string{{"1", "Alice", ""}, {"2", "Bob", "one,two"}},
		},
		{
			name:            "Test semicolon delimiter",
			input:           "a;b\n1;2\n",
			opts:            IOOptions{Delimiter: ";"},
			expectedColumns: []string{"a", "b"},
			expectedRows:    [][]string{{"1", "2"}},
		},
		{
			name:            "Test no header",
			input:           "1,2\n3,4\n",
			opts:            IOOptions{NoHeader: true},
			expectedColumns: []string{"0", "1"},
			expectedRows:    [][]string{{"1", "2"}, {"3", "4"}},
		},
		{
			name:            "Test skip rows, comments and nrows",
			input:           "exported by tool\n# comment\na,b\n1,2\n# another\n3,4\n5,6\n",
			opts:            IOOptions{SkipRows: 1, Comment: "#", NRows: 2},
			expectedColumns: []string{"a", "b"},
			expectedRows:    [][]string{{"1", "2"}, {"3", "4"}},
		},
		{
			name:            "Test column selection",
			input:           "a,b,c\n1,2,3\n",
			opts:            IOOptions{Columns: []string{"c", "a"}},
			expectedColumns: []string{"c", "a"},
			expectedRows:    [][]string{{"3", "1"}},
		},
		{
			name:            "Test header only",
			input:           "a,b\n",
			expectedColumns: []string{"a", "b"},
			expectedRows:    nil,
		},
		{
			name:            "Test empty input",
			input:           "",
			expectedColumns: nil,
			expectedRows:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := ParseTable(strings.NewReader(tt.input), tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedColumns, table.Columns)
			assert.Equal(t, tt.expectedRows, table.Rows)
		})
	}
}

func TestParseCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		opts  IOOptions
	}{
		{name: "Test ragged rows", input: "a,b\n1,2,3\n"},
		{name: "Test bare quote", input: "a,b\n1,x\"y\n"},
		{name: "Test long delimiter", input: "a,b\n", opts: IOOptions{Delimiter: "::"}},
		{name: "Test unknown column", input: "a,b\n1,2\n", opts: IOOptions{Columns: []string{"z"}}},
		{name: "Test unknown format", input: "a,b\n", opts: IOOptions{Format: "xlsx"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseTable(strings.NewReader(tt.input), tt.opts); err == nil {
				t.Errorf("ParseTable(%q) was supposed to return an error", tt.input)
			}
		})
	}
}

func TestParseCSVLazyQuotes(t *testing.T) {
	table, err := ParseTable(strings.NewReader("a,b\n1,x\"y\n"), IOOptions{LazyQuotes: true})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1", `x"y`}}, table.Rows)
}

func TestWriteCSV(t *testing.T) {
	table := &Table{
		Columns: []string{"ID", "Name", "Description"},
		Rows: [][]string{
			{"1", "Alice", ""},
			{"2", "", "Empty name"},
			{"3", "Carol", "one,two"},
			{"4", "Dan", "say \"hi\""},
		},
	}

	tests := []struct {
		name     string
		opts     IOOptions
		expected string
	}{
		{
			name: "Test defaults",
			expected: `ID,Name,Description
1,Alice,
2,,Empty name
3,Carol,"one,two"
4,Dan,"say ""hi"""
`,
		},
		{
			name: "Test tab without header",
			opts: IOOptions{Delimiter: "\t", NoHeader: true},
			expected: "1\tAlice\t\n" +
				"2\t\tEmpty name\n" +
				"3\tCarol\tone,two\n" +
				"4\tDan\t\"say \"\"hi\"\"\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buffer bytes.Buffer
			require.NoError(t, WriteCSV(&buffer, table, tt.opts))
			if output := buffer.String(); output != tt.expected {
				t.Errorf("CSV output did not match expected result.\nExpected:\n%s\nGot:\n%s", tt.expected, output)
			}
		})
	}
}

func TestCSVRoundTrip(t *testing.T) {
	table := &Table{
		Columns: []string{"id", "note"},
		Rows:    [][]string{{"1", "multi\nline"}, {"2", "semi;colon"}, {"3", ""}},
	}
	opts := IOOptions{Delimiter: ";"}

	data, err := ToCSV(table, opts)
	require.NoError(t, err)

	parsed, err := ParseTable(bytes.NewReader(data), opts)
	require.NoError(t, err)
	assert.Equal(t, table, parsed)
}
