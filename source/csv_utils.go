package source

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"go.uber.org/zap"
)

// parseCSV reads delimited text, the header row becomes the column names unless opts.NoHeader is set.
func parseCSV(r io.Reader, opts IOOptions) (*Table, error) {
	delimiter, err := opts.delimiter()
	if err != nil {
		return nil, err
	}
	comment, err := opts.comment()
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.Comment = comment
	reader.LazyQuotes = opts.LazyQuotes
	reader.TrimLeadingSpace = opts.TrimLeadingSpace

	// skipped records may have any shape, the header or the first record decides the width
	reader.FieldsPerRecord = -1
	for i := 0; i < opts.SkipRows; i++ {
		if _, err := reader.Read(); err != nil {
			if err == io.EOF {
				return &Table{}, nil
			}
			return nil, err
		}
	}

	table := &Table{}
	if !opts.NoHeader {
		header, err := reader.Read()
		if err == io.EOF {
			return table, nil
		}
		if err != nil {
			return nil, err
		}
		table.Columns = header
		reader.FieldsPerRecord = len(header)
	} else {
		reader.FieldsPerRecord = 0
	}

	for !limitRows(opts, len(table.Rows)) {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if table.Columns == nil {
			// without a header the first record defines the number of columns
			table.Columns = positionalColumns(len(record))
		}
		log.Trace("CSV record", zap.Strings("record", record))
		table.Rows = append(table.Rows, record)
	}
	log.Debug("Parsed CSV data", zap.Int("columns", len(table.Columns)), zap.Int("rows", len(table.Rows)))
	return table, nil
}

// positionalColumns names n columns "0", "1", ...
func positionalColumns(n int) []string {
	columns := make([]string, n)
	for i := range columns {
		columns[i] = strconv.Itoa(i)
	}
	return columns
}

// WriteCSV serializes the table as delimited text, with a header row unless opts.NoHeader is set.
func WriteCSV(w io.Writer, table *Table, opts IOOptions) error {
	delimiter, err := opts.delimiter()
	if err != nil {
		return err
	}

	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = delimiter
	csvWriter.UseCRLF = opts.CRLF

	if !opts.NoHeader {
		if err := csvWriter.Write(table.Columns); err != nil {
			return fmt.Errorf("failed to write the CSV header: %w", err)
		}
	}
	for i, row := range table.Rows {
		if err := csvWriter.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV record %d: %w", i, err)
		}
	}
	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("failed to flush the CSV writer: %w", err)
	}
	return nil
}

// ToCSV serializes the table into memory, see WriteCSV.
func ToCSV(table *Table, opts IOOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, table, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
