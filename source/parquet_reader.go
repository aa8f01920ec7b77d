package source

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/parquet-go/parquet-go"
	"go.uber.org/zap"
)

// readBatchSize the number of rows requested from a row group at once.
const readBatchSize = 128

// ParquetReader converts an in-memory Parquet file into a Table.
type ParquetReader struct {
	// mapper converts every parquet value into text.
	mapper Transformer

	// parquetFile is a reference to the open Parquet file being processed by the ParquetReader.
	parquetFile *parquet.File

	// columns the dotted paths of the leaf columns, in schema order.
	columns []string

	// rowCount represents the total number of rows in the Parquet file.
	rowCount int64
}

// NewParquetReader creates a new ParquetReader using the supplied Transformer.
func NewParquetReader(transformer Transformer) *ParquetReader {
	return &ParquetReader{mapper: transformer}
}

// Open opens the Parquet file held by r.
func (r *ParquetReader) Open(ra io.ReaderAt, size int64) error {
	if r.parquetFile != nil {
		return fmt.Errorf("the ParquetReader had been already open")
	}
	f, err := parquet.OpenFile(ra, size)
	if err != nil {
		return fmt.Errorf("failed to open the parquet data: %w", err)
	}
	r.parquetFile = f
	r.rowCount = f.NumRows()
	for _, path := range f.Schema().Columns() {
		r.columns = append(r.columns, strings.Join(path, "."))
	}
	log.Debug("Opened parquet data", zap.Int64("rows", r.rowCount), zap.Strings("columns", r.columns))
	return nil
}

// RowCount returns the total number of rows in the Parquet file.
func (r *ParquetReader) RowCount() int64 {
	return r.rowCount
}

// ReadTable reads up to limit rows (all of them when limit <= 0) from every row group in order.
func (r *ParquetReader) ReadTable(limit int) (*Table, error) {
	if r.parquetFile == nil {
		return nil, fmt.Errorf("the ParquetReader is not open")
	}
	table := &Table{Columns: r.columns}
	for i, rowGroup := range r.parquetFile.RowGroups() {
		log.Trace("RowGroup", zap.Int("index", i), zap.Int64("rows", rowGroup.NumRows()))
		done, err := r.readRowGroup(rowGroup, table, limit)
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
	}
	return table, nil
}

// readRowGroup appends the rows of one row group, it returns true once the limit is reached.
func (r *ParquetReader) readRowGroup(rowGroup parquet.RowGroup, table *Table, limit int) (bool, error) {
	rows := rowGroup.Rows()
	defer func(rows parquet.Rows) {
		if err := rows.Close(); err != nil {
			log.Error("Error closing parquet rows", zap.Error(err))
		}
	}(rows)

	batch := make([]parquet.Row, readBatchSize)
	for {
		n, err := rows.ReadRows(batch)
		for _, row := range batch[:n] {
			if limit > 0 && len(table.Rows) >= limit {
				return true, nil
			}
			record, terr := r.transformRow(row)
			if terr != nil {
				return false, terr
			}
			table.Rows = append(table.Rows, record)
		}
		if err == io.EOF {
			return limit > 0 && len(table.Rows) >= limit, nil
		}
		if err != nil {
			return false, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}
}

// transformRow converts one row; repeated values of a column are joined as a bracketed list.
func (r *ParquetReader) transformRow(row parquet.Row) ([]string, error) {
	values := make([][]string, len(r.columns))
	for _, v := range row {
		c := v.Column()
		if c < 0 || c >= len(values) {
			return nil, fmt.Errorf("parquet value refers to unknown column %d", c)
		}
		s, err := r.mapper.Transform(v)
		if err != nil {
			return nil, fmt.Errorf("failed to transform column %s: %w", r.columns[c], err)
		}
		values[c] = append(values[c], s)
	}
	record := make([]string, len(values))
	for i, vs := range values {
		switch len(vs) {
		case 0:
		case 1:
			record[i] = vs[0]
		default:
			record[i] = "[" + strings.Join(vs, ",") + "]"
		}
	}
	return record, nil
}

// parseParquet buffers r in memory because Parquet needs random access to the footer.
func parseParquet(r io.Reader, opts IOOptions) (*Table, error) {
	var ra *bytes.Reader
	if br, ok := r.(*bytes.Reader); ok {
		ra = br
	} else {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("failed to buffer parquet data: %w", err)
		}
		ra = bytes.NewReader(data)
	}
	reader := NewParquetReader(TextTransformer{})
	if err := reader.Open(ra, ra.Size()); err != nil {
		return nil, err
	}
	return reader.ReadTable(opts.NRows)
}
