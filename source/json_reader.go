package source

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/bcicen/jstream"
	"go.uber.org/zap"
)

// parseJSON reads a top-level JSON array of objects.
// The columns are the union of the object keys in first-seen order, missing keys become empty values.
func parseJSON(r io.Reader, opts IOOptions) (*Table, error) {
	decoder := jstream.NewDecoder(r, 1).ObjectAsKVS()

	table := &Table{}
	positions := make(map[string]int)
	var records []map[int]string
	var parseErr error
	for mv := range decoder.Stream() {
		// the stream is always drained so that the decoder goroutine finishes
		if parseErr != nil || limitRows(opts, len(records)) {
			continue
		}
		kvs, ok := mv.Value.(jstream.KVS)
		if !ok {
			parseErr = fmt.Errorf("expected a JSON object at offset %d, got %T", mv.Offset, mv.Value)
			continue
		}
		record := make(map[int]string, len(kvs))
		for _, kv := range kvs {
			pos, found := positions[kv.Key]
			if !found {
				pos = len(table.Columns)
				positions[kv.Key] = pos
				table.Columns = append(table.Columns, kv.Key)
			}
			text, err := jsonText(kv.Value)
			if err != nil {
				parseErr = fmt.Errorf("failed to convert the value of %q: %w", kv.Key, err)
				break
			}
			record[pos] = text
		}
		if parseErr != nil {
			continue
		}
		log.Trace("JSON record", zap.Any("record", record))
		records = append(records, record)
	}
	if err := decoder.Err(); err != nil {
		return nil, err
	}
	if parseErr != nil {
		return nil, parseErr
	}

	table.Rows = make([][]string, len(records))
	for i, record := range records {
		row := make([]string, len(table.Columns))
		for pos, text := range record {
			row[pos] = text
		}
		table.Rows[i] = row
	}
	log.Debug("Parsed JSON data", zap.Int("columns", len(table.Columns)), zap.Int("rows", len(table.Rows)))
	return table, nil
}

// jsonText converts a decoded JSON value to text; nested objects and arrays are kept as JSON.
func jsonText(v any) (string, error) {
	switch value := v.(type) {
	case nil:
		return "", nil
	case string:
		return value, nil
	case bool:
		return strconv.FormatBool(value), nil
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64), nil
	default:
		b, err := json.Marshal(value)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}
