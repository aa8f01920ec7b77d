package source

import (
	"fmt"
	"strconv"

	"github.com/parquet-go/parquet-go"
)

// Transformer converts a parquet value into the text representation stored in a Table.
type Transformer interface {

	// Transform takes a parquet.Value and converts it into text, returning an error for unsupported kinds.
	Transform(x parquet.Value) (value string, err error)
}

// TextTransformer formats physical parquet values the way they would appear in a CSV file.
// Null values become empty strings.
type TextTransformer struct{}

func (TextTransformer) Transform(x parquet.Value) (string, error) {
	if x.IsNull() {
		return "", nil
	}
	switch x.Kind() {
	case parquet.Boolean:
		return strconv.FormatBool(x.Boolean()), nil
	case parquet.Int32:
		return strconv.FormatInt(int64(x.Int32()), 10), nil
	case parquet.Int64:
		return strconv.FormatInt(x.Int64(), 10), nil
	case parquet.Int96:
		return x.Int96().String(), nil
	case parquet.Float:
		return strconv.FormatFloat(float64(x.Float()), 'g', -1, 32), nil
	case parquet.Double:
		return strconv.FormatFloat(x.Double(), 'g', -1, 64), nil
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return string(x.ByteArray()), nil
	default:
		return "", fmt.Errorf("unsupported parquet value kind %v", x.Kind())
	}
}
