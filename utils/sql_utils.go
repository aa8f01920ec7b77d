package utils

import (
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// CreatePgxIdentifier constructs pgx.Identifier out of a table name, optionally including schema.
// The input string can be SCHEMA.TABLE or TABLE (no matter the letter case).
// A wrong input string with more than one "." symbol will report an error to the log and return
// the whole input string to be wrapped as a single name,
// usually resulting in a wrong identifier that will fail the SQL query.
func CreatePgxIdentifier(tableNameWithOrWithoutSchema string) pgx.Identifier {
	s := tableNameWithOrWithoutSchema
	if strings.Contains(s, ".") {
		parts := strings.Split(s, ".")
		if len(parts) != 2 {
			Logger.Error("Invalid identifier format. Expected 'schema_name.table_name'",
				zap.String("tableName", s))
		} else {
			return pgx.Identifier{parts[0], parts[1]}
		}
	}
	return pgx.Identifier{s}
}

// QuoteColumnList returns the column names quoted and joined with ", ", ready for a column list in SQL.
// Column names are never split on "." because CSV headers may legitimately contain dots.
func QuoteColumnList(columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}
	return strings.Join(quoted, ", ")
}
