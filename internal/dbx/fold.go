package dbx

import (
	"database/sql/driver"
	"strings"

	"modernc.org/sqlite"
)

// FoldFunc names the SQLite scalar function that lower-cases text with
// Unicode rules. The built-in lower() only folds ASCII.
const FoldFunc = "fold"

// Fold is the Go side of FoldFunc. It matches PostgreSQL lower() for the
// scripts tags and content are expected to use.
func Fold(s string) string {
	return strings.ToLower(s)
}

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(FoldFunc, 1, foldValue)
}

func foldValue(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return Fold(v), nil
	case []byte:
		return Fold(string(v)), nil
	default:
		return v, nil
	}
}
