package repository

import (
	"database/sql"
	"time"
)

// timeLayout preserves sub-second precision and the zone offset so that
// instants round-trip exactly through SQLite text columns.
const timeLayout = time.RFC3339Nano

// boolToInt converts a Go bool to an integer (0 or 1) for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func intToBool(i int) bool {
	return i != 0
}

// stringOrNull collapses a NULL column value to the empty string.
func stringOrNull(s sql.NullString) string {
	if s.Valid {
		return s.String
	}
	return ""
}
