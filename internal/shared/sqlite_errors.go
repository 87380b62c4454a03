// Package shared provides small helpers used across layers.
package shared

import "strings"

// IsSQLiteBusy reports whether err is a SQLite concurrency error
// (SQLITE_BUSY or "database is locked"). These occur when another connection
// holds the write lock and typically warrant a retry with backoff.
func IsSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}
