package db

import "strings"

// IsUniqueViolation reports whether err is a Postgres unique-constraint failure.
// With a constraintName it matches that specific index, so callers can tell
// apart e.g. a duplicate email from a duplicate username on the same table.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}

	msg := err.Error()
	if !strings.Contains(msg, "duplicate key value") && constraintName == "" {
		return false
	}
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return true
}
