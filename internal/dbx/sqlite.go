package dbx

import (
	"errors"

	sqlite "modernc.org/sqlite"
)

// SQLite primary result code for constraint violations; extended codes
// carry the specific constraint kind in the upper bits.
const (
	sqliteConstraint           = 19
	sqliteConstraintPrimaryKey = 1555
	sqliteConstraintUnique     = 2067
)

// IsUniqueConstraint reports whether err is a SQLite unique or primary-key
// constraint violation. This is the expected signal for "duplicate" on
// insert paths; callers map it onto their own sentinel.
func IsUniqueConstraint(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	code := se.Code()
	return code == sqliteConstraintUnique || code == sqliteConstraintPrimaryKey
}

// IsConstraint reports whether err is any SQLite constraint violation
// (unique, check, not-null, foreign key, ...).
func IsConstraint(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code()&0xff == sqliteConstraint
}
