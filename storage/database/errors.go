package database

import (
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/trezcool/academia/core"
)

// postgres error codes
const (
	pqUniqueViolation     = pq.ErrorCode("23505")
	pqIntegrityConstraint = "23" // class
)

// TranslateError maps store constraint violations to *core.IntegrityError.
// Other errors are returned unchanged.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == pqUniqueViolation:
			return core.NewIntegrityError(err, true)
		case pqErr.Code.Class() == pqIntegrityConstraint:
			return core.NewIntegrityError(err, false)
		}
		return err
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch code := sqliteErr.Code(); {
		case code == sqlite3lib.SQLITE_CONSTRAINT_UNIQUE, code == sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
			return core.NewIntegrityError(err, true)
		case code&0xff == sqlite3lib.SQLITE_CONSTRAINT:
			return core.NewIntegrityError(err, false)
		}
	}
	return err
}
