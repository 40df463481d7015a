package database

import (
	"database/sql"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
)

// PostgreSQL error codes the store reacts to.
const (
	codeUniqueViolation      = pq.ErrorCode("23505")
	codeSerializationFailure = pq.ErrorCode("40001")
	codeDeadlockDetected     = pq.ErrorCode("40P01")
)

// TranslateError maps driver errors to domain errors:
//  - unique violations become the error registered in uniques under the violated constraint name
//  - serialization failures & deadlocks become core.ErrStoreConflict
// Any other error is returned as is.
func TranslateError(err error, uniques map[string]error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case codeUniqueViolation:
		if domainErr, ok := uniques[pqErr.Constraint]; ok {
			return domainErr
		}
		return core.NewDuplicateKeyError(pqErr.Constraint, pqErr.Message)
	case codeSerializationFailure, codeDeadlockDetected:
		return errors.Wrap(core.ErrStoreConflict, pqErr.Message)
	}
	return err
}

// TrapNoRows maps sql.ErrNoRows to notFound, and wraps any other error with msg.
func TrapNoRows(err error, notFound error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return errors.Wrap(TranslateError(err, nil), msg)
}
