package workflow

import (
	"errors"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/meridianlegal/practice_backend/utils"
)

const (
	mysqlErrDeadlock        = 1213
	mysqlErrLockWaitTimeout = 1205
	mysqlErrDuplicateEntry  = 1062
)

func isDuplicateKeyErr(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlErrDuplicateEntry
	}
	return false
}

func isSerializationErr(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlErrDeadlock || mysqlErr.Number == mysqlErrLockWaitTimeout
	}
	return false
}

// classifyTxError wraps deadlock and lock-wait-timeout failures so the API
// layer can retry idempotently. Validation and permission errors pass
// through unwrapped; retrying those cannot help.
func classifyTxError(err error) error {
	if err == nil {
		return nil
	}
	if isSerializationErr(err) {
		return utils.NewRetryableError(err)
	}
	return err
}
