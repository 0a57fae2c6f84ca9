package repository

import (
	"errors"
	"fmt"
	"github.com/go-sql-driver/mysql"
)

var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrCacheMiss is returned by the redis-backed stores when a key is absent.
	ErrCacheMiss = errors.New("cache miss")
)

// ErrDuplicate is returned when a unique constraint rejects a write.
var ErrDuplicate = errors.New("duplicate entry")

const mysqlErrDupEntry = 1062

func translateError(err error) error {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrDupEntry {
		return fmt.Errorf("%w: %s", ErrDuplicate, mysqlErr.Message)
	}
	return err
}
