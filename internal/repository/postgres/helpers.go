package postgres

import (
	"github.com/cockroachdb/errors"
	"github.com/lib/pq"
)

// pq error code for unique constraint violations
const uniqueViolationCode = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolationCode
	}
	return false
}
