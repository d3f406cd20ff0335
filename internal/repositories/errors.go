package repositories

import (
	"errors"

	"github.com/lib/pq"
)

// postgres class 23505 = unique_violation
const uniqueViolationCode = "23505"

// IsUniqueViolation reports whether err is a postgres unique-constraint
// violation. Callers translate it into a domain conflict error.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode
}
