package query

import (
	"fmt"

	"github.com/exoplanetdb/exoplanetdb/internal/exoplanet"
)

// QueryError reports a statement the store rejected. It matches
// exoplanet.ErrQuery as well as the underlying driver error.
type QueryError struct {
	SQL string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("execute query: %v", e.Err)
}

func (e *QueryError) Unwrap() []error {
	return []error{exoplanet.ErrQuery, e.Err}
}
