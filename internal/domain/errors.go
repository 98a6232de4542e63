package domain

import "fmt"

// ConnectionError reports that the data source could not be reached.
// It is fatal for the render that hit it.
type ConnectionError struct {
	Cause error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect to data source: %v", e.Cause)
}

func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// QueryError reports that a single catalog query failed. It only degrades the
// widgets fed by that query.
type QueryError struct {
	Query string
	Cause error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %q: %v", e.Query, e.Cause)
}

func (e *QueryError) Unwrap() error {
	return e.Cause
}
