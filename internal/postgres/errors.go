package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// Evaluation error codes
const (
	ErrorCodeInvalidSQL          = "INVALID_SQL"
	ErrorCodeQueryTimeout        = "QUERY_TIMEOUT"
	ErrorCodeDatabaseUnavailable = "DATABASE_UNAVAILABLE"
	ErrorCodeInternalError       = "INTERNAL_ERROR"
)

// QueryError classifies a failed query execution. The Message/Detail split
// keeps diagnostics readable while Code drives aggregate reporting.
type QueryError struct {
	Code    string
	Message string
	Detail  string
}

func (e *QueryError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewQueryError creates a new classified query error
func NewQueryError(code, message, detail string) *QueryError {
	return &QueryError{
		Code:    code,
		Message: message,
		Detail:  detail,
	}
}

// SQLSTATE to evaluation error code mapping
var sqlStateToCode = map[string]string{
	// Syntax and reference errors → INVALID_SQL
	"42601": ErrorCodeInvalidSQL, // syntax_error
	"42703": ErrorCodeInvalidSQL, // undefined_column
	"42P01": ErrorCodeInvalidSQL, // undefined_table
	"42P02": ErrorCodeInvalidSQL, // undefined_parameter
	"42883": ErrorCodeInvalidSQL, // undefined_function
	"42804": ErrorCodeInvalidSQL, // datatype_mismatch

	// Query cancellation → QUERY_TIMEOUT
	"57014": ErrorCodeQueryTimeout, // query_canceled

	// Resource limits → DATABASE_UNAVAILABLE
	"53000": ErrorCodeDatabaseUnavailable, // insufficient_resources
	"53100": ErrorCodeDatabaseUnavailable, // disk_full
	"53200": ErrorCodeDatabaseUnavailable, // out_of_memory
	"53300": ErrorCodeDatabaseUnavailable, // too_many_connections

	// Connection errors → DATABASE_UNAVAILABLE
	"08000": ErrorCodeDatabaseUnavailable, // connection_exception
	"08003": ErrorCodeDatabaseUnavailable, // connection_does_not_exist
	"08006": ErrorCodeDatabaseUnavailable, // connection_failure
	"08001": ErrorCodeDatabaseUnavailable, // sqlclient_unable_to_establish_sqlconnection
	"08004": ErrorCodeDatabaseUnavailable, // sqlserver_rejected_establishment_of_sqlconnection
}

// TranslateError classifies a raw PostgreSQL error for diagnostics
func TranslateError(err error) *QueryError {
	if err == nil {
		return nil
	}

	var queryErr *QueryError
	if errors.As(err, &queryErr) {
		return queryErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewQueryError(
			ErrorCodeQueryTimeout,
			"Query execution timeout",
			"Query exceeded the maximum execution time",
		)
	}

	if errors.Is(err, context.Canceled) {
		return NewQueryError(
			ErrorCodeQueryTimeout,
			"Query execution canceled",
			"Query was canceled before completion",
		)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return translatePQError(pqErr)
	}

	return NewQueryError(
		ErrorCodeInternalError,
		"An internal error occurred",
		err.Error(),
	)
}

// translatePQError translates a pq.Error to a QueryError
func translatePQError(pqErr *pq.Error) *QueryError {
	sqlState := string(pqErr.Code)

	code, found := sqlStateToCode[sqlState]
	if !found {
		code = ErrorCodeInternalError
	}

	return NewQueryError(code, buildErrorMessage(code, pqErr), buildErrorDetail(pqErr))
}

// buildErrorMessage creates a user-friendly error message
func buildErrorMessage(code string, pqErr *pq.Error) string {
	switch code {
	case ErrorCodeInvalidSQL:
		return "Invalid SQL syntax"
	case ErrorCodeQueryTimeout:
		return "Query execution timeout"
	case ErrorCodeDatabaseUnavailable:
		return "Database is unavailable"
	default:
		if pqErr.Message != "" {
			return pqErr.Message
		}
		return "An error occurred"
	}
}

// buildErrorDetail creates detailed error information
func buildErrorDetail(pqErr *pq.Error) string {
	detail := fmt.Sprintf("PostgreSQL error: %s", pqErr.Message)

	if pqErr.Detail != "" {
		detail += fmt.Sprintf(" | Detail: %s", pqErr.Detail)
	}

	if pqErr.Hint != "" {
		detail += fmt.Sprintf(" | Hint: %s", pqErr.Hint)
	}

	if pqErr.Position != "" {
		detail += fmt.Sprintf(" | Position: %s", pqErr.Position)
	}

	return detail
}
