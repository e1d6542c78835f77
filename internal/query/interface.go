package query

import "github.com/sqlgrade/grade/internal/result"

// Runner executes one SQL statement and reports its outcome. The evaluation
// driver depends on this interface so it can be tested without a database.
type Runner interface {
	Run(sqlText string) result.Outcome
}

// Ensure Executor implements Runner
var _ Runner = (*Executor)(nil)
