package eval

import (
	"log"

	"github.com/sqlgrade/grade/internal/query"
	"github.com/sqlgrade/grade/internal/result"
)

// OutcomeKind classifies one evaluated pair.
type OutcomeKind string

const (
	OutcomeMatch          OutcomeKind = "match"
	OutcomeMismatch       OutcomeKind = "mismatch"
	OutcomeExecutionError OutcomeKind = "execution_error"
)

// Record carries the diagnostics for one non-matching pair. Execution errors
// carry both error messages; mismatches carry both result sets plus their
// signatures and shapes for compact reading.
type Record struct {
	Kind              OutcomeKind `json:"Kind"`
	NL                string      `json:"NL"`
	Expected          string      `json:"Expected"`
	Actual            string      `json:"Actual"`
	ExpectedError     string      `json:"Expected_Error,omitempty"`
	ActualError       string      `json:"Actual_Error,omitempty"`
	ExpectedResults   result.Set  `json:"Expected_Results,omitempty"`
	ActualResults     result.Set  `json:"Actual_Results,omitempty"`
	ExpectedSignature string      `json:"Expected_Signature,omitempty"`
	ActualSignature   string      `json:"Actual_Signature,omitempty"`
	ExpectedShape     string      `json:"Expected_Shape,omitempty"`
	ActualShape       string      `json:"Actual_Shape,omitempty"`
}

// Summary aggregates one evaluation run.
// Total = Matches + Mismatches + Errors always holds.
type Summary struct {
	Total      int
	Matches    int
	Mismatches int
	Errors     int
	Accuracy   float64 // percent, full precision
	Records    []Record
}

// Evaluate runs every prompt present in both collections through the
// executor and compares the outcomes. Prompts missing from the actual
// collection are skipped entirely: they do not count toward the total, so
// absent generations are invisible to the score by design. Duplicate prompts
// within a collection resolve last-write-wins.
func Evaluate(runner query.Runner, expected, actual []Item) *Summary {
	order, expectedByNL := index(expected)
	_, actualByNL := index(actual)

	summary := &Summary{}

	for _, nl := range order {
		actualQuery, ok := actualByNL[nl]
		if !ok {
			continue
		}
		expectedQuery := expectedByNL[nl]
		summary.Total++

		expectedOutcome := runner.Run(expectedQuery)
		actualOutcome := runner.Run(actualQuery)

		record := classify(nl, expectedQuery, actualQuery, expectedOutcome, actualOutcome)
		if record == nil {
			summary.Matches++
			continue
		}

		if record.Kind == OutcomeExecutionError {
			summary.Errors++
		} else {
			summary.Mismatches++
		}
		summary.Records = append(summary.Records, *record)
		log.Printf("[INFO] %s: %s", record.Kind, nl)
	}

	if summary.Total > 0 {
		summary.Accuracy = float64(summary.Matches) / float64(summary.Total) * 100
	}

	return summary
}

// index builds the prompt-keyed view of a collection: the query per prompt
// (last write wins) and prompts in first-occurrence order.
func index(items []Item) ([]string, map[string]string) {
	order := make([]string, 0, len(items))
	byNL := make(map[string]string, len(items))
	for _, item := range items {
		if _, seen := byNL[item.NL]; !seen {
			order = append(order, item.NL)
		}
		byNL[item.NL] = item.Query
	}
	return order, byNL
}

// classify returns nil for a match, otherwise the diagnostic record. A failed
// execution on either side is an execution error even when both sides failed
// identically; errors are never equated.
func classify(nl, expectedQuery, actualQuery string, expected, actual result.Outcome) *Record {
	if expected.Failed() || actual.Failed() {
		return &Record{
			Kind:          OutcomeExecutionError,
			NL:            nl,
			Expected:      expectedQuery,
			Actual:        actualQuery,
			ExpectedError: expected.Err,
			ActualError:   actual.Err,
		}
	}

	if result.Compare(expected, actual) {
		return nil
	}

	return &Record{
		Kind:              OutcomeMismatch,
		NL:                nl,
		Expected:          expectedQuery,
		Actual:            actualQuery,
		ExpectedResults:   expected.Rows,
		ActualResults:     actual.Rows,
		ExpectedSignature: result.Signature(expected.Rows),
		ActualSignature:   result.Signature(actual.Rows),
		ExpectedShape:     result.Describe(expected.Rows),
		ActualShape:       result.Describe(actual.Rows),
	}
}
