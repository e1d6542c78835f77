package eval

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// Report is the document written after every run that reaches aggregation.
// Accuracy is stored at full precision; rounding happens only at display
// time. The mismatches count folds in execution errors, matching the
// summary's historical meaning of "did not match".
type Report struct {
	RunID       string   `json:"run_id"`
	GeneratedAt string   `json:"generated_at"`
	Accuracy    float64  `json:"accuracy"`
	Total       int      `json:"total"`
	Matches     int      `json:"matches"`
	Mismatches  int      `json:"mismatches"`
	Errors      []Record `json:"errors"`
}

// NewReport builds the report document for a finished evaluation.
func NewReport(summary *Summary) *Report {
	records := summary.Records
	if records == nil {
		records = []Record{}
	}
	return &Report{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Accuracy:    summary.Accuracy,
		Total:       summary.Total,
		Matches:     summary.Matches,
		Mismatches:  summary.Total - summary.Matches,
		Errors:      records,
	}
}

// Write saves the report document.
func (r *Report) Write(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	matchColor  = color.New(color.FgGreen)
	failColor   = color.New(color.FgRed)
)

// PrintSummary writes the human-readable run summary and per-pair
// diagnostics to stdout.
func PrintSummary(summary *Summary) {
	headerColor.Println("Evaluation Results:")
	fmt.Printf("Total queries: %d\n", summary.Total)
	fmt.Printf("Matching queries: %d\n", summary.Matches)
	matchColor.Printf("Accuracy: %.2f%%\n", summary.Accuracy)

	if len(summary.Records) == 0 {
		return
	}

	failColor.Printf("\nFound %d mismatches:\n", len(summary.Records))
	for i, record := range summary.Records {
		failColor.Printf("\nMismatch #%d:\n", i+1)
		fmt.Printf("NL: %s\n", record.NL)
		fmt.Printf("\nExpected query:\n%s\n", record.Expected)
		fmt.Printf("\nActual query:\n%s\n", record.Actual)

		if record.ExpectedError != "" {
			fmt.Printf("\nExpected query error: %s\n", record.ExpectedError)
		}
		if record.ActualError != "" {
			fmt.Printf("\nActual query error: %s\n", record.ActualError)
		}

		if record.Kind == OutcomeMismatch {
			fmt.Printf("\nExpected results (%s, %s):\n%s\n",
				record.ExpectedShape, shortSignature(record.ExpectedSignature), renderSet(record.ExpectedResults))
			fmt.Printf("\nActual results (%s, %s):\n%s\n",
				record.ActualShape, shortSignature(record.ActualSignature), renderSet(record.ActualResults))
		}

		fmt.Println("================================================================================")
	}
}

func renderSet(set interface{}) string {
	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return fmt.Sprintf("<unprintable: %v>", err)
	}
	return string(data)
}

func shortSignature(sig string) string {
	if len(sig) > 12 {
		return sig[:12]
	}
	return sig
}
