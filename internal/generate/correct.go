package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/sqlgrade/grade/internal/llm"
)

const correctionSystemPromptTemplate = "You are a database expert who corrects invalid PostgreSQL queries " +
	"against a known schema. Output only the corrected query with no explanations. The schema is as follows:\n\n" +
	"%s\n\n" +
	"Always use the schema provided above when correcting queries."

const correctionRequestPromptTemplate = "Correct the following invalid PostgreSQL query, based on the schema already provided:\n" +
	"%s\n\n" +
	"Return only the corrected SQL statement in one line without any addition or markdown"

// CorrectionInput is one invalid query to repair. The input file is a JSON
// array of this shape.
type CorrectionInput struct {
	ID           int    `json:"id"`
	IncorrectSQL string `json:"incorrect_sql"`
}

// CorrectionResult records the repair of one invalid query. A failed repair
// keeps an error-marker comment in place of the corrected statement and
// carries the failure text instead of the original query.
type CorrectionResult struct {
	ID           int    `json:"id"`
	CorrectedSQL string `json:"corrected_sql"`
	OriginalSQL  string `json:"original_sql,omitempty"`
	Error        string `json:"error,omitempty"`
}

// CorrectAll repairs every invalid query, in input order. An item whose
// correction fails after all retries gets an error-marker result; the batch
// never aborts on a single item. The returned usage is the token total across
// all calls.
func (g *Generator) CorrectAll(ctx context.Context, inputs []CorrectionInput) ([]CorrectionResult, llm.Usage) {
	var total llm.Usage
	results := make([]CorrectionResult, 0, len(inputs))

	for _, input := range inputs {
		sleepJitter()

		sqlText, usage, err := g.correctOne(ctx, input.IncorrectSQL)
		total.Add(usage)
		if err != nil {
			log.Printf("[ERROR] Correction failed for query %d: %v", input.ID, err)
			results = append(results, CorrectionResult{
				ID:           input.ID,
				CorrectedSQL: "/* Error correcting query */",
				Error:        err.Error(),
			})
			continue
		}

		results = append(results, CorrectionResult{
			ID:           input.ID,
			CorrectedSQL: sqlText,
			OriginalSQL:  input.IncorrectSQL,
		})
	}

	return results, total
}

func (g *Generator) correctOne(ctx context.Context, badSQL string) (string, llm.Usage, error) {
	messages := []llm.Message{
		{Role: "system", Content: g.correctPrompt},
		{Role: "user", Content: fmt.Sprintf(correctionRequestPromptTemplate, badSQL)},
	}

	reply, usage, err := g.client.CompleteWithRetry(ctx, messages)
	if err != nil {
		return "", usage, err
	}

	return llm.CleanSQL(reply), usage, nil
}

// LoadCorrectionInputs reads the invalid-query file. A missing or malformed
// file is fatal for the run; it is a configuration problem, not a per-item
// one.
func LoadCorrectionInputs(path string) ([]CorrectionInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read correction input %s: %w", path, err)
	}

	var inputs []CorrectionInput
	if err := json.Unmarshal(data, &inputs); err != nil {
		return nil, fmt.Errorf("failed to parse correction input %s: %w", path, err)
	}

	return inputs, nil
}

// WriteCorrectionResults saves the repair results, pretty-printed for review.
func WriteCorrectionResults(path string, results []CorrectionResult) error {
	data, err := json.MarshalIndent(results, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode correction results: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write correction results %s: %w", path, err)
	}
	return nil
}
