package generate

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/sqlgrade/grade/internal/eval"
	"github.com/sqlgrade/grade/internal/llm"
)

var (
	// Small randomized pause between API calls to stay under rate limits.
	minCallDelay = 100 * time.Millisecond
	maxCallDelay = 500 * time.Millisecond
)

const systemPromptTemplate = "You are a database expert who generates precise, correct PostgreSQL queries " +
	"from natural language. Output only the query with no explanations. The schema is as follows:\n\n" +
	"%s\n\n" +
	"Always use the schema provided above to generate the SQL queries."

const requestPromptTemplate = "Generate a PostgreSQL query for the following request, based on the schema already provided:\n" +
	"%s\n\n" +
	"Return only the SQL statement in one line without any addition or markdown"

// Generator turns natural-language prompts into SQL statements and repairs
// invalid ones, grounded on the rendered database schema.
type Generator struct {
	client        *llm.Client
	systemPrompt  string
	correctPrompt string
}

func New(client *llm.Client, schemaDescription string) *Generator {
	return &Generator{
		client:        client,
		systemPrompt:  fmt.Sprintf(systemPromptTemplate, schemaDescription),
		correctPrompt: fmt.Sprintf(correctionSystemPromptTemplate, schemaDescription),
	}
}

// GenerateAll produces one SQL statement per prompt, in input order. A prompt
// whose generation fails after all retries gets an error-marker comment in
// place of a query; the batch never aborts on a single item. The returned
// usage is the token total across all calls.
func (g *Generator) GenerateAll(ctx context.Context, items []eval.Item) ([]eval.Item, llm.Usage) {
	var total llm.Usage
	generated := make([]eval.Item, 0, len(items))

	for _, item := range items {
		if item.NL == "" {
			continue
		}

		sleepJitter()

		sqlText, usage, err := g.generateOne(ctx, item.NL)
		total.Add(usage)
		if err != nil {
			log.Printf("[ERROR] Generation failed for %q: %v", item.NL, err)
			sqlText = fmt.Sprintf("/* Error generating SQL: %s */", err)
		}

		generated = append(generated, eval.Item{NL: item.NL, Query: sqlText})
	}

	return generated, total
}

func (g *Generator) generateOne(ctx context.Context, nl string) (string, llm.Usage, error) {
	messages := []llm.Message{
		{Role: "system", Content: g.systemPrompt},
		{Role: "user", Content: fmt.Sprintf(requestPromptTemplate, nl)},
	}

	reply, usage, err := g.client.CompleteWithRetry(ctx, messages)
	if err != nil {
		return "", usage, err
	}

	return llm.CleanSQL(reply), usage, nil
}

func sleepJitter() {
	span := maxCallDelay - minCallDelay
	if span <= 0 {
		time.Sleep(minCallDelay)
		return
	}
	time.Sleep(minCallDelay + time.Duration(rand.Int63n(int64(span))))
}
