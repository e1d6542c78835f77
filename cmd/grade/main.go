package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sqlgrade/grade/internal/config"
	"github.com/sqlgrade/grade/internal/eval"
	"github.com/sqlgrade/grade/internal/generate"
	"github.com/sqlgrade/grade/internal/llm"
	"github.com/sqlgrade/grade/internal/postgres"
	"github.com/sqlgrade/grade/internal/query"
	"github.com/sqlgrade/grade/internal/version"
)

const (
	usageText = `SQLGrade - NL-to-SQL generation scoring against live PostgreSQL

Usage:
  grade <command> [options]

Commands:
  generate   Generate SQL for the benchmark prompts via the Groq API
  correct    Repair the invalid queries in the correction dataset
  evaluate   Execute expected and generated queries and score the matches
  version    Print version information
  help       Display this help message

Options:
  -config <file>   Optional YAML config file layered over the environment

Environment:
  DB_HOST, DB_PORT, DB_NAME, DB_USER, DB_PASSWORD   Database connection
  GROQ_KEY, GROQ_MODEL                              Generation API
  EXPECTED_FILE, ACTUAL_FILE, REPORT_FILE           Dataset and report paths
  INCORRECT_FILE, CORRECTED_FILE                    Correction dataset paths

Examples:
  grade generate            Generate SQL for nl_test.json
  grade correct             Repair incorrect_sql_test.json
  grade evaluate            Score output_sql_generation_task.json
`
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "generate":
		if err := runGenerate(os.Args[2:]); err != nil {
			log.Printf("[FATAL] %v", err)
			os.Exit(1)
		}
	case "correct":
		if err := runCorrect(os.Args[2:]); err != nil {
			log.Printf("[FATAL] %v", err)
			os.Exit(1)
		}
	case "evaluate":
		if err := runEvaluate(os.Args[2:]); err != nil {
			log.Printf("[FATAL] %v", err)
			os.Exit(1)
		}
	case "version":
		printVersion()
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func loadConfig(name string, args []string) (*config.Config, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	configPath := fs.String("config", "", "YAML config file")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return config.Load(*configPath)
}

func runEvaluate(args []string) error {
	cfg, err := loadConfig("evaluate", args)
	if err != nil {
		return err
	}

	expected, err := eval.LoadItems(cfg.Files.Expected)
	if err != nil {
		return err
	}
	actual, err := eval.LoadItems(cfg.Files.Actual)
	if err != nil {
		return err
	}

	log.Printf("[INFO] Evaluating %d expected against %d generated queries", len(expected), len(actual))

	executor := query.NewExecutor(cfg.Postgres())
	summary := eval.Evaluate(executor, expected, actual)

	eval.PrintSummary(summary)

	report := eval.NewReport(summary)
	if err := report.Write(cfg.Files.Report); err != nil {
		return err
	}
	log.Printf("[INFO] Detailed results saved to %s", cfg.Files.Report)

	return nil
}

// newGenerator introspects the live schema and builds the schema-grounded
// generator shared by the generate and correct commands.
func newGenerator(cfg *config.Config) (*generate.Generator, error) {
	if cfg.Groq.APIKey == "" {
		return nil, fmt.Errorf("GROQ_KEY is not set")
	}

	log.Printf("[INFO] Introspecting database schema...")
	schema, err := postgres.Introspect(cfg.Postgres())
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] Schema covers %d tables, %d enums, %d foreign keys",
		len(schema.TableOrder), len(schema.EnumOrder), len(schema.ForeignKeys))

	client := llm.NewClient(cfg.Groq.APIKey, cfg.Groq.Model)
	return generate.New(client, postgres.DescribeSchema(schema)), nil
}

func runGenerate(args []string) error {
	cfg, err := loadConfig("generate", args)
	if err != nil {
		return err
	}

	items, err := eval.LoadItems(cfg.Files.Expected)
	if err != nil {
		return err
	}

	generator, err := newGenerator(cfg)
	if err != nil {
		return err
	}

	log.Printf("[INFO] Generating SQL for %d prompts with %s...", len(items), cfg.Groq.Model)
	startTime := time.Now()
	generated, usage := generator.GenerateAll(context.Background(), items)
	elapsed := time.Since(startTime)

	if err := eval.WriteItems(cfg.Files.Actual, generated); err != nil {
		return err
	}

	log.Printf("[INFO] Generated %d queries in %v", len(generated), elapsed)
	log.Printf("[INFO] Total completion tokens: %d", usage.CompletionTokens)
	log.Printf("[INFO] Output saved to %s", cfg.Files.Actual)

	return nil
}

func runCorrect(args []string) error {
	cfg, err := loadConfig("correct", args)
	if err != nil {
		return err
	}

	inputs, err := generate.LoadCorrectionInputs(cfg.Files.Incorrect)
	if err != nil {
		return err
	}

	generator, err := newGenerator(cfg)
	if err != nil {
		return err
	}

	log.Printf("[INFO] Correcting %d queries with %s...", len(inputs), cfg.Groq.Model)
	startTime := time.Now()
	results, usage := generator.CorrectAll(context.Background(), inputs)
	elapsed := time.Since(startTime)

	if err := generate.WriteCorrectionResults(cfg.Files.Corrected, results); err != nil {
		return err
	}

	log.Printf("[INFO] Corrected %d queries in %v", len(results), elapsed)
	log.Printf("[INFO] Total completion tokens: %d", usage.CompletionTokens)
	log.Printf("[INFO] Output saved to %s", cfg.Files.Corrected)

	return nil
}

func printVersion() {
	info := version.Get()
	fmt.Println(info.Full())
}

func printUsage() {
	fmt.Print(usageText)
}
