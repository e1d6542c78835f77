package eval

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewReport_Fields(t *testing.T) {
	summary := &Summary{
		Total:      3,
		Matches:    1,
		Mismatches: 1,
		Errors:     1,
		Accuracy:   100.0 / 3.0,
		Records: []Record{
			{Kind: OutcomeMismatch, NL: "a"},
			{Kind: OutcomeExecutionError, NL: "b"},
		},
	}

	report := NewReport(summary)

	if report.Total != 3 || report.Matches != 1 {
		t.Errorf("Expected total=3 matches=1, got %+v", report)
	}
	// The report's mismatches field counts everything that did not match.
	if report.Mismatches != 2 {
		t.Errorf("Expected mismatches=2, got %d", report.Mismatches)
	}
	// Full precision, not display rounding.
	if report.Accuracy != 100.0/3.0 {
		t.Errorf("Expected full-precision accuracy, got %v", report.Accuracy)
	}
	if report.RunID == "" || report.GeneratedAt == "" {
		t.Error("Expected run metadata to be populated")
	}
}

func TestReport_WriteAndReload(t *testing.T) {
	summary := &Summary{
		Total:    2,
		Matches:  1,
		Accuracy: 50,
		Records: []Record{{
			Kind:        OutcomeExecutionError,
			NL:          "count users",
			Expected:    "SELECT COUNT(*) FROM users",
			Actual:      "SELEC COUNT(*) FROM users",
			ActualError: "INVALID_SQL: Invalid SQL syntax",
		}},
	}

	path := filepath.Join(t.TempDir(), "evaluation_results.json")
	if err := NewReport(summary).Write(path); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected report file, got: %v", err)
	}

	var reloaded Report
	if err := json.Unmarshal(data, &reloaded); err != nil {
		t.Fatalf("Expected valid JSON report, got: %v", err)
	}

	if reloaded.Accuracy != 50 || reloaded.Total != 2 {
		t.Errorf("Expected accuracy=50 total=2, got %+v", reloaded)
	}
	if len(reloaded.Errors) != 1 {
		t.Fatalf("Expected 1 error record, got %d", len(reloaded.Errors))
	}
	if reloaded.Errors[0].NL != "count users" {
		t.Errorf("Expected record NL preserved, got %q", reloaded.Errors[0].NL)
	}
	if reloaded.Errors[0].ActualError == "" {
		t.Error("Expected actual error message preserved")
	}
}

func TestReport_EmptyErrorsIsArray(t *testing.T) {
	summary := &Summary{Total: 1, Matches: 1, Accuracy: 100}

	path := filepath.Join(t.TempDir(), "report.json")
	if err := NewReport(summary).Write(path); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected report file, got: %v", err)
	}

	if strings.Contains(string(data), `"errors": null`) {
		t.Error("Expected errors to serialize as an empty array, not null")
	}
}

func TestLoadItems(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nl_test.json")
	content := `[{"NL": "count users", "Query": "SELECT COUNT(*) FROM users"}]`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	items, err := LoadItems(path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}
	if items[0].NL != "count users" || items[0].Query != "SELECT COUNT(*) FROM users" {
		t.Errorf("Unexpected item: %+v", items[0])
	}
}

func TestLoadItems_Missing(t *testing.T) {
	if _, err := LoadItems(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("Expected error for missing dataset file")
	}
}

func TestLoadItems_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadItems(path); err == nil {
		t.Error("Expected error for malformed dataset file")
	}
}

func TestWriteItems_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	items := []Item{
		{NL: "a", Query: "SELECT 1"},
		{NL: "b", Query: "SELECT 2"},
	}

	if err := WriteItems(path, items); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	reloaded, err := LoadItems(path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(reloaded) != 2 || reloaded[1].Query != "SELECT 2" {
		t.Errorf("Unexpected round trip result: %+v", reloaded)
	}
}
