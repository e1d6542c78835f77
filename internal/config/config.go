package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/sqlgrade/grade/internal/postgres"
)

// Config captures all runtime options for a run. Values resolve in layers:
// built-in local-development defaults, then environment variables (a .env
// file is honored when present), then an optional YAML config file.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Groq     GroqConfig     `yaml:"groq"`
	Files    FilesConfig    `yaml:"files"`
}

// DatabaseConfig holds the PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// GroqConfig holds the generation API settings.
type GroqConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// FilesConfig names the datasets and the report destination.
type FilesConfig struct {
	Expected  string `yaml:"expected"`
	Actual    string `yaml:"actual"`
	Report    string `yaml:"report"`
	Incorrect string `yaml:"incorrect"`
	Corrected string `yaml:"corrected"`
}

// Load resolves the configuration. path may be empty; when set it names a
// YAML file layered over the environment.
func Load(path string) (*Config, error) {
	// Missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getenv("DB_HOST", "localhost"),
			Port:     getenvInt("DB_PORT", 5432),
			Name:     getenv("DB_NAME", "postgres"),
			User:     getenv("DB_USER", "postgres"),
			Password: getenv("DB_PASSWORD", "root"),
		},
		Groq: GroqConfig{
			APIKey: os.Getenv("GROQ_KEY"),
			Model:  getenv("GROQ_MODEL", "qwen-2.5-coder-32b"),
		},
		Files: FilesConfig{
			Expected:  getenv("EXPECTED_FILE", "nl_test.json"),
			Actual:    getenv("ACTUAL_FILE", "output_sql_generation_task.json"),
			Report:    getenv("REPORT_FILE", "evaluation_results.json"),
			Incorrect: getenv("INCORRECT_FILE", "incorrect_sql_test.json"),
			Corrected: getenv("CORRECTED_FILE", "corrected_sql_results.json"),
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	return cfg, nil
}

// Postgres returns the connection parameters in the form the database layer
// consumes.
func (c *Config) Postgres() postgres.Config {
	return postgres.Config{
		Host:     c.Database.Host,
		Port:     c.Database.Port,
		Database: c.Database.Name,
		User:     c.Database.User,
		Password: c.Database.Password,
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
