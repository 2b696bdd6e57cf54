/*
Package configs is responsible for loading and parsing the application's configuration settings.

Settings come from operating system environment variables; a .env file in the working
directory, when present, is loaded first and never overrides variables already set.
They cover the running environment, port, CORS origins, the snapshot location
(local file or S3-compatible bucket), the Jira connection and meeting-creation rate limits.
*/
package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig contains all configuration parameters required for the application to run.
type AppConfig struct {
	// General Server Settings
	Environment    string
	Port           int
	AllowedOrigins []string
	LogFile        string

	// Snapshot Settings
	SnapshotPath   string
	SaveOnShutdown bool

	// S3 Snapshot Settings (used instead of SnapshotPath when SnapshotS3Bucket is set)
	SnapshotS3Bucket  string
	SnapshotS3Key     string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string

	// Jira Settings
	JiraBaseURL   string
	JiraEmail     string
	JiraAPIToken  string
	JiraIssueType string
	JiraTimeout   time.Duration

	// Rate Limiting Settings
	MeetingCreateRate  float64
	MeetingCreateBurst int
}

// IsDevelopment reports whether the service runs in the development environment.
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// UsesS3Snapshot reports whether the snapshot lives in an S3 bucket.
func (c *AppConfig) UsesS3Snapshot() bool {
	return c.SnapshotS3Bucket != ""
}

// LoadConfig reads a .env file if one exists and then parses the configuration
// from environment variables.
func LoadConfig() (*AppConfig, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv parses the configuration using getenv to look variables up.
// It provides default values for each configuration item and performs necessary type conversions and validation.
func FromEnv(getenv func(string) string) (*AppConfig, error) {
	cfg := &AppConfig{}
	var err error

	// --- General Server Settings ---
	cfg.Environment = valueOr(getenv("ENVIRONMENT"), "development")

	cfg.Port, err = strconv.Atoi(valueOr(getenv("PORT"), "8000"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT environment variable: %w", err)
	}
	if cfg.Port < 1024 || cfg.Port > 65535 {
		return nil, fmt.Errorf("port number %d is outside the recommended range (%d-%d) to avoid privileged ports", cfg.Port, 1024, 65535)
	}

	cfg.AllowedOrigins = []string{}
	for _, origin := range strings.Split(getenv("ALLOWED_ORIGINS"), ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
		}
	}

	cfg.LogFile = getenv("LOG_FILE")

	// --- Snapshot Settings ---
	cfg.SnapshotPath = valueOr(getenv("SNAPSHOT_PATH"), "db.json")

	cfg.SaveOnShutdown, err = parseBool(getenv("SAVE_ON_SHUTDOWN"), false)
	if err != nil {
		return nil, fmt.Errorf("invalid SAVE_ON_SHUTDOWN environment variable: %w", err)
	}

	// --- S3 Snapshot Settings ---
	cfg.SnapshotS3Bucket = getenv("SNAPSHOT_S3_BUCKET")
	if cfg.SnapshotS3Bucket != "" {
		cfg.SnapshotS3Key = valueOr(getenv("SNAPSHOT_S3_KEY"), "db.json")

		cfg.S3Endpoint = getenv("S3_ENDPOINT")
		if cfg.S3Endpoint == "" {
			return nil, fmt.Errorf("S3_ENDPOINT environment variable is required when SNAPSHOT_S3_BUCKET is set")
		}

		cfg.S3AccessKeyID = getenv("S3_ACCESS_KEY_ID")
		if cfg.S3AccessKeyID == "" {
			return nil, fmt.Errorf("S3_ACCESS_KEY_ID environment variable is required when SNAPSHOT_S3_BUCKET is set")
		}

		cfg.S3SecretAccessKey = getenv("S3_SECRET_ACCESS_KEY")
		if cfg.S3SecretAccessKey == "" {
			return nil, fmt.Errorf("S3_SECRET_ACCESS_KEY environment variable is required when SNAPSHOT_S3_BUCKET is set")
		}
	}

	// --- Jira Settings ---
	cfg.JiraBaseURL = getenv("JIRA_BASE_URL")
	cfg.JiraEmail = getenv("JIRA_EMAIL")
	cfg.JiraAPIToken = getenv("JIRA_API_TOKEN")
	if !cfg.IsDevelopment() {
		if cfg.JiraBaseURL == "" || cfg.JiraEmail == "" || cfg.JiraAPIToken == "" {
			return nil, fmt.Errorf("JIRA_BASE_URL, JIRA_EMAIL and JIRA_API_TOKEN environment variables are required in %s environment", cfg.Environment)
		}
	} else if cfg.JiraBaseURL == "" {
		cfg.JiraBaseURL = "http://localhost:8080"
	}

	cfg.JiraIssueType = valueOr(getenv("JIRA_ISSUE_TYPE"), "Task")

	cfg.JiraTimeout, err = time.ParseDuration(valueOr(getenv("JIRA_TIMEOUT"), "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid JIRA_TIMEOUT environment variable: %w", err)
	}
	if cfg.JiraTimeout <= 0 {
		return nil, fmt.Errorf("JIRA_TIMEOUT must be positive, got %s", cfg.JiraTimeout)
	}

	// --- Rate Limiting Settings ---
	cfg.MeetingCreateRate, err = strconv.ParseFloat(valueOr(getenv("MEETING_CREATE_RATE"), "1"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MEETING_CREATE_RATE environment variable: %w", err)
	}
	if cfg.MeetingCreateRate <= 0 {
		return nil, fmt.Errorf("MEETING_CREATE_RATE must be positive, got %v", cfg.MeetingCreateRate)
	}

	cfg.MeetingCreateBurst, err = strconv.Atoi(valueOr(getenv("MEETING_CREATE_BURST"), "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid MEETING_CREATE_BURST environment variable: %w", err)
	}
	if cfg.MeetingCreateBurst < 1 {
		return nil, fmt.Errorf("MEETING_CREATE_BURST must be at least 1, got %d", cfg.MeetingCreateBurst)
	}

	return cfg, nil
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func parseBool(value string, fallback bool) (bool, error) {
	if value == "" {
		return fallback, nil
	}
	return strconv.ParseBool(value)
}
