package config

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
)

type Config struct {
	Env             string
	LogLevel        string
	HTTPAddr        string
	DBType          string
	DBDSN           string
	DataDir         string
	FileLabels      string
	FileAssignments string
	FileExercises   string
	FileNames       string
	AuthServiceURL  string
	LocalAuthToken  string
}

var (
	cfg  *Config
	once sync.Once
)

func Load() *Config {
	once.Do(func() {
		_ = loadDotEnv()
		dataDir := getEnv("DATA_DIR", "data")
		cfg = &Config{
			Env:             getEnv("APP_ENV", "development"),
			LogLevel:        getEnv("LOG_LEVEL", "info"),
			HTTPAddr:        getEnv("HTTP_ADDR", ":8088"),
			DBType:          getEnv("STORAGE_BACKEND", "file"),
			DBDSN:           getEnv("POSTGRES_DSN", ""),
			DataDir:         dataDir,
			FileLabels:      getEnv("LABELS_FILE", filepath.Join(dataDir, "labels.json")),
			FileAssignments: getEnv("ASSIGNMENTS_FILE", filepath.Join(dataDir, "day_assignments.json")),
			FileExercises:   getEnv("EXERCISES_FILE", filepath.Join(dataDir, "exercise_logs.json")),
			FileNames:       getEnv("NAMES_FILE", filepath.Join(dataDir, "exercise_names.json")),
			AuthServiceURL:  getEnv("AUTH_SERVICE_URL", ""),
			LocalAuthToken:  getEnv("LOCAL_AUTH_TOKEN", "MOCK-TOKEN"),
		}
		if err := cfg.Validate(); err != nil {
			panic("Invalid config: " + err.Error())
		}
	})
	return cfg
}

func (c *Config) Validate() error {
	if c.DBType != "file" && c.DBType != "postgres" {
		return errors.New("STORAGE_BACKEND must be one of: file, postgres")
	}
	if c.DBType == "postgres" && c.DBDSN == "" {
		return errors.New("POSTGRES_DSN is required when STORAGE_BACKEND=postgres")
	}
	if c.DBType == "file" && (c.FileLabels == "" || c.FileAssignments == "" || c.FileExercises == "" || c.FileNames == "") {
		return errors.New("File storage requires LABELS_FILE, ASSIGNMENTS_FILE, EXERCISES_FILE and NAMES_FILE to be set")
	}
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return errors.New("APP_ENV must be one of: development, staging, production")
	}
	if c.Env != "development" && c.AuthServiceURL == "" {
		return errors.New("AUTH_SERVICE_URL is required outside development")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func loadDotEnv() error {
	if _, err := os.Stat(".env"); err == nil {
		data, err := os.ReadFile(".env")
		if err != nil {
			return err
		}
		for _, l := range splitLines(string(data)) {
			if len(l) == 0 || l[0] == '#' {
				continue
			}
			kv := splitKV(l)
			if len(kv) == 2 {
				os.Setenv(kv[0], kv[1])
			}
		}
	}
	return nil
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i, c := range s {
		if c == '\n' || c == '\r' {
			if i > start {
				lines = append(lines, s[start:i])
			}
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

func splitKV(s string) []string {
	for i, c := range s {
		if c == '=' {
			return []string{s[:i], s[i+1:]}
		}
	}
	return nil
}
