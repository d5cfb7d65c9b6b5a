// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App           AppConfig
	Logger        LoggerConfig
	Server        ServerConfig
	Store         StoreConfig
	Transcription TranscriptionConfig
	Captions      CaptionsConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
}

// StoreConfig holds clip store configuration.
type StoreConfig struct {
	// Path is the directory for the Badger database.
	// Empty means in-memory, which is only useful for tests.
	Path string
}

// TranscriptionConfig holds transcription provider configuration.
type TranscriptionConfig struct {
	// BaseURL of the provider API (default: https://api.assemblyai.com).
	BaseURL string
	// APIKey authenticates requests. Required to run transcriptions;
	// clips built from pre-supplied transcripts work without it.
	APIKey string
	// PollInterval between status checks while waiting for a transcript (default: 2s).
	PollInterval time.Duration
	// PollTimeout bounds the total wait for one transcript (default: 5m).
	PollTimeout time.Duration
}

// CaptionsConfig holds caption engine defaults.
type CaptionsConfig struct {
	// ChunkLookaheadMs is how early a word becomes visible before its start (default: 150).
	ChunkLookaheadMs int64
	// ChunkLookbackMs is how long a word stays visible after its start (default: 400).
	ChunkLookbackMs int64
	// ChunkMaxWords caps the words shown per chunk (default: 3).
	ChunkMaxWords int
	// Debug enables per-selection trace logging on new engines.
	Debug bool
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	// Define command-line flags.
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	storePath := flag.String("store-path", "", "Directory for the clip database")

	// Server flags
	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")

	// Transcription flags
	providerURL := flag.String("provider-url", "", "Transcription provider base URL")
	providerKey := flag.String("provider-key", "", "Transcription provider API key")
	pollInterval := flag.String("poll-interval", "", "Transcript poll interval (default: 2s)")
	pollTimeout := flag.String("poll-timeout", "", "Transcript poll timeout (default: 5m)")

	// Caption engine flags
	chunkLookahead := flag.String("chunk-lookahead-ms", "", "Chunk lookahead in ms (default: 150)")
	chunkLookback := flag.String("chunk-lookback-ms", "", "Chunk lookback in ms (default: 400)")
	chunkMaxWords := flag.String("chunk-max-words", "", "Max words per chunk (default: 3)")
	captionDebug := flag.String("caption-debug", "", "Enable caption trace logging (default: false)")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	// Build config with proper precedence.
	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port: getConfigValue(*serverPort, "SERVER_PORT", "8080"),
		},
		Store: StoreConfig{
			Path: getConfigValue(*storePath, "STORE_PATH", ""),
		},
		Transcription: TranscriptionConfig{
			BaseURL: getConfigValue(*providerURL, "TRANSCRIPTION_BASE_URL", "https://api.assemblyai.com"),
			APIKey:  getConfigValue(*providerKey, "TRANSCRIPTION_API_KEY", ""),
		},
		Captions: CaptionsConfig{
			ChunkLookaheadMs: int64(getIntConfigValue(*chunkLookahead, "CHUNK_LOOKAHEAD_MS", 150)),
			ChunkLookbackMs:  int64(getIntConfigValue(*chunkLookback, "CHUNK_LOOKBACK_MS", 400)),
			ChunkMaxWords:    getIntConfigValue(*chunkMaxWords, "CHUNK_MAX_WORDS", 3),
			Debug:            getBoolConfigValue(*captionDebug, "CAPTION_DEBUG", false),
		},
	}

	// Parse durations.
	var err error
	if cfg.Server.ReadTimeout, err = parseDurationValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = parseDurationValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.IdleTimeout, err = parseDurationValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, err
	}
	if cfg.Transcription.PollInterval, err = parseDurationValue(*pollInterval, "TRANSCRIPTION_POLL_INTERVAL", "2s"); err != nil {
		return nil, err
	}
	if cfg.Transcription.PollTimeout, err = parseDurationValue(*pollTimeout, "TRANSCRIPTION_POLL_TIMEOUT", "5m"); err != nil {
		return nil, err
	}

	// Validate configuration.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Captions.ChunkLookaheadMs < 0 {
		return errors.New("chunk lookahead must not be negative")
	}
	if c.Captions.ChunkLookbackMs < 0 {
		return errors.New("chunk lookback must not be negative")
	}
	if c.Captions.ChunkMaxWords < 1 {
		return errors.New("chunk max words must be at least 1")
	}

	return nil
}

// parseDurationValue resolves a duration with flag/env/default precedence.
func parseDurationValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	str := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(str)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", strings.ToLower(envKey), str, err)
	}
	return d, nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	// Priority 1: Command-line flag.
	if flagValue != "" {
		return flagValue
	}

	// Priority 2: Environment variable.
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	// Priority 3: Default value.
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=value.
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present.
		value = strings.Trim(value, `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
