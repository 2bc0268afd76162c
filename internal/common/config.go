package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	OCR      OCRConfig
	LLM      LLMConfig
	Parser   ParserConfig
	Batch    BatchConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Path        string
	BusyTimeout time.Duration
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Languages     []string
	TessdataDir   string
	PdftoppmPath  string
	RasterDPI     int
	UpscaleFactor float64
	BinarizeLevel uint8
	MinWordConf   float64
}

// LLMConfig holds analysis-service configuration
type LLMConfig struct {
	BaseURL     string
	Model       string
	APIKey      string
	Temperature float32
	Timeout     time.Duration
	MaxChars    int
	Enabled     bool
}

// ParserConfig holds deterministic-extraction configuration
type ParserConfig struct {
	BuyerPattern  string
	LongNameLimit int
	MaxLineRows   int
}

// BatchConfig holds concurrent-processing configuration
type BatchConfig struct {
	Workers     int
	FileTimeout time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:        getEnv("DB_PATH", "docparse.db"),
			BusyTimeout: getEnvAsDuration("DB_BUSY_TIMEOUT", 5*time.Second),
		},
		OCR: OCRConfig{
			Languages:     []string{getEnv("OCR_LANG", "hrv"), "eng"},
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
			PdftoppmPath:  getEnv("PDFTOPPM_PATH", "pdftoppm"),
			RasterDPI:     getEnvAsInt("OCR_RASTER_DPI", 300),
			UpscaleFactor: getEnvAsFloat64("OCR_UPSCALE", 2.5),
			BinarizeLevel: uint8(getEnvAsInt("OCR_BINARIZE", 140)),
			MinWordConf:   getEnvAsFloat64("OCR_MIN_WORD_CONF", 0),
		},
		LLM: LLMConfig{
			BaseURL:     getEnv("LLM_BASE_URL", "http://localhost:1234/v1"),
			Model:       getEnv("LLM_MODEL", "local-model"),
			APIKey:      getEnv("LLM_API_KEY", ""),
			Temperature: getEnvAsFloat32("LLM_TEMPERATURE", 0.01),
			Timeout:     getEnvAsDuration("LLM_TIMEOUT", 45*time.Second),
			MaxChars:    getEnvAsInt("LLM_MAX_CHARS", 25000),
			Enabled:     getEnvAsBool("LLM_ENABLED", true),
		},
		Parser: ParserConfig{
			BuyerPattern:  getEnv("PARSER_BUYER_PATTERN", `ALUMINIUM\s+GLASS\s+STEEL`),
			LongNameLimit: getEnvAsInt("PARSER_LONG_NAME_LIMIT", 180),
			MaxLineRows:   getEnvAsInt("PARSER_MAX_LINE_ROWS", 50),
		},
		Batch: BatchConfig{
			Workers:     getEnvAsInt("BATCH_WORKERS", 4),
			FileTimeout: getEnvAsDuration("BATCH_FILE_TIMEOUT", 2*time.Minute),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate checks the loaded configuration for unusable values.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return NewAppError("CONFIG_ERROR", "DB_PATH is required", ErrInvalidInput)
	}
	if c.LLM.Enabled && c.LLM.BaseURL == "" {
		return NewAppError("CONFIG_ERROR", "LLM_BASE_URL is required when analysis is enabled", ErrInvalidInput)
	}
	if c.Batch.Workers < 1 {
		return NewAppError("CONFIG_ERROR", "BATCH_WORKERS must be at least 1", ErrInvalidInput)
	}
	return nil
}
