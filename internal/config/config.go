package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Fallback bounds used when the scoring flow fails: floor(random*30)+10.
const (
	DefaultFallbackMin = 10
	DefaultFallbackMax = 40
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Qdrant   QdrantConfig
	Gemini   GeminiConfig
	Scoring  ScoringConfig
	Storage  StorageConfig
	Worker   WorkerConfig
	Auth     AuthConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
}

// Enabled reports whether talent search is configured.
func (q QdrantConfig) Enabled() bool {
	return strings.TrimSpace(q.URL) != ""
}

type GeminiConfig struct {
	APIKey      string
	APIKeyFile  string
	Model       string
	EmbedModel  string
	Temperature float32
}

type ScoringConfig struct {
	FallbackMin      int
	FallbackMax      int
	Clamp            bool
	StaleWriteGuard  bool
	MaxLogLength     int
	MaxCertTextRunes int
}

type StorageConfig struct {
	UploadPath  string
	MaxFileSize int64
}

type WorkerConfig struct {
	Concurrency  int
	QueueSize    int
	PollInterval time.Duration
	ChunkSize    int
	ChunkOverlap int
}

type AuthConfig struct {
	AdminAPIKey     string
	AdminAPIKeyFile string
}

type LogConfig struct {
	JSON  bool
	Debug bool
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "talent_center"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", ""),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "talent_profiles"),
		},
		Gemini: GeminiConfig{
			APIKey:      getEnv("GEMINI_API_KEY", ""),
			APIKeyFile:  getEnv("GEMINI_API_KEY_FILE", ""),
			Model:       getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			EmbedModel:  getEnv("GEMINI_EMBED_MODEL", "text-embedding-004"),
			Temperature: getEnvAsFloat32("GEMINI_TEMPERATURE", 0.2),
		},
		Scoring: ScoringConfig{
			FallbackMin:      getEnvAsInt("SCORE_FALLBACK_MIN", DefaultFallbackMin),
			FallbackMax:      getEnvAsInt("SCORE_FALLBACK_MAX", DefaultFallbackMax),
			Clamp:            getEnvAsBool("SCORE_CLAMP", true),
			StaleWriteGuard:  getEnvAsBool("SCORE_STALE_WRITE_GUARD", false),
			MaxLogLength:     getEnvAsInt("SCORE_MAX_LOG_LENGTH", 200),
			MaxCertTextRunes: getEnvAsInt("SCORE_MAX_CERT_TEXT", 1500),
		},
		Storage: StorageConfig{
			UploadPath:  getEnv("UPLOAD_PATH", "./uploads"),
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10485760),
		},
		Worker: WorkerConfig{
			Concurrency:  getEnvAsInt("WORKER_CONCURRENCY", 2),
			QueueSize:    getEnvAsInt("WORKER_QUEUE_SIZE", 100),
			PollInterval: getEnvAsDuration("INDEX_POLL_INTERVAL", "30s"),
			ChunkSize:    getEnvAsInt("INDEX_CHUNK_SIZE", 1000),
			ChunkOverlap: getEnvAsInt("INDEX_CHUNK_OVERLAP", 150),
		},
		Auth: AuthConfig{
			AdminAPIKey:     getEnv("ADMIN_API_KEY", ""),
			AdminAPIKeyFile: getEnv("ADMIN_API_KEY_FILE", ""),
		},
		Log: LogConfig{
			JSON:  getEnvAsBool("LOG_JSON", false),
			Debug: getEnvAsBool("LOG_DEBUG", false),
		},
	}
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	if c.Scoring.FallbackMin < 0 || c.Scoring.FallbackMax > 100 {
		return fmt.Errorf("fallback score bounds must lie within [0,100], got [%d,%d)", c.Scoring.FallbackMin, c.Scoring.FallbackMax)
	}
	if c.Scoring.FallbackMax <= c.Scoring.FallbackMin {
		return fmt.Errorf("SCORE_FALLBACK_MAX (%d) must be greater than SCORE_FALLBACK_MIN (%d)", c.Scoring.FallbackMax, c.Scoring.FallbackMin)
	}
	if c.Worker.Concurrency <= 0 {
		return fmt.Errorf("WORKER_CONCURRENCY must be positive, got %d", c.Worker.Concurrency)
	}
	if c.Storage.MaxFileSize <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE must be positive, got %d", c.Storage.MaxFileSize)
	}
	return nil
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 32); err == nil {
		return float32(value)
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
