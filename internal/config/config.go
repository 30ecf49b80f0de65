package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Qdrant   QdrantConfig
	LLM      LLMConfig
	Storage  StorageConfig
	Worker   WorkerConfig
	Scoring  ScoringConfig
	Roles    RolesConfig
	Logging  LoggingConfig
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
}

type QdrantConfig struct {
	Enabled    bool
	URL        string
	APIKey     string
	Collection string
}

type LLMConfig struct {
	Provider      string
	GeminiAPIKey  string
	GeminiModel   string
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
}

type StorageConfig struct {
	UploadPath  string
	MaxFileSize int64
}

type WorkerConfig struct {
	Concurrency       int
	RetryMaxAttempts  int
	RetryInitialDelay time.Duration
	RetryMaxDelay     time.Duration
}

type ScoringConfig struct {
	AugmentMaxChars       int
	AugmentAttemptTimeout time.Duration
	AugmentTotalTimeout   time.Duration
}

type RolesConfig struct {
	DataSource      string
	Dir             string
	RefreshInterval time.Duration
}

type LoggingConfig struct {
	JSON  bool
	Debug bool
}

var defaults = map[string]any{
	"PORT":                    "3000",
	"ENV":                     "development",
	"DB_HOST":                 "localhost",
	"DB_PORT":                 "5432",
	"DB_USER":                 "postgres",
	"DB_PASSWORD":             "postgres",
	"DB_NAME":                 "resume_screener",
	"QDRANT_ENABLED":          false,
	"QDRANT_URL":              "http://localhost:6333",
	"QDRANT_API_KEY":          "",
	"QDRANT_COLLECTION":       "role_reference_docs",
	"LLM_PROVIDER":            "gemini",
	"GEMINI_API_KEY":          "",
	"GEMINI_MODEL":            "gemini-2.5-flash",
	"OPENAI_API_KEY":          "",
	"OPENAI_MODEL":            "gpt-4o-mini",
	"OPENAI_BASE_URL":         "",
	"UPLOAD_PATH":             "./uploads",
	"MAX_FILE_SIZE":           int64(10485760),
	"WORKER_CONCURRENCY":      3,
	"RETRY_MAX_ATTEMPTS":      3,
	"RETRY_INITIAL_DELAY":     "500ms",
	"RETRY_MAX_DELAY":         "4s",
	"AUGMENT_MAX_CHARS":       12000,
	"AUGMENT_ATTEMPT_TIMEOUT": "20s",
	"AUGMENT_TOTAL_TIMEOUT":   "60s",
	"DATA_SOURCE":             "local",
	"ROLE_DATA_DIR":           "./role_data",
	"ROLE_REFRESH_INTERVAL":   "5m",
	"LOG_JSON":                false,
	"LOG_DEBUG":               false,
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using environment and default values.")
	}

	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	return v
}

// FromViper builds a Config out of an already populated viper instance.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port: v.GetString("PORT"),
			Env:  v.GetString("ENV"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
		},
		Qdrant: QdrantConfig{
			Enabled:    v.GetBool("QDRANT_ENABLED"),
			URL:        v.GetString("QDRANT_URL"),
			APIKey:     v.GetString("QDRANT_API_KEY"),
			Collection: v.GetString("QDRANT_COLLECTION"),
		},
		LLM: LLMConfig{
			Provider:      strings.ToLower(strings.TrimSpace(v.GetString("LLM_PROVIDER"))),
			GeminiAPIKey:  v.GetString("GEMINI_API_KEY"),
			GeminiModel:   v.GetString("GEMINI_MODEL"),
			OpenAIAPIKey:  v.GetString("OPENAI_API_KEY"),
			OpenAIModel:   v.GetString("OPENAI_MODEL"),
			OpenAIBaseURL: v.GetString("OPENAI_BASE_URL"),
		},
		Storage: StorageConfig{
			UploadPath:  v.GetString("UPLOAD_PATH"),
			MaxFileSize: v.GetInt64("MAX_FILE_SIZE"),
		},
		Worker: WorkerConfig{
			Concurrency:       v.GetInt("WORKER_CONCURRENCY"),
			RetryMaxAttempts:  v.GetInt("RETRY_MAX_ATTEMPTS"),
			RetryInitialDelay: getDuration(v, "RETRY_INITIAL_DELAY"),
			RetryMaxDelay:     getDuration(v, "RETRY_MAX_DELAY"),
		},
		Scoring: ScoringConfig{
			AugmentMaxChars:       v.GetInt("AUGMENT_MAX_CHARS"),
			AugmentAttemptTimeout: getDuration(v, "AUGMENT_ATTEMPT_TIMEOUT"),
			AugmentTotalTimeout:   getDuration(v, "AUGMENT_TOTAL_TIMEOUT"),
		},
		Roles: RolesConfig{
			DataSource:      strings.ToLower(strings.TrimSpace(v.GetString("DATA_SOURCE"))),
			Dir:             v.GetString("ROLE_DATA_DIR"),
			RefreshInterval: getDuration(v, "ROLE_REFRESH_INTERVAL"),
		},
		Logging: LoggingConfig{
			JSON:  v.GetBool("LOG_JSON"),
			Debug: v.GetBool("LOG_DEBUG"),
		},
	}
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// getDuration falls back to the registered default when the value does not parse.
func getDuration(v *viper.Viper, key string) time.Duration {
	if d, err := time.ParseDuration(v.GetString(key)); err == nil {
		return d
	}
	d, _ := time.ParseDuration(fmt.Sprint(defaults[key]))
	return d
}
