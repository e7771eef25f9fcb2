package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"alfredoptarigan/resume-screener/internal/scoring"
	"alfredoptarigan/resume-screener/internal/services"
)

type Config struct {
	// EnvFileLoaded reports whether a .env file was read. Load runs before
	// the logger exists, so the caller logs it.
	EnvFileLoaded bool

	Server   ServerConfig
	Log      LogConfig
	Database DatabaseConfig
	Storage  StorageConfig
	Scoring  ScoringConfig
	S3       services.S3Config
}

type ServerConfig struct {
	Port string
	Env  string
}

type LogConfig struct {
	JSON  bool
	Debug bool
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type StorageConfig struct {
	MaxFileSize  int64
	MaxDocuments int
}

type ScoringConfig struct {
	SkillVocabulary     []string
	SectionVocabulary   []string
	PhraseSkillMatching bool
	RawTextBullets      bool
}

func Load() *Config {
	envFileLoaded := godotenv.Load() == nil

	return &Config{
		EnvFileLoaded: envFileLoaded,
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		Log: LogConfig{
			JSON:  getEnvAsBool("LOG_JSON", false),
			Debug: getEnvAsBool("LOG_DEBUG", false),
		},
		Database: DatabaseConfig{
			Enabled:  getEnvAsBool("DB_ENABLED", false),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "resume_screener"),
		},
		Storage: StorageConfig{
			MaxFileSize:  getEnvAsInt64("MAX_FILE_SIZE", 10485760),
			MaxDocuments: getEnvAsInt("MAX_DOCUMENTS", 50),
		},
		Scoring: ScoringConfig{
			SkillVocabulary:     getEnvAsList("SKILL_VOCABULARY", scoring.DefaultSkillVocabulary()),
			SectionVocabulary:   scoring.DefaultSectionVocabulary(),
			PhraseSkillMatching: getEnvAsBool("PHRASE_SKILL_MATCHING", false),
			RawTextBullets:      getEnvAsBool("RAW_TEXT_BULLETS", false),
		},
		S3: services.S3Config{
			Endpoint:  getEnv("S3_ENDPOINT", ""),
			Region:    getEnv("S3_REGION", "auto"),
			AccessKey: getEnv("S3_ACCESS_KEY", ""),
			SecretKey: getEnv("S3_SECRET_KEY", ""),
		},
	}
}

// NewScorer builds the scorer from the configured vocabularies.
func (c *Config) NewScorer() *scoring.Scorer {
	return scoring.NewScorer(
		c.Scoring.SkillVocabulary,
		c.Scoring.SectionVocabulary,
		scoring.Options{
			PhraseSkillMatching: c.Scoring.PhraseSkillMatching,
			CountRawBullets:     c.Scoring.RawTextBullets,
		},
	)
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

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated value, dropping empty items.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(valueStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
