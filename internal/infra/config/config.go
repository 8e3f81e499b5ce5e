// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Env  string
	Port string

	DB        DBConfig
	Augur     AugurConfig
	Embedder  EmbedderConfig
	Recommend RecommendConfig
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	MaxConns int
	MinConns int
}

// DSN renders the pgx connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		c.User, c.Password, c.Host, c.Port, c.Name)
}

// AugurConfig points at the LLM sidecar used for classification and
// relevance scoring.
type AugurConfig struct {
	URL             string
	ClassifierModel string
	ScorerModel     string
	TimeoutSeconds  int
}

type EmbedderConfig struct {
	URL            string
	Model          string
	TimeoutSeconds int
}

// RecommendConfig carries the pipeline knobs. Zero values here are
// replaced with usecase defaults at wiring time.
type RecommendConfig struct {
	PerDomainLimit  int
	RetrievalBudget int
	FinalK          int
	ScoreRateLimit  int
	CacheSize       int
	CacheTTLMinutes int
}

func Load() *Config {
	return &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "8080"),
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "catalog-db"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "catalog_user"),
			Password: getSecret("DB_PASSWORD", "DB_PASSWORD_FILE", "catalog_password"),
			Name:     getEnv("DB_NAME", "catalog_db"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 10),
			MinConns: getEnvInt("DB_MIN_CONNS", 2),
		},
		Augur: AugurConfig{
			URL:             getEnv("AUGUR_URL", "http://augur:11434"),
			ClassifierModel: getEnv("AUGUR_CLASSIFIER_MODEL", "gemma3:4b"),
			ScorerModel:     getEnv("AUGUR_SCORER_MODEL", "gemma3:4b"),
			TimeoutSeconds:  getEnvInt("AUGUR_TIMEOUT_SECONDS", 60),
		},
		Embedder: EmbedderConfig{
			URL:            getEnv("EMBEDDER_URL", "http://augur:11434"),
			Model:          getEnv("EMBEDDING_MODEL", "embeddinggemma"),
			TimeoutSeconds: getEnvInt("EMBEDDER_TIMEOUT_SECONDS", 30),
		},
		Recommend: RecommendConfig{
			PerDomainLimit:  getEnvInt("RECOMMEND_PER_DOMAIN_LIMIT", 20),
			RetrievalBudget: getEnvInt("RECOMMEND_RETRIEVAL_BUDGET", 40),
			FinalK:          getEnvInt("RECOMMEND_FINAL_K", 7),
			ScoreRateLimit:  getEnvInt("RECOMMEND_SCORE_RATE_LIMIT", 10),
			CacheSize:       getEnvInt("RECOMMEND_CACHE_SIZE", 256),
			CacheTTLMinutes: getEnvInt("RECOMMEND_CACHE_TTL_MINUTES", 15),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getSecret reads the value from the environment, then from the file
// named by fileEnvKey (for container secret mounts), then falls back.
func getSecret(envKey, fileEnvKey, fallback string) string {
	if value, ok := os.LookupEnv(envKey); ok {
		return value
	}
	if filePath, ok := os.LookupEnv(fileEnvKey); ok {
		if content, err := os.ReadFile(filePath); err == nil {
			return strings.TrimSpace(string(content))
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
