package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding"

	"gametext/internal/language"
	"gametext/internal/model"
	"gametext/internal/parser"
)

type Config struct {
	Languages     string
	Options       string
	TextEncoding  string
	DatabaseURL   string
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string
	WorkerCount   int
	LogLevel      string
}

// Load reads .env (when present) and the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}
	return FromEnv()
}

// FromEnv reads the configuration from the environment only.
func FromEnv() *Config {
	return &Config{
		Languages:     getEnv("GAMETEXT_LANGUAGES", "all"),
		Options:       getEnv("GAMETEXT_OPTIONS", "optimize_memory"),
		TextEncoding:  getEnv("GAMETEXT_TEXT_ENCODING", "UTF-8"),
		DatabaseURL:   getEnv("DATABASE_URL", "gametext.db"),
		Neo4jURI:      getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:     getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword: getEnv("NEO4J_PASSWORD", "password"),
		WorkerCount:   getEnvInt("WORKER_COUNT", 8),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}
}

// LanguageSet parses Languages.
func (c *Config) LanguageSet() (language.Languages, error) {
	langs, err := language.ParseList(c.Languages)
	if err != nil {
		return language.None, fmt.Errorf("languages: %w", err)
	}
	return langs, nil
}

// TableOptions parses Options.
func (c *Config) TableOptions() (model.Options, error) {
	opts, err := model.ParseOptions(c.Options)
	if err != nil {
		return model.NoOptions, fmt.Errorf("options: %w", err)
	}
	return opts, nil
}

// Encoding resolves TextEncoding.
func (c *Config) Encoding() (encoding.Encoding, error) {
	return parser.LookupEncoding(c.TextEncoding)
}

// Level parses LogLevel, falling back to info.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || c.LogLevel == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
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
