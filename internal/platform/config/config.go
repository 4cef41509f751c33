package config

import (
	"os"
	"strconv"
	"time"
)

// Config is the explicit configuration object handed to constructors at
// startup. Services never read ambient process state; everything tunable
// lives here so tests can inject thresholds and fake providers.
type Config struct {
	Addr        string
	DatabaseURL string
	Redis       Redis
	Ollama      Ollama
	Screening   Screening
}

// Redis captures embedding-cache connection settings. An empty URL disables
// the cache entirely.
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CacheTTL     time.Duration
}

// Ollama holds the endpoints for both external capability providers.
type Ollama struct {
	Host          string
	GenerateModel string
	EmbedModel    string
}

// Screening holds the matching policy knobs.
type Screening struct {
	// EmbeddingDim is the system-wide vector dimension D. Provider output is
	// zero-padded or truncated to this length; it must match the vector
	// column width in the watchlist store.
	EmbeddingDim int
	// SimilarityCutoff is the minimum cosine similarity for a candidate to
	// be retained. The store query uses distance < 1 - cutoff.
	SimilarityCutoff float64
	// ExplanationTimeout bounds the LLM explanation call; past it the
	// screening completes with the failure placeholder instead of blocking.
	ExplanationTimeout time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Addr:        envString("VIGIL_ADDR", ":8000"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Redis: Redis{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			CacheTTL:     envDuration("EMBEDDING_CACHE_TTL", 24*time.Hour),
		},
		Ollama: Ollama{
			Host:          envString("OLLAMA_HOST", "http://localhost:11434"),
			GenerateModel: envString("OLLAMA_MODEL", "gemma3:12b"),
			EmbedModel:    envString("OLLAMA_EMBED_MODEL", "all-minilm"),
		},
		Screening: Screening{
			EmbeddingDim:       envInt("EMBEDDING_DIM", 1536),
			SimilarityCutoff:   envFloat("SIMILARITY_CUTOFF", 0.6),
			ExplanationTimeout: envDuration("EXPLANATION_TIMEOUT", 30*time.Second),
		},
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
