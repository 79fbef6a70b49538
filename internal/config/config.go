package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Session store backends
const (
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// Config holds everything the recorder binaries read from the environment
type Config struct {
	APIBaseURL string
	APITimeout time.Duration
	APIRPS     float64
	APIBurst   int

	SessionStore  string
	StateDir      string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	S3 S3Config

	Port         int
	CORSOrigins  []string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// S3Config describes the S3-compatible bucket used for visit recordings.
// An empty Endpoint disables recording storage.
type S3Config struct {
	Endpoint       string
	PublicEndpoint string
	AccessKey      string
	SecretKey      string
	Bucket         string
	Region         string
	UseSSL         bool
}

// Enabled reports whether recording storage was configured
func (c S3Config) Enabled() bool {
	return c.Endpoint != ""
}

// Load reads the configuration from environment variables
func Load() (*Config, error) {
	if err := ValidateEnv([]string{"API_BASE_URL"}); err != nil {
		return nil, err
	}

	cfg := &Config{
		APIBaseURL: os.Getenv("API_BASE_URL"),
		APITimeout: GetEnvDuration("API_TIMEOUT", 30*time.Second),
		APIRPS:     GetEnvFloat("API_RPS", 10),
		APIBurst:   GetEnvInt("API_BURST", 20),

		SessionStore:  GetEnvOrDefault("SESSION_STORE", StoreFile),
		StateDir:      GetEnvOrDefault("STATE_DIR", defaultStateDir()),
		RedisAddr:     GetEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       GetEnvInt("REDIS_DB", 0),

		S3: S3Config{
			Endpoint:       os.Getenv("S3_ENDPOINT"),
			PublicEndpoint: os.Getenv("S3_PUBLIC_ENDPOINT"),
			AccessKey:      os.Getenv("S3_ACCESS_KEY"),
			SecretKey:      os.Getenv("S3_SECRET_KEY"),
			Bucket:         GetEnvOrDefault("S3_BUCKET_NAME", "visit-recordings"),
			Region:         GetEnvOrDefault("S3_REGION", "us-east-1"),
			UseSSL:         os.Getenv("S3_USE_SSL") == "true",
		},

		Port:         GetEnvInt("PORT", 8090),
		CORSOrigins:  GetEnvList("CORS_ORIGINS", []string{"http://localhost:5173"}),
		ReadTimeout:  GetEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout: GetEnvDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
		IdleTimeout:  GetEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
	}

	switch cfg.SessionStore {
	case StoreFile, StoreRedis, StoreMemory:
	default:
		return nil, fmt.Errorf("SESSION_STORE must be one of %s, %s, %s; got %q",
			StoreFile, StoreRedis, StoreMemory, cfg.SessionStore)
	}

	if cfg.S3.Enabled() && (cfg.S3.AccessKey == "" || cfg.S3.SecretKey == "") {
		return nil, fmt.Errorf("S3_ACCESS_KEY and S3_SECRET_KEY are required when S3_ENDPOINT is set")
	}

	return cfg, nil
}

// StatePath returns the path of the local state file used by the file store
func (c *Config) StatePath() string {
	return filepath.Join(c.StateDir, "state.json")
}

// LogPath returns the log file used when stdout belongs to the terminal UI
func (c *Config) LogPath() string {
	return filepath.Join(c.StateDir, "vrecorder.log")
}

func defaultStateDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".vrecorder"
	}
	return filepath.Join(dir, "vrecorder")
}
