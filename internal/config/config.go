package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds configuration for the gateway.
type Config struct {
	HTTPPort    string
	Credentials CredentialsConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	History     HistoryConfig
	RateLimit   RateLimitConfig
	AccessLog   AccessLogConfig
}

// CredentialsConfig holds credential persistence settings
type CredentialsConfig struct {
	// FilePath is where the JSON credential file lives. When a
	// database is configured the Postgres repository is used instead.
	FilePath string

	// EncryptionKey is a base64-encoded AES key. Empty means the
	// credential file is stored in plaintext (development only).
	EncryptionKey string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	Database        string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// Enabled reports whether a database host was configured.
func (c DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// Enabled reports whether a Redis address was configured.
func (c RedisConfig) Enabled() bool {
	return c.Address != ""
}

// HistoryConfig holds generation-history settings
type HistoryConfig struct {
	Enabled      bool
	BatchSize    int
	BatchTimeout time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

// AccessLogConfig holds HTTP access-log settings
type AccessLogConfig struct {
	// FileTemplate must contain a single %s for the rotation
	// timestamp. Empty disables access logging.
	FileTemplate  string
	MaxSize       int64
	MaxFiles      int
	BufferSize    int
	FlushInterval time.Duration
}

// Enabled reports whether an access-log file template was configured.
func (c AccessLogConfig) Enabled() bool {
	return c.FileTemplate != ""
}

// RateLimitConfig holds inbound throttling settings
type RateLimitConfig struct {
	// RequestsPerWindow of zero disables throttling.
	RequestsPerWindow int
	Window            time.Duration
}

func getEnvInt(key string, defaultValue int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getEnvBool(key string, defaultValue bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}

	boolVal, err := strconv.ParseBool(val)
	if err != nil {
		return defaultValue
	}

	return boolVal
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(val)
	if err != nil {
		return defaultValue
	}

	return duration
}

func getEnvString(key string, defaultValue string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	return val
}

// Load reads configuration from environment variables. Every setting
// has a default; a bare environment runs the gateway standalone with a
// plaintext credential file and in-memory history.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPPort: getEnvString("HTTP_PORT", "8080"),
		Credentials: CredentialsConfig{
			FilePath:      getEnvString("CREDENTIALS_FILE", "credentials.json"),
			EncryptionKey: os.Getenv("ENCRYPTION_KEY"),
		},
		Database: DatabaseConfig{
			Host:            os.Getenv("DB_HOST"),
			Port:            getEnvInt("DB_PORT", 5432),
			Database:        getEnvString("DB_NAME", "nexusai"),
			User:            getEnvString("DB_USER", "postgres"),
			Password:        os.Getenv("DB_PASSWORD"),
			SSLMode:         getEnvString("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 1*time.Minute),
		},
		Redis: RedisConfig{
			Address:  os.Getenv("REDIS_ADDRESS"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		History: HistoryConfig{
			Enabled:      getEnvBool("HISTORY_ENABLED", true),
			BatchSize:    getEnvInt("HISTORY_BATCH_SIZE", 100),
			BatchTimeout: getEnvDuration("HISTORY_BATCH_TIMEOUT", 5*time.Second),
			MaxRetries:   getEnvInt("HISTORY_MAX_RETRIES", 3),
			RetryBackoff: getEnvDuration("HISTORY_RETRY_BACKOFF", 1*time.Second),
		},
		RateLimit: RateLimitConfig{
			RequestsPerWindow: getEnvInt("RATE_LIMIT_REQUESTS", 0),
			Window:            getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		AccessLog: AccessLogConfig{
			FileTemplate:  os.Getenv("ACCESS_LOG_FILE"),
			MaxSize:       int64(getEnvInt("ACCESS_LOG_MAX_SIZE", 10*1024*1024)),
			MaxFiles:      getEnvInt("ACCESS_LOG_MAX_FILES", 10),
			BufferSize:    getEnvInt("ACCESS_LOG_BUFFER", 1024),
			FlushInterval: getEnvDuration("ACCESS_LOG_FLUSH_INTERVAL", 5*time.Second),
		},
	}

	return cfg, nil
}
