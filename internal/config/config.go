package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Config represents the application configuration.
type Config struct {
	App      AppConfig      `envPrefix:"APP_"`
	Engine   EngineConfig   `envPrefix:"ENGINE_"`
	Postgres PostgresConfig `envPrefix:"POSTGRES_"`
	Redis    RedisConfig    `envPrefix:"REDIS_"`
	Kafka    KafkaConfig    `envPrefix:"KAFKA_"`
}

type AppConfig struct {
	Name        string        `env:"NAME" envDefault:"artist-exchange"`
	Environment string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPAddr    string        `env:"HTTP_ADDR" envDefault:":8080"`
	GRPCAddr    string        `env:"GRPC_ADDR" envDefault:":9090"`
	LogLevel    string        `env:"LOG_LEVEL" envDefault:"info"`
	RateLimit   time.Duration `env:"RATE_LIMIT" envDefault:"100ms"`
	WSHeartbeat time.Duration `env:"WS_HEARTBEAT" envDefault:"30s"`
}

// EngineConfig tunes the matching engine and its side-effect dispatcher.
type EngineConfig struct {
	DispatchWorkers int           `env:"DISPATCH_WORKERS" envDefault:"4"`
	QueueSize       int           `env:"QUEUE_SIZE" envDefault:"4096"`
	MaxRetries      int           `env:"MAX_RETRIES" envDefault:"5"`
	RetryBackoff    time.Duration `env:"RETRY_BACKOFF" envDefault:"100ms"`
	DefaultDepth    int           `env:"DEFAULT_DEPTH" envDefault:"10"`
	TerminalMemory  int           `env:"TERMINAL_MEMORY" envDefault:"100000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

// PostgresConfig selects the durable store. An empty DSN keeps everything
// in memory.
type PostgresConfig struct {
	DSN     string `env:"DSN"`
	Migrate bool   `env:"MIGRATE" envDefault:"true"`
}

// RedisConfig enables the Redis notifier when Addr is set.
type RedisConfig struct {
	Addr     string        `env:"ADDR"`
	Password string        `env:"PASSWORD"`
	DB       int           `env:"DB" envDefault:"0"`
	TTL      time.Duration `env:"TTL" envDefault:"5m"`
}

// KafkaConfig enables the market-event producer when Brokers is set.
type KafkaConfig struct {
	Brokers []string `env:"BROKERS" envSeparator:","`
	Topic   string   `env:"TOPIC" envDefault:"market-events"`
}

func (c *Config) Development() bool { return c.App.Environment == "development" }

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Engine.DispatchWorkers <= 0 {
		return errors.New("ENGINE_DISPATCH_WORKERS must be > 0")
	}
	if c.Engine.QueueSize <= 0 {
		return errors.New("ENGINE_QUEUE_SIZE must be > 0")
	}
	if c.Engine.MaxRetries < 0 {
		return errors.New("ENGINE_MAX_RETRIES must be >= 0")
	}
	if c.Engine.DefaultDepth <= 0 {
		return errors.New("ENGINE_DEFAULT_DEPTH must be > 0")
	}
	return nil
}
