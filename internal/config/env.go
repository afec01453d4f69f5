package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Env carries process settings that do not belong in a pipeline file:
// credentials and metrics endpoints. Values come from the environment,
// optionally seeded from a .env file in the working directory.
type Env struct {
	Job            string
	SinkDSN        string
	MetricsBackend string
	PushgatewayURL string
	DogStatsDAddr  string
	Workers        int
	BatchSize      int
}

// LoadEnv reads .env (if present) and the process environment.
func LoadEnv() Env {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	return Env{
		Job:            getEnv("PATTIDSV_JOB", "pattidsv"),
		SinkDSN:        getEnv("PATTIDSV_SINK_DSN", ""),
		MetricsBackend: getEnv("METRICS_BACKEND", "none"),
		PushgatewayURL: getEnv("PUSHGATEWAY_URL", "http://localhost:9091"),
		DogStatsDAddr:  getEnv("DOGSTATSD_ADDR", "127.0.0.1:8125"),
		Workers:        getEnvInt("PATTIDSV_WORKERS", 0),
		BatchSize:      getEnvInt("PATTIDSV_BATCH_SIZE", 0),
	}
}

// Apply fills runtime settings the pipeline file left at zero and lets
// PATTIDSV_SINK_DSN replace the configured DSN.
func (e Env) Apply(c *Config) {
	if c.Runtime.Workers == 0 {
		c.Runtime.Workers = e.Workers
	}
	if c.Runtime.BatchSize == 0 {
		c.Runtime.BatchSize = e.BatchSize
	}
	if e.SinkDSN != "" {
		if c.Sink.Options == nil {
			c.Sink.Options = Options{}
		}
		c.Sink.Options["dsn"] = e.SinkDSN
	}
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
