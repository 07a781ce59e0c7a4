package store

import (
	"time"

	"hellomama/internal/platform/config"
)

// Config aggregates per backend configuration
type Config struct {
	AppName string
	Role    string

	PG PGConfig
	CH CHConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	ConnectRetries   int           // default 20
	PingTimeout      time.Duration // default 3s
	StatementTimeout time.Duration
}

// CHConfig configures clickhouse connectivity
type CHConfig struct {
	Enabled bool
	URL     string
}

// FromConf reads SERVICE_PGSQL_* and SERVICE_CLICKHOUSE_* from the given root view
func FromConf(c config.Conf, role string) Config {
	pgc := c.Prefix("SERVICE_PGSQL_")
	chc := c.Prefix("SERVICE_CLICKHOUSE_")
	return Config{
		AppName: c.MayString("APP_NAME", "hellomama"),
		Role:    role,
		PG: PGConfig{
			Enabled:          pgc.MayBool("ENABLED", true),
			URL:              pgc.MayString("DBURL", ""),
			MaxConns:         int32(pgc.MayInt("MAX_CONNS", 10)),
			LogSQL:           pgc.MayBool("LOG_SQL", false),
			SlowQueryMs:      pgc.MayInt("SLOW_MS", 250),
			ConnectRetries:   pgc.MayInt("CONNECT_RETRIES", 20),
			PingTimeout:      pgc.MayDuration("PING_TIMEOUT", 3*time.Second),
			StatementTimeout: pgc.MayDuration("STATEMENT_TIMEOUT", 0),
		},
		CH: CHConfig{
			Enabled: chc.MayBool("ENABLED", false),
			URL:     chc.MayString("DBURL", ""),
		},
	}
}
