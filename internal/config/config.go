package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the application's configuration values.
// Tags like `envconfig:"HTTP_SERVER_PORT"` specify the environment variable name.
type Config struct {
	AppEnv     string `envconfig:"APP_ENV" default:"production"` // development switches to console logging
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`     // debug, info, warn, error
	HttpServer ServerConfig
	GrpcServer GrpcServerConfig
	DB         DBConfig
	Inventory  InventoryConfig
	Redis      RedisConfig
	RateLimit  RateLimitConfig
}

// ServerConfig holds HTTP server-specific configurations.
type ServerConfig struct {
	Port           string        `envconfig:"HTTP_SERVER_PORT" default:"8080"`
	TimeoutRead    time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_READ" default:"15s"`
	TimeoutWrite   time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_WRITE" default:"15s"`
	TimeoutIdle    time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_IDLE" default:"60s"`
	TimeoutRequest time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_REQUEST" default:"30s"`
}

// GrpcServerConfig holds the port of the gRPC health endpoint.
type GrpcServerConfig struct {
	Port string `envconfig:"GRPC_SERVER_PORT" default:"9090"`
}

// DBConfig holds database connection details. Driver is "mysql" or "postgres".
type DBConfig struct {
	Driver          string        `envconfig:"DB_DRIVER" default:"mysql"`
	Host            string        `envconfig:"DB_HOST" required:"true"`
	Port            string        `envconfig:"DB_PORT"` // defaults per driver
	User            string        `envconfig:"DB_USER" required:"true"`
	Password        string        `envconfig:"DB_PASSWORD"`
	Name            string        `envconfig:"DB_NAME" required:"true"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"25"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
	AutoMigrate     bool          `envconfig:"DB_AUTO_MIGRATE" default:"true"`
}

// InventoryConfig holds the business settings of the inventory and report services.
type InventoryConfig struct {
	LowStockThreshold   int    `envconfig:"LOW_STOCK_THRESHOLD" default:"10"`
	OrphanedOrderPolicy string `envconfig:"ORPHANED_ORDER_POLICY" default:"skip"` // skip or fail
	SalesIDPrefix       string `envconfig:"SALES_ID_PREFIX" default:"SO-"`
}

// RedisConfig is optional; an empty address disables rate limiting.
type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

type RateLimitConfig struct {
	Requests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"60"`
	Window   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
}

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// DSN constructs the data source name for the configured driver.
func (dc *DBConfig) DSN() string {
	if dc.Driver == DriverPostgres {
		// Example: "host=localhost port=5432 user=user password=password dbname=mydb sslmode=disable"
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			dc.Host, dc.port(), dc.User, dc.Password, dc.Name)
	}

	mc := mysql.NewConfig()
	mc.User = dc.User
	mc.Passwd = dc.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(dc.Host, dc.port())
	mc.DBName = dc.Name
	mc.ParseTime = true
	mc.Loc = time.UTC
	return mc.FormatDSN()
}

func (dc *DBConfig) port() string {
	switch {
	case dc.Port != "":
		return dc.Port
	case dc.Driver == DriverPostgres:
		return "5432"
	default:
		return "3306"
	}
}

// Load reads the configuration from environment variables and validates the enum fields.
// It should be called once during application startup.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration: %w", err)
	}

	cfg.DB.Driver = strings.ToLower(cfg.DB.Driver)
	if cfg.DB.Driver != DriverMySQL && cfg.DB.Driver != DriverPostgres {
		return nil, fmt.Errorf("invalid DB_DRIVER %q: use mysql or postgres", cfg.DB.Driver)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if !logLevels[cfg.LogLevel] {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q", cfg.LogLevel)
	}
	switch cfg.Inventory.OrphanedOrderPolicy {
	case "skip", "fail":
	default:
		return nil, fmt.Errorf("invalid ORPHANED_ORDER_POLICY %q: use skip or fail", cfg.Inventory.OrphanedOrderPolicy)
	}
	if cfg.Inventory.LowStockThreshold < 0 {
		return nil, fmt.Errorf("invalid LOW_STOCK_THRESHOLD %d: must not be negative", cfg.Inventory.LowStockThreshold)
	}

	return &cfg, nil
}
