// Package config loads permitd settings from PERMITD_* environment variables,
// optionally seeded from a .env file.
package config

import (
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"

	"github.com/feng001-8/work/mechanisms/evm"
)

// EnvPrefix is prepended to every variable name
const EnvPrefix = "permitd"

// LoggingConfig is read from PERMITD_LOG_*
type LoggingConfig struct {
	Level  string `envconfig:"LEVEL" default:"info"`
	Format string `envconfig:"FORMAT" default:"json"`
}

// Configuration holds everything the permitd commands need
type Configuration struct {
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080"`
	Logging         LoggingConfig `envconfig:"LOG"`
	RPCURL          string        `envconfig:"RPC_URL"`
	ChainID         string        `envconfig:"CHAIN_ID" default:"1"`
	RequestIDHeader string        `envconfig:"REQUEST_ID_HEADER" default:"X-Request-Id"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	chainID *big.Int
}

// Load reads filename (or ./.env when filename is empty and the file
// exists) into the environment, then processes PERMITD_* variables.
func Load(filename string) (*Configuration, error) {
	if err := loadEnvironment(filename); err != nil {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	config := new(Configuration)
	if err := envconfig.Process(EnvPrefix, config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func loadEnvironment(filename string) error {
	var err error
	if filename != "" {
		err = godotenv.Overload(filename)
	} else {
		err = godotenv.Load()
		// a missing .env is fine
		if os.IsNotExist(err) {
			return nil
		}
	}
	return err
}

// Validate checks the logging settings and resolves ChainID
func (c *Configuration) Validate() error {
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Logging.Level, err)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format %q: want json or console", c.Logging.Format)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive, got %s", c.ShutdownTimeout)
	}
	id, err := evm.GetEvmChainId(c.ChainID)
	if err != nil {
		return fmt.Errorf("invalid chain id: %w", err)
	}
	c.chainID = id
	return nil
}

// ChainIDInt returns the resolved chain ID. It is nil until Validate succeeds.
func (c *Configuration) ChainIDInt() *big.Int {
	if c.chainID == nil {
		return nil
	}
	return new(big.Int).Set(c.chainID)
}
