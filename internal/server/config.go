package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/iwvelando/tvm-solver/internal/config"
	"github.com/iwvelando/tvm-solver/pkg/constants"
	"github.com/spf13/viper"
)

// serverEnvPrefix scopes environment overrides, e.g. TVM_SERVER_ADDRESS=:9090.
const serverEnvPrefix = "TVM_SERVER"

// Config holds the settings of the TVM API server: where it listens, how
// large an uploaded batch file may be, how it logs, and the rate solver
// defaults applied to requests that do not tune the solver themselves.
type Config struct {
	Address         string               `yaml:"address" mapstructure:"address"`
	MaxUploadSize   string               `yaml:"maxUploadSize" mapstructure:"maxUploadSize"`
	Logging         config.LoggingConfig `yaml:"logging" mapstructure:"logging"`
	Solver          config.SolverConfig  `yaml:"solver" mapstructure:"solver"`
	uploadSizeBytes int64
}

var sizeUnits = map[string]int64{
	"":   1,
	"B":  1,
	"K":  1 << 10,
	"KB": 1 << 10,
	"M":  1 << 20,
	"MB": 1 << 20,
	"G":  1 << 30,
	"GB": 1 << 30,
}

// LoadConfig reads the server configuration from a YAML file and applies
// TVM_SERVER_* environment overrides. An empty path or a missing file yields
// the defaults.
func LoadConfig(path string) (*Config, error) {
	v := newServerViper()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to parse server config: %w", err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read server config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode server config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func newServerViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(serverEnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("address", constants.DefaultServerAddress)
	v.SetDefault("maxUploadSize", strconv.FormatInt(constants.DefaultMaxUploadSizeBytes, 10))
	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("solver.guess", constants.DefaultRateGuess)
	v.SetDefault("solver.tolerance", constants.DefaultRateTolerance)
	v.SetDefault("solver.maxIterations", constants.DefaultRateMaxIterations)
	return v
}

// UploadSizeBytes returns the largest batch upload the server accepts.
func (c *Config) UploadSizeBytes() int64 {
	return c.uploadSizeBytes
}

// SetUploadSizeBytes overrides the upload limit; non-positive sizes are ignored.
func (c *Config) SetUploadSizeBytes(size int64) {
	if size > 0 {
		c.uploadSizeBytes = size
		c.MaxUploadSize = strconv.FormatInt(size, 10)
	}
}

func (c *Config) normalize() error {
	if c.Address == "" {
		c.Address = constants.DefaultServerAddress
	}

	if err := c.Solver.Validate(); err != nil {
		return fmt.Errorf("invalid server solver settings: %w", err)
	}

	size, err := ParseSize(c.MaxUploadSize)
	if err != nil {
		return err
	}
	if size <= 0 {
		size = constants.DefaultMaxUploadSizeBytes
	}
	c.uploadSizeBytes = size
	c.MaxUploadSize = strconv.FormatInt(size, 10)
	return nil
}

// ParseSize converts a byte count with an optional binary unit suffix
// ("256K", "10MB") into bytes. An empty value selects the default upload limit.
func ParseSize(value string) (int64, error) {
	upper := strings.ToUpper(strings.TrimSpace(value))
	if upper == "" {
		return constants.DefaultMaxUploadSizeBytes, nil
	}

	split := strings.LastIndexFunc(upper, unicode.IsDigit) + 1
	if split == 0 {
		return 0, fmt.Errorf("invalid size: %s", value)
	}

	n, err := strconv.ParseInt(strings.TrimSpace(upper[:split]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value %q: %w", value, err)
	}

	unit := strings.TrimSpace(upper[split:])
	multiplier, ok := sizeUnits[unit]
	if !ok {
		return 0, fmt.Errorf("unsupported size unit %q", unit)
	}

	if n > 0 && n > (1<<63-1)/multiplier {
		return 0, fmt.Errorf("size overflow for value %s", value)
	}
	return n * multiplier, nil
}
