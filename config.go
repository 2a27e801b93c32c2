package stdio

import (
	"fmt"
	"os"

	"github.com/gobeaver/beaver-kit/config"
	"gopkg.in/yaml.v3"
)

// Config tunes buffer sizing and text conventions of a [Registry].
type Config struct {
	// Buffer size used when the backend reports no preferred block size.
	BufferSize int `env:"STDIO_BUFSIZ,default:1024" yaml:"buffer_size"`

	// Largest single backend write issued by an unbuffered stream.
	WriteChunk int `env:"STDIO_WRITE_CHUNK,default:1024" yaml:"write_chunk"`

	// Number of stream slots added each time the registry grows.
	RegistryChunk int `env:"STDIO_REGISTRY_CHUNK,default:10" yaml:"registry_chunk"`

	// Digit group separator inserted by the ' printf flag. Empty disables grouping.
	ThousandsSep string `env:"STDIO_THOUSANDS_SEP" yaml:"thousands_sep"`

	// Radix character for floating point conversions.
	DecimalPoint string `env:"STDIO_DECIMAL_POINT,default:." yaml:"decimal_point"`
}

// DefaultConfig returns the configuration of the C locale with BUFSIZ buffers.
func DefaultConfig() Config {
	return Config{
		BufferSize:    1024,
		WriteChunk:    1024,
		RegistryChunk: 10,
		DecimalPoint:  ".",
	}
}

// LoadConfig returns config loaded from environment.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	if err := config.Load(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// LoadConfigFile reads a YAML config file. Fields absent from the file keep
// their defaults.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: config %s: %v", ErrInvalidArgument, path, err)
	}
	return cfg, cfg.Validate()
}

// Validate reports whether every size is usable.
func (c Config) Validate() error {
	switch {
	case c.BufferSize <= 0:
		return fmt.Errorf("%w: buffer size %d", ErrInvalidArgument, c.BufferSize)
	case c.WriteChunk <= 0:
		return fmt.Errorf("%w: write chunk %d", ErrInvalidArgument, c.WriteChunk)
	case c.RegistryChunk <= 0:
		return fmt.Errorf("%w: registry chunk %d", ErrInvalidArgument, c.RegistryChunk)
	case c.DecimalPoint == "":
		return fmt.Errorf("%w: empty decimal point", ErrInvalidArgument)
	}
	return nil
}
