package logger

// Output encodings.
const (
	EncodingJSON    = "json"
	EncodingConsole = "console"
)

// DefaultLevel applies when Level is empty.
const DefaultLevel = "info"

// Config is the `logging` section of the XPoster configuration.
type Config struct {
	Level string `env:"LOG_LEVEL" yaml:"level"`
	// Development switches to zap's development preset: no sampling and
	// stack traces from warn upwards.
	Development bool   `env:"LOG_DEVELOPMENT" yaml:"development"`
	Encoding    string `env:"LOG_ENCODING"    yaml:"encoding"`
	// OutputPaths accepts file paths and the special values stdout and stderr.
	OutputPaths []string `yaml:"output_paths"`
}

// SetDefaults fills empty fields.
func (c *Config) SetDefaults() {
	if c.Level == "" {
		c.Level = DefaultLevel
	}
	if c.Encoding != EncodingConsole {
		c.Encoding = EncodingJSON
	}
	if len(c.OutputPaths) == 0 {
		c.OutputPaths = []string{"stdout"}
	}
}
