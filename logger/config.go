package logger

import "fmt"

// Config contains logging configuration.
type Config struct {
	Level     string `yaml:"level" mapstructure:"level" env:"LOG_LEVEL" envDefault:"info"`
	Format    string `yaml:"format" mapstructure:"format" env:"LOG_FORMAT" envDefault:"console"`
	Output    string `yaml:"output" mapstructure:"output" env:"LOG_OUTPUT" envDefault:"stdout"`
	NoColor   bool   `yaml:"no_color" mapstructure:"no_color" env:"LOG_NO_COLOR" envDefault:"false"`
	Timestamp bool   `yaml:"timestamp" mapstructure:"timestamp" env:"LOG_TIMESTAMP" envDefault:"true"`
	Caller    bool   `yaml:"caller" mapstructure:"caller" env:"LOG_CALLER" envDefault:"false"`

	// ServiceName tags console output; filled from the service config when empty.
	ServiceName string `yaml:"service_name" mapstructure:"service_name" env:"LOG_SERVICE_NAME"`
}

// ApplyDefaults applies default values to logging configuration.
func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "console"
	}
	if c.Output == "" {
		c.Output = "stdout"
	}
	c.Timestamp = true
}

// Validate validates logging configuration.
func (c *Config) Validate() error {
	validLevels := []string{"trace", "debug", "info", "warn", "error", "fatal", "disabled"}
	if !contains(validLevels, c.Level) {
		return fmt.Errorf("logging.level must be one of %v (got: %s)", validLevels, c.Level)
	}
	validFormats := []string{"json", "console", "pretty"}
	if !contains(validFormats, c.Format) {
		return fmt.Errorf("logging.format must be one of %v (got: %s)", validFormats, c.Format)
	}
	validOutputs := []string{"stdout", "stderr"}
	if !contains(validOutputs, c.Output) {
		return fmt.Errorf("logging.output must be one of %v (got: %s)", validOutputs, c.Output)
	}
	return nil
}

func contains(slice []string, val string) bool {
	for _, s := range slice {
		if s == val {
			return true
		}
	}
	return false
}
