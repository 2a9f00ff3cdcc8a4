package log

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config describes a logger as it may be provided by a yaml file
//
//	level: info
//	format: json
//	filter: "info+:* debug+:analysis"
type Config struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or text
	Filter string `yaml:"filter"` // zapfilter rules
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(data)
}

func ParseConfig(data []byte) (*Config, error) {
	cfg := &Config{Level: "info", Format: "json"}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid log config: %w", err)
	}
	return cfg, nil
}

// Build creates a logger from the config. Unknown levels fall back to info.
func (c *Config) Build(w io.Writer, opts ...Option) (*Logger, error) {
	level, err := ParseLevel(c.Level)
	if err != nil {
		level = InfoLevel
	}
	if c.Filter != "" {
		filterOpt, err := WithFilter(c.Filter)
		if err != nil {
			return nil, err
		}
		opts = append(opts, filterOpt)
	}
	switch c.Format {
	case "json", "":
		return New(w, level, opts...), nil
	case "text":
		return DevLogger(w, level, opts...), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", c.Format)
	}
}
