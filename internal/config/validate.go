package config

import (
	"fmt"
	"strings"

	"github.com/heartmarshall/pinyin-dict/internal/domain"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.Converter.validate(); err != nil {
		return fmt.Errorf("converter: %w", err)
	}
	if err := c.Kafka.validate(); err != nil {
		return fmt.Errorf("kafka: %w", err)
	}
	return nil
}

// ParsedMode returns the converter mode. Valid after Validate.
func (c ConverterConfig) ParsedMode() domain.Mode {
	return domain.Mode(strings.ToLower(strings.TrimSpace(c.Mode)))
}

func (c *ConverterConfig) validate() error {
	if _, err := domain.ParseMode(c.Mode); err != nil {
		return err
	}
	if c.InputPath == "" {
		return fmt.Errorf("input_path is required")
	}
	if c.OutputPath == "" && !c.DryRun {
		return fmt.Errorf("output_path is required unless dry_run is set")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be > 0 (got %d)", c.BatchSize)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be > 0 (got %d)", c.Workers)
	}
	if c.MaxInputLen <= 0 {
		return fmt.Errorf("max_input_len must be > 0 (got %d)", c.MaxInputLen)
	}
	return nil
}

func (k *KafkaConfig) validate() error {
	k.Brokers = ParseList(k.BrokersRaw)
	if !k.Enabled {
		return nil
	}
	if len(k.Brokers) == 0 {
		return fmt.Errorf("brokers are required when kafka is enabled")
	}
	if k.Topic == "" {
		return fmt.Errorf("topic is required when kafka is enabled")
	}
	return nil
}

// ParseList splits a comma-separated string into trimmed non-empty items.
// An empty string returns a nil slice.
func ParseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
