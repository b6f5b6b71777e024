package converter

import (
	"github.com/heartmarshall/pinyin-dict/internal/config"
	"github.com/heartmarshall/pinyin-dict/internal/dictfile"
	"github.com/heartmarshall/pinyin-dict/internal/domain"
)

// Options holds pipeline settings.
type Options struct {
	InputPath      string
	OutputPath     string
	Mode           domain.Mode
	FallbackGreedy bool
	MaxInputLen    int
	BatchSize      int
	Workers        int
	DryRun         bool
	TraceMappings  bool
	Header         dictfile.Header
	MetricsPath    string
}

// OptionsFromConfig maps a validated Config onto pipeline options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		InputPath:      cfg.Converter.InputPath,
		OutputPath:     cfg.Converter.OutputPath,
		Mode:           cfg.Converter.ParsedMode(),
		FallbackGreedy: cfg.Converter.FallbackGreedy,
		MaxInputLen:    cfg.Converter.MaxInputLen,
		BatchSize:      cfg.Converter.BatchSize,
		Workers:        cfg.Converter.Workers,
		DryRun:         cfg.Converter.DryRun,
		TraceMappings:  cfg.Converter.TraceMappings,
		Header: dictfile.Header{
			Name:    cfg.Output.Name,
			Version: cfg.Output.Version,
			Sort:    cfg.Output.Sort,
		},
		MetricsPath: cfg.Metrics.Path,
	}
}

func (o Options) batchSize() int {
	if o.BatchSize <= 0 {
		return 500
	}
	return o.BatchSize
}

func (o Options) workers() int {
	if o.Workers <= 0 {
		return 1
	}
	return o.Workers
}

func (o Options) mode() domain.Mode {
	if !o.Mode.IsValid() {
		return domain.ModeExact
	}
	return o.Mode
}
