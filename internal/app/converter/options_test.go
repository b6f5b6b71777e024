package converter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/heartmarshall/pinyin-dict/internal/config"
	"github.com/heartmarshall/pinyin-dict/internal/dictfile"
	"github.com/heartmarshall/pinyin-dict/internal/domain"
)

func TestOptionsFromConfig(t *testing.T) {
	cfg := &config.Config{
		Converter: config.ConverterConfig{
			InputPath:      "in.dict",
			OutputPath:     "out.dict.yaml",
			Mode:           " Greedy ",
			FallbackGreedy: true,
			MaxInputLen:    32,
			BatchSize:      100,
			Workers:        8,
			DryRun:         true,
			TraceMappings:  true,
		},
		Output:  config.OutputConfig{Name: "luna", Version: "1.2", Sort: "original"},
		Metrics: config.MetricsConfig{Path: "/var/lib/node_exporter/converter.prom"},
	}

	assert.Equal(t, Options{
		InputPath:      "in.dict",
		OutputPath:     "out.dict.yaml",
		Mode:           domain.ModeGreedy,
		FallbackGreedy: true,
		MaxInputLen:    32,
		BatchSize:      100,
		Workers:        8,
		DryRun:         true,
		TraceMappings:  true,
		Header:         dictfile.Header{Name: "luna", Version: "1.2", Sort: "original"},
		MetricsPath:    "/var/lib/node_exporter/converter.prom",
	}, OptionsFromConfig(cfg))
}

func TestOptions_Defaults(t *testing.T) {
	var o Options
	assert.Equal(t, 500, o.batchSize())
	assert.Equal(t, 1, o.workers())
	assert.Equal(t, domain.ModeExact, o.mode())
}
