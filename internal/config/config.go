package config

import "time"

// Config is the root converter configuration.
type Config struct {
	Converter ConverterConfig `yaml:"converter"`
	Output    OutputConfig    `yaml:"output"`
	Database  DatabaseConfig  `yaml:"database"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Log       LogConfig       `yaml:"log"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ConverterConfig holds pipeline settings.
type ConverterConfig struct {
	InputPath      string `yaml:"input_path"       env:"CONVERTER_INPUT_PATH"       env-default:"./pinyin_mergin.dict.yaml"`
	OutputPath     string `yaml:"output_path"      env:"CONVERTER_OUTPUT_PATH"      env-default:"./pinyin_simp.dict.yaml"`
	Mode           string `yaml:"mode"             env:"CONVERTER_MODE"             env-default:"exact"`
	FallbackGreedy bool   `yaml:"fallback_greedy"  env:"CONVERTER_FALLBACK_GREEDY"  env-default:"false"`
	MaxInputLen    int    `yaml:"max_input_len"    env:"CONVERTER_MAX_INPUT_LEN"    env-default:"64"`
	BatchSize      int    `yaml:"batch_size"       env:"CONVERTER_BATCH_SIZE"       env-default:"500"`
	Workers        int    `yaml:"workers"          env:"CONVERTER_WORKERS"          env-default:"4"`
	DryRun         bool   `yaml:"dry_run"          env:"CONVERTER_DRY_RUN"`
	TraceMappings  bool   `yaml:"trace_mappings"   env:"CONVERTER_TRACE_MAPPINGS"`
}

// OutputConfig holds the Rime dictionary header fields.
type OutputConfig struct {
	Name    string `yaml:"name"    env:"OUTPUT_NAME"    env-default:"pinyin_simp"`
	Version string `yaml:"version" env:"OUTPUT_VERSION" env-default:"0.1"`
	Sort    string `yaml:"sort"    env:"OUTPUT_SORT"    env-default:"by_weight"`
}

// DatabaseConfig holds PostgreSQL sink settings. The sink is disabled when
// DSN is empty.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"10"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"1"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	Migrate         bool          `yaml:"migrate"            env:"DATABASE_MIGRATE"`
}

// Enabled reports whether the PostgreSQL sink is configured.
func (c DatabaseConfig) Enabled() bool {
	return c.DSN != ""
}

// KafkaConfig holds Kafka sink settings.
type KafkaConfig struct {
	Enabled      bool          `yaml:"enabled"       env:"KAFKA_ENABLED"`
	BrokersRaw   string        `yaml:"brokers"       env:"KAFKA_BROKERS"`
	Topic        string        `yaml:"topic"         env:"KAFKA_TOPIC"         env-default:"pinyin.syllabifications"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"KAFKA_WRITE_TIMEOUT" env-default:"10s"`

	// Brokers is parsed from BrokersRaw during validation.
	Brokers []string `yaml:"-" env:"-"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

// MetricsConfig holds the Prometheus textfile output. Empty Path disables it.
type MetricsConfig struct {
	Path string `yaml:"path" env:"METRICS_PATH"`
}
