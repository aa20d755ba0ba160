package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"qcloud/internal/domain"
)

const (
	EnvPrefix        = "QCLOUD"
	DefaultAPIKeyEnv = "QCLOUD_API_KEY"
	DefaultLogLevel  = "info"
)

// Config is the normalized client configuration.
type Config struct {
	APIBase           string
	APIKey            string
	Verbose           bool
	PollInterval      time.Duration
	BatchPollInterval time.Duration
	// PollTimeout of zero waits until the caller's context ends.
	PollTimeout     time.Duration
	RequestTimeout  time.Duration
	TaskStorePath   string
	LogLevel        zapcore.Level
	Noise           domain.NoiseConfig
	MetricsTextfile string
	// Source is the file the values were read from, empty for defaults only.
	Source string
}

type Loader struct {
	logger *zap.Logger
}

func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		return &Loader{logger: zap.NewNop()}
	}
	return &Loader{logger: logger.Named("config")}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	def := DefaultFile()
	v.SetDefault("apiBase", def.APIBase)
	v.SetDefault("apiKey", "")
	v.SetDefault("apiKeyEnv", def.APIKeyEnv)
	v.SetDefault("verbose", false)
	v.SetDefault("pollIntervalMillis", def.PollIntervalMillis)
	v.SetDefault("batchPollIntervalMillis", def.BatchPollIntervalMillis)
	v.SetDefault("pollTimeoutSeconds", 0)
	v.SetDefault("requestTimeoutSeconds", def.RequestTimeoutSeconds)
	v.SetDefault("taskStorePath", "")
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("noise.model", "")
	v.SetDefault("noise.singleGate", []float64{})
	v.SetDefault("noise.doubleGate", []float64{})
	v.SetDefault("metrics.textfile", "")
}

// Load reads path (YAML or TOML by extension) layered over defaults and
// QCLOUD_ environment variables. An empty path loads defaults and env only.
func (l *Loader) Load(ctx context.Context, path string) (Config, error) {
	v := newViper()
	path = strings.TrimSpace(path)
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, domain.E(domain.CodeConfiguration, "config.Load", fmt.Sprintf("read config %s", path), err)
		}
	}
	if err := ctx.Err(); err != nil {
		return Config{}, err
	}

	var raw File
	if err := v.Unmarshal(&raw); err != nil {
		return Config{}, domain.E(domain.CodeConfiguration, "config.Load", "decode config", err)
	}
	cfg, errs := Normalize(raw)
	if len(errs) > 0 {
		return Config{}, domain.E(domain.CodeConfiguration, "config.Load", strings.Join(errs, "; "), domain.ErrInvalidParameter)
	}
	cfg.Source = path
	if cfg.APIKey == "" {
		l.logger.Warn("no api key configured", zap.String("apiKeyEnv", raw.APIKeyEnv))
	}
	return cfg, nil
}

// Normalize validates raw and converts it into a Config. All problems are
// reported together.
func Normalize(raw File) (Config, []string) {
	var errs []string
	cfg := Config{
		APIBase:         strings.TrimRight(strings.TrimSpace(raw.APIBase), "/"),
		APIKey:          strings.TrimSpace(raw.APIKey),
		Verbose:         raw.Verbose,
		TaskStorePath:   strings.TrimSpace(raw.TaskStorePath),
		MetricsTextfile: strings.TrimSpace(raw.Metrics.Textfile),
	}
	if cfg.APIBase == "" {
		errs = append(errs, "apiBase is required")
	}
	if cfg.APIKey == "" && strings.TrimSpace(raw.APIKeyEnv) != "" {
		cfg.APIKey = strings.TrimSpace(os.Getenv(strings.TrimSpace(raw.APIKeyEnv)))
	}

	if raw.PollIntervalMillis <= 0 {
		errs = append(errs, fmt.Sprintf("pollIntervalMillis must be positive, got %d", raw.PollIntervalMillis))
	}
	if raw.BatchPollIntervalMillis <= 0 {
		errs = append(errs, fmt.Sprintf("batchPollIntervalMillis must be positive, got %d", raw.BatchPollIntervalMillis))
	}
	if raw.PollTimeoutSeconds < 0 {
		errs = append(errs, fmt.Sprintf("pollTimeoutSeconds must not be negative, got %d", raw.PollTimeoutSeconds))
	}
	if raw.RequestTimeoutSeconds <= 0 {
		errs = append(errs, fmt.Sprintf("requestTimeoutSeconds must be positive, got %d", raw.RequestTimeoutSeconds))
	}
	cfg.PollInterval = time.Duration(raw.PollIntervalMillis) * time.Millisecond
	cfg.BatchPollInterval = time.Duration(raw.BatchPollIntervalMillis) * time.Millisecond
	cfg.PollTimeout = time.Duration(raw.PollTimeoutSeconds) * time.Second
	cfg.RequestTimeout = time.Duration(raw.RequestTimeoutSeconds) * time.Second

	level := strings.TrimSpace(raw.Log.Level)
	if level == "" {
		level = DefaultLogLevel
	}
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		errs = append(errs, fmt.Sprintf("log.level: %v", err))
	}
	cfg.LogLevel = parsed

	if model := strings.TrimSpace(raw.Noise.Model); model != "" {
		noise, err := normalizeNoise(model, raw.Noise)
		if err != nil {
			errs = append(errs, fmt.Sprintf("noise: %v", err))
		}
		cfg.Noise = noise
	}
	return cfg, errs
}

func normalizeNoise(model string, raw FileNoise) (domain.NoiseConfig, error) {
	parsed, err := domain.ParseNoiseModel(model)
	if err != nil {
		return domain.NoiseConfig{}, err
	}
	noise, err := domain.NewNoiseConfig(parsed, raw.SingleGate, raw.DoubleGate)
	if err != nil {
		var de *domain.Error
		if errors.As(err, &de) && de.Message != "" {
			return domain.NoiseConfig{}, errors.New(de.Message)
		}
		return domain.NoiseConfig{}, err
	}
	return noise, nil
}

// File converts cfg back into its on-disk shape. The api key is masked
// unless reveal is set.
func (c Config) File(reveal bool) File {
	f := File{
		APIBase:                 c.APIBase,
		Verbose:                 c.Verbose,
		PollIntervalMillis:      int(c.PollInterval.Milliseconds()),
		BatchPollIntervalMillis: int(c.BatchPollInterval.Milliseconds()),
		PollTimeoutSeconds:      int(c.PollTimeout / time.Second),
		RequestTimeoutSeconds:   int(c.RequestTimeout / time.Second),
		TaskStorePath:           c.TaskStorePath,
		Log:                     FileLog{Level: c.LogLevel.String()},
		Noise:                   FileNoise{SingleGate: []float64{}, DoubleGate: []float64{}},
		Metrics:                 FileMetrics{Textfile: c.MetricsTextfile},
	}
	switch {
	case c.APIKey == "":
	case reveal:
		f.APIKey = c.APIKey
	default:
		f.APIKey = maskSecret(c.APIKey)
	}
	if c.Noise.Configured() {
		f.Noise = FileNoise{
			Model:      string(c.Noise.Model),
			SingleGate: noiseParams(c.Noise, true),
			DoubleGate: noiseParams(c.Noise, false),
		}
	}
	return f
}

func noiseParams(n domain.NoiseConfig, single bool) []float64 {
	if single {
		out := []float64{n.SingleGateParam}
		if n.Decoherence() {
			out = append(out, n.SingleP2, n.SinglePGate)
		}
		return out
	}
	out := []float64{n.DoubleGateParam}
	if n.Decoherence() {
		out = append(out, n.DoubleP2, n.DoublePGate)
	}
	return out
}

func maskSecret(value string) string {
	if len(value) <= 4 {
		return "****"
	}
	return value[:2] + strings.Repeat("*", len(value)-4) + value[len(value)-2:]
}
