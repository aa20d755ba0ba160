package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"qcloud/internal/domain"
)

// File is the on-disk shape of the configuration. It is also the target
// viper decodes into before normalization.
type File struct {
	APIBase                 string      `mapstructure:"apiBase" yaml:"apiBase" toml:"apiBase" json:"apiBase"`
	APIKey                  string      `mapstructure:"apiKey" yaml:"apiKey,omitempty" toml:"apiKey,omitempty" json:"apiKey,omitempty"`
	APIKeyEnv               string      `mapstructure:"apiKeyEnv" yaml:"apiKeyEnv" toml:"apiKeyEnv" json:"apiKeyEnv"`
	Verbose                 bool        `mapstructure:"verbose" yaml:"verbose" toml:"verbose" json:"verbose"`
	PollIntervalMillis      int         `mapstructure:"pollIntervalMillis" yaml:"pollIntervalMillis" toml:"pollIntervalMillis" json:"pollIntervalMillis"`
	BatchPollIntervalMillis int         `mapstructure:"batchPollIntervalMillis" yaml:"batchPollIntervalMillis" toml:"batchPollIntervalMillis" json:"batchPollIntervalMillis"`
	PollTimeoutSeconds      int         `mapstructure:"pollTimeoutSeconds" yaml:"pollTimeoutSeconds" toml:"pollTimeoutSeconds" json:"pollTimeoutSeconds"`
	RequestTimeoutSeconds   int         `mapstructure:"requestTimeoutSeconds" yaml:"requestTimeoutSeconds" toml:"requestTimeoutSeconds" json:"requestTimeoutSeconds"`
	TaskStorePath           string      `mapstructure:"taskStorePath" yaml:"taskStorePath,omitempty" toml:"taskStorePath,omitempty" json:"taskStorePath,omitempty"`
	Log                     FileLog     `mapstructure:"log" yaml:"log" toml:"log" json:"log"`
	Noise                   FileNoise   `mapstructure:"noise" yaml:"noise" toml:"noise" json:"noise"`
	Metrics                 FileMetrics `mapstructure:"metrics" yaml:"metrics" toml:"metrics" json:"metrics"`
}

type FileLog struct {
	Level string `mapstructure:"level" yaml:"level" toml:"level" json:"level"`
}

type FileNoise struct {
	Model      string    `mapstructure:"model" yaml:"model" toml:"model" json:"model"`
	SingleGate []float64 `mapstructure:"singleGate" yaml:"singleGate" toml:"singleGate" json:"singleGate"`
	DoubleGate []float64 `mapstructure:"doubleGate" yaml:"doubleGate" toml:"doubleGate" json:"doubleGate"`
}

type FileMetrics struct {
	Textfile string `mapstructure:"textfile" yaml:"textfile" toml:"textfile" json:"textfile"`
}

// DefaultFile returns the configuration written by `config init`.
func DefaultFile() File {
	return File{
		APIBase:                 domain.DefaultAPIBase,
		APIKeyEnv:               DefaultAPIKeyEnv,
		PollIntervalMillis:      int(domain.DefaultPollInterval.Milliseconds()),
		BatchPollIntervalMillis: int(domain.DefaultBatchPollInterval.Milliseconds()),
		RequestTimeoutSeconds:   domain.DefaultRequestTimeoutSeconds,
		Log:                     FileLog{Level: DefaultLogLevel},
		Noise:                   FileNoise{SingleGate: []float64{}, DoubleGate: []float64{}},
	}
}

type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	default:
		return "", domain.Configf("config.ParseFormat", "unsupported config format %q", raw)
	}
}

// Write encodes f in the requested format.
func Write(w io.Writer, f File, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return fmt.Errorf("encode yaml config: %w", err)
		}
		return enc.Close()
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(f); err != nil {
			return fmt.Errorf("encode toml config: %w", err)
		}
		return nil
	default:
		return domain.Configf("config.Write", "unsupported config format %q", format)
	}
}
