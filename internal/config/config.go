package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	S3          S3Config    `mapstructure:"s3" yaml:"s3"`
	Concurrency int         `mapstructure:"concurrency" yaml:"concurrency"`
	BatchSize   int         `mapstructure:"batch_size" yaml:"batch_size"`
	Retry       RetryConfig `mapstructure:"retry" yaml:"retry"`
}

// S3Config only matters for S3-compatible endpoints or static keys; on AWS
// the default credential chain covers everything and all fields may stay empty.
type S3Config struct {
	Endpoint           string `mapstructure:"endpoint" yaml:"endpoint"`
	Region             string `mapstructure:"region" yaml:"region"`
	AccessKey          string `mapstructure:"access_key" yaml:"access_key"`
	SecretKey          string `mapstructure:"secret_key" yaml:"secret_key"`
	PathStyle          bool   `mapstructure:"path_style" yaml:"path_style"`
	InsecureSkipVerify bool   `mapstructure:"insecure_skip_verify" yaml:"insecure_skip_verify"`
}

type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts" yaml:"max_attempts"`
	BaseDelay   time.Duration `mapstructure:"base_delay" yaml:"base_delay"`
	MaxDelay    time.Duration `mapstructure:"max_delay" yaml:"max_delay"`
}

// MarshalYAML writes the delays as duration strings ("200ms") instead of
// nanosecond integers so a generated file stays editable.
func (r RetryConfig) MarshalYAML() (interface{}, error) {
	return struct {
		MaxAttempts int    `yaml:"max_attempts"`
		BaseDelay   string `yaml:"base_delay"`
		MaxDelay    string `yaml:"max_delay"`
	}{r.MaxAttempts, r.BaseDelay.String(), r.MaxDelay.String()}, nil
}

func Default() *Config {
	return &Config{
		Concurrency: 4,
		BatchSize:   1000,
		Retry: RetryConfig{
			MaxAttempts: 5,
			BaseDelay:   200 * time.Millisecond,
			MaxDelay:    10 * time.Second,
		},
	}
}

func Unmarshal(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	return &c, nil
}
