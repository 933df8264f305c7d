package config

import (
	"errors"
	"fmt"
)

var ErrInvalidConfig = errors.New("invalid configuration")

func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency must be at least 1, got %d", ErrInvalidConfig, cfg.Concurrency)
	}
	if cfg.BatchSize < 1 || cfg.BatchSize > 1000 {
		return fmt.Errorf("%w: batch_size must be between 1 and 1000, got %d", ErrInvalidConfig, cfg.BatchSize)
	}
	if cfg.Retry.MaxAttempts < 1 {
		return fmt.Errorf("%w: retry.max_attempts must be at least 1, got %d", ErrInvalidConfig, cfg.Retry.MaxAttempts)
	}
	if cfg.Retry.BaseDelay < 0 || cfg.Retry.MaxDelay < 0 {
		return fmt.Errorf("%w: retry delays must not be negative", ErrInvalidConfig)
	}
	if cfg.Retry.MaxDelay > 0 && cfg.Retry.BaseDelay > cfg.Retry.MaxDelay {
		return fmt.Errorf("%w: retry.base_delay %s exceeds retry.max_delay %s", ErrInvalidConfig, cfg.Retry.BaseDelay, cfg.Retry.MaxDelay)
	}
	if (cfg.S3.AccessKey == "") != (cfg.S3.SecretKey == "") {
		return fmt.Errorf("%w: s3.access_key and s3.secret_key must be set together", ErrInvalidConfig)
	}
	return nil
}
