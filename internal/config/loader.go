package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const envPrefix = "S3UTIL"

// Load reads the optional config file and applies S3UTIL_* environment
// overrides on top. A missing file is not an error; defaults apply.
func Load() (*Config, error) {
	path := ResolveConfigPath()
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	fileUsed := false
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		fileUsed = true
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	cfg, err := Unmarshal(v)
	if err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}

	if fileUsed && cfg.S3.AccessKey != "" {
		warnLoosePermissions(path)
	}
	return cfg, nil
}

// Defaults are registered per key so environment overrides reach Unmarshal
// even when no config file exists.
func setDefaults(v *viper.Viper) {
	v.SetDefault("concurrency", 4)
	v.SetDefault("batch_size", 1000)
	v.SetDefault("retry.max_attempts", 5)
	v.SetDefault("retry.base_delay", "200ms")
	v.SetDefault("retry.max_delay", "10s")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.region", "")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")
	v.SetDefault("s3.path_style", false)
	v.SetDefault("s3.insecure_skip_verify", false)
}

func warnLoosePermissions(path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	mode := info.Mode().Perm()
	if mode&0077 != 0 {
		log.Warn().
			Str("path", path).
			Stringer("mode", mode).
			Msg("config file holds credentials but is readable by others (recommended: 0600)")
	}
}
