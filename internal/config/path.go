package config

import (
	"os"
	"path/filepath"
)

const (
	DefaultConfigDir  = "/etc/s3util"
	DefaultConfigName = "config.yaml"
)

const EnvConfigPath = "S3UTIL_CONFIG"

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir, DefaultConfigName)
}

func ResolveConfigPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return DefaultConfigPath()
}
