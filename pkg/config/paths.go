package config

import (
	"path/filepath"

	"github.com/spf13/viper"
)

const defaultSettingsDir = "./.menudata"

func BaseSettingsDir() string {
	// Check if config.path is explicitly set (for testing)
	if configPath := viper.GetString("config.path"); configPath != "" {
		return configPath
	}

	currentConfig := viper.ConfigFileUsed()
	if currentConfig == "" {
		return defaultSettingsDir
	}
	return filepath.Dir(currentConfig)
}

// ResolvePath anchors relative paths at the settings directory
func ResolvePath(target string) string {
	if filepath.IsAbs(target) {
		return target
	}
	return filepath.Join(BaseSettingsDir(), filepath.Base(target))
}
