package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// parseFile overlays values from a JSON or YAML file; the format follows the
// file extension. Only keys present in the file are applied.
func parseFile(cfg *Config, path string) error {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	apply(v, cfg)
	return nil
}
