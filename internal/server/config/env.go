package config

import "github.com/spf13/viper"

// parseEnv overlays values from environment variables named after the
// upper-cased overlay keys (HTTP_ADDR, DATABASE_URL, REDIS_TIME, ...).
func parseEnv(cfg *Config) {
	v := viper.New()
	v.AutomaticEnv()
	for _, key := range overlayKeys {
		_ = v.BindEnv(key)
	}

	apply(v, cfg)
}
