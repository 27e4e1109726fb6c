package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Keys shared by the file and environment overlays. Environment variables are
// the upper-cased key, e.g. access_token_expire_minutes -> ACCESS_TOKEN_EXPIRE_MINUTES.
const (
	keyHTTPAddr        = "http_addr"
	keyDatabaseURL     = "database_url"
	keyRedisURL        = "redis_url"
	keySecretKey       = "secret_key"
	keyAlgorithm       = "algorithm"
	keyAccessMinutes   = "access_token_expire_minutes"
	keyRefreshDays     = "refresh_token_expire_days"
	keyCacheSeconds    = "redis_time"
	keyLoginRateLimit  = "login_rate_limit"
	keyLoginRateWindow = "login_rate_window"
	keyTrustedProxies  = "trusted_proxies"
	keyHashConcurrency = "hash_concurrency"
	keyLogBackend      = "log_backend"
	keyLogLevel        = "log_level"
)

var overlayKeys = []string{
	keyHTTPAddr, keyDatabaseURL, keyRedisURL, keySecretKey, keyAlgorithm,
	keyAccessMinutes, keyRefreshDays, keyCacheSeconds, keyLoginRateLimit,
	keyLoginRateWindow, keyTrustedProxies, keyHashConcurrency, keyLogBackend, keyLogLevel,
}

// apply copies every key that v has a value for into cfg, leaving the rest untouched.
func apply(v *viper.Viper, cfg *Config) {
	set := func(key string, fn func()) {
		if v.IsSet(key) {
			fn()
		}
	}

	set(keyHTTPAddr, func() { cfg.HTTPAddr = v.GetString(keyHTTPAddr) })
	set(keyDatabaseURL, func() { cfg.DatabaseDSN = v.GetString(keyDatabaseURL) })
	set(keyRedisURL, func() { cfg.RedisURL = v.GetString(keyRedisURL) })
	set(keySecretKey, func() { cfg.SecretKey = v.GetString(keySecretKey) })
	set(keyAlgorithm, func() { cfg.Algorithm = v.GetString(keyAlgorithm) })
	set(keyAccessMinutes, func() {
		cfg.AccessTokenValidityDuration = time.Duration(v.GetInt(keyAccessMinutes)) * time.Minute
	})
	set(keyRefreshDays, func() {
		cfg.RefreshTokenValidityDuration = time.Duration(v.GetInt(keyRefreshDays)) * 24 * time.Hour
	})
	set(keyCacheSeconds, func() {
		cfg.CacheTTL = time.Duration(v.GetInt(keyCacheSeconds)) * time.Second
	})
	set(keyLoginRateLimit, func() { cfg.LoginRateLimit = v.GetInt(keyLoginRateLimit) })
	set(keyLoginRateWindow, func() { cfg.LoginRateWindow = v.GetDuration(keyLoginRateWindow) })
	set(keyTrustedProxies, func() { cfg.TrustedProxies = splitList(v.GetStringSlice(keyTrustedProxies)) })
	set(keyHashConcurrency, func() { cfg.HashConcurrency = v.GetInt(keyHashConcurrency) })
	set(keyLogBackend, func() { cfg.LogBackend = v.GetString(keyLogBackend) })
	set(keyLogLevel, func() { cfg.LogLevel = v.GetString(keyLogLevel) })
}

// splitList flattens list values that may arrive comma-separated, as they do
// from the environment ("10.0.0.0/8,127.0.0.1").
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}
