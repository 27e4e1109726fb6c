package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN, or "memory://"
//	-r string   Redis URL
//	-s string   JWT HMAC secret key
//	-g string   JWT algorithm (HS256, HS384, HS512)
//	-t int      access token validity, minutes
//	-e int      refresh token validity, days
//	-l int      cache entry lifetime, seconds
//
// args are filtered with flagx.FilterArgs first, so -c/-config and flags owned
// by other components do not trip the parser.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-r", "-s", "-g", "-t", "-e", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.RedisURL, "r", config.RedisURL, "redis URL")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.Algorithm, "g", config.Algorithm, "JWT signing algorithm")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	refreshTokenValidityDuration := fs.Int("e", int(config.RefreshTokenValidityDuration.Hours()/24), "refresh token validity (in days)")
	cacheTTL := fs.Int("l", int(config.CacheTTL.Seconds()), "cache entry lifetime (in seconds)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * 24 * time.Hour
	config.CacheTTL = time.Duration(*cacheTTL) * time.Second
	return nil
}
