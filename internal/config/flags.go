package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/gophusers/internal/flagx"
)

// ValueFlags lists every flag that consumes the following argument, so
// command dispatchers can skip them when collecting positional arguments.
var ValueFlags = []string{"-c", "-config", "-s", "-d", "-k", "-t", "-l", "-H", "-m", "-r", "-v"}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-s string   storage backend (memory|postgres)
//	-d string   PostgreSQL DSN
//	-k string   token HMAC secret key
//	-t int      token validity, minutes
//	-l string   login field (username|email)
//	-H string   password hash (sha1|md5|bcrypt|argon2)
//	-m string   legacy salted-MD5 site salt
//	-r string   Redis address for sessions
//	-v string   log level (debug|info|warn|error)
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-s", "-d", "-k", "-t", "-l", "-H", "-m", "-r", "-v"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.Storage, "s", config.Storage, "storage backend")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "k", config.SecretKey, "secret key")

	tokenValidity := fs.Int("t", int(config.TokenValidityDuration.Minutes()), "token_validity_duration (in minutes)")

	fs.StringVar(&config.LoginField, "l", config.LoginField, "login field")
	fs.StringVar(&config.PasswordHash, "H", config.PasswordHash, "password hash algorithm")
	fs.StringVar(&config.LegacyMD5Salt, "m", config.LegacyMD5Salt, "legacy md5 salt")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TokenValidityDuration = time.Duration(*tokenValidity) * time.Minute
}
