package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/gophusers/internal/flagx"
	"github.com/dmitrijs2005/gophusers/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of the configuration, shared by the JSON
// and YAML loaders. Durations accept "90s" style strings or nanoseconds.
type FileConfig struct {
	Storage               string         `json:"storage" yaml:"storage"`
	DatabaseDSN           string         `json:"database_dsn" yaml:"database_dsn"`
	SecretKey             string         `json:"secret_key" yaml:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration" yaml:"token_validity_duration"`
	LoginField            string         `json:"login_field" yaml:"login_field"`
	PasswordHash          string         `json:"password_hash" yaml:"password_hash"`
	BcryptCost            int            `json:"bcrypt_cost" yaml:"bcrypt_cost"`
	LegacyMD5Salt         string         `json:"legacy_md5_salt" yaml:"legacy_md5_salt"`
	LegacyCrypt           bool           `json:"legacy_crypt" yaml:"legacy_crypt"`
	ReadOnlyUsers         bool           `json:"read_only_users" yaml:"read_only_users"`
	PasswordRules         map[string]int `json:"password_rules" yaml:"password_rules"`
	RedisAddr             string         `json:"redis_addr" yaml:"redis_addr"`
	RedisPassword         string         `json:"redis_password" yaml:"redis_password"`
	RedisDB               int            `json:"redis_db" yaml:"redis_db"`
	SessionPrefix         string         `json:"session_prefix" yaml:"session_prefix"`
	SessionTTL            timex.Duration `json:"session_ttl" yaml:"session_ttl"`
	LogLevel              string         `json:"log_level" yaml:"log_level"`
}

// parseFile overlays values from the file named by -c/-config. Files
// ending in .yaml or .yml are decoded as YAML, anything else as JSON.
// Fields absent from the file keep their current value. A file that cannot
// be read or decoded panics.
func parseFile(config *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		err = json.Unmarshal(data, c)
	}
	if err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *FileConfig) apply(config *Config) {
	setString(&config.Storage, c.Storage)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.LoginField, c.LoginField)
	setString(&config.PasswordHash, c.PasswordHash)
	setString(&config.LegacyMD5Salt, c.LegacyMD5Salt)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisPassword, c.RedisPassword)
	setString(&config.SessionPrefix, c.SessionPrefix)
	setString(&config.LogLevel, c.LogLevel)

	if c.TokenValidityDuration.Duration != 0 {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	if c.SessionTTL.Duration != 0 {
		config.SessionTTL = c.SessionTTL.Duration
	}
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
	if c.RedisDB != 0 {
		config.RedisDB = c.RedisDB
	}
	if c.LegacyCrypt {
		config.LegacyCrypt = true
	}
	if c.ReadOnlyUsers {
		config.ReadOnlyUsers = true
	}
	if len(c.PasswordRules) > 0 {
		config.PasswordRules = c.PasswordRules
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
