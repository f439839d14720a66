// Package config reads server settings from environment variables and an
// optional config.yaml in the working directory. Everything has a
// default; a missing config file is not an error.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds the few knobs the server has.
type Config struct {
	Addr     string // listen address
	DataPath string // survey CSV location
	LogLevel string // debug, info, warn, error
}

// Load resolves configuration with precedence env > config file > default.
// Env keys are prefixed WELLBOARD_ (WELLBOARD_ADDR, WELLBOARD_DATA,
// WELLBOARD_LOG_LEVEL).
func Load() Config {
	v := viper.New()
	v.SetDefault("addr", ":8080")
	v.SetDefault("data", "data/mental_health_lifestyle.csv")
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("wellboard")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional

	return Config{
		Addr:     v.GetString("addr"),
		DataPath: v.GetString("data"),
		LogLevel: v.GetString("log_level"),
	}
}
