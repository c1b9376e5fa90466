package conf

/*
   Package conf wraps viper for the hfs tool. Values come from an env file
   named local.env, searched for in $HFS_CONF_DIR, ./shared_files and the
   working directory, in that order. Keys the file does not define are looked
   up in the process environment, so the tool runs without any file at all.

   Assumptions:
   1. The configuration file is an env file
   2. The configuration file stays immutable while the tool runs (exception
   is test, see SetEnv)
*/

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

// envVars holds the parsed file. Only reachable through GetEnv, SetEnv etc.
var envVars *viper.Viper

const (
	configgood    uint8 = 0
	configbad     uint8 = 1
	noconfigfound uint8 = 2
)

var state uint8 = configgood

func setup(dir string) *viper.Viper {
	v := viper.New()
	v.SetConfigName("local")
	v.SetConfigType("env")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		state = configbad
	}
	return v
}

func init() {
	load(searchPath())
}

func searchPath() []string {
	var dirs []string
	if dir := os.Getenv("HFS_CONF_DIR"); dir != "" {
		dirs = append(dirs, dir)
	}
	return append(dirs, "shared_files", ".")
}

// load points the package at the first directory holding a local.env.
func load(dirs []string) {
	state = configgood
	if loc, ok := findEnv(dirs); ok {
		envVars = setup(loc)
		return
	}
	envVars = nil
	state = noconfigfound
}

func findEnv(dirs []string) (string, bool) {
	for _, dir := range dirs {
		if _, err := os.Stat(filepath.Join(dir, "local.env")); err == nil {
			return dir, true
		}
	}
	return "", false
}

// GetEnv returns the value for key, or "" when neither the file nor the
// environment sets it.
func GetEnv(key string) string {
	v, _ := LookupEnv(key)
	return v
}

// LookupEnv is os.LookupEnv with the config file consulted first.
func LookupEnv(key string) (string, bool) {
	if state == configgood {
		if value := envVars.GetString(key); value != "" {
			return value, true
		}
	}
	return os.LookupEnv(key)
}

// GetEnvInt parses the value for key, returning def when it is unset or not
// a number.
func GetEnvInt(key string, def int) int {
	v, ok := LookupEnv(key)
	if !ok {
		return def
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return i
}

// GetEnvBool is GetEnvInt for booleans. It accepts what strconv.ParseBool does.
func GetEnvBool(key string, def bool) bool {
	v, ok := LookupEnv(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return b
}

// SetEnv adds a key to conf. It should only be used in this package or in
// tests; the protect parameter is there so callers knowingly do so.
func SetEnv(protect *testing.T, key string, value string) error {
	if state == configgood {
		envVars.Set(key, value)
		return nil
	}
	return os.Setenv(key, value)
}

// UnsetEnv clears a key from conf and from the environment. Like SetEnv it is
// meant for tests.
func UnsetEnv(protect *testing.T, key string) error {
	if state == configgood {
		envVars.Set(key, "")
	}
	return os.Unsetenv(key)
}
