// Package config loads collaboreats settings from flags, environment and
// config.yaml through a package-level viper instance.
//
// Precedence, highest first: explicit Set calls (flags), CE_* environment
// variables, the project .collaboreats/config.yaml (found by walking up from
// the working directory), the user config in
// $XDG_CONFIG_HOME/collaboreats/config.yaml, then defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DirName is the per-project data directory.
const DirName = ".collaboreats"

// EnvPrefix prefixes every environment override: db -> CE_DB,
// tree.max-depth -> CE_TREE_MAX_DEPTH.
const EnvPrefix = "CE"

var v *viper.Viper

// Initialize sets up the viper instance. Safe to call again; each call
// starts from a fresh instance.
func Initialize() error {
	v = viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path := userConfigPath(); path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("error reading user config %s: %w", path, err)
			}
		}
	}

	if path, err := findProjectConfigYaml(); err == nil {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db", "")
	v.SetDefault("backend", "sqlite")
	v.SetDefault("actor", "")
	v.SetDefault("json", false)
	v.SetDefault("verbose", false)
	v.SetDefault("quiet", false)

	v.SetDefault("id.prefix", "rc")
	v.SetDefault("id.length", 6)

	v.SetDefault("tree.strict", false)
	v.SetDefault("tree.max-depth", 0)
	v.SetDefault("tree.workers", 4)

	v.SetDefault("serve.addr", ":8080")
	v.SetDefault("serve.read-timeout", 15*time.Second)
	v.SetDefault("serve.fetch-timeout", 10*time.Second)

	v.SetDefault("mysql.host", "127.0.0.1")
	v.SetDefault("mysql.port", 3306)
	v.SetDefault("mysql.user", "root")
	v.SetDefault("mysql.password", "")
	v.SetDefault("mysql.database", "collaboreats")
	v.SetDefault("mysql.tls", false)

	v.SetDefault("dolt.path", "")
	v.SetDefault("dolt.server", false)
	v.SetDefault("dolt.database", "collaboreats")
	v.SetDefault("dolt.committer-name", "")
	v.SetDefault("dolt.committer-email", "")

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.stdout", false)
	v.SetDefault("telemetry.endpoint", "")
}

func userConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "collaboreats", "config.yaml")
}

// ensure lazily initializes so getters work in tests and library use.
func ensure() *viper.Viper {
	if v == nil {
		_ = Initialize()
	}
	return v
}

// ResetForTesting drops the viper instance; the next access re-initializes.
func ResetForTesting() {
	v = nil
}

// GetString retrieves a string configuration value.
func GetString(key string) string {
	return ensure().GetString(key)
}

// GetBool retrieves a boolean configuration value.
func GetBool(key string) bool {
	return ensure().GetBool(key)
}

// GetInt retrieves an integer configuration value.
func GetInt(key string) int {
	return ensure().GetInt(key)
}

// GetDuration retrieves a duration configuration value.
func GetDuration(key string) time.Duration {
	return ensure().GetDuration(key)
}

// Set overrides a value for this process only (used for flags).
func Set(key string, value interface{}) {
	ensure().Set(key, value)
}

// AllSettings returns the merged configuration.
func AllSettings() map[string]interface{} {
	return ensure().AllSettings()
}

// ConfigFileUsed returns the project config file, if one was loaded.
func ConfigFileUsed() string {
	return ensure().ConfigFileUsed()
}

// DataDir returns the project's .collaboreats directory: the one holding
// the loaded config file, else the nearest one above the working directory,
// else ./.collaboreats.
func DataDir() string {
	if used := ConfigFileUsed(); used != "" && filepath.Base(filepath.Dir(used)) == DirName {
		return filepath.Dir(used)
	}
	if dir, err := FindDataDir(); err == nil {
		return dir
	}
	return DirName
}

// FindDataDir walks up from the working directory looking for .collaboreats.
func FindDataDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	for dir := cwd; ; dir = filepath.Dir(dir) {
		candidate := filepath.Join(dir, DirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
		if dir == filepath.Dir(dir) {
			break
		}
	}
	return "", fmt.Errorf("no %s directory found (run 'ce init' first)", DirName)
}

// Actor resolves who is acting: the actor setting, then $USER.
func Actor() string {
	if a := GetString("actor"); a != "" {
		return a
	}
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "anonymous"
}

// StoreSettings is the typed view of the storage keys.
type StoreSettings struct {
	Backend  string
	Path     string
	IDPrefix string
	IDLength int
	MySQL    MySQLSettings
	Dolt     DoltSettings
}

// MySQLSettings mirrors the mysql.* keys.
type MySQLSettings struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	TLS      bool
}

// DoltSettings mirrors the dolt.* keys.
type DoltSettings struct {
	Path           string
	Server         bool
	Database       string
	CommitterName  string
	CommitterEmail string
}

// Store returns the storage settings. An unset db path defaults to
// recipes.db (or dolt/ for the dolt backend) inside DataDir.
func Store() StoreSettings {
	s := StoreSettings{
		Backend:  strings.ToLower(GetString("backend")),
		Path:     GetString("db"),
		IDPrefix: GetString("id.prefix"),
		IDLength: GetInt("id.length"),
		MySQL: MySQLSettings{
			Host:     GetString("mysql.host"),
			Port:     GetInt("mysql.port"),
			User:     GetString("mysql.user"),
			Password: GetString("mysql.password"),
			Database: GetString("mysql.database"),
			TLS:      GetBool("mysql.tls"),
		},
		Dolt: DoltSettings{
			Path:           GetString("dolt.path"),
			Server:         GetBool("dolt.server"),
			Database:       GetString("dolt.database"),
			CommitterName:  GetString("dolt.committer-name"),
			CommitterEmail: GetString("dolt.committer-email"),
		},
	}
	if s.Path == "" {
		if s.Backend == "dolt" {
			s.Path = filepath.Join(DataDir(), "dolt")
		} else {
			s.Path = filepath.Join(DataDir(), "recipes.db")
		}
	}
	return s
}
