// Package config loads taskops settings from flags, TASKOPS_* environment
// variables, an optional .env file and the user config file, in that order
// of precedence.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config keys
const (
	KeyAPIURL       = "api.url"
	KeyAPITimeout   = "api.timeout"
	KeyAPIRateLimit = "api.rate_limit"
	KeyPageSize     = "tasks.page_size"
	KeyLogLevel     = "log.level"
	KeyLogFormat    = "log.format"
	KeyLogFile      = "log.file"
)

// DefaultAPIURL is used when no API URL is configured
const DefaultAPIURL = "http://localhost:8000/api/v1"

const (
	configFileName = "config.json"
	envPrefix      = "TASKOPS"
	homeEnv        = "TASKOPS_HOME"
)

var ErrUnknownKey = errors.New("unknown config key")

// Settings is the resolved view of the configuration
type Settings struct {
	APIURL    string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 = unlimited
	PageSize  int
	LogLevel  string
	LogFormat string
	LogFile   string
}

// Config wraps a viper instance rooted at a config directory
type Config struct {
	v   *viper.Viper
	dir string
}

// Dir returns the config directory ($TASKOPS_HOME or ~/.config/taskops),
// creating it if necessary.
func Dir() (string, error) {
	dir := os.Getenv(homeEnv)
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get home dir: %w", err)
		}
		dir = filepath.Join(home, ".config", "taskops")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	return dir, nil
}

// LoadDotEnv loads a .env file into the process environment if it exists.
// Variables already set in the environment win.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func setDefaults(v *viper.Viper, dir string) {
	v.SetDefault(KeyAPIURL, DefaultAPIURL)
	v.SetDefault(KeyAPITimeout, "30s")
	v.SetDefault(KeyAPIRateLimit, 0)
	v.SetDefault(KeyPageSize, 100)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "json")
	v.SetDefault(KeyLogFile, filepath.Join(dir, "logs", "taskops.log"))
}

func newFileViper(dir string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(filepath.Join(dir, configFileName))
	v.SetConfigType("json")
	return v
}

func readFile(v *viper.Viper) error {
	err := v.ReadInConfig()
	if err == nil {
		return nil
	}
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) || os.IsNotExist(err) || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("read config: %w", err)
}

// Load reads config.json from dir and layers environment variables on top.
func Load(dir string) (*Config, error) {
	v := newFileViper(dir)
	setDefaults(v, dir)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := readFile(v); err != nil {
		return nil, err
	}
	return &Config{v: v, dir: dir}, nil
}

// Dir returns the directory this config was loaded from
func (c *Config) Dir() string {
	return c.dir
}

// BindFlag makes a command-line flag override key when the flag is set.
func (c *Config) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("bind %s: nil flag", key)
	}
	return c.v.BindPFlag(key, flag)
}

// Settings returns the resolved settings. Malformed values fall back to
// their defaults.
func (c *Config) Settings() Settings {
	s := Settings{
		APIURL:    strings.TrimRight(c.v.GetString(KeyAPIURL), "/"),
		Timeout:   c.v.GetDuration(KeyAPITimeout),
		RateLimit: c.v.GetFloat64(KeyAPIRateLimit),
		PageSize:  c.v.GetInt(KeyPageSize),
		LogLevel:  strings.ToLower(c.v.GetString(KeyLogLevel)),
		LogFormat: strings.ToLower(c.v.GetString(KeyLogFormat)),
		LogFile:   c.v.GetString(KeyLogFile),
	}
	if s.APIURL == "" {
		s.APIURL = DefaultAPIURL
	}
	if s.Timeout <= 0 {
		s.Timeout = 30 * time.Second
	}
	if s.RateLimit < 0 {
		s.RateLimit = 0
	}
	if s.PageSize <= 0 {
		s.PageSize = 100
	}
	return s
}

// Get returns the effective value for key as a string
func (c *Config) Get(key string) (string, error) {
	if !IsValidKey(key) {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return c.v.GetString(key), nil
}

// Set validates value for key and persists it to config.json. Only the file
// contents are written; environment and flag overrides are never saved.
func (c *Config) Set(key, value string) error {
	typed, err := parseValue(key, value)
	if err != nil {
		return err
	}

	fv := newFileViper(c.dir)
	if err := readFile(fv); err != nil {
		return err
	}
	fv.Set(key, typed)

	if err := writeAtomic(filepath.Join(c.dir, configFileName), fv.AllSettings()); err != nil {
		return err
	}
	c.v.Set(key, typed)
	return nil
}

// Keys returns all supported config keys, sorted
func Keys() []string {
	keys := []string{
		KeyAPIURL,
		KeyAPITimeout,
		KeyAPIRateLimit,
		KeyPageSize,
		KeyLogLevel,
		KeyLogFormat,
		KeyLogFile,
	}
	sort.Strings(keys)
	return keys
}

// IsValidKey reports whether key is a supported config key
func IsValidKey(key string) bool {
	for _, k := range Keys() {
		if k == key {
			return true
		}
	}
	return false
}

func parseValue(key, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch key {
	case KeyAPIURL:
		u, err := url.Parse(value)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("invalid url %q (want http(s)://host/...)", value)
		}
		return strings.TrimRight(value, "/"), nil
	case KeyAPITimeout:
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid duration %q", value)
		}
		return d.String(), nil
	case KeyAPIRateLimit:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return nil, fmt.Errorf("invalid rate limit %q (want a number >= 0)", value)
		}
		return f, nil
	case KeyPageSize:
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid page size %q (want a positive integer)", value)
		}
		return n, nil
	case KeyLogLevel:
		switch strings.ToLower(value) {
		case "debug", "info", "warn", "error":
			return strings.ToLower(value), nil
		}
		return nil, fmt.Errorf("invalid log level %q (use debug/info/warn/error)", value)
	case KeyLogFormat:
		switch strings.ToLower(value) {
		case "json", "text":
			return strings.ToLower(value), nil
		}
		return nil, fmt.Errorf("invalid log format %q (use json/text)", value)
	case KeyLogFile:
		if value == "" {
			return nil, fmt.Errorf("log file path cannot be empty")
		}
		return value, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
}

// writeAtomic writes settings as indented JSON using temp file + rename
func writeAtomic(path string, settings map[string]any) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "config-*.json.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, path)
}
