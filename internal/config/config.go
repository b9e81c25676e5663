// Package config loads run settings from a YAML file, an optional .env file and HK_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/hamster-clicker-cli/internal/domain"
	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPath    = "settings.yaml"
	DefaultEnvFile = ".env"
	EnvPrefix      = "HK"

	settingsFileMode = 0o600
)

const (
	keyAPIID              = "api_id"
	keyAPIHash            = "api_hash"
	keyAutoUpgrade        = "auto_upgrade"
	keySleepForProfitable = "sleep_for_profitable"
	keyAutoTasks          = "auto_tasks"
	keyMinEnergy          = "min_energy"
	keyMinTaps            = "min_taps"
	keyMaxTaps            = "max_taps"
	keyMinSleepTime       = "min_sleep_time"
	keyMaxSleepTime       = "max_sleep_time"
	keyUpgradeDelay       = "upgrade_delay"
	keyReauthInterval     = "reauth_interval"
	keyRequestTimeout     = "request_timeout"
	keyErrorBackoff       = "error_backoff"
	keyAPIBaseURL         = "api_base_url"
	keySessionsDir        = "sessions_dir"
	keyAccessHashesPath   = "access_hashes_path"
	keyAccountsPath       = "accounts_path"
)

var ErrSettingsNotFound = errors.New("settings file not found")

type LoadOptions struct {
	Path    string
	EnvFile string
}

// Load reads and validates settings. A missing or unreadable settings file is an error.
func Load(opts LoadOptions) (domain.Settings, error) {
	settings, err := Read(opts)
	if err != nil {
		return domain.Settings{}, err
	}
	if err := settings.Validate(); err != nil {
		return domain.Settings{}, err
	}

	return settings, nil
}

// Read is Load without validation. `hk config init` uses it to locate files named by a
// template that has no credentials yet.
func Read(opts LoadOptions) (domain.Settings, error) {
	if opts.Path == "" {
		opts.Path = DefaultPath
	}
	if opts.EnvFile == "" {
		opts.EnvFile = DefaultEnvFile
	}

	if err := loadEnvFile(opts.EnvFile); err != nil {
		return domain.Settings{}, err
	}

	if _, err := os.Stat(opts.Path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Settings{}, fmt.Errorf("%w: %s (run `hk config init`)", ErrSettingsNotFound, opts.Path)
		}
		return domain.Settings{}, fmt.Errorf("stat settings file: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(opts.Path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return domain.Settings{}, fmt.Errorf("read settings file %s: %w", opts.Path, err)
	}

	return decode(v)
}

func loadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat env file: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	defaults := domain.DefaultSettings()

	v.SetDefault(keyAPIID, 0)
	v.SetDefault(keyAPIHash, "")
	v.SetDefault(keyAutoUpgrade, defaults.AutoUpgrade)
	v.SetDefault(keySleepForProfitable, defaults.SleepForProfitable)
	v.SetDefault(keyAutoTasks, defaults.AutoTasks)
	v.SetDefault(keyMinEnergy, defaults.MinEnergy)
	v.SetDefault(keyMinTaps, defaults.MinTaps)
	v.SetDefault(keyMaxTaps, defaults.MaxTaps)
	v.SetDefault(keyMinSleepTime, defaults.MinSleepTime)
	v.SetDefault(keyMaxSleepTime, defaults.MaxSleepTime)
	v.SetDefault(keyUpgradeDelay, defaults.UpgradeDelay.String())
	v.SetDefault(keyReauthInterval, defaults.ReauthInterval.String())
	v.SetDefault(keyRequestTimeout, defaults.RequestTimeout.String())
	v.SetDefault(keyErrorBackoff, defaults.ErrorBackoff.String())
	v.SetDefault(keyAPIBaseURL, defaults.APIBaseURL)
	v.SetDefault(keySessionsDir, defaults.SessionsDir)
	v.SetDefault(keyAccessHashesPath, defaults.AccessHashesPath)
	v.SetDefault(keyAccountsPath, defaults.AccountsPath)
}

func decode(v *viper.Viper) (domain.Settings, error) {
	settings := domain.Settings{
		APIHash:          strings.TrimSpace(v.GetString(keyAPIHash)),
		APIBaseURL:       v.GetString(keyAPIBaseURL),
		SessionsDir:      filepath.Clean(v.GetString(keySessionsDir)),
		AccessHashesPath: filepath.Clean(v.GetString(keyAccessHashesPath)),
		AccountsPath:     filepath.Clean(v.GetString(keyAccountsPath)),
	}

	ints := []struct {
		key    string
		target *int
	}{
		{keyAPIID, &settings.APIID},
		{keyMinEnergy, &settings.MinEnergy},
		{keyMinTaps, &settings.MinTaps},
		{keyMaxTaps, &settings.MaxTaps},
		{keyMinSleepTime, &settings.MinSleepTime},
		{keyMaxSleepTime, &settings.MaxSleepTime},
	}
	for _, field := range ints {
		value, err := cast.ToIntE(v.Get(field.key))
		if err != nil {
			return domain.Settings{}, fmt.Errorf("%w: %s: %v", domain.ErrInvalidSettings, field.key, err)
		}
		*field.target = value
	}

	bools := []struct {
		key    string
		target *bool
	}{
		{keyAutoUpgrade, &settings.AutoUpgrade},
		{keySleepForProfitable, &settings.SleepForProfitable},
		{keyAutoTasks, &settings.AutoTasks},
	}
	for _, field := range bools {
		value, err := cast.ToBoolE(v.Get(field.key))
		if err != nil {
			return domain.Settings{}, fmt.Errorf("%w: %s: %v", domain.ErrInvalidSettings, field.key, err)
		}
		*field.target = value
	}

	durations := []struct {
		key    string
		target *time.Duration
	}{
		{keyUpgradeDelay, &settings.UpgradeDelay},
		{keyReauthInterval, &settings.ReauthInterval},
		{keyRequestTimeout, &settings.RequestTimeout},
		{keyErrorBackoff, &settings.ErrorBackoff},
	}
	for _, d := range durations {
		value, err := parseDuration(v.GetString(d.key))
		if err != nil {
			return domain.Settings{}, fmt.Errorf("%w: %s: %v", domain.ErrInvalidSettings, d.key, err)
		}
		*d.target = value
	}

	return settings, nil
}

// parseDuration accepts Go duration strings ("5s", "1h") or bare numbers of seconds.
func parseDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	if seconds, err := strconv.ParseFloat(raw, 64); err == nil {
		return time.Duration(seconds * float64(time.Second)), nil
	}
	return time.ParseDuration(raw)
}

type fileSchema struct {
	APIID              int    `yaml:"api_id"`
	APIHash            string `yaml:"api_hash"`
	AutoUpgrade        bool   `yaml:"auto_upgrade"`
	SleepForProfitable bool   `yaml:"sleep_for_profitable"`
	AutoTasks          bool   `yaml:"auto_tasks"`
	MinEnergy          int    `yaml:"min_energy"`
	MinTaps            int    `yaml:"min_taps"`
	MaxTaps            int    `yaml:"max_taps"`
	MinSleepTime       int    `yaml:"min_sleep_time"`
	MaxSleepTime       int    `yaml:"max_sleep_time"`
	UpgradeDelay       string `yaml:"upgrade_delay"`
	ReauthInterval     string `yaml:"reauth_interval"`
	RequestTimeout     string `yaml:"request_timeout"`
	ErrorBackoff       string `yaml:"error_backoff"`
	APIBaseURL         string `yaml:"api_base_url"`
	SessionsDir        string `yaml:"sessions_dir"`
	AccessHashesPath   string `yaml:"access_hashes_path"`
	AccountsPath       string `yaml:"accounts_path"`
}

func toSchema(settings domain.Settings) fileSchema {
	return fileSchema{
		APIID:              settings.APIID,
		APIHash:            settings.APIHash,
		AutoUpgrade:        settings.AutoUpgrade,
		SleepForProfitable: settings.SleepForProfitable,
		AutoTasks:          settings.AutoTasks,
		MinEnergy:          settings.MinEnergy,
		MinTaps:            settings.MinTaps,
		MaxTaps:            settings.MaxTaps,
		MinSleepTime:       settings.MinSleepTime,
		MaxSleepTime:       settings.MaxSleepTime,
		UpgradeDelay:       settings.UpgradeDelay.String(),
		ReauthInterval:     settings.ReauthInterval.String(),
		RequestTimeout:     settings.RequestTimeout.String(),
		ErrorBackoff:       settings.ErrorBackoff.String(),
		APIBaseURL:         settings.APIBaseURL,
		SessionsDir:        settings.SessionsDir,
		AccessHashesPath:   settings.AccessHashesPath,
		AccountsPath:       settings.AccountsPath,
	}
}

// Marshal renders settings as YAML with the api hash masked.
func Marshal(settings domain.Settings) ([]byte, error) {
	schema := toSchema(settings)
	schema.APIHash = settings.MaskedAPIHash()

	data, err := yaml.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	return data, nil
}

// WriteDefault writes a settings template. It refuses to overwrite an existing file unless
// force is set, and reports whether it wrote.
func WriteDefault(path string, force bool) (bool, error) {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return false, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return false, fmt.Errorf("stat settings file: %w", err)
		}
	}

	data, err := yaml.Marshal(toSchema(domain.DefaultSettings()))
	if err != nil {
		return false, fmt.Errorf("encode default settings: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return false, fmt.Errorf("create settings directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, settingsFileMode); err != nil {
		return false, fmt.Errorf("write settings file: %w", err)
	}
	return true, nil
}
