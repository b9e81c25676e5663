package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	DefaultAPIBaseURL     = "https://api.hamsterkombat.io"
	DefaultMinEnergy      = 90
	DefaultMinTaps        = 50
	DefaultMaxTaps        = 200
	DefaultMinSleepTime   = 10
	DefaultMaxSleepTime   = 25
	DefaultUpgradeDelay   = 5 * time.Second
	DefaultReauthInterval = 3600 * time.Second
	DefaultRequestTimeout = 30 * time.Second
	// MinErrorBackoff is the shortest pause after a failed iteration.
	MinErrorBackoff = time.Second
)

// Settings is the immutable run configuration shared by every controller.
type Settings struct {
	APIID   int
	APIHash string

	AutoUpgrade        bool
	SleepForProfitable bool
	AutoTasks          bool

	MinEnergy    int
	MinTaps      int
	MaxTaps      int
	MinSleepTime int
	MaxSleepTime int

	UpgradeDelay   time.Duration
	ReauthInterval time.Duration
	RequestTimeout time.Duration
	// ErrorBackoff pauses a controller after a failed iteration. Values below
	// MinErrorBackoff are raised to it.
	ErrorBackoff time.Duration

	APIBaseURL       string
	SessionsDir      string
	AccessHashesPath string
	AccountsPath     string
}

func DefaultSettings() Settings {
	return Settings{
		AutoUpgrade:        true,
		SleepForProfitable: true,
		MinEnergy:          DefaultMinEnergy,
		MinTaps:            DefaultMinTaps,
		MaxTaps:            DefaultMaxTaps,
		MinSleepTime:       DefaultMinSleepTime,
		MaxSleepTime:       DefaultMaxSleepTime,
		UpgradeDelay:       DefaultUpgradeDelay,
		ReauthInterval:     DefaultReauthInterval,
		RequestTimeout:     DefaultRequestTimeout,
		APIBaseURL:         DefaultAPIBaseURL,
		SessionsDir:        "sessions",
		AccessHashesPath:   "access_hashes.json",
		AccountsPath:       "accounts.toml",
	}
}

func (s Settings) Validate() error {
	var problems []string

	if s.APIID <= 0 {
		problems = append(problems, "api_id must be a positive integer")
	}
	if strings.TrimSpace(s.APIHash) == "" {
		problems = append(problems, "api_hash is required")
	}
	for name, value := range map[string]int{
		"min_energy":     s.MinEnergy,
		"min_taps":       s.MinTaps,
		"max_taps":       s.MaxTaps,
		"min_sleep_time": s.MinSleepTime,
		"max_sleep_time": s.MaxSleepTime,
	} {
		if value < 0 {
			problems = append(problems, fmt.Sprintf("%s must not be negative", name))
		}
	}
	if s.MinTaps > s.MaxTaps {
		problems = append(problems, "min_taps must not exceed max_taps")
	}
	if s.MinSleepTime > s.MaxSleepTime {
		problems = append(problems, "min_sleep_time must not exceed max_sleep_time")
	}
	if s.UpgradeDelay < 0 || s.ReauthInterval < 0 || s.RequestTimeout < 0 || s.ErrorBackoff < 0 {
		problems = append(problems, "durations must not be negative")
	}
	if strings.TrimSpace(s.APIBaseURL) == "" {
		problems = append(problems, "api_base_url is required")
	}

	if len(problems) == 0 {
		return nil
	}

	// map iteration above makes the order unstable
	sort.Strings(problems)
	return fmt.Errorf("%w: %s", ErrInvalidSettings, strings.Join(problems, "; "))
}

// MaskedAPIHash keeps the first and last two characters visible.
func (s Settings) MaskedAPIHash() string {
	if len(s.APIHash) <= 4 {
		return strings.Repeat("*", len(s.APIHash))
	}

	return s.APIHash[:2] + strings.Repeat("*", len(s.APIHash)-4) + s.APIHash[len(s.APIHash)-2:]
}
