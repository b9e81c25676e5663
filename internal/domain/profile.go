package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// Profile holds optional per-session overrides from the accounts registry.
type Profile struct {
	Session  string
	Name     string
	Proxy    string
	Disabled bool
}

func (p Profile) Validate() error {
	if strings.TrimSpace(p.Session) == "" {
		return fmt.Errorf("session is required")
	}
	if p.Proxy == "" {
		return nil
	}

	parsed, err := url.Parse(p.Proxy)
	if err != nil {
		return fmt.Errorf("parse proxy url: %w", err)
	}
	switch parsed.Scheme {
	case "http", "https", "socks5":
	default:
		return fmt.Errorf("unsupported proxy scheme %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("proxy host is required")
	}

	return nil
}
