package domain

import (
	"strconv"
	"strings"
)

// Game bot coordinates on the messaging platform.
const (
	BotID       int64 = 7018368922
	BotUsername       = "hamster_kombat_bot"
	WebAppURL         = "https://hamsterkombat.io/"
	WebAppPlatform    = "ios"
)

type AccountID int64

func (id AccountID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Account is one messaging-platform user driven by the fleet.
type Account struct {
	ID        AccountID
	FirstName string
	LastName  string
	Username  string
	// Alias overrides the display name when set from a profile.
	Alias string
	// Session is the name of the local credential file the account was opened from.
	Session string
}

func (a Account) DisplayName() string {
	if a.Alias != "" {
		return a.Alias
	}
	name := strings.TrimSpace(a.FirstName + " " + a.LastName)
	if name != "" {
		return name
	}
	if a.Username != "" {
		return a.Username
	}
	return a.ID.String()
}

// BotPeer addresses the game bot for one account. AccessHash is account-specific.
type BotPeer struct {
	UserID     int64
	AccessHash int64
}

func (p BotPeer) Resolved() bool {
	return p.AccessHash != 0
}

type SessionFile struct {
	Name string
	Path string
}
