package model

import "time"

// Account represents a registered player credential record.
// The password is never stored; only its bcrypt hash.
type Account struct {
	Username     string // login username (unique, case-sensitive, immutable)
	PasswordHash string // bcrypt hash
	CreatedAt    time.Time
}

// WinRecord is one leaderboard standing for a player.
type WinRecord struct {
	Username string `json:"username"`
	Wins     int    `json:"wins"`
}
