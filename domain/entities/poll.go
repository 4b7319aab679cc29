package entities

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// PollRecord is the durable metadata for one availability poll. It is written
// once at creation time and destroyed when the poll is ended; the live vote
// ledger is never part of it.
type PollRecord struct {
	UID       string
	Title     string
	Times     []string
	GuildID   string
	ChannelID string
	MessageID string
	CreatedAt time.Time
	MaxVotes  int
}

// GuildSettings holds per-guild configuration read before poll commands run.
// DefaultMaxVotes of 0 means no default is configured.
type GuildSettings struct {
	GuildID         string
	EventRoleIDs    []string
	RequireManage   bool
	DefaultMaxVotes int
}

// SettingsPatch is a partial update of GuildSettings. Nil fields are left
// untouched by an upsert.
type SettingsPatch struct {
	EventRoleIDs    *[]string
	RequireManage   *bool
	DefaultMaxVotes *int
}

func NewPollRecord(title string, times []string, guildID string, maxVotes int) PollRecord {
	return PollRecord{
		UID:       NewUID(),
		Title:     title,
		Times:     times,
		GuildID:   guildID,
		CreatedAt: time.Now().UTC(),
		MaxVotes:  maxVotes,
	}
}

// NewUID returns a 12-character lowercase hex token drawn from a
// cryptographic source. Short enough to type, wide enough that collisions are
// not a practical concern.
func NewUID() string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return hex.EncodeToString(buf)
}
