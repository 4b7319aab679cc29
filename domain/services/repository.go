package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/DevArqf/ChronoCord/domain/entities"
)

// ErrStoreUnavailable wraps durable-store failures so callers can report a
// generic failure to the requester instead of crashing.
var ErrStoreUnavailable = errors.New("store unavailable")

// Repository persists poll records across sessions.
type Repository interface {
	SavePoll(ctx context.Context, record entities.PollRecord) error
	FindPollByUID(ctx context.Context, uid string) (entities.PollRecord, error)
	// ListPollsByGuild returns records for one guild, newest first.
	ListPollsByGuild(ctx context.Context, guildID string) ([]entities.PollRecord, error)
	// DeletePoll reports whether a record existed. Deleting a missing uid is
	// not an error.
	DeletePoll(ctx context.Context, uid string) (bool, error)
}

// SettingsRepository persists per-guild configuration.
type SettingsRepository interface {
	// FetchSettings reports found=false when no row exists for the guild.
	FetchSettings(ctx context.Context, guildID string) (settings entities.GuildSettings, found bool, err error)
	UpsertSettings(ctx context.Context, guildID string, patch entities.SettingsPatch) error
}

type PollNotFound struct {
	UID string
}

func (e PollNotFound) Error() string {
	return fmt.Sprintf("no poll with uid %q", e.UID)
}
