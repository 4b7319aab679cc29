package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/DevArqf/ChronoCord/domain/entities"
	"github.com/DevArqf/ChronoCord/domain/services"
)

// Repository implements services.Repository and services.SettingsRepository on
// top of the sqlite database. Driver failures are surfaced as
// services.ErrStoreUnavailable.
type Repository struct {
	db *sql.DB
}

func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

var (
	_ services.Repository         = (*Repository)(nil)
	_ services.SettingsRepository = (*Repository)(nil)
)

type dbPoll struct {
	UID       string
	Title     string
	Times     []byte
	GuildID   string
	ChannelID string
	MessageID string
	CreatedAt int64
	MaxVotes  int
}

func (p dbPoll) toRecord() (entities.PollRecord, error) {
	var times []string
	if err := json.Unmarshal(p.Times, &times); err != nil {
		return entities.PollRecord{}, fmt.Errorf("decoding times for poll %s: %w", p.UID, err)
	}

	return entities.PollRecord{
		UID:       p.UID,
		Title:     p.Title,
		Times:     times,
		GuildID:   p.GuildID,
		ChannelID: p.ChannelID,
		MessageID: p.MessageID,
		CreatedAt: time.UnixMilli(p.CreatedAt).UTC(),
		MaxVotes:  p.MaxVotes,
	}, nil
}

func (r *Repository) SavePoll(ctx context.Context, record entities.PollRecord) error {
	times, err := json.Marshal(record.Times)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(
		ctx,
		"INSERT INTO events(uid,title,times,guild_id,channel_id,message_id,created_at,max_votes) VALUES(?,?,?,?,?,?,?,?)",
		record.UID,
		record.Title,
		times,
		record.GuildID,
		record.ChannelID,
		record.MessageID,
		record.CreatedAt.UnixMilli(),
		record.MaxVotes,
	)
	if err != nil {
		return storeError(err)
	}

	return nil
}

func (r *Repository) FindPollByUID(ctx context.Context, uid string) (entities.PollRecord, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT uid,title,times,guild_id,channel_id,message_id,created_at,max_votes FROM events WHERE uid=?", uid)
	if err != nil {
		return entities.PollRecord{}, storeError(err)
	}
	defer rows.Close()

	if !rows.Next() {
		return entities.PollRecord{}, services.PollNotFound{UID: uid}
	}

	var p dbPoll
	err = rows.Scan(&p.UID, &p.Title, &p.Times, &p.GuildID, &p.ChannelID, &p.MessageID, &p.CreatedAt, &p.MaxVotes)
	if err != nil {
		return entities.PollRecord{}, storeError(err)
	}

	return p.toRecord()
}

func (r *Repository) ListPollsByGuild(ctx context.Context, guildID string) ([]entities.PollRecord, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT uid,title,times,guild_id,channel_id,message_id,created_at,max_votes FROM events WHERE guild_id=? ORDER BY created_at DESC", guildID)
	if err != nil {
		return nil, storeError(err)
	}
	defer rows.Close()

	var results []entities.PollRecord

	for rows.Next() {
		var p dbPoll
		err = rows.Scan(&p.UID, &p.Title, &p.Times, &p.GuildID, &p.ChannelID, &p.MessageID, &p.CreatedAt, &p.MaxVotes)
		if err != nil {
			return results, storeError(err)
		}

		record, err := p.toRecord()
		if err != nil {
			return results, err
		}

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return results, storeError(err)
	}

	return results, nil
}

func (r *Repository) DeletePoll(ctx context.Context, uid string) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM events WHERE uid=?", uid)
	if err != nil {
		return false, storeError(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, storeError(err)
	}

	return n > 0, nil
}

func (r *Repository) FetchSettings(ctx context.Context, guildID string) (entities.GuildSettings, bool, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT guild_id,event_role_ids,require_manage,default_max_votes FROM guild_settings WHERE guild_id=?", guildID)
	if err != nil {
		return entities.GuildSettings{}, false, storeError(err)
	}
	defer rows.Close()

	if !rows.Next() {
		return entities.GuildSettings{}, false, nil
	}

	var (
		s       entities.GuildSettings
		roleIDs []byte
	)
	err = rows.Scan(&s.GuildID, &roleIDs, &s.RequireManage, &s.DefaultMaxVotes)
	if err != nil {
		return entities.GuildSettings{}, false, storeError(err)
	}

	if err := json.Unmarshal(roleIDs, &s.EventRoleIDs); err != nil {
		// a corrupt role list falls back to empty, the rest of the row stands
		s.EventRoleIDs = nil
	}

	return s, true, nil
}

// UpsertSettings merges patch over the stored row, creating it when missing.
// Writes are last-writer-wins per guild.
func (r *Repository) UpsertSettings(ctx context.Context, guildID string, patch entities.SettingsPatch) error {
	existing, _, err := r.FetchSettings(ctx, guildID)
	if err != nil {
		return err
	}

	merged := existing
	merged.GuildID = guildID
	if patch.EventRoleIDs != nil {
		merged.EventRoleIDs = *patch.EventRoleIDs
	}
	if patch.RequireManage != nil {
		merged.RequireManage = *patch.RequireManage
	}
	if patch.DefaultMaxVotes != nil {
		merged.DefaultMaxVotes = *patch.DefaultMaxVotes
	}

	roleIDs, err := json.Marshal(merged.EventRoleIDs)
	if err != nil {
		return err
	}
	if merged.EventRoleIDs == nil {
		roleIDs = []byte("[]")
	}

	_, err = r.db.ExecContext(
		ctx,
		`INSERT INTO guild_settings(guild_id,event_role_ids,require_manage,default_max_votes)
		 VALUES(?,?,?,?)
		 ON CONFLICT(guild_id) DO UPDATE SET
		   event_role_ids=excluded.event_role_ids,
		   require_manage=excluded.require_manage,
		   default_max_votes=excluded.default_max_votes`,
		merged.GuildID,
		roleIDs,
		merged.RequireManage,
		merged.DefaultMaxVotes,
	)
	if err != nil {
		return storeError(err)
	}

	return nil
}

func storeError(err error) error {
	return fmt.Errorf("%w: %v", services.ErrStoreUnavailable, err)
}
