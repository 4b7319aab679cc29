package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevArqf/ChronoCord/database"
	"github.com/DevArqf/ChronoCord/domain/entities"
	"github.com/DevArqf/ChronoCord/domain/services"
)

func setupRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return New(db)
}

func samplePoll(guildID string, createdAt time.Time) entities.PollRecord {
	record := entities.NewPollRecord("Raid night", []string{"Mon 6pm", "Tue 7pm"}, guildID, 2)
	record.ChannelID = "chan-1"
	record.MessageID = "msg-" + record.UID
	record.CreatedAt = createdAt
	return record
}

func TestRepository_SaveAndFindPoll(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	record := samplePoll("guild-1", time.Now().UTC().Truncate(time.Millisecond))
	require.NoError(t, repo.SavePoll(ctx, record))

	got, err := repo.FindPollByUID(ctx, record.UID)
	require.NoError(t, err)
	assert.Equal(t, record, got)
}

func TestRepository_FindPollMissing(t *testing.T) {
	repo := setupRepo(t)

	_, err := repo.FindPollByUID(context.Background(), "nope")

	var notFound services.PollNotFound
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "nope", notFound.UID)
}

func TestRepository_ListPollsByGuildNewestFirst(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Millisecond)
	oldest := samplePoll("guild-1", base.Add(-2*time.Hour))
	middle := samplePoll("guild-1", base.Add(-time.Hour))
	newest := samplePoll("guild-1", base)
	other := samplePoll("guild-2", base)

	for _, record := range []entities.PollRecord{oldest, newest, middle, other} {
		require.NoError(t, repo.SavePoll(ctx, record))
	}

	records, err := repo.ListPollsByGuild(ctx, "guild-1")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, newest.UID, records[0].UID)
	assert.Equal(t, middle.UID, records[1].UID)
	assert.Equal(t, oldest.UID, records[2].UID)

	records, err = repo.ListPollsByGuild(ctx, "guild-3")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRepository_DeletePoll(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	record := samplePoll("guild-1", time.Now().UTC())
	require.NoError(t, repo.SavePoll(ctx, record))

	removed, err := repo.DeletePoll(ctx, record.UID)
	require.NoError(t, err)
	assert.True(t, removed)

	// deleting a missing uid is not an error
	removed, err = repo.DeletePoll(ctx, record.UID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestRepository_SettingsRoundTrip(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	_, found, err := repo.FetchSettings(ctx, "guild-1")
	require.NoError(t, err)
	assert.False(t, found)

	roles := []string{"r1"}
	enabled := true
	require.NoError(t, repo.UpsertSettings(ctx, "guild-1", entities.SettingsPatch{
		EventRoleIDs:  &roles,
		RequireManage: &enabled,
	}))

	settings, found, err := repo.FetchSettings(ctx, "guild-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "guild-1", settings.GuildID)
	assert.Equal(t, []string{"r1"}, settings.EventRoleIDs)
	assert.True(t, settings.RequireManage)
	assert.Equal(t, 0, settings.DefaultMaxVotes)
}

func TestRepository_UpsertSettingsMergesPartialPatches(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	roles := []string{"r1", "r2"}
	require.NoError(t, repo.UpsertSettings(ctx, "guild-1", entities.SettingsPatch{EventRoleIDs: &roles}))

	maxVotes := 3
	require.NoError(t, repo.UpsertSettings(ctx, "guild-1", entities.SettingsPatch{DefaultMaxVotes: &maxVotes}))

	settings, found, err := repo.FetchSettings(ctx, "guild-1")
	require.NoError(t, err)
	require.True(t, found)

	// the earlier roles survive a patch that only touches the vote default
	assert.Equal(t, []string{"r1", "r2"}, settings.EventRoleIDs)
	assert.Equal(t, 3, settings.DefaultMaxVotes)
}

func TestRepository_UpsertSettingsClearsRoles(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	roles := []string{"r1"}
	require.NoError(t, repo.UpsertSettings(ctx, "guild-1", entities.SettingsPatch{EventRoleIDs: &roles}))

	empty := []string{}
	require.NoError(t, repo.UpsertSettings(ctx, "guild-1", entities.SettingsPatch{EventRoleIDs: &empty}))

	settings, found, err := repo.FetchSettings(ctx, "guild-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Empty(t, settings.EventRoleIDs)
}
