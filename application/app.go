package application

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/DevArqf/ChronoCord/domain/entities"
	"github.com/DevArqf/ChronoCord/domain/services"
)

// Location identifies a delivered chat message.
type Location struct {
	ChannelID string
	MessageID string
}

// PollView is everything the platform needs to render one poll message.
type PollView struct {
	Record   entities.PollRecord
	Display  DisplayConfig
	Tally    Tally
	CustomID string
}

// Messenger is the chat-platform surface the core drives after the initial
// delivery. Edits and deletions are addressed by message location.
type Messenger interface {
	UpdatePoll(ctx context.Context, loc Location, view PollView) error
	// RemovePoll deletes the poll message. Best effort; callers log and
	// continue on failure.
	RemovePoll(ctx context.Context, loc Location) error
}

// SendFunc performs the initial delivery of a poll message. The gateway binds
// it to the invoking interaction, including any fallback path; the returned
// location is wherever the message actually landed.
type SendFunc func(ctx context.Context, view PollView) (Location, error)

// Defaults carries the configured styling defaults threaded into each poll.
type Defaults struct {
	Color            string
	NotifyColor      string
	ListColor        string
	Footer           string
	MaxSelectOptions int
	DefaultMaxVotes  int
}

// App wires the core engine together: the durable registry, the live session
// manager and the platform messenger.
type App struct {
	repo      services.Repository
	settings  services.SettingsRepository
	sessions  *SessionManager
	messenger Messenger
	defaults  Defaults
	devUserID string
	logger    *zap.Logger
}

func New(repo services.Repository, settings services.SettingsRepository, messenger Messenger, defaults Defaults, devUserID string, logger *zap.Logger) *App {
	return &App{
		repo:      repo,
		settings:  settings,
		sessions:  NewSessionManager(logger),
		messenger: messenger,
		defaults:  defaults,
		devUserID: devUserID,
		logger:    logger,
	}
}

// Sessions exposes the live session manager.
func (a *App) Sessions() *SessionManager {
	return a.sessions
}

// Defaults exposes the configured styling defaults.
func (a *App) Defaults() Defaults {
	return a.defaults
}

// CreatePollInput is a creation request as delivered by the command surface.
type CreatePollInput struct {
	GuildID   string
	ChannelID string
	Title     string
	TimesRaw  string
	// MaxVotes of 0 means unset; the guild default, then 1, applies.
	MaxVotes  int
	Overrides DisplayOverrides
}

// CreatePoll validates and authorizes the request, delivers the poll message
// through send, persists the record for cross-session lookup and registers a
// live session collecting votes.
//
// Ordering is deliberate: a delivery failure aborts the whole creation with
// nothing persisted, while a persistence failure after a successful delivery
// is logged and the poll stays live (the message already exists; rolling it
// back would destroy collected context for a retryable store error).
func (a *App) CreatePoll(ctx context.Context, caller Caller, in CreatePollInput, send SendFunc) (*Session, error) {
	settings, found := a.fetchSettings(ctx, in.GuildID)

	if !Authorize(caller, settings, found, CreatePolicies(a.devUserID)) {
		return nil, ErrNotAuthorized
	}

	times := SplitTimes(in.TimesRaw)
	if len(times) == 0 {
		return nil, ErrNoOptions
	}
	if len(times) > a.defaults.MaxSelectOptions {
		return nil, fmt.Errorf("%w: %d options, limit %d", ErrTooManyOptions, len(times), a.defaults.MaxSelectOptions)
	}

	requested := in.MaxVotes
	if requested == 0 {
		if found && settings.DefaultMaxVotes > 0 {
			requested = settings.DefaultMaxVotes
		} else {
			requested = a.defaults.DefaultMaxVotes
		}
	}
	maxVotes := ClampMaxVotes(requested, len(times))

	record := entities.NewPollRecord(in.Title, times, in.GuildID, maxVotes)
	record.ChannelID = in.ChannelID

	display := a.resolveDisplay(in.Overrides)

	view := PollView{
		Record:   record,
		Display:  display,
		Tally:    ComputeTally(NewLedger(len(times)), times),
		CustomID: SelectCustomID(record.UID),
	}

	loc, err := send(ctx, view)
	if err != nil {
		// nothing persisted, nothing registered
		return nil, fmt.Errorf("delivering poll message: %w", err)
	}
	record.ChannelID = loc.ChannelID
	record.MessageID = loc.MessageID

	if err := a.repo.SavePoll(ctx, record); err != nil {
		// known inconsistency: the message is already out, keep the poll live
		a.logger.Error("poll record not persisted; poll runs unregistered",
			zap.String("uid", record.UID),
			zap.Error(err))
	}

	session := NewSession(record, display, &messageDisplay{
		messenger: a.messenger,
		loc:       loc,
		view:      view,
	}, a.logger)

	if err := a.sessions.Register(session); err != nil {
		session.Shutdown()
		return nil, err
	}

	a.logger.Info("poll created",
		zap.String("uid", record.UID),
		zap.String("guild_id", record.GuildID),
		zap.Int("options", len(times)),
		zap.Int("max_votes", maxVotes))

	return session, nil
}

// SubmitVote routes a selection-submission event to the live session for uid.
// Unknown or ended sessions are reported so the gateway can tell the voter
// the poll is gone.
func (a *App) SubmitVote(uid, voterID string, rawSelection []string) error {
	session, ok := a.sessions.Lookup(uid)
	if !ok {
		return ErrSessionEnded
	}
	return session.HandleVote(voterID, rawSelection)
}

// ListPolls returns the guild's poll records, newest first.
func (a *App) ListPolls(ctx context.Context, caller Caller, guildID string) ([]entities.PollRecord, error) {
	settings, found := a.fetchSettings(ctx, guildID)

	if !Authorize(caller, settings, found, CreatePolicies(a.devUserID)) {
		return nil, ErrNotAuthorized
	}

	return a.Polls(ctx, guildID)
}

// Polls returns the guild's poll records without an authorization gate.
// Callers that reach it through a component flow carry their own checks.
func (a *App) Polls(ctx context.Context, guildID string) ([]entities.PollRecord, error) {
	return a.repo.ListPollsByGuild(ctx, guildID)
}

// EndPoll removes the durable record for uid and tears down its live session.
// The record must belong to guildID. Returns the removed record.
func (a *App) EndPoll(ctx context.Context, caller Caller, guildID, uid string) (entities.PollRecord, error) {
	settings, found := a.fetchSettings(ctx, guildID)

	if !Authorize(caller, settings, found, EndPolicies(a.devUserID)) {
		return entities.PollRecord{}, ErrNotAuthorized
	}

	return a.endPoll(ctx, guildID, uid)
}

// EndPolls ends several polls at once, returning the uids deleted and the
// uids that failed. Authorization is the caller's responsibility; the listing
// flow applies its own bounded-window permission check.
func (a *App) EndPolls(ctx context.Context, guildID string, uids []string) (deleted, failed []string) {
	for _, uid := range uids {
		if _, err := a.endPoll(ctx, guildID, uid); err != nil {
			a.logger.Warn("poll not ended", zap.String("uid", uid), zap.Error(err))
			failed = append(failed, uid)
			continue
		}
		deleted = append(deleted, uid)
	}
	return deleted, failed
}

func (a *App) endPoll(ctx context.Context, guildID, uid string) (entities.PollRecord, error) {
	record, err := a.repo.FindPollByUID(ctx, uid)
	if err != nil {
		return entities.PollRecord{}, err
	}
	if record.GuildID != guildID {
		return entities.PollRecord{}, services.PollNotFound{UID: uid}
	}

	removed, err := a.repo.DeletePoll(ctx, uid)
	if err != nil {
		return entities.PollRecord{}, err
	}
	if !removed {
		return entities.PollRecord{}, services.PollNotFound{UID: uid}
	}

	if session, ok := a.sessions.Remove(uid); ok {
		// End removes the live display as well
		session.End(ctx)
	} else if record.MessageID != "" {
		// no live session (e.g. created before a restart): best-effort delete
		loc := Location{ChannelID: record.ChannelID, MessageID: record.MessageID}
		if err := a.messenger.RemovePoll(ctx, loc); err != nil {
			a.logger.Warn("poll message removal failed",
				zap.String("uid", uid),
				zap.Error(err))
		}
	}

	a.logger.Info("poll ended", zap.String("uid", uid), zap.String("guild_id", guildID))

	return record, nil
}

// SetEventRole stores the single role allowed to run poll commands; an empty
// roleID clears the restriction. Admin only.
func (a *App) SetEventRole(ctx context.Context, caller Caller, guildID, roleID string) error {
	if !caller.IsAdmin {
		return ErrNotAuthorized
	}

	roleIDs := []string{}
	if roleID != "" {
		roleIDs = []string{roleID}
	}

	return a.settings.UpsertSettings(ctx, guildID, entities.SettingsPatch{EventRoleIDs: &roleIDs})
}

// SetRequireElevated toggles whether poll commands demand the platform's
// guild-management permission. Admin only.
func (a *App) SetRequireElevated(ctx context.Context, caller Caller, guildID string, enabled bool) error {
	if !caller.IsAdmin {
		return ErrNotAuthorized
	}

	return a.settings.UpsertSettings(ctx, guildID, entities.SettingsPatch{RequireManage: &enabled})
}

// SetDefaultMaxVotes stores the guild default vote cap for new polls; 0
// clears it. Admin only.
func (a *App) SetDefaultMaxVotes(ctx context.Context, caller Caller, guildID string, maxVotes int) error {
	if !caller.IsAdmin {
		return ErrNotAuthorized
	}
	if maxVotes < 0 || maxVotes > 25 {
		return ErrMaxVotesOutOfRange
	}

	return a.settings.UpsertSettings(ctx, guildID, entities.SettingsPatch{DefaultMaxVotes: &maxVotes})
}

// ViewSettings returns the stored settings for guildID. Admin only.
func (a *App) ViewSettings(ctx context.Context, caller Caller, guildID string) (entities.GuildSettings, bool, error) {
	if !caller.IsAdmin {
		return entities.GuildSettings{}, false, ErrNotAuthorized
	}

	return a.settings.FetchSettings(ctx, guildID)
}

// fetchSettings treats an unreachable settings store as an absent row, so a
// degraded store never locks a guild out of its own polls.
func (a *App) fetchSettings(ctx context.Context, guildID string) (entities.GuildSettings, bool) {
	settings, found, err := a.settings.FetchSettings(ctx, guildID)
	if err != nil {
		a.logger.Warn("settings fetch failed, treating as absent",
			zap.String("guild_id", guildID),
			zap.Error(err))
		return entities.GuildSettings{}, false
	}
	return settings, found
}

func (a *App) resolveDisplay(o DisplayOverrides) DisplayConfig {
	color := NormalizeHexColor(o.ColorHex)
	if color == "" {
		color = NormalizeHexColor(a.defaults.Color)
	}
	if color == "" {
		color = "#3498db"
	}

	return DisplayConfig{
		Color:            color,
		Description:      o.Description,
		Footer:           o.Footer,
		ImageURL:         o.ImageURL,
		MaxSelectOptions: a.defaults.MaxSelectOptions,
	}
}

// SelectCustomID is the component identifier carried by a poll's select menu.
func SelectCustomID(uid string) string {
	return "evt_select_" + uid
}

// PollUIDFromCustomID inverts SelectCustomID.
func PollUIDFromCustomID(customID string) (string, bool) {
	const prefix = "evt_select_"
	if len(customID) <= len(prefix) || customID[:len(prefix)] != prefix {
		return "", false
	}
	return customID[len(prefix):], true
}

// IsStoreUnavailable reports whether err is a durable-store failure that
// should be presented as a generic failure.
func IsStoreUnavailable(err error) bool {
	return errors.Is(err, services.ErrStoreUnavailable)
}

// messageDisplay adapts the Messenger to a session's DisplayTarget, pinned to
// the delivered message location.
type messageDisplay struct {
	messenger Messenger
	loc       Location
	view      PollView
}

func (d *messageDisplay) Update(ctx context.Context, t Tally) error {
	view := d.view
	view.Tally = t
	return d.messenger.UpdatePoll(ctx, d.loc, view)
}

func (d *messageDisplay) Remove(ctx context.Context) error {
	return d.messenger.RemovePoll(ctx, d.loc)
}
