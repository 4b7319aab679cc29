package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DevArqf/ChronoCord/application"
	"github.com/DevArqf/ChronoCord/config"
	"github.com/DevArqf/ChronoCord/domain/services"
)

const (
	// listWindowDuration bounds how long an /event list menu accepts
	// selections; votes on polls themselves are never time-bounded.
	listWindowDuration = 5 * time.Minute

	listMenuPrefix = "event_end_"

	errorReply = "❌ There was an error executing this command!"
)

// listWindow tracks one live /event list select menu until it expires.
type listWindow struct {
	invokerID string
	guildID   string
	location  application.Location
	timer     *time.Timer
}

// Gateway adapts the Discord gateway to the application core: it registers
// the command schema, routes interactions to App operations and implements
// application.Messenger for display refreshes.
type Gateway struct {
	session *discordgo.Session
	app     *application.App
	cfg     *config.Config
	logger  *zap.Logger

	mu        sync.Mutex
	listMenus map[string]*listWindow
}

func New(cfg *config.Config, logger *zap.Logger) (*Gateway, error) {
	session, err := discordgo.New("Bot " + cfg.GetDiscordToken())
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds

	return &Gateway{
		session:   session,
		cfg:       cfg,
		logger:    logger,
		listMenus: make(map[string]*listWindow),
	}, nil
}

// Attach binds the application core. Must be called before Start.
func (g *Gateway) Attach(app *application.App) {
	g.app = app
}

// Start opens the gateway connection and registers the command schema.
func (g *Gateway) Start() error {
	g.session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		g.logger.Info("logged in", zap.String("user", r.User.Username+"#"+r.User.Discriminator))
	})
	g.session.AddHandler(g.onInteraction)

	if err := g.session.Open(); err != nil {
		return fmt.Errorf("opening gateway connection: %w", err)
	}

	if err := g.registerCommands(); err != nil {
		g.session.Close()
		return err
	}

	return nil
}

func (g *Gateway) Close() error {
	g.mu.Lock()
	for id, w := range g.listMenus {
		w.timer.Stop()
		delete(g.listMenus, id)
	}
	g.mu.Unlock()

	return g.session.Close()
}

func (g *Gateway) registerCommands() error {
	appID := g.cfg.GetDiscordAppID()
	if appID == "" && g.session.State.User != nil {
		appID = g.session.State.User.ID
	}

	guildID := ""
	if g.cfg.DevMode() {
		guildID = g.cfg.GetDevGuildID()
		g.logger.Info("dev mode: registering guild commands", zap.String("guild_id", guildID))
	}

	if _, err := g.session.ApplicationCommandBulkOverwrite(appID, guildID, Commands); err != nil {
		return fmt.Errorf("registering commands: %w", err)
	}

	return nil
}

// UpdatePoll implements application.Messenger.
func (g *Gateway) UpdatePoll(_ context.Context, loc application.Location, view application.PollView) error {
	embeds := []*discordgo.MessageEmbed{pollEmbed(view)}
	components := []discordgo.MessageComponent{pollSelectRow(view)}

	_, err := g.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    loc.ChannelID,
		ID:         loc.MessageID,
		Embeds:     &embeds,
		Components: &components,
	})
	return err
}

// RemovePoll implements application.Messenger.
func (g *Gateway) RemovePoll(_ context.Context, loc application.Location) error {
	return g.session.ChannelMessageDelete(loc.ChannelID, loc.MessageID)
}

func (g *Gateway) onInteraction(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		switch data.Name {
		case "event":
			g.handleEvent(i, data)
		case "setup":
			g.handleSetup(i, data)
		}
	case discordgo.InteractionMessageComponent:
		g.handleComponent(i)
	}
}

func (g *Gateway) handleEvent(i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	if len(data.Options) == 0 {
		return
	}
	sub := data.Options[0]
	opts := optionMap(sub.Options)

	switch sub.Name {
	case "create":
		g.handleCreate(i, opts)
	case "list":
		g.handleList(i)
	case "end":
		g.handleEnd(i, opts)
	default:
		g.reply(i, "Unknown subcommand", true)
	}
}

func (g *Gateway) handleCreate(i *discordgo.InteractionCreate, opts optionIndex) {
	in := application.CreatePollInput{
		GuildID:   i.GuildID,
		ChannelID: i.ChannelID,
		Title:     opts.String("title"),
		TimesRaw:  opts.String("times"),
		MaxVotes:  opts.Int("maxvotes"),
		Overrides: application.DisplayOverrides{
			ColorHex:    opts.String("embed_color"),
			Description: opts.String("embed_description"),
			Footer:      opts.String("embed_footer"),
			ImageURL:    opts.String("embed_image"),
		},
	}

	session, err := g.app.CreatePoll(context.Background(), callerFrom(i), in, g.pollSender(i))
	if err != nil {
		g.reply(i, createErrorText(err), true)
		return
	}

	// ephemeral notify with the UID and a jump link, best effort
	notify := notifyEmbed(session.Record, g.app.Defaults().NotifyColor)
	_, err = g.session.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{notify},
		Flags:  discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		g.logger.Warn("creation notify failed", zap.String("uid", session.Record.UID), zap.Error(err))
	}
}

func createErrorText(err error) string {
	switch {
	case errors.Is(err, application.ErrNotAuthorized):
		return "You are not allowed to use /event create in this server."
	case errors.Is(err, application.ErrNoOptions):
		return "No valid times provided."
	case errors.Is(err, application.ErrTooManyOptions):
		return "Too many timeslots (>25). Reduce the number of times."
	case application.IsStoreUnavailable(err):
		return "Failed to save the poll. Try again later."
	default:
		return errorReply
	}
}

// pollSender binds the initial poll delivery to the invoking interaction.
// When the effective vote cap exceeds one, an ephemeral warning goes out
// first and the poll message becomes a follow-up. If the interaction reply
// fails entirely, the poll is posted directly to the channel and the record
// keeps that fallback location.
func (g *Gateway) pollSender(i *discordgo.InteractionCreate) application.SendFunc {
	return func(_ context.Context, view application.PollView) (application.Location, error) {
		embeds := []*discordgo.MessageEmbed{pollEmbed(view)}
		components := []discordgo.MessageComponent{pollSelectRow(view)}

		var (
			msg *discordgo.Message
			err error
		)

		if view.Record.MaxVotes > 1 {
			warning := fmt.Sprintf("⚠️ Members can vote for up to %d slots.", view.Record.MaxVotes)
			if err = g.respond(i, warning, true); err == nil {
				msg, err = g.session.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
					Embeds:     embeds,
					Components: components,
				})
			}
		} else {
			err = g.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
				Type: discordgo.InteractionResponseChannelMessageWithSource,
				Data: &discordgo.InteractionResponseData{
					Embeds:     embeds,
					Components: components,
				},
			})
			if err == nil {
				msg, err = g.session.InteractionResponse(i.Interaction)
			}
		}

		if err != nil || msg == nil {
			g.logger.Warn("interaction reply failed, falling back to channel send",
				zap.String("channel_id", i.ChannelID),
				zap.Error(err))

			msg, err = g.session.ChannelMessageSendComplex(i.ChannelID, &discordgo.MessageSend{
				Embeds:     embeds,
				Components: components,
			})
			if err != nil {
				return application.Location{}, err
			}

			g.followup(i, "Posted poll to channel (could not reply to the interaction).", true)
		}

		return application.Location{ChannelID: msg.ChannelID, MessageID: msg.ID}, nil
	}
}

func (g *Gateway) handleList(i *discordgo.InteractionCreate) {
	ctx := context.Background()

	records, err := g.app.ListPolls(ctx, callerFrom(i), i.GuildID)
	if err != nil {
		if errors.Is(err, application.ErrNotAuthorized) {
			g.reply(i, "You are not allowed to use /event list in this server.", true)
			return
		}
		g.reply(i, "Failed to fetch events.", true)
		return
	}

	if len(records) == 0 {
		g.reply(i, "No ongoing events found for this server.", true)
		return
	}

	defaults := g.app.Defaults()
	menuID := listMenuPrefix + uuid.NewString()
	embed := listEmbed(records, defaults.ListColor, defaults.Footer, true)
	row := listSelectRow(records, menuID, defaults.MaxSelectOptions)

	err = g.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: []discordgo.MessageComponent{row},
		},
	})
	if err != nil {
		g.logger.Warn("list reply failed", zap.Error(err))
		return
	}

	msg, err := g.session.InteractionResponse(i.Interaction)
	if err != nil {
		g.logger.Warn("fetching list message failed", zap.Error(err))
		return
	}

	w := &listWindow{
		invokerID: callerID(i),
		guildID:   i.GuildID,
		location:  application.Location{ChannelID: msg.ChannelID, MessageID: msg.ID},
	}
	w.timer = time.AfterFunc(listWindowDuration, func() { g.expireListMenu(menuID) })

	g.mu.Lock()
	g.listMenus[menuID] = w
	g.mu.Unlock()
}

// expireListMenu disables the end-selection menu once its window closes.
// Votes already applied through it stand.
func (g *Gateway) expireListMenu(menuID string) {
	g.mu.Lock()
	w, ok := g.listMenus[menuID]
	if ok {
		delete(g.listMenus, menuID)
	}
	g.mu.Unlock()
	if !ok {
		return
	}

	components := []discordgo.MessageComponent{}
	_, err := g.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    w.location.ChannelID,
		ID:         w.location.MessageID,
		Components: &components,
	})
	if err != nil {
		g.logger.Debug("disabling expired list menu failed", zap.Error(err))
	}
}

func (g *Gateway) handleEnd(i *discordgo.InteractionCreate, opts optionIndex) {
	uid := strings.TrimSpace(opts.String("uid"))
	if uid == "" {
		g.reply(i, "Please provide a valid UID.", true)
		return
	}

	record, err := g.app.EndPoll(context.Background(), callerFrom(i), i.GuildID, uid)
	if err != nil {
		var notFound services.PollNotFound
		switch {
		case errors.Is(err, application.ErrNotAuthorized):
			g.reply(i, "You are not allowed to use /event end in this server.", true)
		case errors.As(err, &notFound):
			g.reply(i, fmt.Sprintf("No event with UID `%s` found in this server.", uid), true)
		case application.IsStoreUnavailable(err):
			g.reply(i, "Failed to delete event from database.", true)
		default:
			g.reply(i, errorReply, true)
		}
		return
	}

	g.replyEmbed(i, endedEmbed(record, g.app.Defaults().NotifyColor), false)
}

func (g *Gateway) handleComponent(i *discordgo.InteractionCreate) {
	data := i.MessageComponentData()

	if uid, ok := application.PollUIDFromCustomID(data.CustomID); ok {
		g.handleVote(i, uid, data.Values)
		return
	}

	if strings.HasPrefix(data.CustomID, listMenuPrefix) {
		g.handleEndSelection(i, data)
	}
}

func (g *Gateway) handleVote(i *discordgo.InteractionCreate, uid string, values []string) {
	// acknowledge before mutating so the platform never times the
	// interaction out behind a slow refresh
	err := g.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
	if err != nil {
		g.logger.Debug("vote ack failed", zap.String("uid", uid), zap.Error(err))
	}

	if err := g.app.SubmitVote(uid, callerID(i), values); err != nil {
		if errors.Is(err, application.ErrSessionEnded) {
			g.followup(i, "This poll is no longer accepting votes.", true)
			return
		}
		g.logger.Warn("vote handling failed", zap.String("uid", uid), zap.Error(err))
	}
}

func (g *Gateway) handleEndSelection(i *discordgo.InteractionCreate, data discordgo.MessageComponentInteractionData) {
	g.mu.Lock()
	w, ok := g.listMenus[data.CustomID]
	g.mu.Unlock()

	if !ok {
		g.reply(i, "This menu has expired. Run /event list again.", true)
		return
	}

	caller := callerFrom(i)
	isInvoker := caller.UserID == w.invokerID
	isDev := g.cfg.GetDevUserID() != "" && caller.UserID == g.cfg.GetDevUserID()
	if !isInvoker && !caller.CanManage && !isDev {
		g.reply(i, "You do not have permission to end events.", true)
		return
	}

	err := g.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
	if err != nil {
		g.logger.Debug("end-selection ack failed", zap.Error(err))
	}

	ctx := context.Background()
	deleted, failed := g.app.EndPolls(ctx, w.guildID, data.Values)

	// refresh the listing to reflect what remains
	records, err := g.app.Polls(ctx, w.guildID)
	if err != nil {
		g.logger.Warn("refreshing list after delete failed", zap.Error(err))
	} else {
		defaults := g.app.Defaults()
		embeds := []*discordgo.MessageEmbed{listEmbed(records, defaults.ListColor, defaults.Footer, false)}
		components := []discordgo.MessageComponent{}
		if len(records) > 0 {
			components = append(components, listSelectRow(records, data.CustomID, defaults.MaxSelectOptions))
		}
		_, err = g.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
			Channel:    w.location.ChannelID,
			ID:         w.location.MessageID,
			Embeds:     &embeds,
			Components: &components,
		})
		if err != nil {
			g.logger.Debug("editing list message failed", zap.Error(err))
		}
	}

	var lines []string
	if len(deleted) > 0 {
		lines = append(lines, "`✅` Deleted: "+backtickList(deleted))
	}
	if len(failed) > 0 {
		lines = append(lines, "`❌` Failed: "+backtickList(failed))
	}
	if len(lines) == 0 {
		lines = append(lines, "No events were deleted.")
	}

	g.followup(i, strings.Join(lines, "\n"), false)
}

func (g *Gateway) handleSetup(i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	if len(data.Options) == 0 {
		return
	}
	sub := data.Options[0]
	opts := optionMap(sub.Options)
	caller := callerFrom(i)
	ctx := context.Background()

	switch sub.Name {
	case "role":
		roleID := ""
		if opt, ok := opts["role"]; ok {
			if role := opt.RoleValue(g.session, i.GuildID); role != nil {
				roleID = role.ID
			}
		}
		if err := g.app.SetEventRole(ctx, caller, i.GuildID, roleID); err != nil {
			g.reply(i, setupErrorText(err), true)
			return
		}
		if roleID == "" {
			g.reply(i, "Event role cleared.", false)
			return
		}
		g.reply(i, fmt.Sprintf("Role <@&%s> may now use the /event commands.", roleID), false)

	case "require-manage":
		enabled := opts.Bool("enabled")
		if err := g.app.SetRequireElevated(ctx, caller, i.GuildID, enabled); err != nil {
			g.reply(i, setupErrorText(err), true)
			return
		}
		g.reply(i, fmt.Sprintf("Require Manage Server set to %t.", enabled), false)

	case "defaults":
		maxVotes := opts.Int("maxvotes")
		if err := g.app.SetDefaultMaxVotes(ctx, caller, i.GuildID, maxVotes); err != nil {
			if errors.Is(err, application.ErrMaxVotesOutOfRange) {
				g.reply(i, "maxvotes must be between 1 and 25.", true)
				return
			}
			g.reply(i, setupErrorText(err), true)
			return
		}
		if maxVotes > 0 {
			g.reply(i, fmt.Sprintf("Defaults updated. Default max votes: %d", maxVotes), false)
			return
		}
		g.reply(i, "Defaults updated. Default max votes cleared.", false)

	case "view":
		settings, found, err := g.app.ViewSettings(ctx, caller, i.GuildID)
		if err != nil {
			g.reply(i, setupErrorText(err), true)
			return
		}
		g.replyEmbed(i, settingsEmbed(settings, found, g.app.Defaults().Color), false)

	default:
		g.reply(i, "Unknown subcommand.", true)
	}
}

func setupErrorText(err error) string {
	switch {
	case errors.Is(err, application.ErrNotAuthorized):
		return "Administrator permission required."
	case application.IsStoreUnavailable(err):
		return "Failed to update settings."
	default:
		return errorReply
	}
}

func backtickList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = "`" + item + "`"
	}
	return strings.Join(quoted, ", ")
}

// respond sends the initial interaction reply.
func (g *Gateway) respond(i *discordgo.InteractionCreate, content string, ephemeral bool) error {
	data := &discordgo.InteractionResponseData{Content: content}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return g.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

// reply responds to the interaction, falling back to a follow-up when the
// initial response was already used.
func (g *Gateway) reply(i *discordgo.InteractionCreate, content string, ephemeral bool) {
	if err := g.respond(i, content, ephemeral); err != nil {
		g.followup(i, content, ephemeral)
	}
}

func (g *Gateway) replyEmbed(i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, ephemeral bool) {
	data := &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	err := g.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		params := &discordgo.WebhookParams{Embeds: []*discordgo.MessageEmbed{embed}}
		if ephemeral {
			params.Flags = discordgo.MessageFlagsEphemeral
		}
		if _, err := g.session.FollowupMessageCreate(i.Interaction, true, params); err != nil {
			g.logger.Debug("embed reply failed", zap.Error(err))
		}
	}
}

func (g *Gateway) followup(i *discordgo.InteractionCreate, content string, ephemeral bool) {
	params := &discordgo.WebhookParams{Content: content}
	if ephemeral {
		params.Flags = discordgo.MessageFlagsEphemeral
	}
	if _, err := g.session.FollowupMessageCreate(i.Interaction, true, params); err != nil {
		g.logger.Debug("follow-up failed", zap.Error(err))
	}
}

type optionIndex map[string]*discordgo.ApplicationCommandInteractionDataOption

func optionMap(opts []*discordgo.ApplicationCommandInteractionDataOption) optionIndex {
	m := make(optionIndex, len(opts))
	for _, opt := range opts {
		m[opt.Name] = opt
	}
	return m
}

func (m optionIndex) String(name string) string {
	if opt, ok := m[name]; ok {
		return opt.StringValue()
	}
	return ""
}

func (m optionIndex) Int(name string) int {
	if opt, ok := m[name]; ok {
		return int(opt.IntValue())
	}
	return 0
}

func (m optionIndex) Bool(name string) bool {
	if opt, ok := m[name]; ok {
		return opt.BoolValue()
	}
	return false
}

func callerID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func callerFrom(i *discordgo.InteractionCreate) application.Caller {
	c := application.Caller{
		UserID:  callerID(i),
		GuildID: i.GuildID,
	}
	if i.Member != nil {
		c.RoleIDs = i.Member.Roles
		c.CanManage = i.Member.Permissions&(discordgo.PermissionManageServer|discordgo.PermissionAdministrator) != 0
		c.IsAdmin = i.Member.Permissions&discordgo.PermissionAdministrator != 0
	}
	return c
}
