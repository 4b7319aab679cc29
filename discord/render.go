package discord

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/DevArqf/ChronoCord/application"
	"github.com/DevArqf/ChronoCord/domain/entities"
)

const defaultPollDescription = "Select the times you're available."

// ParseColor converts a normalized "#rrggbb" string to the integer color
// Discord embeds use. Unparseable input renders as 0 (no color).
func ParseColor(hex string) int {
	hex = strings.TrimPrefix(hex, "#")
	v, err := strconv.ParseInt(hex, 16, 32)
	if err != nil {
		return 0
	}
	return int(v)
}

func jumpLink(record entities.PollRecord) string {
	return fmt.Sprintf("https://discord.com/channels/%s/%s/%s", record.GuildID, record.ChannelID, record.MessageID)
}

func pollEmbed(view application.PollView) *discordgo.MessageEmbed {
	description := view.Display.Description
	if description == "" {
		description = defaultPollDescription
	}

	embed := &discordgo.MessageEmbed{
		Title:       view.Record.Title,
		Description: fmt.Sprintf("%s\n\nTotal selections: **%d**", description, view.Tally.TotalSelections),
		Color:       ParseColor(view.Display.Color),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}

	if view.Display.Footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: view.Display.Footer}
	}
	if view.Display.ImageURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: view.Display.ImageURL}
	}

	for i, opt := range view.Tally.Options {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   fmt.Sprintf("%d. %s", i+1, opt.Label),
			Value:  fmt.Sprintf("%s %d%% — **%d** votes", opt.Bar, opt.Percent, opt.Count),
			Inline: false,
		})
	}

	return embed
}

func pollSelectRow(view application.PollView) discordgo.MessageComponent {
	options := make([]discordgo.SelectMenuOption, len(view.Record.Times))
	for i, t := range view.Record.Times {
		options[i] = discordgo.SelectMenuOption{
			Label:       t,
			Value:       strconv.Itoa(i),
			Description: "Vote for " + t,
		}
	}

	minValues := 1

	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				MenuType:    discordgo.StringSelectMenu,
				CustomID:    view.CustomID,
				Placeholder: "Select times you are available",
				MinValues:   &minValues,
				MaxValues:   view.Record.MaxVotes,
				Options:     options,
			},
		},
	}
}

func notifyEmbed(record entities.PollRecord, notifyColor string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Poll Created",
		Description: "Your availability poll has been created. Share the link below or use the UID to reference it.",
		Color:       ParseColor(notifyColor),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "UID", Value: fmt.Sprintf("`%s`", record.UID), Inline: true},
			{Name: "Jump to poll", Value: fmt.Sprintf("[Open poll](%s)", jumpLink(record)), Inline: true},
			{Name: "Channel", Value: fmt.Sprintf("<#%s>", record.ChannelID), Inline: true},
		},
	}
}

func endedEmbed(record entities.PollRecord, notifyColor string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Poll Ended",
		Description: fmt.Sprintf("The poll with UID `%s` has been ended and removed.", record.UID),
		Color:       ParseColor(notifyColor),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Title", Value: record.Title, Inline: true},
			{Name: "Channel", Value: fmt.Sprintf("<#%s>", record.ChannelID), Inline: true},
			{Name: "Max votes", Value: strconv.Itoa(record.MaxVotes), Inline: true},
		},
	}
}

func timesPreview(times []string, limit int) string {
	if len(times) == 0 {
		return "(times unavailable)"
	}
	if len(times) <= limit {
		return strings.Join(times, ", ")
	}
	return strings.Join(times[:limit], ", ") + "..."
}

func listEmbed(records []entities.PollRecord, listColor, footer string, withHint bool) *discordgo.MessageEmbed {
	description := fmt.Sprintf("Found **%d** ongoing event(s) for this server.", len(records))
	if withHint {
		description += "\n\nSelect one or more events below to end (delete) them."
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Ongoing Events",
		Description: description,
		Color:       ParseColor(listColor),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	if footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: footer}
	}

	for _, r := range records {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: r.Title,
			Value: fmt.Sprintf("• UID: `%s`\n• Max votes: **%d**\n• Times: %s\n• Channel: <#%s>\n• Created: <t:%d:f>\n[Jump to poll](%s)",
				r.UID, r.MaxVotes, timesPreview(r.Times, 5), r.ChannelID, r.CreatedAt.Unix(), jumpLink(r)),
			Inline: false,
		})
	}

	return embed
}

func listSelectRow(records []entities.PollRecord, customID string, maxOptions int) discordgo.MessageComponent {
	if len(records) > maxOptions {
		records = records[:maxOptions]
	}

	options := make([]discordgo.SelectMenuOption, len(records))
	for i, r := range records {
		label := r.Title
		if label == "" {
			label = r.UID
		}
		if len(label) > 90 {
			label = label[:87] + "..."
		}

		description := fmt.Sprintf("%s • %s • %s", r.UID, timesPreview(r.Times, 3), r.CreatedAt.Format("2006-01-02"))
		if len(description) > 100 {
			description = description[:100]
		}

		options[i] = discordgo.SelectMenuOption{
			Label:       label,
			Value:       r.UID,
			Description: description,
		}
	}

	minValues := 1

	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				MenuType:    discordgo.StringSelectMenu,
				CustomID:    customID,
				Placeholder: "Select event(s) to end",
				MinValues:   &minValues,
				MaxValues:   len(options),
				Options:     options,
			},
		},
	}
}

func settingsEmbed(settings entities.GuildSettings, found bool, color string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:     "Server Settings",
		Color:     ParseColor(color),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if !found {
		embed.Description = "No custom settings stored. Defaults are in effect."
		return embed
	}

	roleList := "None (all members allowed unless require-manage enabled)"
	if len(settings.EventRoleIDs) > 0 {
		mentions := make([]string, len(settings.EventRoleIDs))
		for i, id := range settings.EventRoleIDs {
			mentions[i] = fmt.Sprintf("<@&%s>", id)
		}
		roleList = strings.Join(mentions, ", ")
	}

	defaultMax := "Not set"
	if settings.DefaultMaxVotes > 0 {
		defaultMax = strconv.Itoa(settings.DefaultMaxVotes)
	}

	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Allowed Role(s)", Value: roleList, Inline: false},
		{Name: "Require Manage Server", Value: strconv.FormatBool(settings.RequireManage), Inline: true},
		{Name: "Default Max Votes", Value: defaultMax, Inline: true},
	}

	return embed
}
