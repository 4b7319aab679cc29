package discord

import (
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevArqf/ChronoCord/application"
	"github.com/DevArqf/ChronoCord/domain/entities"
)

func TestParseColor(t *testing.T) {
	assert.Equal(t, 0x3498db, ParseColor("#3498db"))
	assert.Equal(t, 0x3498db, ParseColor("3498db"))
	assert.Equal(t, 0, ParseColor(""))
	assert.Equal(t, 0, ParseColor("not-a-color"))
}

func makeView(times ...string) application.PollView {
	record := entities.NewPollRecord("Raid night", times, "guild-1", 2)
	record.ChannelID = "chan-1"
	record.MessageID = "msg-1"

	ledger := application.NewLedger(len(times))

	return application.PollView{
		Record:   record,
		Display:  application.DisplayConfig{Color: "#3498db", MaxSelectOptions: 25},
		Tally:    application.ComputeTally(ledger, times),
		CustomID: application.SelectCustomID(record.UID),
	}
}

func TestPollEmbed(t *testing.T) {
	view := makeView("Mon 6pm", "Tue 7pm")

	embed := pollEmbed(view)

	assert.Equal(t, "Raid night", embed.Title)
	assert.Contains(t, embed.Description, "Total selections: **0**")
	assert.Equal(t, 0x3498db, embed.Color)

	require.Len(t, embed.Fields, 2)
	assert.Equal(t, "1. Mon 6pm", embed.Fields[0].Name)
	assert.Contains(t, embed.Fields[0].Value, "0% — **0** votes")
	assert.Contains(t, embed.Fields[0].Value, strings.Repeat("▱", 12))
}

func TestPollEmbed_CustomDescriptionAndFooter(t *testing.T) {
	view := makeView("Mon")
	view.Display.Description = "Pick a slot"
	view.Display.Footer = "Footer text"
	view.Display.ImageURL = "https://example.com/banner.png"

	embed := pollEmbed(view)

	assert.Contains(t, embed.Description, "Pick a slot")
	require.NotNil(t, embed.Footer)
	assert.Equal(t, "Footer text", embed.Footer.Text)
	require.NotNil(t, embed.Image)
	assert.Equal(t, "https://example.com/banner.png", embed.Image.URL)
}

func TestPollSelectRow(t *testing.T) {
	view := makeView("Mon", "Tue", "Wed")

	row, ok := pollSelectRow(view).(discordgo.ActionsRow)
	require.True(t, ok)
	require.Len(t, row.Components, 1)

	menu, ok := row.Components[0].(discordgo.SelectMenu)
	require.True(t, ok)

	assert.Equal(t, view.CustomID, menu.CustomID)
	assert.Equal(t, 2, menu.MaxValues)
	require.Len(t, menu.Options, 3)
	assert.Equal(t, "Mon", menu.Options[0].Label)
	assert.Equal(t, "0", menu.Options[0].Value)
	assert.Equal(t, "2", menu.Options[2].Value)
}

func TestTimesPreview(t *testing.T) {
	assert.Equal(t, "(times unavailable)", timesPreview(nil, 3))
	assert.Equal(t, "a, b", timesPreview([]string{"a", "b"}, 3))
	assert.Equal(t, "a, b, c...", timesPreview([]string{"a", "b", "c", "d"}, 3))
}

func TestListSelectRow(t *testing.T) {
	longTitle := strings.Repeat("x", 120)

	records := []entities.PollRecord{
		{UID: "aaa111bbb222", Title: longTitle, Times: []string{"Mon"}, CreatedAt: time.Now()},
		{UID: "ccc333ddd444", Title: "", Times: []string{"Tue"}, CreatedAt: time.Now()},
	}

	row, ok := listSelectRow(records, "event_end_test", 25).(discordgo.ActionsRow)
	require.True(t, ok)
	menu := row.Components[0].(discordgo.SelectMenu)

	assert.Equal(t, "event_end_test", menu.CustomID)
	require.Len(t, menu.Options, 2)

	// long titles truncate within the platform's 100-char label limit
	assert.Len(t, menu.Options[0].Label, 90)
	assert.True(t, strings.HasSuffix(menu.Options[0].Label, "..."))
	assert.Equal(t, "aaa111bbb222", menu.Options[0].Value)

	// a blank title falls back to the uid
	assert.Equal(t, "ccc333ddd444", menu.Options[1].Label)

	assert.LessOrEqual(t, len(menu.Options[0].Description), 100)
}

func TestListSelectRow_CapsOptions(t *testing.T) {
	var records []entities.PollRecord
	for i := 0; i < 30; i++ {
		records = append(records, entities.PollRecord{
			UID: entities.NewUID(), Title: "t", Times: []string{"Mon"}, CreatedAt: time.Now(),
		})
	}

	row := listSelectRow(records, "event_end_test", 25).(discordgo.ActionsRow)
	menu := row.Components[0].(discordgo.SelectMenu)

	assert.Len(t, menu.Options, 25)
	assert.Equal(t, 25, menu.MaxValues)
}

func TestListEmbed(t *testing.T) {
	records := []entities.PollRecord{
		{UID: "aaa111bbb222", Title: "Raid", Times: []string{"Mon"}, GuildID: "g", ChannelID: "c", MessageID: "m", CreatedAt: time.Now(), MaxVotes: 1},
	}

	embed := listEmbed(records, "#00b0f4", "footer", true)

	assert.Contains(t, embed.Description, "**1** ongoing event(s)")
	assert.Contains(t, embed.Description, "Select one or more events")
	require.Len(t, embed.Fields, 1)
	assert.Contains(t, embed.Fields[0].Value, "`aaa111bbb222`")
	assert.Contains(t, embed.Fields[0].Value, "https://discord.com/channels/g/c/m")

	// without the hint the end instructions disappear
	embed = listEmbed(records, "#00b0f4", "footer", false)
	assert.NotContains(t, embed.Description, "Select one or more events")
}

func TestSettingsEmbed(t *testing.T) {
	embed := settingsEmbed(entities.GuildSettings{}, false, "#3498db")
	assert.Contains(t, embed.Description, "No custom settings")
	assert.Empty(t, embed.Fields)

	settings := entities.GuildSettings{
		GuildID:         "g",
		EventRoleIDs:    []string{"r1"},
		RequireManage:   true,
		DefaultMaxVotes: 3,
	}
	embed = settingsEmbed(settings, true, "#3498db")
	require.Len(t, embed.Fields, 3)
	assert.Contains(t, embed.Fields[0].Value, "<@&r1>")
	assert.Equal(t, "true", embed.Fields[1].Value)
	assert.Equal(t, "3", embed.Fields[2].Value)
}
