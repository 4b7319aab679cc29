package discord

import (
	"github.com/bwmarrin/discordgo"
)

var one = 1.0

// Commands is the slash-command schema registered with Discord. Guild-scoped
// in dev mode, global otherwise.
var Commands = []*discordgo.ApplicationCommand{
	{
		Name:        "event",
		Description: "Create/list/modify availability polls",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "create",
				Description: "Create a new event poll",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "title",
						Description: "Event name",
						Required:    true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "times",
						Description: "Comma-separated times and dates",
						Required:    true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "maxvotes",
						Description: "Max slots each member can vote for (default 1)",
						MinValue:    &one,
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "embed_color",
						Description: "Embed color hex (optional)",
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "embed_description",
						Description: "Embed description (optional)",
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "embed_footer",
						Description: "Embed footer text (optional)",
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "embed_image",
						Description: "Embed image URL (optional)",
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "list",
				Description: "List ongoing events for this server",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "end",
				Description: "End a poll by its UID",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "uid",
						Description: "The UID of the poll to end",
						Required:    true,
					},
				},
			},
		},
	},
	{
		Name:        "setup",
		Description: "Configure the bot for your server",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "role",
				Description: "Set or clear a role allowed to run /event commands",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionRole,
						Name:        "role",
						Description: "Role allowed to use event commands (leave empty to clear)",
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "require-manage",
				Description: "Require Manage Server permission to run /event commands",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionBoolean,
						Name:        "enabled",
						Description: "True to require Manage Server, false to disable",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "defaults",
				Description: "Set default values for polls (server-wide)",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "maxvotes",
						Description: "Default max votes per member for new polls (1..25)",
						MinValue:    &one,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "view",
				Description: "View current server settings",
			},
		},
	},
}
