package bot

import "github.com/bwmarrin/discordgo"

// Command and option names.
const (
	CommandVerify = "verify"
	CommandLink   = "link"
	CommandUnlink = "unlink"
	// CommandAddChannel registers a YouTube channel. Limited to members who can manage roles.
	CommandAddChannel = "addchannel"

	optionChannel    = "channel"
	optionScreenshot = "screenshot"

	optionYouTubeChannel = "youtube_channel_id"
	optionTitle          = "title"
	optionMembersVideo   = "members_video_id"
	optionRole           = "role"
)

// maxChoices is Discord's limit on autocomplete suggestions.
const maxChoices = 25

// Commands returns the slash commands the bot registers.
func Commands() []*discordgo.ApplicationCommand {
	dmPermission := false
	manageRoles := int64(discordgo.PermissionManageRoles)
	return []*discordgo.ApplicationCommand{
		{
			Name:         CommandVerify,
			Description:  "Verify your YouTube channel membership",
			DMPermission: &dmPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         optionChannel,
					Description:  "The channel you are a member of",
					Required:     true,
					Autocomplete: true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionAttachment,
					Name:        optionScreenshot,
					Description: "Screenshot of your membership page. Leave empty to use your linked YouTube account",
				},
			},
		},
		{
			Name:         CommandLink,
			Description:  "Link your YouTube account for automatic verification",
			DMPermission: &dmPermission,
		},
		{
			Name:         CommandUnlink,
			Description:  "Forget your linked YouTube account",
			DMPermission: &dmPermission,
		},
		{
			Name:                     CommandAddChannel,
			Description:              "Give a role to members of a YouTube channel",
			DMPermission:             &dmPermission,
			DefaultMemberPermissions: &manageRoles,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        optionYouTubeChannel,
					Description: "YouTube channel ID (starts with UC)",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        optionTitle,
					Description: "Channel name as it appears on the membership page",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        optionMembersVideo,
					Description: "ID of a members-only video on the channel",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionRole,
					Name:        optionRole,
					Description: "Role given to verified members",
					Required:    true,
				},
			},
		},
	}
}
