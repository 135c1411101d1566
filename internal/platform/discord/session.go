package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// NewSession creates a bot session. The connection is opened by the caller.
func NewSession(botToken string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds
	return s, nil
}
