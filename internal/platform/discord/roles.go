package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

// ErrMemberNotInGuild is returned when granting a role to a user who is not in the guild.
var ErrMemberNotInGuild = errors.New("user is not a member of the guild")

// roleSession is the part of *discordgo.Session used by RoleManager.
type roleSession interface {
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
}

// RoleManager grants and revokes guild roles.
type RoleManager struct {
	session roleSession
	logger  *slog.Logger
}

// NewRoleManager creates a RoleManager on top of a discordgo session.
func NewRoleManager(session *discordgo.Session, logger *slog.Logger) *RoleManager {
	return newRoleManager(session, logger)
}

func newRoleManager(session roleSession, logger *slog.Logger) *RoleManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &RoleManager{
		session: session,
		logger:  logger.With("component", "role_manager"),
	}
}

// GrantRole adds roleID to the user. Granting a role the user already has is a no-op on Discord's side.
func (m *RoleManager) GrantRole(ctx context.Context, guildID, userID, roleID string) error {
	err := m.session.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx))
	if err != nil {
		if isUnknownMember(err) {
			return ErrMemberNotInGuild
		}
		return fmt.Errorf("failed to grant role %s: %w", roleID, err)
	}

	m.logger.InfoContext(ctx, "role granted",
		"guild_id", guildID,
		"user_id", userID,
		"role_id", roleID)
	return nil
}

// RevokeRole removes roleID from the user. A user who already left the guild
// has no role to remove, so that case succeeds.
func (m *RoleManager) RevokeRole(ctx context.Context, guildID, userID, roleID string) error {
	err := m.session.GuildMemberRoleRemove(guildID, userID, roleID, discordgo.WithContext(ctx))
	if err != nil {
		if isUnknownMember(err) {
			m.logger.InfoContext(ctx, "user left guild before role revocation",
				"guild_id", guildID,
				"user_id", userID)
			return nil
		}
		return fmt.Errorf("failed to revoke role %s: %w", roleID, err)
	}

	m.logger.InfoContext(ctx, "role revoked",
		"guild_id", guildID,
		"user_id", userID,
		"role_id", roleID)
	return nil
}

func isUnknownMember(err error) bool {
	var restErr *discordgo.RESTError
	return errors.As(err, &restErr) &&
		restErr.Message != nil &&
		restErr.Message.Code == discordgo.ErrCodeUnknownMember
}
