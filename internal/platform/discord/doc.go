// Package discord wraps the discordgo session used to grant and revoke
// membership roles.
package discord
