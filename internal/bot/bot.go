package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/phrazzld/memberguard/internal/config"
	"github.com/phrazzld/memberguard/internal/platform/logger"
	"github.com/phrazzld/memberguard/internal/service"
)

// interactionTimeout bounds the work done for one slash command. Deferred
// interaction tokens stay valid for 15 minutes.
const interactionTimeout = 5 * time.Minute

// StateTokenIssuer issues OAuth state tokens for Discord users.
type StateTokenIssuer interface {
	GenerateStateToken(ctx context.Context, discordUserID string) (string, error)
}

// ConsentURLBuilder builds the Google consent URL for an OAuth state.
type ConsentURLBuilder interface {
	AuthURL(state string) string
}

// interactionSession is the part of *discordgo.Session used to answer interactions.
type interactionSession interface {
	InteractionRespond(
		interaction *discordgo.Interaction,
		resp *discordgo.InteractionResponse,
		options ...discordgo.RequestOption,
	) error
	InteractionResponseEdit(
		interaction *discordgo.Interaction,
		newresp *discordgo.WebhookEdit,
		options ...discordgo.RequestOption,
	) (*discordgo.Message, error)
}

// Bot answers memberguard slash commands.
type Bot struct {
	session      *discordgo.Session
	memberships  service.MembershipService
	states       StateTokenIssuer
	consent      ConsentURLBuilder
	cfg          config.DiscordConfig
	client       *http.Client
	logger       *slog.Logger
	removeHandle func()

	// ctx is the lifecycle context interactions derive from.
	ctx    context.Context
	cancel context.CancelFunc

	// mu guards stopping; wg.Add only happens while holding it.
	mu       sync.Mutex
	stopping bool
	wg       sync.WaitGroup
}

// New creates a Bot. The session is opened by Start.
func New(
	session *discordgo.Session,
	memberships service.MembershipService,
	states StateTokenIssuer,
	consent ConsentURLBuilder,
	cfg config.DiscordConfig,
	logger *slog.Logger,
) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		session:     session,
		memberships: memberships,
		states:      states,
		consent:     consent,
		cfg:         cfg,
		client:      &http.Client{Timeout: 30 * time.Second},
		logger:      logger.With("component", "discord_bot"),
	}
}

// Start opens the gateway connection and registers the slash commands.
func (b *Bot) Start(ctx context.Context) error {
	b.ctx, b.cancel = context.WithCancel(context.WithoutCancel(ctx))
	b.removeHandle = b.session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if !b.admit() {
			return
		}
		defer b.wg.Done()
		b.handleInteraction(s, i.Interaction)
	})

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}

	cmds, err := b.session.ApplicationCommandBulkOverwrite(
		b.cfg.AppID, b.cfg.GuildID, Commands(), discordgo.WithContext(ctx))
	if err != nil {
		_ = b.session.Close()
		return fmt.Errorf("failed to register slash commands: %w", err)
	}

	b.logger.InfoContext(ctx, "discord bot started",
		"commands", len(cmds),
		"guild_id", b.cfg.GuildID)
	return nil
}

// Stop cancels running interactions, waits for them and closes the session.
func (b *Bot) Stop() error {
	b.drain()
	return b.session.Close()
}

// drain stops admitting interactions and waits for the admitted ones.
func (b *Bot) drain() {
	b.mu.Lock()
	b.stopping = true
	b.mu.Unlock()

	if b.cancel != nil {
		b.cancel()
	}
	if b.removeHandle != nil {
		b.removeHandle()
	}
	b.wg.Wait()
}

// admit registers an interaction with the wait group unless Stop has begun.
// Interactions arriving after that are dropped.
func (b *Bot) admit() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopping {
		return false
	}
	b.wg.Add(1)
	return true
}

func (b *Bot) baseContext() context.Context {
	if b.ctx != nil {
		return b.ctx
	}
	return context.Background()
}

// handleInteraction dispatches a single interaction. Errors are reported to
// the user and logged; nothing propagates back to discordgo.
func (b *Bot) handleInteraction(s interactionSession, i *discordgo.Interaction) {
	ctx, cancel := context.WithTimeout(b.baseContext(), interactionTimeout)
	defer cancel()

	log := b.logger.With(
		"interaction_id", i.ID,
		"guild_id", i.GuildID,
		"trace_id", uuid.NewString())
	ctx = logger.WithLogger(ctx, log)

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		log = log.With("command", data.Name)
		ctx = logger.WithLogger(ctx, log)

		switch data.Name {
		case CommandVerify:
			b.handleVerify(ctx, s, i)
		case CommandLink:
			b.handleLink(ctx, s, i)
		case CommandUnlink:
			b.handleUnlink(ctx, s, i)
		case CommandAddChannel:
			b.handleAddChannel(ctx, s, i)
		default:
			log.WarnContext(ctx, "unknown command")
		}
	case discordgo.InteractionApplicationCommandAutocomplete:
		b.handleAutocomplete(ctx, s, i)
	}
}

func (b *Bot) handleVerify(ctx context.Context, s interactionSession, i *discordgo.Interaction) {
	log := logger.FromContext(ctx)

	userID := interactionUserID(i)
	if userID == "" {
		return
	}

	data := i.ApplicationCommandData()
	opts := optionMap(data.Options)

	// OCR can take longer than the three seconds Discord allows for a reply.
	if err := s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	}, discordgo.WithContext(ctx)); err != nil {
		log.ErrorContext(ctx, "failed to defer verify response", "error", err)
		return
	}

	reply := b.verify(ctx, userID, opts, data.Resolved)
	if _, err := s.InteractionResponseEdit(i, &discordgo.WebhookEdit{Content: &reply},
		discordgo.WithContext(ctx)); err != nil {
		log.ErrorContext(ctx, "failed to send verify result", "error", err)
	}
}

// verify runs the verification and returns the reply text.
func (b *Bot) verify(
	ctx context.Context,
	userID string,
	opts map[string]*discordgo.ApplicationCommandInteractionDataOption,
	resolved *discordgo.ApplicationCommandInteractionDataResolved,
) string {
	log := logger.FromContext(ctx).With("discord_user_id", userID)

	channelOpt, ok := opts[optionChannel]
	if !ok {
		return userMessage(service.ErrInvalidInput)
	}
	channelID, err := uuid.Parse(channelOpt.StringValue())
	if err != nil {
		return userMessage(service.ErrInvalidInput)
	}

	var verifyErr error
	var method string
	if screenshotOpt, ok := opts[optionScreenshot]; ok {
		method = "screenshot"
		attachment := resolveAttachment(resolved, screenshotOpt)
		if attachment == nil {
			return userMessage(errNotAnImage)
		}
		image, mimeType, err := download(ctx, b.client, attachment)
		if err != nil {
			log.InfoContext(ctx, "screenshot download rejected", "error", err)
			return userMessage(err)
		}
		_, verifyErr = b.memberships.VerifyScreenshot(ctx, userID, channelID, image, mimeType)
	} else {
		method = "oauth"
		_, verifyErr = b.memberships.VerifyOAuth(ctx, userID, channelID)
	}

	if verifyErr != nil {
		if isExpected(verifyErr) {
			log.InfoContext(ctx, "verification refused", "method", method, "reason", verifyErr)
		} else {
			log.ErrorContext(ctx, "verification failed", "method", method, "error", verifyErr)
		}
		return userMessage(verifyErr)
	}

	log.InfoContext(ctx, "verification succeeded", "method", method, "channel_id", channelID)
	return "Verified! Your membership role has been granted."
}

func (b *Bot) handleLink(ctx context.Context, s interactionSession, i *discordgo.Interaction) {
	log := logger.FromContext(ctx)

	userID := interactionUserID(i)
	if userID == "" {
		return
	}

	var content string
	state, err := b.states.GenerateStateToken(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "failed to issue oauth state", "error", err)
		content = userMessage(err)
	} else {
		content = fmt.Sprintf(
			"[Authorize YouTube access](%s) to link your account. The link expires in 10 minutes.\n"+
				"Manage your memberships at %s",
			b.consent.AuthURL(state), b.cfg.DashboardURL)
	}

	respondEphemeral(ctx, s, i, content)
}

func (b *Bot) handleUnlink(ctx context.Context, s interactionSession, i *discordgo.Interaction) {
	log := logger.FromContext(ctx)

	userID := interactionUserID(i)
	if userID == "" {
		return
	}

	content := "Your YouTube account has been unlinked."
	if err := b.memberships.UnlinkYouTube(ctx, userID); err != nil {
		if errors.Is(err, service.ErrNotLinked) {
			content = "You have no linked YouTube account."
		} else {
			log.ErrorContext(ctx, "failed to unlink youtube account", "error", err)
			content = userMessage(err)
		}
	}

	respondEphemeral(ctx, s, i, content)
}

func (b *Bot) handleAddChannel(ctx context.Context, s interactionSession, i *discordgo.Interaction) {
	log := logger.FromContext(ctx)

	opts := optionMap(i.ApplicationCommandData().Options)
	channel, err := b.memberships.RegisterChannel(ctx,
		i.GuildID,
		stringOption(opts, optionYouTubeChannel),
		stringOption(opts, optionTitle),
		stringOption(opts, optionMembersVideo),
		stringOption(opts, optionRole))

	var content string
	switch {
	case err == nil:
		log.InfoContext(ctx, "channel registered by admin",
			"channel_id", channel.ID,
			"discord_user_id", interactionUserID(i))
		content = fmt.Sprintf("%s is set up. Verified members receive <@&%s>.", channel.Title, channel.RoleID)
	case errors.Is(err, service.ErrChannelExists):
		content = "That YouTube channel is already set up in this server."
	case errors.Is(err, service.ErrInvalidInput):
		log.InfoContext(ctx, "channel registration rejected", "reason", err)
		content = "Check the channel ID, title and video ID and try again."
	default:
		log.ErrorContext(ctx, "failed to register channel", "error", err)
		content = userMessage(err)
	}

	respondEphemeral(ctx, s, i, content)
}

func (b *Bot) handleAutocomplete(ctx context.Context, s interactionSession, i *discordgo.Interaction) {
	log := logger.FromContext(ctx)

	var query string
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Focused {
			query = strings.ToLower(opt.StringValue())
		}
	}

	channels, err := b.memberships.ListChannels(ctx, i.GuildID)
	if err != nil {
		log.ErrorContext(ctx, "failed to list channels for autocomplete", "error", err)
	}

	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, maxChoices)
	for _, c := range channels {
		if len(choices) == maxChoices {
			break
		}
		if query != "" && !strings.Contains(strings.ToLower(c.Title), query) {
			continue
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  c.Title,
			Value: c.ID.String(),
		})
	}

	if err := s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	}, discordgo.WithContext(ctx)); err != nil {
		log.ErrorContext(ctx, "failed to send autocomplete choices", "error", err)
	}
}

func respondEphemeral(ctx context.Context, s interactionSession, i *discordgo.Interaction, content string) {
	err := s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		logger.FromContext(ctx).ErrorContext(ctx, "failed to respond to interaction", "error", err)
	}
}

func interactionUserID(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func optionMap(
	options []*discordgo.ApplicationCommandInteractionDataOption,
) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

// stringOption returns the raw value of a string or role option, or "" when absent.
func stringOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	opt, ok := opts[name]
	if !ok {
		return ""
	}
	v, _ := opt.Value.(string)
	return v
}

// resolveAttachment finds the attachment an option refers to. Attachment
// options carry the attachment id; the file itself is in the resolved data.
func resolveAttachment(
	resolved *discordgo.ApplicationCommandInteractionDataResolved,
	opt *discordgo.ApplicationCommandInteractionDataOption,
) *discordgo.MessageAttachment {
	if resolved == nil {
		return nil
	}
	id, ok := opt.Value.(string)
	if !ok {
		return nil
	}
	return resolved.Attachments[id]
}

// isExpected reports whether err is a normal refusal rather than a fault.
func isExpected(err error) bool {
	return errors.Is(err, service.ErrNotMember) ||
		errors.Is(err, service.ErrNotLinked) ||
		errors.Is(err, service.ErrEvidenceRejected) ||
		errors.Is(err, service.ErrChannelNotFound) ||
		errors.Is(err, service.ErrInvalidInput)
}
