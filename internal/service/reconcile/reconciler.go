package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/memberguard/internal/domain"
	"github.com/phrazzld/memberguard/internal/jobqueue"
	"github.com/phrazzld/memberguard/internal/platform/youtube"
	"github.com/phrazzld/memberguard/internal/store"
	"golang.org/x/oauth2"
)

// OAuthClient refreshes YouTube access for linked accounts.
type OAuthClient interface {
	TokenSource(ctx context.Context, refreshToken string) oauth2.TokenSource
}

// MembershipChecker asks YouTube whether an account can see a members-only video.
type MembershipChecker interface {
	IsMember(ctx context.Context, ts oauth2.TokenSource, videoID string) (bool, error)
}

// TokenOpener decrypts sealed refresh tokens.
type TokenOpener interface {
	Open(sealed []byte) ([]byte, error)
}

// RoleRevoker removes Discord roles.
type RoleRevoker interface {
	RevokeRole(ctx context.Context, guildID, userID, roleID string) error
}

// Deps groups the collaborators of a Reconciler.
type Deps struct {
	Channels    store.ChannelStore
	Memberships store.MembershipStore
	Links       store.LinkStore
	Queue       *jobqueue.Queue
	OAuth       OAuthClient
	YouTube     MembershipChecker
	Opener      TokenOpener
	Roles       RoleRevoker
}

// Report summarizes one reconciliation pass.
type Report struct {
	Checked int `json:"checked"`
	Kept    int `json:"kept"`
	Revoked int `json:"revoked"`
	// Failed counts memberships left untouched because they could not be checked.
	Failed int `json:"failed"`
}

// verdict is the result of re-checking one OAuth membership.
type verdict int

const (
	verdictMember verdict = iota
	verdictNotMember
	verdictNotLinked
)

// Reconciler periodically re-verifies active memberships.
type Reconciler struct {
	deps     Deps
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu         sync.Mutex
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// New creates a Reconciler that runs every interval once started.
func New(deps Deps, interval time.Duration, logger *slog.Logger) (*Reconciler, error) {
	if deps.Channels == nil || deps.Memberships == nil || deps.Links == nil || deps.Queue == nil ||
		deps.OAuth == nil || deps.YouTube == nil || deps.Opener == nil || deps.Roles == nil {
		return nil, domain.NewValidationError("deps", "all reconciler dependencies are required", domain.ErrValidation)
	}
	if interval <= 0 {
		return nil, domain.NewValidationError("interval", "must be positive", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		deps:     deps,
		interval: interval,
		logger:   logger.With("component", "reconciler"),
		now:      time.Now,
	}, nil
}

// Start runs a pass immediately and then once per interval until ctx is done
// or Stop is called.
func (r *Reconciler) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancelFunc != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancelFunc = cancel

	r.wg.Add(1)
	go r.loop(ctx)
}

// Stop cancels the loop and waits for an in-flight pass to finish.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	cancel := r.cancelFunc
	r.cancelFunc = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	r.wg.Wait()
}

func (r *Reconciler) loop(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.runLogged(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.runLogged(ctx)
		}
	}
}

func (r *Reconciler) runLogged(ctx context.Context) {
	start := time.Now()
	report, err := r.RunOnce(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "reconciliation pass failed", "error", err)
		return
	}
	r.logger.InfoContext(ctx, "reconciliation pass finished",
		"checked", report.Checked,
		"kept", report.Kept,
		"revoked", report.Revoked,
		"failed", report.Failed,
		"duration_ms", time.Since(start).Milliseconds())
}

// RunOnce performs a single reconciliation pass over every active membership.
// Only a failure to list memberships is returned; per-membership problems are
// counted in the report.
func (r *Reconciler) RunOnce(ctx context.Context) (Report, error) {
	active, err := r.deps.Memberships.ListActive(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list active memberships: %w", err)
	}

	var (
		mu     sync.Mutex
		report Report
		wg     sync.WaitGroup
	)
	record := func(f func(*Report)) {
		mu.Lock()
		f(&report)
		mu.Unlock()
	}

	channels := newChannelCache(r.deps.Channels)
	now := r.now()

	for _, m := range active {
		record(func(rep *Report) { rep.Checked++ })

		channel, err := channels.get(ctx, m.ChannelID)
		if err != nil {
			if errors.Is(err, store.ErrChannelNotFound) {
				// the channel was removed, so there is no role left to revoke
				r.applyRevoke(ctx, nil, m, now, record)
				continue
			}
			r.logger.ErrorContext(ctx, "failed to load channel", "error", err, "channel_id", m.ChannelID)
			record(func(rep *Report) { rep.Failed++ })
			continue
		}

		switch m.Method {
		case domain.MethodScreenshot:
			if m.Expired(now) {
				r.applyRevoke(ctx, channel, m, now, record)
			} else {
				record(func(rep *Report) { rep.Kept++ })
			}
		case domain.MethodOAuth:
			wg.Add(1)
			go func(m *domain.Membership) {
				defer wg.Done()
				r.recheck(ctx, channel, m, now, record)
			}(m)
		default:
			record(func(rep *Report) { rep.Failed++ })
		}
	}

	wg.Wait()
	return report, nil
}

// recheck submits an OAuth membership check to the reconcile queue.
func (r *Reconciler) recheck(
	ctx context.Context,
	channel *domain.Channel,
	m *domain.Membership,
	now time.Time,
	record func(func(*Report)),
) {
	outcome := jobqueue.Add(ctx, r.deps.Queue, func(ctx context.Context) (verdict, error) {
		return r.check(ctx, channel, m)
	})
	if !outcome.Success {
		record(func(rep *Report) { rep.Failed++ })
		return
	}

	switch outcome.Value {
	case verdictMember:
		if err := r.deps.Memberships.UpdateStatus(ctx, m.ID, domain.MembershipStatusActive, now); err != nil {
			r.logger.ErrorContext(ctx, "failed to record membership check", "error", err, "membership_id", m.ID)
		}
		record(func(rep *Report) { rep.Kept++ })
	default:
		r.applyRevoke(ctx, channel, m, now, record)
	}
}

func (r *Reconciler) check(ctx context.Context, channel *domain.Channel, m *domain.Membership) (verdict, error) {
	link, err := r.deps.Links.Get(ctx, m.DiscordUserID)
	if err != nil {
		if errors.Is(err, store.ErrLinkNotFound) {
			return verdictNotLinked, nil
		}
		return 0, err
	}

	refreshToken, err := r.deps.Opener.Open(link.SealedRefreshToken)
	if err != nil {
		return 0, fmt.Errorf("failed to open refresh token of %s: %w", m.DiscordUserID, err)
	}

	ts := r.deps.OAuth.TokenSource(ctx, string(refreshToken))
	member, err := r.deps.YouTube.IsMember(ctx, ts, channel.MembersVideoID)
	if err != nil {
		if errors.Is(err, youtube.ErrAuthorizationRevoked) {
			return verdictNotLinked, nil
		}
		return 0, err
	}
	if !member {
		return verdictNotMember, nil
	}
	return verdictMember, nil
}

// applyRevoke removes the role before marking the membership revoked, so a
// failed role removal is retried on the next pass.
func (r *Reconciler) applyRevoke(
	ctx context.Context,
	channel *domain.Channel,
	m *domain.Membership,
	now time.Time,
	record func(func(*Report)),
) {
	log := r.logger.With("membership_id", m.ID, "discord_user_id", m.DiscordUserID)

	if channel != nil {
		if err := r.deps.Roles.RevokeRole(ctx, channel.GuildID, m.DiscordUserID, channel.RoleID); err != nil {
			log.ErrorContext(ctx, "failed to revoke role", "error", err)
			record(func(rep *Report) { rep.Failed++ })
			return
		}
	}

	if err := r.deps.Memberships.UpdateStatus(ctx, m.ID, domain.MembershipStatusRevoked, now); err != nil {
		log.ErrorContext(ctx, "failed to mark membership revoked", "error", err)
		record(func(rep *Report) { rep.Failed++ })
		return
	}

	log.InfoContext(ctx, "membership revoked", "method", m.Method)
	record(func(rep *Report) { rep.Revoked++ })
}

// channelCache avoids reloading the same channel for every membership in a pass.
type channelCache struct {
	store    store.ChannelStore
	channels map[uuid.UUID]*domain.Channel
}

func newChannelCache(s store.ChannelStore) *channelCache {
	return &channelCache{store: s, channels: make(map[uuid.UUID]*domain.Channel)}
}

func (c *channelCache) get(ctx context.Context, id uuid.UUID) (*domain.Channel, error) {
	if ch, ok := c.channels[id]; ok {
		return ch, nil
	}
	ch, err := c.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.channels[id] = ch
	return ch, nil
}
