package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/makerspace/membership-service/internal/core/domain"
	"github.com/makerspace/membership-service/internal/core/ports"
)

// ChatConfig names the guild channels used for onboarding and announcements.
type ChatConfig struct {
	InviteChannel   string
	AnnounceChannel string
	InviteMaxAge    time.Duration
}

// ChatService issues chat server invites to paying members and posts
// operator announcements.
type ChatService struct {
	users ports.MembershipRepository
	chat  ports.ChatGateway
	cfg   ChatConfig
	log   zerolog.Logger
}

func NewChatService(users ports.MembershipRepository, chat ports.ChatGateway, cfg ChatConfig, log zerolog.Logger) *ChatService {
	if cfg.InviteMaxAge <= 0 {
		cfg.InviteMaxAge = 24 * time.Hour
	}
	return &ChatService{users: users, chat: chat, cfg: cfg, log: log}
}

// Invite returns a single-use invite. Only active or probation members get
// one, and a member already present in the guild is refused.
func (s *ChatService) Invite(ctx context.Context, userID string) (*ports.ChatInvite, error) {
	user, err := s.users.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.Membership.Status.GrantsCommunityRole() {
		return nil, domain.ErrMembershipInactive
	}

	if user.ExternalChatID != "" {
		_, err := s.chat.GetMember(ctx, user.ExternalChatID)
		switch {
		case err == nil:
			return nil, domain.ErrAlreadyInGuild
		case !errors.Is(err, domain.ErrNoChatAccount):
			return nil, fmt.Errorf("look up guild member: %w", err)
		}
	}

	channelID, err := s.channelID(ctx, s.cfg.InviteChannel)
	if err != nil {
		return nil, err
	}

	url, err := s.chat.CreateInvite(ctx, channelID, int(s.cfg.InviteMaxAge.Seconds()), 1)
	if err != nil {
		return nil, fmt.Errorf("create invite: %w", err)
	}

	s.log.Info().Str("user_id", userID).Str("channel_id", channelID).Msg("chat invite issued")
	return &ports.ChatInvite{
		URL:       url,
		ChannelID: channelID,
		ExpiresAt: time.Now().UTC().Add(s.cfg.InviteMaxAge),
	}, nil
}

func (s *ChatService) Announce(ctx context.Context, content string) error {
	channelID, err := s.channelID(ctx, s.cfg.AnnounceChannel)
	if err != nil {
		return err
	}
	if err := s.chat.PostMessage(ctx, channelID, content); err != nil {
		return fmt.Errorf("post announcement: %w", err)
	}
	return nil
}

// channelID resolves a text channel by name, ignoring case and a leading '#'.
func (s *ChatService) channelID(ctx context.Context, name string) (string, error) {
	name = strings.TrimPrefix(strings.TrimSpace(name), "#")
	channels, err := s.chat.ListChannels(ctx)
	if err != nil {
		return "", fmt.Errorf("list channels: %w", err)
	}
	for _, ch := range channels {
		if ch.Type == ports.ChatChannelText && strings.EqualFold(ch.Name, name) {
			return ch.ID, nil
		}
	}
	return "", fmt.Errorf("%w: #%s", domain.ErrChannelNotFound, name)
}
