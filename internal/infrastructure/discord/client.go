package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/makerspace/membership-service/internal/core/domain"
	"github.com/makerspace/membership-service/internal/core/ports"
)

const defaultTimeout = 10 * time.Second

// Config identifies the bot and the guild it manages.
type Config struct {
	BotToken string
	GuildID  string
	Timeout  time.Duration
}

// Client implements ports.ChatGateway over the Discord REST API. It never
// opens the gateway websocket.
type Client struct {
	session *discordgo.Session
	guildID string
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.BotToken == "" || cfg.GuildID == "" {
		return nil, errors.New("discord: bot token and guild id are required")
	}
	s, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	s.Client = &http.Client{Timeout: timeout}
	// Role changes are retried by the reconcile queue.
	s.ShouldRetryOnRateLimit = false
	return &Client{session: s, guildID: cfg.GuildID}, nil
}

func (c *Client) AddMemberRole(ctx context.Context, externalID, roleID string) error {
	if err := c.session.GuildMemberRoleAdd(c.guildID, externalID, roleID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("add role %s to %s: %w", roleID, externalID, mapErr(err))
	}
	return nil
}

func (c *Client) RemoveMemberRole(ctx context.Context, externalID, roleID string) error {
	if err := c.session.GuildMemberRoleRemove(c.guildID, externalID, roleID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("remove role %s from %s: %w", roleID, externalID, mapErr(err))
	}
	return nil
}

func (c *Client) GetMember(ctx context.Context, externalID string) (*ports.ChatMember, error) {
	m, err := c.session.GuildMember(c.guildID, externalID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("get member %s: %w", externalID, mapErr(err))
	}
	out := &ports.ChatMember{UserID: externalID, Roles: m.Roles}
	if m.User != nil {
		out.UserID = m.User.ID
		out.Username = m.User.Username
	}
	return out, nil
}

func (c *Client) ListChannels(ctx context.Context) ([]ports.ChatChannel, error) {
	chans, err := c.session.GuildChannels(c.guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", mapErr(err))
	}
	out := make([]ports.ChatChannel, 0, len(chans))
	for _, ch := range chans {
		out = append(out, ports.ChatChannel{ID: ch.ID, Name: ch.Name, Type: int(ch.Type)})
	}
	return out, nil
}

// CreateInvite returns a full invite URL.
func (c *Client) CreateInvite(ctx context.Context, channelID string, maxAgeSeconds, maxUses int) (string, error) {
	inv, err := c.session.ChannelInviteCreate(channelID, discordgo.Invite{
		MaxAge:  maxAgeSeconds,
		MaxUses: maxUses,
		Unique:  true,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("create invite: %w", mapErr(err))
	}
	return "https://discord.gg/" + inv.Code, nil
}

func (c *Client) PostMessage(ctx context.Context, channelID, content string) error {
	if _, err := c.session.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("post message: %w", mapErr(err))
	}
	return nil
}

// mapErr turns an unknown-member response into domain.ErrNoChatAccount.
func mapErr(err error) error {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Message != nil && restErr.Message.Code == discordgo.ErrCodeUnknownMember {
		return domain.ErrNoChatAccount
	}
	return err
}
