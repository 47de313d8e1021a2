package ports

import (
	"context"
	"time"
)

// ChatInvite is a single-use invite to the makerspace chat server.
type ChatInvite struct {
	URL       string    `json:"url"`
	ChannelID string    `json:"channel_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ChatService covers the chat platform features beyond role sync.
type ChatService interface {
	// Invite issues an invite for a member in good standing who has not
	// joined the chat server yet.
	Invite(ctx context.Context, userID string) (*ChatInvite, error)
	// Announce posts content to the announcements channel.
	Announce(ctx context.Context, content string) error
}
