package ports

import "context"

// ChatMember is a guild member as reported by the chat platform.
type ChatMember struct {
	UserID   string
	Username string
	Roles    []string
}

// ChatChannelText is the channel type that accepts messages and invites.
const ChatChannelText = 0

// ChatChannel is a guild channel.
type ChatChannel struct {
	ID   string
	Name string
	Type int
}

// ChatGateway is the chat platform API consumed by the service. All calls
// are scoped to the configured guild.
type ChatGateway interface {
	AddMemberRole(ctx context.Context, externalID, roleID string) error
	RemoveMemberRole(ctx context.Context, externalID, roleID string) error
	GetMember(ctx context.Context, externalID string) (*ChatMember, error)
	ListChannels(ctx context.Context) ([]ChatChannel, error)
	CreateInvite(ctx context.Context, channelID string, maxAgeSeconds, maxUses int) (string, error)
	PostMessage(ctx context.Context, channelID, content string) error
}
