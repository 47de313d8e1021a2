package discord

import (
	"context"

	"github.com/makerspace/membership-service/internal/core/ports"
)

// NopClient accepts every call and does nothing. It stands in when no bot
// token is configured so local state still syncs without a guild.
type NopClient struct{}

func (NopClient) AddMemberRole(context.Context, string, string) error    { return nil }
func (NopClient) RemoveMemberRole(context.Context, string, string) error { return nil }

func (NopClient) GetMember(_ context.Context, externalID string) (*ports.ChatMember, error) {
	return &ports.ChatMember{UserID: externalID}, nil
}

func (NopClient) ListChannels(context.Context) ([]ports.ChatChannel, error) { return nil, nil }

func (NopClient) CreateInvite(context.Context, string, int, int) (string, error) { return "", nil }

func (NopClient) PostMessage(context.Context, string, string) error { return nil }
