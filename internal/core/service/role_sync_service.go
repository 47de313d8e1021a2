package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/makerspace/membership-service/internal/core/domain"
	"github.com/makerspace/membership-service/internal/core/ports"
)

// RoleSyncService makes the member's chat roles match local state on every
// call. Each role call is independent; failures are queued for
// reconciliation and joined into the returned error.
type RoleSyncService struct {
	users        ports.MembershipRepository
	chat         ports.ChatGateway
	reconcile    ports.ReconcileQueue
	memberRoleID string
	creatorRoles domain.CreatorRoleMap
	log          zerolog.Logger
}

func NewRoleSyncService(
	users ports.MembershipRepository,
	chat ports.ChatGateway,
	reconcile ports.ReconcileQueue,
	memberRoleID string,
	creatorRoles domain.CreatorRoleMap,
	log zerolog.Logger,
) *RoleSyncService {
	return &RoleSyncService{
		users:        users,
		chat:         chat,
		reconcile:    reconcile,
		memberRoleID: memberRoleID,
		creatorRoles: creatorRoles,
		log:          log,
	}
}

// SyncMembershipRole issues exactly one add or remove for the community role.
func (s *RoleSyncService) SyncMembershipRole(ctx context.Context, externalID string, status domain.MembershipStatus) error {
	if externalID == "" {
		return domain.ErrNoChatAccount
	}
	err := s.syncMembership(ctx, externalID, status)
	s.queueResync(ctx, externalID, err)
	return err
}

// SyncCreatorRoles grants the role of every selected category and revokes
// the rest, one call per mapped category.
func (s *RoleSyncService) SyncCreatorRoles(ctx context.Context, externalID string, selected []string) error {
	if externalID == "" {
		return domain.ErrNoChatAccount
	}
	err := s.syncCreators(ctx, externalID, selected)
	s.queueResync(ctx, externalID, err)
	return err
}

// SyncUser runs both syncs for a stored member.
func (s *RoleSyncService) SyncUser(ctx context.Context, userID string) error {
	user, err := s.users.FindByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if user.ExternalChatID == "" {
		return domain.ErrNoChatAccount
	}

	err = errors.Join(
		s.syncMembership(ctx, user.ExternalChatID, user.Membership.Status),
		s.syncCreators(ctx, user.ExternalChatID, user.CreatorTypes),
	)
	s.queueResync(ctx, user.ExternalChatID, err)
	return err
}

// ResyncExternal loads the member linked to externalID and syncs every role
// from what is stored now. Failures are returned, not queued. A Discord id
// no longer linked to any member reports domain.ErrNoChatAccount.
func (s *RoleSyncService) ResyncExternal(ctx context.Context, externalID string) error {
	user, err := s.users.FindByExternalChatID(ctx, externalID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("discord id %s: %w", externalID, domain.ErrNoChatAccount)
	}
	if err != nil {
		return err
	}
	return errors.Join(
		s.syncMembership(ctx, externalID, user.Membership.Status),
		s.syncCreators(ctx, externalID, user.CreatorTypes),
	)
}

func (s *RoleSyncService) syncMembership(ctx context.Context, externalID string, status domain.MembershipStatus) error {
	return s.apply(ctx, externalID, s.memberRoleID, status.GrantsCommunityRole())
}

func (s *RoleSyncService) syncCreators(ctx context.Context, externalID string, selected []string) error {
	want := make(map[string]struct{}, len(selected))
	for _, c := range selected {
		want[c] = struct{}{}
	}

	categories := make([]string, 0, len(s.creatorRoles))
	for c := range s.creatorRoles {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	var errs []error
	for _, category := range categories {
		_, grant := want[category]
		if err := s.apply(ctx, externalID, s.creatorRoles[category], grant); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", category, err))
		}
	}
	return errors.Join(errs...)
}

func (s *RoleSyncService) apply(ctx context.Context, externalID, roleID string, grant bool) error {
	op, call := "remove", s.chat.RemoveMemberRole
	if grant {
		op, call = "add", s.chat.AddMemberRole
	}
	if err := call(ctx, externalID, roleID); err != nil {
		s.log.Warn().Err(err).
			Str("external_id", externalID).
			Str("role_id", roleID).
			Str("op", op).
			Msg("role sync call failed")
		return err
	}
	return nil
}

// queueResync records that externalID needs a full re-sync. The job carries
// no roles: the replay reads the member as stored at that time. A member
// who left the guild cannot be fixed by retrying and is not queued.
func (s *RoleSyncService) queueResync(ctx context.Context, externalID string, cause error) {
	if cause == nil || errors.Is(cause, domain.ErrNoChatAccount) {
		return
	}
	job := ports.ReconcileJob{
		Kind:       ports.ReconcileRoleSync,
		ExternalID: externalID,
		LastError:  cause.Error(),
		EnqueuedAt: time.Now().UTC(),
	}
	if err := s.reconcile.Push(ctx, job); err != nil {
		s.log.Error().Err(err).Str("external_id", externalID).Msg("failed to enqueue role reconciliation")
	}
}
