package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/makerspace/membership-service/internal/core/domain"
	"github.com/makerspace/membership-service/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory User Store
// ---------------------------------------------------------------------------

type stubUserStore struct {
	mu       sync.Mutex
	byID     map[string]*domain.User
	findErr  error // if set, every lookup returns this error
	writeErr error // if set, every mutation returns this error
	writes   []string
}

func newStubUserStore(users ...*domain.User) *stubUserStore {
	s := &stubUserStore{byID: make(map[string]*domain.User)}
	for _, u := range users {
		s.byID[u.UserID] = cloneUser(u)
	}
	return s
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.CreatorTypes = append([]string(nil), u.CreatorTypes...)
	if u.Membership.SponsorshipExpiresAt != nil {
		t := *u.Membership.SponsorshipExpiresAt
		clone.Membership.SponsorshipExpiresAt = &t
	}
	if u.Membership.LastPaymentDate != nil {
		t := *u.Membership.LastPaymentDate
		clone.Membership.LastPaymentDate = &t
	}
	return &clone
}

func (s *stubUserStore) get(userID string) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneUser(s.byID[userID])
}

func (s *stubUserStore) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byID {
		if u.Username == user.Username {
			return nil, domain.ErrUserExists
		}
	}
	s.byID[user.UserID] = cloneUser(user)
	return cloneUser(user), nil
}

func (s *stubUserStore) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byID {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *stubUserStore) FindByUserID(_ context.Context, userID string) (*domain.User, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if u := s.get(userID); u != nil {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (s *stubUserStore) findFirst(match func(*domain.User) bool) (*domain.User, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byID {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *stubUserStore) FindBySubscriptionID(_ context.Context, id string) (*domain.User, error) {
	return s.findFirst(func(u *domain.User) bool {
		return u.Membership.SquareSubscriptionID == id || u.Membership.SponsoredSubscriptionID == id
	})
}

func (s *stubUserStore) FindBySponsoredSubscriptionID(_ context.Context, id string) (*domain.User, error) {
	return s.findFirst(func(u *domain.User) bool { return u.Membership.SponsoredSubscriptionID == id })
}

func (s *stubUserStore) FindByOwnSubscriptionID(_ context.Context, id string) (*domain.User, error) {
	return s.findFirst(func(u *domain.User) bool { return u.Membership.SquareSubscriptionID == id })
}

func (s *stubUserStore) FindByExternalChatID(_ context.Context, id string) (*domain.User, error) {
	return s.findFirst(func(u *domain.User) bool { return id != "" && u.ExternalChatID == id })
}

// mutate mirrors a field-scoped $set: only the touched fields change.
func (s *stubUserStore) mutate(op, userID string, fn func(*domain.User)) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	fn(u)
	s.writes = append(s.writes, op+":"+userID)
	return nil
}

func (s *stubUserStore) LinkSponsorship(_ context.Context, userID, subID, donor string) error {
	return s.mutate("link", userID, func(u *domain.User) {
		u.Membership.SponsoredSubscriptionID = subID
		u.Membership.SponsoredBy = donor
	})
}

func (s *stubUserStore) ApplySponsorshipGrant(_ context.Context, userID string, g domain.SponsorshipGrant) error {
	return s.mutate("grant", userID, func(u *domain.User) {
		exp, paid := g.ExpiresAt, g.PaidAt
		u.Membership.SponsorshipExpiresAt = &exp
		u.Membership.LastPaymentDate = &paid
		u.Membership.SubscriptionStatus = g.SubscriptionStatusLabel()
		u.Membership.Status = domain.MembershipActive
		u.Membership.AccessKey.Issued = true
		if !g.Recurring {
			u.Membership.SponsoredBy = domain.OneTimeGiftDonor
		}
	})
}

func (s *stubUserStore) ApplyRenewal(_ context.Context, userID string, paidAt time.Time) error {
	return s.mutate("renew", userID, func(u *domain.User) {
		u.Membership.Status = domain.MembershipActive
		u.Membership.SubscriptionStatus = domain.SubscriptionActive
		u.Membership.LastPaymentDate = &paidAt
		u.Membership.AccessKey.Issued = true
	})
}

func (s *stubUserStore) Suspend(_ context.Context, userID string, status domain.SubscriptionStatus, reason string) error {
	return s.mutate("suspend", userID, func(u *domain.User) {
		u.Membership.Status = domain.MembershipSuspended
		u.Membership.SubscriptionStatus = status
		u.Membership.AccessKey.Issued = false
		u.Membership.AccessKey.RevokedReason = reason
	})
}

func (s *stubUserStore) SetCreatorTypes(_ context.Context, userID string, types []string) error {
	return s.mutate("creator_types", userID, func(u *domain.User) {
		u.CreatorTypes = append([]string(nil), types...)
	})
}

func (s *stubUserStore) SetSquareCustomerID(_ context.Context, userID, customerID string) error {
	return s.mutate("customer", userID, func(u *domain.User) {
		u.SquareCustomerID = customerID
	})
}

// ---------------------------------------------------------------------------
// Payment gateway
// ---------------------------------------------------------------------------

type stubPayments struct {
	subs        map[string]*ports.ProviderSubscription
	retrieveErr error
	pauseErr    error
	pauses      []ports.PauseRequest
	customers   []ports.CustomerInput
	links       []ports.PaymentLinkInput
	linkErr     error
}

func newStubPayments() *stubPayments {
	return &stubPayments{subs: make(map[string]*ports.ProviderSubscription)}
}

func (p *stubPayments) CreateCustomer(_ context.Context, in ports.CustomerInput) (string, error) {
	p.customers = append(p.customers, in)
	return "CUST_" + in.ReferenceID, nil
}

func (p *stubPayments) CreatePaymentLink(_ context.Context, in ports.PaymentLinkInput) (*ports.PaymentLink, error) {
	if p.linkErr != nil {
		return nil, p.linkErr
	}
	p.links = append(p.links, in)
	return &ports.PaymentLink{ID: "LINK_1", URL: "https://square.link/u/abc", OrderID: "ORDER_1"}, nil
}

func (p *stubPayments) RetrieveSubscription(_ context.Context, id string) (*ports.ProviderSubscription, error) {
	if p.retrieveErr != nil {
		return nil, p.retrieveErr
	}
	sub, ok := p.subs[id]
	if !ok {
		return nil, domain.ErrSubscriptionNotFound
	}
	clone := *sub
	return &clone, nil
}

func (p *stubPayments) PauseSubscription(_ context.Context, req ports.PauseRequest) error {
	if p.pauseErr != nil {
		return p.pauseErr
	}
	p.pauses = append(p.pauses, req)
	return nil
}

// ---------------------------------------------------------------------------
// Chat gateway
// ---------------------------------------------------------------------------

type stubChat struct {
	adds      []string // externalID:roleID
	removes   []string
	failRole  map[string]error // roleID -> error
	channels  []ports.ChatChannel
	memberErr error
	invites   []string // channelID
	posts     []string // channelID:content
	postErr   error
	onCall    func() // runs on every role call
}

func newStubChat() *stubChat {
	return &stubChat{failRole: make(map[string]error)}
}

func (c *stubChat) AddMemberRole(_ context.Context, externalID, roleID string) error {
	if c.onCall != nil {
		c.onCall()
	}
	if err := c.failRole[roleID]; err != nil {
		return err
	}
	c.adds = append(c.adds, externalID+":"+roleID)
	return nil
}

func (c *stubChat) RemoveMemberRole(_ context.Context, externalID, roleID string) error {
	if c.onCall != nil {
		c.onCall()
	}
	if err := c.failRole[roleID]; err != nil {
		return err
	}
	c.removes = append(c.removes, externalID+":"+roleID)
	return nil
}

func (c *stubChat) GetMember(_ context.Context, externalID string) (*ports.ChatMember, error) {
	if c.memberErr != nil {
		return nil, c.memberErr
	}
	return &ports.ChatMember{UserID: externalID}, nil
}

func (c *stubChat) ListChannels(context.Context) ([]ports.ChatChannel, error) {
	return c.channels, nil
}

func (c *stubChat) CreateInvite(_ context.Context, channelID string, _, _ int) (string, error) {
	c.invites = append(c.invites, channelID)
	return "https://discord.gg/abc123", nil
}

func (c *stubChat) PostMessage(_ context.Context, channelID, content string) error {
	if c.postErr != nil {
		return c.postErr
	}
	c.posts = append(c.posts, channelID+":"+content)
	return nil
}

// ---------------------------------------------------------------------------
// Queues and publishers
// ---------------------------------------------------------------------------

type stubReconcileQueue struct {
	jobs      []ports.ReconcileJob
	pushErr   error
	popErr    error
	honourCtx bool // Push fails on a done context, like a real client
}

func (q *stubReconcileQueue) Push(ctx context.Context, job ports.ReconcileJob) error {
	if q.pushErr != nil {
		return q.pushErr
	}
	if q.honourCtx && ctx.Err() != nil {
		return ctx.Err()
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *stubReconcileQueue) Pop(context.Context) (*ports.ReconcileJob, error) {
	if q.popErr != nil {
		return nil, q.popErr
	}
	if len(q.jobs) == 0 {
		return nil, nil
	}
	job := q.jobs[0]
	q.jobs = q.jobs[1:]
	return &job, nil
}

func (q *stubReconcileQueue) Len(context.Context) (int64, error) {
	return int64(len(q.jobs)), nil
}

type stubDispatcher struct {
	jobs []ports.RoleSyncJob
}

func (d *stubDispatcher) Enqueue(job ports.RoleSyncJob) {
	d.jobs = append(d.jobs, job)
}

type stubPublisher struct {
	events []ports.MembershipEvent
	err    error
}

func (p *stubPublisher) PublishMembershipEvent(_ context.Context, evt ports.MembershipEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, evt)
	return nil
}

var errBoom = errors.New("boom")
