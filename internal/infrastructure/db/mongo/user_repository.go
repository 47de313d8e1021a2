package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/makerspace/membership-service/internal/core/domain"
)

const collectionUsers = "users"

// Field paths inside a user document. Updates always target these paths
// with $set so concurrent events on the same user never overwrite each
// other's unrelated fields.
const (
	fieldUserID                  = "userID"
	fieldUsername                = "username"
	fieldUpdatedAt               = "updatedAt"
	fieldCreatorTypes            = "creatorType"
	fieldSquareCustomerID        = "squareCustomerId"
	fieldExternalChatID          = "externalChatId"
	fieldStatus                  = "membership.status"
	fieldSubscriptionStatus      = "membership.subscriptionStatus"
	fieldSquareSubscriptionID    = "membership.squareSubscriptionId"
	fieldSponsoredSubscriptionID = "membership.sponsoredSubscriptionId"
	fieldSponsoredBy             = "membership.sponsoredBy"
	fieldSponsorshipExpiresAt    = "membership.sponsorshipExpiresAt"
	fieldLastPaymentDate         = "membership.lastPaymentDate"
	fieldAccessKeyIssued         = "membership.accessKey.issued"
	fieldAccessKeyRevokedReason  = "membership.accessKey.revokedReason"
)

// UserRepository is the MongoDB User Store. It serves both account
// registration and the membership synchronizer.
type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{fieldUsername: username})
}

func (r *UserRepository) FindByUserID(ctx context.Context, userID string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{fieldUserID: userID})
}

// FindBySubscriptionID matches either subscription field. The two are not
// expected to hold the same id for different users; the first match wins.
func (r *UserRepository) FindBySubscriptionID(ctx context.Context, subscriptionID string) (*domain.User, error) {
	if subscriptionID == "" {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{fieldSquareSubscriptionID: subscriptionID},
		bson.M{fieldSponsoredSubscriptionID: subscriptionID},
	}})
}

func (r *UserRepository) FindBySponsoredSubscriptionID(ctx context.Context, subscriptionID string) (*domain.User, error) {
	if subscriptionID == "" {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{fieldSponsoredSubscriptionID: subscriptionID})
}

func (r *UserRepository) FindByOwnSubscriptionID(ctx context.Context, subscriptionID string) (*domain.User, error) {
	if subscriptionID == "" {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{fieldSquareSubscriptionID: subscriptionID})
}

func (r *UserRepository) FindByExternalChatID(ctx context.Context, externalID string) (*domain.User, error) {
	if externalID == "" {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{fieldExternalChatID: externalID})
}

func (r *UserRepository) LinkSponsorship(ctx context.Context, userID, subscriptionID, donorID string) error {
	return r.set(ctx, userID, bson.M{
		fieldSponsoredSubscriptionID: subscriptionID,
		fieldSponsoredBy:             donorID,
	})
}

func (r *UserRepository) ApplySponsorshipGrant(ctx context.Context, userID string, grant domain.SponsorshipGrant) error {
	return r.set(ctx, userID, sponsorshipGrantFields(grant))
}

func (r *UserRepository) ApplyRenewal(ctx context.Context, userID string, paidAt time.Time) error {
	return r.set(ctx, userID, renewalFields(paidAt))
}

func (r *UserRepository) Suspend(ctx context.Context, userID string, status domain.SubscriptionStatus, reason string) error {
	return r.set(ctx, userID, suspensionFields(status, reason))
}

func (r *UserRepository) SetCreatorTypes(ctx context.Context, userID string, types []string) error {
	if types == nil {
		types = []string{}
	}
	return r.set(ctx, userID, bson.M{fieldCreatorTypes: types})
}

func (r *UserRepository) SetSquareCustomerID(ctx context.Context, userID, customerID string) error {
	return r.set(ctx, userID, bson.M{fieldSquareCustomerID: customerID})
}

// EnsureIndexes creates the lookups the synchronizer depends on.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	sparse := options.Index().SetSparse(true)
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: fieldUserID, Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: fieldUsername, Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: fieldSquareSubscriptionID, Value: 1}}, Options: sparse},
		{Keys: bson.D{{Key: fieldSponsoredSubscriptionID, Value: 1}}, Options: sparse},
		{Keys: bson.D{{Key: fieldExternalChatID, Value: 1}}, Options: sparse},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var u domain.User
	if err := r.col.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

// set applies a field-scoped $set to one user.
func (r *UserRepository) set(ctx context.Context, userID string, fields bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	fields[fieldUpdatedAt] = time.Now().UTC()
	res, err := r.col.UpdateOne(ctx, bson.M{fieldUserID: userID}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("update user %s: %w", userID, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func sponsorshipGrantFields(g domain.SponsorshipGrant) bson.M {
	fields := bson.M{
		fieldSponsorshipExpiresAt: g.ExpiresAt.UTC(),
		fieldSubscriptionStatus:   string(g.SubscriptionStatusLabel()),
		fieldLastPaymentDate:      g.PaidAt.UTC(),
		fieldStatus:               string(domain.MembershipActive),
		fieldAccessKeyIssued:      true,
	}
	if !g.Recurring {
		fields[fieldSponsoredBy] = domain.OneTimeGiftDonor
	}
	return fields
}

func renewalFields(paidAt time.Time) bson.M {
	return bson.M{
		fieldStatus:             string(domain.MembershipActive),
		fieldSubscriptionStatus: string(domain.SubscriptionActive),
		fieldLastPaymentDate:    paidAt.UTC(),
		fieldAccessKeyIssued:    true,
	}
}

func suspensionFields(status domain.SubscriptionStatus, reason string) bson.M {
	return bson.M{
		fieldStatus:                 string(domain.MembershipSuspended),
		fieldSubscriptionStatus:     string(status),
		fieldAccessKeyIssued:        false,
		fieldAccessKeyRevokedReason: reason,
	}
}
