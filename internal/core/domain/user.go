package domain

import "time"

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// User is a makerspace account. The membership sub-document is owned by the
// membership synchronizer; the remaining fields are edited through the
// profile endpoints.
type User struct {
	UserID           string     `json:"user_id" bson:"userID"`
	Username         string     `json:"username" bson:"username"`
	Email            string     `json:"email,omitempty" bson:"email,omitempty"`
	PasswordHash     string     `json:"-" bson:"passwordHash"`
	Role             string     `json:"role" bson:"role"`
	ExternalChatID   string     `json:"external_chat_id,omitempty" bson:"externalChatId,omitempty"`
	CreatorTypes     []string   `json:"creator_types,omitempty" bson:"creatorType,omitempty"`
	SquareCustomerID string     `json:"square_customer_id,omitempty" bson:"squareCustomerId,omitempty"`
	Membership       Membership `json:"membership" bson:"membership"`
	CreatedAt        time.Time  `json:"created_at" bson:"createdAt"`
	UpdatedAt        time.Time  `json:"updated_at" bson:"updatedAt"`
}

// HasOwnSubscription reports whether the user pays for themselves through a
// recurring subscription other than exceptID.
func (u *User) HasOwnSubscription(exceptID string) bool {
	id := u.Membership.SquareSubscriptionID
	return id != "" && id != exceptID
}
