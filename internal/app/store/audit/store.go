// Package audit stores the authentication audit trail in Mongo.
package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Collection is the Mongo collection name.
const Collection = "audit_logs"

// CategoryAuth covers sign-in, sign-out, session and account recovery events.
const CategoryAuth = "auth"

// Auth event types.
const (
	EventLoginSuccess          = "login_success"
	EventLoginFailed           = "login_failed"
	EventLoginForbiddenRole    = "login_forbidden_role"
	EventLoginRateLimited      = "login_rate_limited"
	EventLogout                = "logout"
	EventSessionRejected       = "session_rejected"
	EventSessionMismatch       = "session_mismatch"
	EventResetCodeRequested    = "reset_code_requested"
	EventPasswordReset         = "password_reset"
	EventVerifyEmailRequested  = "verify_email_requested"
	EventEmailVerified         = "email_verified"
	EventVerificationCodeError = "verification_code_failed"
)

// Event is one audit record. UserID is the backend account id.
type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`

	Category  string `bson:"category"`
	EventType string `bson:"event_type"`

	UserID string `bson:"user_id,omitempty"`

	IP        string `bson:"ip"`
	UserAgent string `bson:"user_agent,omitempty"`
	RequestID string `bson:"request_id,omitempty"`

	Success       bool   `bson:"success"`
	FailureReason string `bson:"failure_reason,omitempty"`

	Details map[string]string `bson:"details,omitempty"`
}

// Store writes audit events and prunes old ones.
type Store struct {
	c *mongo.Collection
}

// New creates a Store on db.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// Log inserts event, filling in ID and CreatedAt when unset.
func (s *Store) Log(ctx context.Context, event Event) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, event)
	return err
}

// DeleteOlderThan removes events created before cutoff and returns how many
// were deleted.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"created_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
