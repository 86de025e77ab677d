package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/creatorhub/session-gateway/internal/core/domain"
)

const notificationCollection = "notifications"

// notificationDoc is the persistence shape; kept separate from the domain
// type so the ObjectID handling stays out of the domain.
type notificationDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	UserID    string             `bson:"user_id"`
	Kind      string             `bson:"kind"`
	Title     string             `bson:"title"`
	Body      string             `bson:"body,omitempty"`
	Read      bool               `bson:"read"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (d notificationDoc) toDomain() *domain.Notification {
	return &domain.Notification{
		ID:        d.ID.Hex(),
		UserID:    d.UserID,
		Kind:      d.Kind,
		Title:     d.Title,
		Body:      d.Body,
		Read:      d.Read,
		CreatedAt: d.CreatedAt,
	}
}

// NotificationRepository persists the capped per-user notification feed in
// MongoDB. The cap is enforced on write: TrimToCap deletes the oldest entries
// beyond the limit after each insert.
type NotificationRepository struct {
	col *mongo.Collection
}

// NewNotificationRepository creates a NotificationRepository on db.
func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{col: db.Collection(notificationCollection)}
}

// EnsureIndexes creates the indexes the feed queries depend on: List and
// TrimToCap sort by created_at per user, CountUnread filters on the read flag.
func (r *NotificationRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "read", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("notification indexes: %w", err)
	}
	return nil
}

// Insert stores a new notification and backfills its generated ID.
func (r *NotificationRepository) Insert(ctx context.Context, n *domain.Notification) error {
	doc := bson.M{
		"user_id":    n.UserID,
		"kind":       n.Kind,
		"title":      n.Title,
		"body":       n.Body,
		"read":       n.Read,
		"created_at": n.CreatedAt,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		n.ID = oid.Hex()
	}
	return nil
}

// List returns the newest notifications for userID, newest first.
func (r *NotificationRepository) List(ctx context.Context, userID string, limit int) ([]*domain.Notification, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.Notification
	for cur.Next(ctx) {
		var doc notificationDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode notification: %w", err)
		}
		out = append(out, doc.toDomain())
	}
	return out, cur.Err()
}

// CountUnread returns the unread counter for userID.
func (r *NotificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"user_id": userID, "read": false})
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return n, nil
}

// MarkAllRead flips every unread notification for userID to read.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	_, err := r.col.UpdateMany(ctx,
		bson.M{"user_id": userID, "read": false},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return fmt.Errorf("mark all read: %w", err)
	}
	return nil
}

// TrimToCap deletes the oldest notifications beyond keep entries.
func (r *NotificationRepository) TrimToCap(ctx context.Context, userID string, keep int) error {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(keep)).
		SetProjection(bson.M{"_id": 1})

	cur, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return fmt.Errorf("trim notifications: %w", err)
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var doc struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return fmt.Errorf("trim notifications: decode: %w", err)
		}
		ids = append(ids, doc.ID)
	}
	if err := cur.Err(); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	_, err = r.col.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return fmt.Errorf("trim notifications: delete: %w", err)
	}
	return nil
}
