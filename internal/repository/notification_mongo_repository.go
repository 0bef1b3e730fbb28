package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// NotificationCollection is the Mongo collection holding notifications.
const NotificationCollection = "notifications"

type notificationDocument struct {
	ID        string    `bson:"_id"`
	StaffID   string    `bson:"staff_id"`
	Type      string    `bson:"type"`
	Title     string    `bson:"title"`
	Message   string    `bson:"message"`
	TicketID  string    `bson:"ticket_id"`
	MessageID *string   `bson:"message_id,omitempty"`
	Read      bool      `bson:"read"`
	CreatedAt time.Time `bson:"created_at"`
}

func (d notificationDocument) toDomain() domain.Notification {
	return domain.Notification{
		ID:        d.ID,
		StaffID:   d.StaffID,
		Type:      domain.NotificationType(d.Type),
		Title:     d.Title,
		Message:   d.Message,
		TicketID:  d.TicketID,
		MessageID: d.MessageID,
		Read:      d.Read,
		CreatedAt: d.CreatedAt,
	}
}

type mongoNotificationRepository struct {
	col *mongo.Collection
}

// NewMongoNotificationRepository stores notifications in db's notifications collection.
func NewMongoNotificationRepository(db *mongo.Database) NotificationRepository {
	return &mongoNotificationRepository{col: db.Collection(NotificationCollection)}
}

func (r *mongoNotificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	doc := notificationDocument{
		ID:        uuid.NewString(),
		StaffID:   notification.StaffID,
		Type:      string(notification.Type),
		Title:     notification.Title,
		Message:   notification.Message,
		TicketID:  notification.TicketID,
		MessageID: notification.MessageID,
		Read:      notification.Read,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return err
	}
	notification.ID = doc.ID
	notification.CreatedAt = doc.CreatedAt
	return nil
}

func (r *mongoNotificationRepository) ListByStaff(ctx context.Context, staffID string, unreadOnly bool) ([]domain.Notification, error) {
	filter := bson.M{"staff_id": staffID}
	if unreadOnly {
		filter["read"] = false
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []notificationDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	result := make([]domain.Notification, 0, len(docs))
	for _, doc := range docs {
		result = append(result, doc.toDomain())
	}
	return result, nil
}

func (r *mongoNotificationRepository) MarkRead(ctx context.Context, id, staffID string) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "staff_id": staffID},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
