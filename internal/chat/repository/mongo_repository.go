package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"gochat/internal/common"
	"gochat/internal/dbmongo"
)

type messageDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	ChatID    string             `bson:"chatId"`
	Sender    string             `bson:"sender"`
	Content   string             `bson:"content"`
	Read      bool               `bson:"read"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d *messageDocument) toDomain() *common.Message {
	return &common.Message{
		ID:        d.ID.Hex(),
		ChatID:    d.ChatID,
		SenderID:  d.Sender,
		Content:   d.Content,
		Read:      d.Read,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type chatSummaryDocument struct {
	ChatID        string    `bson:"_id"`
	Participants  []string  `bson:"participants"`
	LastMessage   string    `bson:"lastMessage"`
	LastMessageAt time.Time `bson:"lastMessageAt"`
}

var historyOrder = bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}

type mongoChatRepo struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewMongoChatRepository(db *mongo.Database) ChatRepository {
	return &mongoChatRepo{
		coll: db.Collection(dbmongo.MessagesCollection),
		now:  time.Now,
	}
}

func (r *mongoChatRepo) Save(ctx context.Context, msg *common.Message) error {
	now := r.now().UTC().Truncate(time.Millisecond)
	doc := messageDocument{
		ID:        primitive.NewObjectID(),
		ChatID:    msg.ChatID,
		Sender:    msg.SenderID,
		Content:   msg.Content,
		Read:      msg.Read,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("save message: %w", err)
	}

	msg.ID = doc.ID.Hex()
	msg.CreatedAt = now
	msg.UpdatedAt = now
	return nil
}

func (r *mongoChatRepo) FetchHistory(ctx context.Context, chatID string) ([]*common.Message, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"chatId": chatID}, options.Find().SetSort(historyOrder))
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	defer cursor.Close(ctx)

	messages := make([]*common.Message, 0)
	for cursor.Next(ctx) {
		var doc messageDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode message: %w", err)
		}
		messages = append(messages, doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	return messages, nil
}

// DeleteOwned matches on both _id and sender in a single FindOneAndDelete, so
// a message sent by someone else is never removed.
func (r *mongoChatRepo) DeleteOwned(ctx context.Context, messageID, senderID string) (*common.Message, error) {
	oid, err := primitive.ObjectIDFromHex(messageID)
	if err != nil {
		return nil, common.ErrNotFound
	}

	var doc messageDocument
	err = r.coll.FindOneAndDelete(ctx, bson.M{"_id": oid, "sender": senderID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("delete message: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *mongoChatRepo) ListChats(ctx context.Context, accountID string) ([]*common.ChatSummary, error) {
	chatIDs, err := r.coll.Distinct(ctx, "chatId", bson.M{"sender": accountID})
	if err != nil {
		return nil, fmt.Errorf("list chat ids: %w", err)
	}
	if len(chatIDs) == 0 {
		return []*common.ChatSummary{}, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"chatId": bson.M{"$in": chatIDs}}}},
		{{Key: "$sort", Value: historyOrder}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$chatId"},
			{Key: "participants", Value: bson.M{"$addToSet": "$sender"}},
			{Key: "lastMessage", Value: bson.M{"$last": "$content"}},
			{Key: "lastMessageAt", Value: bson.M{"$last": "$createdAt"}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "lastMessageAt", Value: -1}, {Key: "_id", Value: 1}}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("summarize chats: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []chatSummaryDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode chat summaries: %w", err)
	}

	summaries := make([]*common.ChatSummary, 0, len(docs))
	for _, doc := range docs {
		at := doc.LastMessageAt
		participants := doc.Participants
		// $addToSet has no defined order
		sort.Strings(participants)
		summaries = append(summaries, &common.ChatSummary{
			ID:            doc.ChatID,
			Participants:  participants,
			LastMessage:   doc.LastMessage,
			LastMessageAt: &at,
		})
	}
	SortSummaries(summaries)
	return summaries, nil
}
