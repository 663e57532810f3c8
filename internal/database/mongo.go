package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/models"
)

// Collection names.
const (
	ChatsCollection        = "chats"
	MessagesCollection     = "messages"
	UsersCollection        = "users"
	ChatRequestsCollection = "chat_requests"
)

// MongoStore implements Store on a MongoDB database.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// ConnectMongo dials uri and verifies the connection with a ping.
func ConnectMongo(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return NewMongoStore(client.Database(dbName)), nil
}

// NewMongoStore wraps an existing database handle.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{client: db.Client(), db: db}
}

func (s *MongoStore) collection(name string) *mongo.Collection {
	return s.db.Collection(name)
}

func (s *MongoStore) CreateChat(ctx context.Context, chat *models.Chat) error {
	ensureID(&chat.ID)
	if _, err := s.collection(ChatsCollection).InsertOne(ctx, chat); err != nil {
		return fmt.Errorf("insert chat: %w", err)
	}
	return nil
}

func (s *MongoStore) GetChat(ctx context.Context, id string) (*models.Chat, error) {
	var chat models.Chat
	if err := findOne(ctx, s.collection(ChatsCollection), bson.M{"_id": id}, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

func (s *MongoStore) ListChats(ctx context.Context, userID string) ([]models.Chat, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cur, err := s.collection(ChatsCollection).Find(ctx, bson.M{"participants": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find chats: %w", err)
	}
	chats := []models.Chat{}
	if err := cur.All(ctx, &chats); err != nil {
		return nil, fmt.Errorf("decode chats: %w", err)
	}
	return chats, nil
}

func (s *MongoStore) MarkChatRead(ctx context.Context, chatID string) error {
	res, err := s.collection(ChatsCollection).UpdateOne(ctx,
		bson.M{"_id": chatID},
		bson.M{"$set": bson.M{"unread": 0}},
	)
	if err != nil {
		return fmt.Errorf("mark chat read: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) AddMessage(ctx context.Context, msg *models.Message) error {
	ensureID(&msg.ID)
	res, err := s.collection(ChatsCollection).UpdateOne(ctx,
		bson.M{"_id": msg.ChatID},
		bson.M{
			"$set": bson.M{"lastMessage": msg.Text, "timestamp": msg.Timestamp},
			"$inc": bson.M{"unread": 1},
		},
	)
	if err != nil {
		return fmt.Errorf("update chat: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	if _, err := s.collection(MessagesCollection).InsertOne(ctx, msg); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (s *MongoStore) ListMessages(ctx context.Context, chatID string, limit int) ([]models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := s.collection(MessagesCollection).Find(ctx, bson.M{"chatId": chatID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find messages: %w", err)
	}
	msgs := []models.Message{}
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return tailMessages(msgs, limit), nil
}

func (s *MongoStore) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	var p models.UserProfile
	if err := findOne(ctx, s.collection(UsersCollection), bson.M{"_id": userID}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *MongoStore) UpsertProfile(ctx context.Context, profile *models.UserProfile) error {
	_, err := s.collection(UsersCollection).UpdateOne(ctx,
		bson.M{"_id": profile.UserID},
		bson.M{
			"$set": bson.M{
				"name":      profile.Name,
				"country":   profile.Country,
				"language":  profile.Language,
				"updatedAt": profile.UpdatedAt,
			},
			"$setOnInsert": bson.M{"createdAt": profile.CreatedAt},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func (s *MongoStore) CreateChatRequest(ctx context.Context, req *models.ChatRequest) error {
	ensureID(&req.ID)
	if _, err := s.collection(ChatRequestsCollection).InsertOne(ctx, req); err != nil {
		return fmt.Errorf("insert chat request: %w", err)
	}
	return nil
}

func (s *MongoStore) GetChatRequest(ctx context.Context, id string) (*models.ChatRequest, error) {
	var r models.ChatRequest
	if err := findOne(ctx, s.collection(ChatRequestsCollection), bson.M{"_id": id}, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *MongoStore) ListPendingChatRequests(ctx context.Context, toUserID string) ([]models.ChatRequest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.collection(ChatRequestsCollection).Find(ctx,
		bson.M{"toUserId": toUserID, "status": models.RequestPending}, opts)
	if err != nil {
		return nil, fmt.Errorf("find chat requests: %w", err)
	}
	reqs := []models.ChatRequest{}
	if err := cur.All(ctx, &reqs); err != nil {
		return nil, fmt.Errorf("decode chat requests: %w", err)
	}
	return reqs, nil
}

func (s *MongoStore) UpdateChatRequest(ctx context.Context, req *models.ChatRequest) error {
	res, err := s.collection(ChatRequestsCollection).ReplaceOne(ctx, bson.M{"_id": req.ID}, req)
	if err != nil {
		return fmt.Errorf("update chat request: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func findOne(ctx context.Context, coll *mongo.Collection, filter bson.M, out any) error {
	err := coll.FindOne(ctx, filter).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("find in %s: %w", coll.Name(), err)
	}
	return nil
}
