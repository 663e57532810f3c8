// Package database persists chats, messages, user profiles and chat requests.
// Three backends share the Store contract: DynamoDB, MongoDB and an in-memory
// map used by tests and local development.
package database

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"

	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/models"
)

// ErrNotFound is returned when the addressed record does not exist.
var ErrNotFound = errors.New("not found")

// Store is the document store behind the persisted-state routes and the relay.
type Store interface {
	CreateChat(ctx context.Context, chat *models.Chat) error
	GetChat(ctx context.Context, id string) (*models.Chat, error)
	// ListChats returns the chats userID takes part in, most recent activity first.
	ListChats(ctx context.Context, userID string) ([]models.Chat, error)
	MarkChatRead(ctx context.Context, chatID string) error

	// AddMessage stores msg and updates the chat's last message, timestamp and unread count.
	AddMessage(ctx context.Context, msg *models.Message) error
	// ListMessages returns up to limit of the most recent messages, oldest first. limit <= 0 means all.
	ListMessages(ctx context.Context, chatID string, limit int) ([]models.Message, error)

	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	// UpsertProfile keeps the original CreatedAt when the profile already exists.
	UpsertProfile(ctx context.Context, profile *models.UserProfile) error

	CreateChatRequest(ctx context.Context, req *models.ChatRequest) error
	GetChatRequest(ctx context.Context, id string) (*models.ChatRequest, error)
	ListPendingChatRequests(ctx context.Context, toUserID string) ([]models.ChatRequest, error)
	UpdateChatRequest(ctx context.Context, req *models.ChatRequest) error

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

func sortChats(chats []models.Chat) {
	sort.SliceStable(chats, func(i, j int) bool { return chats[i].Timestamp > chats[j].Timestamp })
}

func sortRequests(reqs []models.ChatRequest) {
	sort.SliceStable(reqs, func(i, j int) bool { return reqs[i].CreatedAt.After(reqs[j].CreatedAt) })
}

// tailMessages sorts msgs by timestamp and keeps the last limit entries.
func tailMessages(msgs []models.Message, limit int) []models.Message {
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].Timestamp < msgs[j].Timestamp })
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs
}
