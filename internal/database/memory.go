package database

import (
	"context"
	"sync"

	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/models"
)

// MemoryStore keeps everything in process memory. Records are copied in and
// out so callers never share state with the store.
type MemoryStore struct {
	mu       sync.RWMutex
	chats    map[string]models.Chat
	messages map[string][]models.Message
	profiles map[string]models.UserProfile
	requests map[string]models.ChatRequest
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		chats:    make(map[string]models.Chat),
		messages: make(map[string][]models.Message),
		profiles: make(map[string]models.UserProfile),
		requests: make(map[string]models.ChatRequest),
	}
}

func (m *MemoryStore) CreateChat(_ context.Context, chat *models.Chat) error {
	ensureID(&chat.ID)
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *chat
	c.Participants = append([]string(nil), chat.Participants...)
	m.chats[c.ID] = c
	return nil
}

func (m *MemoryStore) GetChat(_ context.Context, id string) (*models.Chat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.chats[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (m *MemoryStore) ListChats(_ context.Context, userID string) ([]models.Chat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Chat{}
	for _, c := range m.chats {
		if c.HasParticipant(userID) {
			out = append(out, c)
		}
	}
	sortChats(out)
	return out, nil
}

func (m *MemoryStore) MarkChatRead(_ context.Context, chatID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.chats[chatID]
	if !ok {
		return ErrNotFound
	}
	c.Unread = 0
	m.chats[chatID] = c
	return nil
}

func (m *MemoryStore) AddMessage(_ context.Context, msg *models.Message) error {
	ensureID(&msg.ID)
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.chats[msg.ChatID]
	if !ok {
		return ErrNotFound
	}
	c.LastMessage = msg.Text
	c.Timestamp = msg.Timestamp
	c.Unread++
	m.chats[c.ID] = c
	m.messages[msg.ChatID] = append(m.messages[msg.ChatID], *msg)
	return nil
}

func (m *MemoryStore) ListMessages(_ context.Context, chatID string, limit int) ([]models.Message, error) {
	m.mu.RLock()
	out := append([]models.Message{}, m.messages[chatID]...)
	m.mu.RUnlock()
	return tailMessages(out, limit), nil
}

func (m *MemoryStore) GetProfile(_ context.Context, userID string) (*models.UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *MemoryStore) UpsertProfile(_ context.Context, profile *models.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.profiles[profile.UserID]; ok {
		profile.CreatedAt = old.CreatedAt
	}
	m.profiles[profile.UserID] = *profile
	return nil
}

func (m *MemoryStore) CreateChatRequest(_ context.Context, req *models.ChatRequest) error {
	ensureID(&req.ID)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[req.ID] = *req
	return nil
}

func (m *MemoryStore) GetChatRequest(_ context.Context, id string) (*models.ChatRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (m *MemoryStore) ListPendingChatRequests(_ context.Context, toUserID string) ([]models.ChatRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.ChatRequest{}
	for _, r := range m.requests {
		if r.ToUserID == toUserID && r.Status == models.RequestPending {
			out = append(out, r)
		}
	}
	sortRequests(out)
	return out, nil
}

func (m *MemoryStore) UpdateChatRequest(_ context.Context, req *models.ChatRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[req.ID]; !ok {
		return ErrNotFound
	}
	m.requests[req.ID] = *req
	return nil
}

func (m *MemoryStore) Ping(context.Context) error  { return nil }
func (m *MemoryStore) Close(context.Context) error { return nil }
