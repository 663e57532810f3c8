package models

import (
	"time"
)

// Chat is a two-party conversation. Only LastMessage, Timestamp and Unread change after creation.
type Chat struct {
	ID              string    `json:"id" bson:"_id" dynamodbav:"id"`
	Participants    []string  `json:"participants" bson:"participants" dynamodbav:"participants"`
	Relationship    string    `json:"relationship" bson:"relationship" dynamodbav:"relationship"`
	SenderCountry   string    `json:"senderCountry" bson:"senderCountry" dynamodbav:"senderCountry"`
	ReceiverCountry string    `json:"receiverCountry" bson:"receiverCountry" dynamodbav:"receiverCountry"`
	CreatedAt       time.Time `json:"createdAt" bson:"createdAt" dynamodbav:"createdAt"`
	LastMessage     string    `json:"lastMessage" bson:"lastMessage" dynamodbav:"lastMessage"`
	Timestamp       int64     `json:"timestamp" bson:"timestamp" dynamodbav:"timestamp"` // epoch ms
	Unread          int       `json:"unread" bson:"unread" dynamodbav:"unread"`
}

// HasParticipant reports whether userID takes part in the chat.
func (c *Chat) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// Message is a single chat line.
type Message struct {
	ID        string `json:"id" bson:"_id" dynamodbav:"id"`
	ChatID    string `json:"chatId" bson:"chatId" dynamodbav:"chatId"`
	UserID    string `json:"userId" bson:"userId" dynamodbav:"userId"`
	Text      string `json:"text" bson:"text" dynamodbav:"text"`
	Timestamp int64  `json:"timestamp" bson:"timestamp" dynamodbav:"timestamp"` // epoch ms
}

// Chat request states.
const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
	RequestRejected = "rejected"
)

// ChatRequest is an invitation to open a chat; accepting it creates the Chat.
type ChatRequest struct {
	ID              string    `json:"id" bson:"_id" dynamodbav:"id"`
	FromUserID      string    `json:"fromUserId" bson:"fromUserId" dynamodbav:"fromUserId"`
	ToUserID        string    `json:"toUserId" bson:"toUserId" dynamodbav:"toUserId"`
	Relationship    string    `json:"relationship" bson:"relationship" dynamodbav:"relationship"`
	SenderCountry   string    `json:"senderCountry" bson:"senderCountry" dynamodbav:"senderCountry"`
	ReceiverCountry string    `json:"receiverCountry" bson:"receiverCountry" dynamodbav:"receiverCountry"`
	Status          string    `json:"status" bson:"status" dynamodbav:"status"`
	ChatID          string    `json:"chatId,omitempty" bson:"chatId,omitempty" dynamodbav:"chatId,omitempty"`
	CreatedAt       time.Time `json:"createdAt" bson:"createdAt" dynamodbav:"createdAt"`
}

type CreateChatRequest struct {
	Participants    []string `json:"participants" validate:"required,len=2,dive,required"`
	Relationship    string   `json:"relationship" validate:"required,oneof=boss colleague friend lover parent stranger"`
	SenderCountry   string   `json:"senderCountry" validate:"required"`
	ReceiverCountry string   `json:"receiverCountry" validate:"required"`
}

type SendMessageRequest struct {
	ChatID string `json:"chatId" validate:"required"`
	UserID string `json:"userId" validate:"required"`
	Text   string `json:"text" validate:"required"`
}

type NewChatRequestBody struct {
	FromUserID      string `json:"fromUserId" validate:"required"`
	ToUserID        string `json:"toUserId" validate:"required,nefield=FromUserID"`
	Relationship    string `json:"relationship" validate:"required,oneof=boss colleague friend lover parent stranger"`
	SenderCountry   string `json:"senderCountry" validate:"required"`
	ReceiverCountry string `json:"receiverCountry" validate:"required"`
}

type RespondChatRequestBody struct {
	RequestID string `json:"requestId" validate:"required"`
	Action    string `json:"action" validate:"required,oneof=accept reject"`
}
