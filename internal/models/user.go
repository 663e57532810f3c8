package models

import (
	"time"
)

// UserProfile holds the display and locale settings of a user.
// Identity itself comes from the external identity provider.
type UserProfile struct {
	UserID    string    `json:"userId" bson:"_id" dynamodbav:"userId"`
	Name      string    `json:"name" bson:"name" dynamodbav:"name"`
	Country   string    `json:"country" bson:"country" dynamodbav:"country"`
	Language  string    `json:"language" bson:"language" dynamodbav:"language"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt" dynamodbav:"updatedAt"`
}

type UserProfileRequest struct {
	UserID   string `json:"userId" validate:"required"`
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Country  string `json:"country" validate:"required"`
	Language string `json:"language"`
}
