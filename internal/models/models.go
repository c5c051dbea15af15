package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID               int64
	Email            string
	Username         string
	PassHash         []byte
	VerifyCode       string
	VerifyCodeExpiry time.Time
	IsVerified       bool
	IsAccepting      bool
}

// Message is owned by exactly one user and is append-only.
type Message struct {
	ID        uuid.UUID `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// EmailJob is the payload published to the mail queue.
type EmailJob struct {
	To       string `json:"to"`
	Username string `json:"username"`
	Code     string `json:"code"`
	Subject  string `json:"subject"`
}
