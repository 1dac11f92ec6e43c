package types

import (
	"time"

	"github.com/google/uuid"
)

const DefaultThreadTitle = "New Chat"

type Thread struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title string    `gorm:"column:title;not null;default:'New Chat'" json:"title"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;index" json:"updated_at"`
}

func (Thread) TableName() string { return "thread" }

// ThreadSummary is the listing shape: a thread plus its message count.
type ThreadSummary struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int64     `json:"message_count"`
}
