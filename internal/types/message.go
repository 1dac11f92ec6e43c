package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ThreadID uuid.UUID `gorm:"type:uuid;not null;index" json:"thread_id"`

	Role string `gorm:"column:role;not null;index" json:"role"`

	// Content is a JSON-encoded list of content items. Storing it as a
	// document keeps the schema open to new item kinds without migration.
	Content datatypes.JSON `gorm:"type:jsonb;column:content;not null" json:"content"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;index" json:"updated_at"`
}

func (Message) TableName() string { return "message" }
