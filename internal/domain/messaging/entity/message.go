package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/expertraah/marketplace-api/internal/apperror"
)

// Message is a direct message owned by its conversation
type Message struct {
	ID             uuid.UUID `json:"_id"`
	ConversationID uuid.UUID `json:"conversationId"`
	SenderID       uuid.UUID `json:"senderId"`
	ReceiverID     uuid.UUID `json:"receiverId"`
	Content        string    `json:"content"`
	IsRead         bool      `json:"isRead"`
	Attachments    []string  `json:"attachments"`
	CreatedAt      time.Time `json:"createdAt"`

	// Populated identities
	Sender   *Participant `json:"sender,omitempty"`
	Receiver *Participant `json:"receiver,omitempty"`
}

// MaxContentLength bounds a single message body
const MaxContentLength = 5000

// ValidateContent validates a message body
func ValidateContent(content string) error {
	if content == "" {
		return apperror.InvalidArgument("message content cannot be empty")
	}
	if len(content) > MaxContentLength {
		return apperror.InvalidArgument("message content exceeds maximum length")
	}
	return nil
}
