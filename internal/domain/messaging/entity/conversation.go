package entity

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is the single message thread between an unordered pair of
// users. Participants are stored in normalized order (smaller UUID first) so
// the pair can carry a unique index.
type Conversation struct {
	ID             uuid.UUID  `json:"_id"`
	ParticipantOne uuid.UUID  `json:"-"`
	ParticipantTwo uuid.UUID  `json:"-"`
	LastMessage    string     `json:"lastMessage,omitempty"`
	LastMessageAt  *time.Time `json:"lastMessageAt,omitempty"`
	UnreadOne      int        `json:"-"`
	UnreadTwo      int        `json:"-"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`

	// Annotations for the requesting user
	UnreadCount int          `json:"unreadCount"`
	OtherUser   *Participant `json:"otherUser,omitempty"`
}

// Participant is the identity projection of a user inside the inbox
type Participant struct {
	ID           uuid.UUID `json:"_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email,omitempty"`
	ProfileImage string    `json:"profileImage,omitempty"`
	AccountType  string    `json:"accountType,omitempty"`
	IsOnline     bool      `json:"isOnline"`
}

// NormalizePair orders two participant IDs for storage
func NormalizePair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if a.String() > b.String() {
		return b, a
	}
	return a, b
}

// UnreadFor returns the unread counter belonging to the given participant
func (c *Conversation) UnreadFor(userID uuid.UUID) int {
	if userID == c.ParticipantOne {
		return c.UnreadOne
	}
	return c.UnreadTwo
}

// OtherParticipant returns the participant that is not the given user
func (c *Conversation) OtherParticipant(userID uuid.UUID) uuid.UUID {
	if userID == c.ParticipantOne {
		return c.ParticipantTwo
	}
	return c.ParticipantOne
}

// PreviewLength is the number of content characters kept on the conversation
const PreviewLength = 100

// Preview truncates message content for the conversation list
func Preview(content string) string {
	runes := []rune(content)
	if len(runes) <= PreviewLength {
		return content
	}
	return string(runes[:PreviewLength])
}
