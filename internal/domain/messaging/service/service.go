package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/expertraah/marketplace-api/internal/apperror"
	"github.com/expertraah/marketplace-api/internal/auth"
	"github.com/expertraah/marketplace-api/internal/domain/messaging/entity"
	userentity "github.com/expertraah/marketplace-api/internal/domain/user/entity"
)

// DefaultPageSize is the message page size when the caller does not set one
const DefaultPageSize = 50

// ConversationRepository defines the interface for conversation storage
type ConversationRepository interface {
	GetOrCreate(ctx context.Context, a, b uuid.UUID) (*entity.Conversation, error)
	GetByParticipants(ctx context.Context, a, b uuid.UUID) (*entity.Conversation, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.Conversation, error)
	TotalUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}

// MessageRepository defines the interface for message storage. Save,
// MarkConversationRead and Delete must apply their conversation-side updates
// atomically with the message write.
type MessageRepository interface {
	Save(ctx context.Context, msg *entity.Message, preview string) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Message, error)
	ListByConversation(ctx context.Context, conversationID uuid.UUID, limit, offset int) ([]entity.Message, error)
	Count(ctx context.Context, conversationID uuid.UUID) (int64, error)
	MarkConversationRead(ctx context.Context, conversationID, userID uuid.UUID) error
	Delete(ctx context.Context, msg *entity.Message) error
}

// UserDirectory resolves accounts for validation, identity population and
// contact-form provisioning
type UserDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*userentity.User, error)
	GetByEmail(ctx context.Context, email string) (*userentity.User, error)
	GetByRole(ctx context.Context, role string) (*userentity.User, error)
	Create(ctx context.Context, u *userentity.User) error
}

// Service handles the direct-messaging inbox
type Service struct {
	conversations ConversationRepository
	messages      MessageRepository
	users         UserDirectory
}

// New creates a new messaging service
func New(conversations ConversationRepository, messages MessageRepository, users UserDirectory) *Service {
	return &Service{
		conversations: conversations,
		messages:      messages,
		users:         users,
	}
}

// CreateMessageInput represents input for sending a message
type CreateMessageInput struct {
	SenderID    uuid.UUID
	ReceiverID  uuid.UUID
	Content     string
	Attachments []string
}

// CreateMessage persists a message, lazily creating the pair's conversation,
// and bumps the receiver's unread counter
func (s *Service) CreateMessage(ctx context.Context, in CreateMessageInput) (*entity.Message, error) {
	if in.SenderID == in.ReceiverID {
		return nil, apperror.InvalidArgument("cannot send message to yourself")
	}
	if err := entity.ValidateContent(in.Content); err != nil {
		return nil, err
	}

	sender, err := s.users.GetByID(ctx, in.SenderID)
	if err != nil {
		return nil, fmt.Errorf("getting sender: %w", err)
	}
	receiver, err := s.users.GetByID(ctx, in.ReceiverID)
	if err != nil {
		return nil, fmt.Errorf("getting receiver: %w", err)
	}
	if sender == nil || receiver == nil {
		return nil, apperror.NotFound("user not found")
	}

	conv, err := s.conversations.GetOrCreate(ctx, in.SenderID, in.ReceiverID)
	if err != nil {
		return nil, fmt.Errorf("resolving conversation: %w", err)
	}

	attachments := in.Attachments
	if attachments == nil {
		attachments = []string{}
	}

	msg := &entity.Message{
		ID:             uuid.New(),
		ConversationID: conv.ID,
		SenderID:       in.SenderID,
		ReceiverID:     in.ReceiverID,
		Content:        in.Content,
		IsRead:         false,
		Attachments:    attachments,
		CreatedAt:      time.Now(),
	}

	if err := s.messages.Save(ctx, msg, entity.Preview(in.Content)); err != nil {
		return nil, fmt.Errorf("saving message: %w", err)
	}

	msg.Sender = participantOf(sender)
	msg.Receiver = participantOf(receiver)
	return msg, nil
}

// GetConversations returns the user's conversations, newest activity first,
// annotated with the user's unread count and the other participant
func (s *Service) GetConversations(ctx context.Context, userID uuid.UUID) ([]entity.Conversation, error) {
	conversations, err := s.conversations.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}
	return conversations, nil
}

// Pagination describes a message page
type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

// GetMessagesOutput represents a page of conversation history
type GetMessagesOutput struct {
	Messages       []entity.Message `json:"messages"`
	Pagination     Pagination       `json:"pagination"`
	ConversationID *uuid.UUID       `json:"conversationId"`
}

// GetMessages returns a chronological page of the pair's history. A missing
// conversation is a normal state, not an error.
func (s *Service) GetMessages(ctx context.Context, userID, otherUserID uuid.UUID, page, limit int) (*GetMessagesOutput, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}

	conv, err := s.conversations.GetByParticipants(ctx, userID, otherUserID)
	if err != nil {
		return nil, fmt.Errorf("resolving conversation: %w", err)
	}
	if conv == nil {
		return &GetMessagesOutput{
			Messages:       []entity.Message{},
			Pagination:     Pagination{Total: 0, Page: page, Limit: limit, Pages: 0},
			ConversationID: nil,
		}, nil
	}

	messages, err := s.messages.ListByConversation(ctx, conv.ID, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	if messages == nil {
		messages = []entity.Message{}
	}

	total, err := s.messages.Count(ctx, conv.ID)
	if err != nil {
		return nil, fmt.Errorf("counting messages: %w", err)
	}

	return &GetMessagesOutput{
		Messages: messages,
		Pagination: Pagination{
			Total: total,
			Page:  page,
			Limit: limit,
			Pages: int((total + int64(limit) - 1) / int64(limit)),
		},
		ConversationID: &conv.ID,
	}, nil
}

// MarkMessagesAsRead marks everything the other user sent as read and resets
// the caller's unread counter
func (s *Service) MarkMessagesAsRead(ctx context.Context, userID, otherUserID uuid.UUID) error {
	conv, err := s.conversations.GetByParticipants(ctx, userID, otherUserID)
	if err != nil {
		return fmt.Errorf("resolving conversation: %w", err)
	}
	if conv == nil {
		return apperror.NotFound("conversation not found")
	}

	if err := s.messages.MarkConversationRead(ctx, conv.ID, userID); err != nil {
		return fmt.Errorf("marking conversation read: %w", err)
	}
	return nil
}

// GetUnreadMessageCount sums the user's unread counters across every
// conversation they participate in
func (s *Service) GetUnreadMessageCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	total, err := s.conversations.TotalUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("summing unread: %w", err)
	}
	return total, nil
}

// DeleteMessage permanently removes a message; only the sender may delete
func (s *Service) DeleteMessage(ctx context.Context, messageID, userID uuid.UUID) error {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return fmt.Errorf("getting message: %w", err)
	}
	if msg == nil {
		return apperror.NotFound("message not found")
	}
	if msg.SenderID != userID {
		return apperror.PermissionDenied("unauthorized to delete this message")
	}

	if err := s.messages.Delete(ctx, msg); err != nil {
		return fmt.Errorf("deleting message: %w", err)
	}
	return nil
}

// ContactData is a submission from the public contact form
type ContactData struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Message   string `json:"message"`
}

// SendContactMessage routes a contact-form submission to the support admin's
// inbox. The admin account is provisioned at startup from config; only the
// per-email guest account is created lazily, and repeated submissions with
// the same email reuse it.
func (s *Service) SendContactMessage(ctx context.Context, data ContactData) (*entity.Message, error) {
	if data.Email == "" || data.Message == "" {
		return nil, apperror.InvalidArgument("email and message are required")
	}

	admin, err := s.users.GetByRole(ctx, userentity.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("getting admin account: %w", err)
	}
	if admin == nil {
		return nil, apperror.Internal("support admin account is not configured")
	}

	guest, err := s.users.GetByEmail(ctx, data.Email)
	if err != nil {
		return nil, fmt.Errorf("getting guest account: %w", err)
	}
	if guest == nil {
		guest, err = s.provisionGuest(ctx, data)
		if err != nil {
			return nil, err
		}
	}

	content := fmt.Sprintf(
		"Contact Form Message:\n\nFrom: %s %s\nEmail: %s\n\n%s",
		data.FirstName, data.LastName, data.Email, data.Message,
	)

	return s.CreateMessage(ctx, CreateMessageInput{
		SenderID:   guest.ID,
		ReceiverID: admin.ID,
		Content:    content,
	})
}

func (s *Service) provisionGuest(ctx context.Context, data ContactData) (*userentity.User, error) {
	name := strings.TrimSpace(data.FirstName + " " + data.LastName)
	if name == "" {
		name = "Guest"
	}

	hash, err := auth.HashPassword("guest_" + uuid.New().String())
	if err != nil {
		return nil, fmt.Errorf("hashing guest password: %w", err)
	}

	guest := &userentity.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        data.Email,
		PasswordHash: hash,
		AccountType:  userentity.AccountTypeBuyer,
		Roles:        []string{userentity.RoleGuest},
	}

	if err := s.users.Create(ctx, guest); err != nil {
		// A concurrent submission may have created the same guest; reuse it
		existing, getErr := s.users.GetByEmail(ctx, data.Email)
		if getErr == nil && existing != nil {
			return existing, nil
		}
		return nil, fmt.Errorf("creating guest account: %w", err)
	}
	return guest, nil
}

func participantOf(u *userentity.User) *entity.Participant {
	return &entity.Participant{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		ProfileImage: u.ProfileImage,
		AccountType:  string(u.AccountType),
		IsOnline:     u.IsOnline,
	}
}
