package dao

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/expertraah/marketplace-api/internal/domain/messaging/entity"
)

// MessagePostgres implements message storage for PostgreSQL. Multi-write
// operations that also touch the owning conversation run in one transaction
// so no partial state survives a failure, and counter changes are SQL
// increments so concurrent sends never lose one.
type MessagePostgres struct {
	pool *pgxpool.Pool
}

// NewMessagePostgres creates a new PostgreSQL message repository
func NewMessagePostgres(pool *pgxpool.Pool) *MessagePostgres {
	return &MessagePostgres{pool: pool}
}

// Save inserts the message and updates the owning conversation (preview,
// activity timestamp, receiver's unread counter) atomically
func (r *MessagePostgres) Save(ctx context.Context, msg *entity.Message, preview string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO messages (id, conversation_id, sender_id, receiver_id, content, is_read, attachments, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, msg.ID, msg.ConversationID, msg.SenderID, msg.ReceiverID, msg.Content, msg.IsRead, msg.Attachments, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE conversations SET
			last_message = $2,
			last_message_at = $3,
			updated_at = $3,
			unread_one = unread_one + CASE WHEN participant_one = $4 THEN 1 ELSE 0 END,
			unread_two = unread_two + CASE WHEN participant_two = $4 THEN 1 ELSE 0 END
		WHERE id = $1
	`, msg.ConversationID, preview, msg.CreatedAt, msg.ReceiverID)
	if err != nil {
		return fmt.Errorf("updating conversation: %w", err)
	}

	return tx.Commit(ctx)
}

// GetByID retrieves a message by ID; returns nil when not found
func (r *MessagePostgres) GetByID(ctx context.Context, id uuid.UUID) (*entity.Message, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, conversation_id, sender_id, receiver_id, content, is_read, attachments, created_at
		FROM messages
		WHERE id = $1
	`, id)

	var msg entity.Message
	err := row.Scan(
		&msg.ID,
		&msg.ConversationID,
		&msg.SenderID,
		&msg.ReceiverID,
		&msg.Content,
		&msg.IsRead,
		&msg.Attachments,
		&msg.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning message: %w", err)
	}
	return &msg, nil
}

// ListByConversation retrieves a chronological page of messages (oldest
// first) with both parties' identities populated
func (r *MessagePostgres) ListByConversation(ctx context.Context, conversationID uuid.UUID, limit, offset int) ([]entity.Message, error) {
	query := `
		SELECT m.id, m.conversation_id, m.sender_id, m.receiver_id, m.content, m.is_read, m.attachments, m.created_at,
		       s.id, s.name, s.profile_image, s.account_type, s.is_online,
		       rcv.id, rcv.name, rcv.profile_image, rcv.account_type, rcv.is_online
		FROM messages m
		JOIN users s ON s.id = m.sender_id
		JOIN users rcv ON rcv.id = m.receiver_id
		WHERE m.conversation_id = $1
		ORDER BY m.created_at ASC, m.id ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, conversationID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var messages []entity.Message
	for rows.Next() {
		var msg entity.Message
		var sender, receiver entity.Participant

		err := rows.Scan(
			&msg.ID,
			&msg.ConversationID,
			&msg.SenderID,
			&msg.ReceiverID,
			&msg.Content,
			&msg.IsRead,
			&msg.Attachments,
			&msg.CreatedAt,
			&sender.ID,
			&sender.Name,
			&sender.ProfileImage,
			&sender.AccountType,
			&sender.IsOnline,
			&receiver.ID,
			&receiver.Name,
			&receiver.ProfileImage,
			&receiver.AccountType,
			&receiver.IsOnline,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning message row: %w", err)
		}

		msg.Sender = &sender
		msg.Receiver = &receiver
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}

// Count returns the total number of messages in a conversation
func (r *MessagePostgres) Count(ctx context.Context, conversationID uuid.UUID) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM messages WHERE conversation_id = $1`, conversationID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting messages: %w", err)
	}
	return count, nil
}

// MarkConversationRead marks every unread message addressed to the user read
// and resets the user's counter in the same transaction
func (r *MessagePostgres) MarkConversationRead(ctx context.Context, conversationID, userID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE messages SET is_read = TRUE
		WHERE conversation_id = $1 AND receiver_id = $2 AND NOT is_read
	`, conversationID, userID)
	if err != nil {
		return fmt.Errorf("marking messages read: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE conversations SET
			unread_one = CASE WHEN participant_one = $2 THEN 0 ELSE unread_one END,
			unread_two = CASE WHEN participant_two = $2 THEN 0 ELSE unread_two END,
			updated_at = $3
		WHERE id = $1
	`, conversationID, userID, time.Now())
	if err != nil {
		return fmt.Errorf("resetting unread counter: %w", err)
	}

	return tx.Commit(ctx)
}

// Delete removes a message. When the message is still unread the receiver's
// counter goes down with it, keeping the counter equal to the number of
// unread messages. The read flag is taken from the deleted row itself so a
// mark-read racing this delete cannot leave the counter off by one.
func (r *MessagePostgres) Delete(ctx context.Context, msg *entity.Message) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var isRead bool
	var conversationID, receiverID uuid.UUID
	err = tx.QueryRow(ctx, `
		DELETE FROM messages WHERE id = $1
		RETURNING is_read, conversation_id, receiver_id
	`, msg.ID).Scan(&isRead, &conversationID, &receiverID)
	if err == pgx.ErrNoRows {
		// Already gone; nothing to adjust
		return tx.Commit(ctx)
	}
	if err != nil {
		return fmt.Errorf("deleting message: %w", err)
	}

	if !isRead {
		_, err = tx.Exec(ctx, `
			UPDATE conversations SET
				unread_one = GREATEST(unread_one - CASE WHEN participant_one = $2 THEN 1 ELSE 0 END, 0),
				unread_two = GREATEST(unread_two - CASE WHEN participant_two = $2 THEN 1 ELSE 0 END, 0)
			WHERE id = $1
		`, conversationID, receiverID)
		if err != nil {
			return fmt.Errorf("adjusting unread counter: %w", err)
		}
	}

	return tx.Commit(ctx)
}
