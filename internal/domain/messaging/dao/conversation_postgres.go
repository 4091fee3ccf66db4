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

const conversationColumns = `id, participant_one, participant_two, last_message,
	last_message_at, unread_one, unread_two, created_at, updated_at`

// ConversationPostgres implements conversation storage for PostgreSQL
type ConversationPostgres struct {
	pool *pgxpool.Pool
}

// NewConversationPostgres creates a new PostgreSQL conversation repository
func NewConversationPostgres(pool *pgxpool.Pool) *ConversationPostgres {
	return &ConversationPostgres{pool: pool}
}

// GetOrCreate returns the conversation for the unordered pair, creating it
// with zeroed counters when absent. Concurrent first messages converge on one
// row through the unique pair index.
func (r *ConversationPostgres) GetOrCreate(ctx context.Context, a, b uuid.UUID) (*entity.Conversation, error) {
	one, two := entity.NormalizePair(a, b)

	now := time.Now()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO conversations (id, participant_one, participant_two, unread_one, unread_two, created_at, updated_at)
		VALUES ($1, $2, $3, 0, 0, $4, $4)
		ON CONFLICT (participant_one, participant_two) DO NOTHING
	`, uuid.New(), one, two, now)
	if err != nil {
		return nil, fmt.Errorf("inserting conversation: %w", err)
	}

	conv, err := r.GetByParticipants(ctx, a, b)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, fmt.Errorf("conversation missing after upsert")
	}
	return conv, nil
}

// GetByParticipants retrieves the conversation for the unordered pair;
// returns nil when none exists
func (r *ConversationPostgres) GetByParticipants(ctx context.Context, a, b uuid.UUID) (*entity.Conversation, error) {
	one, two := entity.NormalizePair(a, b)

	row := r.pool.QueryRow(ctx, `
		SELECT `+conversationColumns+`
		FROM conversations
		WHERE participant_one = $1 AND participant_two = $2
	`, one, two)

	return scanConversation(row)
}

// ListByUser retrieves the user's conversations newest-activity first, each
// annotated with the user's unread count and the other participant's identity
func (r *ConversationPostgres) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.Conversation, error) {
	query := `
		SELECT c.id, c.participant_one, c.participant_two, c.last_message,
		       c.last_message_at, c.unread_one, c.unread_two, c.created_at, c.updated_at,
		       u.id, u.name, u.email, u.profile_image, u.account_type, u.is_online
		FROM conversations c
		JOIN users u ON u.id = CASE WHEN c.participant_one = $1 THEN c.participant_two ELSE c.participant_one END
		WHERE c.participant_one = $1 OR c.participant_two = $1
		ORDER BY c.last_message_at DESC NULLS LAST, c.updated_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying conversations: %w", err)
	}
	defer rows.Close()

	var conversations []entity.Conversation
	for rows.Next() {
		var conv entity.Conversation
		var other entity.Participant

		err := rows.Scan(
			&conv.ID,
			&conv.ParticipantOne,
			&conv.ParticipantTwo,
			&conv.LastMessage,
			&conv.LastMessageAt,
			&conv.UnreadOne,
			&conv.UnreadTwo,
			&conv.CreatedAt,
			&conv.UpdatedAt,
			&other.ID,
			&other.Name,
			&other.Email,
			&other.ProfileImage,
			&other.AccountType,
			&other.IsOnline,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning conversation row: %w", err)
		}

		conv.UnreadCount = conv.UnreadFor(userID)
		conv.OtherUser = &other
		conversations = append(conversations, conv)
	}

	return conversations, rows.Err()
}

// TotalUnread sums the user's unread counters across all their conversations
func (r *ConversationPostgres) TotalUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(CASE WHEN participant_one = $1 THEN unread_one ELSE unread_two END), 0)
		FROM conversations
		WHERE participant_one = $1 OR participant_two = $1
	`, userID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("summing unread counters: %w", err)
	}
	return total, nil
}

// SumUnread sums every unread counter across all conversations. The admin
// stats snapshot reports this platform-wide total.
func (r *ConversationPostgres) SumUnread(ctx context.Context) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(unread_one + unread_two), 0) FROM conversations
	`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("summing unread counters: %w", err)
	}
	return total, nil
}

// scanConversation scans a single conversation row
func scanConversation(row pgx.Row) (*entity.Conversation, error) {
	var conv entity.Conversation
	err := row.Scan(
		&conv.ID,
		&conv.ParticipantOne,
		&conv.ParticipantTwo,
		&conv.LastMessage,
		&conv.LastMessageAt,
		&conv.UnreadOne,
		&conv.UnreadTwo,
		&conv.CreatedAt,
		&conv.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning conversation: %w", err)
	}
	return &conv, nil
}
