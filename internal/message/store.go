package message

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists messages in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const messageColumns = `id, conversation_id, body, entry_id, vendor_message_id, created_at`

// Append adds a message to a conversation.
func (s *Store) Append(ctx context.Context, input AppendInput) (Message, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO messages (conversation_id, body, entry_id, vendor_message_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+messageColumns,
		input.ConversationID, input.Body, input.EntryID, input.VendorMessageID)
	msg, err := scanMessage(row)
	if err != nil {
		return Message{}, fmt.Errorf("append message: %w", err)
	}
	return msg, nil
}

// ListByConversation returns a conversation's messages oldest first.
func (s *Store) ListByConversation(ctx context.Context, conversationID string) ([]Message, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+messageColumns+`
		 FROM messages
		 WHERE conversation_id = $1
		 ORDER BY created_at ASC`,
		conversationID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := []Message{}
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func scanMessage(row pgx.Row) (Message, error) {
	var msg Message
	err := row.Scan(&msg.ID, &msg.ConversationID, &msg.Body, &msg.EntryID,
		&msg.VendorMessageID, &msg.CreatedAt)
	return msg, err
}
