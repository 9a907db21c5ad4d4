package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no conversation matches the lookup.
var ErrNotFound = errors.New("conversation not found")

// Store persists conversations in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const conversationColumns = `id, channel_id, actor_id, title, state, support_group,
	metadata, created_at, updated_at`

// FindOpenByChannelAndActor returns the oldest open conversation for the
// (channel, actor) pair.
func (s *Store) FindOpenByChannelAndActor(ctx context.Context, channelID, actorID string) (Conversation, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+conversationColumns+`
		 FROM conversations
		 WHERE channel_id = $1 AND actor_id = $2 AND state = $3
		 ORDER BY created_at ASC
		 LIMIT 1`,
		channelID, actorID, StateOpen)
	conv, err := scanConversation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Conversation{}, ErrNotFound
	}
	if err != nil {
		return Conversation{}, fmt.Errorf("find open conversation: %w", err)
	}
	return conv, nil
}

// Create opens a new conversation.
func (s *Store) Create(ctx context.Context, input CreateInput) (Conversation, error) {
	metadata := input.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return Conversation{}, fmt.Errorf("encode conversation metadata: %w", err)
	}

	row := s.pool.QueryRow(ctx,
		`INSERT INTO conversations (channel_id, actor_id, title, state, support_group, metadata)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+conversationColumns,
		input.ChannelID, input.ActorID, input.Title, StateOpen,
		input.SupportGroup, metadataJSON)
	conv, err := scanConversation(row)
	if err != nil {
		return Conversation{}, fmt.Errorf("create conversation: %w", err)
	}
	return conv, nil
}

// SetState moves a conversation between open and closed.
func (s *Store) SetState(ctx context.Context, id, state string) error {
	if state != StateOpen && state != StateClosed {
		return fmt.Errorf("unknown conversation state %q", state)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE conversations SET state = $2, updated_at = now() WHERE id = $1`,
		id, state)
	if err != nil {
		return fmt.Errorf("set conversation state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanConversation(row pgx.Row) (Conversation, error) {
	var (
		conv         Conversation
		metadataJSON []byte
	)
	err := row.Scan(&conv.ID, &conv.ChannelID, &conv.ActorID, &conv.Title,
		&conv.State, &conv.SupportGroup, &metadataJSON,
		&conv.CreatedAt, &conv.UpdatedAt)
	if err != nil {
		return Conversation{}, err
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &conv.Metadata); err != nil {
			return Conversation{}, fmt.Errorf("decode conversation metadata: %w", err)
		}
	}
	return conv, nil
}
