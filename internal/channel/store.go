package channel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no channel matches the lookup.
var ErrNotFound = errors.New("channel not found")

// Store persists channels in Postgres.
type Store struct {
	pool     *pgxpool.Pool
	validate *validator.Validate
	logger   *slog.Logger
}

func NewStore(log *slog.Logger, pool *pgxpool.Pool) *Store {
	return &Store{
		pool:     pool,
		validate: validator.New(),
		logger:   log.With(slog.String("service", "channel")),
	}
}

const channelColumns = `id, name, provider, callback_id, app_secret, verify_token,
	phone_number_id, support_group, disabled, created_at, updated_at`

// GetByCallbackID looks up the channel addressed by a webhook callback path.
func (s *Store) GetByCallbackID(ctx context.Context, callbackID string) (Channel, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+channelColumns+` FROM channels WHERE callback_id = $1`,
		callbackID)
	ch, err := scanChannel(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Channel{}, ErrNotFound
	}
	if err != nil {
		return Channel{}, fmt.Errorf("get channel by callback id: %w", err)
	}
	return ch, nil
}

// GetByID looks up a channel by primary key.
func (s *Store) GetByID(ctx context.Context, id string) (Channel, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+channelColumns+` FROM channels WHERE id = $1`, id)
	ch, err := scanChannel(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Channel{}, ErrNotFound
	}
	if err != nil {
		return Channel{}, fmt.Errorf("get channel: %w", err)
	}
	return ch, nil
}

// List returns all channels, newest first.
func (s *Store) List(ctx context.Context) ([]Channel, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+channelColumns+` FROM channels ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	defer rows.Close()

	channels := []Channel{}
	for rows.Next() {
		ch, err := scanChannel(rows)
		if err != nil {
			return nil, fmt.Errorf("scan channel: %w", err)
		}
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}

// Create registers a channel and mints its callback id.
func (s *Store) Create(ctx context.Context, input CreateInput) (Channel, error) {
	if err := s.validate.Struct(input); err != nil {
		return Channel{}, fmt.Errorf("validate channel: %w", err)
	}
	provider := input.Provider
	if provider == "" {
		provider = ProviderWhatsAppBusiness
	}
	callbackID := uuid.NewString()

	row := s.pool.QueryRow(ctx,
		`INSERT INTO channels (name, provider, callback_id, app_secret, verify_token,
			phone_number_id, support_group)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+channelColumns,
		input.Name, provider, callbackID, input.AppSecret, input.VerifyToken,
		input.PhoneNumberID, input.SupportGroup)
	ch, err := scanChannel(row)
	if err != nil {
		return Channel{}, fmt.Errorf("create channel: %w", err)
	}
	s.logger.Info("channel created",
		slog.String("channel_id", ch.ID),
		slog.String("provider", ch.Provider))
	return ch, nil
}

// SetDisabled toggles whether a channel accepts webhook deliveries.
func (s *Store) SetDisabled(ctx context.Context, id string, disabled bool) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE channels SET disabled = $2, updated_at = now() WHERE id = $1`,
		id, disabled)
	if err != nil {
		return fmt.Errorf("set channel disabled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanChannel(row pgx.Row) (Channel, error) {
	var ch Channel
	err := row.Scan(&ch.ID, &ch.Name, &ch.Provider, &ch.CallbackID, &ch.AppSecret,
		&ch.VerifyToken, &ch.PhoneNumberID, &ch.SupportGroup, &ch.Disabled,
		&ch.CreatedAt, &ch.UpdatedAt)
	return ch, err
}
