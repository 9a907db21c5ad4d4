// Package journal keeps an audit trail of webhook deliveries. Every
// delivery that passes signature validation leaves one row, whether it
// produced a message or was acknowledged and ignored.
package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Delivery outcomes.
const (
	OutcomeProcessed = "processed"
	OutcomeIgnored   = "ignored"
	OutcomeFailed    = "failed"
)

// RecordInput describes one webhook delivery.
type RecordInput struct {
	ChannelID       string
	EntryID         string
	VendorMessageID string
	Outcome         string
	Detail          string
}

// Service writes and prunes delivery records.
type Service struct {
	pool *pgxpool.Pool
}

func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// Record appends a delivery row. Journal writes never fail a delivery,
// callers log and continue on error.
func (s *Service) Record(ctx context.Context, input RecordInput) error {
	var channelID *string
	if input.ChannelID != "" {
		channelID = &input.ChannelID
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO webhook_deliveries (channel_id, entry_id, vendor_message_id, outcome, detail)
		 VALUES ($1, $2, $3, $4, $5)`,
		channelID, input.EntryID, input.VendorMessageID, input.Outcome, input.Detail)
	if err != nil {
		return fmt.Errorf("record delivery: %w", err)
	}
	return nil
}

// Prune deletes delivery rows older than the retention window and returns
// how many were removed.
func (s *Service) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM webhook_deliveries WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune deliveries: %w", err)
	}
	return tag.RowsAffected(), nil
}
