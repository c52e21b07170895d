package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/videotube/videotube-api/internal/domain/apperr"
	"github.com/videotube/videotube-api/internal/domain/repository"
)

type SubscriptionRepository struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepository(pool *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{pool: pool}
}

func (r *SubscriptionRepository) CountSubscribers(ctx context.Context, channelID string) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM subscriptions WHERE channel_id = $1
	`, channelID).Scan(&n)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindPersistence, "subscriber count failed", err)
	}
	return n, nil
}

func (r *SubscriptionRepository) CountSubscriptions(ctx context.Context, subscriberID string) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM subscriptions WHERE subscriber_id = $1
	`, subscriberID).Scan(&n)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindPersistence, "subscription count failed", err)
	}
	return n, nil
}

func (r *SubscriptionRepository) IsSubscribed(ctx context.Context, subscriberID, channelID string) (bool, error) {
	var subscribed bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2
		)
	`, subscriberID, channelID).Scan(&subscribed)
	if err != nil {
		return false, apperr.Wrap(apperr.KindPersistence, "subscription check failed", err)
	}
	return subscribed, nil
}

// Toggle removes every matching edge when one exists (duplicates heal on
// unsubscribe), otherwise inserts a fresh edge.
func (r *SubscriptionRepository) Toggle(ctx context.Context, subscriberID, channelID string) (bool, error) {
	res, err := r.pool.Exec(ctx, `
		DELETE FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2
	`, subscriberID, channelID)
	if err != nil {
		return false, apperr.Wrap(apperr.KindPersistence, "unsubscribe failed", err)
	}
	if res.RowsAffected() > 0 {
		return false, nil
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO subscriptions (subscriber_id, channel_id) VALUES ($1, $2)
	`, subscriberID, channelID)
	if err != nil {
		return false, apperr.Wrap(apperr.KindPersistence, "subscribe failed", err)
	}
	return true, nil
}

var _ repository.SubscriptionRepository = (*SubscriptionRepository)(nil)
