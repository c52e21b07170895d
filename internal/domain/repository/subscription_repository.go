package repository

import "context"

// SubscriptionRepository reads and maintains the subscriber/channel edge set.
// There is deliberately no uniqueness constraint on (subscriber, channel);
// Toggle removes every matching edge on unsubscribe so duplicates heal.
type SubscriptionRepository interface {
	CountSubscribers(ctx context.Context, channelID string) (int64, error)
	CountSubscriptions(ctx context.Context, subscriberID string) (int64, error)
	IsSubscribed(ctx context.Context, subscriberID, channelID string) (bool, error)
	// Toggle flips the edge and reports the resulting state: true when the
	// caller is now subscribed.
	Toggle(ctx context.Context, subscriberID, channelID string) (bool, error)
}
