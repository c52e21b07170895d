package application

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/videotube/videotube-api/internal/domain/apperr"
	"github.com/videotube/videotube-api/internal/domain/entity"
	repo "github.com/videotube/videotube-api/internal/domain/repository"
	"github.com/videotube/videotube-api/pkg/helpers"
)

const profileCacheTTL = 30 * time.Second

// ChannelService computes the derived social-graph views: channel profiles
// with subscriber aggregates, watch history with owner joins, and channel
// search. All operations are reads (plus the edge toggle) and safe to retry.
type ChannelService struct {
	Users           repo.UserRepository
	Subs            repo.SubscriptionRepository
	Videos          repo.VideoRepository
	Redis           *redis.Client
	ES              *elasticsearch.Client
	ESChannelsIndex string
	Logger          *logrus.Logger
}

func NewChannelService(users repo.UserRepository, subs repo.SubscriptionRepository, videos repo.VideoRepository, rdb *redis.Client, es *elasticsearch.Client, esChannelsIndex string, logger *logrus.Logger) *ChannelService {
	return &ChannelService{
		Users:           users,
		Subs:            subs,
		Videos:          videos,
		Redis:           rdb,
		ES:              es,
		ESChannelsIndex: esChannelsIndex,
		Logger:          logger,
	}
}

func profileCacheKey(username, viewerID string) string {
	return "channel:profile:" + strings.ToLower(username) + ":viewer:" + viewerID
}

// Profile resolves targetUsername case-insensitively and aggregates the
// subscriber counts plus the viewer's subscription state.
func (s *ChannelService) Profile(ctx context.Context, viewerID, targetUsername string) (*entity.ChannelProfile, error) {
	if s.Redis != nil {
		var cached entity.ChannelProfile
		if hit, err := helpers.RedisGetJSON(ctx, s.Redis, profileCacheKey(targetUsername, viewerID), &cached); err == nil && hit {
			return &cached, nil
		}
	}

	target, err := s.Users.GetByUsername(ctx, targetUsername)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, apperr.New(apperr.KindNotFound, "channel does not exist")
		}
		return nil, err
	}

	subscribers, err := s.Subs.CountSubscribers(ctx, target.ID)
	if err != nil {
		return nil, err
	}
	subscribed, err := s.Subs.CountSubscriptions(ctx, target.ID)
	if err != nil {
		return nil, err
	}
	isSubscribed, err := s.Subs.IsSubscribed(ctx, viewerID, target.ID)
	if err != nil {
		return nil, err
	}

	p := &entity.ChannelProfile{
		Fullname:        target.Fullname,
		Username:        target.Username,
		SubscriberCount: subscribers,
		SubscribedCount: subscribed,
		IsSubscribed:    isSubscribed,
		AvatarURL:       target.AvatarURL,
		CreatedAt:       target.CreatedAt,
	}
	if s.Redis != nil {
		if err := helpers.RedisSetJSON(ctx, s.Redis, profileCacheKey(targetUsername, viewerID), p, profileCacheTTL); err != nil && s.Logger != nil {
			s.Logger.WithError(err).Warn("profile cache write failed")
		}
	}
	return p, nil
}

// ToggleSubscription flips the viewer's edge to the target channel and
// reports the resulting state.
func (s *ChannelService) ToggleSubscription(ctx context.Context, viewerID, targetUsername string) (bool, error) {
	target, err := s.Users.GetByUsername(ctx, targetUsername)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return false, apperr.New(apperr.KindNotFound, "channel does not exist")
		}
		return false, err
	}
	if target.ID == viewerID {
		return false, apperr.New(apperr.KindValidation, "cannot subscribe to your own channel")
	}
	subscribed, err := s.Subs.Toggle(ctx, viewerID, target.ID)
	if err != nil {
		return false, err
	}
	if s.Redis != nil {
		_ = helpers.RedisDel(ctx, s.Redis, profileCacheKey(target.Username, viewerID))
	}
	return subscribed, nil
}

// WatchHistory returns the caller's history in stored order, each entry
// carrying exactly one owner projection.
func (s *ChannelService) WatchHistory(ctx context.Context, userID string) ([]entity.HistoryEntry, error) {
	if _, err := s.Users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.Videos.WatchHistory(ctx, userID)
}

// RecordWatch appends a watch event for the caller.
func (s *ChannelService) RecordWatch(ctx context.Context, userID, videoID string) error {
	if _, err := s.Videos.GetByID(ctx, videoID); err != nil {
		return err
	}
	return s.Videos.AddWatchEvent(ctx, userID, videoID)
}

// ChannelHit is one search result from the channel index.
type ChannelHit struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Fullname string `json:"fullname"`
	Avatar   string `json:"avatar"`
}

// Search runs a multi_match query over username and fullname on the channel
// index. Returns an empty slice when search is not configured.
func (s *ChannelService) Search(ctx context.Context, q string, size int) ([]ChannelHit, error) {
	if s.ES == nil || s.ESChannelsIndex == "" {
		return []ChannelHit{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"username^2", "fullname"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESChannelsIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "channel search failed", err)
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source ChannelHit `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "channel search decode failed", err)
	}

	out := make([]ChannelHit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
