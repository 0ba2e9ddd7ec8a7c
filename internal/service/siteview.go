package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/uangku/uangku/internal/repository"
)

const statsCacheKey = "stats:site"

// SiteViewService records anonymized daily visits and serves the public
// visitor counters. IPs are never stored; only a keyed hash is, so the same
// address maps to the same row without the row being reversible.
type SiteViewService struct {
	siteViewRepository repository.SiteViewRepository
	userRepository     repository.UserRepository
	redis              *redis.Client
	hashKey            []byte
	cacheTTL           time.Duration

	now func() time.Time
}

func NewSiteViewService(
	siteViewRepository repository.SiteViewRepository,
	userRepository repository.UserRepository,
	redisClient *redis.Client,
	hashKey string,
	cacheTTL time.Duration,
) *SiteViewService {
	return &SiteViewService{
		siteViewRepository: siteViewRepository,
		userRepository:     userRepository,
		redis:              redisClient,
		hashKey:            []byte(hashKey),
		cacheTTL:           cacheTTL,
		now:                time.Now,
	}
}

// SiteStats is the public counter pair shown on the landing page.
type SiteStats struct {
	TotalUsers     int `json:"total_users"`
	UniqueVisitors int `json:"unique_visitors"`
}

// Record stores today's visit for the given client IP. View tracking is
// best-effort: every failure is logged and swallowed so it can never affect
// the request being served.
func (s *SiteViewService) Record(clientIP string) {
	if clientIP == "" {
		return
	}

	day := s.now().Format("2006-01-02")
	err := s.siteViewRepository.Record(s.HashIP(clientIP), day)
	if err != nil {
		slog.Warn("failed to record site view", "error", err)
	}
}

// HashIP computes the keyed hash under which a client address is stored.
func (s *SiteViewService) HashIP(clientIP string) string {
	mac := hmac.New(sha256.New, s.hashKey)
	mac.Write([]byte(clientIP))
	return hex.EncodeToString(mac.Sum(nil))
}

// Stats returns the visitor counters, cached briefly in Redis to keep the
// landing page from hitting the database on every request. Cache failures
// fall through to the database.
func (s *SiteViewService) Stats(ctx context.Context) (*SiteStats, error) {
	if s.redis != nil {
		cached, err := s.redis.Get(ctx, statsCacheKey).Result()
		if err == nil {
			stats := &SiteStats{}
			if json.Unmarshal([]byte(cached), stats) == nil {
				return stats, nil
			}
		} else if err != redis.Nil {
			slog.Warn("failed to read stats cache", "error", err)
		}
	}

	users, err := s.userRepository.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	visitors, err := s.siteViewRepository.UniqueVisitors()
	if err != nil {
		return nil, fmt.Errorf("failed to count visitors: %w", err)
	}

	stats := &SiteStats{TotalUsers: users, UniqueVisitors: visitors}

	if s.redis != nil {
		encoded, err := json.Marshal(stats)
		if err == nil {
			err = s.redis.Set(ctx, statsCacheKey, encoded, s.cacheTTL).Err()
		}
		if err != nil {
			slog.Warn("failed to write stats cache", "error", err)
		}
	}

	return stats, nil
}
