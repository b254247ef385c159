package services

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/dmitrijs2005/lingua/internal/client/cache"
	"github.com/dmitrijs2005/lingua/internal/client/client"
	"github.com/dmitrijs2005/lingua/internal/client/models"
	"github.com/dmitrijs2005/lingua/internal/client/notify"
	"github.com/dmitrijs2005/lingua/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/lingua/internal/common"
	"github.com/dmitrijs2005/lingua/internal/logging"
)

const (
	keyAchievementsPrefix    = "achievements:"
	keyUserAchievements      = keyAchievementsPrefix + "user"
	keyAvailableAchievements = keyAchievementsPrefix + "available"
)

type AchievementService struct {
	api      client.AchievementsAPI
	meta     metadata.Repository
	notifier notify.Notifier
	reader
}

// NewAchievementService wires the achievement read path. meta and n may be
// nil, which disables CheckAndNotify bookkeeping and delivery respectively.
func NewAchievementService(api client.AchievementsAPI, c *cache.Cache, meta metadata.Repository, n notify.Notifier, l logging.Logger) *AchievementService {
	return &AchievementService{api: api, meta: meta, notifier: n, reader: newReader(c, l)}
}

// GetUserAchievements returns the user's achievements, cached for the cache
// TTL. It never fails: an unauthorized session yields an empty list, and
// other backend failures yield the stale cached list or an empty one.
func (s *AchievementService) GetUserAchievements(ctx context.Context) []models.Achievement {
	v, _ := read(ctx, s.reader, keyUserAchievements, 0, s.api.GetUserAchievements)
	return orEmpty(v)
}

func (s *AchievementService) GetAvailableAchievements(ctx context.Context) []models.Achievement {
	v, _ := read(ctx, s.reader, keyAvailableAchievements, 0, s.api.GetAvailableAchievements)
	return orEmpty(v)
}

// GetUnviewedAchievements is never cached.
func (s *AchievementService) GetUnviewedAchievements(ctx context.Context) []models.Achievement {
	v, _ := read(ctx, s.reader, "", 0, s.api.GetUnviewedAchievements)
	return orEmpty(v)
}

// MarkViewed acknowledges achievements and invalidates the cached lists.
func (s *AchievementService) MarkViewed(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.api.MarkAchievementsViewed(ctx, ids); err != nil {
		return err
	}
	s.invalidate(ctx, keyAchievementsPrefix)
	return nil
}

// Check asks the backend to evaluate unlocks, invalidates the cache when
// anything was unlocked and returns the new achievements.
func (s *AchievementService) Check(ctx context.Context) ([]models.Achievement, error) {
	unlocked, err := s.api.CheckAchievements(ctx)
	if err != nil {
		return nil, err
	}
	if len(unlocked) > 0 {
		s.invalidate(ctx, keyAchievementsPrefix)
	}
	return orEmpty(unlocked), nil
}

// CheckAndNotify sends one notification per unviewed achievement that has
// not been announced on this device yet and returns how many were sent.
func (s *AchievementService) CheckAndNotify(ctx context.Context) (int, error) {
	if s.notifier == nil {
		return 0, nil
	}

	unviewed := s.GetUnviewedAchievements(ctx)
	if len(unviewed) == 0 {
		return 0, nil
	}

	notified, err := s.loadNotified(ctx)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, a := range unviewed {
		if notified[a.ID] {
			continue
		}
		n := notify.Notification{
			Title: "Achievement unlocked!",
			Body:  a.Title,
			Data:  map[string]any{"achievementId": a.ID, "xpReward": a.XPReward},
		}
		if err := s.notifier.Notify(ctx, n); err != nil {
			s.logger.Warn(ctx, "achievement notification failed", "achievement_id", a.ID, "error", err)
			continue
		}
		notified[a.ID] = true
		sent++
	}

	if sent > 0 {
		if err := s.saveNotified(ctx, notified); err != nil {
			return sent, err
		}
	}
	return sent, nil
}

func (s *AchievementService) loadNotified(ctx context.Context) (map[string]bool, error) {
	set := map[string]bool{}
	if s.meta == nil {
		return set, nil
	}
	ids, _, err := metadata.GetJSON[[]string](ctx, s.meta, common.MetaNotifiedAchievements)
	if errors.Is(err, metadata.ErrUndecodable) {
		s.logger.Warn(ctx, "resetting unreadable notification bookkeeping", "error", err)
		return set, nil
	}
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func (s *AchievementService) saveNotified(ctx context.Context, set map[string]bool) error {
	if s.meta == nil {
		return nil
	}
	ids := slices.Sorted(maps.Keys(set))
	if err := metadata.SetJSON(ctx, s.meta, common.MetaNotifiedAchievements, ids); err != nil {
		return fmt.Errorf("save notified achievements: %w", err)
	}
	return nil
}
