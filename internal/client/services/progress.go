package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/lingua/internal/client/client"
	"github.com/dmitrijs2005/lingua/internal/client/models"
	"github.com/dmitrijs2005/lingua/internal/logging"
)

// ProgressService reads learning progress. Progress moves with every lesson,
// so nothing here is cached.
type ProgressService struct {
	api client.ProgressAPI
	reader
}

func NewProgressService(api client.ProgressAPI, l logging.Logger) *ProgressService {
	return &ProgressService{api: api, reader: newReader(nil, l)}
}

func (s *ProgressService) Progress(ctx context.Context) models.Progress {
	v, _ := read(ctx, s.reader, "", 0, s.api.GetProgress)
	if v == nil {
		return models.Progress{}
	}
	return *v
}

func (s *ProgressService) Streak(ctx context.Context) models.Streak {
	v, _ := read(ctx, s.reader, "", 0, s.api.GetStreak)
	if v == nil {
		return models.Streak{}
	}
	return *v
}

func (s *ProgressService) XPSummary(ctx context.Context) models.XPSummary {
	v, _ := read(ctx, s.reader, "", 0, s.api.GetXPSummary)
	if v == nil {
		return models.XPSummary{}
	}
	return *v
}

// Dashboard is the home screen summary.
type Dashboard struct {
	Progress     models.Progress
	Streak       models.Streak
	XP           models.XPSummary
	Achievements []models.Achievement
}

// Dashboard fetches the home summary concurrently. Each part degrades on its
// own, so the result is always complete.
func (s *ProgressService) Dashboard(ctx context.Context, achievements *AchievementService) Dashboard {
	var d Dashboard
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { d.Progress = s.Progress(gctx); return nil })
	g.Go(func() error { d.Streak = s.Streak(gctx); return nil })
	g.Go(func() error { d.XP = s.XPSummary(gctx); return nil })
	g.Go(func() error {
		if achievements != nil {
			d.Achievements = achievements.GetUserAchievements(gctx)
		} else {
			d.Achievements = []models.Achievement{}
		}
		return nil
	})

	_ = g.Wait()
	return d
}
