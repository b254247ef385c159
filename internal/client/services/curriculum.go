package services

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/lingua/internal/client/cache"
	"github.com/dmitrijs2005/lingua/internal/client/client"
	"github.com/dmitrijs2005/lingua/internal/client/models"
	"github.com/dmitrijs2005/lingua/internal/logging"
)

const (
	keyCurriculumPrefix = "curriculum:"
	keyLevels           = keyCurriculumPrefix + "levels"
)

var ErrEmptyID = errors.New("id is required")

type CurriculumService struct {
	api client.CurriculumAPI
	reader
}

func NewCurriculumService(api client.CurriculumAPI, c *cache.Cache, l logging.Logger) *CurriculumService {
	return &CurriculumService{api: api, reader: newReader(c, l)}
}

func (s *CurriculumService) Levels(ctx context.Context) []models.Level {
	v, _ := read(ctx, s.reader, keyLevels, 0, s.api.GetLevels)
	return orEmpty(v)
}

func (s *CurriculumService) Lessons(ctx context.Context, levelID string) []models.Lesson {
	levelID = strings.TrimSpace(levelID)
	if levelID == "" {
		return []models.Lesson{}
	}
	v, _ := read(ctx, s.reader, keyCurriculumPrefix+"lessons:"+levelID, 0, func(ctx context.Context) ([]models.Lesson, error) {
		return s.api.GetLessons(ctx, levelID)
	})
	return orEmpty(v)
}

func (s *CurriculumService) Lesson(ctx context.Context, id string) (*models.Lesson, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrEmptyID
	}
	return s.api.GetLesson(ctx, id)
}

// CompleteLesson reports a finished lesson. Lesson lists and achievements
// change as a result, so their cache entries are dropped.
func (s *CurriculumService) CompleteLesson(ctx context.Context, id string, result models.LessonResult) (*models.LessonCompletion, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrEmptyID
	}
	out, err := s.api.CompleteLesson(ctx, id, result)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, keyCurriculumPrefix, keyAchievementsPrefix)
	return out, nil
}
