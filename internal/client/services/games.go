package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/lingua/internal/client/cache"
	"github.com/dmitrijs2005/lingua/internal/client/client"
	"github.com/dmitrijs2005/lingua/internal/client/models"
	"github.com/dmitrijs2005/lingua/internal/logging"
)

const keyGames = "games:list"

type GameService struct {
	api client.GamesAPI
	reader
}

func NewGameService(api client.GamesAPI, c *cache.Cache, l logging.Logger) *GameService {
	return &GameService{api: api, reader: newReader(c, l)}
}

func (s *GameService) Games(ctx context.Context) []models.Game {
	v, _ := read(ctx, s.reader, keyGames, 0, s.api.GetGames)
	return orEmpty(v)
}

func (s *GameService) Start(ctx context.Context, gameID string) (*models.GameSession, error) {
	if strings.TrimSpace(gameID) == "" {
		return nil, ErrEmptyID
	}
	return s.api.StartGameSession(ctx, gameID)
}

func (s *GameService) Submit(ctx context.Context, sessionID string, answers []models.GameAnswer) (*models.GameResult, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrEmptyID
	}
	res, err := s.api.SubmitGameSession(ctx, sessionID, orEmpty(answers))
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, keyAchievementsPrefix)
	return res, nil
}
