package client

import (
	"context"

	"github.com/dmitrijs2005/lingua/internal/client/models"
)

type AuthAPI interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*models.AuthResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.User, error)
}

type TutorAPI interface {
	StartConversation(ctx context.Context, topic string) (*models.Conversation, error)
	SendTutorMessage(ctx context.Context, conversationID, text string) (*models.TutorReply, error)
	ListConversations(ctx context.Context) ([]models.Conversation, error)
	CheckGrammar(ctx context.Context, text string) (*models.GrammarCheck, error)
	CreateRealtimeSession(ctx context.Context, req models.RealtimeSessionRequest) (*models.RealtimeSession, error)
	EndRealtimeSession(ctx context.Context, sessionID string, end models.RealtimeSessionEnd) error
}

type AchievementsAPI interface {
	GetUserAchievements(ctx context.Context) ([]models.Achievement, error)
	GetAvailableAchievements(ctx context.Context) ([]models.Achievement, error)
	GetUnviewedAchievements(ctx context.Context) ([]models.Achievement, error)
	MarkAchievementsViewed(ctx context.Context, ids []string) error
	CheckAchievements(ctx context.Context) ([]models.Achievement, error)
}

type CurriculumAPI interface {
	GetLevels(ctx context.Context) ([]models.Level, error)
	GetLessons(ctx context.Context, levelID string) ([]models.Lesson, error)
	GetLesson(ctx context.Context, id string) (*models.Lesson, error)
	CompleteLesson(ctx context.Context, id string, result models.LessonResult) (*models.LessonCompletion, error)
}

type GamesAPI interface {
	GetGames(ctx context.Context) ([]models.Game, error)
	StartGameSession(ctx context.Context, gameID string) (*models.GameSession, error)
	SubmitGameSession(ctx context.Context, sessionID string, answers []models.GameAnswer) (*models.GameResult, error)
}

type ProgressAPI interface {
	GetProgress(ctx context.Context) (*models.Progress, error)
	GetStreak(ctx context.Context) (*models.Streak, error)
	GetXPSummary(ctx context.Context) (*models.XPSummary, error)
}

type SubscriptionsAPI interface {
	GetPlans(ctx context.Context) ([]models.Plan, error)
	GetCurrentSubscription(ctx context.Context) (*models.Subscription, error)
	CreateOrder(ctx context.Context, planID string) (*models.Order, error)
	VerifyPayment(ctx context.Context, v models.PaymentVerification) (*models.Subscription, error)
	GetTransactions(ctx context.Context) ([]models.Transaction, error)
}

// Client is the full backend contract.
type Client interface {
	AuthAPI
	TutorAPI
	AchievementsAPI
	CurriculumAPI
	GamesAPI
	ProgressAPI
	SubscriptionsAPI
}
