package services

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/lingua/internal/client/client"
	"github.com/dmitrijs2005/lingua/internal/client/models"
	"github.com/dmitrijs2005/lingua/internal/logging"
)

var ErrEmptyMessage = errors.New("message is empty")

// TutorService covers text tutoring. Voice sessions live in the
// conversation package.
type TutorService struct {
	api client.TutorAPI
	reader
}

func NewTutorService(api client.TutorAPI, l logging.Logger) *TutorService {
	return &TutorService{api: api, reader: newReader(nil, l)}
}

func (s *TutorService) StartConversation(ctx context.Context, topic string) (*models.Conversation, error) {
	return s.api.StartConversation(ctx, strings.TrimSpace(topic))
}

func (s *TutorService) Send(ctx context.Context, conversationID, text string) (*models.TutorReply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if strings.TrimSpace(conversationID) == "" {
		return nil, ErrEmptyID
	}
	return s.api.SendTutorMessage(ctx, conversationID, text)
}

func (s *TutorService) Conversations(ctx context.Context) []models.Conversation {
	v, _ := read(ctx, s.reader, "", 0, s.api.ListConversations)
	return orEmpty(v)
}

func (s *TutorService) CheckGrammar(ctx context.Context, text string) (*models.GrammarCheck, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	return s.api.CheckGrammar(ctx, text)
}
