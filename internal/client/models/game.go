package models

type Game struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type"`
	Difficulty  string `json:"difficulty,omitempty"`
	XPReward    int    `json:"xpReward"`
}

type GameQuestion struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options,omitempty"`
}

type GameSession struct {
	ID        string         `json:"id"`
	GameID    string         `json:"gameId"`
	Questions []GameQuestion `json:"questions"`
}

type GameAnswer struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
}

type GameResult struct {
	Score    int `json:"score"`
	Correct  int `json:"correct"`
	Total    int `json:"total"`
	XPEarned int `json:"xpEarned"`
}
