package models

type Level struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Order       int    `json:"order"`
	Locked      bool   `json:"locked"`
	LessonCount int    `json:"lessonCount"`
}

type Lesson struct {
	ID          string   `json:"id"`
	LevelID     string   `json:"levelId"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Order       int      `json:"order"`
	Type        string   `json:"type"`
	XPReward    int      `json:"xpReward"`
	Completed   bool     `json:"completed"`
	Locked      bool     `json:"locked"`
	Vocabulary  []string `json:"vocabulary,omitempty"`
}

// LessonResult is what the client reports when the learner finishes a lesson.
type LessonResult struct {
	Score           int `json:"score"`
	DurationSeconds int `json:"durationSeconds"`
	Mistakes        int `json:"mistakes"`
}

// LessonCompletion is the backend's verdict on a submitted LessonResult.
type LessonCompletion struct {
	XPEarned             int           `json:"xpEarned"`
	LevelUp              bool          `json:"levelUp"`
	NewLevel             int           `json:"newLevel,omitempty"`
	UnlockedAchievements []Achievement `json:"unlockedAchievements,omitempty"`
}
