package models

import "time"

type Progress struct {
	CompletedLessons int     `json:"completedLessons"`
	TotalLessons     int     `json:"totalLessons"`
	CurrentLevel     string  `json:"currentLevel"`
	Percent          float64 `json:"percent"`
	MinutesPracticed int     `json:"minutesPracticed"`
}

type Streak struct {
	Current      int        `json:"current"`
	Longest      int        `json:"longest"`
	LastActiveAt *time.Time `json:"lastActiveAt,omitempty"`
}

type XPSummary struct {
	TotalXP       int `json:"totalXp"`
	Level         int `json:"level"`
	XPToNextLevel int `json:"xpToNextLevel"`
	TodayXP       int `json:"todayXp"`
}
