package models

import "time"

type Achievement struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category,omitempty"`
	Icon        string     `json:"icon,omitempty"`
	XPReward    int        `json:"xpReward"`
	Unlocked    bool       `json:"unlocked"`
	Viewed      bool       `json:"viewed"`
	UnlockedAt  *time.Time `json:"unlockedAt,omitempty"`
	Progress    float64    `json:"progress"`
}
