package model

import "time"

// RankEntry is one row of the standings, live or final.
type RankEntry struct {
	PlayerID    string     `json:"playerId" bson:"playerId"`
	Name        string     `json:"name" bson:"name"`
	Score       int        `json:"score" bson:"score"`
	CompletedAt *time.Time `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
	Rank        int        `json:"rank" bson:"rank"`
}
