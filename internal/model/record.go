package model

import "time"

// PlayerResult is one player's line in a finished game's record.
type PlayerResult struct {
	PlayerID    string     `json:"playerId" bson:"playerId"`
	Name        string     `json:"name" bson:"name"`
	Score       int        `json:"score" bson:"score"`
	CompletedAt *time.Time `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
	FinalRank   int        `json:"finalRank" bson:"finalRank"`
}

// GameRecord is the durable, write-once record of a finished game. The
// game ID doubles as the Mongo document ID so a racing double-finalize
// can only ever insert it once.
type GameRecord struct {
	GameID    string         `json:"gameId" bson:"_id"`
	LobbyCode string         `json:"lobbyCode" bson:"lobbyCode"`
	Mode      GameMode       `json:"mode" bson:"mode"`
	StartedAt time.Time      `json:"startedAt" bson:"startedAt"`
	EndedAt   time.Time      `json:"endedAt" bson:"endedAt"`
	EndReason string         `json:"endReason" bson:"endReason"`
	Answer    string         `json:"answer,omitempty" bson:"answer,omitempty"`
	Drawn     []int          `json:"drawn,omitempty" bson:"drawn,omitempty"`
	Players   []PlayerResult `json:"players" bson:"players"`
	Winners   []string       `json:"winners" bson:"winners"`
	CreatedBy string         `json:"createdBy" bson:"createdBy"`
}
