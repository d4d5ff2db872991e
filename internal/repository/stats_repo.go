package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"minigames/internal/model"
)

// StatsRepo handles MongoDB operations for finished-game records.
type StatsRepo interface {
	// InsertOnce persists the record unless one with the same game ID
	// already exists. Racing end-triggers for the same game therefore
	// produce exactly one document.
	InsertOnce(ctx context.Context, record *model.GameRecord) error
	GetByGameID(ctx context.Context, gameID string) (*model.GameRecord, error)
	ListByLobby(ctx context.Context, lobbyCode string, limit int64) ([]*model.GameRecord, error)
}

type statsRepo struct {
	games *mongo.Collection
}

// NewStatsRepo creates a new stats repository
func NewStatsRepo(db *mongo.Database) StatsRepo {
	return &statsRepo{
		games: db.Collection("games"),
	}
}

func (r *statsRepo) InsertOnce(ctx context.Context, record *model.GameRecord) error {
	opts := options.Update().SetUpsert(true)
	_, err := r.games.UpdateOne(ctx,
		bson.M{"_id": record.GameID},
		bson.M{"$setOnInsert": record},
		opts,
	)
	return err
}

func (r *statsRepo) GetByGameID(ctx context.Context, gameID string) (*model.GameRecord, error) {
	var record model.GameRecord
	err := r.games.FindOne(ctx, bson.M{"_id": gameID}).Decode(&record)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *statsRepo) ListByLobby(ctx context.Context, lobbyCode string, limit int64) ([]*model.GameRecord, error) {
	opts := options.Find().
		SetSort(bson.M{"endedAt": -1}).
		SetLimit(limit)
	cur, err := r.games.Find(ctx, bson.M{"lobbyCode": lobbyCode}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var records []*model.GameRecord
	if err := cur.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}
