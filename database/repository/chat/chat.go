package chatRepo

import (
	"context"
	"fmt"
	"time"

	"frontline/database"
	"frontline/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ChatRepository manages the append-only per-session chat log.
type ChatRepository interface {
	Append(ctx context.Context, turn models.ChatTurn) (string, error)
	// GetRecent returns the limit most recent turns for a session in
	// chronological order.
	GetRecent(ctx context.Context, sessionID string, limit int) ([]models.ChatTurn, error)
}

type mongoChatRepo struct {
	coll *mongo.Collection
}

// NewMongoChatRepo returns a new ChatRepository instance using MongoDB.
func NewMongoChatRepo() ChatRepository {
	r := &mongoChatRepo{
		coll: database.DB().Collection("chat_turns"),
	}
	if err := r.ensureIndexes(); err != nil {
		panic(fmt.Sprintf("chat repo index creation failed: %v", err))
	}
	return r
}

func (r *mongoChatRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "sessionId", Value: 1}, {Key: "createdAt", Value: -1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *mongoChatRepo) Append(ctx context.Context, turn models.ChatTurn) (string, error) {
	if turn.ID == "" {
		turn.ID = uuid.New().String()
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}

	if _, err := r.coll.InsertOne(ctx, turn); err != nil {
		return "", err
	}
	return turn.ID, nil
}

func (r *mongoChatRepo) GetRecent(ctx context.Context, sessionID string, limit int) ([]models.ChatTurn, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, bson.M{"sessionId": sessionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var turns []models.ChatTurn
	if err := cursor.All(ctx, &turns); err != nil {
		return nil, err
	}

	// Newest-first from the store; callers get chronological order.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}
