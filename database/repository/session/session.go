package sessionRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"frontline/database"
	"frontline/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SessionRepository persists the per-session appointment flag and the
// rolling conversation summary.
type SessionRepository interface {
	// GetFlag returns nil when no flag row exists for the session.
	GetFlag(ctx context.Context, sessionID string) (*models.SessionFlag, error)
	SetFlag(ctx context.Context, sessionID string, wantsAppointment bool) error
	GetSummary(ctx context.Context, sessionID string) (*models.Summary, error)
	UpsertSummary(ctx context.Context, summary models.Summary) error
}

type mongoSessionRepo struct {
	flagColl    *mongo.Collection
	summaryColl *mongo.Collection
}

// NewMongoSessionRepo returns a new SessionRepository instance using MongoDB.
func NewMongoSessionRepo() SessionRepository {
	r := &mongoSessionRepo{
		flagColl:    database.DB().Collection("session_flags"),
		summaryColl: database.DB().Collection("summaries"),
	}
	if err := r.ensureIndexes(); err != nil {
		panic(fmt.Sprintf("session repo index creation failed: %v", err))
	}
	return r
}

func (r *mongoSessionRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := r.flagColl.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "sessionId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("failed to create session flag index: %w", err)
	}

	if _, err := r.summaryColl.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "sessionId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("failed to create summary index: %w", err)
	}
	return nil
}

func (r *mongoSessionRepo) GetFlag(ctx context.Context, sessionID string) (*models.SessionFlag, error) {
	var flag models.SessionFlag
	err := r.flagColl.FindOne(ctx, bson.M{"sessionId": sessionID}).Decode(&flag)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &flag, nil
}

func (r *mongoSessionRepo) SetFlag(ctx context.Context, sessionID string, wantsAppointment bool) error {
	filter := bson.M{"sessionId": sessionID}
	update := bson.M{"$set": bson.M{"wantsAppointment": wantsAppointment}}
	opts := options.Update().SetUpsert(true)

	_, err := r.flagColl.UpdateOne(ctx, filter, update, opts)
	return err
}

func (r *mongoSessionRepo) GetSummary(ctx context.Context, sessionID string) (*models.Summary, error) {
	var summary models.Summary
	err := r.summaryColl.FindOne(ctx, bson.M{"sessionId": sessionID}).Decode(&summary)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (r *mongoSessionRepo) UpsertSummary(ctx context.Context, summary models.Summary) error {
	filter := bson.M{"sessionId": summary.SessionID}
	update := bson.M{"$set": bson.M{
		"summaryText":       summary.SummaryText,
		"appointmentActive": summary.AppointmentActive,
		"updatedAt":         time.Now().UTC(),
	}}
	opts := options.Update().SetUpsert(true)

	_, err := r.summaryColl.UpdateOne(ctx, filter, update, opts)
	return err
}
