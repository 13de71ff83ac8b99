package appointmentRepo

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

// AppointmentRepository persists completed bookings.
type AppointmentRepository interface {
	// CreateWithFlagReset inserts the appointment and resets the session's
	// appointment flag in a single transaction. Either both writes commit
	// or neither does.
	CreateWithFlagReset(ctx context.Context, appointment *models.Appointment) error
	GetAll(ctx context.Context) ([]models.Appointment, error)
	GetBySessionID(ctx context.Context, sessionID string) ([]models.Appointment, error)
}

type mongoAppointmentRepo struct {
	coll     *mongo.Collection
	flagColl *mongo.Collection
}

// NewMongoAppointmentRepo returns a new AppointmentRepository instance using MongoDB.
func NewMongoAppointmentRepo() AppointmentRepository {
	r := &mongoAppointmentRepo{
		coll:     database.DB().Collection("appointments"),
		flagColl: database.DB().Collection("session_flags"),
	}
	if err := r.ensureIndexes(); err != nil {
		panic(fmt.Sprintf("appointment repo index creation failed: %v", err))
	}
	return r
}

func (r *mongoAppointmentRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "sessionId", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *mongoAppointmentRepo) CreateWithFlagReset(ctx context.Context, appointment *models.Appointment) error {
	if appointment.ID == "" {
		appointment.ID = uuid.New().String()
	}
	appointment.CreatedAt = time.Now().UTC()

	client := r.coll.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) error {
		if _, err := r.coll.InsertOne(sc, appointment); err != nil {
			return fmt.Errorf("insert appointment failed: %w", err)
		}

		filter := bson.M{"sessionId": appointment.SessionID}
		update := bson.M{"$set": bson.M{"wantsAppointment": false}}
		opts := options.Update().SetUpsert(true)

		if _, err := r.flagColl.UpdateOne(sc, filter, update, opts); err != nil {
			return fmt.Errorf("reset session flag failed: %w", err)
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		return fmt.Errorf("appointment transaction failed: %w", err)
	}

	return nil
}

func (r *mongoAppointmentRepo) GetAll(ctx context.Context) ([]models.Appointment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "time", Value: 1}})

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var appointments []models.Appointment
	if err := cursor.All(ctx, &appointments); err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *mongoAppointmentRepo) GetBySessionID(ctx context.Context, sessionID string) ([]models.Appointment, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"sessionId": sessionID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var appointments []models.Appointment
	if err := cursor.All(ctx, &appointments); err != nil {
		return nil, err
	}
	return appointments, nil
}
