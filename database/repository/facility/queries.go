package facilityRepo

import (
	"context"
	"errors"
	"regexp"

	"frontline/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SearchByDepartment performs a case-insensitive substring match on the
// amenity tag. Natural _id order keeps insertion order so downstream
// tie-breaking stays stable.
func (r *mongoFacilityRepo) SearchByDepartment(ctx context.Context, query string) ([]models.Facility, error) {
	if query == "" {
		return []models.Facility{}, nil
	}

	filter := bson.M{
		"amenity": primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"},
	}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var facilities []models.Facility
	if err := cursor.All(ctx, &facilities); err != nil {
		return nil, err
	}
	return facilities, nil
}

// GetByID returns a facility by its numeric id.
func (r *mongoFacilityRepo) GetByID(ctx context.Context, id int64) (*models.Facility, error) {
	var facility models.Facility
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&facility)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &facility, nil
}
