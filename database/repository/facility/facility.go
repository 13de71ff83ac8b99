package facilityRepo

import (
	"context"

	"frontline/database"
	"frontline/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// FacilityRepository provides read-only access to the geo-tagged facility
// reference data.
type FacilityRepository interface {
	// SearchByDepartment returns facilities whose amenity tag contains the
	// query as a case-insensitive substring, in natural collection order.
	SearchByDepartment(ctx context.Context, query string) ([]models.Facility, error)
	GetByID(ctx context.Context, id int64) (*models.Facility, error)
}

type mongoFacilityRepo struct {
	coll *mongo.Collection
}

// NewMongoFacilityRepo returns a new FacilityRepository instance using MongoDB.
func NewMongoFacilityRepo() FacilityRepository {
	return &mongoFacilityRepo{
		coll: database.DB().Collection("health_facilities"),
	}
}
