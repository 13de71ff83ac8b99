package matching

import (
	"context"
	"fmt"
	"sort"

	facilityRepo "frontline/database/repository/facility"
	"frontline/models"
)

// DefaultLimit is the number of facilities returned when the caller does
// not ask for a specific count.
const DefaultLimit = 3

// Point is a query location in the facility table's coordinate space.
type Point struct {
	X float64
	Y float64
}

// rankedFacility holds facility data along with its computed distance.
type rankedFacility struct {
	Facility models.Facility
	// Squared Euclidean distance. Ordering is all that matters, so the
	// square root is never taken.
	Distance float64
}

// MatchingService finds the facilities nearest to a query point.
type MatchingService interface {
	FindNearest(ctx context.Context, point *Point, departmentQuery string, limit int) ([]models.FacilityDTO, error)
}

// DefaultMatchingService implements MatchingService.
type DefaultMatchingService struct {
	FacilityRepo facilityRepo.FacilityRepository
}

// FindNearest returns at most limit facilities whose amenity tag contains
// departmentQuery, ordered by ascending distance to point. A missing point
// or an empty query yields an empty list rather than an error or an
// unfiltered result.
func (s *DefaultMatchingService) FindNearest(ctx context.Context, point *Point, departmentQuery string, limit int) ([]models.FacilityDTO, error) {
	if point == nil || departmentQuery == "" {
		return []models.FacilityDTO{}, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	facilities, err := s.FacilityRepo.SearchByDepartment(ctx, departmentQuery)
	if err != nil {
		return nil, fmt.Errorf("facility search failed: %w", err)
	}
	if len(facilities) == 0 {
		return []models.FacilityDTO{}, nil
	}

	ranked := make([]rankedFacility, 0, len(facilities))
	for _, f := range facilities {
		dx := f.X - point.X
		dy := f.Y - point.Y
		ranked = append(ranked, rankedFacility{
			Facility: f,
			Distance: dx*dx + dy*dy,
		})
	}

	// Stable sort keeps the store's natural order for ties.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Distance < ranked[j].Distance
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	dtos := make([]models.FacilityDTO, 0, len(ranked))
	for _, rf := range ranked {
		dtos = append(dtos, rf.Facility.ToDTO())
	}
	return dtos, nil
}
