package matching

import (
	"context"
	"strings"
	"testing"

	"frontline/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFacilityRepo filters an in-memory slice the way the Mongo repo does:
// case-insensitive substring match, natural order preserved.
type fakeFacilityRepo struct {
	facilities []models.Facility
}

func (r *fakeFacilityRepo) SearchByDepartment(_ context.Context, query string) ([]models.Facility, error) {
	if query == "" {
		return []models.Facility{}, nil
	}
	var matched []models.Facility
	for _, f := range r.facilities {
		if strings.Contains(strings.ToLower(f.Amenity), strings.ToLower(query)) {
			matched = append(matched, f)
		}
	}
	return matched, nil
}

func (r *fakeFacilityRepo) GetByID(_ context.Context, id int64) (*models.Facility, error) {
	for _, f := range r.facilities {
		if f.ID == id {
			facility := f
			return &facility, nil
		}
	}
	return nil, nil
}

func pakistanFacilities() []models.Facility {
	return []models.Facility{
		{ID: 1, X: 67.0, Y: 24.9, Amenity: "Hospital", Name: "Civil Hospital", OpeningHours: "24/7"},
		{ID: 2, X: 67.2, Y: 25.1, Amenity: "General Hospital", Name: "Jinnah Hospital", OpeningHours: "Mo-Su 08:00-20:00"},
		{ID: 3, X: 70.0, Y: 30.0, Amenity: "hospital", Name: "District Hospital", OpeningHours: "Mo-Fr 09:00-17:00"},
		{ID: 4, X: 67.05, Y: 24.92, Amenity: "Pharmacy", Name: "City Pharmacy", OpeningHours: "Mo-Su 09:00-22:00"},
		{ID: 5, X: 67.07, Y: 24.93, Amenity: "Hospital", Name: "Lady Reading Annex", OpeningHours: "24/7"},
	}
}

func newService(facilities []models.Facility) *DefaultMatchingService {
	return &DefaultMatchingService{FacilityRepo: &fakeFacilityRepo{facilities: facilities}}
}

func TestFindNearestReturnsThreeHospitalsNearestFirst(t *testing.T) {
	svc := newService(pakistanFacilities())
	point := &Point{X: 67.069987889853, Y: 24.9210952612059}

	got, err := svc.FindNearest(context.Background(), point, "hospital", 3)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Nearest first: the annex sits almost on the query point.
	assert.Equal(t, int64(5), got[0].ID)
	assert.Equal(t, int64(1), got[1].ID)
	assert.Equal(t, int64(2), got[2].ID)

	for _, f := range got {
		assert.Contains(t, strings.ToLower(f.Amenity), "hospital")
	}
}

func TestFindNearestOrdersByNonDecreasingDistance(t *testing.T) {
	svc := newService(pakistanFacilities())
	point := &Point{X: 68.0, Y: 26.0}

	got, err := svc.FindNearest(context.Background(), point, "hospital", 10)
	require.NoError(t, err)
	require.Len(t, got, 4)

	byID := map[int64]models.Facility{}
	for _, f := range pakistanFacilities() {
		byID[f.ID] = f
	}

	prev := -1.0
	for _, dto := range got {
		f := byID[dto.ID]
		dx, dy := f.X-point.X, f.Y-point.Y
		dist := dx*dx + dy*dy
		assert.GreaterOrEqual(t, dist, prev)
		prev = dist
	}
}

func TestFindNearestTiesKeepStoreOrder(t *testing.T) {
	svc := newService([]models.Facility{
		{ID: 10, X: 1, Y: 0, Amenity: "Clinic", Name: "First"},
		{ID: 11, X: -1, Y: 0, Amenity: "Clinic", Name: "Second"},
		{ID: 12, X: 0, Y: 1, Amenity: "Clinic", Name: "Third"},
	})

	got, err := svc.FindNearest(context.Background(), &Point{X: 0, Y: 0}, "clinic", 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, int64(10), got[0].ID)
	assert.Equal(t, int64(11), got[1].ID)
	assert.Equal(t, int64(12), got[2].ID)
}

func TestFindNearestNeverExceedsLimit(t *testing.T) {
	svc := newService(pakistanFacilities())

	got, err := svc.FindNearest(context.Background(), &Point{X: 67, Y: 25}, "hospital", 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestFindNearestReturnsAllWhenFewerThanLimit(t *testing.T) {
	svc := newService(pakistanFacilities())

	got, err := svc.FindNearest(context.Background(), &Point{X: 67, Y: 25}, "pharmacy", 3)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, int64(4), got[0].ID)
}

func TestFindNearestMissingPointYieldsEmptyList(t *testing.T) {
	svc := newService(pakistanFacilities())

	got, err := svc.FindNearest(context.Background(), nil, "hospital", 3)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFindNearestEmptyQueryYieldsEmptyList(t *testing.T) {
	svc := newService(pakistanFacilities())

	got, err := svc.FindNearest(context.Background(), &Point{X: 67, Y: 25}, "", 3)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFindNearestHidesCoordinates(t *testing.T) {
	svc := newService(pakistanFacilities())

	got, err := svc.FindNearest(context.Background(), &Point{X: 67, Y: 25}, "hospital", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.NotEmpty(t, got[0].Name)
	assert.NotEmpty(t, got[0].Amenity)
}
