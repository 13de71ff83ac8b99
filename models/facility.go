package models

// Facility is a geo-tagged municipal service location. The collection is
// reference data imported from OSM extracts and is read-only to this service.
type Facility struct {
	ID                int64   `bson:"id" json:"id"`
	X                 float64 `bson:"x" json:"x"`
	Y                 float64 `bson:"y" json:"y"`
	Amenity           string  `bson:"amenity" json:"amenity"`
	Name              string  `bson:"name" json:"name"`
	OpeningHours      string  `bson:"opening_hours" json:"openingHours"`
	Speciality        string  `bson:"speciality,omitempty" json:"speciality,omitempty"`
	AddrFull          string  `bson:"addr_full,omitempty" json:"addrFull,omitempty"`
	ContactNumber     string  `bson:"contact_number,omitempty" json:"contactNumber,omitempty"`
	Emergency         string  `bson:"emergency,omitempty" json:"emergency,omitempty"`
	Wheelchair        string  `bson:"wheelchair,omitempty" json:"wheelchair,omitempty"`
	OperationalStatus string  `bson:"operational_status,omitempty" json:"operationalStatus,omitempty"`
}

// FacilityDTO is the reduced facility view returned to callers.
// Raw coordinates are deliberately not exposed.
type FacilityDTO struct {
	ID           int64  `json:"id"`
	Amenity      string `json:"amenity"`
	Name         string `json:"name"`
	OpeningHours string `json:"openingHours"`
}

// ToDTO reduces a facility to its public view.
func (f Facility) ToDTO() FacilityDTO {
	return FacilityDTO{
		ID:           f.ID,
		Amenity:      f.Amenity,
		Name:         f.Name,
		OpeningHours: f.OpeningHours,
	}
}
