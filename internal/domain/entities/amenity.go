package entities

import "github.com/hbnb-project/hbnb/backend/internal/domain/validation"

// Amenity is a named feature a place can offer. Names are unique and case-sensitive.
type Amenity struct {
	Base
	Name string `json:"name" db:"name"`
}

// AmenityPatch lists the mutable amenity fields.
type AmenityPatch struct {
	Name *string `json:"name"`
}

func NewAmenity(name string) (*Amenity, error) {
	n, err := validation.AmenityName(name)
	if err != nil {
		return nil, err
	}
	return &Amenity{Base: NewBase(), Name: n}, nil
}

func (a *Amenity) Apply(p AmenityPatch) error {
	if p.Name != nil {
		n, err := validation.AmenityName(*p.Name)
		if err != nil {
			return err
		}
		a.Name = n
	}
	a.Touch()
	return nil
}
