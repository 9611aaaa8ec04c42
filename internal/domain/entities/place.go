package entities

import (
	"github.com/hbnb-project/hbnb/backend/internal/domain/validation"
)

// Place represents a listing. OwnerID is fixed at creation.
type Place struct {
	Base
	Title       string   `json:"title" db:"title"`
	Description string   `json:"description" db:"description"`
	Price       float64  `json:"price" db:"price"`
	Latitude    float64  `json:"latitude" db:"latitude"`
	Longitude   float64  `json:"longitude" db:"longitude"`
	OwnerID     string   `json:"owner_id" db:"owner_id"`
	AmenityIDs  []string `json:"amenity_ids" db:"-"`
}

// PlaceInput is the data needed to create a place.
type PlaceInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	OwnerID     string   `json:"owner_id"`
	AmenityIDs  []string `json:"amenities"`
}

// PlacePatch lists the mutable place fields. A non-nil AmenityIDs replaces the whole set.
type PlacePatch struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Price       *float64  `json:"price"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`
	AmenityIDs  *[]string `json:"amenities"`
}

// NewPlace validates in. Amenity IDs are resolved by the caller and set with SetAmenities.
func NewPlace(in PlaceInput) (*Place, error) {
	p := &Place{Base: NewBase()}
	var err error
	if p.Title, err = validation.Title(in.Title); err != nil {
		return nil, err
	}
	if p.Description, err = validation.Description(in.Description); err != nil {
		return nil, err
	}
	if p.Price, err = validation.Price(in.Price); err != nil {
		return nil, err
	}
	if p.Latitude, err = validation.Latitude(in.Latitude); err != nil {
		return nil, err
	}
	if p.Longitude, err = validation.Longitude(in.Longitude); err != nil {
		return nil, err
	}
	if p.OwnerID, err = validation.ID("owner_id", in.OwnerID); err != nil {
		return nil, err
	}
	p.AmenityIDs = []string{}
	return p, nil
}

// Apply validates and assigns the scalar fields of patch. AmenityIDs is left to the caller.
func (p *Place) Apply(patch PlacePatch) error {
	next := *p
	var err error
	if patch.Title != nil {
		if next.Title, err = validation.Title(*patch.Title); err != nil {
			return err
		}
	}
	if patch.Description != nil {
		if next.Description, err = validation.Description(*patch.Description); err != nil {
			return err
		}
	}
	if patch.Price != nil {
		if next.Price, err = validation.Price(*patch.Price); err != nil {
			return err
		}
	}
	if patch.Latitude != nil {
		if next.Latitude, err = validation.Latitude(*patch.Latitude); err != nil {
			return err
		}
	}
	if patch.Longitude != nil {
		if next.Longitude, err = validation.Longitude(*patch.Longitude); err != nil {
			return err
		}
	}
	next.Touch()
	*p = next
	return nil
}

// SetAmenities replaces the amenity set, dropping duplicates and keeping first-seen order.
func (p *Place) SetAmenities(ids []string) {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	p.AmenityIDs = out
}

// HasAmenity reports whether id is in the amenity set.
func (p *Place) HasAmenity(id string) bool {
	for _, a := range p.AmenityIDs {
		if a == id {
			return true
		}
	}
	return false
}

// PlaceSummary is a place reference embedded in review representations.
type PlaceSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func (p *Place) Summary() PlaceSummary {
	return PlaceSummary{ID: p.ID, Title: p.Title}
}
