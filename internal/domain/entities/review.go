package entities

import (
	"github.com/hbnb-project/hbnb/backend/internal/domain/validation"
)

// Review is a user's rating of a place. PlaceID and UserID are fixed at creation.
type Review struct {
	Base
	Text    string `json:"text" db:"text"`
	Rating  int    `json:"rating" db:"rating"`
	PlaceID string `json:"place_id" db:"place_id"`
	UserID  string `json:"user_id" db:"user_id"`
}

// ReviewInput is the data needed to create a review.
type ReviewInput struct {
	Text    string `json:"text"`
	Rating  int    `json:"rating"`
	PlaceID string `json:"place_id"`
	UserID  string `json:"user_id"`
}

// ReviewPatch lists the mutable review fields.
type ReviewPatch struct {
	Text   *string `json:"text"`
	Rating *int    `json:"rating"`
}

func NewReview(in ReviewInput) (*Review, error) {
	r := &Review{Base: NewBase()}
	var err error
	if r.Text, err = validation.ReviewText(in.Text); err != nil {
		return nil, err
	}
	if r.Rating, err = validation.Rating(in.Rating); err != nil {
		return nil, err
	}
	if r.PlaceID, err = validation.ID("place_id", in.PlaceID); err != nil {
		return nil, err
	}
	if r.UserID, err = validation.ID("user_id", in.UserID); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Review) Apply(p ReviewPatch) error {
	next := *r
	var err error
	if p.Text != nil {
		if next.Text, err = validation.ReviewText(*p.Text); err != nil {
			return err
		}
	}
	if p.Rating != nil {
		if next.Rating, err = validation.Rating(*p.Rating); err != nil {
			return err
		}
	}
	next.Touch()
	*r = next
	return nil
}
