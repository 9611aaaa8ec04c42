// Package memory is a process-local implementation of the repositories.
// One mutex guards all four collections so uniqueness checks, inserts and
// cascades happen atomically.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/hbnb-project/hbnb/backend/internal/domain/entities"
	"github.com/hbnb-project/hbnb/backend/internal/domain/repositories"
	apperrors "github.com/hbnb-project/hbnb/backend/pkg/errors"
)

const (
	MsgEmailTaken      = repositories.MsgEmailTaken
	MsgAmenityTaken    = repositories.MsgAmenityTaken
	MsgAlreadyReviewed = repositories.MsgAlreadyReviewed
)

// Store holds every collection.
type Store struct {
	mu        sync.RWMutex
	users     map[string]*entities.User
	places    map[string]*entities.Place
	reviews   map[string]*entities.Review
	amenities map[string]*entities.Amenity
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		users:     make(map[string]*entities.User),
		places:    make(map[string]*entities.Place),
		reviews:   make(map[string]*entities.Review),
		amenities: make(map[string]*entities.Amenity),
	}
}

func (s *Store) Users() *UserRepository        { return &UserRepository{s: s} }
func (s *Store) Places() *PlaceRepository      { return &PlaceRepository{s: s} }
func (s *Store) Reviews() *ReviewRepository    { return &ReviewRepository{s: s} }
func (s *Store) Amenities() *AmenityRepository { return &AmenityRepository{s: s} }

var (
	_ repositories.UserRepository    = (*UserRepository)(nil)
	_ repositories.PlaceRepository   = (*PlaceRepository)(nil)
	_ repositories.ReviewRepository  = (*ReviewRepository)(nil)
	_ repositories.AmenityRepository = (*AmenityRepository)(nil)
)

func cloneUser(u *entities.User) *entities.User {
	c := *u
	return &c
}

func clonePlace(p *entities.Place) *entities.Place {
	c := *p
	c.AmenityIDs = append([]string{}, p.AmenityIDs...)
	return &c
}

func cloneReview(r *entities.Review) *entities.Review {
	c := *r
	return &c
}

func cloneAmenity(a *entities.Amenity) *entities.Amenity {
	c := *a
	return &c
}

// page sorts by creation time then ID and applies opts.
func page[T any](items []T, created func(T) (int64, string), opts repositories.ListOptions) []T {
	sort.Slice(items, func(i, j int) bool {
		ti, idi := created(items[i])
		tj, idj := created(items[j])
		if ti != tj {
			return ti < tj
		}
		return idi < idj
	})
	if opts.Offset > 0 {
		if opts.Offset >= len(items) {
			return items[:0]
		}
		items = items[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(items) {
		items = items[:opts.Limit]
	}
	return items
}

func baseKey(b entities.Base) (int64, string) {
	return b.CreatedAt.UnixNano(), b.ID
}

// deleteUserLocked removes a user and everything that hangs off them.
func (s *Store) deleteUserLocked(id string) {
	for pid, p := range s.places {
		if p.OwnerID == id {
			s.deletePlaceLocked(pid)
		}
	}
	for rid, r := range s.reviews {
		if r.UserID == id {
			delete(s.reviews, rid)
		}
	}
	delete(s.users, id)
}

func (s *Store) deletePlaceLocked(id string) {
	for rid, r := range s.reviews {
		if r.PlaceID == id {
			delete(s.reviews, rid)
		}
	}
	delete(s.places, id)
}

func (s *Store) emailTakenLocked(email, exceptID string) bool {
	for _, u := range s.users {
		if u.ID != exceptID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func (s *Store) amenityNameTakenLocked(name, exceptID string) bool {
	for _, a := range s.amenities {
		if a.ID != exceptID && a.Name == name {
			return true
		}
	}
	return false
}

// knownAmenitiesLocked keeps only IDs of stored amenities.
func (s *Store) knownAmenitiesLocked(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := s.amenities[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// UserRepository is the memory implementation of repositories.UserRepository
type UserRepository struct{ s *Store }

func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.emailTakenLocked(user.Email, "") {
		return apperrors.NewConflictError("email", MsgEmailTaken)
	}
	r.s.users[user.ID] = cloneUser(user)
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("User not found")
	}
	return cloneUser(u), nil
}

func (r *UserRepository) GetByIDs(ctx context.Context, ids []string) ([]*entities.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entities.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return cloneUser(u), nil
		}
	}
	return nil, apperrors.NewNotFoundError("User not found")
}

func (r *UserRepository) List(ctx context.Context, opts repositories.ListOptions) ([]*entities.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entities.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, cloneUser(u))
	}
	return page(out, func(u *entities.User) (int64, string) { return baseKey(u.Base) }, opts), nil
}

func (r *UserRepository) Update(ctx context.Context, user *entities.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; !ok {
		return apperrors.NewNotFoundError("User not found")
	}
	if r.s.emailTakenLocked(user.Email, user.ID) {
		return apperrors.NewConflictError("email", MsgEmailTaken)
	}
	r.s.users[user.ID] = cloneUser(user)
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return apperrors.NewNotFoundError("User not found")
	}
	r.s.deleteUserLocked(id)
	return nil
}

// AmenityRepository is the memory implementation of repositories.AmenityRepository
type AmenityRepository struct{ s *Store }

func (r *AmenityRepository) Create(ctx context.Context, amenity *entities.Amenity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.amenityNameTakenLocked(amenity.Name, "") {
		return apperrors.NewConflictError("name", MsgAmenityTaken)
	}
	r.s.amenities[amenity.ID] = cloneAmenity(amenity)
	return nil
}

func (r *AmenityRepository) GetByID(ctx context.Context, id string) (*entities.Amenity, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.amenities[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("Amenity not found")
	}
	return cloneAmenity(a), nil
}

func (r *AmenityRepository) GetByIDs(ctx context.Context, ids []string) ([]*entities.Amenity, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entities.Amenity, 0, len(ids))
	for _, id := range ids {
		if a, ok := r.s.amenities[id]; ok {
			out = append(out, cloneAmenity(a))
		}
	}
	return out, nil
}

func (r *AmenityRepository) GetByName(ctx context.Context, name string) (*entities.Amenity, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.amenities {
		if a.Name == name {
			return cloneAmenity(a), nil
		}
	}
	return nil, apperrors.NewNotFoundError("Amenity not found")
}

func (r *AmenityRepository) List(ctx context.Context, opts repositories.ListOptions) ([]*entities.Amenity, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entities.Amenity, 0, len(r.s.amenities))
	for _, a := range r.s.amenities {
		out = append(out, cloneAmenity(a))
	}
	return page(out, func(a *entities.Amenity) (int64, string) { return baseKey(a.Base) }, opts), nil
}

func (r *AmenityRepository) Update(ctx context.Context, amenity *entities.Amenity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.amenities[amenity.ID]; !ok {
		return apperrors.NewNotFoundError("Amenity not found")
	}
	if r.s.amenityNameTakenLocked(amenity.Name, amenity.ID) {
		return apperrors.NewConflictError("name", MsgAmenityTaken)
	}
	r.s.amenities[amenity.ID] = cloneAmenity(amenity)
	return nil
}

func (r *AmenityRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.amenities[id]; !ok {
		return apperrors.NewNotFoundError("Amenity not found")
	}
	delete(r.s.amenities, id)
	for _, p := range r.s.places {
		if p.HasAmenity(id) {
			kept := make([]string, 0, len(p.AmenityIDs)-1)
			for _, a := range p.AmenityIDs {
				if a != id {
					kept = append(kept, a)
				}
			}
			p.AmenityIDs = kept
		}
	}
	return nil
}

// PlaceRepository is the memory implementation of repositories.PlaceRepository
type PlaceRepository struct{ s *Store }

func (r *PlaceRepository) Create(ctx context.Context, place *entities.Place) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[place.OwnerID]; !ok {
		return apperrors.NewNotFoundError("Owner not found")
	}
	c := clonePlace(place)
	c.AmenityIDs = r.s.knownAmenitiesLocked(c.AmenityIDs)
	r.s.places[place.ID] = c
	return nil
}

func (r *PlaceRepository) GetByID(ctx context.Context, id string) (*entities.Place, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.places[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("Place not found")
	}
	return clonePlace(p), nil
}

func (r *PlaceRepository) GetByIDs(ctx context.Context, ids []string) ([]*entities.Place, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entities.Place, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.s.places[id]; ok {
			out = append(out, clonePlace(p))
		}
	}
	return out, nil
}

func (r *PlaceRepository) List(ctx context.Context, opts repositories.ListOptions) ([]*entities.Place, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entities.Place, 0, len(r.s.places))
	for _, p := range r.s.places {
		out = append(out, clonePlace(p))
	}
	return page(out, func(p *entities.Place) (int64, string) { return baseKey(p.Base) }, opts), nil
}

func (r *PlaceRepository) ListByOwner(ctx context.Context, ownerID string) ([]*entities.Place, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entities.Place, 0)
	for _, p := range r.s.places {
		if p.OwnerID == ownerID {
			out = append(out, clonePlace(p))
		}
	}
	return page(out, func(p *entities.Place) (int64, string) { return baseKey(p.Base) }, repositories.ListOptions{}), nil
}

func (r *PlaceRepository) Update(ctx context.Context, place *entities.Place) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.places[place.ID]
	if !ok {
		return apperrors.NewNotFoundError("Place not found")
	}
	c := clonePlace(place)
	c.OwnerID = existing.OwnerID
	c.CreatedAt = existing.CreatedAt
	c.AmenityIDs = r.s.knownAmenitiesLocked(c.AmenityIDs)
	r.s.places[place.ID] = c
	return nil
}

func (r *PlaceRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.places[id]; !ok {
		return apperrors.NewNotFoundError("Place not found")
	}
	r.s.deletePlaceLocked(id)
	return nil
}

// ReviewRepository is the memory implementation of repositories.ReviewRepository
type ReviewRepository struct{ s *Store }

func (r *ReviewRepository) Create(ctx context.Context, review *entities.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.places[review.PlaceID]; !ok {
		return apperrors.NewNotFoundError("Place not found")
	}
	if _, ok := r.s.users[review.UserID]; !ok {
		return apperrors.NewNotFoundError("User not found")
	}
	for _, existing := range r.s.reviews {
		if existing.UserID == review.UserID && existing.PlaceID == review.PlaceID {
			return apperrors.NewConflictError("place_id", MsgAlreadyReviewed)
		}
	}
	r.s.reviews[review.ID] = cloneReview(review)
	return nil
}

func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*entities.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rv, ok := r.s.reviews[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("Review not found")
	}
	return cloneReview(rv), nil
}

func (r *ReviewRepository) List(ctx context.Context, opts repositories.ListOptions) ([]*entities.Review, error) {
	return r.filter(func(*entities.Review) bool { return true }, opts), nil
}

func (r *ReviewRepository) ListByPlace(ctx context.Context, placeID string) ([]*entities.Review, error) {
	return r.filter(func(rv *entities.Review) bool { return rv.PlaceID == placeID }, repositories.ListOptions{}), nil
}

func (r *ReviewRepository) ListByUser(ctx context.Context, userID string) ([]*entities.Review, error) {
	return r.filter(func(rv *entities.Review) bool { return rv.UserID == userID }, repositories.ListOptions{}), nil
}

func (r *ReviewRepository) GetByUserAndPlace(ctx context.Context, userID, placeID string) (*entities.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, rv := range r.s.reviews {
		if rv.UserID == userID && rv.PlaceID == placeID {
			return cloneReview(rv), nil
		}
	}
	return nil, apperrors.NewNotFoundError("Review not found")
}

func (r *ReviewRepository) Update(ctx context.Context, review *entities.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.reviews[review.ID]
	if !ok {
		return apperrors.NewNotFoundError("Review not found")
	}
	c := cloneReview(review)
	c.PlaceID = existing.PlaceID
	c.UserID = existing.UserID
	c.CreatedAt = existing.CreatedAt
	r.s.reviews[review.ID] = c
	return nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.reviews[id]; !ok {
		return apperrors.NewNotFoundError("Review not found")
	}
	delete(r.s.reviews, id)
	return nil
}

func (r *ReviewRepository) filter(keep func(*entities.Review) bool, opts repositories.ListOptions) []*entities.Review {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entities.Review, 0)
	for _, rv := range r.s.reviews {
		if keep(rv) {
			out = append(out, cloneReview(rv))
		}
	}
	return page(out, func(rv *entities.Review) (int64, string) { return baseKey(rv.Base) }, opts)
}
