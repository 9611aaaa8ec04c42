package entities_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/hbnb-project/hbnb/backend/internal/domain/entities"
	apperrors "github.com/hbnb-project/hbnb/backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }
func boolPtr(b bool) *bool        { return &b }

func TestNewUser_NormalizesAndHidesPassword(t *testing.T) {
	u, err := entities.NewUser(entities.UserInput{
		FirstName: " Alice ",
		LastName:  "Smith",
		Email:     "Alice@Example.com",
		Password:  "secret123",
	})
	require.NoError(t, err)
	u.PasswordHash = "$2a$10$hash"

	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "Alice", u.FirstName)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.False(t, u.IsAdmin)
	assert.Equal(t, u.CreatedAt, u.UpdatedAt)

	raw, err := json.Marshal(u)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.NotContains(t, out, "password")
	assert.NotContains(t, out, "PasswordHash")
	assert.NotContains(t, out, "password_hash")
	assert.Contains(t, out, "created_at")
}

func TestUserApply_IsAtomic(t *testing.T) {
	u, err := entities.NewUser(entities.UserInput{FirstName: "A", LastName: "B", Email: "a@x.com"})
	require.NoError(t, err)

	err = u.Apply(entities.UserPatch{FirstName: strPtr("Changed"), Email: strPtr("not-an-email")})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	assert.Equal(t, "A", u.FirstName)

	before := u.UpdatedAt
	time.Sleep(time.Millisecond)
	require.NoError(t, u.Apply(entities.UserPatch{LastName: strPtr("Brown"), IsAdmin: boolPtr(true)}))
	assert.Equal(t, "Brown", u.LastName)
	assert.True(t, u.IsAdmin)
	assert.True(t, u.UpdatedAt.After(before))
}

func TestUserPatch_IsEmpty(t *testing.T) {
	assert.True(t, entities.UserPatch{}.IsEmpty())
	assert.False(t, entities.UserPatch{Password: strPtr("x")}.IsEmpty())
}

func TestNewPlace(t *testing.T) {
	p, err := entities.NewPlace(entities.PlaceInput{
		Title:     "Cozy flat",
		Price:     80,
		Latitude:  90,
		Longitude: -180,
		OwnerID:   "owner-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "", p.Description)
	assert.Empty(t, p.AmenityIDs)

	_, err = entities.NewPlace(entities.PlaceInput{Title: "x", Price: 0, OwnerID: "o"})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "price", appErr.Field)

	_, err = entities.NewPlace(entities.PlaceInput{Title: "x", Price: 1, OwnerID: " "})
	appErr, ok = apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "owner_id", appErr.Field)
}

func TestPlaceApply_OnlyTouchesSuppliedFields(t *testing.T) {
	p, err := entities.NewPlace(entities.PlaceInput{Title: "Loft", Description: "Nice", Price: 100, OwnerID: "o"})
	require.NoError(t, err)

	require.NoError(t, p.Apply(entities.PlacePatch{Price: floatPtr(120)}))
	assert.Equal(t, 120.0, p.Price)
	assert.Equal(t, "Loft", p.Title)
	assert.Equal(t, "Nice", p.Description)

	err = p.Apply(entities.PlacePatch{Title: strPtr("New"), Latitude: floatPtr(90.0001)})
	require.Error(t, err)
	assert.Equal(t, "Loft", p.Title)
}

func TestPlaceSetAmenities_Deduplicates(t *testing.T) {
	p := &entities.Place{}
	p.SetAmenities([]string{"a", "b", "a"})
	assert.Equal(t, []string{"a", "b"}, p.AmenityIDs)
	assert.True(t, p.HasAmenity("b"))

	p.SetAmenities([]string{"c"})
	assert.Equal(t, []string{"c"}, p.AmenityIDs)
	assert.False(t, p.HasAmenity("a"))
}

func TestReview(t *testing.T) {
	r, err := entities.NewReview(entities.ReviewInput{Text: " Great ", Rating: 5, PlaceID: "p", UserID: "u"})
	require.NoError(t, err)
	assert.Equal(t, "Great", r.Text)

	_, err = entities.NewReview(entities.ReviewInput{Text: "ok", Rating: 6, PlaceID: "p", UserID: "u"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	require.NoError(t, r.Apply(entities.ReviewPatch{Rating: intPtr(1)}))
	assert.Equal(t, 1, r.Rating)
	assert.Equal(t, "p", r.PlaceID)
}

func TestAmenity(t *testing.T) {
	a, err := entities.NewAmenity(" WiFi ")
	require.NoError(t, err)
	assert.Equal(t, "WiFi", a.Name)

	assert.Error(t, a.Apply(entities.AmenityPatch{Name: strPtr("")}))
	assert.Equal(t, "WiFi", a.Name)
}

func TestChangeEvent_WithRelated(t *testing.T) {
	e := entities.NewChangeEvent(entities.CollectionUsers, entities.ChangeActionDeleted, "u1").
		WithRelated(entities.CollectionPlaces, "p1", "p2").
		WithRelated(entities.CollectionReviews)

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, []string{"p1", "p2"}, e.Related[entities.CollectionPlaces])
	assert.NotContains(t, e.Related, entities.CollectionReviews)
}

func TestPrincipal_Is(t *testing.T) {
	var anon *entities.Principal
	assert.False(t, anon.Is("u1"))

	p := entities.PrincipalFromUser(&entities.User{Base: entities.Base{ID: "u1"}, IsAdmin: true})
	assert.True(t, p.Is("u1"))
	assert.True(t, p.IsAdmin)
}
