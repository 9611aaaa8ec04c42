package validation_test

import (
	"math"
	"strings"
	"testing"

	"github.com/hbnb-project/hbnb/backend/internal/domain/validation"
	apperrors "github.com/hbnb-project/hbnb/backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertFieldError(t *testing.T, err error, field string) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
	assert.Equal(t, field, appErr.Field)
}

func TestNames(t *testing.T) {
	got, err := validation.FirstName("  Ada  ")
	require.NoError(t, err)
	assert.Equal(t, "Ada", got)

	_, err = validation.LastName("   ")
	assertFieldError(t, err, "last_name")

	_, err = validation.FirstName(strings.Repeat("x", 51))
	assertFieldError(t, err, "first_name")

	got, err = validation.FirstName(strings.Repeat("é", 50))
	require.NoError(t, err)
	assert.Len(t, []rune(got), 50)

	got, err = validation.AmenityName(" Swimming Pool ")
	require.NoError(t, err)
	assert.Equal(t, "Swimming Pool", got)

	_, err = validation.AmenityName("")
	assertFieldError(t, err, "name")
}

func TestEmail(t *testing.T) {
	got, err := validation.Email("Alice.Smith+hbnb@Example.COM")
	require.NoError(t, err)
	assert.Equal(t, "alice.smith+hbnb@example.com", got)

	for _, bad := range []string{"", "alice", "alice@", "alice@example", "alice@example.c", "a b@example.com"} {
		_, err := validation.Email(bad)
		assertFieldError(t, err, "email")
	}
}

func TestPassword(t *testing.T) {
	_, err := validation.Password("12345")
	assertFieldError(t, err, "password")

	got, err := validation.Password("123456")
	require.NoError(t, err)
	assert.Equal(t, "123456", got)
}

func TestPlaceFields(t *testing.T) {
	_, err := validation.Title(strings.Repeat("t", 101))
	assertFieldError(t, err, "title")

	got, err := validation.Title(strings.Repeat("t", 100))
	require.NoError(t, err)
	assert.Len(t, got, 100)

	desc, err := validation.Description("   ")
	require.NoError(t, err)
	assert.Equal(t, "", desc)

	_, err = validation.Description(strings.Repeat("d", 1001))
	assertFieldError(t, err, "description")

	for _, bad := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := validation.Price(bad)
		assertFieldError(t, err, "price")
	}
	_, err = validation.Price(0.01)
	assert.NoError(t, err)
}

func TestCoordinateBoundaries(t *testing.T) {
	for _, ok := range []float64{-90, 0, 90} {
		_, err := validation.Latitude(ok)
		assert.NoError(t, err, ok)
	}
	for _, ok := range []float64{-180, 180} {
		_, err := validation.Longitude(ok)
		assert.NoError(t, err, ok)
	}

	_, err := validation.Latitude(90.0001)
	assertFieldError(t, err, "latitude")
	_, err = validation.Latitude(-90.0001)
	assertFieldError(t, err, "latitude")
	_, err = validation.Longitude(180.0001)
	assertFieldError(t, err, "longitude")
	_, err = validation.Latitude(math.NaN())
	assertFieldError(t, err, "latitude")
}

func TestReviewFields(t *testing.T) {
	_, err := validation.ReviewText(" ")
	assertFieldError(t, err, "text")

	_, err = validation.ReviewText(strings.Repeat("r", 1001))
	assertFieldError(t, err, "text")

	for _, r := range []int{1, 5} {
		got, err := validation.Rating(r)
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}
	for _, r := range []int{0, 6, -3} {
		_, err := validation.Rating(r)
		assertFieldError(t, err, "rating")
	}

	_, err = validation.RatingNumber(4.5)
	assertFieldError(t, err, "rating")
	got, err := validation.RatingNumber(5)
	require.NoError(t, err)
	assert.Equal(t, 5, got)
}
