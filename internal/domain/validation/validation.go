// Package validation holds the field rules shared by entity construction and patches.
// Every function returns the normalized value or a VALIDATION AppError naming the field.
package validation

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	apperrors "github.com/hbnb-project/hbnb/backend/pkg/errors"
)

const (
	MaxNameLength        = 50
	MaxTitleLength       = 100
	MaxDescriptionLength = 1000
	MaxReviewTextLength  = 1000
	MinPasswordLength    = 6
	MinRating            = 1
	MaxRating            = 5
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// FirstName validates a user's first name.
func FirstName(v string) (string, error) {
	return requiredText("first_name", "First name", v, MaxNameLength)
}

// LastName validates a user's last name.
func LastName(v string) (string, error) {
	return requiredText("last_name", "Last name", v, MaxNameLength)
}

// AmenityName validates an amenity name. Case is preserved.
func AmenityName(v string) (string, error) {
	return requiredText("name", "Amenity name", v, MaxNameLength)
}

// Email checks the address shape and lower-cases it.
func Email(v string) (string, error) {
	if v == "" {
		return "", apperrors.NewFieldValidationError("email", "Email is required")
	}
	if !emailPattern.MatchString(v) {
		return "", apperrors.NewFieldValidationError("email", "Invalid email format")
	}
	return strings.ToLower(v), nil
}

// Password only enforces a minimum length.
func Password(v string) (string, error) {
	if utf8.RuneCountInString(v) < MinPasswordLength {
		return "", apperrors.NewFieldValidationError("password",
			fmt.Sprintf("Password must be at least %d characters long", MinPasswordLength))
	}
	return v, nil
}

// Title validates a place title.
func Title(v string) (string, error) {
	return requiredText("title", "Title", v, MaxTitleLength)
}

// Description validates an optional place description.
func Description(v string) (string, error) {
	v = strings.TrimSpace(v)
	if utf8.RuneCountInString(v) > MaxDescriptionLength {
		return "", apperrors.NewFieldValidationError("description",
			fmt.Sprintf("Description cannot exceed %d characters", MaxDescriptionLength))
	}
	return v, nil
}

// Price must be a finite number strictly greater than zero.
func Price(v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, apperrors.NewFieldValidationError("price", "Price must be a number")
	}
	if v <= 0 {
		return 0, apperrors.NewFieldValidationError("price", "Price must be greater than 0")
	}
	return v, nil
}

// Latitude accepts [-90, 90] inclusive.
func Latitude(v float64) (float64, error) {
	if math.IsNaN(v) || v < -90 || v > 90 {
		return 0, apperrors.NewFieldValidationError("latitude", "Latitude must be between -90 and 90")
	}
	return v, nil
}

// Longitude accepts [-180, 180] inclusive.
func Longitude(v float64) (float64, error) {
	if math.IsNaN(v) || v < -180 || v > 180 {
		return 0, apperrors.NewFieldValidationError("longitude", "Longitude must be between -180 and 180")
	}
	return v, nil
}

// ReviewText validates review text.
func ReviewText(v string) (string, error) {
	return requiredText("text", "Review text", v, MaxReviewTextLength)
}

// Rating accepts integers 1 through 5.
func Rating(v int) (int, error) {
	if v < MinRating || v > MaxRating {
		return 0, apperrors.NewFieldValidationError("rating",
			fmt.Sprintf("Rating must be between %d and %d", MinRating, MaxRating))
	}
	return v, nil
}

// RatingNumber validates a rating that arrived as an arbitrary number.
func RatingNumber(v float64) (int, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return 0, apperrors.NewFieldValidationError("rating", "Rating must be an integer")
	}
	if v < MinRating || v > MaxRating {
		return Rating(0)
	}
	return Rating(int(v))
}

// ID rejects blank identifiers for required references.
func ID(field, v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", apperrors.NewFieldValidationError(field, fmt.Sprintf("%s is required", field))
	}
	return v, nil
}

func requiredText(field, label, v string, max int) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", apperrors.NewFieldValidationError(field, label+" cannot be empty")
	}
	if utf8.RuneCountInString(v) > max {
		return "", apperrors.NewFieldValidationError(field, fmt.Sprintf("%s cannot exceed %d characters", label, max))
	}
	return v, nil
}
