package repositories

// Conflict messages returned by every repository implementation.
const (
	MsgEmailTaken      = "User with this email already exists"
	MsgAmenityTaken    = "Amenity with this name already exists"
	MsgAlreadyReviewed = "You have already reviewed this place"
)
