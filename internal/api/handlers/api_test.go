package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hbnb-project/hbnb/backend/internal/api/handlers"
)

type object = map[string]interface{}

func TestRootAndHealth(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Welcome to HBnB API", decode[object](t, w)["message"])

	w = api.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode[object](t, w)["status"])
}

func TestBookingFlow(t *testing.T) {
	api := newTestAPI(t)
	adminToken := api.login(t, adminEmail, adminPassword)

	w := api.do(t, http.MethodPost, "/api/v1/amenities", object{"name": "Sauna"}, adminToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	saunaID := decode[object](t, w)["id"].(string)

	ownerID, ownerToken := api.register(t, "Olive", "olive@example.com")
	guestID, guestToken := api.register(t, "Gus", "gus@example.com")

	place := api.createPlace(t, ownerToken, object{
		"title":     "Cozy cabin",
		"price":     120.5,
		"latitude":  45.5,
		"longitude": -73.6,
		"amenities": []string{saunaID, "no-such-amenity"},
	})
	placeID := place["id"].(string)
	assert.Equal(t, ownerID, place["owner_id"])
	assert.Equal(t, "Olive", place["owner"].(object)["first_name"])
	amenities := place["amenities"].([]interface{})
	require.Len(t, amenities, 1)
	assert.Equal(t, "Sauna", amenities[0].(object)["name"])

	// the owner may not review their own place
	w = api.do(t, http.MethodPost, "/api/v1/reviews", object{"text": "Mine", "rating": 5, "place_id": placeID}, ownerToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "You cannot review your own place", decode[object](t, w)["error"])

	w = api.do(t, http.MethodPost, "/api/v1/reviews", object{"text": "Lovely stay", "rating": 4, "place_id": placeID}, guestToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	review := decode[object](t, w)
	reviewID := review["id"].(string)
	assert.Equal(t, guestID, review["user_id"])
	assert.Equal(t, "Gus", review["user"].(object)["first_name"])
	assert.Equal(t, "Cozy cabin", review["place"].(object)["title"])

	w = api.do(t, http.MethodPost, "/api/v1/reviews", object{"text": "Again", "rating": 3, "place_id": placeID}, guestToken)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "place_id", decode[object](t, w)["field"])

	w = api.do(t, http.MethodGet, "/api/v1/places/"+placeID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	reviews := decode[object](t, w)["reviews"].([]interface{})
	require.Len(t, reviews, 1)
	assert.Equal(t, reviewID, reviews[0].(object)["id"])

	w = api.do(t, http.MethodGet, "/api/v1/reviews/places/"+placeID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]object](t, w), 1)

	w = api.do(t, http.MethodGet, "/api/v1/places/"+placeID+"/reviews", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]object](t, w), 1)

	// only the owner or an admin may change the place
	w = api.do(t, http.MethodPut, "/api/v1/places/"+placeID, object{"price": 99}, guestToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(t, http.MethodPut, "/api/v1/places/"+placeID, object{"price": 99, "amenities": []string{}}, ownerToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[object](t, w)
	assert.Equal(t, 99.0, updated["price"])
	assert.Empty(t, updated["amenities"])

	// the author may edit their review, others may not
	w = api.do(t, http.MethodPut, "/api/v1/reviews/"+reviewID, object{"rating": 5}, ownerToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = api.do(t, http.MethodPut, "/api/v1/reviews/"+reviewID, object{"rating": 5}, guestToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5.0, decode[object](t, w)["rating"])

	w = api.do(t, http.MethodDelete, "/api/v1/places/"+placeID, nil, ownerToken)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = api.do(t, http.MethodGet, "/api/v1/reviews/"+reviewID, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMutationsRequireAuthentication(t *testing.T) {
	api := newTestAPI(t)

	cases := []struct {
		method, path string
	}{
		{http.MethodPost, "/api/v1/places"},
		{http.MethodPost, "/api/v1/reviews"},
		{http.MethodPost, "/api/v1/amenities"},
		{http.MethodPost, "/api/v1/users"},
		{http.MethodPut, "/api/v1/users/some-id"},
		{http.MethodDelete, "/api/v1/places/some-id"},
		{http.MethodPost, "/api/v1/auth/logout"},
		{http.MethodGet, "/api/v1/auth/protected"},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := api.do(t, tc.method, tc.path, object{}, "")
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "Authorization token is required", decode[object](t, w)["error"])
		})
	}

	w := api.do(t, http.MethodGet, "/api/v1/places", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestInvalidCredentialsAndTokens(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/v1/auth/login", object{"email": adminEmail, "password": "wrong-password"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password", decode[object](t, w)["error"])

	w = api.do(t, http.MethodPost, "/api/v1/auth/login", object{"email": "nobody@example.com", "password": "whatever"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password", decode[object](t, w)["error"])

	w = api.do(t, http.MethodPost, "/api/v1/auth/login", object{"email": adminEmail}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodGet, "/api/v1/auth/protected", nil, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid token", decode[object](t, w)["error"])
}

func TestRegisterValidation(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/v1/auth/register", object{
		"first_name": "Ann", "last_name": "Lee", "email": "not-an-email", "password": "secret123",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "email", decode[object](t, w)["field"])

	api.register(t, "Ann", "ann@example.com")
	w = api.do(t, http.MethodPost, "/api/v1/auth/register", object{
		"first_name": "Ann", "last_name": "Lee", "email": "ANN@example.com", "password": "secret123",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "email", decode[object](t, w)["field"])

	// self-registration never grants admin
	w = api.do(t, http.MethodPost, "/api/v1/auth/register", object{
		"first_name": "Eve", "last_name": "Lee", "email": "eve@example.com", "password": "secret123", "is_admin": true,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, false, decode[object](t, w)["user"].(object)["is_admin"])

	w = api.do(t, http.MethodPost, "/api/v1/auth/register", "{not json", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReviewRatingValidation(t *testing.T) {
	api := newTestAPI(t)
	_, ownerToken := api.register(t, "Olive", "olive@example.com")
	_, guestToken := api.register(t, "Gus", "gus@example.com")
	placeID := api.createPlace(t, ownerToken, object{"title": "Loft", "price": 80, "latitude": 1, "longitude": 2})["id"]

	for _, rating := range []interface{}{4.5, "five", 0, 6} {
		w := api.do(t, http.MethodPost, "/api/v1/reviews", object{"text": "ok", "rating": rating, "place_id": placeID}, guestToken)
		assert.Equal(t, http.StatusBadRequest, w.Code, "rating %v", rating)
		assert.Equal(t, "rating", decode[object](t, w)["field"], "rating %v", rating)
	}

	w := api.do(t, http.MethodPost, "/api/v1/reviews", object{"text": "ok", "rating": 3, "place_id": "missing"}, guestToken)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlaceValidation(t *testing.T) {
	api := newTestAPI(t)
	_, token := api.register(t, "Olive", "olive@example.com")

	cases := map[string]object{
		"price":     {"title": "Loft", "price": -1, "latitude": 1, "longitude": 2},
		"latitude":  {"title": "Loft", "price": 10, "latitude": 91, "longitude": 2},
		"longitude": {"title": "Loft", "price": 10, "latitude": 1, "longitude": -181},
		"title":     {"title": "", "price": 10, "latitude": 1, "longitude": 2},
	}
	for field, body := range cases {
		w := api.do(t, http.MethodPost, "/api/v1/places", body, token)
		assert.Equal(t, http.StatusBadRequest, w.Code, field)
		assert.Equal(t, field, decode[object](t, w)["field"], field)
	}

	w := api.do(t, http.MethodPost, "/api/v1/places", object{"title": "Loft", "price": "cheap", "latitude": 1, "longitude": 2}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "price", decode[object](t, w)["field"])
}

func TestUserUpdateRestrictions(t *testing.T) {
	api := newTestAPI(t)
	annID, annToken := api.register(t, "Ann", "ann@example.com")
	bobID, _ := api.register(t, "Bob", "bob@example.com")

	w := api.do(t, http.MethodPut, "/api/v1/users/"+annID, object{
		"first_name": "Annie", "email": "hijack@example.com", "is_admin": true, "password": "newpass1",
	}, annToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	user := decode[object](t, w)
	assert.Equal(t, "Annie", user["first_name"])
	assert.Equal(t, "ann@example.com", user["email"])
	assert.Equal(t, false, user["is_admin"])
	assert.NotContains(t, user, "password")

	// a patch reduced to nothing by the restrictions is a no-op
	w = api.do(t, http.MethodPut, "/api/v1/users/"+annID, object{"is_admin": true, "email": "x@example.com"}, annToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, user["updated_at"], decode[object](t, w)["updated_at"])

	w = api.do(t, http.MethodPut, "/api/v1/users/"+bobID, object{"first_name": "Robert"}, annToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(t, http.MethodPut, "/api/v1/users/missing", object{"first_name": "X"}, annToken)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(t, http.MethodPost, "/api/v1/users", object{
		"first_name": "Cat", "last_name": "Lee", "email": "cat@example.com", "password": "secret123",
	}, annToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(t, http.MethodDelete, "/api/v1/users/"+bobID, nil, annToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminPrivilegesAreReadPerRequest(t *testing.T) {
	api := newTestAPI(t)
	adminToken := api.login(t, adminEmail, adminPassword)
	annID, annToken := api.register(t, "Ann", "ann@example.com")

	w := api.do(t, http.MethodPost, "/api/v1/amenities", object{"name": "Hot Tub"}, annToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(t, http.MethodPut, "/api/v1/users/"+annID, object{"is_admin": true}, adminToken)
	require.Equal(t, http.StatusOK, w.Code)

	// the same token now carries admin rights
	w = api.do(t, http.MethodPost, "/api/v1/amenities", object{"name": "Hot Tub"}, annToken)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = api.do(t, http.MethodPut, "/api/v1/users/"+annID, object{"is_admin": false}, adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	w = api.do(t, http.MethodPost, "/api/v1/amenities", object{"name": "Fire Pit"}, annToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminManagesUsersAndAmenities(t *testing.T) {
	api := newTestAPI(t)
	adminToken := api.login(t, adminEmail, adminPassword)

	w := api.do(t, http.MethodPost, "/api/v1/users", object{
		"first_name": "Root", "last_name": "Two", "email": "root2@example.com", "password": "secret123", "is_admin": true,
	}, adminToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, true, decode[object](t, w)["is_admin"])

	w = api.do(t, http.MethodPost, "/api/v1/amenities", object{"name": "WiFi"}, adminToken)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "name", decode[object](t, w)["field"])

	w = api.do(t, http.MethodGet, "/api/v1/amenities", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]object](t, w), 10)

	ownerID, ownerToken := api.register(t, "Olive", "olive@example.com")
	placeID := api.createPlace(t, ownerToken, object{"title": "Loft", "price": 80, "latitude": 1, "longitude": 2})["id"].(string)

	w = api.do(t, http.MethodDelete, "/api/v1/users/"+ownerID, nil, adminToken)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = api.do(t, http.MethodGet, "/api/v1/places/"+placeID, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// tokens of deleted users stop working
	w = api.do(t, http.MethodGet, "/api/v1/auth/protected", nil, ownerToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	api := newTestAPI(t)
	_, token := api.register(t, "Ann", "ann@example.com")

	w := api.do(t, http.MethodGet, "/api/v1/auth/protected", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Hello Ann! This is a protected endpoint.", decode[object](t, w)["message"])

	w = api.do(t, http.MethodPost, "/api/v1/auth/logout", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do(t, http.MethodGet, "/api/v1/auth/protected", nil, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Token has been revoked", decode[object](t, w)["error"])
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "Bea", "bea@example.com")

	w := api.do(t, http.MethodPost, "/api/v1/auth/login", object{"email": "bea@example.com", "password": "secret123"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[object](t, w)
	access := body["access_token"].(string)
	refresh := body["refresh_token"].(string)

	w = api.do(t, http.MethodPost, "/api/v1/auth/logout", nil, access)
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do(t, http.MethodPost, "/api/v1/auth/refresh", object{"refresh_token": refresh}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Token has been revoked", decode[object](t, w)["error"])
}

func TestRefreshIssuesWorkingAccessToken(t *testing.T) {
	api := newTestAPI(t)
	w := api.do(t, http.MethodPost, "/api/v1/auth/login", object{"email": adminEmail, "password": adminPassword}, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[object](t, w)
	refresh := body["refresh_token"].(string)

	// a refresh token is not accepted as a bearer credential
	w = api.do(t, http.MethodGet, "/api/v1/auth/protected", nil, refresh)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(t, http.MethodPost, "/api/v1/auth/refresh", object{"refresh_token": refresh}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	access := decode[object](t, w)["access_token"].(string)

	w = api.do(t, http.MethodGet, "/api/v1/auth/protected", nil, access)
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(t, http.MethodPost, "/api/v1/auth/refresh", object{}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginRateLimit(t *testing.T) {
	api := newTestAPI(t, func(o *apiOptions) {
		o.loginLimit = handlers.LoginRateLimit{Limit: 2, Window: time.Minute}
	})

	for i := 0; i < 2; i++ {
		w := api.do(t, http.MethodPost, "/api/v1/auth/login", object{"email": adminEmail, "password": "nope"}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
	w := api.do(t, http.MethodPost, "/api/v1/auth/login", object{"email": adminEmail, "password": adminPassword}, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestSearchPlaces(t *testing.T) {
	api := newTestAPI(t)
	_, token := api.register(t, "Olive", "olive@example.com")
	api.createPlace(t, token, object{"title": "Beach house", "description": "Sea view", "price": 200, "latitude": 43.7, "longitude": 7.26})
	api.createPlace(t, token, object{"title": "City flat", "price": 90, "latitude": 48.85, "longitude": 2.35})

	w := api.do(t, http.MethodGet, "/api/v1/places/search?max_price=100", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	results := decode[[]object](t, w)
	require.Len(t, results, 1)
	assert.Equal(t, "City flat", results[0]["title"])

	w = api.do(t, http.MethodGet, "/api/v1/places/search?q=beach", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	results = decode[[]object](t, w)
	require.Len(t, results, 1)
	assert.Equal(t, "Beach house", results[0]["title"])

	w = api.do(t, http.MethodGet, "/api/v1/places/search?lat=48.86&lon=2.34&radius_km=10", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	results = decode[[]object](t, w)
	require.Len(t, results, 1)
	assert.Equal(t, "City flat", results[0]["title"])

	w = api.do(t, http.MethodGet, "/api/v1/places/search?radius_km=10", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodGet, "/api/v1/places/search?min_price=abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "min_price", decode[object](t, w)["field"])
}

func TestListPagination(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/api/v1/amenities?limit=3&offset=2", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]object](t, w), 3)

	w = api.do(t, http.MethodGet, "/api/v1/amenities?limit=-1", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
