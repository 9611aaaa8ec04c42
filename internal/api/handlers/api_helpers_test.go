package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hbnb-project/hbnb/backend/internal/adapters/memory"
	"github.com/hbnb-project/hbnb/backend/internal/adapters/security"
	"github.com/hbnb-project/hbnb/backend/internal/api/handlers"
	"github.com/hbnb-project/hbnb/backend/internal/api/routes"
	"github.com/hbnb-project/hbnb/backend/internal/application/services"
)

const (
	adminEmail    = "admin@hbnb.com"
	adminPassword = "admin123"
)

type testAPI struct {
	handler http.Handler
	store   *memory.Store
}

type apiOptions struct {
	loginLimit handlers.LoginRateLimit
}

func newTestAPI(t *testing.T, opts ...func(*apiOptions)) *testAPI {
	t.Helper()
	o := apiOptions{loginLimit: handlers.LoginRateLimit{Limit: 100, Window: time.Minute}}
	for _, fn := range opts {
		fn(&o)
	}

	store := memory.NewStore()
	hasher := security.NewBcryptHasher(4)
	tokens := security.NewJWTProvider("test-secret", time.Hour, 24*time.Hour)

	userService := services.NewUserService(store.Users(), hasher)
	amenityService := services.NewAmenityService(store.Amenities())
	placeService := services.NewPlaceService(store.Places(), store.Users(), store.Amenities(), nil)
	reviewService := services.NewReviewService(store.Reviews(), store.Places(), store.Users())
	authService := services.NewAuthService(store.Users(), userService, hasher, tokens, memory.NewRevocationStore())

	_, err := services.NewSeedService(userService, amenityService).Seed(context.Background(), services.SeedOptions{
		AdminEmail:    adminEmail,
		AdminPassword: adminPassword,
	})
	require.NoError(t, err)

	router := routes.NewRouter(
		routes.Handlers{
			Auth:      handlers.NewAuthHandler(authService, nil, o.loginLimit, nil),
			Users:     handlers.NewUserHandler(userService),
			Amenities: handlers.NewAmenityHandler(amenityService),
			Places:    handlers.NewPlaceHandler(placeService, reviewService),
			Reviews:   handlers.NewReviewHandler(reviewService),
			Health:    handlers.NewHealthHandler("test", nil),
		},
		routes.Repositories{Users: store.Users(), Places: store.Places(), Amenities: store.Amenities()},
		authService,
		[]string{"*"},
		nil,
		nil,
	)
	return &testAPI{handler: router.SetupRoutes(), store: store}
}

func (a *testAPI) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "10.0.0.1:1234"
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

func (a *testAPI) login(t *testing.T, email, password string) string {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": email, "password": password}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[map[string]interface{}](t, w)["access_token"].(string)
}

// register creates a regular user and returns their ID and access token
func (a *testAPI) register(t *testing.T, first, email string) (string, string) {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"first_name": first,
		"last_name":  "Tester",
		"email":      email,
		"password":   "secret123",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode[map[string]interface{}](t, w)
	user := body["user"].(map[string]interface{})
	return user["id"].(string), body["access_token"].(string)
}

func (a *testAPI) createPlace(t *testing.T, token string, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/v1/places", body, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[map[string]interface{}](t, w)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
