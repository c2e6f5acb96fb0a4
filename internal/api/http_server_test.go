package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"spotbook/internal/config"
	"spotbook/internal/database"
	"spotbook/internal/models"
	"spotbook/internal/repository"
	"spotbook/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	ts          *httptest.Server
	db          *database.DB
	owner       *models.User
	renter      *models.User
	other       *models.User
	ownerToken  string
	renterToken string
	otherToken  string
}

func testConfig() *config.Config {
	return &config.Config{
		Auth:      config.AuthConfig{HeaderSessionToken: "x-session-token", SessionTTLSeconds: 3600},
		Search:    config.SearchConfig{MaxPage: 10, MaxPageSize: 20},
		Countries: []string{"United States", "Canada"},
		HTTP:      config.HTTPConfig{Port: 0},
	}
}

func newTestEnv(t *testing.T, cfg *config.Config) *testEnv {
	logger := zerolog.Nop()
	dbPath := filepath.Join(t.TempDir(), "api_test.db")
	db, err := database.NewDB(dbPath, &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	env := &testEnv{db: db}

	env.owner = &models.User{FirstName: "Olga", LastName: "Owner"}
	env.renter = &models.User{FirstName: "Rita", LastName: "Renter"}
	env.other = &models.User{FirstName: "Oscar", LastName: "Other"}
	for _, u := range []*models.User{env.owner, env.renter, env.other} {
		require.NoError(t, db.CreateUser(ctx, u))
	}

	sessions := repository.NewMemorySessionStore(time.Hour)
	env.ownerToken, env.renterToken, env.otherToken = "owner-token", "renter-token", "other-token"
	require.NoError(t, sessions.Put(ctx, env.ownerToken, env.owner.ID))
	require.NoError(t, sessions.Put(ctx, env.renterToken, env.renter.ID))
	require.NoError(t, sessions.Put(ctx, env.otherToken, env.other.ID))

	listings := service.NewListingService(db, cfg.Search.MaxPage, cfg.Search.MaxPageSize, cfg.Countries, &logger)
	bookings := service.NewBookingService(db, nil, service.SystemClock{}, &logger)
	reviews := service.NewReviewService(db, nil, &logger)

	server := NewHTTPServer(cfg, db, listings, bookings, reviews, sessions, &logger)
	env.ts = httptest.NewServer(server.server.Handler)
	t.Cleanup(env.ts.Close)

	return env
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.ts.URL+path, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("X-Session-Token", token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func (e *testEnv) createSpot(t *testing.T, address string) int64 {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/v1/spots", e.ownerToken, map[string]any{
		"address": address, "city": "San Francisco", "state": "California",
		"country": "United States", "lat": 37.76, "lng": -122.47,
		"name": "Test Spot", "description": "for tests", "price": 100,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var spot models.Spot
	decodeBody(t, resp, &spot)
	return spot.ID
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t, testConfig())

	resp := env.do(t, http.MethodGet, "/healthz", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateSpot_RequiresAuth(t *testing.T) {
	env := newTestEnv(t, testConfig())

	resp := env.do(t, http.MethodPost, "/api/v1/spots", "", map[string]any{})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateSpot_DuplicateAddressConflicts(t *testing.T) {
	env := newTestEnv(t, testConfig())
	env.createSpot(t, "100 Conflict St")

	resp := env.do(t, http.MethodPost, "/api/v1/spots", env.ownerToken, map[string]any{
		"address": "100 Conflict St", "city": "Oakland", "state": "California",
		"country": "United States", "lat": 37.8, "lng": -122.27,
		"name": "Copy", "description": "dup", "price": 90,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var body errorBody
	decodeBody(t, resp, &body)
	assert.Contains(t, body.Errors, "address")
}

func TestSearchSpots_InvalidBoundsFlagBothFields(t *testing.T) {
	env := newTestEnv(t, testConfig())

	resp := env.do(t, http.MethodGet, "/api/v1/spots?minLat=10&maxLat=5", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body errorBody
	decodeBody(t, resp, &body)
	assert.Contains(t, body.Errors, "minLat")
	assert.Contains(t, body.Errors, "maxLat")
}

func TestSearchSpots_PageOutOfRange(t *testing.T) {
	env := newTestEnv(t, testConfig())

	resp := env.do(t, http.MethodGet, "/api/v1/spots?page=11&size=21", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body errorBody
	decodeBody(t, resp, &body)
	assert.Contains(t, body.Errors, "page")
	assert.Contains(t, body.Errors, "size")
}

func TestSearchSpots_ExplicitZeroPagingRejected(t *testing.T) {
	env := newTestEnv(t, testConfig())

	resp := env.do(t, http.MethodGet, "/api/v1/spots?page=0&size=0", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body errorBody
	decodeBody(t, resp, &body)
	assert.Contains(t, body.Errors, "page")
	assert.Contains(t, body.Errors, "size")
}

func TestSearchSpots_EchoesPaging(t *testing.T) {
	env := newTestEnv(t, testConfig())
	env.createSpot(t, "101 Search St")

	resp := env.do(t, http.MethodGet, "/api/v1/spots", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Spots []models.SpotWithRating `json:"spots"`
		Page  int                     `json:"page"`
		Size  int                     `json:"size"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, 1, body.Page)
	assert.Equal(t, 20, body.Size)
	require.Len(t, body.Spots, 1)
	assert.Nil(t, body.Spots[0].AvgRating)
}

func TestSpotDetail(t *testing.T) {
	env := newTestEnv(t, testConfig())
	spotID := env.createSpot(t, "102 Detail St")

	resp := env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/spots/%d", spotID), "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		ID            int64       `json:"id"`
		NumReviews    int64       `json:"numReviews"`
		AvgStarRating *float64    `json:"avgStarRating"`
		Owner         models.User `json:"owner"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, spotID, body.ID)
	assert.Equal(t, int64(0), body.NumReviews)
	assert.Nil(t, body.AvgStarRating)
	assert.Equal(t, "Olga", body.Owner.FirstName)
}

func TestSpotDetail_Unknown(t *testing.T) {
	env := newTestEnv(t, testConfig())

	resp := env.do(t, http.MethodGet, "/api/v1/spots/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body errorBody
	decodeBody(t, resp, &body)
	assert.Equal(t, "Spot couldn't be found", body.Message)
}

func TestCreateBooking_OwnSpotForbidden(t *testing.T) {
	env := newTestEnv(t, testConfig())
	spotID := env.createSpot(t, "103 Own St")

	resp := env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/spots/%d/bookings", spotID), env.ownerToken,
		bookingRequest{StartDate: "2030-01-01", EndDate: "2030-01-05"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var body errorBody
	decodeBody(t, resp, &body)
	assert.Equal(t, "You are not authorized to create a booking for your own spot", body.Message)
}

func TestCreateBooking_DatesAreCalendarDays(t *testing.T) {
	env := newTestEnv(t, testConfig())
	spotID := env.createSpot(t, "104 Wire St")

	resp := env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/spots/%d/bookings", spotID), env.renterToken,
		bookingRequest{StartDate: "2030-01-01", EndDate: "2030-01-05"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var body bookingView
	decodeBody(t, resp, &body)
	assert.Equal(t, "2030-01-01", body.StartDate)
	assert.Equal(t, "2030-01-05", body.EndDate)
	assert.Equal(t, env.renter.ID, body.UserID)
}

func TestCreateBooking_OverlapAnswers403(t *testing.T) {
	env := newTestEnv(t, testConfig())
	spotID := env.createSpot(t, "105 Clash St")

	resp := env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/spots/%d/bookings", spotID), env.renterToken,
		bookingRequest{StartDate: "2030-02-05", EndDate: "2030-02-10"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/spots/%d/bookings", spotID), env.otherToken,
		bookingRequest{StartDate: "2030-02-01", EndDate: "2030-02-06"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var body errorBody
	decodeBody(t, resp, &body)
	assert.Equal(t, "Sorry, this spot is already booked for the specified dates", body.Message)
	assert.Contains(t, body.Errors, "startDate")
	assert.Contains(t, body.Errors, "endDate")
}

func TestCreateBooking_BackToBackAllowed(t *testing.T) {
	env := newTestEnv(t, testConfig())
	spotID := env.createSpot(t, "106 Seam St")

	resp := env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/spots/%d/bookings", spotID), env.renterToken,
		bookingRequest{StartDate: "2030-03-01", EndDate: "2030-03-05"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/spots/%d/bookings", spotID), env.otherToken,
		bookingRequest{StartDate: "2030-03-05", EndDate: "2030-03-08"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestCreateBooking_MalformedDates(t *testing.T) {
	env := newTestEnv(t, testConfig())
	spotID := env.createSpot(t, "107 Garbage St")

	resp := env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/spots/%d/bookings", spotID), env.renterToken,
		bookingRequest{StartDate: "not-a-date", EndDate: "2030-01-05"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body errorBody
	decodeBody(t, resp, &body)
	assert.Contains(t, body.Errors, "startDate")
}

func TestListSpotBookings_OwnerVsRenterView(t *testing.T) {
	env := newTestEnv(t, testConfig())
	spotID := env.createSpot(t, "108 Privacy St")

	resp := env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/spots/%d/bookings", spotID), env.renterToken,
		bookingRequest{StartDate: "2030-04-01", EndDate: "2030-04-05"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// Owner sees renter identity.
	resp = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/spots/%d/bookings", spotID), env.ownerToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var ownerView struct {
		Bookings []bookingWithRenterView `json:"bookings"`
	}
	decodeBody(t, resp, &ownerView)
	require.Len(t, ownerView.Bookings, 1)
	assert.Equal(t, "Rita", ownerView.Bookings[0].Renter.FirstName)

	// Anyone else sees date windows only.
	resp = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/spots/%d/bookings", spotID), env.otherToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var otherView struct {
		Bookings []map[string]any `json:"bookings"`
	}
	decodeBody(t, resp, &otherView)
	require.Len(t, otherView.Bookings, 1)
	assert.NotContains(t, otherView.Bookings[0], "userId")
	assert.NotContains(t, otherView.Bookings[0], "renter")
	assert.Equal(t, "2030-04-01", otherView.Bookings[0]["startDate"])
}

func TestCancelBooking_TwiceAnswers404(t *testing.T) {
	env := newTestEnv(t, testConfig())
	spotID := env.createSpot(t, "109 Cancel St")

	resp := env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/spots/%d/bookings", spotID), env.renterToken,
		bookingRequest{StartDate: "2030-05-01", EndDate: "2030-05-05"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var booking bookingView
	decodeBody(t, resp, &booking)

	resp = env.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/bookings/%d", booking.ID), env.renterToken, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/bookings/%d", booking.ID), env.renterToken, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMyBookings_JoinsSpot(t *testing.T) {
	env := newTestEnv(t, testConfig())
	spotID := env.createSpot(t, "110 Mine St")

	resp := env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/spots/%d/bookings", spotID), env.renterToken,
		bookingRequest{StartDate: "2030-06-01", EndDate: "2030-06-05"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/api/v1/bookings/current", env.renterToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Bookings []map[string]any `json:"bookings"`
	}
	decodeBody(t, resp, &body)
	require.Len(t, body.Bookings, 1)

	spot, ok := body.Bookings[0]["spot"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "110 Mine St", spot["address"])
	// The snapshot is the spot's public fields only, no rating aggregate.
	assert.NotContains(t, spot, "avgRating")
	assert.NotContains(t, spot, "numReviews")
}

func TestReviews_CreateListAndDuplicate(t *testing.T) {
	env := newTestEnv(t, testConfig())
	spotID := env.createSpot(t, "111 Review St")

	resp := env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/spots/%d/reviews", spotID), env.renterToken,
		map[string]any{"review": "Lovely stay", "stars": 4})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/spots/%d/reviews", spotID), env.renterToken,
		map[string]any{"review": "Again", "stars": 5})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var dup errorBody
	decodeBody(t, resp, &dup)
	assert.Equal(t, "User already has a review for this spot", dup.Message)

	resp = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/spots/%d/reviews", spotID), "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var list struct {
		Reviews    []models.ReviewWithAuthor `json:"reviews"`
		NumReviews int64                     `json:"numReviews"`
		AvgRating  *float64                  `json:"avgRating"`
	}
	decodeBody(t, resp, &list)
	require.Len(t, list.Reviews, 1)
	assert.Equal(t, int64(1), list.NumReviews)
	require.NotNil(t, list.AvgRating)
	assert.Equal(t, 4.0, *list.AvgRating)
}

func TestReviews_InvalidStars(t *testing.T) {
	env := newTestEnv(t, testConfig())
	spotID := env.createSpot(t, "112 Stars St")

	resp := env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/spots/%d/reviews", spotID), env.renterToken,
		map[string]any{"review": "", "stars": 9})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body errorBody
	decodeBody(t, resp, &body)
	assert.Contains(t, body.Errors, "body")
	assert.Contains(t, body.Errors, "stars")
}

func TestUpdateReview_OnlyAuthor(t *testing.T) {
	env := newTestEnv(t, testConfig())
	spotID := env.createSpot(t, "113 Author St")

	resp := env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/spots/%d/reviews", spotID), env.renterToken,
		map[string]any{"review": "Mine", "stars": 3})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var review models.Review
	decodeBody(t, resp, &review)

	resp = env.do(t, http.MethodPut, fmt.Sprintf("/api/v1/reviews/%d", review.ID), env.otherToken,
		map[string]any{"review": "Hijacked", "stars": 1})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestDeleteSpot_CascadesOverHTTP(t *testing.T) {
	env := newTestEnv(t, testConfig())
	spotID := env.createSpot(t, "114 Doomed St")

	resp := env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/spots/%d/bookings", spotID), env.renterToken,
		bookingRequest{StartDate: "2030-07-01", EndDate: "2030-07-05"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/spots/%d", spotID), env.ownerToken, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/v1/bookings/current", env.renterToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Bookings []bookingWithSpotView `json:"bookings"`
	}
	decodeBody(t, resp, &body)
	assert.Empty(t, body.Bookings)
}

func TestOwnedSpots(t *testing.T) {
	env := newTestEnv(t, testConfig())
	env.createSpot(t, "115 Mine St")
	env.createSpot(t, "116 Mine Too St")

	resp := env.do(t, http.MethodGet, "/api/v1/spots/current", env.ownerToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Spots []models.SpotWithRating `json:"spots"`
	}
	decodeBody(t, resp, &body)
	assert.Len(t, body.Spots, 2)

	resp = env.do(t, http.MethodGet, "/api/v1/spots/current", env.renterToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &body)
	assert.Empty(t, body.Spots)
}

func TestExportSchedule_OwnerOnly(t *testing.T) {
	env := newTestEnv(t, testConfig())
	spotID := env.createSpot(t, "117 Export St")

	resp := env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/spots/%d/bookings", spotID), env.renterToken,
		bookingRequest{StartDate: "2030-08-01", EndDate: "2030-08-05"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/spots/%d/bookings/export", spotID), env.ownerToken, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		resp.Header.Get("Content-Type"))

	resp2 := env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/spots/%d/bookings/export", spotID), env.renterToken, nil)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp2.StatusCode)
}

func TestAddSpotImage(t *testing.T) {
	env := newTestEnv(t, testConfig())
	spotID := env.createSpot(t, "118 Image St")

	resp := env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/spots/%d/images", spotID), env.ownerToken,
		map[string]any{"url": "https://img.example/front.jpg", "preview": true})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var image models.SpotImage
	decodeBody(t, resp, &image)
	assert.Equal(t, spotID, image.SpotID)
	assert.True(t, image.Preview)

	resp = env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/spots/%d/images", spotID), env.renterToken,
		map[string]any{"url": "https://img.example/sneaky.jpg"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestDeleteSpotImage_OwnerOnly(t *testing.T) {
	env := newTestEnv(t, testConfig())
	spotID := env.createSpot(t, "119 Gallery St")

	resp := env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/spots/%d/images", spotID), env.ownerToken,
		map[string]any{"url": "https://img.example/gone.jpg", "preview": true})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var image models.SpotImage
	decodeBody(t, resp, &image)

	resp = env.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/spots/%d/images/%d", spotID, image.ID), env.renterToken, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/spots/%d/images/%d", spotID, image.ID), env.ownerToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Message string `json:"message"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, "Successfully deleted", body.Message)

	resp = env.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/spots/%d/images/%d", spotID, image.ID), env.ownerToken, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{RPS: 0.001, Burst: 2}
	env := newTestEnv(t, cfg)

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp := env.do(t, http.MethodGet, "/api/v1/spots", env.renterToken, nil)
		statuses = append(statuses, resp.StatusCode)
		resp.Body.Close()
	}
	assert.Equal(t, http.StatusOK, statuses[0])
	assert.Equal(t, http.StatusOK, statuses[1])
	assert.Equal(t, http.StatusTooManyRequests, statuses[2])
}
