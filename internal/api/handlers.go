package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"spotbook/internal/export"
	"spotbook/internal/metrics"
	"spotbook/internal/models"
	"spotbook/internal/service"
)

const spotsPrefix = "/api/v1/spots/"

func (s *HTTPServer) handleSpots(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.searchSpots(w, r)
	case http.MethodPost:
		s.createSpot(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
	}
}

func (s *HTTPServer) searchSpots(w http.ResponseWriter, r *http.Request) {
	filter, ok := parseSearchFilter(w, r)
	if !ok {
		return
	}

	page, err := s.listings.Search(r.Context(), *filter)
	if err != nil {
		writeServiceError(w, &s.logger, err, http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// parseSearchFilter reads the paging and bound query parameters, collecting
// every malformed one before failing.
func parseSearchFilter(w http.ResponseWriter, r *http.Request) (*models.SearchFilter, bool) {
	q := r.URL.Query()
	fields := make(map[string]string)

	var filter models.SearchFilter
	filter.Page = parseIntParam(q.Get("page"), "page", fields)
	filter.Size = parseIntParam(q.Get("size"), "size", fields)
	filter.MinLat = parseFloatParam(q.Get("minLat"), "minLat", fields)
	filter.MaxLat = parseFloatParam(q.Get("maxLat"), "maxLat", fields)
	filter.MinLng = parseFloatParam(q.Get("minLng"), "minLng", fields)
	filter.MaxLng = parseFloatParam(q.Get("maxLng"), "maxLng", fields)
	filter.MinPrice = parseFloatParam(q.Get("minPrice"), "minPrice", fields)
	filter.MaxPrice = parseFloatParam(q.Get("maxPrice"), "maxPrice", fields)

	if len(fields) > 0 {
		writeError(w, http.StatusBadRequest, "Bad Request", fields)
		return nil, false
	}
	return &filter, true
}

// parseIntParam keeps absence distinct from an explicit value: nil means the
// parameter was not supplied at all.
func parseIntParam(raw, name string, fields map[string]string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		fields[name] = name + " must be an integer"
		return nil
	}
	return &v
}

func parseFloatParam(raw, name string, fields map[string]string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		fields[name] = name + " must be a number"
		return nil
	}
	return &v
}

// spotRequest carries the owner-supplied listing fields.
type spotRequest struct {
	Address     string  `json:"address"`
	City        string  `json:"city"`
	State       string  `json:"state"`
	Country     string  `json:"country"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

func (req spotRequest) input() service.SpotInput {
	return service.SpotInput{
		Address:     req.Address,
		City:        req.City,
		State:       req.State,
		Country:     req.Country,
		Lat:         req.Lat,
		Lng:         req.Lng,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
	}
}

func (s *HTTPServer) createSpot(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.auth.Require(w, r)
	if !ok {
		return
	}

	var req spotRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	spot, err := s.listings.CreateSpot(r.Context(), userID, req.input())
	if err != nil {
		writeServiceError(w, &s.logger, err, http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusCreated, spot)
}

func (s *HTTPServer) handleOwnedSpots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}
	userID, ok := s.auth.Require(w, r)
	if !ok {
		return
	}

	spots, err := s.listings.ListOwnedSpots(r.Context(), userID)
	if err != nil {
		writeServiceError(w, &s.logger, err, http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"spots": spots})
}

func (s *HTTPServer) handleSpotSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, spotsPrefix), "/")
	parts := strings.Split(rest, "/")

	spotID, ok := pathID(w, parts[0], "Spot couldn't be found")
	if !ok {
		return
	}

	switch {
	case len(parts) == 1:
		s.handleSpotByID(w, r, spotID)
	case len(parts) == 2 && parts[1] == "images":
		s.addSpotImage(w, r, spotID)
	case len(parts) == 3 && parts[1] == "images":
		s.deleteSpotImage(w, r, spotID, parts[2])
	case len(parts) == 2 && parts[1] == "bookings":
		s.handleSpotBookings(w, r, spotID)
	case len(parts) == 3 && parts[1] == "bookings" && parts[2] == "export":
		s.exportSpotSchedule(w, r, spotID)
	case len(parts) == 2 && parts[1] == "reviews":
		s.handleSpotReviews(w, r, spotID)
	default:
		writeError(w, http.StatusNotFound, "not found", nil)
	}
}

func (s *HTTPServer) handleSpotByID(w http.ResponseWriter, r *http.Request, spotID int64) {
	switch r.Method {
	case http.MethodGet:
		detail, err := s.listings.GetSpotDetail(r.Context(), spotID)
		if err != nil {
			writeServiceError(w, &s.logger, err, http.StatusConflict)
			return
		}
		writeJSON(w, http.StatusOK, detail)

	case http.MethodPut:
		userID, ok := s.auth.Require(w, r)
		if !ok {
			return
		}
		var req spotRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		spot, err := s.listings.UpdateSpot(r.Context(), spotID, userID, req.input())
		if err != nil {
			writeServiceError(w, &s.logger, err, http.StatusConflict)
			return
		}
		writeJSON(w, http.StatusOK, spot)

	case http.MethodDelete:
		userID, ok := s.auth.Require(w, r)
		if !ok {
			return
		}
		if err := s.listings.DeleteSpot(r.Context(), spotID, userID); err != nil {
			writeServiceError(w, &s.logger, err, http.StatusConflict)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Successfully deleted"})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
	}
}

func (s *HTTPServer) addSpotImage(w http.ResponseWriter, r *http.Request, spotID int64) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}
	userID, ok := s.auth.Require(w, r)
	if !ok {
		return
	}

	var req struct {
		URL     string `json:"url"`
		Preview bool   `json:"preview"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	image, err := s.listings.AddSpotImage(r.Context(), spotID, userID, req.URL, req.Preview)
	if err != nil {
		writeServiceError(w, &s.logger, err, http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusCreated, image)
}

func (s *HTTPServer) deleteSpotImage(w http.ResponseWriter, r *http.Request, spotID int64, rawImageID string) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}
	imageID, ok := pathID(w, rawImageID, "Spot Image couldn't be found")
	if !ok {
		return
	}
	userID, ok := s.auth.Require(w, r)
	if !ok {
		return
	}

	if err := s.listings.DeleteSpotImage(r.Context(), spotID, imageID, userID); err != nil {
		writeServiceError(w, &s.logger, err, http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Successfully deleted"})
}

// bookingRequest carries the wire form of a booking's date range.
type bookingRequest struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

func (req bookingRequest) dates(w http.ResponseWriter) (start, end time.Time, ok bool) {
	fields := make(map[string]string)
	start, err := models.ParseDate(strings.TrimSpace(req.StartDate))
	if err != nil {
		fields["startDate"] = "startDate must be a valid date (YYYY-MM-DD)"
	}
	end, err = models.ParseDate(strings.TrimSpace(req.EndDate))
	if err != nil {
		fields["endDate"] = "endDate must be a valid date (YYYY-MM-DD)"
	}
	if len(fields) > 0 {
		writeError(w, http.StatusBadRequest, "Bad Request", fields)
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func (s *HTTPServer) handleSpotBookings(w http.ResponseWriter, r *http.Request, spotID int64) {
	switch r.Method {
	case http.MethodGet:
		userID, ok := s.auth.Require(w, r)
		if !ok {
			return
		}
		sb, err := s.bookings.ListSpotBookings(r.Context(), spotID, userID)
		if err != nil {
			writeServiceError(w, &s.logger, err, http.StatusForbidden)
			return
		}
		if sb.Full != nil {
			writeJSON(w, http.StatusOK, map[string]any{"bookings": newBookingWithRenterViews(sb.Full)})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"bookings": newBookingWindowViews(sb.Windows)})

	case http.MethodPost:
		userID, ok := s.auth.Require(w, r)
		if !ok {
			return
		}
		var req bookingRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		start, end, ok := req.dates(w)
		if !ok {
			return
		}

		booking, err := s.bookings.CreateBooking(r.Context(), spotID, userID, start, end)
		if err != nil {
			if service.KindOf(err) == service.KindConflict {
				metrics.IncBookingConflict()
			}
			writeServiceError(w, &s.logger, err, http.StatusForbidden)
			return
		}
		writeJSON(w, http.StatusCreated, newBookingView(booking))

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
	}
}

func (s *HTTPServer) exportSpotSchedule(w http.ResponseWriter, r *http.Request, spotID int64) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}
	userID, ok := s.auth.Require(w, r)
	if !ok {
		return
	}

	detail, err := s.listings.GetSpotDetail(r.Context(), spotID)
	if err != nil {
		writeServiceError(w, &s.logger, err, http.StatusConflict)
		return
	}
	if detail.OwnerID != userID {
		writeError(w, http.StatusForbidden, "You don't have permission to export this spot's schedule", nil)
		return
	}

	sb, err := s.bookings.ListSpotBookings(r.Context(), spotID, userID)
	if err != nil {
		writeServiceError(w, &s.logger, err, http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename="+export.FileName(spotID))
	if err := export.WriteSpotSchedule(w, &detail.Spot, sb.Full); err != nil {
		s.logger.Error().Err(err).Int64("spot_id", spotID).Msg("failed to write schedule export")
	}
}

func (s *HTTPServer) handleMyBookings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}
	userID, ok := s.auth.Require(w, r)
	if !ok {
		return
	}

	bookings, err := s.bookings.ListUserBookings(r.Context(), userID)
	if err != nil {
		writeServiceError(w, &s.logger, err, http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": newBookingWithSpotViews(bookings)})
}

func (s *HTTPServer) handleBookingByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/bookings/"), "/")
	if strings.Contains(rest, "/") {
		writeError(w, http.StatusNotFound, "not found", nil)
		return
	}
	bookingID, ok := pathID(w, rest, "Booking couldn't be found")
	if !ok {
		return
	}

	userID, ok := s.auth.Require(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req bookingRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		start, end, ok := req.dates(w)
		if !ok {
			return
		}

		booking, err := s.bookings.UpdateBooking(r.Context(), bookingID, userID, start, end)
		if err != nil {
			if service.KindOf(err) == service.KindConflict {
				metrics.IncBookingConflict()
			}
			writeServiceError(w, &s.logger, err, http.StatusForbidden)
			return
		}
		writeJSON(w, http.StatusOK, newBookingView(booking))

	case http.MethodDelete:
		if err := s.bookings.CancelBooking(r.Context(), bookingID, userID); err != nil {
			writeServiceError(w, &s.logger, err, http.StatusForbidden)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Successfully deleted"})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
	}
}

func (s *HTTPServer) handleSpotReviews(w http.ResponseWriter, r *http.Request, spotID int64) {
	switch r.Method {
	case http.MethodGet:
		sr, err := s.reviews.ListSpotReviews(r.Context(), spotID)
		if err != nil {
			writeServiceError(w, &s.logger, err, http.StatusConflict)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"reviews":    sr.Reviews,
			"numReviews": sr.Aggregate.NumReviews,
			"avgRating":  sr.Aggregate.AvgRating,
		})

	case http.MethodPost:
		userID, ok := s.auth.Require(w, r)
		if !ok {
			return
		}
		var req struct {
			Review string `json:"review"`
			Stars  int64  `json:"stars"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}

		review, err := s.reviews.CreateReview(r.Context(), spotID, userID, req.Review, req.Stars)
		if err != nil {
			writeServiceError(w, &s.logger, err, http.StatusConflict)
			return
		}
		writeJSON(w, http.StatusCreated, review)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
	}
}

func (s *HTTPServer) handleReviewByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/reviews/"), "/")
	if strings.Contains(rest, "/") {
		writeError(w, http.StatusNotFound, "not found", nil)
		return
	}
	reviewID, ok := pathID(w, rest, "Review couldn't be found")
	if !ok {
		return
	}

	userID, ok := s.auth.Require(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req struct {
			Review string `json:"review"`
			Stars  int64  `json:"stars"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		review, err := s.reviews.UpdateReview(r.Context(), reviewID, userID, req.Review, req.Stars)
		if err != nil {
			writeServiceError(w, &s.logger, err, http.StatusConflict)
			return
		}
		writeJSON(w, http.StatusOK, review)

	case http.MethodDelete:
		if err := s.reviews.DeleteReview(r.Context(), reviewID, userID); err != nil {
			writeServiceError(w, &s.logger, err, http.StatusConflict)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Successfully deleted"})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
	}
}
