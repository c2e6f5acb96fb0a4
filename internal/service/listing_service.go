package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"spotbook/internal/database"
	"spotbook/internal/domain"
	"spotbook/internal/models"

	"github.com/rs/zerolog"
)

// ListingService is the listing query engine: filtered, paginated search over
// spots plus the owner-side spot CRUD.
type ListingService struct {
	repo        domain.Repository
	maxPage     int
	maxPageSize int
	countries   []string
	logger      *zerolog.Logger
}

func NewListingService(repo domain.Repository, maxPage, maxPageSize int, countries []string, logger *zerolog.Logger) *ListingService {
	if maxPage <= 0 {
		maxPage = models.MaxPage
	}
	if maxPageSize <= 0 {
		maxPageSize = models.MaxPageSize
	}
	return &ListingService{
		repo:        repo,
		maxPage:     maxPage,
		maxPageSize: maxPageSize,
		countries:   countries,
		logger:      logger,
	}
}

// ValidateFilter applies the paging and bound rules, collecting every
// offending field so the caller sees them all at once. Only absent paging is
// defaulted; an explicit page=0 or size=0 is rejected like any other value
// outside the caps.
func (s *ListingService) ValidateFilter(filter *models.SearchFilter) *Error {
	fields := make(map[string]string)
	if filter.Page == nil {
		page := models.DefaultPage
		filter.Page = &page
	} else if *filter.Page < 1 || *filter.Page > s.maxPage {
		fields["page"] = fmt.Sprintf("page must be between 1 and %d", s.maxPage)
	}
	if filter.Size == nil {
		size := models.DefaultPageSize
		filter.Size = &size
	} else if *filter.Size < 1 || *filter.Size > s.maxPageSize {
		fields["size"] = fmt.Sprintf("size must be between 1 and %d", s.maxPageSize)
	}
	if filter.MinLat != nil && filter.MaxLat != nil && *filter.MinLat > *filter.MaxLat {
		fields["minLat"] = "minLat cannot be greater than maxLat"
		fields["maxLat"] = "maxLat cannot be less than minLat"
	}
	if filter.MinLng != nil && filter.MaxLng != nil && *filter.MinLng > *filter.MaxLng {
		fields["minLng"] = "minLng cannot be greater than maxLng"
		fields["maxLng"] = "maxLng cannot be less than minLng"
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		fields["minPrice"] = "minPrice cannot be greater than maxPrice"
		fields["maxPrice"] = "maxPrice cannot be less than minPrice"
	}
	if filter.MinPrice != nil && *filter.MinPrice < 0 {
		fields["minPrice"] = "minPrice must not be negative"
	}
	if filter.MaxPrice != nil && *filter.MaxPrice < 0 {
		fields["maxPrice"] = "maxPrice must not be negative"
	}

	if len(fields) > 0 {
		return InvalidError("Bad Request", fields)
	}
	return nil
}

// Search returns one page of spots matching the filter, each with its
// recomputed rating aggregate and preview image reference.
func (s *ListingService) Search(ctx context.Context, filter models.SearchFilter) (*models.SpotPage, error) {
	if verr := s.ValidateFilter(&filter); verr != nil {
		return nil, verr
	}

	spots, err := s.repo.SearchSpots(ctx, filter)
	if err != nil {
		return nil, InternalError(err)
	}

	return &models.SpotPage{
		Spots: derefSpots(spots),
		Page:  *filter.Page,
		Size:  *filter.Size,
	}, nil
}

// GetSpotDetail fetches one spot with its images, the owner's public profile
// and the review aggregate.
func (s *ListingService) GetSpotDetail(ctx context.Context, spotID int64) (*models.SpotDetail, error) {
	spot, err := s.repo.GetSpot(ctx, spotID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, NotFoundError("Spot couldn't be found")
		}
		return nil, InternalError(err)
	}

	images, err := s.repo.GetSpotImages(ctx, spotID)
	if err != nil {
		return nil, InternalError(err)
	}

	owner, err := s.repo.GetUserByID(ctx, spot.OwnerID)
	if err != nil {
		return nil, InternalError(err)
	}

	rating, err := s.repo.GetRating(ctx, spotID)
	if err != nil {
		return nil, InternalError(err)
	}

	return &models.SpotDetail{
		Spot:          *spot,
		NumReviews:    rating.NumReviews,
		AvgStarRating: rating.AvgRating,
		Images:        images,
		Owner:         models.User{ID: owner.ID, FirstName: owner.FirstName, LastName: owner.LastName},
	}, nil
}

// ListOwnedSpots returns every spot owned by ownerID with ratings,
// unpaginated.
func (s *ListingService) ListOwnedSpots(ctx context.Context, ownerID int64) ([]models.SpotWithRating, error) {
	spots, err := s.repo.GetOwnerSpots(ctx, ownerID)
	if err != nil {
		return nil, InternalError(err)
	}
	return derefSpots(spots), nil
}

// SpotInput carries the owner-supplied fields of a spot create or edit.
type SpotInput struct {
	Address     string
	City        string
	State       string
	Country     string
	Lat         float64
	Lng         float64
	Name        string
	Description string
	Price       float64
}

func (s *ListingService) validateSpotInput(in SpotInput) *Error {
	fields := make(map[string]string)
	if strings.TrimSpace(in.Address) == "" {
		fields["address"] = "Street address is required."
	}
	if strings.TrimSpace(in.City) == "" {
		fields["city"] = "City is required."
	}
	if strings.TrimSpace(in.State) == "" {
		fields["state"] = "State is required."
	}
	if strings.TrimSpace(in.Country) == "" {
		fields["country"] = "Country is required."
	} else if len(s.countries) > 0 && !containsFold(s.countries, in.Country) {
		fields["country"] = "Country is not supported."
	}
	if in.Lat < -90 || in.Lat > 90 {
		fields["lat"] = "Latitude is not valid."
	}
	if in.Lng < -180 || in.Lng > 180 {
		fields["lng"] = "Longitude is not valid."
	}
	if strings.TrimSpace(in.Name) == "" {
		fields["name"] = "Name is required."
	} else if len(in.Name) > models.MaxSpotNameLen {
		fields["name"] = "Name must be less than 50 characters."
	}
	if strings.TrimSpace(in.Description) == "" {
		fields["description"] = "Description is required."
	}
	if in.Price <= 0 {
		fields["price"] = "Price per night must be a positive number."
	}

	if len(fields) > 0 {
		return InvalidError("Bad Request", fields)
	}
	return nil
}

// CreateSpot creates a listing owned by ownerID.
func (s *ListingService) CreateSpot(ctx context.Context, ownerID int64, in SpotInput) (*models.Spot, error) {
	if verr := s.validateSpotInput(in); verr != nil {
		return nil, verr
	}

	spot := &models.Spot{
		OwnerID:     ownerID,
		Address:     in.Address,
		City:        in.City,
		State:       in.State,
		Country:     in.Country,
		Lat:         in.Lat,
		Lng:         in.Lng,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
	}
	if err := s.repo.CreateSpot(ctx, spot); err != nil {
		if errors.Is(err, database.ErrDuplicateAddress) {
			return nil, ConflictError("Spot with this address already exists", map[string]string{
				"address": "address must be unique",
			})
		}
		return nil, InternalError(err)
	}
	return spot, nil
}

// UpdateSpot edits a listing; only the owner may do this.
func (s *ListingService) UpdateSpot(ctx context.Context, spotID, requesterID int64, in SpotInput) (*models.Spot, error) {
	spot, err := s.getOwnedSpot(ctx, spotID, requesterID, "You don't have permission to edit this spot")
	if err != nil {
		return nil, err
	}

	if verr := s.validateSpotInput(in); verr != nil {
		return nil, verr
	}

	spot.Address = in.Address
	spot.City = in.City
	spot.State = in.State
	spot.Country = in.Country
	spot.Lat = in.Lat
	spot.Lng = in.Lng
	spot.Name = in.Name
	spot.Description = in.Description
	spot.Price = in.Price

	if err := s.repo.UpdateSpot(ctx, spot); err != nil {
		if errors.Is(err, database.ErrDuplicateAddress) {
			return nil, ConflictError("Spot with this address already exists", map[string]string{
				"address": "address must be unique",
			})
		}
		return nil, InternalError(err)
	}
	return spot, nil
}

// DeleteSpot removes a listing and, in the same transaction, its bookings,
// reviews and images.
func (s *ListingService) DeleteSpot(ctx context.Context, spotID, requesterID int64) error {
	if _, err := s.getOwnedSpot(ctx, spotID, requesterID, "You don't have permission to delete this spot"); err != nil {
		return err
	}

	if err := s.repo.DeleteSpotCascade(ctx, spotID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return NotFoundError("Spot couldn't be found")
		}
		return InternalError(err)
	}
	return nil
}

// AddSpotImage attaches an image reference to an owned spot.
func (s *ListingService) AddSpotImage(ctx context.Context, spotID, requesterID int64, url string, preview bool) (*models.SpotImage, error) {
	if _, err := s.getOwnedSpot(ctx, spotID, requesterID, "You don't have permission to add an image to this spot"); err != nil {
		return nil, err
	}

	if strings.TrimSpace(url) == "" {
		return nil, InvalidError("Bad Request", map[string]string{"url": "Image url is required."})
	}

	image := &models.SpotImage{SpotID: spotID, URL: url, Preview: preview}
	if err := s.repo.AddSpotImage(ctx, image); err != nil {
		return nil, InternalError(err)
	}
	return image, nil
}

// DeleteSpotImage removes an image reference from an owned spot.
func (s *ListingService) DeleteSpotImage(ctx context.Context, spotID, imageID, requesterID int64) error {
	if _, err := s.getOwnedSpot(ctx, spotID, requesterID, "You don't have permission to delete this spot's images"); err != nil {
		return err
	}

	if err := s.repo.DeleteSpotImage(ctx, imageID, spotID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return NotFoundError("Spot Image couldn't be found")
		}
		return InternalError(err)
	}
	return nil
}

func (s *ListingService) getOwnedSpot(ctx context.Context, spotID, requesterID int64, forbiddenMsg string) (*models.Spot, error) {
	spot, err := s.repo.GetSpot(ctx, spotID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, NotFoundError("Spot couldn't be found")
		}
		return nil, InternalError(err)
	}
	if spot.OwnerID != requesterID {
		return nil, ForbiddenError(forbiddenMsg)
	}
	return spot, nil
}

func derefSpots(spots []*models.SpotWithRating) []models.SpotWithRating {
	out := make([]models.SpotWithRating, 0, len(spots))
	for _, s := range spots {
		out = append(out, *s)
	}
	return out
}

func containsFold(haystack []string, needle string) bool {
	for _, h := range haystack {
		if strings.EqualFold(h, needle) {
			return true
		}
	}
	return false
}
