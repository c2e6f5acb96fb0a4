package service

import (
	"context"
	"errors"
	"strings"

	"spotbook/internal/database"
	"spotbook/internal/domain"
	"spotbook/internal/events"
	"spotbook/internal/models"

	"github.com/rs/zerolog"
)

// ReviewService owns review CRUD and the rating aggregate. The aggregate is
// recomputed from the stored reviews on every read; it is never cached,
// because the "New" vs numeric-rating distinction depends on exactness.
type ReviewService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewReviewService(repo domain.Repository, eventBus domain.EventPublisher, logger *zerolog.Logger) *ReviewService {
	return &ReviewService{repo: repo, eventBus: eventBus, logger: logger}
}

func validateReviewInput(body string, stars int64) *Error {
	fields := make(map[string]string)
	if strings.TrimSpace(body) == "" {
		fields["body"] = "Review text is required."
	}
	if stars < models.MinStars || stars > models.MaxStars {
		fields["stars"] = "Stars must be an integer from 1 to 5."
	}
	if len(fields) > 0 {
		return InvalidError("Bad Request", fields)
	}
	return nil
}

// CreateReview adds a review for a spot; at most one per (spot, user).
func (s *ReviewService) CreateReview(ctx context.Context, spotID, userID int64, body string, stars int64) (*models.Review, error) {
	if _, err := s.repo.GetSpot(ctx, spotID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, NotFoundError("Spot couldn't be found")
		}
		return nil, InternalError(err)
	}

	if verr := validateReviewInput(body, stars); verr != nil {
		return nil, verr
	}

	review := &models.Review{SpotID: spotID, UserID: userID, Body: body, Stars: stars}
	if err := s.repo.CreateReview(ctx, review); err != nil {
		if errors.Is(err, database.ErrDuplicateReview) {
			return nil, ConflictError("User already has a review for this spot", nil)
		}
		return nil, InternalError(err)
	}

	if s.eventBus != nil {
		payload := events.ReviewEventPayload{
			ReviewID: review.ID,
			SpotID:   review.SpotID,
			UserID:   review.UserID,
			Stars:    review.Stars,
		}
		if err := s.eventBus.PublishJSON(events.EventReviewCreated, payload); err != nil {
			s.logger.Error().Err(err).Int64("review_id", review.ID).Msg("publish event error")
		}
	}

	return review, nil
}

// UpdateReview edits a review; only its author may do this.
func (s *ReviewService) UpdateReview(ctx context.Context, reviewID, requesterID int64, body string, stars int64) (*models.Review, error) {
	review, err := s.getOwnReview(ctx, reviewID, requesterID)
	if err != nil {
		return nil, err
	}

	if verr := validateReviewInput(body, stars); verr != nil {
		return nil, verr
	}

	if err := s.repo.UpdateReview(ctx, reviewID, body, stars); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, NotFoundError("Review couldn't be found")
		}
		return nil, InternalError(err)
	}

	review.Body = body
	review.Stars = stars
	return review, nil
}

// DeleteReview removes a review; only its author may do this.
func (s *ReviewService) DeleteReview(ctx context.Context, reviewID, requesterID int64) error {
	if _, err := s.getOwnReview(ctx, reviewID, requesterID); err != nil {
		return err
	}

	if err := s.repo.DeleteReview(ctx, reviewID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return NotFoundError("Review couldn't be found")
		}
		return InternalError(err)
	}
	return nil
}

// SpotReviews bundles a spot's reviews with the recomputed aggregate.
type SpotReviews struct {
	Reviews   []*models.ReviewWithAuthor
	Aggregate *models.RatingAggregate
}

// ListSpotReviews returns all reviews for a spot plus the aggregate.
func (s *ReviewService) ListSpotReviews(ctx context.Context, spotID int64) (*SpotReviews, error) {
	if _, err := s.repo.GetSpot(ctx, spotID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, NotFoundError("Spot couldn't be found")
		}
		return nil, InternalError(err)
	}

	reviews, err := s.repo.GetSpotReviews(ctx, spotID)
	if err != nil {
		return nil, InternalError(err)
	}

	agg, err := s.Aggregate(ctx, spotID)
	if err != nil {
		return nil, err
	}

	return &SpotReviews{Reviews: reviews, Aggregate: agg}, nil
}

// Aggregate recomputes {numReviews, avgRating} for a spot. AvgRating is nil
// when there are no reviews.
func (s *ReviewService) Aggregate(ctx context.Context, spotID int64) (*models.RatingAggregate, error) {
	agg, err := s.repo.GetRating(ctx, spotID)
	if err != nil {
		return nil, InternalError(err)
	}
	return agg, nil
}

func (s *ReviewService) getOwnReview(ctx context.Context, reviewID, requesterID int64) (*models.Review, error) {
	review, err := s.repo.GetReview(ctx, reviewID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, NotFoundError("Review couldn't be found")
		}
		return nil, InternalError(err)
	}
	if review.UserID != requesterID {
		return nil, ForbiddenError("You are not authorized to modify this review")
	}
	return review, nil
}
