package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"spotbook/internal/models"
)

func (db *DB) CreateReview(ctx context.Context, review *models.Review) error {
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx,
		`INSERT INTO reviews (spot_id, user_id, body, stars, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		review.SpotID, review.UserID, review.Body, review.Stars, now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateReview
		}
		return fmt.Errorf("failed to create review: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	review.ID = id
	review.CreatedAt = now
	review.UpdatedAt = now
	return nil
}

func (db *DB) GetReview(ctx context.Context, id int64) (*models.Review, error) {
	r := &models.Review{}
	err := db.QueryRowContext(ctx,
		`SELECT id, spot_id, user_id, body, stars, created_at, updated_at
         FROM reviews WHERE id = ?`, id).Scan(
		&r.ID, &r.SpotID, &r.UserID, &r.Body, &r.Stars, &r.CreatedAt, &r.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("review %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return r, nil
}

func (db *DB) UpdateReview(ctx context.Context, id int64, body string, stars int64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE reviews SET body = ?, stars = ?, updated_at = ? WHERE id = ?`,
		body, stars, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("review %d: %w", id, ErrNotFound)
	}
	return nil
}

func (db *DB) DeleteReview(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("review %d: %w", id, ErrNotFound)
	}
	return nil
}

// GetSpotReviews returns all reviews for a spot with the author's public
// fields joined in, newest first.
func (db *DB) GetSpotReviews(ctx context.Context, spotID int64) ([]*models.ReviewWithAuthor, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT r.id, r.spot_id, r.user_id, r.body, r.stars, r.created_at, r.updated_at,
                u.id, u.first_name, u.last_name
         FROM reviews r
         JOIN users u ON u.id = r.user_id
         WHERE r.spot_id = ?
         ORDER BY r.created_at DESC, r.id DESC`, spotID)
	if err != nil {
		return nil, fmt.Errorf("failed to get spot reviews: %w", err)
	}
	defer rows.Close()

	var reviews []*models.ReviewWithAuthor
	for rows.Next() {
		r := &models.ReviewWithAuthor{}
		err := rows.Scan(
			&r.ID, &r.SpotID, &r.UserID, &r.Body, &r.Stars, &r.CreatedAt, &r.UpdatedAt,
			&r.Author.ID, &r.Author.FirstName, &r.Author.LastName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

// GetRating recomputes the aggregate from the review set. AvgRating stays nil
// when no reviews exist so a missing rating is distinguishable from zero.
func (db *DB) GetRating(ctx context.Context, spotID int64) (*models.RatingAggregate, error) {
	var count int64
	var avg sql.NullFloat64
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*), AVG(stars) FROM reviews WHERE spot_id = ?`, spotID).
		Scan(&count, &avg)
	if err != nil {
		return nil, fmt.Errorf("failed to get rating: %w", err)
	}

	agg := &models.RatingAggregate{NumReviews: count}
	if avg.Valid {
		v := avg.Float64
		agg.AvgRating = &v
	}
	return agg, nil
}
