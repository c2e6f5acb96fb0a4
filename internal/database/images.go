package database

import (
	"context"
	"fmt"
	"time"

	"spotbook/internal/models"
)

// AddSpotImage stores an opaque image reference for a spot. The bytes
// themselves live elsewhere; only the url and preview flag are kept.
func (db *DB) AddSpotImage(ctx context.Context, image *models.SpotImage) error {
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx,
		`INSERT INTO spot_images (spot_id, url, preview, created_at) VALUES (?, ?, ?, ?)`,
		image.SpotID, image.URL, image.Preview, now,
	)
	if err != nil {
		return fmt.Errorf("failed to add spot image: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	image.ID = id
	image.CreatedAt = now
	return nil
}

// DeleteSpotImage removes one image reference. The spot id is part of the
// predicate so an image can only be deleted through its own spot.
func (db *DB) DeleteSpotImage(ctx context.Context, id, spotID int64) error {
	result, err := db.ExecContext(ctx,
		`DELETE FROM spot_images WHERE id = ? AND spot_id = ?`, id, spotID)
	if err != nil {
		return fmt.Errorf("failed to delete spot image: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("spot image %d: %w", id, ErrNotFound)
	}
	return nil
}

func (db *DB) GetSpotImages(ctx context.Context, spotID int64) ([]models.SpotImage, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, spot_id, url, preview, created_at FROM spot_images
         WHERE spot_id = ? ORDER BY id ASC`, spotID)
	if err != nil {
		return nil, fmt.Errorf("failed to get spot images: %w", err)
	}
	defer rows.Close()

	var images []models.SpotImage
	for rows.Next() {
		var img models.SpotImage
		if err := rows.Scan(&img.ID, &img.SpotID, &img.URL, &img.Preview, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan spot image: %w", err)
		}
		images = append(images, img)
	}
	return images, rows.Err()
}
