package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"spotbook/internal/models"
)

const spotColumns = `id, owner_id, address, city, state, country, lat, lng, name, description, price, created_at, updated_at`

func scanSpot(row interface{ Scan(...any) error }) (*models.Spot, error) {
	s := &models.Spot{}
	err := row.Scan(
		&s.ID, &s.OwnerID, &s.Address, &s.City, &s.State, &s.Country,
		&s.Lat, &s.Lng, &s.Name, &s.Description, &s.Price,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (db *DB) CreateSpot(ctx context.Context, spot *models.Spot) error {
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx,
		`INSERT INTO spots (owner_id, address, city, state, country, lat, lng, name, description, price, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		spot.OwnerID, spot.Address, spot.City, spot.State, spot.Country,
		spot.Lat, spot.Lng, spot.Name, spot.Description, spot.Price,
		now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateAddress
		}
		return fmt.Errorf("failed to create spot: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	spot.ID = id
	spot.CreatedAt = now
	spot.UpdatedAt = now
	return nil
}

func (db *DB) GetSpot(ctx context.Context, id int64) (*models.Spot, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+spotColumns+` FROM spots WHERE id = ?`, id)
	spot, err := scanSpot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("spot %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get spot: %w", err)
	}
	return spot, nil
}

func (db *DB) UpdateSpot(ctx context.Context, spot *models.Spot) error {
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx,
		`UPDATE spots SET address = ?, city = ?, state = ?, country = ?, lat = ?, lng = ?,
                name = ?, description = ?, price = ?, updated_at = ?
         WHERE id = ?`,
		spot.Address, spot.City, spot.State, spot.Country, spot.Lat, spot.Lng,
		spot.Name, spot.Description, spot.Price, now, spot.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateAddress
		}
		return fmt.Errorf("failed to update spot: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("spot %d: %w", spot.ID, ErrNotFound)
	}
	spot.UpdatedAt = now
	return nil
}

// DeleteSpotCascade removes a spot together with its bookings, reviews and
// image references in one transaction. The cascade is explicit: either every
// dependent row goes or nothing does.
func (db *DB) DeleteSpotCascade(ctx context.Context, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, query := range []string{
		`DELETE FROM bookings WHERE spot_id = ?`,
		`DELETE FROM reviews WHERE spot_id = ?`,
		`DELETE FROM spot_images WHERE spot_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, query, id); err != nil {
			return fmt.Errorf("failed to cascade spot delete: %w", err)
		}
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM spots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete spot: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("spot %d: %w", id, ErrNotFound)
	}

	return tx.Commit()
}

const spotWithRatingSelect = `
    SELECT s.id, s.owner_id, s.address, s.city, s.state, s.country, s.lat, s.lng,
           s.name, s.description, s.price, s.created_at, s.updated_at,
           COUNT(r.id), AVG(r.stars),
           COALESCE((SELECT i.url FROM spot_images i
                     WHERE i.spot_id = s.id AND i.preview = 1
                     ORDER BY i.id LIMIT 1), '')
    FROM spots s
    LEFT JOIN reviews r ON r.spot_id = s.id`

// SearchSpots applies the conjunctive bound predicate, joins the recomputed
// rating aggregate and preview image, and pages the result ordered by spot id
// for deterministic pagination.
func (db *DB) SearchSpots(ctx context.Context, filter models.SearchFilter) ([]*models.SpotWithRating, error) {
	query := spotWithRatingSelect + ` WHERE 1=1`
	var args []any

	for _, bound := range []struct {
		val    *float64
		clause string
	}{
		{filter.MinLat, " AND s.lat >= ?"},
		{filter.MaxLat, " AND s.lat <= ?"},
		{filter.MinLng, " AND s.lng >= ?"},
		{filter.MaxLng, " AND s.lng <= ?"},
		{filter.MinPrice, " AND s.price >= ?"},
		{filter.MaxPrice, " AND s.price <= ?"},
	} {
		if bound.val != nil {
			query += bound.clause
			args = append(args, *bound.val)
		}
	}

	page, size := models.DefaultPage, models.DefaultPageSize
	if filter.Page != nil {
		page = *filter.Page
	}
	if filter.Size != nil {
		size = *filter.Size
	}
	query += ` GROUP BY s.id ORDER BY s.id ASC LIMIT ? OFFSET ?`
	args = append(args, size, size*(page-1))

	return db.querySpotsWithRating(ctx, query, args...)
}

// GetOwnerSpots returns every spot owned by ownerID with ratings joined,
// unpaginated.
func (db *DB) GetOwnerSpots(ctx context.Context, ownerID int64) ([]*models.SpotWithRating, error) {
	query := spotWithRatingSelect + ` WHERE s.owner_id = ? GROUP BY s.id ORDER BY s.id ASC`
	return db.querySpotsWithRating(ctx, query, ownerID)
}

func (db *DB) querySpotsWithRating(ctx context.Context, query string, args ...any) ([]*models.SpotWithRating, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query spots: %w", err)
	}
	defer rows.Close()

	var spots []*models.SpotWithRating
	for rows.Next() {
		s := &models.SpotWithRating{}
		var avg sql.NullFloat64
		err := rows.Scan(
			&s.ID, &s.OwnerID, &s.Address, &s.City, &s.State, &s.Country,
			&s.Lat, &s.Lng, &s.Name, &s.Description, &s.Price,
			&s.CreatedAt, &s.UpdatedAt,
			&s.NumReviews, &avg, &s.PreviewImage,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan spot: %w", err)
		}
		if avg.Valid {
			v := avg.Float64
			s.AvgRating = &v
		}
		spots = append(spots, s)
	}
	return spots, rows.Err()
}
