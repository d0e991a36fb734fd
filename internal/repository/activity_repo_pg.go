package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zvrva/tourbooking/internal/domain"
)

type ActivityRepository interface {
	List(ctx context.Context) ([]domain.Activity, error)
	GetByID(ctx context.Context, id int64) (*domain.Activity, error)
}

type PGActivityRepository struct {
	db *pgxpool.Pool
}

func NewActivityRepository(db *pgxpool.Pool) ActivityRepository {
	return &PGActivityRepository{db: db}
}

func (r *PGActivityRepository) List(ctx context.Context) ([]domain.Activity, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, slug, capacity, prices, duration_hours, is_active, created_at, updated_at FROM activities WHERE is_active ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := make([]domain.Activity, 0)
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, *a)
	}
	return activities, rows.Err()
}

func (r *PGActivityRepository) GetByID(ctx context.Context, id int64) (*domain.Activity, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, slug, capacity, prices, duration_hours, is_active, created_at, updated_at FROM activities WHERE id=$1`, id)
	a, err := scanActivity(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func scanActivity(row pgx.Row) (*domain.Activity, error) {
	var a domain.Activity
	var prices []byte
	if err := row.Scan(&a.ID, &a.Name, &a.Slug, &a.Capacity, &prices, &a.DurationHours, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(prices, &a.Prices); err != nil {
		return nil, fmt.Errorf("decode activity %d prices: %w", a.ID, err)
	}
	return &a, nil
}

var _ ActivityRepository = (*PGActivityRepository)(nil)
