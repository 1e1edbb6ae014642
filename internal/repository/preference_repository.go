package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/unimatch/unimatch-backend/internal/model"
)

// PreferenceRepository stores the per-user discovery preferences. There is
// never more than one live row per user.
type PreferenceRepository interface {
	Get(ctx context.Context, userID int64) (*model.UserPreference, error)
	Upsert(ctx context.Context, pref *model.UserPreference) error
}

type preferenceRepository struct {
	db *pgxpool.Pool
}

func NewPreferenceRepository(db *pgxpool.Pool) PreferenceRepository {
	return &preferenceRepository{db: db}
}

// Get returns the user's preferences, or nil (no error) when none are stored.
func (r *preferenceRepository) Get(ctx context.Context, userID int64) (*model.UserPreference, error) {
	query := `
		SELECT user_id, preferred_region, preferred_degree_type, preferred_field, min_roi
		FROM user_preferences WHERE user_id = $1`

	p := &model.UserPreference{}
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&p.UserID, &p.PreferredRegion, &p.PreferredDegreeType, &p.PreferredField, &p.MinROI,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Upsert inserts or fully replaces the user's preference row. Calling it
// twice with identical input leaves exactly one stored row.
func (r *preferenceRepository) Upsert(ctx context.Context, pref *model.UserPreference) error {
	query := `
		INSERT INTO user_preferences (user_id, preferred_region, preferred_degree_type, preferred_field, min_roi)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET preferred_region = EXCLUDED.preferred_region,
		    preferred_degree_type = EXCLUDED.preferred_degree_type,
		    preferred_field = EXCLUDED.preferred_field,
		    min_roi = EXCLUDED.min_roi
		RETURNING user_id`
	return r.db.QueryRow(ctx, query,
		pref.UserID, pref.PreferredRegion, pref.PreferredDegreeType, pref.PreferredField, pref.MinROI,
	).Scan(&pref.UserID)
}
