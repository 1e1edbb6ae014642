package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/unimatch/unimatch-backend/internal/model"
	"github.com/unimatch/unimatch-backend/internal/repository"
)

// PreferenceService manages the per-user discovery preferences.
type PreferenceService struct {
	preferenceRepo repository.PreferenceRepository
	log            zerolog.Logger
}

func NewPreferenceService(preferenceRepo repository.PreferenceRepository, log zerolog.Logger) *PreferenceService {
	return &PreferenceService{
		preferenceRepo: preferenceRepo,
		log:            log.With().Str("component", "preference_service").Logger(),
	}
}

// Get returns the user's stored preferences. A user who never saved any gets
// an empty record, not an error.
func (s *PreferenceService) Get(ctx context.Context, userID int64) (*model.UserPreference, error) {
	pref, err := s.preferenceRepo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load preferences: %w", err)
	}
	if pref == nil {
		return &model.UserPreference{UserID: userID}, nil
	}
	return pref, nil
}

// Upsert replaces the user's preference row with the request. Absent fields
// clear the stored value; the call is idempotent.
func (s *PreferenceService) Upsert(ctx context.Context, userID int64, req *model.UpsertPreferenceRequest) (*model.UserPreference, error) {
	pref := &model.UserPreference{
		UserID:              userID,
		PreferredRegion:     req.PreferredRegion,
		PreferredDegreeType: req.PreferredDegreeType,
		PreferredField:      req.PreferredField,
		MinROI:              req.MinROI,
	}
	if err := s.preferenceRepo.Upsert(ctx, pref); err != nil {
		return nil, fmt.Errorf("store preferences: %w", err)
	}

	s.log.Info().Int64("user_id", userID).Msg("Preferences updated")
	return pref, nil
}
