package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/unimatch/unimatch-backend/internal/model"
	"github.com/unimatch/unimatch-backend/internal/repository"
)

// Selection modes exposed to clients.
const (
	ModeAll           = 1
	ModeRegion        = 2
	ModeField         = 3
	ModePreferences   = 4
	ModeHighAdmission = 5
)

// RecommendationService turns a (mode, user) pair into a FilterSpec and
// serves pages of ranked candidates. Mode 4 falls back to mode 1 when the
// combined preferences select nothing, so a user with over-constrained
// preferences still gets a feed. The fallback is resolved at the filter
// level, so every consumer (paged listing, counting, feed sessions) sees
// the same candidate set.
type RecommendationService struct {
	institutionRepo repository.InstitutionRepository
	preferenceRepo  repository.PreferenceRepository
	log             zerolog.Logger
}

func NewRecommendationService(
	institutionRepo repository.InstitutionRepository,
	preferenceRepo repository.PreferenceRepository,
	log zerolog.Logger,
) *RecommendationService {
	return &RecommendationService{
		institutionRepo: institutionRepo,
		preferenceRepo:  preferenceRepo,
		log:             log.With().Str("component", "recommendation_service").Logger(),
	}
}

// ResolveFilter builds the FilterSpec for a mode, loading the user's stored
// preferences when the mode needs them. A user with no stored preference gets
// an impossible predicate in modes 2 and 3 and an unconstrained one in mode 4.
func (s *RecommendationService) ResolveFilter(ctx context.Context, mode int, userID int64) (model.FilterSpec, error) {
	switch mode {
	case ModeAll:
		return model.AllInstitutions(), nil
	case ModeHighAdmission:
		return model.HighAdmission(), nil
	case ModeRegion, ModeField, ModePreferences:
		// fallthrough to preference lookup below
	default:
		return model.FilterSpec{}, fmt.Errorf("%w: mode must be between 1 and 5", ErrInvalidArgument)
	}

	pref, err := s.preferenceRepo.Get(ctx, userID)
	if err != nil {
		return model.FilterSpec{}, fmt.Errorf("load preferences: %w", err)
	}

	switch mode {
	case ModeRegion:
		if pref == nil || pref.PreferredRegion == nil {
			return model.FilterSpec{Kind: model.FilterByRegion}, nil
		}
		return model.ByRegion(*pref.PreferredRegion), nil
	case ModeField:
		if pref == nil || pref.PreferredField == nil {
			return model.FilterSpec{Kind: model.FilterByField}, nil
		}
		return model.ByField(*pref.PreferredField), nil
	default:
		return model.CombinedPreferences(pref), nil
	}
}

// EffectiveFilter resolves the mode's FilterSpec and applies the mode-4
// fallback: combined preferences that select nothing degrade to the full
// catalog, invisibly to the caller. An over-constrained preference set would
// otherwise starve every consumer of the filter.
func (s *RecommendationService) EffectiveFilter(ctx context.Context, mode int, userID int64) (model.FilterSpec, error) {
	spec, err := s.ResolveFilter(ctx, mode, userID)
	if err != nil {
		return model.FilterSpec{}, err
	}
	if mode != ModePreferences {
		return spec, nil
	}

	total, err := s.institutionRepo.Count(ctx, spec)
	if err != nil {
		return model.FilterSpec{}, fmt.Errorf("count candidates: %w", err)
	}
	if total == 0 {
		s.log.Debug().
			Int64("user_id", userID).
			Msg("Combined preferences selected nothing, falling back to the full catalog")
		return model.AllInstitutions(), nil
	}
	return spec, nil
}

// Recommend returns one page of candidates for the mode. Rank numbering is
// continuous across pages of the same filter.
func (s *RecommendationService) Recommend(ctx context.Context, mode int, userID int64, offset, limit int) ([]model.Candidate, error) {
	if offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative", ErrInvalidArgument)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be a positive integer", ErrInvalidArgument)
	}

	spec, err := s.EffectiveFilter(ctx, mode, userID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.institutionRepo.List(ctx, spec, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	return candidates, nil
}

// CountCandidates reports how many institutions the mode's filter selects.
// It counts the same effective filter Recommend pages over, so a fallback
// page never arrives with a contradicting total.
func (s *RecommendationService) CountCandidates(ctx context.Context, mode int, userID int64) (int64, error) {
	spec, err := s.EffectiveFilter(ctx, mode, userID)
	if err != nil {
		return 0, err
	}
	return s.institutionRepo.Count(ctx, spec)
}
