package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/unimatch/unimatch-backend/internal/model"
	"github.com/unimatch/unimatch-backend/internal/repository"
)

// InstitutionService serves institution detail views. Program rows are
// annotated against the viewer's preferred field so the client can highlight
// them without a second round trip.
type InstitutionService struct {
	institutionRepo repository.InstitutionRepository
	preferenceRepo  repository.PreferenceRepository
	log             zerolog.Logger
}

func NewInstitutionService(
	institutionRepo repository.InstitutionRepository,
	preferenceRepo repository.PreferenceRepository,
	log zerolog.Logger,
) *InstitutionService {
	return &InstitutionService{
		institutionRepo: institutionRepo,
		preferenceRepo:  preferenceRepo,
		log:             log.With().Str("component", "institution_service").Logger(),
	}
}

// GetProfile assembles the detail view of one institution. viewerID 0 means
// an anonymous viewer: programs come back unannotated.
func (s *InstitutionService) GetProfile(ctx context.Context, institutionID, viewerID int64) (*model.InstitutionProfile, error) {
	candidate, err := s.institutionRepo.GetByID(ctx, institutionID)
	if err != nil {
		return nil, fmt.Errorf("load institution: %w", err)
	}
	if candidate == nil {
		return nil, fmt.Errorf("%w: institution %d", ErrNotFound, institutionID)
	}

	programs, err := s.institutionRepo.ListPrograms(ctx, institutionID)
	if err != nil {
		return nil, fmt.Errorf("load programs: %w", err)
	}

	var preferredField *string
	if viewerID > 0 {
		pref, err := s.preferenceRepo.Get(ctx, viewerID)
		if err != nil {
			// Annotation is best-effort; the profile itself must still load.
			s.log.Warn().Err(err).Int64("user_id", viewerID).Msg("Preference lookup failed, serving unannotated programs")
		} else if pref != nil {
			preferredField = pref.PreferredField
		}
	}
	if preferredField != nil {
		for i := range programs {
			programs[i].IsMatch = programs[i].Name == *preferredField
		}
	}

	return &model.InstitutionProfile{
		Institution: candidate.Institution,
		ImageURL:    candidate.ImageURL,
		SATAvg:      candidate.SATAvg,
		ACTAvg:      candidate.ACTAvg,
		Programs:    programs,
	}, nil
}
