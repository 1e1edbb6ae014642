package service

import (
	"context"

	"github.com/unimatch/unimatch-backend/internal/model"
	"github.com/unimatch/unimatch-backend/internal/repository"
)

// ProgramService serves the program and degree-type catalogs backing the
// preference form.
type ProgramService struct {
	programRepo repository.ProgramRepository
}

func NewProgramService(programRepo repository.ProgramRepository) *ProgramService {
	return &ProgramService{programRepo: programRepo}
}

func (s *ProgramService) List(ctx context.Context) ([]model.Program, error) {
	return s.programRepo.List(ctx)
}

func (s *ProgramService) ListDegreeTypes(ctx context.Context) ([]string, error) {
	return s.programRepo.ListDegreeTypes(ctx)
}
