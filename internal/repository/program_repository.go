package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/unimatch/unimatch-backend/internal/model"
)

// ProgramRepository reads the program and degree-type catalogs.
type ProgramRepository interface {
	List(ctx context.Context) ([]model.Program, error)
	ListDegreeTypes(ctx context.Context) ([]string, error)
}

type programRepository struct {
	db *pgxpool.Pool
}

func NewProgramRepository(db *pgxpool.Pool) ProgramRepository {
	return &programRepository{db: db}
}

func (r *programRepository) List(ctx context.Context) ([]model.Program, error) {
	rows, err := r.db.Query(ctx, `SELECT cip_code, name FROM programs ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Program{}
	for rows.Next() {
		var p model.Program
		if err := rows.Scan(&p.CIPCode, &p.Name); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *programRepository) ListDegreeTypes(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT degree_type FROM institution_programs ORDER BY degree_type ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
