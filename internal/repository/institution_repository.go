package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/unimatch/unimatch-backend/internal/model"
)

// InstitutionRepository reads institution reference data. Candidates come
// back enriched with admission-test averages in a single query.
type InstitutionRepository interface {
	List(ctx context.Context, spec model.FilterSpec, offset, limit int) ([]model.Candidate, error)
	Count(ctx context.Context, spec model.FilterSpec) (int64, error)
	GetByID(ctx context.Context, id int64) (*model.Candidate, error)
	ListByIDs(ctx context.Context, ids []int64) ([]model.Candidate, error)
	ListPrograms(ctx context.Context, institutionID int64) ([]model.ProgramOffered, error)
}

type institutionRepository struct {
	db *pgxpool.Pool
}

func NewInstitutionRepository(db *pgxpool.Pool) InstitutionRepository {
	return &institutionRepository{db: db}
}

const candidateColumns = `i.uni_id, i.name, i.state, i.city, i.zip, i.ownership,
	i.admission_rate, i.annual_cost, i.site_url, i.logo_url, a.sat_avg, a.act_avg`

// compileFilter translates a FilterSpec into a WHERE clause, an ORDER BY
// clause, and positional arguments. All user-supplied values travel as
// parameters; the clause text itself is fixed per filter kind.
func compileFilter(spec model.FilterSpec) (where, order string, args []any, err error) {
	var conds []string

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	switch spec.Kind {
	case model.FilterAll:
		order = "i.uni_id ASC"

	case model.FilterByRegion:
		if spec.Region == nil {
			// No preferred region means the predicate matches nothing.
			conds = append(conds, "FALSE")
		} else {
			conds = append(conds, "i.state = "+arg(*spec.Region))
		}
		order = "i.admission_rate ASC NULLS LAST, i.uni_id ASC"

	case model.FilterByField:
		if spec.Field == nil {
			conds = append(conds, "FALSE")
		} else {
			conds = append(conds, `EXISTS (
				SELECT 1 FROM institution_programs ip
				JOIN programs p ON p.cip_code = ip.cip_code
				WHERE ip.uni_id = i.uni_id AND p.name = `+arg(*spec.Field)+")")
		}
		order = "i.admission_rate ASC NULLS LAST, i.uni_id ASC"

	case model.FilterCombined:
		if spec.Region != nil {
			conds = append(conds, "i.state = "+arg(*spec.Region))
		}
		if spec.DegreeType != nil {
			conds = append(conds, `EXISTS (
				SELECT 1 FROM institution_programs ip
				WHERE ip.uni_id = i.uni_id AND ip.degree_type = `+arg(*spec.DegreeType)+")")
		}
		if spec.Field != nil {
			conds = append(conds, `EXISTS (
				SELECT 1 FROM institution_programs ip
				JOIN programs p ON p.cip_code = ip.cip_code
				WHERE ip.uni_id = i.uni_id AND p.name = `+arg(*spec.Field)+")")
		}
		if spec.MinROI != nil {
			conds = append(conds, `EXISTS (
				SELECT 1 FROM institution_programs ip
				JOIN program_outcomes po ON po.uni_prog_id = ip.id
				WHERE ip.uni_id = i.uni_id AND po.roi_score >= `+arg(*spec.MinROI)+")")
		}
		order = "i.uni_id ASC"

	case model.FilterHighAdmission:
		conds = append(conds, "i.admission_rate > 0.5")
		order = "i.admission_rate DESC, i.uni_id ASC"

	default:
		return "", "", nil, fmt.Errorf("unknown filter kind %d", spec.Kind)
	}

	if len(conds) == 0 {
		where = "TRUE"
	} else {
		where = strings.Join(conds, " AND ")
	}
	return where, order, args, nil
}

func (r *institutionRepository) List(ctx context.Context, spec model.FilterSpec, offset, limit int) ([]model.Candidate, error) {
	where, order, args, err := compileFilter(spec)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM institutions i
		LEFT JOIN admissions a ON a.uni_id = i.uni_id
		WHERE %s
		ORDER BY %s
		OFFSET $%d LIMIT $%d`,
		candidateColumns, where, order, len(args)+1, len(args)+2)
	args = append(args, offset, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	candidates := []model.Candidate{}
	rank := offset
	for rows.Next() {
		var c model.Candidate
		if err := rows.Scan(
			&c.ID, &c.Name, &c.State, &c.City, &c.Zip, &c.Ownership,
			&c.AdmissionRate, &c.AnnualCost, &c.SiteURL, &c.LogoURL,
			&c.SATAvg, &c.ACTAvg,
		); err != nil {
			return nil, err
		}
		rank++
		c.Rank = rank
		c.ImageURL = c.Institution.ImageURL()
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

func (r *institutionRepository) Count(ctx context.Context, spec model.FilterSpec) (int64, error) {
	where, _, args, err := compileFilter(spec)
	if err != nil {
		return 0, err
	}

	var count int64
	query := fmt.Sprintf(`SELECT COUNT(*) FROM institutions i WHERE %s`, where)
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// GetByID returns the institution, or nil (no error) when the id is unknown.
func (r *institutionRepository) GetByID(ctx context.Context, id int64) (*model.Candidate, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM institutions i
		LEFT JOIN admissions a ON a.uni_id = i.uni_id
		WHERE i.uni_id = $1`, candidateColumns)

	var c model.Candidate
	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.State, &c.City, &c.Zip, &c.Ownership,
		&c.AdmissionRate, &c.AnnualCost, &c.SiteURL, &c.LogoURL,
		&c.SATAvg, &c.ACTAvg,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.ImageURL = c.Institution.ImageURL()
	return &c, nil
}

func (r *institutionRepository) ListByIDs(ctx context.Context, ids []int64) ([]model.Candidate, error) {
	if len(ids) == 0 {
		return []model.Candidate{}, nil
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM institutions i
		LEFT JOIN admissions a ON a.uni_id = i.uni_id
		WHERE i.uni_id = ANY($1)
		ORDER BY i.name ASC`, candidateColumns)

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	candidates := []model.Candidate{}
	for rows.Next() {
		var c model.Candidate
		if err := rows.Scan(
			&c.ID, &c.Name, &c.State, &c.City, &c.Zip, &c.Ownership,
			&c.AdmissionRate, &c.AnnualCost, &c.SiteURL, &c.LogoURL,
			&c.SATAvg, &c.ACTAvg,
		); err != nil {
			return nil, err
		}
		c.ImageURL = c.Institution.ImageURL()
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

func (r *institutionRepository) ListPrograms(ctx context.Context, institutionID int64) ([]model.ProgramOffered, error) {
	query := `
		SELECT p.cip_code, p.name, ip.degree_type,
		       po.roi_score, po.earn_1year, po.earn_2years
		FROM institution_programs ip
		JOIN programs p ON p.cip_code = ip.cip_code
		LEFT JOIN program_outcomes po ON po.uni_prog_id = ip.id
		WHERE ip.uni_id = $1
		ORDER BY p.name ASC, ip.degree_type ASC`

	rows, err := r.db.Query(ctx, query, institutionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	programs := []model.ProgramOffered{}
	for rows.Next() {
		var p model.ProgramOffered
		if err := rows.Scan(&p.CIPCode, &p.Name, &p.DegreeType, &p.ROIScore, &p.Earn1Year, &p.Earn2Years); err != nil {
			return nil, err
		}
		programs = append(programs, p)
	}
	return programs, rows.Err()
}
