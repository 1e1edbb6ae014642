package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/unimatch/unimatch-backend/internal/model"
)

// AnalyticsRepository supplies the flat joined outcome rows the analytics
// engine aggregates in memory.
type AnalyticsRepository interface {
	ListOutcomeRows(ctx context.Context) ([]model.OutcomeRow, error)
}

type analyticsRepository struct {
	db *pgxpool.Pool
}

func NewAnalyticsRepository(db *pgxpool.Pool) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) ListOutcomeRows(ctx context.Context) ([]model.OutcomeRow, error) {
	query := `
		SELECT i.uni_id, i.name, i.state, i.admission_rate, i.annual_cost,
		       p.cip_code, p.name, ip.degree_type,
		       po.roi_score, po.earn_1year, po.earn_2years
		FROM institution_programs ip
		JOIN institutions i ON i.uni_id = ip.uni_id
		JOIN programs p ON p.cip_code = ip.cip_code
		LEFT JOIN program_outcomes po ON po.uni_prog_id = ip.id
		ORDER BY ip.id ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.OutcomeRow
	for rows.Next() {
		var o model.OutcomeRow
		if err := rows.Scan(
			&o.InstitutionID, &o.InstitutionName, &o.State, &o.AdmissionRate, &o.AnnualCost,
			&o.CIPCode, &o.ProgramName, &o.DegreeType,
			&o.ROIScore, &o.Earn1Year, &o.Earn2Years,
		); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
