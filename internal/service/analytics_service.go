package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/unimatch/unimatch-backend/internal/config"
	"github.com/unimatch/unimatch-backend/internal/model"
	"github.com/unimatch/unimatch-backend/internal/repository"
)

// Report names used as cache key segments.
const (
	reportProgramAdmissionRate  = "program_admission_rate"
	reportROIPerCost            = "roi_per_cost"
	reportStateProgramROI       = "state_program_roi"
	reportEarningsGrowth        = "earnings_growth"
	reportStartingSalary        = "starting_salary"
	reportLowestROI             = "lowest_roi"
	reportLowestSalary          = "lowest_salary"
	reportStateTopInstitution   = "state_top_institution"
	reportProgramTopInstitution = "program_top_institution"
)

// AnalyticsService computes the nine analytical reports over the reference
// data. Reports are stateless per call and aggregate in memory, so every
// run is deterministic for a fixed dataset and limit. Computed reports are
// cached in Redis; cache failures degrade to recomputation.
type AnalyticsService struct {
	repo     repository.AnalyticsRepository
	rdb      *redis.Client // nil disables caching (tests)
	cacheTTL time.Duration
	log      zerolog.Logger
}

func NewAnalyticsService(repo repository.AnalyticsRepository, rdb *redis.Client, cacheTTL time.Duration, log zerolog.Logger) *AnalyticsService {
	return &AnalyticsService{
		repo:     repo,
		rdb:      rdb,
		cacheTTL: cacheTTL,
		log:      log.With().Str("component", "analytics_service").Logger(),
	}
}

// cachedReport validates the limit, serves the report from Redis when
// possible, and otherwise recomputes it from fresh outcome rows and stores
// the result. Methods cannot be generic, hence the free function.
func cachedReport[T any](ctx context.Context, s *AnalyticsService, name string, limit int, compute func([]model.OutcomeRow) []T) ([]T, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be a positive integer", ErrInvalidArgument)
	}

	key := config.CacheKey.ReportKey(name, limit)
	if s.rdb != nil {
		raw, err := s.rdb.Get(ctx, key).Result()
		if err == nil {
			var cached []T
			if jsonErr := json.Unmarshal([]byte(raw), &cached); jsonErr == nil {
				return cached, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Str("report", name).Msg("Report cache read failed")
		}
	}

	rows, err := s.repo.ListOutcomeRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("load outcome rows: %w", err)
	}

	report := compute(rows)
	if report == nil {
		report = []T{}
	}

	if s.rdb != nil {
		if raw, err := json.Marshal(report); err == nil {
			if err := s.rdb.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil {
				s.log.Warn().Err(err).Str("report", name).Msg("Report cache write failed")
			}
		}
	}
	return report, nil
}

// ─── Report methods ─────────────────────────────────────────────────

// HighestAdmissionRatePrograms ranks programs by the average admission rate
// of the institutions offering them, descending.
func (s *AnalyticsService) HighestAdmissionRatePrograms(ctx context.Context, limit int) ([]model.ProgramAdmissionRate, error) {
	return cachedReport(ctx, s, reportProgramAdmissionRate, limit, func(rows []model.OutcomeRow) []model.ProgramAdmissionRate {
		return computeProgramAdmissionRates(rows, limit)
	})
}

// HighestROIPerCost ranks institution-program rows by ROI divided by the
// institution's annual cost, descending.
func (s *AnalyticsService) HighestROIPerCost(ctx context.Context, limit int) ([]model.ROIPerCost, error) {
	return cachedReport(ctx, s, reportROIPerCost, limit, func(rows []model.OutcomeRow) []model.ROIPerCost {
		return computeROIPerCost(rows, limit)
	})
}

// AvgROIByStateProgram averages ROI per (state, program) group, keeping only
// groups with at least five contributing rows.
func (s *AnalyticsService) AvgROIByStateProgram(ctx context.Context, limit int) ([]model.StateProgramROI, error) {
	return cachedReport(ctx, s, reportStateProgramROI, limit, func(rows []model.OutcomeRow) []model.StateProgramROI {
		return computeStateProgramROI(rows, limit)
	})
}

// HighestEarningsGrowth ranks programs by the average year-2 minus year-1
// earnings delta, descending.
func (s *AnalyticsService) HighestEarningsGrowth(ctx context.Context, limit int) ([]model.EarningsGrowth, error) {
	return cachedReport(ctx, s, reportEarningsGrowth, limit, func(rows []model.OutcomeRow) []model.EarningsGrowth {
		return computeEarningsGrowth(rows, limit)
	})
}

// HighestStartingSalaries ranks programs by average one-year earnings,
// descending.
func (s *AnalyticsService) HighestStartingSalaries(ctx context.Context, limit int) ([]model.StartingSalary, error) {
	return cachedReport(ctx, s, reportStartingSalary, limit, func(rows []model.OutcomeRow) []model.StartingSalary {
		return computeStartingSalaries(rows, limit)
	})
}

// LowestROIPrograms lists the institution-program rows with the lowest
// non-zero ROI scores, ascending.
func (s *AnalyticsService) LowestROIPrograms(ctx context.Context, limit int) ([]model.LowROIProgram, error) {
	return cachedReport(ctx, s, reportLowestROI, limit, func(rows []model.OutcomeRow) []model.LowROIProgram {
		return computeLowestROI(rows, limit)
	})
}

// LowestSalaryPrograms ranks programs by average two-year earnings ascending,
// counting only samples above the $1000 data-quality floor and keeping only
// programs with at least 30 qualifying samples.
func (s *AnalyticsService) LowestSalaryPrograms(ctx context.Context, limit int) ([]model.LowSalaryProgram, error) {
	return cachedReport(ctx, s, reportLowestSalary, limit, func(rows []model.OutcomeRow) []model.LowSalaryProgram {
		return computeLowestSalaries(rows, limit)
	})
}

// TopInstitutionPerState returns the institution with the highest average
// ROI in every state.
func (s *AnalyticsService) TopInstitutionPerState(ctx context.Context, limit int) ([]model.StateTopInstitution, error) {
	return cachedReport(ctx, s, reportStateTopInstitution, limit, func(rows []model.OutcomeRow) []model.StateTopInstitution {
		return computeTopInstitutionPerState(rows, limit)
	})
}

// TopInstitutionPerProgram returns the institution with the highest average
// ROI in every field of study.
func (s *AnalyticsService) TopInstitutionPerProgram(ctx context.Context, limit int) ([]model.ProgramTopInstitution, error) {
	return cachedReport(ctx, s, reportProgramTopInstitution, limit, func(rows []model.OutcomeRow) []model.ProgramTopInstitution {
		return computeTopInstitutionPerProgram(rows, limit)
	})
}

// Prewarm recomputes every report at the default limit so the caches are hot
// before traffic arrives. Individual failures are logged, not fatal.
func (s *AnalyticsService) Prewarm(ctx context.Context, limit int) {
	run := func(name string, f func() error) {
		if err := f(); err != nil {
			s.log.Warn().Err(err).Str("report", name).Msg("Report prewarm failed")
		}
	}
	run(reportProgramAdmissionRate, func() error { _, err := s.HighestAdmissionRatePrograms(ctx, limit); return err })
	run(reportROIPerCost, func() error { _, err := s.HighestROIPerCost(ctx, limit); return err })
	run(reportStateProgramROI, func() error { _, err := s.AvgROIByStateProgram(ctx, limit); return err })
	run(reportEarningsGrowth, func() error { _, err := s.HighestEarningsGrowth(ctx, limit); return err })
	run(reportStartingSalary, func() error { _, err := s.HighestStartingSalaries(ctx, limit); return err })
	run(reportLowestROI, func() error { _, err := s.LowestROIPrograms(ctx, limit); return err })
	run(reportLowestSalary, func() error { _, err := s.LowestSalaryPrograms(ctx, limit); return err })
	run(reportStateTopInstitution, func() error { _, err := s.TopInstitutionPerState(ctx, limit); return err })
	run(reportProgramTopInstitution, func() error { _, err := s.TopInstitutionPerProgram(ctx, limit); return err })
}

// ─── Report computations ────────────────────────────────────────────

func computeProgramAdmissionRates(rows []model.OutcomeRow, limit int) []model.ProgramAdmissionRate {
	acc := make(map[string]*meanAcc)
	names := make(map[string]string)
	for _, row := range rows {
		if row.AdmissionRate == nil {
			continue
		}
		a, ok := acc[row.CIPCode]
		if !ok {
			a = &meanAcc{}
			acc[row.CIPCode] = a
			names[row.CIPCode] = row.ProgramName
		}
		a.add(*row.AdmissionRate)
	}

	out := make([]model.ProgramAdmissionRate, 0, len(acc))
	for cip, a := range acc {
		out = append(out, model.ProgramAdmissionRate{ProgramName: names[cip], AvgAdmissionRate: a.mean()})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgAdmissionRate != out[j].AvgAdmissionRate {
			return out[i].AvgAdmissionRate > out[j].AvgAdmissionRate
		}
		return out[i].ProgramName < out[j].ProgramName
	})
	return truncate(out, limit)
}

func computeROIPerCost(rows []model.OutcomeRow, limit int) []model.ROIPerCost {
	out := []model.ROIPerCost{}
	for _, row := range rows {
		// A zero or null cost yields no ratio at all, never Inf or NaN.
		if row.ROIScore == nil || row.AnnualCost == nil || *row.AnnualCost == 0 {
			continue
		}
		out = append(out, model.ROIPerCost{
			InstitutionName: row.InstitutionName,
			State:           row.State,
			ROIScore:        *row.ROIScore,
			AnnualCost:      *row.AnnualCost,
			ROIPerCost:      *row.ROIScore / *row.AnnualCost,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ROIPerCost != out[j].ROIPerCost {
			return out[i].ROIPerCost > out[j].ROIPerCost
		}
		return out[i].InstitutionName < out[j].InstitutionName
	})
	return truncate(out, limit)
}

func computeStateProgramROI(rows []model.OutcomeRow, limit int) []model.StateProgramROI {
	type key struct{ state, cip string }
	acc := make(map[key]*meanAcc)
	names := make(map[key]string)
	for _, row := range rows {
		if row.ROIScore == nil {
			continue
		}
		k := key{row.State, row.CIPCode}
		a, ok := acc[k]
		if !ok {
			a = &meanAcc{}
			acc[k] = a
			names[k] = row.ProgramName
		}
		a.add(*row.ROIScore)
	}

	out := []model.StateProgramROI{}
	for k, a := range acc {
		// HAVING-style sample floor, applied after aggregation.
		if a.n < 5 {
			continue
		}
		out = append(out, model.StateProgramROI{
			State:       k.state,
			ProgramName: names[k],
			AvgROI:      a.mean(),
			SampleCount: a.n,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].State != out[j].State {
			return out[i].State < out[j].State
		}
		if out[i].AvgROI != out[j].AvgROI {
			return out[i].AvgROI > out[j].AvgROI
		}
		return out[i].ProgramName < out[j].ProgramName
	})
	return truncate(out, limit)
}

func computeEarningsGrowth(rows []model.OutcomeRow, limit int) []model.EarningsGrowth {
	type acc struct{ e1, e2, growth meanAcc }
	byProgram := make(map[string]*acc)
	names := make(map[string]string)
	for _, row := range rows {
		// Growth is only defined when both years are present.
		if row.Earn1Year == nil || row.Earn2Years == nil {
			continue
		}
		a, ok := byProgram[row.CIPCode]
		if !ok {
			a = &acc{}
			byProgram[row.CIPCode] = a
			names[row.CIPCode] = row.ProgramName
		}
		a.e1.add(*row.Earn1Year)
		a.e2.add(*row.Earn2Years)
		a.growth.add(*row.Earn2Years - *row.Earn1Year)
	}

	out := make([]model.EarningsGrowth, 0, len(byProgram))
	for cip, a := range byProgram {
		out = append(out, model.EarningsGrowth{
			ProgramName: names[cip],
			AvgEarn1:    a.e1.mean(),
			AvgEarn2:    a.e2.mean(),
			AvgGrowth:   a.growth.mean(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgGrowth != out[j].AvgGrowth {
			return out[i].AvgGrowth > out[j].AvgGrowth
		}
		return out[i].ProgramName < out[j].ProgramName
	})
	return truncate(out, limit)
}

func computeStartingSalaries(rows []model.OutcomeRow, limit int) []model.StartingSalary {
	acc := make(map[string]*meanAcc)
	names := make(map[string]string)
	for _, row := range rows {
		if row.Earn1Year == nil {
			continue
		}
		a, ok := acc[row.CIPCode]
		if !ok {
			a = &meanAcc{}
			acc[row.CIPCode] = a
			names[row.CIPCode] = row.ProgramName
		}
		a.add(*row.Earn1Year)
	}

	out := make([]model.StartingSalary, 0, len(acc))
	for cip, a := range acc {
		out = append(out, model.StartingSalary{ProgramName: names[cip], AvgStartingSalary: a.mean()})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgStartingSalary != out[j].AvgStartingSalary {
			return out[i].AvgStartingSalary > out[j].AvgStartingSalary
		}
		return out[i].ProgramName < out[j].ProgramName
	})
	return truncate(out, limit)
}

func computeLowestROI(rows []model.OutcomeRow, limit int) []model.LowROIProgram {
	out := []model.LowROIProgram{}
	for _, row := range rows {
		if row.ROIScore == nil || *row.ROIScore == 0 {
			continue
		}
		out = append(out, model.LowROIProgram{
			InstitutionName: row.InstitutionName,
			State:           row.State,
			ProgramName:     row.ProgramName,
			ROIScore:        *row.ROIScore,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ROIScore != out[j].ROIScore {
			return out[i].ROIScore < out[j].ROIScore
		}
		if out[i].InstitutionName != out[j].InstitutionName {
			return out[i].InstitutionName < out[j].InstitutionName
		}
		return out[i].ProgramName < out[j].ProgramName
	})
	return truncate(out, limit)
}

func computeLowestSalaries(rows []model.OutcomeRow, limit int) []model.LowSalaryProgram {
	acc := make(map[string]*meanAcc)
	names := make(map[string]string)
	for _, row := range rows {
		// Earnings at or below $1000 are treated as bad data, not low pay.
		if row.Earn2Years == nil || *row.Earn2Years <= 1000 {
			continue
		}
		a, ok := acc[row.CIPCode]
		if !ok {
			a = &meanAcc{}
			acc[row.CIPCode] = a
			names[row.CIPCode] = row.ProgramName
		}
		a.add(*row.Earn2Years)
	}

	out := []model.LowSalaryProgram{}
	for cip, a := range acc {
		if a.n < 30 {
			continue
		}
		out = append(out, model.LowSalaryProgram{
			ProgramName:    names[cip],
			SampleCount:    a.n,
			AvgSalaryYear2: a.mean(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgSalaryYear2 != out[j].AvgSalaryYear2 {
			return out[i].AvgSalaryYear2 < out[j].AvgSalaryYear2
		}
		return out[i].ProgramName < out[j].ProgramName
	})
	return truncate(out, limit)
}

func computeTopInstitutionPerState(rows []model.OutcomeRow, limit int) []model.StateTopInstitution {
	type key struct {
		state string
		uniID int64
	}
	acc := make(map[key]*meanAcc)
	names := make(map[key]string)
	for _, row := range rows {
		if row.ROIScore == nil {
			continue
		}
		k := key{row.State, row.InstitutionID}
		a, ok := acc[k]
		if !ok {
			a = &meanAcc{}
			acc[k] = a
			names[k] = row.InstitutionName
		}
		a.add(*row.ROIScore)
	}

	averages := make([]model.StateTopInstitution, 0, len(acc))
	for k, a := range acc {
		averages = append(averages, model.StateTopInstitution{
			State:           k.state,
			InstitutionName: names[k],
			AvgROI:          a.mean(),
		})
	}

	best := topOnePerPartition(averages,
		func(r model.StateTopInstitution) string { return r.State },
		func(r model.StateTopInstitution) float64 { return r.AvgROI },
		func(r model.StateTopInstitution) string { return r.InstitutionName },
	)
	return truncate(best, limit)
}

func computeTopInstitutionPerProgram(rows []model.OutcomeRow, limit int) []model.ProgramTopInstitution {
	type key struct {
		cip   string
		uniID int64
	}
	acc := make(map[key]*meanAcc)
	programNames := make(map[key]string)
	uniNames := make(map[key]string)
	for _, row := range rows {
		if row.ROIScore == nil {
			continue
		}
		k := key{row.CIPCode, row.InstitutionID}
		a, ok := acc[k]
		if !ok {
			a = &meanAcc{}
			acc[k] = a
			programNames[k] = row.ProgramName
			uniNames[k] = row.InstitutionName
		}
		a.add(*row.ROIScore)
	}

	averages := make([]model.ProgramTopInstitution, 0, len(acc))
	for k, a := range acc {
		averages = append(averages, model.ProgramTopInstitution{
			ProgramName:     programNames[k],
			InstitutionName: uniNames[k],
			AvgROI:          a.mean(),
		})
	}

	best := topOnePerPartition(averages,
		func(r model.ProgramTopInstitution) string { return r.ProgramName },
		func(r model.ProgramTopInstitution) float64 { return r.AvgROI },
		func(r model.ProgramTopInstitution) string { return r.InstitutionName },
	)
	return truncate(best, limit)
}
