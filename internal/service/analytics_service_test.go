package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/unimatch/unimatch-backend/internal/model"
)

type fakeAnalyticsRepo struct {
	rows  []model.OutcomeRow
	err   error
	calls int
}

func (f *fakeAnalyticsRepo) ListOutcomeRows(ctx context.Context) ([]model.OutcomeRow, error) {
	f.calls++
	return f.rows, f.err
}

// outcomeRows is a small fixed dataset exercising nulls, zeros, and ties.
func outcomeRows() []model.OutcomeRow {
	return []model.OutcomeRow{
		{InstitutionID: 1, InstitutionName: "Alpha University", State: "CA", AdmissionRate: f(0.5), AnnualCost: f(40000), CIPCode: "11", ProgramName: "Computer Science", ROIScore: f(4.0), Earn1Year: f(80000), Earn2Years: f(90000)},
		{InstitutionID: 1, InstitutionName: "Alpha University", State: "CA", AdmissionRate: f(0.5), AnnualCost: f(40000), CIPCode: "42", ProgramName: "Psychology", ROIScore: f(1.0), Earn1Year: f(30000), Earn2Years: f(32000)},
		{InstitutionID: 2, InstitutionName: "Beta College", State: "CA", AdmissionRate: f(0.75), AnnualCost: f(20000), CIPCode: "11", ProgramName: "Computer Science", ROIScore: f(3.0), Earn1Year: f(60000), Earn2Years: f(70000)},
		{InstitutionID: 3, InstitutionName: "Gamma Institute", State: "TX", AdmissionRate: nil, AnnualCost: nil, CIPCode: "11", ProgramName: "Computer Science", ROIScore: f(2.0), Earn1Year: f(50000), Earn2Years: nil},
		{InstitutionID: 4, InstitutionName: "Delta College", State: "TX", AdmissionRate: f(0.25), AnnualCost: f(0), CIPCode: "42", ProgramName: "Psychology", ROIScore: f(0), Earn1Year: nil, Earn2Years: f(500)},
	}
}

func newTestAnalyticsService(repo *fakeAnalyticsRepo) *AnalyticsService {
	return NewAnalyticsService(repo, nil, 0, zerolog.Nop())
}

func TestHighestAdmissionRatePrograms(t *testing.T) {
	svc := newTestAnalyticsService(&fakeAnalyticsRepo{rows: outcomeRows()})

	rows, err := svc.HighestAdmissionRatePrograms(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// CS averages (0.5+0.75)/2 = 0.625 over rows with a rate; Psychology
	// averages (0.5+0.25)/2 = 0.375. The nil-rate Gamma row is skipped.
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].ProgramName != "Computer Science" || rows[0].AvgAdmissionRate != 0.625 {
		t.Errorf("rows[0] = %+v, want Computer Science @ 0.625", rows[0])
	}
	if rows[1].ProgramName != "Psychology" || rows[1].AvgAdmissionRate != 0.375 {
		t.Errorf("rows[1] = %+v, want Psychology @ 0.375", rows[1])
	}
}

func TestHighestROIPerCostExcludesZeroCost(t *testing.T) {
	svc := newTestAnalyticsService(&fakeAnalyticsRepo{rows: outcomeRows()})

	rows, err := svc.HighestROIPerCost(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Gamma (nil cost) and Delta (zero cost) never produce a ratio.
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0].InstitutionName != "Beta College" {
		t.Errorf("rows[0].InstitutionName = %q, want Beta College", rows[0].InstitutionName)
	}
	if got, want := rows[0].ROIPerCost, 3.0/20000; got != want {
		t.Errorf("rows[0].ROIPerCost = %v, want %v", got, want)
	}
}

func TestAvgROIByStateProgramSampleFloor(t *testing.T) {
	// Five CS rows in CA pass the >=5 floor; a single TX row does not.
	rows := []model.OutcomeRow{}
	for i := 0; i < 5; i++ {
		rows = append(rows, model.OutcomeRow{
			InstitutionID: int64(i), InstitutionName: "U", State: "CA",
			CIPCode: "11", ProgramName: "Computer Science", ROIScore: f(float64(i + 1)),
		})
	}
	rows = append(rows, model.OutcomeRow{
		InstitutionID: 9, InstitutionName: "V", State: "TX",
		CIPCode: "11", ProgramName: "Computer Science", ROIScore: f(4.0),
	})

	svc := newTestAnalyticsService(&fakeAnalyticsRepo{rows: rows})
	got, err := svc.AvgROIByStateProgram(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("got %d rows, want 1", len(got))
	}
	if got[0].State != "CA" || got[0].SampleCount != 5 || got[0].AvgROI != 3.0 {
		t.Errorf("got %+v, want CA with 5 samples @ 3.0", got[0])
	}
}

func TestHighestEarningsGrowthRequiresBothYears(t *testing.T) {
	svc := newTestAnalyticsService(&fakeAnalyticsRepo{rows: outcomeRows()})

	rows, err := svc.HighestEarningsGrowth(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// CS growth (10000+10000)/2 = 10000 (Gamma skipped, no year 2);
	// Psychology only counts Alpha's row (Delta has no year 1): 2000.
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].ProgramName != "Computer Science" || rows[0].AvgGrowth != 10000 {
		t.Errorf("rows[0] = %+v, want Computer Science @ 10000", rows[0])
	}
	if rows[1].ProgramName != "Psychology" || rows[1].AvgGrowth != 2000 {
		t.Errorf("rows[1] = %+v, want Psychology @ 2000", rows[1])
	}
}

func TestLowestROIProgramsSkipsZeroAndNil(t *testing.T) {
	svc := newTestAnalyticsService(&fakeAnalyticsRepo{rows: outcomeRows()})

	rows, err := svc.LowestROIPrograms(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Delta's zero ROI is excluded; ascending order, truncated to 2.
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].ROIScore != 1.0 || rows[0].ProgramName != "Psychology" {
		t.Errorf("rows[0] = %+v, want Psychology @ 1.0", rows[0])
	}
	if rows[1].ROIScore != 2.0 {
		t.Errorf("rows[1].ROIScore = %v, want 2.0", rows[1].ROIScore)
	}
}

func TestLowestSalaryProgramsFloors(t *testing.T) {
	// 30 qualifying samples for one program, 29 for another, plus samples
	// at or below the $1000 data-quality floor that must not count.
	rows := []model.OutcomeRow{}
	for i := 0; i < 30; i++ {
		rows = append(rows, model.OutcomeRow{CIPCode: "11", ProgramName: "Computer Science", Earn2Years: f(50000)})
	}
	for i := 0; i < 29; i++ {
		rows = append(rows, model.OutcomeRow{CIPCode: "42", ProgramName: "Psychology", Earn2Years: f(30000)})
	}
	rows = append(rows,
		model.OutcomeRow{CIPCode: "42", ProgramName: "Psychology", Earn2Years: f(1000)},
		model.OutcomeRow{CIPCode: "42", ProgramName: "Psychology", Earn2Years: f(900)},
	)

	svc := newTestAnalyticsService(&fakeAnalyticsRepo{rows: rows})
	got, err := svc.LowestSalaryPrograms(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("got %d rows, want 1 (Psychology stays under 30 qualifying samples)", len(got))
	}
	if got[0].ProgramName != "Computer Science" || got[0].SampleCount != 30 {
		t.Errorf("got %+v, want Computer Science with 30 samples", got[0])
	}
}

func TestTopInstitutionPerState(t *testing.T) {
	svc := newTestAnalyticsService(&fakeAnalyticsRepo{rows: outcomeRows()})

	rows, err := svc.TopInstitutionPerState(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// CA: Alpha averages (4+1)/2 = 2.5 vs Beta 3.0; TX: Gamma 2.0 beats
	// Delta 0. States come back ascending.
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].State != "CA" || rows[0].InstitutionName != "Beta College" {
		t.Errorf("rows[0] = %+v, want CA / Beta College", rows[0])
	}
	if rows[1].State != "TX" || rows[1].InstitutionName != "Gamma Institute" {
		t.Errorf("rows[1] = %+v, want TX / Gamma Institute", rows[1])
	}
}

func TestTopInstitutionPerStateTieBreaksByName(t *testing.T) {
	rows := []model.OutcomeRow{
		{InstitutionID: 1, InstitutionName: "Zeta University", State: "CA", CIPCode: "11", ProgramName: "CS", ROIScore: f(3.0)},
		{InstitutionID: 2, InstitutionName: "Alpha University", State: "CA", CIPCode: "11", ProgramName: "CS", ROIScore: f(3.0)},
	}

	svc := newTestAnalyticsService(&fakeAnalyticsRepo{rows: rows})
	got, err := svc.TopInstitutionPerState(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got) != 1 || got[0].InstitutionName != "Alpha University" {
		t.Errorf("got %+v, want the alphabetically first institution on a tie", got)
	}
}

func TestTopInstitutionPerProgram(t *testing.T) {
	svc := newTestAnalyticsService(&fakeAnalyticsRepo{rows: outcomeRows()})

	rows, err := svc.TopInstitutionPerProgram(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].ProgramName != "Computer Science" || rows[0].InstitutionName != "Alpha University" {
		t.Errorf("rows[0] = %+v, want Computer Science / Alpha University", rows[0])
	}
	if rows[1].ProgramName != "Psychology" || rows[1].InstitutionName != "Alpha University" {
		t.Errorf("rows[1] = %+v, want Psychology / Alpha University", rows[1])
	}
}

func TestReportRejectsNonPositiveLimit(t *testing.T) {
	repo := &fakeAnalyticsRepo{rows: outcomeRows()}
	svc := newTestAnalyticsService(repo)

	for _, limit := range []int{0, -1} {
		if _, err := svc.HighestStartingSalaries(context.Background(), limit); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("limit %d: got err %v, want ErrInvalidArgument", limit, err)
		}
	}
	if repo.calls != 0 {
		t.Errorf("repository was queried %d times before validation", repo.calls)
	}
}

func TestReportTruncatesToLimit(t *testing.T) {
	svc := newTestAnalyticsService(&fakeAnalyticsRepo{rows: outcomeRows()})

	rows, err := svc.HighestStartingSalaries(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].ProgramName != "Computer Science" {
		t.Errorf("rows[0].ProgramName = %q, want Computer Science", rows[0].ProgramName)
	}
}

func TestReportPropagatesRepositoryError(t *testing.T) {
	svc := newTestAnalyticsService(&fakeAnalyticsRepo{err: errors.New("connection refused")})

	if _, err := svc.HighestROIPerCost(context.Background(), 5); err == nil {
		t.Fatal("expected error, got nil")
	}
}
