package model

// OutcomeRow is one flat joined row of reference data: an institution-program
// pairing with its outcome figures and institution-level metrics. The
// analytics engine aggregates these in memory.
type OutcomeRow struct {
	InstitutionID   int64
	InstitutionName string
	State           string
	AdmissionRate   *float64
	AnnualCost      *float64
	CIPCode         string
	ProgramName     string
	DegreeType      string
	ROIScore        *float64
	Earn1Year       *float64
	Earn2Years      *float64
}

// ─── Report rows ────────────────────────────────────────────────────

// ProgramAdmissionRate ranks programs by the average admission rate of the
// institutions offering them.
type ProgramAdmissionRate struct {
	ProgramName      string  `json:"program_name"`
	AvgAdmissionRate float64 `json:"avg_admission_rate"`
}

// ROIPerCost ranks institution-program rows by ROI divided by annual cost.
type ROIPerCost struct {
	InstitutionName string  `json:"institution_name"`
	State           string  `json:"state"`
	ROIScore        float64 `json:"roi_score"`
	AnnualCost      float64 `json:"annual_cost"`
	ROIPerCost      float64 `json:"roi_per_cost"`
}

// StateProgramROI is the average ROI for one (state, program) group with at
// least five contributing outcome rows.
type StateProgramROI struct {
	State       string  `json:"state"`
	ProgramName string  `json:"program_name"`
	AvgROI      float64 `json:"avg_roi"`
	SampleCount int     `json:"sample_count"`
}

// EarningsGrowth ranks programs by the average year-2 minus year-1 earnings
// delta.
type EarningsGrowth struct {
	ProgramName string  `json:"program_name"`
	AvgEarn1    float64 `json:"year_1_salary"`
	AvgEarn2    float64 `json:"year_2_salary"`
	AvgGrowth   float64 `json:"salary_growth"`
}

// StartingSalary ranks programs by average one-year post-graduation earnings.
type StartingSalary struct {
	ProgramName       string  `json:"program_name"`
	AvgStartingSalary float64 `json:"avg_starting_salary"`
}

// LowROIProgram is a row-level report entry for the lowest ROI scores.
type LowROIProgram struct {
	InstitutionName string  `json:"institution_name"`
	State           string  `json:"state"`
	ProgramName     string  `json:"program_name"`
	ROIScore        float64 `json:"roi_score"`
}

// LowSalaryProgram ranks programs by average two-year earnings ascending,
// with a data-quality floor and a minimum sample count.
type LowSalaryProgram struct {
	ProgramName    string  `json:"program_name"`
	SampleCount    int     `json:"sample_count"`
	AvgSalaryYear2 float64 `json:"avg_year_2_salary"`
}

// StateTopInstitution is the highest-average-ROI institution within a state.
type StateTopInstitution struct {
	State           string  `json:"state"`
	InstitutionName string  `json:"institution_name"`
	AvgROI          float64 `json:"avg_roi"`
}

// ProgramTopInstitution is the highest-average-ROI institution within a
// field of study.
type ProgramTopInstitution struct {
	ProgramName     string  `json:"program_name"`
	InstitutionName string  `json:"institution_name"`
	AvgROI          float64 `json:"avg_roi"`
}
