package model

import "fmt"

// Ownership classifies an institution as public or private.
type Ownership string

const (
	OwnershipPublic  Ownership = "Public"
	OwnershipPrivate Ownership = "Private"
)

// Institution is immutable reference data describing one higher-education
// institution. Rows are loaded by an external data pipeline; the service
// only ever reads them.
type Institution struct {
	ID            int64     `json:"uni_id"`
	Name          string    `json:"name"`
	State         string    `json:"state"`
	City          string    `json:"city"`
	Zip           string    `json:"zip"`
	Ownership     Ownership `json:"public_private"`
	AdmissionRate *float64  `json:"admission_rate"`
	AnnualCost    *float64  `json:"annual_cost,omitempty"`
	SiteURL       string    `json:"website"`
	LogoURL       string    `json:"logo_url"`
}

// ImageURL returns the institution logo, falling back to a deterministic
// placeholder image seeded by the institution id when no logo is stored.
func (i *Institution) ImageURL() string {
	if i.LogoURL != "" {
		return i.LogoURL
	}
	// Seed stays in 0..999 even for negative ids.
	seed := ((i.ID % 1000) + 1000) % 1000
	return fmt.Sprintf("https://picsum.photos/id/%d/600/400", seed)
}

// Candidate is an institution enriched with admission-test averages and its
// position in the feed ordering. It exists only within a feed session.
type Candidate struct {
	Institution
	ImageURL string   `json:"image_url"`
	SATAvg   *float64 `json:"sat_avg"`
	ACTAvg   *float64 `json:"act_avg"`
	Rank     int      `json:"rank"`
}

// InstitutionProfile is the detail view of one institution: the base record
// plus its program offerings annotated against the viewer's preferences.
type InstitutionProfile struct {
	Institution
	ImageURL string           `json:"image_url"`
	SATAvg   *float64         `json:"sat_avg"`
	ACTAvg   *float64         `json:"act_avg"`
	Programs []ProgramOffered `json:"programs"`
}

// ProgramOffered is one program row on an institution profile. IsMatch is
// true when the program name equals the viewer's preferred field.
type ProgramOffered struct {
	CIPCode    string   `json:"cip_code"`
	Name       string   `json:"name"`
	DegreeType string   `json:"degree_type"`
	ROIScore   *float64 `json:"roi_score"`
	Earn1Year  *float64 `json:"earn_1year"`
	Earn2Years *float64 `json:"earn_2years"`
	IsMatch    bool     `json:"isMatch"`
}
