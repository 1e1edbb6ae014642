package model

// User is the student profile as provided by the external account system.
// Only the test scores participate in match evaluation.
type User struct {
	ID           int64    `json:"user_id"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	PasswordHash string   `json:"-"`
	GPA          *float64 `json:"gpa"`
	SATScore     *float64 `json:"sat_score"`
	ACTScore     *float64 `json:"act_score"`
}

// UserPreference is the per-user singleton of discovery preferences.
// Unset fields are stored as NULL and omitted from combined filtering,
// never defaulted.
type UserPreference struct {
	UserID              int64    `json:"user_id"`
	PreferredRegion     *string  `json:"preferred_region"`
	PreferredDegreeType *string  `json:"preferred_degree_type"`
	PreferredField      *string  `json:"preferred_field_category"`
	MinROI              *float64 `json:"min_roi"`
}

// UpsertPreferenceRequest is the payload for creating or replacing a user's
// preferences. All fields are optional; absent fields clear the stored value.
type UpsertPreferenceRequest struct {
	PreferredRegion     *string  `json:"preferred_region" binding:"omitempty,len=2"`
	PreferredDegreeType *string  `json:"preferred_degree_type" binding:"omitempty,min=1,max=64"`
	PreferredField      *string  `json:"preferred_field_category" binding:"omitempty,min=1,max=128"`
	MinROI              *float64 `json:"min_roi" binding:"omitempty,gte=0"`
}
