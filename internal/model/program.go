package model

// Program is reference data for a field of study, keyed by CIP code.
type Program struct {
	CIPCode string `json:"cip_code"`
	Name    string `json:"name"`
}

