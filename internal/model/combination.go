package model

import "time"

// Combination is the flattened (drug, brand, indication, restriction) row
// served by the search API. One ingestion run replaces all rows sharing a
// schedule code; rows are never updated individually.
type Combination struct {
	ID int64 `json:"id,omitempty"`

	PBSCode     string `json:"pbs_code"`
	Drug        string `json:"drug"`
	Brand       string `json:"brand"`
	Formulation string `json:"formulation"`
	Indication  string `json:"indication"`

	TreatmentPhase    *string `json:"treatment_phase"`
	StreamlinedCode   *string `json:"streamlined_code"`
	AuthorityMethod   *string `json:"authority_method"`
	OnlineApplication *bool   `json:"online_application"`
	HospitalType      *string `json:"hospital_type"`

	MaximumPrescribablePack *int `json:"maximum_prescribable_pack"`
	MaximumQuantityUnits    *int `json:"maximum_quantity_units"`
	NumberOfRepeats         *int `json:"number_of_repeats"`

	ScheduleCode  string `json:"schedule_code"`
	ScheduleYear  int    `json:"schedule_year"`
	ScheduleMonth string `json:"schedule_month"`

	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// CombinationColumns returns the insertable column names in COPY order.
// The surrogate id and the timestamps are assigned by the database.
func CombinationColumns() []string {
	return []string{
		"pbs_code",
		"drug",
		"brand",
		"formulation",
		"indication",
		"treatment_phase",
		"streamlined_code",
		"authority_method",
		"online_application",
		"hospital_type",
		"maximum_prescribable_pack",
		"maximum_quantity_units",
		"number_of_repeats",
		"schedule_code",
		"schedule_year",
		"schedule_month",
	}
}

// CopyValues returns the row's values in CombinationColumns order.
func (c *Combination) CopyValues() []any {
	return []any{
		c.PBSCode,
		c.Drug,
		c.Brand,
		c.Formulation,
		c.Indication,
		c.TreatmentPhase,
		c.StreamlinedCode,
		c.AuthorityMethod,
		c.OnlineApplication,
		c.HospitalType,
		c.MaximumPrescribablePack,
		c.MaximumQuantityUnits,
		c.NumberOfRepeats,
		c.ScheduleCode,
		c.ScheduleYear,
		c.ScheduleMonth,
	}
}
